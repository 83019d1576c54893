// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/walteh/budgetsync/cmd/budgetsync/opts"
	"github.com/walteh/budgetsync/pkg/releases"
	"gitlab.com/tozd/go/errors"
)

// 📋 NewReleasesCmd lists the releases found in the release region
func NewReleasesCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "releases",
		Short: "List available releases, the latest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			root, err := o.SearchRoot()
			if err != nil {
				return errors.Errorf("resolving search root: %w", err)
			}

			available, err := availableReleases(ctx, o, root)
			if err != nil {
				return err
			}

			return NewReporter(ctx, cmd.OutOrStdout()).Releases(available)
		},
	}

	return cmd
}

func availableReleases(ctx context.Context, o *opts.RootOpts, root string) ([]string, error) {
	cfg := o.Config
	names, err := releases.NewLocator(root, cfg.ReleaseRegion, cfg.BudgetFolder).List(ctx, cfg.ReleasePattern())
	if err != nil {
		return nil, errors.Errorf("listing releases: %w", err)
	}

	return releases.SortRecentFirst(names), nil
}

// chooseReleases validates the --release flags, defaulting to the latest release
func chooseReleases(ctx context.Context, o *opts.RootOpts, requested []string) (string, []string, error) {
	root, err := o.SearchRoot()
	if err != nil {
		return "", nil, errors.Errorf("resolving search root: %w", err)
	}

	available, err := availableReleases(ctx, o, root)
	if err != nil {
		return "", nil, err
	}

	chosen, err := releases.Choose(available, requested)
	if err != nil {
		return "", nil, errors.Errorf("choosing releases: %w", err)
	}

	return root, chosen, nil
}
