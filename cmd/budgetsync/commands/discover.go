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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/budgetsync/cmd/budgetsync/opts"
	"github.com/walteh/budgetsync/pkg/discovery"
	"github.com/walteh/budgetsync/pkg/releases"
	"gitlab.com/tozd/go/errors"
)

// 🔍 NewDiscoverCmd converts and aggregates the budget files of the chosen releases
func NewDiscoverCmd(o *opts.RootOpts) *cobra.Command {
	var requested []string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Convert and aggregate budget files of a release",
		Long: `Discover walks every configured region for the release folders, then:
1. Converts each matching workbook into a normalized .txt and .xlsx pair
2. Writes a dated aggregate of every converted file
3. Records what was produced in a provenance manifest for the tag command`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "discover").Logger().WithContext(ctx)

			root, chosen, err := chooseReleases(ctx, o, requested)
			if err != nil {
				return err
			}

			cfg := o.Config
			report := NewReporter(ctx, cmd.OutOrStdout())
			pipeline := discovery.New(o.Sink)

			for _, release := range chosen {
				out, err := pipeline.Run(ctx, discovery.Params{
					Release:      release,
					Pattern:      cfg.FilePattern(),
					SearchRoot:   root,
					Regions:      cfg.Regions,
					BudgetFolder: cfg.BudgetFolder,
					Destination:  releases.Destination(cfg.OutputRoot, release),
					Ignore:       cfg.Ignore,
				})
				if err != nil {
					return errors.Errorf("discovering %s: %w", release, err)
				}

				if err := report.Failures(release, out.Failures); err != nil {
					return errors.Errorf("rendering failures: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&requested, "release", "r", nil, "release to process, repeatable (default latest)")

	return cmd
}
