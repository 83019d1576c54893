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
	"github.com/walteh/budgetsync/pkg/releases"
	"github.com/walteh/budgetsync/pkg/state"
	"github.com/walteh/budgetsync/pkg/tag"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ NewTagCmd marks the source files of a discovery run as uploaded
func NewTagCmd(o *opts.RootOpts) *cobra.Command {
	var (
		requested []string
		heuristic bool
		label     string
	)

	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Prefix processed source files with a tag",
		Long: `Tag renames the source workbooks of the chosen releases to <TAG>_<name>.
By default it renames exactly the sources recorded in the provenance manifest
written by discover. With --heuristic, or when no manifest exists, the newest
produced file of each region is matched to a source file by name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := zerolog.Ctx(ctx).With().Str("command", "tag").Logger()
			ctx = logger.WithContext(ctx)

			root, chosen, err := chooseReleases(ctx, o, requested)
			if err != nil {
				return err
			}

			cfg := o.Config
			if label == "" {
				label = cfg.Tag
			}
			tagger := tag.New(o.Sink, label)
			report := NewReporter(ctx, cmd.OutOrStdout())

			for _, release := range chosen {
				produced := releases.Destination(cfg.OutputRoot, release)

				var renamed []tag.Renamed
				m, err := state.Load(ctx, produced)
				switch {
				case err == nil && !heuristic:
					if renamed, err = tagger.TagManifest(ctx, m); err != nil {
						return errors.Errorf("tagging %s: %w", release, err)
					}
					if err := state.Save(ctx, produced, m); err != nil {
						return errors.Errorf("saving manifest: %w", err)
					}
				case err == nil || errors.Is(err, state.ErrNoManifest):
					if err != nil {
						logger.Warn().Str("release", release).Msg("no manifest found, matching the newest produced files")
					}
					renamed, err = tagger.TagLatest(ctx, tag.Params{
						Release:      release,
						Pattern:      cfg.FilePattern(),
						Produced:     produced,
						SearchRoot:   root,
						Regions:      cfg.Regions,
						BudgetFolder: cfg.BudgetFolder,
					})
					if err != nil {
						return errors.Errorf("tagging %s: %w", release, err)
					}
				default:
					return errors.Errorf("loading manifest: %w", err)
				}

				report.Renamed(release, renamed)
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&requested, "release", "r", nil, "release to process, repeatable (default latest)")
	cmd.Flags().BoolVar(&heuristic, "heuristic", false, "match the newest produced files instead of the manifest")
	cmd.Flags().StringVarP(&label, "tag", "t", "", "tag prefix (default from config)")

	return cmd
}
