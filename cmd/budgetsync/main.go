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

package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/budgetsync/cmd/budgetsync/commands"
	"github.com/walteh/budgetsync/cmd/budgetsync/opts"
	"github.com/walteh/budgetsync/pkg/config"
	"github.com/walteh/budgetsync/pkg/log"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debugLog   bool
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	if err := newRootCmd(&opts.RootOpts{}).ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// newRootCmd wires every subcommand to the shared options
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "budgetsync",
		Short: "Collect regional budget workbooks of a release into one dataset",
		Long: `budgetsync finds the budget definition workbooks each region keeps on the
synced share, converts them into a fixed six column layout, aggregates them
and marks the processed sources once they have been uploaded.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context())
			cmd.SetContext(ctx)

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			o.Config = cfg

			sink := log.Sink(log.NewConsole(cmd.OutOrStdout()))
			if debugLog {
				sink = log.Tee(sink, log.FromContext(ctx))
			}
			o.Sink = sink

			return nil
		},
	}

	addRootFlags(rootCmd)

	rootCmd.AddCommand(
		commands.NewReleasesCmd(o),
		commands.NewDiscoverCmd(o),
		commands.NewTagCmd(o),
		newVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "budgetsync.yaml", "config file path")
	cmd.PersistentFlags().BoolVarP(&debugLog, "debug", "d", false, "enable debug logging")
}

// setupLogging applies the --debug level to the context logger
func setupLogging(ctx context.Context) context.Context {
	level := zerolog.InfoLevel
	if debugLog {
		level = zerolog.DebugLevel
	}
	return zerolog.Ctx(ctx).Level(level).WithContext(ctx)
}
