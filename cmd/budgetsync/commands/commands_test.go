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

package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/budgetsync/cmd/budgetsync/commands"
	"github.com/walteh/budgetsync/cmd/budgetsync/opts"
	"github.com/walteh/budgetsync/pkg/config"
	"github.com/walteh/budgetsync/pkg/log"
	"github.com/walteh/budgetsync/pkg/record/recordtest"
	"github.com/walteh/budgetsync/pkg/releases"
	"github.com/walteh/budgetsync/pkg/state"
)

const latest = "S26 RELEASE 2026"

type testEnv struct {
	ctx   context.Context
	opts  *opts.RootOpts
	sink  *log.Memory
	share string
}

// 🧪 setupEnv creates a share with two releases and one BRA workbook in the latest
func setupEnv(t *testing.T) *testEnv {
	pterm.DisableStyling()

	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	tmp := t.TempDir()
	share := filepath.Join(tmp, "share")
	for _, r := range []string{"S25 RELEASE 2025", latest} {
		require.NoError(t, os.MkdirAll(filepath.Join(share, "USA", "BUDGET DEFINITION", r), 0755))
	}
	recordtest.WriteWorkbook(t, filepath.Join(share, "BRA", "BUDGET DEFINITION", latest, "file1.xlsx"),
		[]interface{}{"BRA", "RB2140", "50", "901", "P1", 200},
		[]interface{}{"BRA", "RB3025", "58", "001", "P2", 100},
	)

	cfg := &config.Config{
		Regions:        []string{"BRA", "MEX"},
		PatternFile:    `.*\.XLSX`,
		PatternRelease: `^S2`,
		SearchRoot:     share,
		OutputRoot:     filepath.Join(tmp, "out"),
	}
	require.NoError(t, cfg.Validate())

	sink := &log.Memory{}
	return &testEnv{
		ctx:   ctx,
		opts:  &opts.RootOpts{Config: cfg, Sink: sink},
		sink:  sink,
		share: share,
	}
}

func (e *testEnv) execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "budgetsync", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(cmd)

	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.ExecuteContext(e.ctx)
	return buf.String(), err
}

func TestReleasesCmd(t *testing.T) {
	env := setupEnv(t)

	out, err := env.execute(t, commands.NewReleasesCmd(env.opts), "releases")
	require.NoError(t, err)
	assert.Contains(t, out, latest+" (latest)")
	assert.Contains(t, out, "S25 RELEASE 2025")
}

func TestDiscoverCmd(t *testing.T) {
	env := setupEnv(t)

	_, err := env.execute(t, commands.NewDiscoverCmd(env.opts), "discover")
	require.NoError(t, err)

	dest := releases.Destination(env.opts.Config.OutputRoot, latest)
	m, err := state.Load(env.ctx, dest)
	require.NoError(t, err, "discover should leave a manifest")
	assert.Equal(t, latest, m.Release)
	require.Len(t, m.Produced, 1)
	assert.Equal(t, "BRA", m.Produced[0].Region)
	assert.True(t, env.sink.Contains("Data saved in "+dest))
}

func TestDiscoverCmdUnknownRelease(t *testing.T) {
	env := setupEnv(t)

	_, err := env.execute(t, commands.NewDiscoverCmd(env.opts), "discover", "--release", "S27 RELEASE 2027")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestDiscoverCmdOlderReleaseFindsNothing(t *testing.T) {
	env := setupEnv(t)

	_, err := env.execute(t, commands.NewDiscoverCmd(env.opts), "discover", "-r", "S25 RELEASE 2025")
	require.NoError(t, err)
	assert.True(t, env.sink.Contains("No files found"))
}

func TestTagCmdUsesManifest(t *testing.T) {
	env := setupEnv(t)

	_, err := env.execute(t, commands.NewDiscoverCmd(env.opts), "discover")
	require.NoError(t, err)

	out, err := env.execute(t, commands.NewTagCmd(env.opts), "tag")
	require.NoError(t, err)
	assert.Contains(t, out, "1 source file(s) tagged")

	releaseDir := filepath.Join(env.share, "BRA", "BUDGET DEFINITION", latest)
	assert.FileExists(t, filepath.Join(releaseDir, "UPLOADED_file1.xlsx"))
	assert.NoFileExists(t, filepath.Join(releaseDir, "file1.xlsx"))

	m, err := state.Load(env.ctx, releases.Destination(env.opts.Config.OutputRoot, latest))
	require.NoError(t, err)
	assert.Empty(t, m.Pending(), "tagged entries should be recorded")

	out, err = env.execute(t, commands.NewTagCmd(env.opts), "tag")
	require.NoError(t, err)
	assert.Contains(t, out, "0 source file(s) tagged")
}

func TestTagCmdHeuristicWithCustomTag(t *testing.T) {
	env := setupEnv(t)

	_, err := env.execute(t, commands.NewDiscoverCmd(env.opts), "discover")
	require.NoError(t, err)

	_, err = env.execute(t, commands.NewTagCmd(env.opts), "tag", "--heuristic", "--tag", "DONE")
	require.NoError(t, err)

	releaseDir := filepath.Join(env.share, "BRA", "BUDGET DEFINITION", latest)
	assert.FileExists(t, filepath.Join(releaseDir, "DONE_file1.xlsx"))
}
