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

package tag_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/budgetsync/pkg/discovery"
	"github.com/walteh/budgetsync/pkg/log"
	"github.com/walteh/budgetsync/pkg/record/recordtest"
	"github.com/walteh/budgetsync/pkg/state"
	"github.com/walteh/budgetsync/pkg/tag"
)

type testEnv struct {
	ctx        context.Context
	sink       *log.Memory
	params     tag.Params
	releaseDir string
	outcome    *discovery.Outcome
}

// 🧪 runDiscovery converts file1.xlsx and fails bad.xlsx for BRA, like a real run would
func runDiscovery(t *testing.T) *testEnv {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())

	tmp := t.TempDir()
	share := filepath.Join(tmp, "share")
	releaseDir := filepath.Join(share, "BRA", "BUDGET DEFINITION", "2024 Q1")
	recordtest.WriteWorkbook(t, filepath.Join(releaseDir, "file1.xlsx"),
		[]interface{}{"BRA", "RB2140", "50", "901", "P1", 1200},
	)
	recordtest.WriteGarbage(t, filepath.Join(releaseDir, "bad.xlsx"))

	dest := filepath.Join(tmp, "destination")
	out, err := discovery.New(log.Discard()).Run(ctx, discovery.Params{
		Release:      "2024 Q1",
		Pattern:      regexp.MustCompile(`.*\.XLSX`),
		SearchRoot:   share,
		Regions:      []string{"BRA"},
		BudgetFolder: "BUDGET DEFINITION",
		Destination:  dest,
	})
	require.NoError(t, err)
	require.Len(t, out.Datasets, 1)

	return &testEnv{
		ctx:  ctx,
		sink: &log.Memory{},
		params: tag.Params{
			Release:      "2024 Q1",
			Pattern:      regexp.MustCompile(`.*\.XLSX`),
			Produced:     dest,
			SearchRoot:   share,
			Regions:      []string{"BRA"},
			BudgetFolder: "BUDGET DEFINITION",
		},
		releaseDir: releaseDir,
		outcome:    out,
	}
}

// touch makes path the newest file by moving its mtime forward
func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, at, at))
}

func TestTagLatest(t *testing.T) {
	env := runDiscovery(t)
	future := time.Now().Add(time.Hour)
	touch(t, filepath.Join(env.params.Produced, "BRA", "file1.xlsx"), future)

	tagger := tag.New(env.sink, "")
	renamed, err := tagger.TagLatest(env.ctx, env.params)
	require.NoError(t, err)

	require.Len(t, renamed, 1)
	assert.Equal(t, filepath.Join(env.releaseDir, "file1.xlsx"), renamed[0].From)
	assert.Equal(t, filepath.Join(env.releaseDir, "UPLOADED_file1.xlsx"), renamed[0].To)
	assert.FileExists(t, filepath.Join(env.releaseDir, "UPLOADED_file1.xlsx"))
	assert.NoFileExists(t, filepath.Join(env.releaseDir, "file1.xlsx"))
	assert.FileExists(t, filepath.Join(env.releaseDir, "bad.xlsx"), "failed files stay untouched")
	assert.True(t, env.sink.Contains("File renamed: file1.xlsx"))

	t.Run("second_run_renames_nothing", func(t *testing.T) {
		again, err := tagger.TagLatest(env.ctx, env.params)
		require.NoError(t, err)
		assert.Empty(t, again)
		assert.NoFileExists(t, filepath.Join(env.releaseDir, "UPLOADED_UPLOADED_file1.xlsx"))
	})
}

func TestTagLatestTies(t *testing.T) {
	env := runDiscovery(t)
	prior := filepath.Join(env.releaseDir, "sub", "file0.xlsx")
	recordtest.WriteWorkbook(t, prior, []interface{}{"BRA", "X", "1", "2", "3", 4})

	// an unrelated produced file sharing the newest instant is tagged too
	at := time.Now().Add(time.Hour).Truncate(time.Second)
	region := filepath.Join(env.params.Produced, "BRA")
	require.NoError(t, os.WriteFile(filepath.Join(region, "file0.xlsx"), []byte("old"), 0644))
	touch(t, filepath.Join(region, "file0.xlsx"), at)
	touch(t, filepath.Join(region, "file1.xlsx"), at)

	renamed, err := tag.New(env.sink, "DONE").TagLatest(env.ctx, env.params)
	require.NoError(t, err)
	assert.Len(t, renamed, 2)
	assert.FileExists(t, filepath.Join(env.releaseDir, "DONE_file1.xlsx"))
	assert.FileExists(t, filepath.Join(env.releaseDir, "sub", "DONE_file0.xlsx"))
}

func TestTagLatestSkipsMissingSource(t *testing.T) {
	env := runDiscovery(t)
	env.params.Release = "2024-Q1" // exact folder name is required on the source side

	renamed, err := tag.New(env.sink, "").TagLatest(env.ctx, env.params)
	require.NoError(t, err)
	assert.Empty(t, renamed)
	assert.FileExists(t, filepath.Join(env.releaseDir, "file1.xlsx"))
}

func TestTagManifest(t *testing.T) {
	env := runDiscovery(t)

	m, err := state.Load(env.ctx, env.params.Produced)
	require.NoError(t, err)
	require.Len(t, m.Pending(), 1)

	tagger := tag.New(env.sink, "")
	renamed, err := tagger.TagManifest(env.ctx, m)
	require.NoError(t, err)

	require.Len(t, renamed, 1)
	assert.Equal(t, filepath.Join(env.releaseDir, "UPLOADED_file1.xlsx"), renamed[0].To)
	assert.Equal(t, renamed[0].To, m.Produced[0].TaggedAs)
	assert.Empty(t, m.Pending())
	assert.FileExists(t, filepath.Join(env.releaseDir, "bad.xlsx"))

	t.Run("second_run_renames_nothing", func(t *testing.T) {
		again, err := tagger.TagManifest(env.ctx, m)
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("vanished_source_is_skipped", func(t *testing.T) {
		fresh, err := state.Load(env.ctx, env.params.Produced)
		require.NoError(t, err)

		again, err := tagger.TagManifest(env.ctx, fresh)
		require.NoError(t, err)
		assert.Empty(t, again)
		assert.True(t, env.sink.Contains("File missing, skipped: file1.xlsx"))
	})
}

func TestTaggedName(t *testing.T) {
	assert.Equal(t, "UPLOADED_file1.xlsx", tag.TaggedName(tag.DefaultTag, "file1.xlsx"))
}
