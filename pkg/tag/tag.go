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

// Package tag renames source workbooks once their converted outputs exist.
package tag

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/budgetsync/pkg/log"
	"github.com/walteh/budgetsync/pkg/match"
	"github.com/walteh/budgetsync/pkg/state"
	"gitlab.com/tozd/go/errors"
)

// DefaultTag marks a source file as uploaded
const DefaultTag = "UPLOADED"

const separator = "-------------------------------"

// 🔧 Params locate the produced outputs and the source tree of one release
type Params struct {
	Release      string
	Pattern      *regexp.Regexp // optional, source names must match it upper-cased
	Produced     string         // destination folder of the discovery run
	SearchRoot   string
	Regions      []string
	BudgetFolder string
}

// Renamed is one source file that received the tag
type Renamed struct {
	From string
	To   string
}

// 🏷️ Tagger prefixes source file names with a tag
type Tagger struct {
	sink log.Sink
	tag  string
}

// 🏭 New creates a tagger; an empty tag means DefaultTag
func New(sink log.Sink, tag string) *Tagger {
	if tag == "" {
		tag = DefaultTag
	}
	return &Tagger{sink: log.OrDefault(sink), tag: tag}
}

// TaggedName is name with the tag prefix
func TaggedName(tag, name string) string {
	return tag + "_" + name
}

// TagLatest treats the newest files of every region folder under
// params.Produced as the outputs of the last run and tags the source files
// with the same names. Every file sharing the newest modification time counts.
func (t *Tagger) TagLatest(ctx context.Context, params Params) ([]Renamed, error) {
	logger := zerolog.Ctx(ctx).With().Str("release", params.Release).Logger()

	regionDirs := []string{}
	err := filepath.WalkDir(params.Produced, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != params.Produced && d.IsDir() && slices.Contains(params.Regions, d.Name()) {
			regionDirs = append(regionDirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking produced folder: %w", err)
	}

	renamed := []Renamed{}
	for _, dir := range regionDirs {
		region := filepath.Base(dir)
		t.sink.Emit(fmt.Sprintf("\nProcessing region: %s", region))

		newest, err := newestFiles(dir)
		if err != nil {
			return renamed, errors.Errorf("reading %s: %w", dir, err)
		}
		if len(newest) == 0 {
			logger.Debug().Str("region", region).Msg("no produced files")
			t.sink.Emit(separator)
			continue
		}

		sourceDir := filepath.Join(params.SearchRoot, region, params.BudgetFolder, params.Release)
		targets, err := sourceMatches(&logger, sourceDir, newest, params.Pattern)
		if err != nil {
			return renamed, err
		}

		for _, src := range targets {
			r, err := t.rename(&logger, src)
			if err != nil {
				return renamed, err
			}
			renamed = append(renamed, r)
		}
		t.sink.Emit(separator)
	}

	return renamed, nil
}

// TagManifest tags exactly the source files recorded by a discovery run.
// Entries already tagged are skipped and sources that vanished are reported,
// so running it twice renames nothing the second time. The manifest is
// updated in place; saving it is up to the caller.
func (t *Tagger) TagManifest(ctx context.Context, m *state.Manifest) ([]Renamed, error) {
	logger := zerolog.Ctx(ctx).With().Str("release", m.Release).Str("run_id", m.RunID).Logger()

	renamed := []Renamed{}
	region := ""
	for _, i := range m.Pending() {
		p := m.Produced[i]
		if p.Region != region {
			if region != "" {
				t.sink.Emit(separator)
			}
			region = p.Region
			t.sink.Emit(fmt.Sprintf("\nProcessing region: %s", region))
		}

		if _, err := os.Stat(p.Source); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				t.sink.Emit(fmt.Sprintf(" File missing, skipped: %s", filepath.Base(p.Source)))
				logger.Warn().Str("source", p.Source).Msg("source file no longer exists")
				continue
			}
			return renamed, errors.Errorf("checking %s: %w", p.Source, err)
		}

		r, err := t.rename(&logger, p.Source)
		if err != nil {
			return renamed, err
		}
		m.Produced[i].TaggedAs = r.To
		renamed = append(renamed, r)
	}
	if region != "" {
		t.sink.Emit(separator)
	}

	return renamed, nil
}

func (t *Tagger) rename(logger *zerolog.Logger, src string) (Renamed, error) {
	dst := filepath.Join(filepath.Dir(src), TaggedName(t.tag, filepath.Base(src)))
	if err := os.Rename(src, dst); err != nil {
		return Renamed{}, errors.Errorf("renaming %s: %w", src, err)
	}
	t.sink.Emit(fmt.Sprintf(" File renamed: %s", filepath.Base(src)))
	logger.Info().Str("from", src).Str("to", dst).Msg("source file tagged")
	return Renamed{From: src, To: dst}, nil
}

// newestFiles returns the names of the regular files directly in dir that
// share the latest modification time.
func newestFiles(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var latest time.Time
	names := map[string]bool{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		mod := info.ModTime()
		switch {
		case len(names) == 0 || mod.After(latest):
			latest = mod
			names = map[string]bool{entry.Name(): true}
		case mod.Equal(latest):
			names[entry.Name()] = true
		}
	}
	return names, nil
}

// sourceMatches walks sourceDir for files whose name is in names
func sourceMatches(logger *zerolog.Logger, sourceDir string, names map[string]bool, pattern *regexp.Regexp) ([]string, error) {
	matches := []string{}
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == sourceDir && errors.Is(err, fs.ErrNotExist) {
				logger.Debug().Str("path", sourceDir).Msg("no source release folder")
				return filepath.SkipDir
			}
			return err
		}
		if !d.Type().IsRegular() || !names[d.Name()] {
			return nil
		}
		if pattern != nil && !match.Prefix(pattern, strings.ToUpper(d.Name())) {
			return nil
		}
		matches = append(matches, path)
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking source folder: %w", err)
	}
	return matches, nil
}
