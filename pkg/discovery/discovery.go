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

// Package discovery walks the region tree for one release, converts every
// matching workbook and writes the aggregate of the successful ones.
package discovery

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
	"github.com/walteh/budgetsync/pkg/convert"
	"github.com/walteh/budgetsync/pkg/log"
	"github.com/walteh/budgetsync/pkg/match"
	"github.com/walteh/budgetsync/pkg/record"
	"github.com/walteh/budgetsync/pkg/state"
	"gitlab.com/tozd/go/errors"
)

const (
	// AggregateSuffix follows the run date in the aggregate artifact name
	AggregateSuffix = "_aggregate"
	dateLayout      = "2006_01_02"
	separator       = "-------------------------------"
)

// 🔧 Params are the resolved inputs of one discovery run
type Params struct {
	Release      string
	Pattern      *regexp.Regexp // matched at the start of the upper-cased file name
	SearchRoot   string
	Regions      []string
	BudgetFolder string
	Destination  string
	Ignore       []string // doublestar patterns on file names
}

// 📦 Outcome is everything one run produced
type Outcome struct {
	Datasets   []record.Dataset
	Failures   []convert.Failure
	Aggregate  *record.Artifacts
	Provenance *state.Manifest
}

// Records is the aggregated record set of the run
func (o *Outcome) Records() []record.Record {
	return record.Concat(o.Datasets)
}

// FailedPaths lists the source files that could not be converted
func (o *Outcome) FailedPaths() []string {
	out := make([]string, len(o.Failures))
	for i, f := range o.Failures {
		out[i] = f.Path
	}
	return out
}

// 🏃 Pipeline runs discovery sequentially, one file at a time
type Pipeline struct {
	converter *convert.Converter
	sink      log.Sink
	now       func() time.Time
}

// 🏭 New creates a pipeline reporting through sink (console when nil)
func New(sink log.Sink) *Pipeline {
	sink = log.OrDefault(sink)
	return &Pipeline{
		converter: convert.New(sink),
		sink:      sink,
		now:       time.Now,
	}
}

// WithClock replaces the clock used to date the aggregate
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// AggregateName is the stem of the aggregate artifact written at t
func AggregateName(t time.Time) string {
	return t.Format(dateLayout) + AggregateSuffix
}

// Run discovers and converts every matching file of params.Release.
// File failures are collected in the outcome; only an unreadable search root
// or a failed aggregate or manifest write is returned as an error.
func (p *Pipeline) Run(ctx context.Context, params Params) (*Outcome, error) {
	logger := zerolog.Ctx(ctx).With().Str("release", params.Release).Logger()
	ctx = logger.WithContext(ctx)

	if params.Pattern == nil {
		return nil, errors.Errorf("file pattern is required")
	}

	entries, err := os.ReadDir(params.SearchRoot)
	if err != nil {
		return nil, errors.Errorf("reading search root: %w", err)
	}

	out := &Outcome{Provenance: state.NewManifest(params.Release, p.now())}

	for _, entry := range entries {
		region := entry.Name()
		if !slices.Contains(params.Regions, region) {
			continue
		}

		p.sink.Emit(fmt.Sprintf("\nProcessing region: %s", region))
		p.processRegion(ctx, params, region, out)
		p.sink.Emit(separator)
	}

	if len(out.Datasets) == 0 {
		p.sink.Emit("No files found")
		logger.Info().Int("failures", len(out.Failures)).Msg("no files converted")
		return out, nil
	}

	arts, err := record.Write(params.Destination, AggregateName(p.now()), out.Records())
	if err != nil {
		return out, errors.Errorf("writing aggregate: %w", err)
	}
	out.Aggregate = &arts

	if err := state.Save(ctx, params.Destination, out.Provenance); err != nil {
		return out, errors.Errorf("saving provenance: %w", err)
	}

	p.sink.Emit(fmt.Sprintf("Data saved in %s", params.Destination))
	logger.Info().
		Int("files", len(out.Datasets)).
		Int("failures", len(out.Failures)).
		Int("rows", len(out.Records())).
		Str("aggregate", arts.Sheet).
		Msg("discovery complete")

	return out, nil
}

// processRegion converts every candidate under each release folder of one region
func (p *Pipeline) processRegion(ctx context.Context, params Params, region string, out *Outcome) {
	logger := zerolog.Ctx(ctx).With().Str("region", region).Logger()
	budgetDir := filepath.Join(params.SearchRoot, region, params.BudgetFolder)
	dest := filepath.Join(params.Destination, region)

	for _, releaseDir := range releaseDirs(&logger, budgetDir, params.Release) {
		for _, file := range p.candidates(&logger, releaseDir, params) {
			p.sink.Emit(fmt.Sprintf("\tFile found: %s", filepath.Base(file)))

			res := p.converter.Convert(ctx, file, dest)
			if !res.OK() {
				out.Failures = append(out.Failures, *res.Failure)
				continue
			}

			out.Datasets = append(out.Datasets, *res.Dataset)
			out.Provenance.Add(state.Produced{
				Region: region,
				Output: convert.Stem(file),
				Text:   res.Artifacts.Text,
				Sheet:  res.Artifacts.Sheet,
				Source: file,
			})
		}
	}
}

// releaseDirs finds, at any depth under budgetDir, the directories naming release
func releaseDirs(logger *zerolog.Logger, budgetDir, release string) []string {
	dirs := []string{}
	walk(logger, budgetDir, func(path string, d fs.DirEntry) {
		if d.IsDir() && match.SameRelease(d.Name(), release) {
			dirs = append(dirs, path)
		}
	})
	if len(dirs) == 0 {
		logger.Debug().Str("path", budgetDir).Msg("no release folder found")
	}
	return dirs
}

// candidates lists the files under releaseDir whose upper-cased name matches the pattern
func (p *Pipeline) candidates(logger *zerolog.Logger, releaseDir string, params Params) []string {
	files := []string{}
	walk(logger, releaseDir, func(path string, d fs.DirEntry) {
		if !d.Type().IsRegular() {
			return
		}
		name := d.Name()
		if !match.Prefix(params.Pattern, strings.ToUpper(name)) {
			return
		}
		if match.Ignored(logger, params.Ignore, name) {
			return
		}
		files = append(files, path)
	})
	if len(files) == 0 {
		logger.Debug().Str("path", releaseDir).Msg("no matching files")
	}
	return files
}

// walk visits every entry below root, excluding root itself. Unreadable
// directories are skipped; a missing root yields nothing.
func walk(logger *zerolog.Logger, root string, visit func(path string, d fs.DirEntry)) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		visit(path, d)
		return nil
	})
	if err != nil {
		logger.Debug().Err(err).Str("path", root).Msg("folder not walkable")
	}
}
