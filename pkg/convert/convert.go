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

// Package convert turns one source budget workbook into a cleaned record set
// and writes its text and spreadsheet encodings.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/budgetsync/pkg/log"
	"github.com/walteh/budgetsync/pkg/record"
	"gitlab.com/tozd/go/errors"
)

// HighTotalThreshold is the per-file quantity above which a file is flagged for review
const HighTotalThreshold = 50000

// ❌ Failure marks a source file that could not be converted
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// 📦 Result is the outcome of converting one file.
// Exactly one of Dataset and Failure is set.
type Result struct {
	Dataset   *record.Dataset
	Artifacts record.Artifacts
	Failure   *Failure
}

// OK reports whether the conversion succeeded
func (r Result) OK() bool {
	return r.Dataset != nil
}

// 🔄 Converter converts budget workbooks one at a time
type Converter struct {
	sink log.Sink
}

// 🏭 New creates a converter reporting through sink (console when nil)
func New(sink log.Sink) *Converter {
	return &Converter{sink: log.OrDefault(sink)}
}

// Convert reads file, cleans it and writes <destDir>/<stem>.txt and .xlsx.
// Every error, including a panic inside the spreadsheet reader, is reported
// and returned as a Failure; Convert itself never fails.
func (c *Converter) Convert(ctx context.Context, file, destDir string) (res Result) {
	logger := zerolog.Ctx(ctx).With().Str("file", file).Logger()

	defer func() {
		if r := recover(); r != nil {
			res = c.fail(&logger, file, errors.Errorf("panic: %v", r))
		}
	}()

	ds, arts, err := c.convert(&logger, file, destDir)
	if err != nil {
		return c.fail(&logger, file, err)
	}

	logger.Debug().Str("text", arts.Text).Str("sheet", arts.Sheet).Int("rows", len(ds.Records)).Msg("file converted")
	return Result{Dataset: ds, Artifacts: arts}
}

func (c *Converter) convert(logger *zerolog.Logger, file, destDir string) (*record.Dataset, record.Artifacts, error) {
	records, err := record.ReadSheet(file)
	if err != nil {
		return nil, record.Artifacts{}, errors.Errorf("reading sheet: %w", err)
	}
	if len(records) == 0 {
		return nil, record.Artifacts{}, errors.Errorf("no complete rows in columns A:F")
	}

	ds := &record.Dataset{Source: file, Records: records}

	total := ds.Total()
	if total > HighTotalThreshold {
		c.sink.Emit(fmt.Sprintf("\tWARNING: Total Budget for the file: %d. The total is pretty high, check the file manually.", total))
		logger.Warn().Int("total", total).Int("threshold", HighTotalThreshold).Msg("total budget above threshold")
	} else {
		c.sink.Emit(fmt.Sprintf("\tTotal Budget for the file: %d", total))
		logger.Info().Int("total", total).Msg("total budget")
	}
	c.sink.Emit("\t----------\n")

	arts, err := record.Write(destDir, Stem(file), records)
	if err != nil {
		return nil, record.Artifacts{}, errors.Errorf("saving converted file: %w", err)
	}

	return ds, arts, nil
}

func (c *Converter) fail(logger *zerolog.Logger, file string, err error) Result {
	c.sink.Emit(fmt.Sprintf("Error processing file '%s': %v", file, err))
	c.sink.Emit("Please, check the file manually")
	logger.Error().Err(err).Msg("converting file")
	return Result{Failure: &Failure{Path: file, Err: err}}
}

// Stem is the file name without directory and extension
func Stem(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
