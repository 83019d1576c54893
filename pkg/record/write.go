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

package record

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"
)

const (
	TextExt  = ".txt"
	SheetExt = ".xlsx"

	sheetName = "Sheet1"
)

// 📁 Artifacts are the two files written for one record set
type Artifacts struct {
	Text  string `json:"text"`
	Sheet string `json:"sheet"`
}

// Write stores records as <dir>/<stem>.txt and <dir>/<stem>.xlsx, creating
// dir if needed. Existing files with the same name are replaced.
func Write(dir, stem string, records []Record) (Artifacts, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Artifacts{}, errors.Errorf("creating output directory: %w", err)
	}

	arts := Artifacts{
		Text:  filepath.Join(dir, stem+TextExt),
		Sheet: filepath.Join(dir, stem+SheetExt),
	}

	if err := writeFileAtomic(arts.Text, func(w io.Writer) error {
		return WriteTSV(w, records)
	}); err != nil {
		return Artifacts{}, errors.Errorf("writing %s: %w", filepath.Base(arts.Text), err)
	}

	if err := writeFileAtomic(arts.Sheet, func(w io.Writer) error {
		return WriteXLSX(w, records)
	}); err != nil {
		// a lone .txt would look like a converted file
		os.Remove(arts.Text)
		return Artifacts{}, errors.Errorf("writing %s: %w", filepath.Base(arts.Sheet), err)
	}

	return arts, nil
}

// WriteTSV writes one tab separated line per record, without header or index.
// Cells holding a tab, a quote or a line break are quoted.
func WriteTSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	for _, r := range records {
		if err := cw.Write([]string{r.Region, r.Model, r.Size, r.Color, r.P, strconv.Itoa(r.Qty)}); err != nil {
			return errors.Errorf("writing record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Errorf("flushing records: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook with a header row and no index column
func WriteXLSX(w io.Writer, records []Record) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return errors.Errorf("writing header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Errorf("addressing row %d: %w", i+2, err)
		}
		row := r.cells()
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return errors.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Errorf("encoding workbook: %w", err)
	}
	return nil
}

// 💾 writeFileAtomic writes to a temp file next to path, then renames it into place
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tempPath := path + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tempPath)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
