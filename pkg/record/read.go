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
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"
)

// ReadSheet reads columns A..F of the first worksheet of an xlsx workbook.
// The first row is a header and is skipped.
func ReadSheet(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Errorf("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Errorf("reading rows of %q: %w", sheets[0], err)
	}

	return ParseRows(rows)
}

// MissingMarkers are the cell texts that count as a missing value, on top of
// the empty cell. They are the markers spreadsheet exports and error cells
// commonly carry (=NA() caches "#N/A").
var MissingMarkers = []string{
	"#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// Missing reports whether a raw cell holds no value
func Missing(cell string) bool {
	return cell == "" || slices.Contains(MissingMarkers, cell)
}

// 🧹 ParseRows turns raw rows (header first) into records.
// Rows with a missing cell anywhere in A..F, or a quantity that is not finite,
// are dropped; a quantity that is not a number fails the whole sheet.
func ParseRows(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, errors.Errorf("sheet is empty")
	}
	if len(rows[0]) < len(Columns) {
		return nil, errors.Errorf("expected %d columns A:F, header has %d", len(Columns), len(rows[0]))
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if !complete(row) {
			continue
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		if err != nil {
			// spreadsheet row numbers are 1-based and row 1 is the header
			return nil, errors.Errorf("row %d: quantity %q is not a number: %w", i+2, row[5], err)
		}
		if math.IsNaN(qty) || math.IsInf(qty, 0) {
			continue
		}
		records = append(records, Record{
			Region: row[0],
			Model:  row[1],
			Size:   row[2],
			Color:  row[3],
			P:      row[4],
			Qty:    RoundHalfUp(qty),
		})
	}
	return records, nil
}

func complete(row []string) bool {
	if len(row) < len(Columns) {
		return false
	}
	for _, cell := range row[:len(Columns)] {
		if Missing(cell) {
			return false
		}
	}
	return true
}
