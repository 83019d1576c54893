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

// Package recordtest builds spreadsheet fixtures for tests.
package recordtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Header is the header row budget workbooks carry
var Header = []interface{}{"Region", "Model", "Size", "Color", "P", "Qty"}

// WriteWorkbook writes header plus rows to an xlsx file at path, creating parent
// directories. A nil cell is left empty.
func WriteWorkbook(t *testing.T, path string, rows ...[]interface{}) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "creating fixture directory")

	f := excelize.NewFile()
	defer f.Close()

	all := append([][]interface{}{Header}, rows...)
	for r, row := range all {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err, "addressing fixture cell")
			require.NoError(t, f.SetCellValue("Sheet1", cell, v), "setting fixture cell")
		}
	}

	require.NoError(t, f.SaveAs(path), "saving fixture workbook")
	return path
}

// WriteGarbage writes bytes that no spreadsheet reader accepts
func WriteGarbage(t *testing.T, path string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "creating fixture directory")
	require.NoError(t, os.WriteFile(path, []byte("this is not a workbook"), 0644), "writing garbage fixture")
	return path
}

// ReadRows returns every row of the first sheet of the workbook at path
func ReadRows(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	require.NoError(t, err, "opening workbook")
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err, "reading rows")
	return rows
}
