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

// Package record defines the cleaned budget row and its two on-disk encodings.
package record

import (
	"math"
)

// Columns is the canonical schema, in source column order A..F
var Columns = []string{"REGION", "MODEL", "SIZE", "COLOR", "P", "QTY"}

// 📄 Record is one fully populated budget row
type Record struct {
	Region string `json:"region"`
	Model  string `json:"model"`
	Size   string `json:"size"`
	Color  string `json:"color"`
	P      string `json:"p"` // free-form code, passed through unvalidated
	Qty    int    `json:"qty"`
}

// cells returns the record as a spreadsheet row
func (r Record) cells() []interface{} {
	return []interface{}{r.Region, r.Model, r.Size, r.Color, r.P, r.Qty}
}

// 📦 Dataset is the cleaned record set converted from one source file
type Dataset struct {
	Source  string   `json:"source"`
	Records []Record `json:"records"`
}

// Total sums the quantities of every record
func (d Dataset) Total() int {
	return Total(d.Records)
}

// Total sums the quantities of records
func Total(records []Record) int {
	total := 0
	for _, r := range records {
		total += r.Qty
	}
	return total
}

// Concat is the row-wise union of datasets, in the order given
func Concat(datasets []Dataset) []Record {
	n := 0
	for _, d := range datasets {
		n += len(d.Records)
	}
	out := make([]Record, 0, n)
	for _, d := range datasets {
		out = append(out, d.Records...)
	}
	return out
}

// 🔢 RoundHalfUp rounds q down when its fractional part is below 0.5 and up
// otherwise. 3.5 becomes 4 and 2.5 becomes 3, unlike banker's rounding.
func RoundHalfUp(q float64) int {
	floor := math.Floor(q)
	if q-floor < 0.5 {
		return int(floor)
	}
	return int(math.Ceil(q))
}
