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

package match_test

import (
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/walteh/budgetsync/pkg/match"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024 Q1", "2024 Q1"},
		{"2024-Q1", "2024 Q1"},
		{"2024.Q1", "2024 Q1"},
		{"BUDGET_2024", "BUDGET_2024"},
		{"FW24/25 (draft)", "FW24 25  draft "},
		{"Primavera-Verão", "Primavera Verão"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, match.Normalize(tt.in))
		})
	}
}

func TestSameRelease(t *testing.T) {
	assert.True(t, match.SameRelease("2024-Q1", "2024 Q1"))
	assert.True(t, match.SameRelease("2024 Q1", "2024.Q1"))
	assert.False(t, match.SameRelease("2024 Q2", "2024 Q1"))
	assert.False(t, match.SameRelease("2024Q1", "2024 Q1"), "removing separators is not the same as normalizing them")
}

func TestPrefix(t *testing.T) {
	re := regexp.MustCompile(`S\d{2}`)

	assert.True(t, match.Prefix(re, "S24 RELEASE 2024"))
	assert.True(t, match.Prefix(re, "S24"))
	assert.False(t, match.Prefix(re, "XS24"), "match must start at the first byte")
	assert.False(t, match.Prefix(re, "S2"))
	assert.False(t, match.Prefix(nil, "S24"))

	files := regexp.MustCompile(`.*\.XLSX`)
	assert.True(t, match.Prefix(files, "FILE1.XLSX"))
	assert.True(t, match.Prefix(files, "FILE1.XLSX.BAK"), "prefix semantics allow trailing text")
	assert.False(t, match.Prefix(files, "FILE1.TXT"))
}

func TestIgnored(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	patterns := []string{"~$*", "*.tmp"}

	assert.True(t, match.Ignored(&logger, patterns, "~$file1.xlsx"))
	assert.True(t, match.Ignored(&logger, patterns, "scratch.tmp"))
	assert.False(t, match.Ignored(&logger, patterns, "file1.xlsx"))
	assert.False(t, match.Ignored(&logger, nil, "file1.xlsx"))
	assert.False(t, match.Ignored(&logger, []string{"[unclosed"}, "file1.xlsx"))
}

func TestValidPatterns(t *testing.T) {
	assert.Equal(t, "", match.ValidPatterns([]string{"~$*", "**/*.bak"}))
	assert.Equal(t, "[unclosed", match.ValidPatterns([]string{"~$*", "[unclosed"}))
}
