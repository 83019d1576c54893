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

// Package match holds the name comparison rules shared by release lookup,
// discovery and tagging.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// 🧹 Normalize replaces every rune that is not a letter, digit or underscore
// with a space, so "2024-Q1" and "2024 Q1" compare equal.
func Normalize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, name)
}

// SameRelease reports whether a folder name denotes the given release once
// punctuation is ignored.
func SameRelease(folder, release string) bool {
	return Normalize(folder) == Normalize(release)
}

// 🔍 Prefix reports whether re matches s starting at its first byte.
// The match does not need to consume all of s.
func Prefix(re *regexp.Regexp, s string) bool {
	if re == nil {
		return false
	}
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}

// Ignored reports whether name matches any of the doublestar patterns.
// Invalid patterns never match.
func Ignored(logger *zerolog.Logger, patterns []string, name string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			logger.Debug().Str("pattern", pattern).Str("name", name).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			logger.Debug().Str("name", name).Str("pattern", pattern).Msg("file ignored by pattern")
			return true
		}
	}
	return false
}

// ValidPatterns returns the first invalid doublestar pattern, or "" when all are valid
func ValidPatterns(patterns []string) string {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return p
		}
	}
	return ""
}
