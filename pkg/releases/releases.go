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

// Package releases lists the release folders available on the source tree.
package releases

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/budgetsync/pkg/match"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultRegion       = "USA"
	DefaultBudgetFolder = "BUDGET DEFINITION"
)

// DefaultPartition is the folder, relative to the search root, whose children name the releases
var DefaultPartition = filepath.Join(DefaultRegion, DefaultBudgetFolder)

// 🔍 Locator finds release folders under Root/Partition
type Locator struct {
	Root      string
	Partition string
}

// 🏭 NewLocator looks for releases in <root>/<region>/<budgetFolder>
func NewLocator(root, region, budgetFolder string) *Locator {
	if region == "" {
		region = DefaultRegion
	}
	if budgetFolder == "" {
		budgetFolder = DefaultBudgetFolder
	}
	return &Locator{Root: root, Partition: filepath.Join(region, budgetFolder)}
}

// Path is the directory whose children are listed
func (l *Locator) Path() string {
	partition := l.Partition
	if partition == "" {
		partition = DefaultPartition
	}
	return filepath.Join(l.Root, partition)
}

// List returns the names of the direct child directories matching pattern at
// their start, in directory enumeration order. Files are ignored.
func (l *Locator) List(ctx context.Context, pattern *regexp.Regexp) ([]string, error) {
	if pattern == nil {
		return nil, errors.Errorf("release pattern is required")
	}

	logger := zerolog.Ctx(ctx)
	dir := l.Path()
	logger.Debug().Str("path", dir).Str("pattern", pattern.String()).Msg("listing releases")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading release folder: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if !isDir(dir, entry) {
			continue
		}
		if match.Prefix(pattern, entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	logger.Debug().Strs("releases", names).Msg("releases found")
	return names, nil
}

// isDir follows symlinks, which synced network shares commonly use
func isDir(dir string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}

// SortRecentFirst orders releases descending, so names ending in a year list the newest first
func SortRecentFirst(names []string) []string {
	out := slices.Clone(names)
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Latest is the first release in recent-first order, or "" when there is none.
// The interactive prompt of the earlier tool offered the last name of that
// listing (the oldest) as its default; the newest is what a run almost always wants.
func Latest(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return SortRecentFirst(names)[0]
}

// ✅ Choose validates requested releases against the available ones.
// Names compare case-sensitively. No request selects the latest release.
func Choose(available, requested []string) ([]string, error) {
	if len(available) == 0 {
		return nil, errors.Errorf("no releases available")
	}
	if len(requested) == 0 {
		return []string{Latest(available)}, nil
	}

	chosen := make([]string, 0, len(requested))
	for _, r := range requested {
		if !slices.Contains(available, r) {
			return nil, errors.Errorf("release %q not available, options: %s", r, strings.Join(SortRecentFirst(available), ", "))
		}
		if !slices.Contains(chosen, r) {
			chosen = append(chosen, r)
		}
	}
	return chosen, nil
}

// Destination is <outputRoot>/<year>/<release>, where year is the last four
// characters of the release name.
func Destination(outputRoot, release string) string {
	year := release
	if len(release) > 4 {
		year = release[len(release)-4:]
	}
	return filepath.Join(outputRoot, year, release)
}
