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

package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/budgetsync/pkg/convert"
	"github.com/walteh/budgetsync/pkg/tag"
)

// 📢 Reporter prints end of run summaries for humans
type Reporter struct {
	out io.Writer
	log zerolog.Logger
}

// 🎯 NewReporter creates a reporter writing to out
func NewReporter(ctx context.Context, out io.Writer) *Reporter {
	return &Reporter{out: out, log: *zerolog.Ctx(ctx)}
}

// 📋 Releases lists the releases, the latest first
func (r *Reporter) Releases(names []string) error {
	if len(names) == 0 {
		pterm.Warning.WithWriter(r.out).Println("No releases available")
		return nil
	}
	items := make([]pterm.BulletListItem, 0, len(names))
	for i, name := range names {
		text := name
		if i == 0 {
			text += " (latest)"
		}
		items = append(items, pterm.BulletListItem{Level: 0, Text: text})
	}
	return pterm.DefaultBulletList.WithWriter(r.out).WithItems(items).Render()
}

// ❌ Failures renders the files that could not be converted
func (r *Reporter) Failures(release string, failures []convert.Failure) error {
	if len(failures) == 0 {
		pterm.Success.WithWriter(r.out).WithPrefix(pterm.Prefix{Text: "✅"}).
			Printf("%s: every file converted\n", release)
		return nil
	}

	data := pterm.TableData{{"File", "Folder", "Error"}}
	for _, f := range failures {
		data = append(data, []string{filepath.Base(f.Path), filepath.Dir(f.Path), f.Err.Error()})
		r.log.Debug().Str("path", f.Path).Err(f.Err).Msg("conversion failed")
	}

	pterm.Warning.WithWriter(r.out).WithPrefix(pterm.Prefix{Text: "⚠️"}).
		Printf("%s: %d file(s) need a manual check\n", release, len(failures))
	return pterm.DefaultTable.WithWriter(r.out).WithHasHeader().WithData(data).Render()
}

// 🏷️ Renamed summarizes a tagging run
func (r *Reporter) Renamed(release string, renamed []tag.Renamed) {
	printer := pterm.Info.WithWriter(r.out).WithPrefix(pterm.Prefix{Text: "📦"})
	msg := fmt.Sprintf("%s: %d source file(s) tagged", release, len(renamed))
	printer.Println(msg)
	r.log.Info().Str("release", release).Int("renamed", len(renamed)).Msg("tagging complete")
}
