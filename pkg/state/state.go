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

// Package state records which source file every produced output came from,
// so tagging can rename exactly the files a run converted.
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	// FileName is the manifest written into a destination folder
	FileName      = ".budgetsync.lock"
	SchemaVersion = "1.0.0"
)

// ErrNoManifest is returned by Load when the destination has no manifest
var ErrNoManifest = errors.Base("no provenance manifest")

// 📦 Manifest is the provenance of one discovery run
type Manifest struct {
	SchemaVersion string     `json:"schema_version"`
	RunID         string     `json:"run_id"`
	Release       string     `json:"release"`
	CreatedAt     time.Time  `json:"created_at"`
	Produced      []Produced `json:"produced"`
}

// 📄 Produced links the artifacts written for one source file back to it
type Produced struct {
	Region string `json:"region"`
	Output string `json:"output"` // stem shared by Text and Sheet
	Text   string `json:"text"`
	Sheet  string `json:"sheet"`
	Source string `json:"source"`

	// TaggedAs is the source path after tagging, empty until then
	TaggedAs string `json:"tagged_as,omitempty"`
}

// 🏭 NewManifest starts a manifest for a run over release
func NewManifest(release string, now time.Time) *Manifest {
	return &Manifest{
		SchemaVersion: SchemaVersion,
		RunID:         uuid.NewString(),
		Release:       release,
		CreatedAt:     now.UTC(),
		Produced:      []Produced{},
	}
}

// Add appends a produced entry
func (m *Manifest) Add(p Produced) {
	m.Produced = append(m.Produced, p)
}

// Pending lists the indexes of entries whose source has not been tagged yet
func (m *Manifest) Pending() []int {
	out := []int{}
	for i, p := range m.Produced {
		if p.TaggedAs == "" {
			out = append(out, i)
		}
	}
	return out
}

// Path is the manifest location inside dir
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads the manifest stored in dir
func Load(ctx context.Context, dir string) (*Manifest, error) {
	path := Path(dir)
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading manifest")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Errorf("%w: %s", ErrNoManifest, path)
		}
		return nil, errors.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&m); err != nil {
		return nil, errors.Errorf("parsing manifest: %w", err)
	}
	if m.SchemaVersion != SchemaVersion {
		return nil, errors.Errorf("unsupported manifest schema %q", m.SchemaVersion)
	}

	return &m, nil
}

// 💾 Save writes the manifest into dir. A sidecar lock file guards against two
// writers; the manifest itself is replaced atomically.
func Save(ctx context.Context, dir string, m *Manifest) error {
	path := Path(dir)
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("produced", len(m.Produced)).Msg("writing manifest")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Errorf("creating manifest directory: %w", err)
	}

	lockPath := path + ".lock"
	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Errorf("creating lock file: %w", err)
	}
	defer func() {
		lock.Close()
		os.Remove(lockPath)
	}()

	data, err := json.MarshalIndent(m, "", "\t")
	if err != nil {
		return errors.Errorf("encoding manifest: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, append(data, '\n'), 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
