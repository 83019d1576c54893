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

// Package storage resolves where the synced network share lives on this machine.
package storage

import (
	"os"
	"path/filepath"
	"runtime"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnsupportedPlatform = errors.Base("unsupported platform: only darwin and windows are supported")
	ErrBaseNotFound        = errors.Base("base storage location not found")
)

// DefaultCandidates are the library folder names a share is synced under,
// depending on the language of the account that set it up.
var DefaultCandidates = []string{
	"NPI Demand Planning - Documents",
	"NPI Demand Planning - Documenti",
}

// 🔌 Resolver returns the root of the source tree
type Resolver interface {
	ResolveBaseStorageLocation() (string, error)
}

// Static is a fixed, already known location
type Static string

func (s Static) ResolveBaseStorageLocation() (string, error) {
	if s == "" {
		return "", errors.Errorf("%w: empty path", ErrBaseNotFound)
	}
	return string(s), nil
}

// ☁️ OneDrive resolves a SharePoint library synced by the OneDrive client.
// On darwin the sync root is ~/Library/CloudStorage/<Darwin>, on windows it is
// ~/<Windows>; the first existing candidate folder below it wins.
type OneDrive struct {
	GOOS       string
	Home       string
	Darwin     string
	Windows    string
	Candidates []string
}

// 🏭 NewOneDrive fills GOOS and Home from the running process
func NewOneDrive(darwin, windows string, candidates []string) (*OneDrive, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Errorf("resolving home directory: %w", err)
	}
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &OneDrive{
		GOOS:       runtime.GOOS,
		Home:       home,
		Darwin:     darwin,
		Windows:    windows,
		Candidates: candidates,
	}, nil
}

func (o *OneDrive) ResolveBaseStorageLocation() (string, error) {
	var base string
	switch o.GOOS {
	case "darwin":
		base = filepath.Join(o.Home, "Library", "CloudStorage", o.Darwin)
	case "windows":
		base = filepath.Join(o.Home, o.Windows)
	default:
		return "", errors.Errorf("%w: %s", ErrUnsupportedPlatform, o.GOOS)
	}

	for _, name := range o.Candidates {
		candidate := filepath.Join(base, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}

	return "", errors.Errorf("%w: none of %v under %s", ErrBaseNotFound, o.Candidates, base)
}
