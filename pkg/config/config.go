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

// Package config loads budgetsync settings from yaml, hcl or json files.
package config

import (
	"regexp"

	"github.com/walteh/budgetsync/pkg/match"
	"github.com/walteh/budgetsync/pkg/releases"
	"github.com/walteh/budgetsync/pkg/storage"
	"github.com/walteh/budgetsync/pkg/tag"
	"gitlab.com/tozd/go/errors"
)

var ErrInvalid = errors.Base("invalid config")

// DefaultIgnore skips the lock files Excel leaves next to open workbooks
var DefaultIgnore = []string{"~$*"}

// 💾 StorageArgs describes how the synced share is located when search_root is unset
type StorageArgs struct {
	Darwin     string   `json:"darwin" yaml:"darwin" hcl:"darwin,optional"`
	Windows    string   `json:"windows" yaml:"windows" hcl:"windows,optional"`
	Candidates []string `json:"candidates,omitempty" yaml:"candidates,omitempty" hcl:"candidates,optional"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Regions        []string     `json:"regions" yaml:"regions" hcl:"regions"`
	PatternFile    string       `json:"pattern_file" yaml:"pattern_file" hcl:"pattern_file"`
	PatternRelease string       `json:"pattern_release" yaml:"pattern_release" hcl:"pattern_release"`
	BudgetFolder   string       `json:"budget_folder,omitempty" yaml:"budget_folder,omitempty" hcl:"budget_folder,optional"`
	ReleaseRegion  string       `json:"release_region,omitempty" yaml:"release_region,omitempty" hcl:"release_region,optional"`
	SearchRoot     string       `json:"search_root,omitempty" yaml:"search_root,omitempty" hcl:"search_root,optional"`
	OutputRoot     string       `json:"output_root,omitempty" yaml:"output_root,omitempty" hcl:"output_root,optional"`
	Tag            string       `json:"tag,omitempty" yaml:"tag,omitempty" hcl:"tag,optional"`
	Ignore         []string     `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`
	Storage        *StorageArgs `json:"storage,omitempty" yaml:"storage,omitempty" hcl:"storage,block"`

	location string
	file     *regexp.Regexp
	release  *regexp.Regexp
}

// 🔍 Validate fills defaults and compiles the patterns
func (cfg *Config) Validate() error {
	if len(cfg.Regions) == 0 {
		return errors.Errorf("%w: regions must not be empty", ErrInvalid)
	}

	if cfg.BudgetFolder == "" {
		cfg.BudgetFolder = releases.DefaultBudgetFolder
	}
	if cfg.ReleaseRegion == "" {
		cfg.ReleaseRegion = releases.DefaultRegion
	}
	if cfg.Tag == "" {
		cfg.Tag = tag.DefaultTag
	}
	if cfg.OutputRoot == "" {
		cfg.OutputRoot = "."
	}
	if cfg.Ignore == nil {
		cfg.Ignore = DefaultIgnore
	}

	if bad := match.ValidPatterns(cfg.Ignore); bad != "" {
		return errors.Errorf("%w: ignore pattern %q", ErrInvalid, bad)
	}

	var err error
	if cfg.file, err = compile("pattern_file", cfg.PatternFile); err != nil {
		return err
	}
	if cfg.release, err = compile("pattern_release", cfg.PatternRelease); err != nil {
		return err
	}

	if cfg.SearchRoot == "" && cfg.Storage == nil {
		return errors.Errorf("%w: either search_root or a storage block is required", ErrInvalid)
	}

	return nil
}

func compile(key, expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, errors.Errorf("%w: %s is required", ErrInvalid, key)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("%w: %s: %s", ErrInvalid, key, err.Error())
	}
	return re, nil
}

// FilePattern is matched against upper-cased file names
func (cfg *Config) FilePattern() *regexp.Regexp { return cfg.file }

// ReleasePattern is matched against release folder names
func (cfg *Config) ReleasePattern() *regexp.Regexp { return cfg.release }

// Location is the file the config was loaded from, empty if built in code
func (cfg *Config) Location() string { return cfg.location }

// 📍 Resolver picks where source files are searched for
func (cfg *Config) Resolver() (storage.Resolver, error) {
	if cfg.SearchRoot != "" {
		return storage.Static(cfg.SearchRoot), nil
	}
	od, err := storage.NewOneDrive(cfg.Storage.Darwin, cfg.Storage.Windows, cfg.Storage.Candidates)
	if err != nil {
		return nil, errors.Errorf("creating onedrive resolver: %w", err)
	}
	return od, nil
}
