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

package opts

import (
	"github.com/walteh/budgetsync/pkg/config"
	"github.com/walteh/budgetsync/pkg/log"
	"github.com/walteh/budgetsync/pkg/storage"
)

// 🎛️ RootOpts is shared by every subcommand; it is filled before a command runs
type RootOpts struct {
	Config *config.Config
	Sink   log.Sink

	// Resolver overrides cfg.Resolver(), used by tests
	Resolver storage.Resolver
}

// 📍 SearchRoot resolves the base storage location
func (o *RootOpts) SearchRoot() (string, error) {
	r := o.Resolver
	if r == nil {
		var err error
		if r, err = o.Config.Resolver(); err != nil {
			return "", err
		}
	}
	return r.ResolveBaseStorageLocation()
}
