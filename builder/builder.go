/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package builder

import (
	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/cache"
	"dirpx.dev/vrx/registry"
	"dirpx.dev/vrx/tier"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds a new apis.Registry. If a previous registry is
// provided, its entries are copied into the new one.
func (b *builder) BuildRegistry(_ apis.Config, prev apis.Registry) apis.Registry {
	nreg := registry.New()
	if prev != nil {
		for _, d := range prev.Entries() {
			nreg.Add(d)
		}
	}
	return nreg
}

// BuildCache builds an empty apis.Cache honoring the cache settings of cfg.
func (b *builder) BuildCache(cfg apis.Config) apis.Cache {
	return cache.New(cfg)
}

// BuildTiers returns the standard tier chain.
func (b *builder) BuildTiers(_ apis.Config) []apis.Tier {
	return tier.Default()
}
