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

package vrx

import (
	"iter"
	"sync/atomic"

	"dirpx.dev/vrx/apis"
)

// def is the process-wide default Service.
var def atomic.Pointer[Service]

func init() {
	def.Store(New())
}

// Default returns the process-wide default Service.
func Default() *Service {
	return def.Load()
}

// SetDefault replaces the process-wide default Service and returns the
// previous one. A nil s is ignored.
func SetDefault(s *Service) *Service {
	if s == nil {
		return def.Load()
	}
	return def.Swap(s)
}

// Resolve resolves item with the default Service.
// This is a convenience wrapper around Default().Resolve.
func Resolve(item any, tags []string, hook apis.OverrideFunc) *apis.Descriptor {
	return Default().Resolve(item, tags, hook)
}

// ResolveType resolves model type t with the default Service.
// This is a convenience wrapper around Default().ResolveType.
func ResolveType(t apis.TypeName, tags []string, item any, hook apis.OverrideFunc) *apis.Descriptor {
	return Default().ResolveType(t, tags, item, hook)
}

// Register adds d for modelType to the default Service.
// This is a convenience wrapper around Default().Register.
func Register(modelType apis.TypeName, d *apis.Descriptor, replace bool) bool {
	return Default().Register(modelType, d, replace)
}

// Rebuild rebuilds the default Service.
// This is a convenience wrapper around Default().Rebuild.
func Rebuild(force bool) error {
	return Default().Rebuild(force)
}

// DescriptorsFor yields the descriptors of the default Service registered
// exactly for t. This is a convenience wrapper around Default().DescriptorsFor.
func DescriptorsFor(t apis.TypeName) iter.Seq[*apis.Descriptor] {
	return Default().DescriptorsFor(t)
}
