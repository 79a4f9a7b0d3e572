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

package apis

// OverrideFunc lets a renderer replace the resolved descriptor. It receives
// the resolved descriptor (possibly nil), the query tags and the subject item,
// and returns the descriptor to use.
type OverrideFunc func(d *Descriptor, tags []string, item any) *Descriptor

// Resolver picks the best Descriptor for a (type, tags) query.
type Resolver interface {
	// ResolveType returns the best descriptor for t and tags, or nil.
	// When hook is non-nil its result is returned instead; hooks are applied
	// on every call and are never memoized.
	ResolveType(t TypeName, tags []string, item any, hook OverrideFunc) *Descriptor
}
