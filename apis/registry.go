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

// Registry holds the set of known Descriptors keyed by their normalized path.
//
// Implementations are safe for concurrent use. Iteration order (Entries,
// ForType) is ascending by path so every scan over the registry is
// deterministic.
type Registry interface {
	// Add inserts d if no descriptor with the same path exists.
	// It reports whether d was inserted; the existing entry is retained otherwise.
	Add(d *Descriptor) bool
	// Replace inserts d, removing any entry with the same path. It returns the
	// removed entry, or nil.
	Replace(d *Descriptor) (old *Descriptor)
	// Lookup returns the entry registered under path.
	Lookup(path string) (*Descriptor, bool)
	// ForType returns the entries whose ModelType is exactly t.
	ForType(t TypeName) []*Descriptor
	// HasModelType reports whether any entry targets t.
	HasModelType(t TypeName) bool
	// Entries returns a snapshot of all entries.
	Entries() []*Descriptor
	// Count returns the number of entries.
	Count() int
	// Reset removes all entries.
	Reset()
}
