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

// CacheKey identifies one memoized resolution: the queried type and the
// identity of the tag sequence supplied with the query.
type CacheKey struct {
	// Type is the queried model type.
	Type TypeName
	// Tags is the tag query identity (see Cache.Key).
	Tags string
}

// CacheEntry is one memoized resolution in a Cache snapshot.
type CacheEntry struct {
	// Key is the cache key.
	Key CacheKey
	// Tags is the tag sequence as supplied by the first query for Key.
	Tags []string
	// Descriptor is the memoized result. Never nil.
	Descriptor *Descriptor
}

// Cache memoizes successful resolutions.
type Cache interface {
	// Key derives the cache key of a query.
	Key(t TypeName, tags []string) CacheKey
	// Get returns the memoized descriptor for k.
	Get(k CacheKey) (*Descriptor, bool)
	// Put memoizes d under k. Nil descriptors are ignored.
	Put(k CacheKey, tags []string, d *Descriptor)
	// EvictType removes every entry queried for t or resolved to a descriptor
	// targeting t, and returns how many entries were removed.
	EvictType(t TypeName) int
	// Reset removes all entries.
	Reset()
	// Entries returns a snapshot of all live entries.
	Entries() []CacheEntry
	// Types returns the distinct queried types currently cached, sorted.
	Types() []TypeName
	// Len returns the number of live entries.
	Len() int
}
