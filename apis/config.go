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

import "time"

// Config carries read-only knobs for registries, caches and resolvers.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// CachePolicy selects how resolutions are memoized.
	CachePolicy CachePolicy

	// CacheTTL is the lifetime of an entry under CacheTTL policy.
	CacheTTL time.Duration

	// CacheCleanupInterval is how often expired entries are purged under
	// CacheTTL policy. Zero disables the janitor.
	CacheCleanupInterval time.Duration

	// NormalizeTagKeys sorts and de-duplicates tags before deriving a cache
	// key, so tag sequences differing only in order share an entry. It changes
	// cache footprint, never results.
	NormalizeTagKeys bool
}
