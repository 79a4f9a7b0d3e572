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

import (
	"fmt"
	"strings"
)

// CachePolicy controls how a Cache retains resolutions.
//
// # Values
//
//   - CacheMemo: entries live until evicted by a replace or a rebuild.
//   - CacheTTL: entries additionally expire after Config.CacheTTL.
//   - CacheNone: caching disabled, every query is recomputed.
//
// # Contract
//
//   - CachePolicy values are plain integers and safe to share across goroutines.
//   - The textual forms ("memo", "ttl", "none") are stable; they are used in
//     configuration files and metric labels.
type CachePolicy int

const (
	// CacheMemo memoizes every successful resolution until it is evicted.
	//
	// Eviction happens only through the registry: replacing a descriptor
	// evicts the entries of its model type, a rebuild evicts everything.
	// This is the default.
	CacheMemo CachePolicy = iota

	// CacheTTL memoizes like CacheMemo but lets entries expire.
	//
	// Expired entries are never returned. They are removed lazily on lookup
	// and by a periodic janitor when Config.CacheCleanupInterval is positive.
	CacheTTL

	// CacheNone disables memoization.
	//
	// Reads always miss and writes are dropped. Useful to compare behavior
	// with and without caching.
	CacheNone
)

// String returns "memo", "ttl", "none" or "Unknown(<n>)".
func (p CachePolicy) String() string {
	switch p {
	case CacheMemo:
		return "memo"
	case CacheTTL:
		return "ttl"
	case CacheNone:
		return "none"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParseCachePolicy parses a textual policy, case-insensitively and ignoring
// surrounding whitespace. On failure it returns CacheNone and an error.
func ParseCachePolicy(s string) (CachePolicy, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return CacheNone, fmt.Errorf("vrx(apis): empty cache policy")
	}
	switch strings.ToLower(trimmed) {
	case "memo":
		return CacheMemo, nil
	case "ttl":
		return CacheTTL, nil
	case "none":
		return CacheNone, nil
	default:
		return CacheNone, fmt.Errorf("vrx(apis): unknown cache policy %q", s)
	}
}

// MustParseCachePolicy is like ParseCachePolicy but panics on invalid input.
func MustParseCachePolicy(s string) CachePolicy {
	p, err := ParseCachePolicy(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalText implements encoding.TextMarshaler. Unknown values are an error
// rather than an "Unknown(...)" token so invalid states are never persisted.
func (p CachePolicy) MarshalText() ([]byte, error) {
	switch p {
	case CacheMemo, CacheTTL, CacheNone:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("vrx(apis): cannot marshal unknown cache policy %d", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. On failure p is left unchanged.
func (p *CachePolicy) UnmarshalText(text []byte) error {
	v, err := ParseCachePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
