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

package cache

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"

	"dirpx.dev/vrx/apis"
)

// New constructs a Cache for cfg. The policy selects the behavior:
// CacheMemo never expires entries, CacheTTL expires them after cfg.CacheTTL,
// CacheNone drops every write.
func New(cfg apis.Config) apis.Cache {
	exp := gocache.NoExpiration
	var cleanup time.Duration
	if cfg.CachePolicy == apis.CacheTTL {
		exp = cfg.CacheTTL
		cleanup = cfg.CacheCleanupInterval
	}
	return &cache{
		policy:    cfg.CachePolicy,
		normalize: cfg.NormalizeTagKeys,
		store:     gocache.New(exp, cleanup),
	}
}

// cache is an apis.Cache backed by go-cache.
//
// Store keys are "<type>\x00<xxhash of tag identity>". The full CacheKey is
// kept in the stored entry and compared on lookup, so a digest collision
// degrades to a miss instead of a wrong answer.
type cache struct {
	policy    apis.CachePolicy
	normalize bool
	store     *gocache.Cache
}

// Ensure cache implements apis.Cache.
var _ apis.Cache = (*cache)(nil)

// Key derives the cache key for a query. The tag identity is the exact tag
// sequence unless normalization is enabled, in which case tags are sorted
// and de-duplicated first.
func (c *cache) Key(t apis.TypeName, tags []string) apis.CacheKey {
	if c.normalize && len(tags) > 1 {
		tags = slices.Clone(tags)
		slices.Sort(tags)
		tags = slices.Compact(tags)
	}
	return apis.CacheKey{Type: t, Tags: identity(tags)}
}

// identity encodes a tag sequence as "<len>:<tag>" items so that no two
// distinct sequences share an identity.
func identity(tags []string) string {
	var b strings.Builder
	for _, t := range tags {
		b.WriteString(strconv.Itoa(len(t)))
		b.WriteByte(':')
		b.WriteString(t)
	}
	return b.String()
}

// Get returns the memoized descriptor for k.
func (c *cache) Get(k apis.CacheKey) (*apis.Descriptor, bool) {
	if c.policy == apis.CacheNone {
		return nil, false
	}
	v, ok := c.store.Get(storeKey(k))
	if !ok {
		return nil, false
	}
	e, ok := v.(apis.CacheEntry)
	if !ok || e.Key != k {
		return nil, false
	}
	return e.Descriptor, true
}

// Put memoizes d under k. Nil descriptors are never cached.
func (c *cache) Put(k apis.CacheKey, tags []string, d *apis.Descriptor) {
	if d == nil || c.policy == apis.CacheNone {
		return
	}
	c.store.Set(storeKey(k), apis.CacheEntry{
		Key:        k,
		Tags:       slices.Clone(tags),
		Descriptor: d,
	}, gocache.DefaultExpiration)
}

// EvictType removes the entries queried for t and the entries whose result
// targets t.
func (c *cache) EvictType(t apis.TypeName) int {
	n := 0
	for sk, item := range c.store.Items() {
		e, ok := item.Object.(apis.CacheEntry)
		if !ok || e.Key.Type == t || e.Descriptor.ModelType == t {
			c.store.Delete(sk)
			n++
		}
	}
	return n
}

// Reset removes all entries.
func (c *cache) Reset() {
	c.store.Flush()
}

// Entries returns a snapshot of all live entries, ordered by type then tags.
func (c *cache) Entries() []apis.CacheEntry {
	items := c.store.Items()
	out := make([]apis.CacheEntry, 0, len(items))
	for _, item := range items {
		if e, ok := item.Object.(apis.CacheEntry); ok {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b apis.CacheEntry) int {
		if c := strings.Compare(string(a.Key.Type), string(b.Key.Type)); c != 0 {
			return c
		}
		return strings.Compare(a.Key.Tags, b.Key.Tags)
	})
	return out
}

// Types returns the distinct queried types currently cached, sorted.
func (c *cache) Types() []apis.TypeName {
	seen := make(map[apis.TypeName]struct{})
	for _, item := range c.store.Items() {
		if e, ok := item.Object.(apis.CacheEntry); ok {
			seen[e.Key.Type] = struct{}{}
		}
	}
	out := make([]apis.TypeName, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of live entries.
func (c *cache) Len() int {
	return len(c.store.Items())
}

// storeKey maps a CacheKey onto the go-cache string key space.
func storeKey(k apis.CacheKey) string {
	var b strings.Builder
	b.Grow(len(k.Type) + 17)
	b.WriteString(string(k.Type))
	b.WriteByte(0)
	b.WriteString(strconv.FormatUint(xxhash.Sum64String(k.Tags), 16))
	return b.String()
}
