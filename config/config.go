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

package config

import (
	"time"

	"dirpx.dev/vrx/apis"
)

const (
	// DefaultCachePolicy represents the default for CachePolicy.
	// Resolutions are memoized until a replace or a rebuild evicts them.
	DefaultCachePolicy = apis.CacheMemo
	// DefaultCacheTTL represents the default for CacheTTL.
	// Only used when the policy is apis.CacheTTL.
	DefaultCacheTTL = 10 * time.Minute
	// DefaultCacheCleanupInterval represents the default for CacheCleanupInterval.
	DefaultCacheCleanupInterval = 30 * time.Minute
	// DefaultNormalizeTagKeys represents the default for NormalizeTagKeys.
	// When false, the tag sequence is keyed exactly as supplied.
	DefaultNormalizeTagKeys = false
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure TTL is usable.
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CacheCleanupInterval < 0 {
		cfg.CacheCleanupInterval = 0
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		CachePolicy:          DefaultCachePolicy,
		CacheTTL:             DefaultCacheTTL,
		CacheCleanupInterval: DefaultCacheCleanupInterval,
		NormalizeTagKeys:     DefaultNormalizeTagKeys,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithCachePolicy sets the CachePolicy option.
func WithCachePolicy(p apis.CachePolicy) Option {
	return func(c *apis.Config) {
		c.CachePolicy = p
	}
}

// WithCacheTTL sets the CacheTTL option.
// A non-positive value resets to the default.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *apis.Config) {
		if ttl <= 0 {
			c.CacheTTL = DefaultCacheTTL
			return
		}
		c.CacheTTL = ttl
	}
}

// WithCacheCleanupInterval sets the CacheCleanupInterval option.
// Zero or negative disables the janitor.
func WithCacheCleanupInterval(d time.Duration) Option {
	return func(c *apis.Config) {
		if d < 0 {
			d = 0
		}
		c.CacheCleanupInterval = d
	}
}

// WithNormalizeTagKeys sets the NormalizeTagKeys option.
func WithNormalizeTagKeys(normalize bool) Option {
	return func(c *apis.Config) {
		c.NormalizeTagKeys = normalize
	}
}
