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
	"fmt"
	"time"

	"github.com/spf13/viper"

	"dirpx.dev/vrx/apis"
)

// Configuration keys understood by Load.
const (
	KeyCachePolicy          = "cache.policy"
	KeyCacheTTL             = "cache.ttl"
	KeyCacheCleanupInterval = "cache.cleanup_interval"
	KeyNormalizeTagKeys     = "cache.normalize_tag_keys"
	KeyViewsDir             = "views.dir"
	KeyViewsWatch           = "views.watch"
	KeyViewsDebounce        = "views.debounce"
	KeyLogLevel             = "log.level"
	KeyLogDevelopment       = "log.development"
)

// DefaultDebounce is the default quiet period of the manifest watcher.
const DefaultDebounce = 500 * time.Millisecond

// File is the on-disk configuration of a process embedding vrx.
type File struct {
	Cache CacheSection `mapstructure:"cache"`
	Views ViewsSection `mapstructure:"views"`
	Log   LogSection   `mapstructure:"log"`
}

// CacheSection configures the resolution cache.
type CacheSection struct {
	Policy           string        `mapstructure:"policy"`
	TTL              time.Duration `mapstructure:"ttl"`
	CleanupInterval  time.Duration `mapstructure:"cleanup_interval"`
	NormalizeTagKeys bool          `mapstructure:"normalize_tag_keys"`
}

// ViewsSection configures where view manifests live.
type ViewsSection struct {
	Dir      string        `mapstructure:"dir"`
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// LogSection configures logging. Level is a logr verbosity (0 = info).
type LogSection struct {
	Level       int  `mapstructure:"level"`
	Development bool `mapstructure:"development"`
}

// SetDefaults registers the defaults of every key on v.
func SetDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault(KeyCachePolicy, def.CachePolicy.String())
	v.SetDefault(KeyCacheTTL, def.CacheTTL)
	v.SetDefault(KeyCacheCleanupInterval, def.CacheCleanupInterval)
	v.SetDefault(KeyNormalizeTagKeys, def.NormalizeTagKeys)
	v.SetDefault(KeyViewsDir, "views")
	v.SetDefault(KeyViewsWatch, false)
	v.SetDefault(KeyViewsDebounce, DefaultDebounce)
	v.SetDefault(KeyLogLevel, 0)
	v.SetDefault(KeyLogDevelopment, false)
}

// Load decodes v into a File. Defaults must already be registered (SetDefaults).
func Load(v *viper.Viper) (File, error) {
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return File{}, fmt.Errorf("vrx(config): decoding configuration: %w", err)
	}
	if _, err := apis.ParseCachePolicy(f.Cache.Policy); err != nil {
		return File{}, fmt.Errorf("vrx(config): %s: %w", KeyCachePolicy, err)
	}
	if f.Views.Debounce <= 0 {
		f.Views.Debounce = DefaultDebounce
	}
	return f, nil
}

// Options translates the cache section into Options.
func (f File) Options() []Option {
	// Load validated the policy already; an invalid one falls back to the default.
	policy, err := apis.ParseCachePolicy(f.Cache.Policy)
	if err != nil {
		policy = DefaultCachePolicy
	}
	return []Option{
		WithCachePolicy(policy),
		WithCacheTTL(f.Cache.TTL),
		WithCacheCleanupInterval(f.Cache.CleanupInterval),
		WithNormalizeTagKeys(f.Cache.NormalizeTagKeys),
	}
}

// Config returns the apis.Config described by f.
func (f File) Config() apis.Config {
	return NewConfig(f.Options()...)
}
