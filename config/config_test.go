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

package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/config"
)

func TestDefaultConfigValues(t *testing.T) {
	got := config.DefaultConfig()

	if got.CachePolicy != config.DefaultCachePolicy {
		t.Fatalf("CachePolicy = %v, want %v", got.CachePolicy, config.DefaultCachePolicy)
	}
	if got.CacheTTL != config.DefaultCacheTTL {
		t.Fatalf("CacheTTL = %v, want %v", got.CacheTTL, config.DefaultCacheTTL)
	}
	if got.NormalizeTagKeys != config.DefaultNormalizeTagKeys {
		t.Fatalf("NormalizeTagKeys = %v, want %v", got.NormalizeTagKeys, config.DefaultNormalizeTagKeys)
	}
}

func TestNewConfig_NoOptions_EqualsDefault(t *testing.T) {
	def := config.DefaultConfig()
	got := config.NewConfig()
	if got != def {
		t.Fatalf("NewConfig() = %+v, want default %+v", got, def)
	}
}

func TestWithCacheTTL_NonPositive_ResetsToDefault(t *testing.T) {
	c := config.NewConfig(config.WithCacheTTL(-time.Second))
	if c.CacheTTL != config.DefaultCacheTTL {
		t.Fatalf("CacheTTL = %v, want default %v", c.CacheTTL, config.DefaultCacheTTL)
	}
}

func TestWithCacheCleanupInterval_NegativeDisables(t *testing.T) {
	c := config.NewConfig(config.WithCacheCleanupInterval(-time.Second))
	if c.CacheCleanupInterval != 0 {
		t.Fatalf("CacheCleanupInterval = %v, want 0", c.CacheCleanupInterval)
	}
}

func TestOptionsOrder_LastWins(t *testing.T) {
	c := config.NewConfig(
		config.WithCachePolicy(apis.CacheNone),
		config.WithCachePolicy(apis.CacheTTL),
		config.WithCacheTTL(time.Second),
		config.WithCacheTTL(2*time.Second),
		config.WithNormalizeTagKeys(false),
		config.WithNormalizeTagKeys(true),
	)

	if c.CachePolicy != apis.CacheTTL {
		t.Errorf("CachePolicy = %v, want ttl (last option wins)", c.CachePolicy)
	}
	if c.CacheTTL != 2*time.Second {
		t.Errorf("CacheTTL = %v, want 2s (last option wins)", c.CacheTTL)
	}
	if !c.NormalizeTagKeys {
		t.Errorf("NormalizeTagKeys = %v, want true (last option wins)", c.NormalizeTagKeys)
	}
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	f, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := f.Config(); got != config.DefaultConfig() {
		t.Fatalf("Config() = %+v, want default %+v", got, config.DefaultConfig())
	}
	if f.Views.Dir != "views" || f.Views.Debounce != config.DefaultDebounce {
		t.Fatalf("Views = %+v", f.Views)
	}
}

func TestLoad_YAML(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader(`
cache:
  policy: TTL
  ttl: 5m
  normalize_tag_keys: true
views:
  dir: /srv/views
  watch: true
  debounce: 0s
log:
  level: 4
`))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	f, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	c := f.Config()
	if c.CachePolicy != apis.CacheTTL || c.CacheTTL != 5*time.Minute || !c.NormalizeTagKeys {
		t.Fatalf("Config() = %+v", c)
	}
	if f.Views.Dir != "/srv/views" || !f.Views.Watch {
		t.Fatalf("Views = %+v", f.Views)
	}
	if f.Views.Debounce != config.DefaultDebounce {
		t.Fatalf("Debounce = %v, want default for zero", f.Views.Debounce)
	}
	if f.Log.Level != 4 {
		t.Fatalf("Log.Level = %d, want 4", f.Log.Level)
	}
}

func TestLoad_InvalidPolicy(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set(config.KeyCachePolicy, "lru")

	if _, err := config.Load(v); err == nil || !strings.Contains(err.Error(), config.KeyCachePolicy) {
		t.Fatalf("Load() error = %v, want one naming %s", err, config.KeyCachePolicy)
	}
}
