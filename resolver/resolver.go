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

// Package resolver implements the resolution engine: a cache fast path in
// front of an ordered chain of tiers.
package resolver

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/logging"
	"dirpx.dev/vrx/metrics"
	"dirpx.dev/vrx/tier"
)

// TracerName is the instrumentation scope of resolver spans.
const TracerName = "dirpx.dev/vrx/resolver"

// Span attribute keys.
const (
	AttrType     = attribute.Key("vrx.type")
	AttrTags     = attribute.Key("vrx.tags")
	AttrCacheHit = attribute.Key("vrx.cache_hit")
	AttrTier     = attribute.Key("vrx.tier")
	AttrPath     = attribute.Key("vrx.path")
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithTiers replaces the tier chain. Nil tiers are ignored.
func WithTiers(tiers ...apis.Tier) Option {
	return func(r *Resolver) {
		out := make([]apis.Tier, 0, len(tiers))
		for _, t := range tiers {
			if t != nil {
				out = append(out, t)
			}
		}
		r.tiers = out
	}
}

// WithLogger sets the logger used for miss diagnostics.
func WithLogger(l logr.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithLock shares mu with the registry mutators. Computation and the cache
// store run under mu.RLock.
func WithLock(mu *sync.RWMutex) Option {
	return func(r *Resolver) {
		if mu != nil {
			r.mu = mu
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithTracerProvider sets the provider resolver spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Resolver) {
		if tp != nil {
			r.tracer = tp.Tracer(TracerName)
		}
	}
}

// WithEnsure installs a hook run before every resolution, typically the
// registrar's lazy build.
func WithEnsure(fn func()) Option {
	return func(r *Resolver) { r.ensure = fn }
}

// Resolver is an apis.Resolver. It is safe for concurrent use.
type Resolver struct {
	reg   apis.Registry
	cache apis.Cache
	hier  apis.Hierarchy
	tiers []apis.Tier

	mu      *sync.RWMutex
	group   singleflight.Group
	log     logr.Logger
	metrics *metrics.Recorder
	tracer  trace.Tracer
	ensure  func()
}

// Ensure Resolver implements apis.Resolver.
var _ apis.Resolver = (*Resolver)(nil)

// New constructs a Resolver over reg and c. A nil hierarchy means no type
// has ancestors. The tier chain defaults to tier.Default().
func New(reg apis.Registry, c apis.Cache, h apis.Hierarchy, opts ...Option) *Resolver {
	if h == nil {
		h = apis.HierarchyFunc(func(apis.TypeName) []apis.TypeName { return nil })
	}
	r := &Resolver{
		reg:    reg,
		cache:  c,
		hier:   h,
		tiers:  tier.Default(),
		mu:     &sync.RWMutex{},
		log:    logr.Discard(),
		tracer: otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tiers returns the tier chain in evaluation order.
func (r *Resolver) Tiers() []apis.Tier {
	return append([]apis.Tier(nil), r.tiers...)
}

// ResolveType resolves the descriptor for t and tags, then applies hook.
func (r *Resolver) ResolveType(t apis.TypeName, tags []string, item any, hook apis.OverrideFunc) *apis.Descriptor {
	return r.ResolveTypeContext(context.Background(), t, tags, item, hook)
}

// ResolveTypeContext is ResolveType with a parent context for tracing.
//
// The cached (or computed) result is the base result; hook, when non-nil,
// runs on every call, cache hits included, and its result is never cached.
func (r *Resolver) ResolveTypeContext(ctx context.Context, t apis.TypeName, tags []string, item any, hook apis.OverrideFunc) *apis.Descriptor {
	if tags == nil {
		tags = []string{}
	}
	start := time.Now()
	_, span := r.tracer.Start(ctx, "vrx.Resolve", trace.WithAttributes(
		AttrType.String(string(t)),
		AttrTags.StringSlice(tags),
	))
	defer span.End()

	if r.ensure != nil {
		r.ensure()
	}

	key := r.cache.Key(t, tags)
	d, hit := r.cache.Get(key)
	span.SetAttributes(AttrCacheHit.Bool(hit))

	outcome := metrics.OutcomeCacheHit
	if !hit {
		v, _, _ := r.group.Do(flightKey(key), func() (any, error) {
			return r.compute(key, t, tags), nil
		})
		res, _ := v.(result)
		d = res.d
		outcome = metrics.OutcomeComputed
		if res.tier != "" {
			span.SetAttributes(AttrTier.String(res.tier))
		}
	}

	if d == nil {
		outcome = metrics.OutcomeNone
		r.log.Info("No view descriptor resolved", "type", t, "registered", r.reg.HasModelType(t), "cachedTypes", r.cache.Types())
	} else {
		span.SetAttributes(AttrPath.String(d.Path))
		r.log.V(logging.TRACE).Info("Resolved view descriptor", "type", t, "tags", tags, "path", d.Path, "cached", hit)
	}
	r.metrics.RecordResolution(outcome, time.Since(start))

	if hook != nil {
		d = hook(d, tags, item)
	}
	return d
}

type result struct {
	d    *apis.Descriptor
	tier string
}

// compute runs the tiers under the shared read lock and stores a non-nil
// result before releasing it, so a concurrent replace either happens before
// the scan or evicts what was stored.
func (r *Resolver) compute(key apis.CacheKey, t apis.TypeName, tags []string) result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.reg.Entries()
	if len(entries) == 0 {
		return result{}
	}
	q := tier.NewQuery(t, tags, entries, r.hier.AncestorChain(t))
	for _, tr := range r.tiers {
		d, ok := tr.TryResolve(q)
		if !ok || d == nil {
			continue
		}
		r.cache.Put(key, tags, d)
		r.metrics.RecordTier(tr.Name())
		r.log.V(logging.DEBUG).Info("Computed view descriptor", "type", t, "tier", tr.Name(), "path", d.Path)
		return result{d: d, tier: tr.Name()}
	}
	return result{}
}

func flightKey(k apis.CacheKey) string {
	return string(k.Type) + "\x00" + k.Tags
}
