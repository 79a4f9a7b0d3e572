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

package vrx

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/registrar"
	"dirpx.dev/vrx/resolver"
	"dirpx.dev/vrx/typeinfo"
)

var (
	// ErrClosed is returned by operations on a closed Service.
	ErrClosed = errors.New("vrx: service is closed")
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("vrx: builder returned nil registry")
	// ErrNilCache is returned when a builder returns a nil cache.
	ErrNilCache = errors.New("vrx: builder returned nil cache")
)

// Service owns a registry, its resolution cache, the resolver reading them
// and the registrar mutating them. It is safe for concurrent use.
type Service struct {
	opts    options
	learned *typeinfo.Hierarchy
	hier    apis.Hierarchy

	// mu is shared by resolver and registrar; see resolver.WithLock.
	mu sync.RWMutex
	// buildMu serializes Reconfigure so we never publish partially-built
	// snapshots.
	buildMu sync.Mutex
	st      atomic.Pointer[state]
	closed  atomic.Bool
}

// state is an immutable snapshot published atomically via st.Store; never
// mutate fields of a published state.
type state struct {
	cfg   apis.Config
	reg   apis.Registry
	cache apis.Cache
	res   *resolver.Resolver
	rgs   *registrar.Registrar
}

// New creates a Service. The registry is built from the source lazily, on
// first use.
func New(opts ...Option) *Service {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Service{opts: o, learned: typeinfo.NewHierarchy(o.namer)}

	var hs []apis.Hierarchy
	if o.hier != nil {
		hs = append(hs, o.hier)
	}
	if h, ok := o.src.(apis.Hierarchy); ok {
		hs = append(hs, h)
	}
	hs = append(hs, s.learned)
	s.hier = typeinfo.Compose(hs...)

	s.st.Store(s.build(o.cfg, nil))
	return s
}

// build assembles a state for cfg. A non-nil preg is migrated into the new
// registry and ropts carry its build status.
func (s *Service) build(cfg apis.Config, preg apis.Registry, ropts ...registrar.Option) *state {
	b := s.opts.bld
	reg := b.BuildRegistry(cfg, preg)
	if reg == nil {
		panic(ErrNilRegistry)
	}
	c := b.BuildCache(cfg)
	if c == nil {
		panic(ErrNilCache)
	}

	ropts = append(ropts,
		registrar.WithLock(&s.mu),
		registrar.WithLogger(s.opts.log.WithName("registrar")),
		registrar.WithMetrics(s.opts.metrics),
		registrar.WithTracerProvider(s.opts.tp),
	)
	rgs := registrar.New(reg, c, s.opts.src, ropts...)
	res := resolver.New(reg, c, s.hier,
		resolver.WithTiers(b.BuildTiers(cfg)...),
		resolver.WithLock(&s.mu),
		resolver.WithLogger(s.opts.log.WithName("resolver")),
		resolver.WithMetrics(s.opts.metrics),
		resolver.WithTracerProvider(s.opts.tp),
		resolver.WithEnsure(rgs.EnsureBuilt),
	)
	return &state{cfg: cfg, reg: reg, cache: c, res: res, rgs: rgs}
}

// Config returns the active configuration.
func (s *Service) Config() apis.Config {
	return s.st.Load().cfg
}

// Reconfigure applies cfg. Registered descriptors are kept; the resolution
// cache starts empty. Mutations racing with Reconfigure may land in the
// previous snapshot and be lost.
func (s *Service) Reconfigure(cfg apis.Config) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	prev := s.st.Load()
	gen, at := prev.rgs.Generation()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Store(s.build(cfg, prev.reg, registrar.WithGeneration(gen, at)))
}

// TypeName returns the model type name of v and learns its embedding
// hierarchy.
func (s *Service) TypeName(v any) apis.TypeName {
	name := s.opts.namer.Name(v)
	if name != "" {
		s.learned.LearnValue(v)
	}
	return name
}

// Resolve resolves the descriptor for item under tags and applies hook.
// The model type comes from TypeName. A nil item resolves to hook(nil).
func (s *Service) Resolve(item any, tags []string, hook apis.OverrideFunc) *apis.Descriptor {
	return s.ResolveContext(context.Background(), item, tags, hook)
}

// ResolveContext is Resolve with a parent context for tracing.
func (s *Service) ResolveContext(ctx context.Context, item any, tags []string, hook apis.OverrideFunc) *apis.Descriptor {
	var t apis.TypeName
	if item != nil {
		t = s.TypeName(item)
	}
	if t == "" || s.closed.Load() {
		return unresolved(tags, item, hook)
	}
	return s.st.Load().res.ResolveTypeContext(ctx, t, tags, item, hook)
}

func unresolved(tags []string, item any, hook apis.OverrideFunc) *apis.Descriptor {
	if hook == nil {
		return nil
	}
	if tags == nil {
		tags = []string{}
	}
	return hook(nil, tags, item)
}

// ResolveType resolves the descriptor for model type t under tags and
// applies hook with item.
func (s *Service) ResolveType(t apis.TypeName, tags []string, item any, hook apis.OverrideFunc) *apis.Descriptor {
	return s.ResolveTypeContext(context.Background(), t, tags, item, hook)
}

// ResolveTypeContext is ResolveType with a parent context for tracing.
func (s *Service) ResolveTypeContext(ctx context.Context, t apis.TypeName, tags []string, item any, hook apis.OverrideFunc) *apis.Descriptor {
	if s.closed.Load() {
		return unresolved(tags, item, hook)
	}
	return s.st.Load().res.ResolveTypeContext(ctx, t, tags, item, hook)
}

// Register adds d for modelType; see registrar.Registrar.Register. The
// registry is built first so the lazy build does not discard d.
func (s *Service) Register(modelType apis.TypeName, d *apis.Descriptor, replace bool) bool {
	if s.closed.Load() {
		return false
	}
	rgs := s.st.Load().rgs
	rgs.EnsureBuilt()
	return rgs.Register(modelType, d, replace)
}

// Add registers a scanned candidate; see registrar.Registrar.Add. Like
// Register, the registry is built first.
func (s *Service) Add(c apis.Candidate, replace bool) *apis.Descriptor {
	if s.closed.Load() {
		return nil
	}
	rgs := s.st.Load().rgs
	rgs.EnsureBuilt()
	return rgs.Add(c, replace)
}

// Rebuild rebuilds the registry from the source when never built or force.
func (s *Service) Rebuild(force bool) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.st.Load().rgs.Rebuild(force)
}

// Ancestors returns the ancestor chain of t, nearest first, as seen by
// resolution.
func (s *Service) Ancestors(t apis.TypeName) []apis.TypeName {
	return s.hier.AncestorChain(t)
}

// Building reports whether a rebuild is in flight.
func (s *Service) Building() bool {
	return s.st.Load().rgs.Building()
}

// DescriptorsFor yields the descriptors registered exactly for t, by path.
func (s *Service) DescriptorsFor(t apis.TypeName) iter.Seq[*apis.Descriptor] {
	return s.st.Load().rgs.DescriptorsFor(t)
}

// Info is a diagnostic snapshot of a Service.
type Info struct {
	// Generation identifies the last completed rebuild; empty before the first.
	Generation string
	// Built is when that rebuild finished.
	Built time.Time
	// Building is set while a rebuild is in flight.
	Building bool
	// Descriptors are the registered descriptors, by path.
	Descriptors []*apis.Descriptor
	// Resolved are the cached resolutions, by type then tags.
	Resolved []apis.CacheEntry
}

// Info returns a diagnostic snapshot. It does not trigger a build.
func (s *Service) Info() Info {
	st := s.st.Load()
	gen, at := st.rgs.Generation()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Info{
		Generation:  gen,
		Built:       at,
		Building:    st.rgs.Building(),
		Descriptors: st.reg.Entries(),
		Resolved:    st.cache.Entries(),
	}
}

// Close releases the registry and cache. Later resolutions return nil
// (after the hook) and mutations fail.
func (s *Service) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	st := s.st.Load()
	s.mu.Lock()
	defer s.mu.Unlock()
	st.reg.Reset()
	st.cache.Reset()
	return nil
}
