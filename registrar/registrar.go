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

// Package registrar owns the mutation surface of a registry and its
// resolution cache: single registrations, incremental candidates and full
// rebuilds from a Source.
package registrar

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/logging"
	"dirpx.dev/vrx/metrics"
	"dirpx.dev/vrx/registry"
)

// TracerName is the instrumentation scope of registrar spans.
const TracerName = "dirpx.dev/vrx/registrar"

// DefaultRetryBackoff is how long EnsureBuilt waits after a failed scan
// before scanning the source again.
const DefaultRetryBackoff = 5 * time.Second

// Option configures a Registrar.
type Option func(*Registrar)

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(r *Registrar) { r.log = l }
}

// WithLock shares mu with the resolver. Every mutation holds mu exclusively.
func WithLock(mu *sync.RWMutex) Option {
	return func(r *Registrar) {
		if mu != nil {
			r.mu = mu
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Registrar) { r.metrics = m }
}

// WithTracerProvider sets the provider rebuild spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Registrar) {
		if tp != nil {
			r.tracer = tp.Tracer(TracerName)
		}
	}
}

// WithRetryBackoff sets how long EnsureBuilt waits after a failed scan.
// Zero retries on every call. Explicit rebuilds are never held back.
func WithRetryBackoff(d time.Duration) Option {
	return func(r *Registrar) {
		if d >= 0 {
			r.backoff = d
		}
	}
}

// WithGeneration marks the registry as already built by the rebuild
// identified by gen. Used when a registry is migrated into a new Registrar.
func WithGeneration(gen string, builtAt time.Time) Option {
	return func(r *Registrar) {
		if gen == "" {
			return
		}
		r.generation = gen
		r.builtAt = builtAt
		r.built.Store(true)
	}
}

// Registrar mutates a registry and keeps its cache consistent.
// It is safe for concurrent use.
type Registrar struct {
	reg   apis.Registry
	cache apis.Cache
	src   apis.Source

	mu       *sync.RWMutex
	building atomic.Bool
	built    atomic.Bool
	// failedAt is the unix nano time of the last failed scan, 0 after a
	// successful one.
	failedAt atomic.Int64
	backoff  time.Duration

	// guarded by mu
	generation string
	builtAt    time.Time

	log     logr.Logger
	metrics *metrics.Recorder
	tracer  trace.Tracer
}

// New constructs a Registrar over reg and c, rebuilding from src.
//
// Without a source there is nothing to rebuild from: Rebuild keeps the
// registered descriptors and only resets the cache.
func New(reg apis.Registry, c apis.Cache, src apis.Source, opts ...Option) *Registrar {
	r := &Registrar{
		reg:     reg,
		cache:   c,
		src:     src,
		mu:      &sync.RWMutex{},
		backoff: DefaultRetryBackoff,
		log:     logr.Discard(),
		tracer:  otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds d for modelType.
//
// It returns false for a nil descriptor, an empty path or an empty type, and
// when a rebuild is in flight (the registration is dropped). If the path is
// unused, d.ModelType is set and d is inserted. If the path is used, d is
// inserted only when replace is set: cache entries for modelType are evicted
// and the stale descriptor is swapped out. A rejected d is never modified.
func (r *Registrar) Register(modelType apis.TypeName, d *apis.Descriptor, replace bool) bool {
	if d == nil || d.Path == "" || modelType == "" {
		r.metrics.RecordRegistration(metrics.RegistrationRejected)
		return false
	}
	if r.building.Load() {
		r.metrics.RecordRegistration(metrics.RegistrationDropped)
		r.log.V(logging.VERBOSE).Info("Dropped registration during rebuild", "path", d.Path, "type", modelType)
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.reg.Lookup(d.Path)
	if !exists {
		d.ModelType = modelType
		r.reg.Add(d)
		r.metrics.RecordRegistration(metrics.RegistrationAdded)
		r.metrics.SetRegistrySize(r.reg.Count())
		return true
	}
	if !replace {
		r.metrics.RecordRegistration(metrics.RegistrationRejected)
		r.log.V(logging.DEBUG).Info("View path already registered", "path", d.Path, "existing", old.ModelType)
		return false
	}

	n := r.cache.EvictType(modelType)
	if old.ModelType != modelType {
		n += r.cache.EvictType(old.ModelType)
	}
	d.ModelType = modelType
	r.reg.Replace(d)
	r.metrics.RecordEvictions(n)
	r.metrics.RecordRegistration(metrics.RegistrationReplaced)
	r.metrics.SetRegistrySize(r.reg.Count())
	r.log.V(logging.DEBUG).Info("Replaced view descriptor", "path", d.Path, "type", modelType, "evicted", n)
	return true
}

// Add registers one scanned candidate under its own model type and returns
// the accepted descriptor, or nil if the candidate is malformed or was not
// registered. Like Register it does not build the registry: a first build
// afterwards replaces the registry with the source contents.
func (r *Registrar) Add(c apis.Candidate, replace bool) *apis.Descriptor {
	d := c.Descriptor
	if err := registry.Validate(d); err != nil {
		r.log.V(1).Info("Skipping view candidate", "candidate", c.Type, "reason", err.Error())
		return nil
	}
	if !r.Register(d.ModelType, d, replace) {
		return nil
	}
	return d
}

// Rebuild repopulates the registry from the source when it was never built
// or force is set. Concurrent calls while a rebuild runs return nil without
// doing anything.
//
// The source is scanned before anything is cleared: a scan error leaves the
// registry and cache as they were and is returned.
func (r *Registrar) Rebuild(force bool) error {
	return r.RebuildContext(context.Background(), force)
}

// RebuildContext is Rebuild with a parent context for tracing.
func (r *Registrar) RebuildContext(ctx context.Context, force bool) error {
	if r.built.Load() && !force {
		return nil
	}
	if !r.building.CompareAndSwap(false, true) {
		r.metrics.RecordRebuild(metrics.RebuildSkipped)
		return nil
	}
	defer r.building.Store(false)
	if r.built.Load() && !force {
		return nil
	}

	_, span := r.tracer.Start(ctx, "vrx.Rebuild", trace.WithAttributes(attribute.Bool("vrx.force", force)))
	defer span.End()

	var cands []apis.Candidate
	if r.src != nil {
		var err error
		if cands, err = r.src.Scan(); err != nil {
			err = fmt.Errorf("vrx(registrar): scan: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "scan failed")
			r.metrics.RecordRebuild(metrics.RebuildError)
			r.failedAt.Store(time.Now().UnixNano())
			return err
		}
	}

	accepted := make([]*apis.Descriptor, 0, len(cands))
	skipped := 0
	for _, c := range cands {
		if err := registry.Validate(c.Descriptor); err != nil {
			skipped++
			r.log.V(1).Info("Skipping view candidate", "candidate", c.Type, "reason", err.Error())
			continue
		}
		accepted = append(accepted, c.Descriptor)
	}

	r.mu.Lock()
	if r.src != nil {
		r.reg.Reset()
		for _, d := range accepted {
			if !r.reg.Add(d) {
				skipped++
				r.log.V(1).Info("Skipping duplicate view path", "path", d.Path, "type", d.ModelType)
			}
		}
	}
	r.cache.Reset()
	gen := uuid.NewString()
	r.generation = gen
	r.builtAt = time.Now()
	count := r.reg.Count()
	r.built.Store(true)
	r.failedAt.Store(0)
	r.mu.Unlock()

	span.SetAttributes(
		attribute.String("vrx.generation", gen),
		attribute.Int("vrx.descriptors", count),
		attribute.Int("vrx.skipped", skipped),
	)
	r.metrics.RecordRebuild(metrics.RebuildOK)
	r.metrics.SetRegistrySize(count)
	r.log.V(logging.VERBOSE).Info("Rebuilt view registry", "generation", gen, "descriptors", count, "skipped", skipped, "force", force)
	return nil
}

// EnsureBuilt builds the registry if it was never built. Errors are logged.
// After a failed scan it does nothing until the retry backoff has elapsed.
func (r *Registrar) EnsureBuilt() {
	if r.built.Load() {
		return
	}
	if f := r.failedAt.Load(); f != 0 && time.Since(time.Unix(0, f)) < r.backoff {
		return
	}
	if err := r.Rebuild(false); err != nil {
		r.log.Error(err, "Failed to build view registry")
	}
}

// DescriptorsFor yields the descriptors whose model type is exactly t, in
// path order. Iterating builds the registry if needed.
func (r *Registrar) DescriptorsFor(t apis.TypeName) iter.Seq[*apis.Descriptor] {
	return func(yield func(*apis.Descriptor) bool) {
		r.EnsureBuilt()
		r.mu.RLock()
		list := r.reg.ForType(t)
		r.mu.RUnlock()
		for _, d := range list {
			if !yield(d) {
				return
			}
		}
	}
}

// Building reports whether a rebuild is in flight.
func (r *Registrar) Building() bool { return r.building.Load() }

// Built reports whether the registry was built at least once.
func (r *Registrar) Built() bool { return r.built.Load() }

// Generation returns the id of the last completed rebuild and when it
// finished. Both are zero before the first rebuild.
func (r *Registrar) Generation() (string, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation, r.builtAt
}
