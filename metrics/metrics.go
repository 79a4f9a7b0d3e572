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

// Package metrics exposes Prometheus collectors for view resolution.
//
// A Recorder is created per service so isolated instances (tests, several
// services in one process) do not collide on registration. All Recorder
// methods are nil-safe: a nil *Recorder records nothing.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace prefixes every metric name.
	Namespace = "vrx"

	subsystemResolver  = "resolver"
	subsystemCache     = "cache"
	subsystemRegistrar = "registrar"
)

// Resolution outcomes.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeComputed = "computed"
	OutcomeNone     = "none"
)

// Registration results.
const (
	RegistrationAdded    = "added"
	RegistrationReplaced = "replaced"
	RegistrationRejected = "rejected"
	RegistrationDropped  = "dropped"
)

// Rebuild results.
const (
	RebuildOK      = "ok"
	RebuildError   = "error"
	RebuildSkipped = "skipped"
)

// LatencyBuckets for in-memory resolution, from 1µs to 100ms.
var LatencyBuckets = []float64{
	0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1,
}

// Recorder owns one set of collectors.
type Recorder struct {
	resolutions   *prometheus.CounterVec
	tierHits      *prometheus.CounterVec
	latency       prometheus.Histogram
	evictions     prometheus.Counter
	registrations *prometheus.CounterVec
	rebuilds      *prometheus.CounterVec
	registrySize  prometheus.Gauge
}

// New creates a Recorder with unregistered collectors.
func New() *Recorder {
	return &Recorder{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: subsystemResolver,
				Name:      "resolutions_total",
				Help:      "Counter of view resolutions broken out by outcome.",
			},
			[]string{"outcome"},
		),
		tierHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: subsystemResolver,
				Name:      "tier_matches_total",
				Help:      "Counter of computed resolutions broken out by the tier that matched.",
			},
			[]string{"tier"},
		),
		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: subsystemResolver,
				Name:      "resolution_duration_seconds",
				Help:      "Latency of view resolutions including the cache lookup.",
				Buckets:   LatencyBuckets,
			},
		),
		evictions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: subsystemCache,
				Name:      "evictions_total",
				Help:      "Counter of cache entries evicted by descriptor replacement.",
			},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: subsystemRegistrar,
				Name:      "registrations_total",
				Help:      "Counter of descriptor registrations broken out by result.",
			},
			[]string{"result"},
		),
		rebuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: subsystemRegistrar,
				Name:      "rebuilds_total",
				Help:      "Counter of registry rebuilds broken out by result.",
			},
			[]string{"result"},
		),
		registrySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: subsystemRegistrar,
				Name:      "descriptors",
				Help:      "Number of descriptors in the registry.",
			},
		),
	}
}

// Collectors returns every collector of r.
func (r *Recorder) Collectors() []prometheus.Collector {
	if r == nil {
		return nil
	}
	return []prometheus.Collector{
		r.resolutions, r.tierHits, r.latency, r.evictions,
		r.registrations, r.rebuilds, r.registrySize,
	}
}

// Register registers every collector of r with reg.
func (r *Recorder) Register(reg prometheus.Registerer) error {
	var errs []error
	for _, c := range r.Collectors() {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordResolution counts one resolution and its latency.
func (r *Recorder) RecordResolution(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.resolutions.WithLabelValues(outcome).Inc()
	r.latency.Observe(d.Seconds())
}

// RecordTier counts a computed resolution matched by tier.
func (r *Recorder) RecordTier(tier string) {
	if r == nil {
		return
	}
	r.tierHits.WithLabelValues(tier).Inc()
}

// RecordEvictions counts n evicted cache entries.
func (r *Recorder) RecordEvictions(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.evictions.Add(float64(n))
}

// RecordRegistration counts one registration attempt.
func (r *Recorder) RecordRegistration(result string) {
	if r == nil {
		return
	}
	r.registrations.WithLabelValues(result).Inc()
}

// RecordRebuild counts one rebuild attempt.
func (r *Recorder) RecordRebuild(result string) {
	if r == nil {
		return
	}
	r.rebuilds.WithLabelValues(result).Inc()
}

// SetRegistrySize publishes the registry size.
func (r *Recorder) SetRegistrySize(n int) {
	if r == nil {
		return
	}
	r.registrySize.Set(float64(n))
}
