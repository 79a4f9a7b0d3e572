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

package registrar_test

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/cache"
	"dirpx.dev/vrx/config"
	"dirpx.dev/vrx/metrics"
	"dirpx.dev/vrx/registrar"
	"dirpx.dev/vrx/registry"
)

func candidates(ds ...*apis.Descriptor) apis.Source {
	return apis.SourceFunc(func() ([]apis.Candidate, error) {
		out := make([]apis.Candidate, len(ds))
		for i, d := range ds {
			out[i] = apis.Candidate{Type: "candidate", Descriptor: d}
		}
		return out, nil
	})
}

func newRegistrar(src apis.Source, opts ...registrar.Option) (*registrar.Registrar, apis.Registry, apis.Cache) {
	reg := registry.New()
	c := cache.New(config.DefaultConfig())
	return registrar.New(reg, c, src, opts...), reg, c
}

func TestRegister_AddsAndAssignsModelType(t *testing.T) {
	r, reg, _ := newRegistrar(nil)
	d := &apis.Descriptor{Path: "views/article"}

	require.True(t, r.Register("Article", d, false))
	assert.Equal(t, apis.TypeName("Article"), d.ModelType)
	got, ok := reg.Lookup("views/article")
	require.True(t, ok)
	assert.Same(t, d, got)
}

func TestRegister_Rejects(t *testing.T) {
	r, reg, _ := newRegistrar(nil)

	assert.False(t, r.Register("Article", nil, false))
	assert.False(t, r.Register("Article", &apis.Descriptor{}, false))
	assert.False(t, r.Register("", &apis.Descriptor{Path: "views/a"}, false))
	assert.Zero(t, reg.Count())
}

func TestRegister_SameDescriptorTwice(t *testing.T) {
	r, reg, _ := newRegistrar(nil)
	d := &apis.Descriptor{Path: "views/article"}

	require.True(t, r.Register("Article", d, false))
	assert.False(t, r.Register("Article", d, false))
	assert.Equal(t, 1, reg.Count())

	other := &apis.Descriptor{Path: "VIEWS/ARTICLE"}
	assert.False(t, r.Register("Page", other, false))
	assert.Empty(t, other.ModelType, "rejected descriptors are untouched")
	got, _ := reg.Lookup("views/article")
	assert.Same(t, d, got)
}

func TestRegister_ReplaceEvicts(t *testing.T) {
	r, reg, c := newRegistrar(nil)
	d2 := &apis.Descriptor{Path: "b", Tags: []string{"List"}, RequireTags: true}
	page := &apis.Descriptor{Path: "p", ModelType: "Page"}
	require.True(t, r.Register("Article", d2, false))

	c.Put(c.Key("Article", []string{"List"}), []string{"List"}, d2)
	c.Put(c.Key("Article", []string{"Card", "List"}), nil, d2)
	c.Put(c.Key("Page", nil), nil, page)

	d2b := &apis.Descriptor{Path: "b", Tags: []string{"Card"}, RequireTags: true}
	require.True(t, r.Register("Article", d2b, true))

	got, _ := reg.Lookup("b")
	assert.Same(t, d2b, got)
	assert.Equal(t, 1, reg.Count())
	assert.Equal(t, []apis.TypeName{"Page"}, c.Types())
}

func TestRegister_ReplaceEvictsPreviousModelType(t *testing.T) {
	r, _, c := newRegistrar(nil)
	old := &apis.Descriptor{Path: "v"}
	require.True(t, r.Register("Content", old, false))
	c.Put(c.Key("Content", nil), nil, old)

	require.True(t, r.Register("Article", &apis.Descriptor{Path: "v"}, true))
	assert.Zero(t, c.Len())
}

func TestRegister_RetargetsSameDescriptor(t *testing.T) {
	r, reg, c := newRegistrar(nil)
	d := &apis.Descriptor{Path: "v"}
	require.True(t, r.Register("Content", d, false))
	c.Put(c.Key("Content", nil), nil, d)

	require.True(t, r.Register("Article", d, true))
	assert.Equal(t, apis.TypeName("Article"), d.ModelType)
	assert.False(t, reg.HasModelType("Content"))
	assert.True(t, reg.HasModelType("Article"))
	assert.Empty(t, reg.ForType("Content"))
	assert.Zero(t, c.Len())
}

func TestAdd(t *testing.T) {
	r, reg, _ := newRegistrar(nil)

	assert.Nil(t, r.Add(apis.Candidate{Type: "empty"}, false))
	assert.Nil(t, r.Add(apis.Candidate{Descriptor: &apis.Descriptor{Path: "v"}}, false), "no model type")

	d := &apis.Descriptor{Path: "v", ModelType: "Article"}
	assert.Same(t, d, r.Add(apis.Candidate{Descriptor: d}, false))
	assert.Nil(t, r.Add(apis.Candidate{Descriptor: &apis.Descriptor{Path: "V", ModelType: "Article"}}, false))
	assert.Equal(t, 1, reg.Count())
}

func TestRebuild_SkipsMalformedAndDuplicates(t *testing.T) {
	a := &apis.Descriptor{Path: "views/a", ModelType: "Article"}
	dup := &apis.Descriptor{Path: "VIEWS/A", ModelType: "Content"}
	src := candidates(nil, &apis.Descriptor{ModelType: "Article"}, a, dup, &apis.Descriptor{Path: "views/x"})
	r, reg, _ := newRegistrar(src)

	require.NoError(t, r.Rebuild(false))
	require.Equal(t, 1, reg.Count())
	got, _ := reg.Lookup("views/a")
	assert.Same(t, a, got, "first candidate wins")
}

func TestRebuild_OnlyOnceUnlessForced(t *testing.T) {
	scans := 0
	src := apis.SourceFunc(func() ([]apis.Candidate, error) {
		scans++
		return nil, nil
	})
	r, _, _ := newRegistrar(src)

	assert.False(t, r.Built())
	gen, at := r.Generation()
	assert.Empty(t, gen)
	assert.True(t, at.IsZero())

	require.NoError(t, r.Rebuild(false))
	require.NoError(t, r.Rebuild(false))
	assert.Equal(t, 1, scans)
	first, _ := r.Generation()

	require.NoError(t, r.Rebuild(true))
	assert.Equal(t, 2, scans)
	second, at := r.Generation()
	assert.NotEqual(t, first, second)
	assert.False(t, at.IsZero())
	assert.True(t, r.Built())
}

func TestRebuild_ResetsRegistryAndCache(t *testing.T) {
	a := &apis.Descriptor{Path: "views/a", ModelType: "Article"}
	r, reg, c := newRegistrar(candidates(a))
	require.NoError(t, r.Rebuild(false))

	require.True(t, r.Register("Page", &apis.Descriptor{Path: "views/p"}, false))
	c.Put(c.Key("Article", nil), nil, a)

	require.NoError(t, r.Rebuild(true))
	assert.Equal(t, 1, reg.Count())
	assert.Zero(t, c.Len())
}

func TestRebuild_ScanErrorKeepsState(t *testing.T) {
	boom := errors.New("boom")
	fail := false
	a := &apis.Descriptor{Path: "views/a", ModelType: "Article"}
	src := apis.SourceFunc(func() ([]apis.Candidate, error) {
		if fail {
			return nil, boom
		}
		return []apis.Candidate{{Descriptor: a}}, nil
	})
	r, reg, c := newRegistrar(src)
	require.NoError(t, r.Rebuild(false))
	gen, _ := r.Generation()
	c.Put(c.Key("Article", nil), nil, a)

	fail = true
	err := r.Rebuild(true)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, reg.Count())
	assert.Equal(t, 1, c.Len())
	after, _ := r.Generation()
	assert.Equal(t, gen, after)
}

func TestRebuild_NilSourceKeepsRegistry(t *testing.T) {
	r, reg, c := newRegistrar(nil)
	a := &apis.Descriptor{Path: "views/a"}
	require.True(t, r.Register("Article", a, false))
	c.Put(c.Key("Article", nil), nil, a)

	require.NoError(t, r.Rebuild(true))
	assert.Equal(t, 1, reg.Count())
	assert.Zero(t, c.Len())
	assert.True(t, r.Built())
}

func TestRebuild_DropsConcurrentRegistrations(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	a := &apis.Descriptor{Path: "views/a", ModelType: "Article"}
	src := apis.SourceFunc(func() ([]apis.Candidate, error) {
		close(started)
		<-release
		return []apis.Candidate{{Descriptor: a}}, nil
	})
	m := metrics.New()
	preg := prometheus.NewRegistry()
	require.NoError(t, m.Register(preg))
	r, reg, _ := newRegistrar(src, registrar.WithMetrics(m))

	var g errgroup.Group
	g.Go(func() error { return r.Rebuild(false) })
	<-started

	assert.True(t, r.Building())
	assert.False(t, r.Register("Page", &apis.Descriptor{Path: "views/p"}, false), "dropped, not queued")
	assert.NoError(t, r.Rebuild(true), "re-entrant rebuilds are no-ops")

	close(release)
	require.NoError(t, g.Wait())
	assert.False(t, r.Building())
	assert.Equal(t, 1, reg.Count())
	_, ok := reg.Lookup("views/p")
	assert.False(t, ok)

	err := testutil.GatherAndCompare(preg, strings.NewReader(`
# HELP vrx_registrar_rebuilds_total Counter of registry rebuilds broken out by result.
# TYPE vrx_registrar_rebuilds_total counter
vrx_registrar_rebuilds_total{result="ok"} 1
vrx_registrar_rebuilds_total{result="skipped"} 1
# HELP vrx_registrar_registrations_total Counter of descriptor registrations broken out by result.
# TYPE vrx_registrar_registrations_total counter
vrx_registrar_registrations_total{result="dropped"} 1
# HELP vrx_registrar_descriptors Number of descriptors in the registry.
# TYPE vrx_registrar_descriptors gauge
vrx_registrar_descriptors 1
`), "vrx_registrar_rebuilds_total", "vrx_registrar_registrations_total", "vrx_registrar_descriptors")
	assert.NoError(t, err)
}

func TestDescriptorsFor_BuildsLazily(t *testing.T) {
	a := &apis.Descriptor{Path: "views/b", ModelType: "Article"}
	b := &apis.Descriptor{Path: "views/a", ModelType: "Article"}
	c := &apis.Descriptor{Path: "views/c", ModelType: "Content"}
	r, _, _ := newRegistrar(candidates(a, b, c))

	got := slices.Collect(r.DescriptorsFor("Article"))
	assert.Equal(t, []*apis.Descriptor{b, a}, got)
	assert.True(t, r.Built())

	for d := range r.DescriptorsFor("Article") {
		assert.Same(t, b, d)
		break
	}
	assert.Empty(t, slices.Collect(r.DescriptorsFor("NewsArticle")))
}

func TestWithGeneration_MarksBuilt(t *testing.T) {
	scanned := false
	src := apis.SourceFunc(func() ([]apis.Candidate, error) {
		scanned = true
		return nil, nil
	})
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	r, _, _ := newRegistrar(src, registrar.WithGeneration("gen-1", at))

	r.EnsureBuilt()
	assert.False(t, scanned)
	gen, built := r.Generation()
	assert.Equal(t, "gen-1", gen)
	assert.Equal(t, at, built)
}

func TestEnsureBuilt_BacksOffAfterScanError(t *testing.T) {
	scans := 0
	src := apis.SourceFunc(func() ([]apis.Candidate, error) {
		scans++
		return nil, errors.New("unreadable")
	})

	r, _, _ := newRegistrar(src, registrar.WithRetryBackoff(time.Hour))
	r.EnsureBuilt()
	r.EnsureBuilt()
	for range r.DescriptorsFor("Article") {
	}
	assert.Equal(t, 1, scans)
	assert.False(t, r.Built())

	require.Error(t, r.Rebuild(false), "explicit rebuilds are not held back")
	assert.Equal(t, 2, scans)

	scans = 0
	r, _, _ = newRegistrar(src, registrar.WithRetryBackoff(0))
	r.EnsureBuilt()
	r.EnsureBuilt()
	assert.Equal(t, 2, scans)
}

func TestRebuild_Span(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	r, _, _ := newRegistrar(apis.SourceFunc(func() ([]apis.Candidate, error) {
		return nil, errors.New("unreadable")
	}), registrar.WithTracerProvider(tp))

	require.Error(t, r.Rebuild(false))
	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "vrx.Rebuild", spans[0].Name())
	assert.Equal(t, "scan failed", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1, "error recorded")
	assert.False(t, r.Built())
}
