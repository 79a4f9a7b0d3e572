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

package watch_test

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/source/manifest"
	"dirpx.dev/vrx/watch"
)

type fakeTarget struct {
	mu       sync.Mutex
	added    []*apis.Descriptor
	rebuilds int
	building atomic.Bool
}

func (f *fakeTarget) Add(c apis.Candidate, replace bool) *apis.Descriptor {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !replace || c.Descriptor == nil {
		return nil
	}
	f.added = append(f.added, c.Descriptor)
	return c.Descriptor
}

func (f *fakeTarget) Rebuild(bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rebuilds++
	return nil
}

func (f *fakeTarget) Building() bool { return f.building.Load() }

func (f *fakeTarget) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.added), f.rebuilds
}

const views = "views:\n  - path: views/a\n    model: A\n"
const typed = "types:\n  - name: B\n    extends: [A]\nviews:\n  - path: views/b\n    model: B\n"

func start(t *testing.T, dir string, target watch.Target) <-chan watch.Event {
	t.Helper()
	w, err := watch.New(watch.Config{Debounce: 50 * time.Millisecond}, target, manifest.New(dir))
	require.NoError(t, err)
	events, err := w.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	_, err = w.Start()
	require.ErrorIs(t, err, watch.ErrStarted)
	return events
}

func next(t *testing.T, events <-chan watch.Event) watch.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return watch.Event{}
	}
}

func TestWatcher_IncrementalAdd(t *testing.T) {
	dir := t.TempDir()
	target := &fakeTarget{}
	events := start(t, dir, target)

	p := filepath.Join(dir, "a.view.yaml")
	require.NoError(t, os.WriteFile(p, []byte(views), 0o600))

	ev := next(t, events)
	assert.False(t, ev.Rebuilt)
	assert.Equal(t, 1, ev.Added)
	assert.Equal(t, []string{p}, ev.Files)

	added, rebuilds := target.counts()
	assert.Equal(t, 1, added)
	assert.Zero(t, rebuilds)
}

func TestWatcher_RebuildCases(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(t *testing.T, dir string)
	}{
		{"types declared", func(t *testing.T, dir string) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "b.view.yaml"), []byte(typed), 0o600))
		}},
		{"parse failure", func(t *testing.T, dir string) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "c.view.yaml"), []byte("views: [\n"), 0o600))
		}},
		{"removal", func(t *testing.T, dir string) {
			require.NoError(t, os.Remove(filepath.Join(dir, "seed.view.yaml")))
		}},
		{"new directory", func(t *testing.T, dir string) {
			require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "seed.view.yaml"), []byte(views), 0o600))
			target := &fakeTarget{}
			events := start(t, dir, target)

			tc.mutate(t, dir)

			ev := next(t, events)
			assert.True(t, ev.Rebuilt)
			assert.NoError(t, ev.Err)
			_, rebuilds := target.counts()
			assert.Equal(t, 1, rebuilds)
		})
	}
}

func TestWatcher_WaitsForRunningBuild(t *testing.T) {
	dir := t.TempDir()
	target := &fakeTarget{}
	target.building.Store(true)
	events := start(t, dir, target)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.view.yaml"), []byte(views), 0o600))

	select {
	case <-events:
		t.Fatal("changes applied while a build was running")
	case <-time.After(300 * time.Millisecond):
	}

	target.building.Store(false)
	ev := next(t, events)
	assert.Equal(t, 1, ev.Added)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	target := &fakeTarget{}
	events := start(t, dir, target)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNew_StartFailsOnMissingDir(t *testing.T) {
	w, err := watch.New(watch.DefaultConfig(), &fakeTarget{}, manifest.New(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	assert.ErrorContains(t, err, watch.ErrWatchDir.Error())
}
