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

// Package watch keeps a registry in sync with a manifest directory.
//
// File system events are debounced. When the quiet period ends, changed
// manifests that parse are applied incrementally with replace semantics.
// Removals, renames, parse failures and manifests declaring types trigger a
// full rebuild instead.
package watch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"go.trai.ch/zerr"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/logging"
	"dirpx.dev/vrx/source/manifest"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrCreateWatcher is returned when the fsnotify watcher cannot be created.
	ErrCreateWatcher = errors.New("vrx(watch): creating fsnotify watcher")
	// ErrWatchDir is returned when a directory cannot be watched.
	ErrWatchDir = errors.New("vrx(watch): watching directory")
	// ErrStarted is returned by Start on a watcher that was already started.
	ErrStarted = errors.New("vrx(watch): watcher already started")
)

// Target is the registry side a Watcher updates.
type Target interface {
	Add(c apis.Candidate, replace bool) *apis.Descriptor
	Rebuild(force bool) error
	Building() bool
}

// Loader parses a single manifest.
type Loader interface {
	Dir() string
	Load(path string) (cands []apis.Candidate, declaresTypes bool, err error)
}

// Ensure the manifest source is a Loader.
var _ Loader = (*manifest.Source)(nil)

// Event reports one applied batch of changes.
type Event struct {
	// Files are the changed manifest files, sorted.
	Files []string
	// Rebuilt is set when the batch caused a full rebuild.
	Rebuilt bool
	// Added counts descriptors applied incrementally.
	Added int
	// Err is the rebuild error, if any.
	Err error
}

// Config holds watcher configuration options.
type Config struct {
	Debounce time.Duration
	Logger   logr.Logger
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig() Config {
	return Config{Debounce: DefaultDebounce, Logger: logr.Discard()}
}

// Watcher applies manifest changes to a Target.
type Watcher struct {
	fsw      *fsnotify.Watcher
	target   Target
	loader   Loader
	debounce time.Duration
	log      logr.Logger

	events  chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
	once    sync.Once
}

// New creates a Watcher for the directory of loader.
func New(cfg Config, target Target, loader Loader) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, ErrCreateWatcher.Error())
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger.GetSink() == nil {
		cfg.Logger = logr.Discard()
	}
	return &Watcher{
		fsw:      fsw,
		target:   target,
		loader:   loader,
		debounce: cfg.Debounce,
		log:      cfg.Logger,
		events:   make(chan Event, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the manifest directory and its existing subdirectories.
// The returned channel receives an Event per applied batch; events are
// dropped while the channel is full.
func (w *Watcher) Start() (<-chan Event, error) {
	if w.started {
		return nil, ErrStarted
	}
	if err := w.addTree(w.loader.Dir()); err != nil {
		return nil, err
	}
	w.started = true
	w.wg.Add(1)
	go w.loop()
	return w.events, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return zerr.With(zerr.Wrap(err, ErrWatchDir.Error()), "dir", path)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return zerr.With(zerr.Wrap(err, ErrWatchDir.Error()), "dir", path)
		}
		return nil
	})
}

// batch accumulates the changes of one debounce window.
type batch struct {
	files   map[string]bool
	rebuild bool
}

func (b *batch) empty() bool { return len(b.files) == 0 && !b.rebuild }

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	pending := batch{files: make(map[string]bool)}

	arm := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.collect(event, &pending) {
				arm()
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending.empty() {
				continue
			}
			// A rebuild started elsewhere owns the registry; retry later.
			if w.target.Building() {
				timer.Reset(w.debounce)
				continue
			}
			ev := w.apply(pending)
			pending = batch{files: make(map[string]bool)}
			select {
			case w.events <- ev:
			default:
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error(err, "Manifest watcher error")

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// collect records event in b and reports whether it is relevant.
func (w *Watcher) collect(event fsnotify.Event, b *batch) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Error(err, "Failed to watch new directory", "dir", event.Name)
			}
			b.rebuild = true
			return true
		}
	}
	if !manifest.IsManifest(event.Name) {
		// A removed or renamed directory may have held manifests.
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			b.rebuild = true
			return true
		}
		return false
	}
	b.files[event.Name] = true
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		b.rebuild = true
	}
	return true
}

// apply runs one batch against the target.
func (w *Watcher) apply(b batch) Event {
	ev := Event{Files: make([]string, 0, len(b.files))}
	for f := range b.files {
		ev.Files = append(ev.Files, f)
	}
	slices.Sort(ev.Files)

	rebuild := b.rebuild
	var staged []apis.Candidate
	if !rebuild {
		for _, f := range ev.Files {
			cands, declaresTypes, err := w.loader.Load(f)
			if err != nil {
				w.log.V(logging.VERBOSE).Info("Manifest reload failed, rebuilding", "file", f, "reason", err.Error())
				rebuild = true
				break
			}
			if declaresTypes {
				rebuild = true
				break
			}
			staged = append(staged, cands...)
		}
	}

	if rebuild {
		ev.Rebuilt = true
		ev.Err = w.target.Rebuild(true)
		if ev.Err != nil {
			w.log.Error(ev.Err, "Failed to rebuild view registry", "files", ev.Files)
		}
		return ev
	}

	for _, c := range staged {
		if w.target.Add(c, true) != nil {
			ev.Added++
		}
	}
	w.log.V(logging.VERBOSE).Info("Applied manifest changes", "files", ev.Files, "added", ev.Added)
	return ev
}
