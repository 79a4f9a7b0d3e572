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

package registry

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"dirpx.dev/vrx/apis"
)

var (
	// ErrNilDescriptor is returned when a nil descriptor is provided.
	ErrNilDescriptor = errors.New("vrx(registry): nil descriptor provided")
	// ErrEmptyPath is returned when a descriptor has no path.
	ErrEmptyPath = errors.New("vrx(registry): descriptor has an empty path")
	// ErrNoModelType is returned when a descriptor has no model type.
	ErrNoModelType = errors.New("vrx(registry): descriptor has no model type")
)

// Validate reports why d cannot be registered, or nil if it can.
func Validate(d *apis.Descriptor) error {
	switch {
	case d == nil:
		return ErrNilDescriptor
	case d.Path == "":
		return ErrEmptyPath
	case d.ModelType == "":
		return ErrNoModelType
	}
	return nil
}

// New constructs an empty Registry.
func New() apis.Registry {
	return &registry{
		m:      make(map[string]*apis.Descriptor),
		types:  make(map[string]apis.TypeName),
		byType: make(map[apis.TypeName]int),
	}
}

// registry is a Registry backed by a map keyed by the lower-cased path.
type registry struct {
	// mu guards every field below.
	mu sync.RWMutex
	// m maps normalized path to descriptor.
	m map[string]*apis.Descriptor
	// types records the model type each key was counted under. Callers may
	// retarget a registered descriptor before replacing it.
	types map[string]apis.TypeName
	// byType counts entries per model type.
	byType map[apis.TypeName]int
	// sorted caches m's values ordered by path; nil when stale.
	sorted []*apis.Descriptor
}

// Ensure registry implements apis.Registry.
var _ apis.Registry = (*registry)(nil)

// Add inserts d unless its path is already registered. Descriptors without a
// path are rejected.
func (r *registry) Add(d *apis.Descriptor) bool {
	if d == nil || d.Path == "" {
		return false
	}
	k := d.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.m[k]; ok {
		return false
	}
	r.insert(k, d)
	return true
}

// Replace inserts d and returns the entry it displaced, if any.
func (r *registry) Replace(d *apis.Descriptor) *apis.Descriptor {
	if d == nil || d.Path == "" {
		return nil
	}
	k := d.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.m[k]
	if ok {
		r.delete(k)
	}
	r.insert(k, d)
	return old
}

// Lookup returns the entry registered under path (case-insensitive).
func (r *registry) Lookup(path string) (*apis.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.m[apis.NormalizePath(path)]
	return d, ok
}

// ForType returns the entries whose model type is exactly t, ordered by path.
func (r *registry) ForType(t apis.TypeName) []*apis.Descriptor {
	var out []*apis.Descriptor
	for _, d := range r.Entries() {
		if d.ModelType == t {
			out = append(out, d)
		}
	}
	return out
}

// HasModelType reports whether any entry targets t.
func (r *registry) HasModelType(t apis.TypeName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[t] > 0
}

// Entries returns a snapshot of all entries ordered by path.
// The returned slice is owned by the caller.
func (r *registry) Entries() []*apis.Descriptor {
	r.mu.RLock()
	if r.sorted != nil {
		out := slices.Clone(r.sorted)
		r.mu.RUnlock()
		return out
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under lock in case another goroutine sorted meanwhile.
	if r.sorted == nil {
		r.sorted = make([]*apis.Descriptor, 0, len(r.m))
		for _, d := range r.m {
			r.sorted = append(r.sorted, d)
		}
		slices.SortFunc(r.sorted, ComparePath)
	}
	return slices.Clone(r.sorted)
}

// Count returns the number of entries.
func (r *registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}

// Reset removes all entries.
func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = make(map[string]*apis.Descriptor)
	r.types = make(map[string]apis.TypeName)
	r.byType = make(map[apis.TypeName]int)
	r.sorted = nil
}

func (r *registry) insert(k string, d *apis.Descriptor) {
	r.m[k] = d
	r.types[k] = d.ModelType
	r.byType[d.ModelType]++
	r.sorted = nil
}

func (r *registry) delete(k string) {
	t := r.types[k]
	delete(r.m, k)
	delete(r.types, k)
	if r.byType[t]--; r.byType[t] <= 0 {
		delete(r.byType, t)
	}
	r.sorted = nil
}

// ComparePath orders descriptors by path, the total order every tie-break
// falls back to.
func ComparePath(a, b *apis.Descriptor) int {
	if c := strings.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	return strings.Compare(a.Key(), b.Key())
}
