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

package typeinfo

import (
	"reflect"
	"slices"
	"sync"

	"dirpx.dev/vrx/apis"
	uref "dirpx.dev/vrx/utils/reflect"
)

var viewModelerType = reflect.TypeFor[apis.ViewModeler]()

// Hierarchy is an apis.Hierarchy built from declared parent links. Links are
// declared by name or learned from Go struct embedding. It is safe for
// concurrent use.
type Hierarchy struct {
	namer *Namer

	mu      sync.RWMutex
	parents map[apis.TypeName][]apis.TypeName
	learned map[reflect.Type]bool
}

// Ensure Hierarchy implements apis.Hierarchy.
var _ apis.Hierarchy = (*Hierarchy)(nil)

// NewHierarchy creates an empty Hierarchy. namer names learned Go types; nil
// uses a chain without aliases.
func NewHierarchy(namer *Namer) *Hierarchy {
	if namer == nil {
		namer = std
	}
	return &Hierarchy{
		namer:   namer,
		parents: make(map[apis.TypeName][]apis.TypeName),
		learned: make(map[reflect.Type]bool),
	}
}

// Declare records parents as the direct ancestors of t, in priority order.
// Repeated declarations append new parents; self links are ignored.
func (h *Hierarchy) Declare(t apis.TypeName, parents ...apis.TypeName) {
	if t == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.declare(t, parents)
}

func (h *Hierarchy) declare(t apis.TypeName, parents []apis.TypeName) {
	cur := h.parents[t]
	for _, p := range parents {
		if p == "" || p == t || slices.Contains(cur, p) {
			continue
		}
		cur = append(cur, p)
	}
	h.parents[t] = cur
}

// Learn records the embedding structure of the given Go types and of every
// struct type they embed. View markers are not treated as ancestors.
func (h *Hierarchy) Learn(types ...reflect.Type) {
	h.mu.RLock()
	known := true
	for _, t := range types {
		if t = uref.Deref(t); t != nil && t.Kind() == reflect.Struct && !h.learned[t] {
			known = false
			break
		}
	}
	h.mu.RUnlock()
	if known {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range types {
		h.learn(uref.Deref(t))
	}
}

func (h *Hierarchy) learn(t reflect.Type) {
	if t == nil || t.Kind() != reflect.Struct || h.learned[t] {
		return
	}
	h.learned[t] = true
	name := h.namer.NameType(t)
	embedded := uref.Embedded(t, isViewMarker)
	parents := make([]apis.TypeName, 0, len(embedded))
	for _, e := range embedded {
		if pn := h.namer.NameType(e); pn != "" {
			parents = append(parents, pn)
		}
	}
	if name != "" && len(parents) > 0 {
		h.declare(name, parents)
	}
	for _, e := range embedded {
		h.learn(e)
	}
}

// LearnValue is Learn for the dynamic type of v.
func (h *Hierarchy) LearnValue(v any) {
	if v != nil {
		h.Learn(reflect.TypeOf(v))
	}
}

// AncestorChain returns the ancestors of t breadth first, nearest first,
// each once. t is not part of the chain.
func (h *Hierarchy) AncestorChain(t apis.TypeName) []apis.TypeName {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.parents[t]) == 0 {
		return nil
	}
	seen := map[apis.TypeName]bool{t: true}
	var out []apis.TypeName
	queue := []apis.TypeName{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range h.parents[cur] {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
			queue = append(queue, p)
		}
	}
	return out
}

// Len returns the number of types with declared parents.
func (h *Hierarchy) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.parents)
}

func isViewMarker(t reflect.Type) bool {
	return t.Implements(viewModelerType)
}

// Compose returns a Hierarchy answering with the first non-empty chain of hs.
// Nil hierarchies are ignored.
func Compose(hs ...apis.Hierarchy) apis.Hierarchy {
	out := make([]apis.Hierarchy, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	return apis.HierarchyFunc(func(t apis.TypeName) []apis.TypeName {
		for _, h := range out {
			if chain := h.AncestorChain(t); len(chain) > 0 {
				return chain
			}
		}
		return nil
	})
}
