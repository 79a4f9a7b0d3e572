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

// Package static provides an in-memory apis.Source.
package static

import (
	"slices"
	"sync"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/typeinfo"
)

// Source serves a fixed, mutable list of candidates and a declared
// hierarchy. It is safe for concurrent use.
type Source struct {
	mu    sync.RWMutex
	cands []apis.Candidate
	hier  *typeinfo.Hierarchy
}

// Ensure Source implements apis.Source and apis.Hierarchy.
var (
	_ apis.Source    = (*Source)(nil)
	_ apis.Hierarchy = (*Source)(nil)
)

// New creates a Source seeded with cands.
func New(cands ...apis.Candidate) *Source {
	return &Source{
		cands: slices.Clone(cands),
		hier:  typeinfo.NewHierarchy(nil),
	}
}

// Add appends descriptors declared for their own ModelType.
func (s *Source) Add(ds ...*apis.Descriptor) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range ds {
		s.cands = append(s.cands, apis.Candidate{Type: "static", Descriptor: d})
	}
	return s
}

// Extends declares parents as the direct ancestors of t, nearest first.
func (s *Source) Extends(t apis.TypeName, parents ...apis.TypeName) *Source {
	s.hier.Declare(t, parents...)
	return s
}

// Scan returns copies of the candidates in insertion order, so registering
// them never mutates the source.
func (s *Source) Scan() ([]apis.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]apis.Candidate, len(s.cands))
	for i, c := range s.cands {
		out[i] = apis.Candidate{Type: c.Type, Descriptor: clone(c.Descriptor)}
	}
	return out, nil
}

// Hierarchy returns the declared hierarchy.
func (s *Source) Hierarchy() *typeinfo.Hierarchy { return s.hier }

// AncestorChain implements apis.Hierarchy over the declared types.
func (s *Source) AncestorChain(t apis.TypeName) []apis.TypeName {
	return s.hier.AncestorChain(t)
}

func clone(d *apis.Descriptor) *apis.Descriptor {
	if d == nil {
		return nil
	}
	c := *d
	c.Tags = slices.Clone(d.Tags)
	c.AuxiliaryTypes = slices.Clone(d.AuxiliaryTypes)
	return &c
}
