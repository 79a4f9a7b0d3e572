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

// Package viewtype discovers views declared as Go types.
//
// A view prototype embeds apis.View[T] for its model type T and carries the
// view metadata in the field's struct tag:
//
//	type ArticleList struct {
//	    apis.View[news.Article] `view:"path=views/article/list,tags=ListView|Sidebar,inherited"`
//	}
package viewtype

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/typeinfo"
	uref "dirpx.dev/vrx/utils/reflect"
)

var viewModelerType = reflect.TypeFor[apis.ViewModeler]()

// Source is an apis.Source over registered view prototypes. It is safe for
// concurrent use.
type Source struct {
	namer *typeinfo.Namer
	hier  *typeinfo.Hierarchy

	mu    sync.RWMutex
	types []reflect.Type
	seen  map[reflect.Type]bool
	errs  []error
}

// Ensure Source implements apis.Source.
var _ apis.Source = (*Source)(nil)

// New creates an empty Source. namer names model types (nil uses a chain
// without aliases). Model types of added prototypes are learned into hier
// when it is not nil.
func New(namer *typeinfo.Namer, hier *typeinfo.Hierarchy) *Source {
	if namer == nil {
		namer = typeinfo.NewNamer(nil, typeinfo.Options{})
	}
	return &Source{namer: namer, hier: hier, seen: make(map[reflect.Type]bool)}
}

// Add registers view prototypes, given as values or pointers.
func (s *Source) Add(protos ...any) *Source {
	for _, p := range protos {
		if p != nil {
			s.AddType(reflect.TypeOf(p))
		}
	}
	return s
}

// AddType registers a view prototype type.
func (s *Source) AddType(t reflect.Type) *Source {
	t = uref.Deref(t)
	if t == nil {
		return s
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[t] {
		return s
	}
	s.seen[t] = true
	s.types = append(s.types, t)
	if s.hier != nil {
		if f, ok := marker(t); ok {
			s.hier.Learn(modelOf(f.Type))
		}
	}
	return s
}

// Scan parses every prototype in insertion order. A prototype with a
// malformed tag yields a candidate without descriptor; its error is kept
// for Errors.
func (s *Source) Scan() ([]apis.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]apis.Candidate, 0, len(s.types))
	s.errs = s.errs[:0]
	for _, t := range s.types {
		d, err := Parse(t, s.namer)
		if err != nil {
			s.errs = append(s.errs, err)
		}
		out = append(out, apis.Candidate{Type: t.String(), Descriptor: d})
	}
	return out, nil
}

// Errors returns the parse errors of the last Scan joined, or nil.
func (s *Source) Errors() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return errors.Join(s.errs...)
}

// Parse builds the descriptor declared by the view prototype t.
func Parse(t reflect.Type, namer *typeinfo.Namer) (*apis.Descriptor, error) {
	t = uref.Deref(t)
	f, ok := marker(t)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoMarker, t)
	}
	d, model, err := ParseTag(f.Tag.Get(TagKey))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", t, err)
	}
	if model == "" {
		model = namer.NameType(modelOf(f.Type))
	}
	d.ModelType = model
	d.ViewType = t.String()
	return d, nil
}

// marker finds the embedded apis.View field of t.
func marker(t reflect.Type) (reflect.StructField, bool) {
	if t == nil || t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Type.Implements(viewModelerType) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func modelOf(markerType reflect.Type) reflect.Type {
	return reflect.Zero(markerType).Interface().(apis.ViewModeler).ViewModel()
}
