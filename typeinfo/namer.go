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

	"dirpx.dev/vrx/apis"
)

// Options tune reflection-based naming.
type Options struct {
	// MaxUnwrap bounds container unwrapping. Zero means the default depth.
	MaxUnwrap int
	// MapPreferKey names map types after their key instead of their element.
	MapPreferKey bool
	// IncludeBuiltins names builtin types ("int", "string"); they are
	// unnamed otherwise.
	IncludeBuiltins bool
}

// Namer maps values and types to model type names by running a strategy
// chain. It is safe for concurrent use.
type Namer struct {
	strats []Strategy
}

// NewNamer creates the standard chain: apis.Namer, then aliases (may be
// nil), then reflection.
func NewNamer(aliases *Aliases, opts Options) *Namer {
	return Chain(NewNamerStrategy(), NewAliasStrategy(aliases), NewReflectStrategy(opts))
}

// Chain creates a Namer trying strategies in order. Nil strategies are ignored.
func Chain(strategies ...Strategy) *Namer {
	out := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Namer{strats: out}
}

// Name returns the model type name of v, or "" if no strategy handled it.
func (n *Namer) Name(v any) apis.TypeName {
	if v == nil {
		return ""
	}
	for _, s := range n.strats {
		if name, ok := s.TryName(v); ok {
			return name
		}
	}
	return ""
}

// NameType returns the model type name of t, or "" if no strategy handled it.
func (n *Namer) NameType(t reflect.Type) apis.TypeName {
	if t == nil {
		return ""
	}
	for _, s := range n.strats {
		if name, ok := s.TryNameType(t); ok {
			return name
		}
	}
	return ""
}

var std = NewNamer(nil, Options{})

// NameOf names v with a chain that has no aliases.
func NameOf(v any) apis.TypeName { return std.Name(v) }

// NameFor names T with a chain that has no aliases.
func NameFor[T any]() apis.TypeName { return std.NameType(reflect.TypeFor[T]()) }
