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
	"path"
	"reflect"
	"strings"
	"sync"

	"dirpx.dev/vrx/apis"
	uref "dirpx.dev/vrx/utils/reflect"
)

// Strategy is one step of a Namer chain.
type Strategy interface {
	// TryName returns (name, true) if the strategy handled v.
	TryName(v any) (apis.TypeName, bool)
	// TryNameType returns (name, true) if the strategy handled t.
	TryNameType(t reflect.Type) (apis.TypeName, bool)
}

// NewNamerStrategy creates a Strategy that asks apis.Namer implementations.
func NewNamerStrategy() Strategy {
	return namerStrategy{}
}

type namerStrategy struct{}

var namerType = reflect.TypeFor[apis.Namer]()

// TryName returns v.ModelTypeName() if v implements apis.Namer.
func (namerStrategy) TryName(v any) (apis.TypeName, bool) {
	if n, ok := v.(apis.Namer); ok {
		if name := n.ModelTypeName(); name != "" {
			return apis.TypeName(name), true
		}
	}
	return "", false
}

// TryNameType asks a zero value of t (or of *t for pointer receivers).
// A ModelTypeName that panics on the zero value counts as not handled.
func (s namerStrategy) TryNameType(t reflect.Type) (name apis.TypeName, ok bool) {
	if t == nil || t.Kind() == reflect.Interface {
		return "", false
	}
	defer func() {
		if recover() != nil {
			name, ok = "", false
		}
	}()
	switch {
	case t.Implements(namerType):
		if t.Kind() == reflect.Pointer {
			return s.TryName(reflect.New(t.Elem()).Interface())
		}
		return s.TryName(reflect.Zero(t).Interface())
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(namerType):
		return s.TryName(reflect.New(t).Interface())
	}
	return "", false
}

// NewAliasStrategy creates a Strategy that consults explicit aliases.
func NewAliasStrategy(a *Aliases) Strategy {
	return aliasStrategy{aliases: a}
}

type aliasStrategy struct {
	aliases *Aliases
}

// TryName looks up the dynamic type of v.
func (s aliasStrategy) TryName(v any) (apis.TypeName, bool) {
	if v == nil {
		return "", false
	}
	return s.TryNameType(reflect.TypeOf(v))
}

// TryNameType looks up t.
func (s aliasStrategy) TryNameType(t reflect.Type) (apis.TypeName, bool) {
	if t == nil || s.aliases == nil {
		return "", false
	}
	return s.aliases.Lookup(t)
}

// NewReflectStrategy creates the fallback Strategy computing "<pkgbase>.<Type>".
func NewReflectStrategy(opts Options) Strategy {
	return &reflectStrategy{opts: opts}
}

// reflectStrategy memoizes names per type.
type reflectStrategy struct {
	opts  Options
	names sync.Map // reflect.Type -> apis.TypeName
}

// TryName names the dynamic type of v.
func (s *reflectStrategy) TryName(v any) (apis.TypeName, bool) {
	if v == nil {
		return "", false
	}
	return s.TryNameType(reflect.TypeOf(v))
}

// TryNameType names t. Builtin or unnamed types are not handled unless
// Options.IncludeBuiltins is set.
func (s *reflectStrategy) TryNameType(t reflect.Type) (apis.TypeName, bool) {
	if t == nil {
		return "", false
	}
	if v, ok := s.names.Load(t); ok {
		name := v.(apis.TypeName)
		return name, name != ""
	}
	name := s.byType(t)
	s.names.Store(t, name)
	return name, name != ""
}

func (s *reflectStrategy) byType(t reflect.Type) apis.TypeName {
	base, err := uref.Normalize(t, s.opts.MaxUnwrap, !s.opts.MapPreferKey)
	if err != nil {
		return ""
	}
	name := stripTypeParams(base.Name())
	if p := base.PkgPath(); p != "" {
		return apis.TypeName(path.Base(p) + "." + name)
	}
	if s.opts.IncludeBuiltins {
		return apis.TypeName(name)
	}
	return ""
}

// stripTypeParams removes generic type instantiation suffix: "T[int,string]" -> "T".
func stripTypeParams(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}
