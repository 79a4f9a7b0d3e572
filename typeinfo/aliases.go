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
	"errors"
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/vrx/apis"
	uref "dirpx.dev/vrx/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("vrx(typeinfo): nil reflect.Type provided")
	// ErrEmptyName is returned when an alias has an empty name.
	ErrEmptyName = errors.New("vrx(typeinfo): empty model type name")
	// ErrConflict is returned when a type is re-registered under a different name.
	ErrConflict = errors.New("vrx(typeinfo): conflicting model type name")
)

// Aliases maps Go types to explicit model type names. It is safe for
// concurrent use.
type Aliases struct {
	mu sync.RWMutex
	m  map[reflect.Type]apis.TypeName
}

// NewAliases creates an empty alias registry.
func NewAliases() *Aliases {
	return &Aliases{m: make(map[reflect.Type]apis.TypeName)}
}

// Register names t. Pointer types are registered for their element type.
// Registering the same pair again is a no-op; a different name for an
// already registered type is ErrConflict.
func (a *Aliases) Register(t reflect.Type, name apis.TypeName) error {
	if t == nil {
		return ErrNilType
	}
	if name == "" {
		return ErrEmptyName
	}
	t = uref.Deref(t)

	a.mu.Lock()
	defer a.mu.Unlock()
	if prev, ok := a.m[t]; ok {
		if prev == name {
			return nil
		}
		return fmt.Errorf("%w: %v is %q, not %q", ErrConflict, t, prev, name)
	}
	a.m[t] = name
	return nil
}

// Lookup returns the alias of t, trying t itself first and then its
// normalized form (containers unwrapped).
func (a *Aliases) Lookup(t reflect.Type) (apis.TypeName, bool) {
	if t == nil {
		return "", false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.m) == 0 {
		return "", false
	}
	if name, ok := a.m[uref.Deref(t)]; ok {
		return name, true
	}
	if base, err := uref.Normalize(t, 0, true); err == nil {
		if name, ok := a.m[base]; ok {
			return name, true
		}
	}
	return "", false
}

// Len returns the number of aliases.
func (a *Aliases) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.m)
}
