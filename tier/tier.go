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

package tier

import (
	"dirpx.dev/vrx/apis"
)

// Tier names.
const (
	NameRequiredExact     = "required-exact"
	NameRequiredInherited = "required-inherited"
	NameOptionalExact     = "optional-exact"
	NameOptionalInherited = "optional-inherited"
	NameDefault           = "default"
	NameFallback          = "fallback"
)

// Default returns the standard tier chain, highest precedence first:
// explicit tag requirement and exact type beat optional matching and
// inheritance; defaults and the path order break the remaining ties.
func Default() []apis.Tier {
	return []apis.Tier{
		RequiredExact(),
		RequiredInherited(),
		OptionalExact(),
		OptionalInherited(),
		Defaults(),
		Fallback(),
	}
}

// Func adapts a function to apis.Tier.
type Func struct {
	name string
	fn   func(q *apis.Query) (*apis.Descriptor, bool)
}

// New creates a named tier from fn.
func New(name string, fn func(q *apis.Query) (*apis.Descriptor, bool)) apis.Tier {
	return Func{name: name, fn: fn}
}

// Ensure Func implements apis.Tier.
var _ apis.Tier = Func{}

// Name returns the tier name.
func (f Func) Name() string { return f.name }

// TryResolve calls the tier function.
func (f Func) TryResolve(q *apis.Query) (*apis.Descriptor, bool) { return f.fn(q) }

// RequiredExact picks among tag matches that require tags and target the
// queried type exactly: a default if there is one, else the top-ranked match.
func RequiredExact() apis.Tier {
	return New(NameRequiredExact, func(q *apis.Query) (*apis.Descriptor, bool) {
		return preferDefault(filter(q.Matches, func(d *apis.Descriptor) bool {
			return d.RequireTags && d.ModelType == q.Type
		}))
	})
}

// RequiredInherited picks among inherited tag matches that require tags and
// target an ancestor: the nearest default if any, else the nearest match.
func RequiredInherited() apis.Tier {
	return New(NameRequiredInherited, func(q *apis.Query) (*apis.Descriptor, bool) {
		return nearestPreferDefault(q, filter(q.Matches, func(d *apis.Descriptor) bool {
			return d.RequireTags && d.Inherited && isAncestor(q, d.ModelType)
		}))
	})
}

// optional returns the tag matches that do not require tags, by path.
// Ranking by overlap does not survive this ordering.
func optional(q *apis.Query) []*apis.Descriptor {
	return byPath(filter(q.Matches, func(d *apis.Descriptor) bool { return !d.RequireTags }))
}

// OptionalExact picks among optional tag matches targeting the queried type:
// the first default by path, else the first by path.
func OptionalExact() apis.Tier {
	return New(NameOptionalExact, func(q *apis.Query) (*apis.Descriptor, bool) {
		return preferDefault(filter(optional(q), func(d *apis.Descriptor) bool {
			return d.ModelType == q.Type
		}))
	})
}

// OptionalInherited picks among inherited optional tag matches targeting an
// ancestor: the nearest default if any, else the nearest match.
func OptionalInherited() apis.Tier {
	return New(NameOptionalInherited, func(q *apis.Query) (*apis.Descriptor, bool) {
		return nearestPreferDefault(q, filter(optional(q), func(d *apis.Descriptor) bool {
			return d.Inherited && isAncestor(q, d.ModelType)
		}))
	})
}

// Defaults picks among every eligible default, by path: an exact type match,
// else an inherited default at the nearest ancestor. It also serves queries
// without tags.
func Defaults() apis.Tier {
	return New(NameDefault, func(q *apis.Query) (*apis.Descriptor, bool) {
		defs := filter(q.Descriptors, func(d *apis.Descriptor) bool {
			return d.Default && d.Eligible(q.Tags)
		})
		for _, d := range defs {
			if d.ModelType == q.Type {
				return d, true
			}
		}
		return nearest(q, filter(defs, func(d *apis.Descriptor) bool {
			return d.Inherited && isAncestor(q, d.ModelType)
		}))
	})
}

// Fallback picks among descriptors not requiring tags, by path: an exact
// type match (default first), else the nearest inherited match (default first).
func Fallback() apis.Tier {
	return New(NameFallback, func(q *apis.Query) (*apis.Descriptor, bool) {
		pool := filter(q.Descriptors, func(d *apis.Descriptor) bool { return !d.RequireTags })
		if d, ok := preferDefault(filter(pool, func(d *apis.Descriptor) bool {
			return d.ModelType == q.Type
		})); ok {
			return d, true
		}
		return nearestPreferDefault(q, filter(pool, func(d *apis.Descriptor) bool {
			return d.Inherited && isAncestor(q, d.ModelType)
		}))
	})
}
