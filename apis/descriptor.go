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

package apis

import (
	"fmt"
	"strings"
)

// TypeName identifies a model type. Go values are mapped to type names by
// the typeinfo package; sources that are not reflection based (manifests)
// spell them out directly.
type TypeName string

// String implements fmt.Stringer.
func (t TypeName) String() string { return string(t) }

// Descriptor describes one candidate view for a model type.
//
// A Descriptor must be treated as immutable once it has been registered:
// the registry, the resolution cache and concurrent resolvers all share the
// same pointer.
type Descriptor struct {
	// Path names the view artifact. It is the identity of the descriptor and
	// is compared ignoring case.
	Path string
	// ModelType is the type this view renders.
	ModelType TypeName
	// Tags describe where the view applies. Order and duplicates are irrelevant.
	Tags []string
	// Default marks the view that wins ties for its model type.
	Default bool
	// RequireTags makes the view eligible only for queries sharing a tag with it.
	RequireTags bool
	// Inherited makes the view eligible for subtypes of ModelType.
	Inherited bool
	// Kind selects the rendering strategy. Resolution carries it through untouched.
	Kind Kind
	// AuxiliaryTypes are serialization hints for the renderer.
	AuxiliaryTypes []string
	// ViewType names the candidate type that declared this descriptor, if any.
	ViewType string
}

// Key returns the normalized registry key of d.
func (d *Descriptor) Key() string {
	return NormalizePath(d.Path)
}

// Equal reports whether d and o share the same identity (case-insensitive path).
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	return strings.EqualFold(d.Path, o.Path)
}

// HasTag reports whether tag is one of the descriptor tags.
func (d *Descriptor) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Overlap counts the distinct descriptor tags present in query.
func (d *Descriptor) Overlap(query []string) int {
	if len(d.Tags) == 0 || len(query) == 0 {
		return 0
	}
	n := 0
	for i, t := range d.Tags {
		if dup(d.Tags[:i], t) {
			continue
		}
		for _, q := range query {
			if q == t {
				n++
				break
			}
		}
	}
	return n
}

// Eligible reports whether d may be returned for a query with the given tags.
// Descriptors requiring tags need at least one shared tag.
func (d *Descriptor) Eligible(query []string) bool {
	return !d.RequireTags || d.Overlap(query) > 0
}

// String returns a single-line diagnostic representation.
func (d *Descriptor) String() string {
	if d == nil {
		return "Descriptor<nil>"
	}
	model := string(d.ModelType)
	if model == "" {
		model = "<none>"
	}
	return fmt.Sprintf("Descriptor{Path=%s, Model=%s, Default=%t, RequireTags=%t, Inherited=%t, Tags=%s, Kind=%s, AuxiliaryTypes=%s}",
		d.Path,
		model,
		d.Default,
		d.RequireTags,
		d.Inherited,
		strings.Join(d.Tags, ","),
		d.Kind,
		strings.Join(d.AuxiliaryTypes, ","),
	)
}

// NormalizePath returns the registry key for a descriptor path.
func NormalizePath(p string) string {
	return strings.ToLower(p)
}

func dup(seen []string, s string) bool {
	for _, v := range seen {
		if v == s {
			return true
		}
	}
	return false
}

// Candidate is one result of a Source scan: the type that declared a view
// and the descriptor it declared. Descriptor is nil when the candidate
// carries no view metadata.
type Candidate struct {
	// Type names the declaring view type (informational).
	Type string
	// Descriptor is the declared descriptor, with ModelType already set.
	Descriptor *Descriptor
}
