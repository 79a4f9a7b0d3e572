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
	"cmp"
	"slices"

	"dirpx.dev/vrx/apis"
)

// NewQuery assembles the Query every tier works from.
//
// entries must be ordered by path (as returned by apis.Registry.Entries) and
// chain must list the ancestors of t nearest first. BaseTypes keeps the chain
// order but only the ancestors some entry targets. Matches ranks the entries
// sharing a tag with the query by overlap, then Default; the sort is stable
// so equal ranks stay in path order.
func NewQuery(t apis.TypeName, tags []string, entries []*apis.Descriptor, chain []apis.TypeName) *apis.Query {
	if tags == nil {
		tags = []string{}
	}
	q := &apis.Query{
		Type:        t,
		Tags:        tags,
		Descriptors: entries,
	}

	if len(chain) > 0 {
		present := make(map[apis.TypeName]struct{}, len(entries))
		for _, d := range entries {
			present[d.ModelType] = struct{}{}
		}
		for _, a := range chain {
			if _, ok := present[a]; ok && !slices.Contains(q.BaseTypes, a) {
				q.BaseTypes = append(q.BaseTypes, a)
			}
		}
	}

	if len(tags) > 0 {
		type ranked struct {
			d       *apis.Descriptor
			overlap int
		}
		var rs []ranked
		for _, d := range entries {
			if n := d.Overlap(tags); n > 0 {
				rs = append(rs, ranked{d: d, overlap: n})
			}
		}
		slices.SortStableFunc(rs, func(a, b ranked) int {
			if c := cmp.Compare(b.overlap, a.overlap); c != 0 {
				return c
			}
			return cmp.Compare(boolRank(b.d.Default), boolRank(a.d.Default))
		})
		q.Matches = make([]*apis.Descriptor, len(rs))
		for i, r := range rs {
			q.Matches[i] = r.d
		}
	}
	return q
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isAncestor reports whether t is an ancestor of the queried type.
func isAncestor(q *apis.Query, t apis.TypeName) bool {
	return slices.Contains(q.BaseTypes, t)
}

// filter returns the descriptors of in satisfying keep, in order.
func filter(in []*apis.Descriptor, keep func(*apis.Descriptor) bool) []*apis.Descriptor {
	var out []*apis.Descriptor
	for _, d := range in {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// preferDefault returns the first default of cands, else the first candidate.
func preferDefault(cands []*apis.Descriptor) (*apis.Descriptor, bool) {
	if len(cands) == 0 {
		return nil, false
	}
	for _, d := range cands {
		if d.Default {
			return d, true
		}
	}
	return cands[0], true
}

// nearest returns the first candidate targeting the nearest ancestor that
// has one. Candidates targeting the same ancestor keep their input order.
func nearest(q *apis.Query, cands []*apis.Descriptor) (*apis.Descriptor, bool) {
	for _, bt := range q.BaseTypes {
		for _, d := range cands {
			if d.ModelType == bt {
				return d, true
			}
		}
	}
	return nil, false
}

// nearestPreferDefault restricts cands to defaults when there are any, then
// picks the nearest.
func nearestPreferDefault(q *apis.Query, cands []*apis.Descriptor) (*apis.Descriptor, bool) {
	if defs := filter(cands, isDefault); len(defs) > 0 {
		return nearest(q, defs)
	}
	return nearest(q, cands)
}

func isDefault(d *apis.Descriptor) bool { return d.Default }

// byPath returns a copy of in ordered by path.
func byPath(in []*apis.Descriptor) []*apis.Descriptor {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b *apis.Descriptor) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return out
}
