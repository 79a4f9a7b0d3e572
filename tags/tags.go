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

// Package tags lists the well-known view tags and parses tag lists.
package tags

import (
	"slices"
	"strings"
)

// Well-known tags.
const (
	Callout             = "Callout"
	ComplexView         = "ComplexView"
	DetailView          = "DetailView"
	GalleryView         = "GalleryView"
	ListView            = "ListView"
	MobileView          = "MobileView"
	RelatedContent      = "RelatedContent"
	RelatedContentLeft  = "RelatedContentLeft"
	RelatedContentRight = "RelatedContentRight"
	SecondaryContent    = "SecondaryContent"
	Sidebar             = "Sidebar"
)

var known = []string{
	Callout, ComplexView, DetailView, GalleryView, ListView, MobileView,
	RelatedContent, RelatedContentLeft, RelatedContentRight, SecondaryContent, Sidebar,
}

// All returns the well-known tags plus extra, sorted and without
// duplicates or empty entries.
func All(extra ...string) []string {
	out := make([]string, 0, len(known)+len(extra))
	out = append(out, known...)
	for _, t := range extra {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Parse splits s on ',' and ';', trimming space and dropping empty entries.
// Order and duplicates are kept: they are part of the query.
func Parse(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Overlap reports whether a and b share a tag, ignoring case.
func Overlap(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if strings.EqualFold(x, y) {
				return true
			}
		}
	}
	return false
}
