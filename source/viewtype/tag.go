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

package viewtype

import (
	"errors"
	"fmt"
	"strings"

	"dirpx.dev/vrx/apis"
)

// TagKey is the struct tag key read from the embedded apis.View field.
const TagKey = "view"

var (
	// ErrNoMarker is returned for a type that does not embed apis.View.
	ErrNoMarker = errors.New("vrx(viewtype): type does not embed apis.View")
	// ErrNoPath is returned for a view tag without a path.
	ErrNoPath = errors.New("vrx(viewtype): view tag has no path")
	// ErrBadTag is returned for a view tag that cannot be parsed.
	ErrBadTag = errors.New("vrx(viewtype): malformed view tag")
)

// ParseTag parses a view tag into a descriptor without a model type.
//
// The tag is a comma separated list of items:
//
//	path=<path>      required
//	tags=<a|b|...>   tag list
//	kind=<kind>      fragment (default) or transform
//	aux=<a|b|...>    auxiliary serialization types
//	model=<name>     explicit model type name
//	default          flag
//	inherited        flag
//	require_tags     flag (alias: required)
//
// The model name, if any, is returned separately.
func ParseTag(tag string) (*apis.Descriptor, apis.TypeName, error) {
	d := &apis.Descriptor{}
	var model apis.TypeName
	for item := range strings.SplitSeq(tag, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key, val, hasVal := strings.Cut(item, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if hasVal {
			switch key {
			case "path":
				d.Path = val
			case "tags":
				d.Tags = list(val)
			case "aux":
				d.AuxiliaryTypes = list(val)
			case "model":
				model = apis.TypeName(val)
			case "kind":
				k, err := apis.ParseKind(val)
				if err != nil {
					return nil, "", fmt.Errorf("%w: %w", ErrBadTag, err)
				}
				d.Kind = k
			default:
				return nil, "", fmt.Errorf("%w: unknown key %q", ErrBadTag, key)
			}
			continue
		}
		switch key {
		case "default":
			d.Default = true
		case "inherited":
			d.Inherited = true
		case "require_tags", "required":
			d.RequireTags = true
		default:
			return nil, "", fmt.Errorf("%w: unknown flag %q", ErrBadTag, key)
		}
	}
	if d.Path == "" {
		return nil, "", ErrNoPath
	}
	return d, model, nil
}

func list(s string) []string {
	var out []string
	for v := range strings.SplitSeq(s, "|") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
