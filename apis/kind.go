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

// Kind selects how a renderer turns a resolved Descriptor into output.
// Resolution never looks at it.
type Kind int

const (
	// KindFragment loads a view fragment and binds the item to it.
	KindFragment Kind = iota
	// KindTransform serializes the item and runs a transform over it.
	KindTransform
)

// String returns "fragment", "transform" or "Unknown(<n>)".
func (k Kind) String() string {
	switch k {
	case KindFragment:
		return "fragment"
	case KindTransform:
		return "transform"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ParseKind parses a Kind token, case-insensitively. The empty string is
// KindFragment.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fragment":
		return KindFragment, nil
	case "transform":
		return KindTransform, nil
	default:
		return KindFragment, fmt.Errorf("vrx(apis): unknown kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindFragment, KindTransform:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("vrx(apis): cannot marshal unknown kind %d", int(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. On failure k is left unchanged.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
