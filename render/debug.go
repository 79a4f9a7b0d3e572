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

package render

import (
	"fmt"
	"reflect"
	"strings"

	"dirpx.dev/vrx/apis"
)

// DebugReport describes plan for troubleshooting: the tag query, counts and
// one line per item with the chosen descriptor.
func DebugReport(plan Plan, rendered int) string {
	var sb strings.Builder
	if len(plan.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(plan.Tags, ","))
	} else {
		sb.WriteString("Tags: none\n")
	}
	fmt.Fprintf(&sb, "Tags required: %s\n", yesNo(plan.RequireTags))
	if len(plan.Selections) == 0 {
		sb.WriteString("Items: none\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Item count: %d\n", len(plan.Selections))
	fmt.Fprintf(&sb, "Nil item count: %d\n", plan.Nil)
	fmt.Fprintf(&sb, "%d items rendered of %d\n", rendered, len(plan.Selections))
	for _, s := range plan.Selections {
		var prefix string
		if d, ok := s.Item.(apis.Describer); ok {
			prefix = d.DebugText() + " "
		}
		typ := reflect.TypeOf(s.Item).String()
		if s.Descriptor == nil {
			fmt.Fprintf(&sb, "%sItem type: %s, no view\n", prefix, typ)
			continue
		}
		fmt.Fprintf(&sb, "%sItem type: %s, Default: %t, Tags required: %t, Inherited: %t, Path: %s",
			prefix, typ, s.Descriptor.Default, s.Descriptor.RequireTags, s.Descriptor.Inherited, s.Descriptor.Path)
		if s.Veto != "" {
			fmt.Fprintf(&sb, ", Skipped: %s", s.Veto)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
