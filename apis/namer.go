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

// Namer lets a model value declare its own model type name, bypassing
// reflection-based naming.
type Namer interface {
	// ModelTypeName returns the model type name of the receiver's type.
	ModelTypeName() string
}

// Displayer lets an item veto its own rendering after a descriptor was chosen.
type Displayer interface {
	// DisplayItem reports whether the item should be rendered with d for tags.
	DisplayItem(d *Descriptor, tags []string) bool
}

// Describer contributes a line of text about an item to debug reports.
type Describer interface {
	// DebugText returns a short human-readable description of the item.
	DebugText() string
}
