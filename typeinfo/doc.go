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

// Package typeinfo maps Go values and types to model type names and
// reports the ancestry of model types.
//
// A Namer tries, in order:
//
//  1. apis.Namer implemented by the value (or its type),
//  2. an explicit alias registered in Aliases,
//  3. reflection: "<pkgbase>.<Type>" of the nearest named type, with
//     containers unwrapped and generic parameters stripped.
//
// A Hierarchy treats Go struct embedding as inheritance: a type's ancestors
// are the struct types it embeds, nearest first.
package typeinfo
