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

// Source discovers candidate views. It is invoked by a registrar when the
// registry is (re)built.
type Source interface {
	// Scan returns every currently known candidate. Candidates without a
	// descriptor, or with a descriptor lacking a path or model type, are
	// skipped by the caller.
	Scan() ([]Candidate, error)
}

// Hierarchy reports the ancestry of model types.
type Hierarchy interface {
	// AncestorChain returns the ancestors of t, most-derived first. t itself
	// is not part of the chain. Unknown types have no ancestors.
	AncestorChain(t TypeName) []TypeName
}

// SourceFunc adapts a function to Source.
type SourceFunc func() ([]Candidate, error)

// Scan calls f.
func (f SourceFunc) Scan() ([]Candidate, error) { return f() }

// HierarchyFunc adapts a function to Hierarchy.
type HierarchyFunc func(t TypeName) []TypeName

// AncestorChain calls f.
func (f HierarchyFunc) AncestorChain(t TypeName) []TypeName { return f(t) }
