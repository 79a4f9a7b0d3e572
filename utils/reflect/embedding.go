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

package reflect

import "reflect"

// Embedded returns the named struct types embedded directly in t, in field
// order. Pointer embeddings are followed. Types for which skip returns true
// are left out; skip may be nil.
func Embedded(t reflect.Type, skip func(reflect.Type) bool) []reflect.Type {
	t = Deref(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var out []reflect.Type
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := Deref(f.Type)
		if ft.Kind() != reflect.Struct || ft.Name() == "" {
			continue
		}
		if skip != nil && skip(ft) {
			continue
		}
		out = append(out, ft)
	}
	return out
}

// Ancestors returns every struct type reachable from t through embedding,
// breadth first so nearer embeddings come before farther ones. Each type is
// reported once; t itself is not included.
func Ancestors(t reflect.Type, skip func(reflect.Type) bool) []reflect.Type {
	root := Deref(t)
	if root == nil {
		return nil
	}
	seen := map[reflect.Type]bool{root: true}
	var out []reflect.Type
	queue := []reflect.Type{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range Embedded(cur, skip) {
			if seen[e] {
				continue
			}
			seen[e] = true
			out = append(out, e)
			queue = append(queue, e)
		}
	}
	return out
}
