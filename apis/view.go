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

import "reflect"

// View marks a Go type as a view for model type T. Embed it as a field and
// put the view metadata in the field's `view` struct tag:
//
//	type ArticleList struct {
//	    apis.View[news.Article] `view:"path=views/article/list,tags=ListView,inherited"`
//	}
//
// Reflection-based sources infer the descriptor model type from T.
type View[T any] struct{}

// ViewModel returns the reflect.Type of T.
func (View[T]) ViewModel() reflect.Type {
	return reflect.TypeFor[T]()
}

// ViewModeler is implemented by every View[T] and by types embedding one.
type ViewModeler interface {
	ViewModel() reflect.Type
}
