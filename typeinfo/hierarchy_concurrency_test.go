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

package typeinfo_test

import (
	"runtime"
	"slices"
	"sync"
	"testing"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/typeinfo"
)

// TestHierarchy_ConcurrentLearnAndRead verifies that learning and chain
// lookups are race-free and that a learned chain is complete on first read.
func TestHierarchy_ConcurrentLearnAndRead(t *testing.T) {
	h := typeinfo.NewHierarchy(nil)
	want := []apis.TypeName{"typeinfo_test.Article", "typeinfo_test.Content"}
	vals := []any{NewsArticle{}, &NewsArticle{}, Article{}, ArticleListView{}, 42}

	wg := sync.WaitGroup{}
	workers := runtime.GOMAXPROCS(0) * 4
	wg.Add(workers)
	for w := range workers {
		go func() {
			defer wg.Done()
			for i := range 2000 {
				v := vals[(i+w)%len(vals)]
				h.LearnValue(v)
				if _, ok := v.(NewsArticle); !ok {
					continue
				}
				if got := h.AncestorChain("typeinfo_test.NewsArticle"); !slices.Equal(got, want) {
					t.Errorf("AncestorChain(NewsArticle) = %v, want %v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}
