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
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/typeinfo"
)

type ArticleListView struct {
	apis.View[Article] `view:"path=views/article/list"`
	Article
}

func TestHierarchy_Learn(t *testing.T) {
	h := typeinfo.NewHierarchy(nil)
	h.LearnValue(&NewsArticle{})

	assert.Equal(t,
		[]apis.TypeName{"typeinfo_test.Article", "typeinfo_test.Content"},
		h.AncestorChain("typeinfo_test.NewsArticle"))
	assert.Equal(t, []apis.TypeName{"typeinfo_test.Content"}, h.AncestorChain("typeinfo_test.Article"))
	assert.Nil(t, h.AncestorChain("typeinfo_test.Content"))
	assert.Nil(t, h.AncestorChain("unknown.Type"))
}

func TestHierarchy_SkipsViewMarker(t *testing.T) {
	h := typeinfo.NewHierarchy(nil)
	h.Learn(reflect.TypeOf(ArticleListView{}))

	assert.Equal(t,
		[]apis.TypeName{"typeinfo_test.Article", "typeinfo_test.Content"},
		h.AncestorChain("typeinfo_test.ArticleListView"))
}

func TestHierarchy_Declare(t *testing.T) {
	h := typeinfo.NewHierarchy(nil)
	h.Declare("Breaking", "NewsArticle", "Tracked")
	h.Declare("NewsArticle", "Article")
	h.Declare("Article", "Content", "Article")
	h.Declare("Tracked", "Content")
	h.Declare("Breaking", "Tracked")

	assert.Equal(t,
		[]apis.TypeName{"NewsArticle", "Tracked", "Article", "Content"},
		h.AncestorChain("Breaking"))
	assert.Equal(t, 4, h.Len())
}

func TestHierarchy_Cycle(t *testing.T) {
	h := typeinfo.NewHierarchy(nil)
	h.Declare("A", "B")
	h.Declare("B", "A")
	assert.Equal(t, []apis.TypeName{"B"}, h.AncestorChain("A"))
}

func TestCompose(t *testing.T) {
	first := typeinfo.NewHierarchy(nil)
	first.Declare("A", "B")
	second := typeinfo.NewHierarchy(nil)
	second.Declare("A", "X")
	second.Declare("C", "D")

	h := typeinfo.Compose(nil, first, second)
	assert.Equal(t, []apis.TypeName{"B"}, h.AncestorChain("A"))
	assert.Equal(t, []apis.TypeName{"D"}, h.AncestorChain("C"))
	assert.Nil(t, h.AncestorChain("Z"))
}
