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

package render_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/render"
)

type Article struct{ Title string }

type Hidden struct{}

func (Hidden) DisplayItem(*apis.Descriptor, []string) bool { return false }

type Described struct{ ID int }

func (d Described) DebugText() string { return fmt.Sprintf("[#%d]", d.ID) }

// mapResolver resolves by Go type name and applies the hook like the engine.
type mapResolver map[string]*apis.Descriptor

func (m mapResolver) ResolveContext(_ context.Context, item any, tags []string, hook apis.OverrideFunc) *apis.Descriptor {
	d := m[fmt.Sprintf("%T", item)]
	if hook != nil {
		d = hook(d, tags, item)
	}
	return d
}

var (
	articleView = &apis.Descriptor{Path: "views/article", ModelType: "Article", Tags: []string{"ListView"}}
	hiddenView  = &apis.Descriptor{Path: "views/hidden", ModelType: "Hidden"}
	feedView    = &apis.Descriptor{Path: "views/feed", ModelType: "Described", Kind: apis.KindTransform, RequireTags: true, Tags: []string{"Feed"}}
)

func resolver() mapResolver {
	return mapResolver{
		"render_test.Article":   articleView,
		"render_test.Hidden":    hiddenView,
		"render_test.Described": feedView,
	}
}

func TestPlan_Vetoes(t *testing.T) {
	p := render.NewPlanner(resolver())
	items := []any{Article{}, nil, Hidden{}, Described{ID: 1}, 42}

	plan := p.Plan(context.Background(), items, render.Request{TagString: "listview;Other"})
	assert.Equal(t, []string{"listview", "Other"}, plan.Tags)
	assert.Equal(t, 1, plan.Nil)
	require.Len(t, plan.Selections, 4)

	var vetoes []string
	for _, s := range plan.Selections {
		vetoes = append(vetoes, s.Veto)
	}
	assert.Equal(t, []string{"", render.ReasonDeclined, render.ReasonNoMatch, render.ReasonNoDescriptor}, vetoes)
	assert.Len(t, plan.Renderable(), 1)
}

func TestPlan_RequireTags(t *testing.T) {
	p := render.NewPlanner(resolver())

	plan := p.Plan(context.Background(), []any{Article{}}, render.Request{RequireTags: true})
	assert.Equal(t, render.ReasonNoTags, plan.Selections[0].Veto)

	plan = p.Plan(context.Background(), []any{Article{}}, render.Request{RequireTags: true, Tags: []string{"LISTVIEW"}})
	assert.True(t, plan.Selections[0].Renderable(), "tag overlap ignores case")

	plan = p.Plan(context.Background(), []any{Described{}}, render.Request{Tags: []string{"feed"}})
	assert.True(t, plan.Selections[0].Renderable())
}

func TestPlan_HookOrder(t *testing.T) {
	var calls []string
	global := func(d *apis.Descriptor, _ []string, _ any) *apis.Descriptor {
		calls = append(calls, "global")
		return d
	}
	local := func(d *apis.Descriptor, _ []string, _ any) *apis.Descriptor {
		calls = append(calls, "local")
		return &apis.Descriptor{Path: ""}
	}
	p := render.NewPlanner(resolver(), render.WithGlobalHook(global))

	plan := p.Plan(context.Background(), []any{Article{}}, render.Request{Hook: local})
	assert.Equal(t, []string{"global", "local"}, calls)
	assert.Equal(t, render.ReasonEmptyPath, plan.Selections[0].Veto)
}

func TestDispatcher_Render(t *testing.T) {
	p := render.NewPlanner(resolver())
	plan := p.Plan(context.Background(), []any{Article{Title: "a"}, Described{ID: 2}, Article{Title: "b"}}, render.Request{Tags: []string{"ListView", "Feed"}})

	fragment := render.HandlerFunc(func(_ context.Context, w io.Writer, s render.Selection) error {
		_, err := fmt.Fprintf(w, "<%s:%s>", s.Descriptor.Path, s.Item.(Article).Title)
		return err
	})
	transform := render.HandlerFunc(func(_ context.Context, w io.Writer, s render.Selection) error {
		_, err := fmt.Fprintf(w, "{%s}", s.Descriptor.Path)
		return err
	})

	var sb strings.Builder
	n, err := render.NewDispatcher().
		Handle(apis.KindFragment, fragment).
		Handle(apis.KindTransform, transform).
		Render(context.Background(), &sb, plan)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "<views/article:a>{views/feed}<views/article:b>", sb.String())
}

func TestDispatcher_FallbackAndErrors(t *testing.T) {
	p := render.NewPlanner(resolver())
	plan := p.Plan(context.Background(), []any{Described{}}, render.Request{Tags: []string{"Feed"}})

	_, err := render.NewDispatcher().Render(context.Background(), io.Discard, plan)
	assert.ErrorIs(t, err, render.ErrNoHandler)

	var sb strings.Builder
	n, err := render.NewDispatcher().SetLimit(0).
		Handle(apis.KindFragment, render.HandlerFunc(func(_ context.Context, w io.Writer, s render.Selection) error {
			_, err := io.WriteString(w, s.Descriptor.Kind.String())
			return err
		})).
		Render(context.Background(), &sb, plan)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "transform", sb.String())

	boom := errors.New("boom")
	sb.Reset()
	_, err = render.NewDispatcher().
		Handle(apis.KindFragment, render.HandlerFunc(func(context.Context, io.Writer, render.Selection) error { return boom })).
		Render(context.Background(), &sb, plan)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, sb.String())
}

func TestDebugReport(t *testing.T) {
	p := render.NewPlanner(resolver())
	plan := p.Plan(context.Background(), []any{Article{}, nil, Described{ID: 7}, 1}, render.Request{Tags: []string{"ListView"}})

	out := render.DebugReport(plan, len(plan.Renderable()))
	assert.Contains(t, out, "Tags: ListView\n")
	assert.Contains(t, out, "Tags required: no\n")
	assert.Contains(t, out, "Item count: 3\n")
	assert.Contains(t, out, "Nil item count: 1\n")
	assert.Contains(t, out, "1 items rendered of 3\n")
	assert.Contains(t, out, "Item type: render_test.Article, Default: false, Tags required: false, Inherited: false, Path: views/article\n")
	assert.Contains(t, out, "[#7] Item type: render_test.Described")
	assert.Contains(t, out, "Skipped: no matching tags")
	assert.Contains(t, out, "Item type: int, no view\n")

	empty := render.DebugReport(render.Plan{}, 0)
	assert.Equal(t, "Tags: none\nTags required: no\nItems: none\n", empty)
}
