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

// Package render is the renderer-side glue around resolution: it plans
// which items get rendered with which descriptor and dispatches the plan to
// kind-specific handlers. It does not render anything itself.
package render

import (
	"context"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/tags"
)

// Veto reasons recorded on selections that will not be rendered.
const (
	ReasonNoDescriptor = "no descriptor"
	ReasonEmptyPath    = "descriptor has no path"
	ReasonDeclined     = "item declined display"
	ReasonNoTags       = "tags required but none given"
	ReasonNoMatch      = "no matching tags"
)

// Resolver resolves the descriptor of an item. *vrx.Service implements it.
type Resolver interface {
	ResolveContext(ctx context.Context, item any, tags []string, hook apis.OverrideFunc) *apis.Descriptor
}

// Selection is the planning outcome for one item.
type Selection struct {
	Item       any
	Descriptor *apis.Descriptor
	// Veto is empty when the item is to be rendered.
	Veto string
}

// Renderable reports whether the selection survived every veto.
func (s Selection) Renderable() bool { return s.Veto == "" }

// Plan lists the selections of one render request in item order.
type Plan struct {
	Tags        []string
	RequireTags bool
	Selections  []Selection
	// Nil counts the nil items that were skipped.
	Nil int
}

// Renderable returns the selections to render, in item order.
func (p Plan) Renderable() []Selection {
	var out []Selection
	for _, s := range p.Selections {
		if s.Renderable() {
			out = append(out, s)
		}
	}
	return out
}

// Request describes one render request.
type Request struct {
	// Tags is the tag query.
	Tags []string
	// TagString, when non-empty, replaces Tags; see tags.Parse.
	TagString string
	// RequireTags hides every item whose descriptor shares no tag with the query.
	RequireTags bool
	// Hook runs after the planner's global hook.
	Hook apis.OverrideFunc
}

func (r Request) tags() []string {
	if r.TagString != "" {
		return tags.Parse(r.TagString)
	}
	if r.Tags == nil {
		return []string{}
	}
	return r.Tags
}

// Option configures a Planner.
type Option func(*Planner)

// WithGlobalHook sets a hook applied to every request before its own hook.
func WithGlobalHook(h apis.OverrideFunc) Option {
	return func(p *Planner) { p.global = h }
}

// Planner turns items into a Plan.
type Planner struct {
	res    Resolver
	global apis.OverrideFunc
}

// NewPlanner creates a Planner resolving through res.
func NewPlanner(res Resolver, opts ...Option) *Planner {
	p := &Planner{res: res}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan resolves every non-nil item and applies the vetoes:
//   - no descriptor, or a descriptor without path;
//   - the item implements apis.Displayer and declines;
//   - the request or the descriptor requires tags, and either no tags were
//     given or the descriptor has tags none of which match (ignoring case).
func (p *Planner) Plan(ctx context.Context, items []any, req Request) Plan {
	q := req.tags()
	plan := Plan{Tags: q, RequireTags: req.RequireTags}
	hook := chain(p.global, req.Hook)
	for _, item := range items {
		if item == nil {
			plan.Nil++
			continue
		}
		d := p.res.ResolveContext(ctx, item, q, hook)
		plan.Selections = append(plan.Selections, Selection{
			Item:       item,
			Descriptor: d,
			Veto:       veto(item, d, q, req.RequireTags),
		})
	}
	return plan
}

func veto(item any, d *apis.Descriptor, q []string, require bool) string {
	switch {
	case d == nil:
		return ReasonNoDescriptor
	case d.Path == "":
		return ReasonEmptyPath
	}
	if disp, ok := item.(apis.Displayer); ok && !disp.DisplayItem(d, q) {
		return ReasonDeclined
	}
	if require || d.RequireTags {
		if len(q) == 0 {
			return ReasonNoTags
		}
		if len(d.Tags) > 0 && !tags.Overlap(d.Tags, q) {
			return ReasonNoMatch
		}
	}
	return ""
}

func chain(hooks ...apis.OverrideFunc) apis.OverrideFunc {
	var hs []apis.OverrideFunc
	for _, h := range hooks {
		if h != nil {
			hs = append(hs, h)
		}
	}
	if len(hs) == 0 {
		return nil
	}
	return func(d *apis.Descriptor, tags []string, item any) *apis.Descriptor {
		for _, h := range hs {
			d = h(d, tags, item)
		}
		return d
	}
}
