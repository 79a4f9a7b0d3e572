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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"dirpx.dev/vrx/apis"
)

// ErrNoHandler is returned when no handler serves a selection's kind.
var ErrNoHandler = errors.New("vrx(render): no handler for kind")

// Handler renders one selection.
type Handler interface {
	Render(ctx context.Context, w io.Writer, s Selection) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, w io.Writer, s Selection) error

// Render calls f.
func (f HandlerFunc) Render(ctx context.Context, w io.Writer, s Selection) error { return f(ctx, w, s) }

// Dispatcher routes selections to handlers by descriptor kind. Kinds
// without a handler fall back to the fragment handler.
type Dispatcher struct {
	handlers map[apis.Kind]Handler
	limit    int
}

// NewDispatcher creates a Dispatcher rendering up to GOMAXPROCS selections
// concurrently.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[apis.Kind]Handler), limit: runtime.GOMAXPROCS(0)}
}

// Handle registers h for kind.
func (d *Dispatcher) Handle(kind apis.Kind, h Handler) *Dispatcher {
	d.handlers[kind] = h
	return d
}

// SetLimit bounds concurrent rendering; n < 1 means sequential.
func (d *Dispatcher) SetLimit(n int) *Dispatcher {
	d.limit = max(n, 1)
	return d
}

func (d *Dispatcher) handler(k apis.Kind) (Handler, bool) {
	if h, ok := d.handlers[k]; ok {
		return h, true
	}
	h, ok := d.handlers[apis.KindFragment]
	return h, ok
}

// Render renders the renderable selections of plan into w, in item order,
// and returns how many were rendered. Selections render concurrently into
// private buffers; nothing is written if any of them fails.
func (d *Dispatcher) Render(ctx context.Context, w io.Writer, plan Plan) (int, error) {
	sels := plan.Renderable()
	hs := make([]Handler, len(sels))
	for i, s := range sels {
		h, ok := d.handler(s.Descriptor.Kind)
		if !ok {
			return 0, fmt.Errorf("%w %s (path %s)", ErrNoHandler, s.Descriptor.Kind, s.Descriptor.Path)
		}
		hs[i] = h
	}

	bufs := make([]bytes.Buffer, len(sels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)
	for i, s := range sels {
		g.Go(func() error {
			return hs[i].Render(gctx, &bufs[i], s)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for i := range bufs {
		if _, err := bufs[i].WriteTo(w); err != nil {
			return i, err
		}
	}
	return len(sels), nil
}
