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

package vrx

import (
	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/trace"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/builder"
	"dirpx.dev/vrx/config"
	"dirpx.dev/vrx/metrics"
	"dirpx.dev/vrx/typeinfo"
)

// Option configures a Service.
type Option func(*options)

type options struct {
	cfg     apis.Config
	bld     apis.Builder
	src     apis.Source
	hier    apis.Hierarchy
	namer   *typeinfo.Namer
	log     logr.Logger
	metrics *metrics.Recorder
	tp      trace.TracerProvider
}

func defaultOptions() options {
	return options{
		cfg:   config.DefaultConfig(),
		bld:   builder.New(),
		namer: typeinfo.NewNamer(nil, typeinfo.Options{}),
		log:   logr.Discard(),
	}
}

// WithConfig sets the configuration.
func WithConfig(cfg apis.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithConfigOptions builds the configuration from config options.
func WithConfigOptions(opts ...config.Option) Option {
	return func(o *options) { o.cfg = config.NewConfig(opts...) }
}

// WithBuilder sets the builder composing registry, cache and tiers.
func WithBuilder(b apis.Builder) Option {
	return func(o *options) {
		if b != nil {
			o.bld = b
		}
	}
}

// WithSource sets the source rebuilds scan. A source that is also an
// apis.Hierarchy contributes the ancestry of the types it declares.
func WithSource(src apis.Source) Option {
	return func(o *options) { o.src = src }
}

// WithHierarchy adds a hierarchy consulted before the one learned from Go
// struct embedding.
func WithHierarchy(h apis.Hierarchy) Option {
	return func(o *options) { o.hier = h }
}

// WithNamer sets how Go values are mapped to model type names.
func WithNamer(n *typeinfo.Namer) Option {
	return func(o *options) {
		if n != nil {
			o.namer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics sets the metrics recorder. Registering its collectors is up
// to the caller.
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracerProvider sets the provider spans are created from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tp = tp }
}
