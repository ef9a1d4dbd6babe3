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

// Package mbean adapts a managed struct type to the apis.DynamicMBean
// protocol.
//
// An Adapter owns an immutable descriptor.Model built at construction and a
// lazily resolved backing instance obtained from an apis.BeanRegistry. Reads
// and writes go straight to the backing fields, bypassing visibility;
// conventional getters and setters only drive the descriptor's Readable and
// Writable flags.
//
// # Errors
//
// Unknown attribute or operation names, and backing instances that cannot
// be resolved, are reported to the caller. Failures while touching the
// backing instance (conversion errors, nil embedded pointers, errors returned
// or panics raised by an operation) are logged at error level and reported
// as an absent result, so a console stays usable when one attribute
// misbehaves. Get, Set and Call expose the same outcomes as a Result with an
// explicit Status for callers that need to tell them apart.
//
// # Resolution
//
// The backing instance is resolved on the first call that needs it and
// cached for the adapter's lifetime. Normal-scoped types use the registry's
// contextual reference. Dependent types resolve a bean explicitly, take a
// reference inside a fresh creation context and release that context right
// away. The cached reference therefore outlives its creation context: with a
// registry that destroys dependents on release, the adapter keeps talking to
// a destroyed object. Reset forgets the cached reference.
package mbean

import (
	"sync"

	"go.uber.org/zap"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/config"
	"dirpx.dev/mbx/descriptor"
	"dirpx.dev/mbx/scope"
)

// Adapter is an apis.DynamicMBean over one managed type.
type Adapter struct {
	meta   apis.Metadata
	model  *descriptor.Model
	beans  apis.BeanRegistry
	log    *zap.Logger
	holder apis.ContextHolder
	// captured is the resolution context active when the adapter was built.
	captured any

	// mu guards inst: check, resolve and store happen in one critical section.
	mu   sync.Mutex
	inst any
}

// Ensure Adapter implements apis.DynamicMBean.
var _ apis.DynamicMBean = (*Adapter)(nil)

// options collects construction knobs.
type options struct {
	cfg    apis.Config
	props  apis.PropertySource
	log    *zap.Logger
	holder apis.ContextHolder
}

// Option configures an Adapter.
type Option func(*options)

// WithConfig sets the configuration used to build the descriptor.
func WithConfig(cfg apis.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithProperties sets the source used to resolve description placeholders.
func WithProperties(src apis.PropertySource) Option {
	return func(o *options) { o.props = src }
}

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithContextHolder sets the holder whose current value is captured at
// construction and installed around every protocol call.
func WithContextHolder(h apis.ContextHolder) Option {
	return func(o *options) {
		if h != nil {
			o.holder = h
		}
	}
}

// New builds the descriptor of meta.Type and returns an adapter resolving
// its backing instance from beans.
func New(meta apis.Metadata, beans apis.BeanRegistry, opts ...Option) (*Adapter, error) {
	o := options{
		cfg:    config.DefaultConfig(),
		log:    zap.NewNop(),
		holder: scope.Global(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	model, err := descriptor.Build(meta, o.cfg, o.props)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		meta:     meta,
		model:    model,
		beans:    beans,
		log:      o.log.With(zap.String("mbean", model.Descriptor.ClassName())),
		holder:   o.holder,
		captured: o.holder.Load(),
	}, nil
}

// Descriptor returns the immutable descriptor.
func (a *Adapter) Descriptor() apis.Descriptor { return a.model.Descriptor }

// Metadata returns the metadata the adapter was built from.
func (a *Adapter) Metadata() apis.Metadata { return a.meta }

// enter installs the captured resolution context until the returned
// function runs.
func (a *Adapter) enter() func() {
	return scope.Enter(a.holder, a.captured)
}
