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

package mbx

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/config"
	"dirpx.dev/mbx/descriptor"
	"dirpx.dev/mbx/mbean"
	"dirpx.dev/mbx/registry"
	"dirpx.dev/mbx/resolver"
	"dirpx.dev/mbx/server"
)

// init publishes the default snapshot.
func init() {
	cfg := config.DefaultConfig()
	log := zap.NewNop()
	st.Store(&state{
		cfg:   cfg,
		beans: registry.New(cfg),
		srv:   server.New(server.WithLogger(log)),
		res:   resolver.Default(),
		log:   log,
	})
}

// ErrUnnamed is returned when no object name can be derived for a type.
var ErrUnnamed = errors.New("mbx: cannot derive an object name")

// Name returns the object name meta would be exposed under: the explicit
// Name if set, otherwise the resolver chain's name for meta.Type with
// Category, when set, replacing the configured domain.
func Name(meta apis.Metadata) (server.ObjectName, error) {
	if meta.Name != "" {
		return server.ParseName(meta.Name)
	}
	s := st.Load()
	cfg := s.cfg
	if meta.Category != "" {
		cfg.Domain = meta.Category
	}
	raw := s.res.ResolveType(meta.Type, cfg)
	if raw == "" {
		return server.ObjectName{}, fmt.Errorf("%w: %v", ErrUnnamed, meta.Type)
	}
	return server.ParseName(raw)
}

// Expose builds an adapter for meta over the global bean registry and
// registers it with the global server. opts are applied after the global
// config, properties and logger.
func Expose(meta apis.Metadata, opts ...mbean.Option) (server.ObjectName, *mbean.Adapter, error) {
	name, err := Name(meta)
	if err != nil {
		return server.ObjectName{}, nil, err
	}
	s := st.Load()
	base := []mbean.Option{
		mbean.WithConfig(s.cfg),
		mbean.WithProperties(s.props),
		mbean.WithLogger(s.log),
	}
	a, err := mbean.New(meta, s.beans, append(base, opts...)...)
	if err != nil {
		return server.ObjectName{}, nil, err
	}
	if err := s.srv.Register(name, a); err != nil {
		return server.ObjectName{}, nil, err
	}
	return name, a, nil
}

// ExposeType is Expose(descriptor.For[T](opts...)).
func ExposeType[T any](opts ...descriptor.Option) (server.ObjectName, *mbean.Adapter, error) {
	return Expose(descriptor.For[T](opts...))
}

// Unexpose removes the mbean registered under name from the global server.
func Unexpose(name string) error {
	n, err := server.ParseName(name)
	if err != nil {
		return err
	}
	return st.Load().srv.Unregister(n)
}

// SetAll explicitly sets all global state components.
// Nil arguments leave the corresponding component unchanged, except for
// props which is always replaced.
func SetAll(cfg *apis.Config, props apis.PropertySource, beans apis.BeanRegistry, srv *server.Server, res apis.Resolver, log *zap.Logger) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	if cfg != nil {
		next.cfg = config.Normalize(*cfg)
	}
	next.props = props
	if beans != nil {
		next.beans = beans
	}
	if srv != nil {
		next.srv = srv
	}
	if res != nil {
		next.res = res
	}
	if log != nil {
		next.log = log
	}
	st.Store(&next)
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration. Already exposed mbeans keep
// the configuration they were built with.
func SetConfig(cfg apis.Config) {
	update(func(s *state) { s.cfg = config.Normalize(cfg) })
}

// Properties returns the global property source, possibly nil.
func Properties() apis.PropertySource {
	return st.Load().props
}

// SetProperties sets the source used to resolve description placeholders.
func SetProperties(props apis.PropertySource) {
	update(func(s *state) { s.props = props })
}

// Beans returns the global bean registry.
func Beans() apis.BeanRegistry {
	return st.Load().beans
}

// SetBeans sets the global bean registry. Nil is ignored.
func SetBeans(beans apis.BeanRegistry) {
	if beans == nil {
		return
	}
	update(func(s *state) { s.beans = beans })
}

// Server returns the global management server.
func Server() *server.Server {
	return st.Load().srv
}

// SetServer sets the global management server. Nil is ignored.
func SetServer(srv *server.Server) {
	if srv == nil {
		return
	}
	update(func(s *state) { s.srv = srv })
}

// Resolver returns the global object-name resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver sets the global object-name resolver. Nil is ignored.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}
	update(func(s *state) { s.res = res })
}

// Logger returns the global logger.
func Logger() *zap.Logger {
	return st.Load().log
}

// SetLogger sets the logger handed to adapters built by Expose. Nil is ignored.
func SetLogger(log *zap.Logger) {
	if log == nil {
		return
	}
	update(func(s *state) { s.log = log })
}

// update copies the current snapshot, applies fn and publishes the copy.
func update(fn func(*state)) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	fn(&next)
	st.Store(&next)
}

// buildMu serializes writers so we never publish partially-built snapshots.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is an immutable snapshot published atomically via st.Store; never
// mutate fields of a published state.
type state struct {
	cfg   apis.Config
	props apis.PropertySource
	beans apis.BeanRegistry
	srv   *server.Server
	res   apis.Resolver
	log   *zap.Logger
}
