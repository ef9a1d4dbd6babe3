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

// Package server is an in-process MBean server: a table of DynamicMBeans
// addressed by ObjectName, with name-addressed forwarding of protocol calls.
package server

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"dirpx.dev/mbx/apis"
)

var (
	// ErrAlreadyRegistered is returned when the name is taken.
	ErrAlreadyRegistered = errors.New("mbx(server): name already registered")
	// ErrNotRegistered is returned when no mbean is registered under the name.
	ErrNotRegistered = errors.New("mbx(server): name not registered")
	// ErrNilMBean is returned when registering a nil mbean.
	ErrNilMBean = errors.New("mbx(server): nil mbean")
)

type entry struct {
	name ObjectName
	mb   apis.DynamicMBean
}

// Server is safe for concurrent use. Reads are lock-free.
type Server struct {
	log *zap.Logger
	// mu guards write-side consistency and counter
	mu sync.Mutex
	// m maps canonical name strings to *entry.
	m     sync.Map
	count int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs an empty Server.
func New(opts ...Option) *Server {
	s := &Server{log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register binds mb to name. Patterns are rejected.
func (s *Server) Register(name ObjectName, mb apis.DynamicMBean) error {
	if mb == nil {
		return ErrNilMBean
	}
	if name.IsZero() || name.IsPattern() {
		return fmt.Errorf("%w: %q cannot be registered", ErrInvalidName, name)
	}
	key := name.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, loaded := s.m.LoadOrStore(key, &entry{name: name, mb: mb}); loaded {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, key)
	}
	s.count++
	s.log.Info("mbean registered", zap.String("object_name", key), zap.String("class", mb.Descriptor().ClassName()))
	return nil
}

// Unregister removes the mbean bound to name.
func (s *Server) Unregister(name ObjectName) error {
	key := name.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, loaded := s.m.LoadAndDelete(key); !loaded {
		return fmt.Errorf("%w: %s", ErrNotRegistered, key)
	}
	s.count--
	s.log.Info("mbean unregistered", zap.String("object_name", key))
	return nil
}

// Lookup returns the mbean bound to name.
func (s *Server) Lookup(name ObjectName) (apis.DynamicMBean, bool) {
	v, ok := s.m.Load(name.String())
	if !ok {
		return nil, false
	}
	return v.(*entry).mb, true
}

// IsRegistered reports whether name is bound.
func (s *Server) IsRegistered(name ObjectName) bool {
	_, ok := s.Lookup(name)
	return ok
}

// Names returns the registered names matching pattern, sorted canonically.
// A zero pattern matches everything.
func (s *Server) Names(pattern ObjectName) []ObjectName {
	var out []ObjectName
	s.m.Range(func(_, v any) bool {
		e := v.(*entry)
		if pattern.IsZero() || pattern.Matches(e.name) {
			out = append(out, e.name)
		}
		return true
	})
	slices.SortFunc(out, func(a, b ObjectName) int {
		switch x, y := a.String(), b.String(); {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})
	return out
}

// Count returns the number of registered mbeans.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Reset unregisters everything.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Clear()
	s.count = 0
}

func (s *Server) mbean(name ObjectName) (apis.DynamicMBean, error) {
	mb, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	return mb, nil
}

// Descriptor returns the descriptor of the mbean bound to name.
func (s *Server) Descriptor(name ObjectName) (apis.Descriptor, error) {
	mb, err := s.mbean(name)
	if err != nil {
		return apis.Descriptor{}, err
	}
	return mb.Descriptor(), nil
}

// GetAttribute forwards to the mbean bound to name.
func (s *Server) GetAttribute(name ObjectName, attr string) (any, error) {
	mb, err := s.mbean(name)
	if err != nil {
		return nil, err
	}
	return mb.GetAttribute(attr)
}

// SetAttribute forwards to the mbean bound to name.
func (s *Server) SetAttribute(name ObjectName, attr string, value any) error {
	mb, err := s.mbean(name)
	if err != nil {
		return err
	}
	return mb.SetAttribute(attr, value)
}

// GetAttributes forwards to the mbean bound to name.
func (s *Server) GetAttributes(name ObjectName, attrs []string) ([]apis.Attribute, error) {
	mb, err := s.mbean(name)
	if err != nil {
		return nil, err
	}
	return mb.GetAttributes(attrs), nil
}

// SetAttributes forwards to the mbean bound to name.
func (s *Server) SetAttributes(name ObjectName, attrs []apis.Attribute) ([]apis.Attribute, error) {
	mb, err := s.mbean(name)
	if err != nil {
		return nil, err
	}
	return mb.SetAttributes(attrs), nil
}

// Invoke forwards to the mbean bound to name.
func (s *Server) Invoke(name ObjectName, op string, args []any, signature []string) (any, error) {
	mb, err := s.mbean(name)
	if err != nil {
		return nil, err
	}
	return mb.Invoke(op, args, signature)
}
