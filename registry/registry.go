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

// Package registry is an in-memory apis.BeanRegistry.
//
// It is a lookup table of bean definitions keyed by their normalized struct
// type. It never injects anything; a definition's Create function builds an
// instance on its own. Normal-scoped beans are created once and shared.
// Dependent beans are created for every reference and destroyed when the
// creation context they were created in is released.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/config"
	uref "dirpx.dev/mbx/utils/reflect"
)

var (
	// ErrNilType is returned when a definition has no type.
	ErrNilType = errors.New("mbx(registry): nil reflect.Type provided")
	// ErrNilFactory is returned when a definition has no Create function.
	ErrNilFactory = errors.New("mbx(registry): nil factory provided")
	// ErrConflictingRegistration indicates an attempt to register a second
	// bean with the same type and qualifier set.
	ErrConflictingRegistration = errors.New("mbx(registry): conflicting bean registration")
	// ErrUnsatisfied is returned when no bean matches a lookup.
	ErrUnsatisfied = errors.New("mbx(registry): unsatisfied bean lookup")
	// ErrAmbiguous is returned when several beans share the highest priority.
	ErrAmbiguous = errors.New("mbx(registry): ambiguous bean lookup")
	// ErrForeignBean is returned when a Bean was not created by this registry.
	ErrForeignBean = errors.New("mbx(registry): bean does not belong to this registry")
	// ErrTypeMismatch is returned when a reference is requested for a type the bean does not have.
	ErrTypeMismatch = errors.New("mbx(registry): bean type mismatch")
)

// Definition describes how a bean is created.
type Definition struct {
	// Type is the bean type; pointer types are normalized.
	Type reflect.Type
	// Qualifiers carried by the bean.
	Qualifiers []apis.Qualifier
	// Normal marks a normal-scoped bean (one shared instance).
	Normal bool
	// Priority disambiguates several matching beans; highest wins.
	Priority int
	// Create builds a new instance. It should return a pointer.
	Create func() (any, error)
	// Destroy, if set, is called for dependent instances on context release.
	Destroy func(any)
}

// Entry is a snapshot of one registered bean for diagnostics.
type Entry struct {
	Type       reflect.Type
	Qualifiers []apis.Qualifier
	Normal     bool
	Priority   int
}

// New constructs a Registry that normalizes types according to cfg.
// Only MaxEmbedDepth is used here.
func New(cfg apis.Config) *Registry {
	if cfg.MaxEmbedDepth <= 0 {
		cfg.MaxEmbedDepth = config.DefaultMaxEmbedDepth
	}
	return &Registry{cfg: cfg}
}

// Registry is a BeanRegistry backed by sync.Map.
// Reads are lock-free; writers copy the per-type bean list.
type Registry struct {
	// cfg is the configuration used for type normalization.
	cfg apis.Config
	// mu guards write-side consistency and counter
	mu sync.Mutex
	// m maps reflect.Type to an immutable []*bean.
	m sync.Map
	// count tracks the number of registered beans.
	count int
}

// Ensure Registry implements apis.BeanRegistry.
var _ apis.BeanRegistry = (*Registry)(nil)

// Register adds a bean definition.
func (r *Registry) Register(def Definition) error {
	// Validate inputs early.
	if def.Type == nil {
		return ErrNilType
	}
	if def.Create == nil {
		return ErrNilFactory
	}

	t, err := uref.Normalize(def.Type, r.cfg)
	if err != nil {
		return err
	}
	def.Type = t
	def.Qualifiers = normalizeQualifiers(def.Qualifiers)
	b := &bean{def: def}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.load(t)
	for _, o := range prev {
		if slices.Equal(o.def.Qualifiers, def.Qualifiers) {
			return fmt.Errorf("%w: %s %v", ErrConflictingRegistration, t, def.Qualifiers)
		}
	}
	next := append(slices.Clip(prev), b)
	r.m.Store(t, next)
	r.count++
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Beans returns every bean of type t carrying all of qualifiers.
func (r *Registry) Beans(t reflect.Type, qualifiers ...apis.Qualifier) []apis.Bean {
	if t == nil {
		return nil
	}
	nt, err := uref.Normalize(t, r.cfg)
	if err != nil {
		return nil
	}
	var out []apis.Bean
	for _, b := range r.load(nt) {
		if b.has(qualifiers) {
			out = append(out, b)
		}
	}
	return out
}

// Resolve picks the bean with the highest priority.
func (r *Registry) Resolve(beans []apis.Bean) (apis.Bean, error) {
	switch len(beans) {
	case 0:
		return nil, ErrUnsatisfied
	case 1:
		return beans[0], nil
	}

	var best apis.Bean
	bestPrio, tie := 0, false
	for _, b := range beans {
		p := priority(b)
		switch {
		case best == nil || p > bestPrio:
			best, bestPrio, tie = b, p, false
		case p == bestPrio:
			tie = true
		}
	}
	if tie {
		return nil, fmt.Errorf("%w: %d beans with priority %d", ErrAmbiguous, len(beans), bestPrio)
	}
	return best, nil
}

// CreateContext opens a creation context for bean.
func (r *Registry) CreateContext(_ apis.Bean) apis.CreationContext {
	return &creationContext{}
}

// Reference returns an instance of bean. Normal-scoped beans return their
// shared instance; dependent beans create a new one tracked by cc.
func (r *Registry) Reference(b apis.Bean, t reflect.Type, cc apis.CreationContext) (any, error) {
	bb, ok := b.(*bean)
	if !ok {
		return nil, ErrForeignBean
	}
	if t != nil {
		nt, err := uref.Normalize(t, r.cfg)
		if err != nil || nt != bb.def.Type {
			return nil, fmt.Errorf("%w: want %s, bean is %s", ErrTypeMismatch, t, bb.def.Type)
		}
	}
	if bb.def.Normal {
		return bb.shared()
	}
	inst, err := bb.def.Create()
	if err != nil {
		return nil, err
	}
	if c, ok := cc.(*creationContext); ok {
		c.track(bb, inst)
	}
	return inst, nil
}

// ContextualReference resolves the bean for t and qualifiers and returns a
// reference. Dependent instances obtained this way are never destroyed.
func (r *Registry) ContextualReference(t reflect.Type, qualifiers ...apis.Qualifier) (any, error) {
	b, err := r.Resolve(r.Beans(t, qualifiers...))
	if err != nil {
		return nil, fmt.Errorf("%s %v: %w", t, qualifiers, err)
	}
	return r.Reference(b, t, nil)
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, r.Count())
	r.m.Range(func(_, value any) bool {
		for _, b := range value.([]*bean) {
			entries = append(entries, Entry{
				Type:       b.def.Type,
				Qualifiers: slices.Clone(b.def.Qualifiers),
				Normal:     b.def.Normal,
				Priority:   b.def.Priority,
			})
		}
		return true
	})
	return entries
}

// Count returns the number of registered beans.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears all registered beans.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.Clear()
	r.count = 0
}

func (r *Registry) load(t reflect.Type) []*bean {
	if v, ok := r.m.Load(t); ok {
		return v.([]*bean)
	}
	return nil
}

// normalizeQualifiers returns a sorted, de-duplicated copy of qs.
func normalizeQualifiers(qs []apis.Qualifier) []apis.Qualifier {
	out := slices.Clone(qs)
	slices.Sort(out)
	return slices.Compact(out)
}

func priority(b apis.Bean) int {
	if bb, ok := b.(*bean); ok {
		return bb.def.Priority
	}
	return 0
}
