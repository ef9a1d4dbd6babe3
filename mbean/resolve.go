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

package mbean

import (
	"fmt"
	"reflect"

	"dirpx.dev/mbx/apis"
)

// instance returns the backing instance, resolving it on first use.
// A failed resolution is not cached.
func (a *Adapter) instance() (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inst != nil {
		return a.inst, nil
	}
	defer a.enter()()

	inst, err := a.resolve()
	if err != nil {
		return nil, err
	}
	if isNil(inst) {
		return nil, fmt.Errorf("%w: %T", ErrNilReference, inst)
	}
	a.inst = inst
	return inst, nil
}

// isNil reports whether v is nil or a typed nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func (a *Adapter) resolve() (any, error) {
	t, qs := a.model.Type, a.meta.Qualifiers
	if a.beans == nil {
		return nil, fmt.Errorf("%w: no registry for %s", ErrNoBackingBean, t)
	}

	if a.meta.Scope == apis.ScopeNormal {
		ref, err := a.beans.ContextualReference(t, qs...)
		if err != nil {
			return nil, fmt.Errorf("mbx(mbean): contextual reference for %s %v: %w", t, qs, err)
		}
		return ref, nil
	}

	beans := a.beans.Beans(t, qs...)
	if len(beans) == 0 {
		return nil, fmt.Errorf("%w: type=%s qualifiers=%v", ErrNoBackingBean, t, qs)
	}
	bean, err := a.beans.Resolve(beans)
	if err != nil {
		return nil, fmt.Errorf("mbx(mbean): resolve %s %v: %w", t, qs, err)
	}
	cc := a.beans.CreateContext(bean)
	ref, err := a.beans.Reference(bean, t, cc)
	// The reference is kept after its context is released.
	cc.Release()
	if err != nil {
		return nil, fmt.Errorf("mbx(mbean): reference %s %v: %w", t, qs, err)
	}
	return ref, nil
}

// Resolved reports whether the backing instance has been resolved.
func (a *Adapter) Resolved() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inst != nil
}

// Reset forgets the cached backing instance; the next call resolves again.
func (a *Adapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inst = nil
}
