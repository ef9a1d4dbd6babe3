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

package registry

import (
	"reflect"
	"slices"
	"sync"

	"dirpx.dev/mbx/apis"
)

// bean is the registry's apis.Bean.
type bean struct {
	def Definition

	// mu guards the shared instance of a normal-scoped bean.
	mu   sync.Mutex
	inst any
}

// Ensure bean implements apis.Bean.
var _ apis.Bean = (*bean)(nil)

func (b *bean) Type() reflect.Type { return b.def.Type }

func (b *bean) Qualifiers() []apis.Qualifier { return slices.Clone(b.def.Qualifiers) }

func (b *bean) NormalScoped() bool { return b.def.Normal }

// has reports whether b carries every qualifier in qs.
func (b *bean) has(qs []apis.Qualifier) bool {
	for _, q := range qs {
		if _, ok := slices.BinarySearch(b.def.Qualifiers, q); !ok {
			return false
		}
	}
	return true
}

// shared returns the single instance of a normal-scoped bean, creating it on
// first use. A failed creation is retried on the next call.
func (b *bean) shared() (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inst != nil {
		return b.inst, nil
	}
	inst, err := b.def.Create()
	if err != nil {
		return nil, err
	}
	b.inst = inst
	return inst, nil
}

// creationContext tracks dependent instances created for one request.
type creationContext struct {
	mu       sync.Mutex
	created  []tracked
	released bool
}

type tracked struct {
	bean *bean
	inst any
}

func (c *creationContext) track(b *bean, inst any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, tracked{bean: b, inst: inst})
}

// Release destroys tracked instances in reverse creation order. Further
// calls are no-ops.
func (c *creationContext) Release() {
	c.mu.Lock()
	created := c.created
	c.created = nil
	already := c.released
	c.released = true
	c.mu.Unlock()

	if already {
		return
	}
	for i := len(created) - 1; i >= 0; i-- {
		if d := created[i].bean.def.Destroy; d != nil {
			d(created[i].inst)
		}
	}
}
