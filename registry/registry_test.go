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

package registry_test

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/config"
	"dirpx.dev/mbx/registry"
)

type Cache struct{ id int64 }
type Store struct{}

var (
	cacheType = reflect.TypeOf(Cache{})
	serial    atomic.Int64
)

func newCache() (any, error) { return &Cache{id: serial.Add(1)}, nil }

func TestRegister_Errors(t *testing.T) {
	reg := registry.New(config.DefaultConfig())

	assert.ErrorIs(t, reg.Register(registry.Definition{Create: newCache}), registry.ErrNilType)
	assert.ErrorIs(t, reg.Register(registry.Definition{Type: cacheType}), registry.ErrNilFactory)
	assert.Error(t, reg.Register(registry.Definition{Type: reflect.TypeOf(0), Create: newCache}))

	require.NoError(t, reg.Register(registry.Definition{Type: cacheType, Qualifiers: []apis.Qualifier{"b", "a"}, Create: newCache}))
	// Same qualifier set in a different order conflicts; pointer types normalize.
	err := reg.Register(registry.Definition{Type: reflect.TypeOf(&Cache{}), Qualifiers: []apis.Qualifier{"a", "b", "a"}, Create: newCache})
	assert.ErrorIs(t, err, registry.ErrConflictingRegistration)

	assert.Equal(t, 1, reg.Count())
}

func TestBeans_QualifierMatching(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	reg.MustRegister(registry.Definition{Type: cacheType, Create: newCache})
	reg.MustRegister(registry.Definition{Type: cacheType, Qualifiers: []apis.Qualifier{"primary"}, Create: newCache})
	reg.MustRegister(registry.Definition{Type: cacheType, Qualifiers: []apis.Qualifier{"primary", "eu"}, Create: newCache})

	assert.Len(t, reg.Beans(cacheType), 3)
	assert.Len(t, reg.Beans(reflect.TypeOf(&Cache{}), "primary"), 2)
	assert.Len(t, reg.Beans(cacheType, "eu", "primary"), 1)
	assert.Empty(t, reg.Beans(cacheType, "us"))
	assert.Empty(t, reg.Beans(reflect.TypeOf(Store{})))
	assert.Empty(t, reg.Beans(nil))

	b := reg.Beans(cacheType, "eu")[0]
	assert.Equal(t, cacheType, b.Type())
	assert.Equal(t, []apis.Qualifier{"eu", "primary"}, b.Qualifiers())
	assert.False(t, b.NormalScoped())
}

func TestResolve_Priority(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	reg.MustRegister(registry.Definition{Type: cacheType, Qualifiers: []apis.Qualifier{"a"}, Priority: 1, Create: newCache})
	reg.MustRegister(registry.Definition{Type: cacheType, Qualifiers: []apis.Qualifier{"b"}, Priority: 5, Create: newCache})

	b, err := reg.Resolve(reg.Beans(cacheType))
	require.NoError(t, err)
	assert.Equal(t, []apis.Qualifier{"b"}, b.Qualifiers())

	reg.MustRegister(registry.Definition{Type: cacheType, Qualifiers: []apis.Qualifier{"c"}, Priority: 5, Create: newCache})
	_, err = reg.Resolve(reg.Beans(cacheType))
	assert.ErrorIs(t, err, registry.ErrAmbiguous)

	_, err = reg.Resolve(nil)
	assert.ErrorIs(t, err, registry.ErrUnsatisfied)
}

func TestReference_NormalIsShared(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	reg.MustRegister(registry.Definition{Type: cacheType, Normal: true, Create: newCache})

	a, err := reg.ContextualReference(cacheType)
	require.NoError(t, err)
	b, err := reg.ContextualReference(reflect.TypeOf(&Cache{}))
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.True(t, reg.Beans(cacheType)[0].NormalScoped())
}

func TestReference_DependentDestroyedOnRelease(t *testing.T) {
	var destroyed []int64
	reg := registry.New(config.DefaultConfig())
	reg.MustRegister(registry.Definition{
		Type:    cacheType,
		Create:  newCache,
		Destroy: func(v any) { destroyed = append(destroyed, v.(*Cache).id) },
	})

	bean, err := reg.Resolve(reg.Beans(cacheType))
	require.NoError(t, err)

	cc := reg.CreateContext(bean)
	first, err := reg.Reference(bean, cacheType, cc)
	require.NoError(t, err)
	second, err := reg.Reference(bean, cacheType, cc)
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	cc.Release()
	cc.Release()
	assert.Equal(t, []int64{second.(*Cache).id, first.(*Cache).id}, destroyed)
}

func TestReference_Errors(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	reg.MustRegister(registry.Definition{Type: cacheType, Create: newCache})
	bean := reg.Beans(cacheType)[0]

	_, err := reg.Reference(bean, reflect.TypeOf(Store{}), nil)
	assert.ErrorIs(t, err, registry.ErrTypeMismatch)

	_, err = reg.Reference(foreign{}, cacheType, nil)
	assert.ErrorIs(t, err, registry.ErrForeignBean)

	_, err = reg.ContextualReference(reflect.TypeOf(Store{}))
	assert.ErrorIs(t, err, registry.ErrUnsatisfied)

	boom := errors.New("boom")
	reg.MustRegister(registry.Definition{Type: reflect.TypeOf(Store{}), Normal: true, Create: func() (any, error) { return nil, boom }})
	_, err = reg.ContextualReference(reflect.TypeOf(Store{}))
	assert.ErrorIs(t, err, boom)

	assert.Panics(t, func() { reg.MustRegister(registry.Definition{Type: cacheType, Create: newCache}) })
}

func TestEntriesAndReset(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	reg.MustRegister(registry.Definition{Type: cacheType, Normal: true, Priority: 3, Create: newCache})
	reg.MustRegister(registry.Definition{Type: reflect.TypeOf(Store{}), Create: func() (any, error) { return &Store{}, nil }})

	assert.Len(t, reg.Entries(), 2)
	assert.Equal(t, 2, reg.Count())

	reg.Reset()
	assert.Zero(t, reg.Count())
	assert.Empty(t, reg.Entries())
	assert.Empty(t, reg.Beans(cacheType))
}

// TestConcurrentNormalReference verifies at most one shared instance is created.
func TestConcurrentNormalReference(t *testing.T) {
	var created atomic.Int32
	reg := registry.New(config.DefaultConfig())
	reg.MustRegister(registry.Definition{Type: cacheType, Normal: true, Create: func() (any, error) {
		created.Add(1)
		return &Cache{}, nil
	}})

	var wg sync.WaitGroup
	refs := make([]any, 32)
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			refs[i], _ = reg.ContextualReference(cacheType)
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, created.Load())
	for _, r := range refs {
		assert.Same(t, refs[0], r)
	}
}

type foreign struct{}

func (foreign) Type() reflect.Type           { return cacheType }
func (foreign) Qualifiers() []apis.Qualifier { return nil }
func (foreign) NormalScoped() bool           { return false }
