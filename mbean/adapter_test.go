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

package mbean_test

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/config"
	"dirpx.dev/mbx/descriptor"
	"dirpx.dev/mbx/mbean"
	"dirpx.dev/mbx/properties"
	"dirpx.dev/mbx/registry"
	"dirpx.dev/mbx/scope"
)

type Counter struct {
	count int `mbx:"count"`
}

func (c *Counter) GetCount() int  { return c.count }
func (c *Counter) SetCount(n int) { c.count = n }
func (c *Counter) Reset()         { c.count = 0 }
func (c *Counter) Add(n int) int  { c.count += n; return c.count }
func (c *Counter) Fail() error    { return errors.New("boom") }
func (c *Counter) Panic()         { panic("kaboom") }

func counterMeta(opts ...descriptor.Option) apis.Metadata {
	opts = append([]descriptor.Option{
		descriptor.WithOperation("reset", "Reset", ""),
		descriptor.WithOperation("add", "Add", "adds n"),
		descriptor.WithOperation("fail", "Fail", ""),
		descriptor.WithOperation("panic", "Panic", ""),
	}, opts...)
	return descriptor.For[Counter](opts...)
}

// stub is a BeanRegistry that counts calls and can be told to fail.
type stub struct {
	mu       sync.Mutex
	inst     any
	fail     error
	contexts atomic.Int32
	releases atomic.Int32
	refs     atomic.Int32
	lookups  atomic.Int32
	onRef    func()
}

type stubBean struct{ t reflect.Type }

func (b stubBean) Type() reflect.Type           { return b.t }
func (b stubBean) Qualifiers() []apis.Qualifier { return nil }
func (b stubBean) NormalScoped() bool           { return false }

type stubContext struct{ s *stub }

func (c stubContext) Release() { c.s.releases.Add(1) }

func (s *stub) ContextualReference(t reflect.Type, _ ...apis.Qualifier) (any, error) {
	s.lookups.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	return s.inst, nil
}

func (s *stub) Beans(t reflect.Type, _ ...apis.Qualifier) []apis.Bean {
	s.lookups.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil
	}
	return []apis.Bean{stubBean{t: t}}
}

func (s *stub) Resolve(beans []apis.Bean) (apis.Bean, error) { return beans[0], nil }

func (s *stub) CreateContext(apis.Bean) apis.CreationContext {
	s.contexts.Add(1)
	return stubContext{s: s}
}

func (s *stub) Reference(apis.Bean, reflect.Type, apis.CreationContext) (any, error) {
	s.refs.Add(1)
	if s.onRef != nil {
		s.onRef()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inst, nil
}

func (s *stub) setFail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func newAdapter(t *testing.T, meta apis.Metadata, beans apis.BeanRegistry, opts ...mbean.Option) *mbean.Adapter {
	t.Helper()
	a, err := mbean.New(meta, beans, opts...)
	require.NoError(t, err)
	return a
}

func TestAdapter_CountResetScenario(t *testing.T) {
	c := &Counter{}
	a := newAdapter(t, counterMeta(), &stub{inst: c})

	require.NoError(t, a.SetAttribute("count", 5))
	v, err := a.GetAttribute("count")
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = a.Invoke("reset", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = a.GetAttribute("count")
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	assert.Equal(t, 0, c.count)
}

func TestAdapter_NotFoundInEveryState(t *testing.T) {
	s := &stub{inst: &Counter{}}
	a := newAdapter(t, counterMeta(), s)

	check := func() {
		_, err := a.GetAttribute("missing")
		assert.ErrorIs(t, err, mbean.ErrAttributeNotFound)
		assert.ErrorIs(t, a.SetAttribute("missing", 1), mbean.ErrAttributeNotFound)
		_, err = a.Invoke("missing", nil, nil)
		assert.ErrorIs(t, err, mbean.ErrOperationNotFound)
		assert.Equal(t, mbean.StatusNotFound, a.Get("missing").Status)
	}

	check()
	assert.False(t, a.Resolved())
	assert.Zero(t, s.lookups.Load(), "unknown names must not trigger resolution")

	_, err := a.GetAttribute("count")
	require.NoError(t, err)
	require.True(t, a.Resolved())
	check()
}

func TestAdapter_GetAttributesSizeLaw(t *testing.T) {
	a := newAdapter(t, counterMeta(), &stub{inst: &Counter{count: 3}})

	got := a.GetAttributes([]string{"count", "nope", "count", "other"})
	assert.Len(t, got, 2)
	for _, at := range got {
		assert.Equal(t, apis.Attribute{Name: "count", Value: 3}, at)
	}
	assert.Empty(t, a.GetAttributes(nil))
}

func TestAdapter_SetAttributesReturnsApplied(t *testing.T) {
	c := &Counter{}
	a := newAdapter(t, counterMeta(), &stub{inst: c})

	applied := a.SetAttributes([]apis.Attribute{
		{Name: "count", Value: int64(7)},
		{Name: "nope", Value: 1},
		{Name: "count", Value: "text"},
	})
	assert.Equal(t, []apis.Attribute{{Name: "count", Value: int64(7)}}, applied)
	assert.Equal(t, 7, c.count)
}

func TestAdapter_Invoke(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	c := &Counter{count: 1}
	a := newAdapter(t, counterMeta(), &stub{inst: c}, mbean.WithLogger(zap.New(core)))

	v, err := a.Invoke("add", []any{2}, []string{"int"})
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	r := a.Call("add", []any{1}, []string{"string"})
	assert.Equal(t, mbean.StatusAccessFailed, r.Status)
	assert.ErrorIs(t, r.Err, mbean.ErrSignatureMismatch)

	r = a.Call("add", nil, nil)
	assert.Equal(t, mbean.StatusAccessFailed, r.Status)

	r = a.Call("fail", nil, nil)
	assert.Equal(t, mbean.StatusAccessFailed, r.Status)
	assert.EqualError(t, r.Err, "boom")

	v, err = a.Invoke("panic", nil, nil)
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.ErrorIs(t, a.Call("panic", nil, nil).Err, mbean.ErrTargetPanic)

	assert.Equal(t, 3, c.count)
	assert.Equal(t, 5, logs.FilterMessage("can't invoke operation").Len())
}

func TestAdapter_AccessFailureIsSoft(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	a := newAdapter(t, counterMeta(), &stub{inst: &struct{}{}}, mbean.WithLogger(zap.New(core)))

	v, err := a.GetAttribute("count")
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.NoError(t, a.SetAttribute("count", 1))

	r := a.Get("count")
	assert.Equal(t, mbean.StatusAccessFailed, r.Status)
	assert.ErrorIs(t, r.Err, mbean.ErrWrongInstance)

	entries := logs.FilterField(zap.String("name", "count")).All()
	require.Len(t, entries, 3)
	assert.Equal(t, "can't get attribute value", entries[0].Message)
	assert.Equal(t, "can't set attribute value", entries[1].Message)
}

func TestAdapter_NormalScopeResolvesOnce(t *testing.T) {
	s := &stub{inst: &Counter{}}
	a := newAdapter(t, counterMeta(descriptor.WithScope(apis.ScopeNormal)), s)

	for i := 0; i < 5; i++ {
		_, err := a.GetAttribute("count")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, s.lookups.Load())
	assert.Zero(t, s.contexts.Load())
}

func TestAdapter_ConcurrentDependentResolution(t *testing.T) {
	s := &stub{inst: &Counter{}}
	started := make(chan struct{})
	s.onRef = func() { <-started }
	a := newAdapter(t, counterMeta(), s)

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := a.GetAttribute("count")
			assert.NoError(t, err)
		}()
	}
	close(started)
	wg.Wait()

	assert.EqualValues(t, 1, s.contexts.Load())
	assert.EqualValues(t, 1, s.refs.Load())
	assert.EqualValues(t, 1, s.releases.Load())
}

func TestAdapter_FailedResolutionIsRetried(t *testing.T) {
	s := &stub{inst: &Counter{count: 9}}
	s.setFail(errors.New("not yet"))
	a := newAdapter(t, counterMeta(), s)

	_, err := a.GetAttribute("count")
	assert.ErrorIs(t, err, mbean.ErrNoBackingBean)
	assert.Equal(t, mbean.StatusUnresolved, a.Get("count").Status)
	assert.False(t, a.Resolved())

	s.setFail(nil)
	v, err := a.GetAttribute("count")
	require.NoError(t, err)
	assert.Equal(t, 9, v)

	a.Reset()
	assert.False(t, a.Resolved())
}

func TestAdapter_NilReference(t *testing.T) {
	a := newAdapter(t, counterMeta(), &stub{})
	_, err := a.GetAttribute("count")
	assert.ErrorIs(t, err, mbean.ErrNilReference)

	a = newAdapter(t, counterMeta(), nil)
	_, err = a.GetAttribute("count")
	assert.ErrorIs(t, err, mbean.ErrNoBackingBean)
}

func TestAdapter_ContextSwappedAndRestored(t *testing.T) {
	h := scope.New("build")
	c := &Counter{}
	var seen []any
	s := &stub{inst: c}
	s.onRef = func() { seen = append(seen, h.Load()) }
	a := newAdapter(t, counterMeta(), s, mbean.WithContextHolder(h))

	h.Swap("caller")
	_, err := a.GetAttribute("count")
	require.NoError(t, err)
	assert.Equal(t, []any{"build"}, seen)
	assert.Equal(t, "caller", h.Load())

	_, _ = a.Invoke("panic", nil, nil)
	assert.Equal(t, "caller", h.Load())

	a.Reset()
	s.setFail(errors.New("down"))
	_, err = a.GetAttribute("count")
	assert.Error(t, err)
	assert.Equal(t, "caller", h.Load())
}

func TestAdapter_CrossedCallsRestoreContext(t *testing.T) {
	h := scope.New("ctxA")
	blocking := func(entered chan<- any, release <-chan struct{}) *stub {
		s := &stub{inst: &Counter{}}
		s.onRef = func() {
			entered <- h.Load()
			<-release
		}
		return s
	}

	enteredA, releaseA := make(chan any), make(chan struct{})
	a := newAdapter(t, counterMeta(), blocking(enteredA, releaseA), mbean.WithContextHolder(h))
	h.Swap("ctxB")
	enteredB, releaseB := make(chan any), make(chan struct{})
	b := newAdapter(t, counterMeta(), blocking(enteredB, releaseB), mbean.WithContextHolder(h))
	h.Swap("caller")

	var wg sync.WaitGroup
	call := func(ad *mbean.Adapter) <-chan struct{} {
		done := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(done)
			_, err := ad.GetAttribute("count")
			assert.NoError(t, err)
		}()
		return done
	}

	doneA := call(a)
	assert.Equal(t, "ctxA", <-enteredA)
	doneB := call(b)
	assert.Equal(t, "ctxB", <-enteredB)

	close(releaseA)
	<-doneA
	assert.Equal(t, "ctxB", h.Load())

	close(releaseB)
	<-doneB
	wg.Wait()
	assert.Equal(t, "caller", h.Load())
	assert.Zero(t, h.Depth())

	var seen any
	s := &stub{inst: &Counter{}}
	s.onRef = func() { seen = h.Load() }
	later := newAdapter(t, counterMeta(), s, mbean.WithContextHolder(h))
	_, err := later.GetAttribute("count")
	require.NoError(t, err)
	assert.Equal(t, "caller", seen)
}

func TestAdapter_TypedNilReferenceIsRetried(t *testing.T) {
	s := &stub{inst: (*Counter)(nil)}
	a := newAdapter(t, counterMeta(), s)

	r := a.Get("count")
	assert.Equal(t, mbean.StatusUnresolved, r.Status)
	assert.ErrorIs(t, r.Err, mbean.ErrNilReference)
	assert.False(t, a.Resolved())

	s.mu.Lock()
	s.inst = &Counter{count: 2}
	s.mu.Unlock()

	r = a.Get("count")
	require.Equal(t, mbean.StatusOK, r.Status)
	assert.Equal(t, 2, r.Value)
	assert.True(t, a.Resolved())
}

func TestAdapter_WithRegistry(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	var destroyed atomic.Int32
	reg.MustRegister(registry.Definition{
		Type:       reflect.TypeFor[Counter](),
		Qualifiers: []apis.Qualifier{"primary"},
		Create:     func() (any, error) { return &Counter{count: 4}, nil },
		Destroy:    func(any) { destroyed.Add(1) },
	})

	a := newAdapter(t, counterMeta(descriptor.WithQualifiers("primary")), reg)
	v, err := a.GetAttribute("count")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.EqualValues(t, 1, destroyed.Load())

	// the reference outlives its released context
	v, err = a.Invoke("add", []any{1}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	missing := newAdapter(t, counterMeta(descriptor.WithQualifiers("secondary")), reg)
	_, err = missing.GetAttribute("count")
	assert.ErrorIs(t, err, mbean.ErrNoBackingBean)
}

type Greeter struct {
	greeting string `mbx:"greeting" description:"{my.key}"`
}

func TestAdapter_PlaceholderDescription(t *testing.T) {
	meta := descriptor.For[Greeter]()

	a := newAdapter(t, meta, nil, mbean.WithProperties(properties.Map{"my.key": "Hello"}))
	attr, ok := a.Descriptor().Attribute("greeting")
	require.True(t, ok)
	assert.Equal(t, "Hello", attr.Description)

	a = newAdapter(t, meta, nil)
	attr, _ = a.Descriptor().Attribute("greeting")
	assert.Equal(t, "dirpx.dev/mbx/mbean_test.Greeter#greeting", attr.Description)
}
