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

package reflect_test

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/mbx/apis"
	uref "dirpx.dev/mbx/utils/reflect"
)

// Local test types.
type A struct{}
type G[T any] struct{}

// cfg returns a convenient baseline Config for tests.
func cfg(opts ...func(*apis.Config)) apis.Config {
	c := apis.Config{
		FieldTag:       "mbx",
		DescriptionTag: "description",
		MaxEmbedDepth:  8,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func TestNormalize_Pointers(t *testing.T) {
	conf := cfg()

	cases := []struct {
		name string
		typ  reflect.Type
		want reflect.Type
	}{
		{"plain", reflect.TypeOf(A{}), reflect.TypeOf(A{})},
		{"ptr", reflect.TypeOf(&A{}), reflect.TypeOf(A{})},
		{"ptr ptr", reflect.TypeOf((**A)(nil)), reflect.TypeOf(A{})},
		{"generic", reflect.TypeOf(G[int]{}), reflect.TypeOf(G[int]{})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := uref.Normalize(tc.typ, conf)
			if err != nil {
				t.Fatalf("Normalize(%v) returned error: %v", tc.typ, err)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%v) = %v, want %v", tc.typ, got, tc.want)
			}
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	if _, err := uref.Normalize(nil, cfg()); !errors.Is(err, uref.ErrReflectNilType) {
		t.Fatalf("nil type: want ErrReflectNilType, got %v", err)
	}
	if _, err := uref.Normalize(reflect.TypeOf(struct{ X int }{}), cfg()); !errors.Is(err, uref.ErrReflectTypeNotNamed) {
		t.Fatalf("anonymous struct: want ErrReflectTypeNotNamed, got %v", err)
	}
	if _, err := uref.Normalize(reflect.TypeOf([]A{}), cfg()); !errors.Is(err, uref.ErrReflectNotStruct) {
		t.Fatalf("slice: want ErrReflectNotStruct, got %v", err)
	}
	if _, err := uref.Normalize(reflect.TypeOf(42), cfg()); !errors.Is(err, uref.ErrReflectNotStruct) {
		t.Fatalf("int: want ErrReflectNotStruct, got %v", err)
	}
	// **A with a depth limit of 1 never reaches the struct.
	if _, err := uref.Normalize(reflect.TypeOf((**A)(nil)), cfg(func(c *apis.Config) { c.MaxEmbedDepth = 1 })); err == nil {
		t.Fatalf("MaxEmbedDepth=1: expected error, got nil")
	}
}

func TestQualifiedName(t *testing.T) {
	cases := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{"named", reflect.TypeOf(A{}), "dirpx.dev/mbx/utils/reflect_test.A"},
		{"generic strips params", reflect.TypeOf(G[int]{}), "dirpx.dev/mbx/utils/reflect_test.G"},
		{"builtin", reflect.TypeOf(0), "int"},
		{"pointer", reflect.TypeOf(&A{}), "*reflect_test.A"},
		{"nil", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := uref.QualifiedName(tc.typ); got != tc.want {
				t.Fatalf("QualifiedName(%v) = %q, want %q", tc.typ, got, tc.want)
			}
		})
	}
}

// This test stresses Normalize concurrently to smoke-test thread safety of the logic.
func TestNormalize_Concurrent(t *testing.T) {
	types := []reflect.Type{
		reflect.TypeOf(A{}),
		reflect.TypeOf(&A{}),
		reflect.TypeOf(G[int]{}),
	}
	conf := cfg()

	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	wg.Add(workers)

	errCh := make(chan error, workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				rt, err := uref.Normalize(types[i%len(types)], conf)
				if err != nil {
					errCh <- err
					return
				}
				if rt == nil || rt.Name() == "" {
					errCh <- errors.New("got unnamed or nil type")
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errCh)
	for e := range errCh {
		t.Fatal(e)
	}
}
