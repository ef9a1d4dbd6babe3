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

package resolver_test

import (
	"reflect"
	"testing"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/resolver"
	"dirpx.dev/mbx/strategy"
)

type plain struct{}

type custom struct{}

func (*custom) MBeanName() string { return "app:type=Custom" }

type fixed string

func (f fixed) TryResolve(any, apis.Config) (string, bool) { return string(f), f != "" }

func (f fixed) TryResolveType(reflect.Type, apis.Config) (string, bool) {
	return string(f), f != ""
}

func TestChain(t *testing.T) {
	conf := apis.Config{Domain: "app", MaxEmbedDepth: 8}
	r := resolver.New(nil, strategy.NewNamerStrategy(), strategy.NewReflectStrategy())

	cases := []struct {
		name string
		typ  reflect.Type
		want string
	}{
		{"namer first", reflect.TypeFor[custom](), "app:type=Custom"},
		{"reflect fallback", reflect.TypeFor[*plain](), "app:type=MBeans,name=resolver_test.plain"},
		{"unhandled", reflect.TypeFor[int](), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.ResolveType(tc.typ, conf); got != tc.want {
				t.Fatalf("ResolveType: got %q, want %q", got, tc.want)
			}
		})
	}

	if got := r.Resolve(&custom{}, conf); got != "app:type=Custom" {
		t.Fatalf("Resolve: got %q", got)
	}
	if got := resolver.Default().ResolveType(reflect.TypeFor[plain](), conf); got != "app:type=MBeans,name=resolver_test.plain" {
		t.Fatalf("Default: got %q", got)
	}
}

func TestChain_OrderAndEmpty(t *testing.T) {
	conf := apis.Config{}
	r := resolver.New(fixed(""), fixed("first:k=v"), fixed("second:k=v"))
	if got := r.ResolveType(nil, conf); got != "first:k=v" {
		t.Fatalf("got %q, want first:k=v", got)
	}
	if got := resolver.New().Resolve(plain{}, conf); got != "" {
		t.Fatalf("empty chain: got %q", got)
	}
}
