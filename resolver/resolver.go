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

// Package resolver chains apis.Strategy values into an apis.Resolver that
// derives ObjectNames.
package resolver

import (
	"reflect"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/strategy"
)

// Default returns the standard chain: apis.Namer first, reflection last.
func Default() apis.Resolver {
	return New(strategy.NewNamerStrategy(), strategy.NewReflectStrategy())
}

// New returns a Resolver that asks strats in order; nil entries are dropped.
// It is safe for concurrent use when every strategy is.
func New(strats ...apis.Strategy) apis.Resolver {
	c := make(chain, 0, len(strats))
	for _, s := range strats {
		if s != nil {
			c = append(c, s)
		}
	}
	return c
}

type chain []apis.Strategy

// Resolve returns the first name a strategy handles, or "".
func (c chain) Resolve(v any, cfg apis.Config) string {
	return c.first(func(s apis.Strategy) (string, bool) { return s.TryResolve(v, cfg) })
}

// ResolveType returns the first name a strategy handles for t, or "".
func (c chain) ResolveType(t reflect.Type, cfg apis.Config) string {
	return c.first(func(s apis.Strategy) (string, bool) { return s.TryResolveType(t, cfg) })
}

func (c chain) first(try func(apis.Strategy) (string, bool)) string {
	for _, s := range c {
		if name, ok := try(s); ok {
			return name
		}
	}
	return ""
}
