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

// Package properties provides key-value configuration sources used to
// resolve "{key}" description placeholders.
//
// Sources are composable: Chain consults several sources in order and the
// first defined key wins. File sources flatten nested YAML or TOML documents
// to dotted keys ("cache.size"). Watched keeps a file source current as the
// file changes on disk.
package properties

import (
	"os"
	"strings"

	"dirpx.dev/mbx/apis"
)

// Value returns the value of key in src, or def when src is nil or the key
// is not defined.
func Value(src apis.PropertySource, key, def string) string {
	if src == nil {
		return def
	}
	if v, ok := src.Lookup(key); ok {
		return v
	}
	return def
}

// Map is a static PropertySource. It must not be mutated once shared.
type Map map[string]string

// Lookup returns the value for key.
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Env looks keys up in the process environment. The key "cache.max-size"
// with Prefix "MBX" maps to MBX_CACHE_MAX_SIZE.
type Env struct {
	Prefix string
}

// Lookup returns the environment value for key.
func (e Env) Lookup(key string) (string, bool) {
	return os.LookupEnv(e.Name(key))
}

// Name returns the environment variable name used for key.
func (e Env) Name(key string) string {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if e.Prefix == "" {
		return name
	}
	return strings.ToUpper(e.Prefix) + "_" + name
}

// Chain consults sources in order; the first source defining a key wins.
// Nil sources are ignored.
func Chain(sources ...apis.PropertySource) apis.PropertySource {
	out := make(chain, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type chain []apis.PropertySource

func (c chain) Lookup(key string) (string, bool) {
	for _, s := range c {
		if v, ok := s.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}
