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

package strategy

import (
	"path"
	"reflect"
	"sync"

	"dirpx.dev/mbx/apis"
	uref "dirpx.dev/mbx/utils/reflect"
)

// NewReflectStrategy creates an apis.Strategy that derives ObjectNames via
// reflection using utils/reflect.Normalize and memoization.
func NewReflectStrategy() apis.Strategy {
	return reflectStrategy{}
}

// reflectStrategy is the universal fallback. It produces
// "<domain>:type=MBeans,name=<pkg>.<Type>" with generic parameters stripped.
type reflectStrategy struct{}

// Ensure reflectStrategy implements apis.Strategy.
var _ apis.Strategy = (*reflectStrategy)(nil)

// cacheKey ensures memoization respects all config knobs that affect resolution.
type cacheKey struct {
	t        reflect.Type
	domain   string
	maxEmbed int16
}

// objectNameCache caches derived names by (type, config knobs).
var objectNameCache sync.Map // key: cacheKey, val: string

// TryResolve derives the ObjectName for v's type.
func (reflectStrategy) TryResolve(v any, cfg apis.Config) (string, bool) {
	if v == nil {
		return "", false
	}
	return byType(reflect.TypeOf(v), cfg)
}

// TryResolveType derives the ObjectName for t.
func (reflectStrategy) TryResolveType(t reflect.Type, cfg apis.Config) (string, bool) {
	if t == nil {
		return "", false
	}
	return byType(t, cfg)
}

// byType derives the name for t with memoization. Types that do not
// normalize to a named struct are not handled.
func byType(t reflect.Type, cfg apis.Config) (string, bool) {
	key := cacheKey{t: t, domain: cfg.Domain, maxEmbed: int16(cfg.MaxEmbedDepth)}
	if v, ok := objectNameCache.Load(key); ok {
		name := v.(string)
		return name, name != ""
	}

	base, err := uref.Normalize(t, cfg)
	if err != nil || cfg.Domain == "" {
		objectNameCache.Store(key, "")
		return "", false
	}

	name := uref.StripTypeParams(base.Name())
	if p := base.PkgPath(); p != "" {
		name = path.Base(p) + "." + name
	}
	name = cfg.Domain + ":type=MBeans,name=" + name

	objectNameCache.Store(key, name)
	return name, true
}
