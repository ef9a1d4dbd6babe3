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

package reflect

import (
	"reflect"
	"slices"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/config"
)

// Field is a managed struct field reachable from a root struct type.
type Field struct {
	// Name is the display name (tag value or Go field name).
	Name string
	// Description is the raw description tag value, possibly empty.
	Description string
	// StructField is the field as declared by Owner.
	StructField reflect.StructField
	// Owner is the struct type that declares the field.
	Owner reflect.Type
	// Index is the field path from the root struct, through embedded structs.
	Index []int
	// Depth is the embedding depth (0 for the root's own fields).
	Depth int
}

// ManagedFields walks t and its embedded structs (breadth first, outer
// declarations first) and returns every field carrying cfg.FieldTag.
//
// Display names are unique: a managed field of an embedded struct is skipped
// when a shallower managed field already uses its name. Embedded structs that
// are themselves tagged are exposed as one attribute and not descended into.
func ManagedFields(t reflect.Type, cfg apis.Config) []Field {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	maxDepth := cfg.MaxEmbedDepth
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxEmbedDepth
	}
	tag := cfg.FieldTag
	if tag == "" {
		tag = config.DefaultFieldTag
	}
	descTag := cfg.DescriptionTag
	if descTag == "" {
		descTag = config.DefaultDescriptionTag
	}

	type node struct {
		t     reflect.Type
		index []int
		depth int
	}

	var out []Field
	seen := map[string]struct{}{}
	visited := map[reflect.Type]struct{}{}
	queue := []node{{t: t}}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		// Embedding cycles are only possible through pointers.
		if _, ok := visited[n.t]; ok {
			continue
		}
		visited[n.t] = struct{}{}

		for i := 0; i < n.t.NumField(); i++ {
			sf := n.t.Field(i)
			idx := append(slices.Clone(n.index), i)

			if v, ok := sf.Tag.Lookup(tag); ok {
				name := v
				if name == "" {
					name = sf.Name
				}
				if _, dup := seen[name]; dup {
					continue
				}
				seen[name] = struct{}{}
				out = append(out, Field{
					Name:        name,
					Description: sf.Tag.Get(descTag),
					StructField: sf,
					Owner:       n.t,
					Index:       idx,
					Depth:       n.depth,
				})
				continue
			}

			if !sf.Anonymous || n.depth+1 > maxDepth {
				continue
			}
			et := sf.Type
			if et.Kind() == reflect.Ptr {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				queue = append(queue, node{t: et, index: idx, depth: n.depth + 1})
			}
		}
	}
	return out
}
