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
	"errors"
	"reflect"
	"strings"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/config"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTypeNotNamed indicates that the provided type (after unwrapping
	// pointers) is not a named type (e.g., anonymous struct).
	ErrReflectTypeNotNamed = errors.New("reflect: type is not named")
	// ErrReflectNotStruct indicates that the provided type (after unwrapping
	// pointers) is not a struct.
	ErrReflectNotStruct = errors.New("reflect: type is not a struct")
)

// Normalize unwraps pointers according to cfg.MaxEmbedDepth and returns the
// named struct type underneath, or an error if there is none.
//
// Unwrapping policy:
//   - ptr -> Elem()
//   - struct: if t.Name() != "", return t; otherwise ErrReflectTypeNotNamed.
//   - anything else: ErrReflectNotStruct.
//
// If MaxEmbedDepth <= 0, DefaultMaxEmbedDepth is used.
func Normalize(t reflect.Type, cfg apis.Config) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	maxUnwrap := cfg.MaxEmbedDepth
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxEmbedDepth
	}

	for i := 0; t.Kind() == reflect.Ptr; i++ {
		if i >= maxUnwrap {
			return nil, ErrReflectNotStruct
		}
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, ErrReflectNotStruct
	}
	if t.Name() == "" {
		return nil, ErrReflectTypeNotNamed
	}
	return t, nil
}

// QualifiedName returns "import/path.Type" for named types, with generic
// instantiation parameters stripped, and t.String() otherwise.
func QualifiedName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + StripTypeParams(t.Name())
}

// StripTypeParams removes generic type instantiation suffix: "T[int,string]" -> "T".
func StripTypeParams(s string) string {
	if i := strings.IndexByte(s, '['); i >= 0 {
		return s[:i]
	}
	return s
}
