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
	"fmt"
	"math"
	"reflect"
	"unsafe"
)

var (
	// ErrNilInstance is returned when a nil pointer is met on a field path.
	ErrNilInstance = errors.New("reflect: nil pointer on field path")
	// ErrNotAddressable is returned when the root value is not a pointer to a struct.
	ErrNotAddressable = errors.New("reflect: instance is not a pointer to a struct")
	// ErrInconvertible is returned when a value cannot be converted to a target type.
	ErrInconvertible = errors.New("reflect: value is not convertible")
	// ErrArgumentCount is returned when a call receives the wrong number of arguments.
	ErrArgumentCount = errors.New("reflect: wrong number of arguments")
)

// FieldValue navigates index from root (a pointer to a struct) and returns a
// settable value of the target field, regardless of its visibility.
func FieldValue(root reflect.Value, index []int) (reflect.Value, error) {
	if !root.IsValid() || root.Kind() != reflect.Ptr || root.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotAddressable
	}
	v := root
	for _, x := range index {
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}, ErrNilInstance
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct || x >= v.NumField() {
			return reflect.Value{}, fmt.Errorf("%w: bad field index %v", ErrNotAddressable, index)
		}
		v = v.Field(x)
	}
	// Rebuild the value from its address to drop the read-only flag that
	// unexported fields carry.
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem(), nil
}

// Assign converts value to dst's type and stores it. A nil value stores the zero value.
func Assign(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	v, err := Convert(reflect.ValueOf(value), dst.Type())
	if err != nil {
		return err
	}
	dst.Set(v)
	return nil
}

// Convert returns v as a value of type t.
//
// Assignable values pass through. Numbers convert between numeric kinds when
// the value fits the target exactly (so JSON float64 decodes into int fields).
// Other values convert only between types of the same kind.
func Convert(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Zero(t), nil
	}
	vt := v.Type()
	if vt.AssignableTo(t) {
		return v, nil
	}
	if isNumber(vt.Kind()) && isNumber(t.Kind()) {
		return convertNumber(v, t)
	}
	if vt.Kind() == t.Kind() && vt.ConvertibleTo(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrInconvertible, vt, t)
}

// Args converts args to the parameter types of fn, a method type whose
// first input is the receiver.
func Args(fn reflect.Type, args []any) ([]reflect.Value, error) {
	params := fn.NumIn() - 1
	if fn.IsVariadic() {
		if len(args) < params-1 {
			return nil, fmt.Errorf("%w: got %d, want at least %d", ErrArgumentCount, len(args), params-1)
		}
	} else if len(args) != params {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrArgumentCount, len(args), params)
	}

	out := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if fn.IsVariadic() && i >= params-1 {
			pt = fn.In(params).Elem()
		} else {
			pt = fn.In(i + 1)
		}
		if a == nil {
			out[i] = reflect.Zero(pt)
			continue
		}
		v, err := Convert(reflect.ValueOf(a), pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	fail := fmt.Errorf("%w: %v does not fit %s", ErrInconvertible, v.Interface(), t)

	var f float64
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f = v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(v.Int())
	default:
		f = float64(v.Uint())
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n = v.Int()
		case reflect.Float32, reflect.Float64:
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
				return reflect.Value{}, fail
			}
			n = int64(f)
		default:
			if v.Uint() > math.MaxInt64 {
				return reflect.Value{}, fail
			}
			n = int64(v.Uint())
		}
		if out.OverflowInt(n) {
			return reflect.Value{}, fail
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var n uint64
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if v.Int() < 0 {
				return reflect.Value{}, fail
			}
			n = uint64(v.Int())
		case reflect.Float32, reflect.Float64:
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
				return reflect.Value{}, fail
			}
			n = uint64(f)
		default:
			n = v.Uint()
		}
		if out.OverflowUint(n) {
			return reflect.Value{}, fail
		}
		out.SetUint(n)
	default:
		if out.OverflowFloat(f) {
			return reflect.Value{}, fail
		}
		out.SetFloat(f)
	}
	return out, nil
}
