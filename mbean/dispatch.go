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

package mbean

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/descriptor"
	uref "dirpx.dev/mbx/utils/reflect"
)

var (
	// ErrWrongInstance is returned when the backing instance is not a *T of the managed type.
	ErrWrongInstance = errors.New("mbx(mbean): backing instance has the wrong type")
	// ErrSignatureMismatch is returned when an invoke signature does not match the operation.
	ErrSignatureMismatch = errors.New("mbx(mbean): signature mismatch")
)

var errorType = reflect.TypeFor[error]()

// Get reads the named attribute directly from the backing field.
func (a *Adapter) Get(name string) Result {
	attr, ok := a.model.Attributes[name]
	if !ok {
		return notFound(ErrAttributeNotFound, name)
	}
	defer a.enter()()

	inst, err := a.instance()
	if err != nil {
		return a.unresolved(err)
	}
	var v any
	err = guard(func() error {
		f, err := a.field(inst, attr)
		if err != nil {
			return err
		}
		v = f.Interface()
		return nil
	})
	if err != nil {
		return a.failed("can't get attribute value", name, err)
	}
	return Result{Value: v, Status: StatusOK}
}

// Set writes the named attribute directly to the backing field. value is
// converted to the field type when possible; nil stores the zero value.
func (a *Adapter) Set(name string, value any) Result {
	attr, ok := a.model.Attributes[name]
	if !ok {
		return notFound(ErrAttributeNotFound, name)
	}
	defer a.enter()()

	inst, err := a.instance()
	if err != nil {
		return a.unresolved(err)
	}
	var stored any
	err = guard(func() error {
		f, err := a.field(inst, attr)
		if err != nil {
			return err
		}
		if err := uref.Assign(f, value); err != nil {
			return err
		}
		stored = f.Interface()
		return nil
	})
	if err != nil {
		return a.failed("can't set attribute value", name, err)
	}
	return Result{Value: stored, Status: StatusOK}
}

// Call invokes the named operation on the backing instance. A non-empty
// signature must list the operation's parameter types.
func (a *Adapter) Call(op string, args []any, signature []string) Result {
	o, ok := a.model.Operations[op]
	if !ok {
		return notFound(ErrOperationNotFound, op)
	}
	defer a.enter()()

	inst, err := a.instance()
	if err != nil {
		return a.unresolved(err)
	}
	var v any
	err = guard(func() error {
		var err error
		v, err = a.call(inst, o, args, signature)
		return err
	})
	if err != nil {
		return a.failed("can't invoke operation", op, err)
	}
	return Result{Value: v, Status: StatusOK}
}

// GetAttribute implements apis.DynamicMBean.
func (a *Adapter) GetAttribute(name string) (any, error) {
	return a.Get(name).protocol()
}

// SetAttribute implements apis.DynamicMBean.
func (a *Adapter) SetAttribute(name string, value any) error {
	_, err := a.Set(name, value).protocol()
	return err
}

// GetAttributes implements apis.DynamicMBean. Names that are unknown or
// fail to read are skipped.
func (a *Adapter) GetAttributes(names []string) []apis.Attribute {
	out := make([]apis.Attribute, 0, len(names))
	for _, n := range names {
		if r := a.Get(n); r.OK() {
			out = append(out, apis.Attribute{Name: n, Value: r.Value})
		}
	}
	return out
}

// SetAttributes implements apis.DynamicMBean. It returns the pairs that were applied.
func (a *Adapter) SetAttributes(attrs []apis.Attribute) []apis.Attribute {
	out := make([]apis.Attribute, 0, len(attrs))
	for _, at := range attrs {
		if a.Set(at.Name, at.Value).OK() {
			out = append(out, at)
		}
	}
	return out
}

// Invoke implements apis.DynamicMBean.
func (a *Adapter) Invoke(op string, args []any, signature []string) (any, error) {
	return a.Call(op, args, signature).protocol()
}

// field returns the settable backing field of attr in inst.
func (a *Adapter) field(inst any, attr *descriptor.Attribute) (reflect.Value, error) {
	root, err := a.receiver(inst)
	if err != nil {
		return reflect.Value{}, err
	}
	return uref.FieldValue(root, attr.Field.Index)
}

// receiver checks that inst is a non-nil *T of the managed type.
func (a *Adapter) receiver(inst any) (reflect.Value, error) {
	root := reflect.ValueOf(inst)
	if root.Kind() != reflect.Ptr || root.Type().Elem() != a.model.Type {
		return reflect.Value{}, fmt.Errorf("%w: got %T, want *%s", ErrWrongInstance, inst, a.model.Type)
	}
	if root.IsNil() {
		return reflect.Value{}, fmt.Errorf("%w: nil %T", ErrWrongInstance, inst)
	}
	return root, nil
}

func (a *Adapter) call(inst any, o *descriptor.Operation, args []any, signature []string) (any, error) {
	mt := o.Method.Type
	if len(signature) > 0 {
		params := descriptor.Signature(mt)
		if len(params) != len(signature) {
			return nil, fmt.Errorf("%w: %s takes %d parameters, signature lists %d", ErrSignatureMismatch, o.Name, len(params), len(signature))
		}
		for i, p := range params {
			if p.Type != signature[i] {
				return nil, fmt.Errorf("%w: parameter %d is %s, signature says %s", ErrSignatureMismatch, i, p.Type, signature[i])
			}
		}
	}
	in, err := uref.Args(mt, args)
	if err != nil {
		return nil, err
	}
	root, err := a.receiver(inst)
	if err != nil {
		return nil, err
	}

	out := o.Method.Func.Call(append([]reflect.Value{root}, in...))
	if n := mt.NumOut(); n > 0 && mt.Out(n-1) == errorType {
		if e, _ := out[n-1].Interface().(error); e != nil {
			return nil, e
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

// guard runs fn and turns a panic into an error wrapping ErrTargetPanic.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrTargetPanic, p)
		}
	}()
	return fn()
}

func (a *Adapter) failed(msg, name string, err error) Result {
	a.log.Error(msg, zap.String("name", name), zap.Error(err))
	return Result{Status: StatusAccessFailed, Err: err}
}

func (a *Adapter) unresolved(err error) Result {
	a.log.Warn("backing instance unresolved", zap.Error(err))
	return Result{Status: StatusUnresolved, Err: err}
}
