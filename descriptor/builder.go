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

package descriptor

import (
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/config"
	uref "dirpx.dev/mbx/utils/reflect"
)

var (
	// ErrNotStruct is returned when the managed type is not a named struct.
	ErrNotStruct = errors.New("mbx(descriptor): managed type must be a named struct")
	// ErrUnknownMethod is returned when an operation names a method that *T lacks.
	ErrUnknownMethod = errors.New("mbx(descriptor): unknown operation method")
	// ErrDuplicateOperation is returned when two operations share a name.
	ErrDuplicateOperation = errors.New("mbx(descriptor): duplicate operation name")
)

// Model is the result of Build: the immutable Descriptor plus the indexes the
// adapter dispatches through. A Model is read-only after Build.
type Model struct {
	// Type is the normalized managed struct type.
	Type reflect.Type
	// Descriptor is the management-facing metadata.
	Descriptor apis.Descriptor
	// Attributes indexes attributes by display name.
	Attributes map[string]*Attribute
	// Operations indexes operations by protocol name.
	Operations map[string]*Operation
}

// Attribute binds an attribute name to its backing field.
type Attribute struct {
	Name  string
	Field uref.Field
	// Getter and Setter are the conventional accessors found at build time.
	// They only drive the Readable/Writable flags; access is always direct.
	Getter, Setter *reflect.Method
}

// Operation binds an operation name to a method of the pointer type.
type Operation struct {
	Name   string
	Method reflect.Method
}

// Build derives the Model of meta.Type.
//
// props resolves "{key}" description placeholders and may be nil.
// Missing getters and setters are not errors.
func Build(meta apis.Metadata, cfg apis.Config, props apis.PropertySource) (*Model, error) {
	cfg = config.Normalize(cfg)

	t, err := uref.Normalize(meta.Type, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, err)
	}
	className := uref.QualifiedName(t)

	m := &Model{
		Type:       t,
		Attributes: map[string]*Attribute{},
		Operations: map[string]*Operation{},
	}

	fields := uref.ManagedFields(t, cfg)
	attrs := make([]apis.AttributeDescriptor, 0, len(fields))
	for _, f := range fields {
		a := &Attribute{Name: f.Name, Field: f}
		if g, ok := getter(f.Owner, f.StructField.Name); ok {
			a.Getter = &g
		}
		if s, ok := setter(f.Owner, f.StructField.Name, f.StructField.Type); ok {
			a.Setter = &s
		}
		m.Attributes[f.Name] = a
		attrs = append(attrs, apis.AttributeDescriptor{
			Name:        f.Name,
			Type:        f.StructField.Type.String(),
			Description: Describe(f.Description, className+"#"+f.Name, props),
			Readable:    a.Getter != nil,
			Writable:    a.Setter != nil,
		})
	}

	pt := reflect.PointerTo(t)
	ops := make([]apis.OperationDescriptor, 0, len(meta.Operations))
	for _, om := range meta.Operations {
		method, ok := pt.MethodByName(om.Method)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no method %q", ErrUnknownMethod, className, om.Method)
		}
		name := om.Name
		if name == "" {
			name = om.Method
		}
		if _, dup := m.Operations[name]; dup {
			return nil, fmt.Errorf("%w: %q on %s", ErrDuplicateOperation, name, className)
		}
		m.Operations[name] = &Operation{Name: name, Method: method}
		ops = append(ops, apis.OperationDescriptor{
			Name:        name,
			Signature:   Signature(method.Type),
			ReturnType:  returnType(method.Type),
			Description: Describe(om.Description, className+"#"+name, props),
		})
	}

	notes := make([]apis.NotificationDescriptor, 0, len(meta.Notifications))
	for _, n := range meta.Notifications {
		notes = append(notes, apis.NewNotificationDescriptor(
			n.Types,
			n.NotificationType,
			Describe(n.Description, className, props),
			n.Fields,
		))
	}

	m.Descriptor = apis.NewDescriptor(
		className,
		Describe(meta.Description, className, props),
		attrs, ops, notes,
	)
	return m, nil
}

// Signature lists the parameters of a method type, skipping the receiver.
// A variadic parameter is reported as "...T".
func Signature(mt reflect.Type) []apis.Parameter {
	out := make([]apis.Parameter, 0, mt.NumIn()-1)
	for i := 1; i < mt.NumIn(); i++ {
		pt := mt.In(i)
		if mt.IsVariadic() && i == mt.NumIn()-1 {
			out = append(out, apis.Parameter{Name: fmt.Sprintf("p%d", i), Type: "..." + pt.Elem().String()})
			continue
		}
		out = append(out, apis.Parameter{Name: fmt.Sprintf("p%d", i), Type: pt.String()})
	}
	return out
}

// returnType names the first non-error result, or "void".
func returnType(mt reflect.Type) string {
	for i := 0; i < mt.NumOut(); i++ {
		if mt.Out(i) != errorType {
			return mt.Out(i).String()
		}
	}
	return "void"
}
