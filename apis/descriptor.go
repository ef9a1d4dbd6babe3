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

package apis

import (
	"maps"
	"slices"
)

// Descriptor is the immutable management view of a managed type.
// All accessors return copies; a Descriptor never changes after NewDescriptor.
type Descriptor struct {
	className     string
	description   string
	attributes    []AttributeDescriptor
	operations    []OperationDescriptor
	notifications []NotificationDescriptor
}

// NewDescriptor constructs a Descriptor, copying every input slice.
func NewDescriptor(
	className, description string,
	attrs []AttributeDescriptor,
	ops []OperationDescriptor,
	notes []NotificationDescriptor,
) Descriptor {
	d := Descriptor{
		className:     className,
		description:   description,
		attributes:    slices.Clone(attrs),
		operations:    make([]OperationDescriptor, len(ops)),
		notifications: make([]NotificationDescriptor, len(notes)),
	}
	for i, op := range ops {
		d.operations[i] = op.clone()
	}
	for i, n := range notes {
		d.notifications[i] = n.clone()
	}
	return d
}

// ClassName returns the qualified name of the managed type.
func (d Descriptor) ClassName() string { return d.className }

// Description returns the resolved type description.
func (d Descriptor) Description() string { return d.description }

// Attributes returns the attribute descriptors in declaration order.
func (d Descriptor) Attributes() []AttributeDescriptor { return slices.Clone(d.attributes) }

// Attribute returns the attribute descriptor with the given name.
func (d Descriptor) Attribute(name string) (AttributeDescriptor, bool) {
	for _, a := range d.attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeDescriptor{}, false
}

// Operations returns the operation descriptors in declaration order.
func (d Descriptor) Operations() []OperationDescriptor {
	out := make([]OperationDescriptor, len(d.operations))
	for i, op := range d.operations {
		out[i] = op.clone()
	}
	return out
}

// Operation returns the operation descriptor with the given name.
func (d Descriptor) Operation(name string) (OperationDescriptor, bool) {
	for _, op := range d.operations {
		if op.Name == name {
			return op.clone(), true
		}
	}
	return OperationDescriptor{}, false
}

// Notifications returns the notification descriptors in declaration order.
func (d Descriptor) Notifications() []NotificationDescriptor {
	out := make([]NotificationDescriptor, len(d.notifications))
	for i, n := range d.notifications {
		out[i] = n.clone()
	}
	return out
}

// AttributeDescriptor describes one managed attribute.
type AttributeDescriptor struct {
	// Name is unique within a Descriptor.
	Name string
	// Type is the declared Go type of the backing field.
	Type string
	// Description is the resolved description.
	Description string
	// Readable reports whether a conventional getter exists.
	Readable bool
	// Writable reports whether a conventional setter exists.
	Writable bool
}

// Parameter is one entry of an operation signature.
type Parameter struct {
	Name string
	Type string
}

// OperationDescriptor describes one managed operation.
type OperationDescriptor struct {
	Name        string
	Signature   []Parameter
	ReturnType  string
	Description string
}

func (o OperationDescriptor) clone() OperationDescriptor {
	o.Signature = slices.Clone(o.Signature)
	return o
}

// NotificationDescriptor describes one notification kind.
type NotificationDescriptor struct {
	Types            []string
	NotificationType string
	Description      string
	fields           map[string]string
}

// NewNotificationDescriptor constructs a NotificationDescriptor with a private
// copy of fields.
func NewNotificationDescriptor(types []string, notificationType, description string, fields map[string]string) NotificationDescriptor {
	return NotificationDescriptor{
		Types:            slices.Clone(types),
		NotificationType: notificationType,
		Description:      description,
		fields:           maps.Clone(fields),
	}
}

// Fields returns a copy of the extra descriptor attributes.
func (n NotificationDescriptor) Fields() map[string]string { return maps.Clone(n.fields) }

// Field returns a single extra descriptor attribute.
func (n NotificationDescriptor) Field(key string) (string, bool) {
	v, ok := n.fields[key]
	return v, ok
}

func (n NotificationDescriptor) clone() NotificationDescriptor {
	n.Types = slices.Clone(n.Types)
	n.fields = maps.Clone(n.fields)
	return n
}
