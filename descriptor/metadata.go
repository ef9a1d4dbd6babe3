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

// Package descriptor builds immutable management descriptors from the
// metadata of a managed struct type.
//
// Field metadata is read from struct tags:
//
//	type Cache struct {
//	    size    int    `mbx:"size" description:"{cache.size.description}"`
//	    evicted uint64 `mbx:""`
//	}
//
// Everything else (type description, operations, notifications, scope,
// qualifiers) is declared once with For:
//
//	meta := descriptor.For[Cache](
//	    descriptor.WithDescription("Entry cache"),
//	    descriptor.WithOperation("clear", "Clear", "drops every entry"),
//	)
//
// Build runs once per managed type and never touches the backing instance.
package descriptor

import (
	"reflect"
	"slices"

	"dirpx.dev/mbx/apis"
)

// For returns the Metadata of T with opts applied.
func For[T any](opts ...Option) apis.Metadata {
	meta := apis.Metadata{Type: reflect.TypeFor[T]()}
	for _, opt := range opts {
		opt(&meta)
	}
	return meta
}

// Option is a functional option that mutates apis.Metadata during construction.
type Option func(*apis.Metadata)

// WithName sets an explicit ObjectName.
func WithName(name string) Option {
	return func(m *apis.Metadata) { m.Name = name }
}

// WithCategory sets the ObjectName domain used when no explicit name is set.
func WithCategory(category string) Option {
	return func(m *apis.Metadata) { m.Category = category }
}

// WithDescription sets the type description.
func WithDescription(desc string) Option {
	return func(m *apis.Metadata) { m.Description = desc }
}

// WithScope sets the backing-instance scope.
func WithScope(s apis.Scope) Option {
	return func(m *apis.Metadata) { m.Scope = s }
}

// WithQualifiers appends registry qualifiers.
func WithQualifiers(qs ...apis.Qualifier) Option {
	return func(m *apis.Metadata) { m.Qualifiers = append(m.Qualifiers, qs...) }
}

// WithOperation exposes method under name. An empty name uses the method name.
func WithOperation(name, method, desc string) Option {
	return func(m *apis.Metadata) {
		m.Operations = append(m.Operations, apis.OperationMeta{Name: name, Method: method, Description: desc})
	}
}

// WithNotification declares a notification kind.
func WithNotification(n apis.NotificationMeta) Option {
	return func(m *apis.Metadata) {
		n.Types = slices.Clone(n.Types)
		m.Notifications = append(m.Notifications, n)
	}
}
