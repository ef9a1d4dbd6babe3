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

import "reflect"

// Scope tells the adapter how the backing instance of a managed type is
// obtained from a BeanRegistry.
type Scope uint8

const (
	// ScopeDependent resolves the backing bean explicitly: find, resolve,
	// create a creation context, take a reference, release the context.
	ScopeDependent Scope = iota
	// ScopeNormal asks the registry for a contextual reference that is
	// lifecycle-transparent and safe to cache indefinitely.
	ScopeNormal
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeNormal:
		return "normal"
	default:
		return "dependent"
	}
}

// Metadata is the explicitly declared capability table of a managed type.
// Field-level metadata lives in struct tags; everything that cannot be
// attached to a field is declared here.
type Metadata struct {
	// Type is the managed struct type (pointer types are normalized).
	Type reflect.Type
	// Name is an explicit ObjectName. Empty means "derive one".
	Name string
	// Category overrides Config.Domain when deriving an ObjectName.
	Category string
	// Description of the type. May be a "{key}" property placeholder.
	Description string
	// Scope selects the backing-instance resolution path.
	Scope Scope
	// Qualifiers narrow the registry lookup of the backing bean.
	Qualifiers []Qualifier
	// Operations lists the methods exposed as management operations.
	Operations []OperationMeta
	// Notifications lists the notifications the type declares.
	Notifications []NotificationMeta
}

// OperationMeta declares one managed operation.
type OperationMeta struct {
	// Name is the protocol name. Defaults to Method.
	Name string
	// Method is the exported method name on the pointer type.
	Method string
	// Description may be a "{key}" property placeholder.
	Description string
}

// NotificationMeta declares one notification kind emitted by a managed type.
type NotificationMeta struct {
	// Types are the event type strings (e.g. "cache.evicted").
	Types []string
	// NotificationType is the name of the notification payload type.
	NotificationType string
	// Description may be a "{key}" property placeholder.
	Description string
	// Fields are extra descriptor attributes.
	Fields map[string]string
}
