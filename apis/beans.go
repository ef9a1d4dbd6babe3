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

// Qualifier narrows a bean lookup beyond its type.
type Qualifier string

// Bean is a registry-owned definition of a contextual object.
type Bean interface {
	// Type is the (normalized) bean type.
	Type() reflect.Type
	// Qualifiers are the qualifiers carried by the bean.
	Qualifiers() []Qualifier
	// NormalScoped reports whether references are lifecycle-transparent.
	NormalScoped() bool
}

// CreationContext tracks objects created for a single reference request.
type CreationContext interface {
	// Release destroys dependent objects created in this context.
	Release()
}

// BeanRegistry is the external object registry the bridge consumes.
// The bridge never implements registry semantics; it only calls these.
type BeanRegistry interface {
	// ContextualReference returns a lifecycle-transparent reference (normal scope path).
	ContextualReference(t reflect.Type, qualifiers ...Qualifier) (any, error)
	// Beans returns every bean matching t and qualifiers.
	Beans(t reflect.Type, qualifiers ...Qualifier) []Bean
	// Resolve disambiguates a set of beans down to one.
	Resolve(beans []Bean) (Bean, error)
	// CreateContext opens a creation context for bean.
	CreateContext(bean Bean) CreationContext
	// Reference returns an instance of bean typed as t, created in cc.
	Reference(bean Bean, t reflect.Type, cc CreationContext) (any, error)
}
