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

// Attribute is a (name, value) pair used by bulk protocol calls.
type Attribute struct {
	Name  string
	Value any
}

// DynamicMBean is the management protocol surface consumed by external
// consoles and agents.
//
// GetAttribute, SetAttribute and Invoke fail with a structured error only
// when the name is unknown or the backing instance cannot be resolved.
// Failures while touching the backing instance are logged by the
// implementation and reported as an absent result.
type DynamicMBean interface {
	// Descriptor returns the immutable descriptor.
	Descriptor() Descriptor
	// GetAttribute returns the value of the named attribute.
	GetAttribute(name string) (any, error)
	// SetAttribute writes the named attribute.
	SetAttribute(name string, value any) error
	// GetAttributes returns the readable subset of names. It never fails.
	GetAttributes(names []string) []Attribute
	// SetAttributes applies attrs and returns the pairs that were applied.
	SetAttributes(attrs []Attribute) []Attribute
	// Invoke calls the named operation.
	Invoke(op string, args []any, signature []string) (any, error)
}
