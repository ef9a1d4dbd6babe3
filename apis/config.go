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

// Config carries read-only knobs that influence descriptor building and naming.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Domain is the ObjectName domain used when a managed type declares
	// neither an explicit name nor a category.
	Domain string

	// FieldTag is the struct tag key that marks a field as managed.
	// The tag value, if non-empty, overrides the attribute display name.
	FieldTag string

	// DescriptionTag is the struct tag key carrying a field description.
	DescriptionTag string

	// MaxEmbedDepth limits how deep embedded structs are walked when
	// collecting managed fields. Acts as a guard against pathological nesting.
	MaxEmbedDepth int
}
