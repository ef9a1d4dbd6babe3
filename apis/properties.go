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

// PropertySource is a read-only key-value configuration source.
// Implementations must be safe for concurrent Lookup.
type PropertySource interface {
	// Lookup returns the value for key and whether it is defined.
	Lookup(key string) (string, bool)
}

// ContextHolder holds the ambient resolution context under which backing
// instances are resolvable. Adapters capture the current value at
// construction and install it around every protocol call.
type ContextHolder interface {
	// Load returns the active context.
	Load() any
	// Swap installs next and returns the previously active context.
	Swap(next any) (prev any)
}
