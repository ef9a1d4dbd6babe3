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
	"strings"

	"dirpx.dev/mbx/apis"
	"dirpx.dev/mbx/properties"
)

// IsPlaceholder reports whether desc (trimmed) has the "{key}" form.
func IsPlaceholder(desc string) bool {
	d := strings.TrimSpace(desc)
	return len(d) >= 2 && d[0] == '{' && d[len(d)-1] == '}'
}

// Describe resolves a declared description.
//
// An empty description yields def. A "{key}" placeholder is looked up in props
// with def as fallback. Anything else is returned verbatim.
func Describe(desc, def string, props apis.PropertySource) string {
	if desc == "" {
		return def
	}
	if !IsPlaceholder(desc) {
		return desc
	}
	d := strings.TrimSpace(desc)
	return properties.Value(props, d[1:len(d)-1], def)
}
