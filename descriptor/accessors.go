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
	"reflect"
	"unicode"
	"unicode/utf8"
)

var errorType = reflect.TypeFor[error]()

// exported upper-cases the first rune of name.
func exported(name string) string {
	r, n := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[n:]
}

// getter probes the pointer method set of owner for Get<Name>, Is<Name>
// and <Name>, in that order. A getter takes no arguments and returns one
// value, optionally followed by an error.
func getter(owner reflect.Type, field string) (reflect.Method, bool) {
	pt := reflect.PointerTo(owner)
	name := exported(field)
	candidates := []string{"Get" + name, "Is" + name}
	if name != field {
		// An exported field cannot share its name with a method.
		candidates = append(candidates, name)
	}
	for _, c := range candidates {
		m, ok := pt.MethodByName(c)
		if !ok {
			continue
		}
		mt := m.Type
		if mt.NumIn() != 1 {
			continue
		}
		switch {
		case mt.NumOut() == 1:
			return m, true
		case mt.NumOut() == 2 && mt.Out(1) == errorType:
			return m, true
		}
	}
	return reflect.Method{}, false
}

// setter probes the pointer method set of owner for Set<Name> accepting
// exactly typ and returning nothing or an error.
func setter(owner reflect.Type, field string, typ reflect.Type) (reflect.Method, bool) {
	m, ok := reflect.PointerTo(owner).MethodByName("Set" + exported(field))
	if !ok {
		return reflect.Method{}, false
	}
	mt := m.Type
	if mt.NumIn() != 2 || mt.In(1) != typ || mt.IsVariadic() {
		return reflect.Method{}, false
	}
	if mt.NumOut() == 0 || (mt.NumOut() == 1 && mt.Out(0) == errorType) {
		return m, true
	}
	return reflect.Method{}, false
}
