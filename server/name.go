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

package server

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
)

// ErrInvalidName is returned for malformed ObjectName strings.
var ErrInvalidName = errors.New("mbx(server): invalid object name")

// ObjectName is a parsed "domain:key=value[,key=value...]" name.
// The zero value is invalid.
type ObjectName struct {
	domain string
	keys   []string
	props  map[string]string
	// wild marks a trailing ",*" property pattern.
	wild bool
}

// ParseName parses s. Patterns are accepted: "*" and "?" in the domain,
// and a trailing "*" entry in the property list.
func ParseName(s string) (ObjectName, error) {
	domain, list, ok := strings.Cut(s, ":")
	if !ok {
		return ObjectName{}, fmt.Errorf("%w: %q has no domain separator", ErrInvalidName, s)
	}
	n := ObjectName{domain: domain, props: map[string]string{}}
	if list == "" {
		return ObjectName{}, fmt.Errorf("%w: %q has no properties", ErrInvalidName, s)
	}
	for _, kv := range strings.Split(list, ",") {
		if kv == "*" {
			if n.wild {
				return ObjectName{}, fmt.Errorf("%w: %q repeats the property wildcard", ErrInvalidName, s)
			}
			n.wild = true
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" || v == "" {
			return ObjectName{}, fmt.Errorf("%w: %q: bad property %q", ErrInvalidName, s, kv)
		}
		if err := n.add(k, v); err != nil {
			return ObjectName{}, fmt.Errorf("%w: %q", err, s)
		}
	}
	if len(n.keys) == 0 && !n.wild {
		return ObjectName{}, fmt.Errorf("%w: %q has no properties", ErrInvalidName, s)
	}
	slices.Sort(n.keys)
	return n, nil
}

// MustParseName is like ParseName but panics on error.
func MustParseName(s string) ObjectName {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// NewName builds a non-pattern name from a domain and key/value pairs.
func NewName(domain string, props map[string]string) (ObjectName, error) {
	if len(props) == 0 {
		return ObjectName{}, fmt.Errorf("%w: no properties", ErrInvalidName)
	}
	if strings.ContainsAny(domain, ":*?") {
		return ObjectName{}, fmt.Errorf("%w: domain %q", ErrInvalidName, domain)
	}
	n := ObjectName{domain: domain, props: map[string]string{}}
	for k, v := range props {
		if k == "" || v == "" {
			return ObjectName{}, fmt.Errorf("%w: empty property %q=%q", ErrInvalidName, k, v)
		}
		if err := n.add(k, v); err != nil {
			return ObjectName{}, err
		}
	}
	slices.Sort(n.keys)
	return n, nil
}

func (n *ObjectName) add(k, v string) error {
	if strings.ContainsAny(k, ",=:*?\"") {
		return fmt.Errorf("%w: key %q", ErrInvalidName, k)
	}
	if strings.ContainsAny(v, ",=:*?\"") {
		return fmt.Errorf("%w: value %q", ErrInvalidName, v)
	}
	if _, dup := n.props[k]; dup {
		return fmt.Errorf("%w: duplicate key %q", ErrInvalidName, k)
	}
	n.props[k] = v
	n.keys = append(n.keys, k)
	return nil
}

// Domain returns the domain part.
func (n ObjectName) Domain() string { return n.domain }

// Property returns the value of key.
func (n ObjectName) Property(key string) (string, bool) {
	v, ok := n.props[key]
	return v, ok
}

// Keys returns the property keys in sorted order.
func (n ObjectName) Keys() []string { return slices.Clone(n.keys) }

// IsPattern reports whether n contains a domain or property wildcard.
func (n ObjectName) IsPattern() bool {
	return n.wild || strings.ContainsAny(n.domain, "*?")
}

// IsZero reports whether n is the zero ObjectName.
func (n ObjectName) IsZero() bool { return n.props == nil }

// String returns the canonical form: keys sorted, wildcard last.
func (n ObjectName) String() string {
	if n.IsZero() {
		return ""
	}
	var b strings.Builder
	b.WriteString(n.domain)
	b.WriteByte(':')
	for i, k := range n.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(n.props[k])
	}
	if n.wild {
		if len(n.keys) > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('*')
	}
	return b.String()
}

// Matches reports whether the non-pattern name other matches n.
// A non-pattern n matches only its own canonical form.
func (n ObjectName) Matches(other ObjectName) bool {
	if other.IsZero() || other.IsPattern() {
		return false
	}
	if ok, err := path.Match(n.domain, other.domain); err != nil || !ok {
		return false
	}
	if !n.wild && len(n.keys) != len(other.keys) {
		return false
	}
	for _, k := range n.keys {
		if v, ok := other.props[k]; !ok || v != n.props[k] {
			return false
		}
	}
	return true
}
