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

package mbean

import (
	"errors"
	"fmt"
)

var (
	// ErrAttributeNotFound is returned for attribute names absent from the descriptor.
	ErrAttributeNotFound = errors.New("mbx(mbean): attribute not found")
	// ErrOperationNotFound is returned for operation names absent from the descriptor.
	ErrOperationNotFound = errors.New("mbx(mbean): operation not found")
	// ErrNoBackingBean is returned when the registry has no bean for the managed type.
	ErrNoBackingBean = errors.New("mbx(mbean): no backing bean found")
	// ErrNilReference is returned when the registry hands back a nil reference.
	ErrNilReference = errors.New("mbx(mbean): registry returned a nil reference")
	// ErrTargetPanic wraps a panic raised by the backing instance.
	ErrTargetPanic = errors.New("mbx(mbean): backing instance panicked")
)

// Status classifies the outcome of a protocol call.
type Status uint8

const (
	// StatusOK means the call reached the backing instance and succeeded.
	StatusOK Status = iota
	// StatusNotFound means the attribute or operation name is unknown.
	StatusNotFound
	// StatusUnresolved means the backing instance could not be resolved.
	StatusUnresolved
	// StatusAccessFailed means touching the backing instance failed.
	StatusAccessFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not-found"
	case StatusUnresolved:
		return "unresolved"
	case StatusAccessFailed:
		return "access-failed"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Result is the discriminated outcome of Get, Set and Call.
type Result struct {
	// Value is the attribute value or operation result when Status is StatusOK.
	Value any
	// Status classifies the outcome.
	Status Status
	// Err is the cause for every status but StatusOK.
	Err error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Status == StatusOK }

// protocol maps a Result to the protocol convention: hard failures become
// errors, access failures an absent value.
func (r Result) protocol() (any, error) {
	switch r.Status {
	case StatusOK:
		return r.Value, nil
	case StatusAccessFailed:
		return nil, nil
	}
	return nil, r.Err
}

func notFound(kind error, name string) Result {
	return Result{Status: StatusNotFound, Err: fmt.Errorf("%w: %q", kind, name)}
}
