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

// Package scope holds the ambient resolution context that backing instances
// are resolved under.
//
// Go has no goroutine-local storage, so a Holder is shared by every goroutine
// that uses it. Adapters capture the value active when they are built and
// install it around each protocol call with Enter.
//
// Enter on a Holder pushes a frame and its restore func removes exactly that
// frame, so overlapping calls that finish out of order still leave the holder
// on the value it had before any of them started.
package scope

import (
	"sync"

	"dirpx.dev/mbx/apis"
)

// Holder is a concurrency-safe apis.ContextHolder.
type Holder struct {
	mu     sync.Mutex
	base   any
	frames []*frame
}

// frame is one active Enter.
type frame struct{ v any }

// Ensure Holder implements apis.ContextHolder.
var _ apis.ContextHolder = (*Holder)(nil)

// New returns a Holder with initial as the active context.
func New(initial any) *Holder {
	return &Holder{base: initial}
}

// Load returns the active context.
func (h *Holder) Load() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current()
}

// Swap installs next and returns the previously active context.
// Inside an Enter it replaces the innermost frame's value.
func (h *Holder) Swap(next any) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.frames); n > 0 {
		prev := h.frames[n-1].v
		h.frames[n-1].v = next
		return prev
	}
	prev := h.base
	h.base = next
	return prev
}

// Depth reports the number of active Enter frames.
func (h *Holder) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

func (h *Holder) current() any {
	if n := len(h.frames); n > 0 {
		return h.frames[n-1].v
	}
	return h.base
}

func (h *Holder) push(ctx any) func() {
	f := &frame{v: ctx}
	h.mu.Lock()
	h.frames = append(h.frames, f)
	h.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { h.pop(f) }) }
}

func (h *Holder) pop(f *frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.frames) - 1; i >= 0; i-- {
		if h.frames[i] == f {
			h.frames = append(h.frames[:i], h.frames[i+1:]...)
			return
		}
	}
}

var global = New(nil)

// Global returns the process-wide Holder.
func Global() *Holder { return global }

// Enter installs ctx in h and returns a function restoring the previous
// context. Callers defer the returned function so restoration happens on
// every exit path, panics included.
//
// For a *Holder the restore removes only the frame this call pushed. Other
// ContextHolder implementations are swapped and swapped back, which is only
// correct when calls on them nest.
func Enter(h apis.ContextHolder, ctx any) (restore func()) {
	switch h := h.(type) {
	case nil:
		return func() {}
	case *Holder:
		if h == nil {
			return func() {}
		}
		return h.push(ctx)
	}
	prev := h.Swap(ctx)
	return func() { h.Swap(prev) }
}
