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

package cmd

import (
	"runtime"
	"sync"
	"time"
)

// RuntimeStats is the built-in mbean describing the daemon process.
// Values change only through Refresh and GC.
type RuntimeStats struct {
	mu sync.Mutex

	goroutines int    `mbx:"goroutines" description:"{mbxd.runtime.goroutines}"`
	heapAlloc  uint64 `mbx:"heap_alloc" description:"bytes of allocated heap objects"`
	heapSys    uint64 `mbx:"heap_sys"`
	numGC      uint32 `mbx:"num_gc" description:"completed GC cycles"`
	refreshed  string `mbx:"refreshed_at"`
	// Verbose is writable over the management API.
	Verbose bool `mbx:"verbose"`
}

func (s *RuntimeStats) GetGoroutines() int   { return s.goroutines }
func (s *RuntimeStats) GetHeapAlloc() uint64 { return s.heapAlloc }
func (s *RuntimeStats) GetNumGC() uint32     { return s.numGC }
func (s *RuntimeStats) IsVerbose() bool      { return s.Verbose }
func (s *RuntimeStats) SetVerbose(v bool)    { s.Verbose = v }

// Refresh samples the runtime and returns the sample time.
func (s *RuntimeStats) Refresh() string {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.goroutines = runtime.NumGoroutine()
	s.heapAlloc = ms.HeapAlloc
	s.heapSys = ms.HeapSys
	s.numGC = ms.NumGC
	s.refreshed = time.Now().UTC().Format(time.RFC3339)
	return s.refreshed
}

// GC forces a collection and refreshes the sample.
func (s *RuntimeStats) GC() uint32 {
	runtime.GC()
	s.Refresh()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.numGC
}
