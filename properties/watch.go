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

package properties

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watched is a file-backed PropertySource that reloads itself when the file
// changes. Reads are lock-free; a failed reload keeps the previous snapshot.
type Watched struct {
	path    string
	log     *zap.Logger
	snap    atomic.Pointer[Map]
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
	closed  error
	wg      sync.WaitGroup
}

// Watch loads path and starts watching its directory for changes.
// Editors often replace files instead of writing them in place, so the
// directory is watched rather than the file itself.
func Watch(path string, log *zap.Logger) (*Watched, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("mbx(properties): create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("mbx(properties): watch %s: %w", path, err)
	}

	w := &Watched{
		path:    filepath.Clean(path),
		log:     log,
		watcher: fw,
		done:    make(chan struct{}),
	}
	w.snap.Store(&m)
	w.wg.Add(1)
	go w.loop()

	log.Info("watching property file", zap.String("path", path), zap.Int("keys", len(m)))
	return w, nil
}

// Lookup returns the value for key in the current snapshot.
func (w *Watched) Lookup(key string) (string, bool) {
	return w.snap.Load().Lookup(key)
}

// Snapshot returns the current snapshot.
func (w *Watched) Snapshot() Map {
	return *w.snap.Load()
}

// Close stops watching. It is safe to call more than once.
func (w *Watched) Close() error {
	w.once.Do(func() {
		close(w.done)
		w.closed = w.watcher.Close()
		w.wg.Wait()
	})
	return w.closed
}

func (w *Watched) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("property watcher error", zap.String("path", w.path), zap.Error(err))
		}
	}
}

func (w *Watched) reload() {
	m, err := LoadFile(w.path)
	if err != nil {
		w.log.Warn("property reload failed, keeping previous values",
			zap.String("path", w.path),
			zap.Error(err),
		)
		return
	}
	w.snap.Store(&m)
	w.log.Debug("property file reloaded", zap.String("path", w.path), zap.Int("keys", len(m)))
}
