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

package properties_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dirpx.dev/mbx/properties"
)

func TestValue(t *testing.T) {
	src := properties.Map{"my.key": "Hello"}

	assert.Equal(t, "Hello", properties.Value(src, "my.key", "default"))
	assert.Equal(t, "default", properties.Value(src, "missing", "default"))
	assert.Equal(t, "default", properties.Value(nil, "my.key", "default"))
}

func TestEnv(t *testing.T) {
	t.Setenv("MBX_CACHE_MAX_SIZE", "128")

	env := properties.Env{Prefix: "mbx"}
	assert.Equal(t, "MBX_CACHE_MAX_SIZE", env.Name("cache.max-size"))

	v, ok := env.Lookup("cache.max-size")
	require.True(t, ok)
	assert.Equal(t, "128", v)

	_, ok = env.Lookup("cache.min-size")
	assert.False(t, ok)

	assert.Equal(t, "A_B", properties.Env{}.Name("a.b"))
}

func TestChain_FirstHitWins(t *testing.T) {
	src := properties.Chain(
		nil,
		properties.Map{"a": "first"},
		properties.Map{"a": "second", "b": "only-second"},
	)

	v, ok := src.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "first", v)

	v, ok = src.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "only-second", v)

	_, ok = src.Lookup("c")
	assert.False(t, ok)
}

func TestParse_YAML(t *testing.T) {
	doc := []byte(`
cache:
  description: Entry cache
  size: 128
  tags: [hot, lru]
enabled: true
`)
	m, err := properties.Parse(doc, properties.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, properties.Map{
		"cache.description": "Entry cache",
		"cache.size":        "128",
		"cache.tags":        "hot,lru",
		"enabled":           "true",
	}, m)
}

func TestParse_TOML(t *testing.T) {
	doc := []byte(`
enabled = true

[cache]
description = "Entry cache"
size = 128
`)
	m, err := properties.Parse(doc, properties.FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "Entry cache", m["cache.description"])
	assert.Equal(t, "128", m["cache.size"])
	assert.Equal(t, "true", m["enabled"])
}

func TestParse_Errors(t *testing.T) {
	_, err := properties.Parse([]byte("a: [unclosed"), properties.FormatYAML)
	assert.Error(t, err)

	_, err = properties.Parse([]byte("x"), properties.Format("ini"))
	assert.ErrorIs(t, err, properties.ErrUnsupportedFormat)

	_, err = properties.LoadFile("props.ini")
	assert.ErrorIs(t, err, properties.ErrUnsupportedFormat)

	_, err = properties.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWatch_Reloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "props.yaml")
	require.NoError(t, os.WriteFile(path, []byte("my:\n  key: Hello\n"), 0o600))

	w, err := properties.Watch(path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, "Hello", properties.Value(w, "my.key", ""))

	replace(t, path, "my:\n  key: Bonjour\n")
	assert.Eventually(t, func() bool {
		return properties.Value(w, "my.key", "") == "Bonjour"
	}, 5*time.Second, 20*time.Millisecond)

	// A broken file keeps the previous snapshot.
	replace(t, path, "my: [unclosed\n")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "Bonjour", w.Snapshot()["my.key"])

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWatch_ConcurrentClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "props.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))

	w, err := properties.Watch(path, zap.NewNop())
	require.NoError(t, err)

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NotPanics(t, func() { _ = w.Close() })
		}()
	}
	wg.Wait()
	assert.Equal(t, "1", w.Snapshot()["a"])
}

// replace swaps the file content atomically so the watcher never observes a
// truncated file.
func replace(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0o600))
	require.NoError(t, os.Rename(tmp, path))
}
