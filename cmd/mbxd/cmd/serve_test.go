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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAssemble(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mbxd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mbxd:\n  runtime:\n    description: process statistics\n"), 0o600))

	d, err := assemble(serveOptions{properties: path, domain: "test", namespace: "mbx"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.close() })
	assert.Equal(t, "test:type=Runtime", d.name.String())

	get := func(target string) (int, string) {
		rec := httptest.NewRecorder()
		d.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec.Code, rec.Body.String()
	}
	base := "/api/mbeans/" + url.PathEscape(d.name.String())

	code, body := get("/api/mbeans")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "test:type=Runtime")

	code, body = get(base)
	require.Equal(t, http.StatusOK, code)
	var desc map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &desc))
	assert.Equal(t, "process statistics", desc["description"])

	rec := httptest.NewRecorder()
	d.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, base+"/operations/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	d.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, base+"/attributes/verbose", strings.NewReader(`{"value":true}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, d.stats.Verbose)

	code, body = get(base + "/attributes/goroutines")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"value":`)

	code, body = get("/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `mbx_attribute_value{attribute="verbose",object_name="test:type=Runtime"} 1`)
	assert.Contains(t, body, `mbx_http_requests_total`)
	assert.Contains(t, body, "go_goroutines")
}

func TestAssemble_BadProperties(t *testing.T) {
	_, err := assemble(serveOptions{properties: filepath.Join(t.TempDir(), "missing.yaml"), domain: "test"}, zap.NewNop())
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	var out strings.Builder
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "mbxd v"+Version)
}
