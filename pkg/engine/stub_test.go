package engine

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStubs = `
- path: /gdc/account/profile/*
  method: get
  headers:
    Content-Type: application/json
  body: '{"profile": true}'
- path: /gdc/app/**
  status: 201
  file: fixtures/app.json
- path: /gdc/ping
  status: 204
`

func TestParseStubs(t *testing.T) {
	t.Parallel()

	table, err := ParseStubs([]byte(testStubs), "/stubs")
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantNil    bool
	}{
		{"single segment glob", http.MethodGet, "/gdc/account/profile/123", http.StatusOK, false},
		{"method mismatch", http.MethodPost, "/gdc/account/profile/123", 0, true},
		{"single star does not cross slash", http.MethodGet, "/gdc/account/profile/1/2", 0, true},
		{"double star any depth", http.MethodPut, "/gdc/app/a/b/c", http.StatusCreated, false},
		{"exact path any method", http.MethodDelete, "/gdc/ping", http.StatusNoContent, false},
		{"no match", http.MethodGet, "/index.html", 0, true},
	}

	for _, tt := range tests {
		tt := tt // per-iteration copy (go < 1.22 loop semantics)
		t.Run(tt.name, func(t *testing.T) {
			s := table.Match(tt.method, tt.path)
			if tt.wantNil {
				assert.Nil(t, s)
				return
			}
			require.NotNil(t, s)
			assert.Equal(t, tt.wantStatus, s.Status)
		})
	}
}

func TestParseStubs_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{"not yaml list", "path: /x", "parsing stub file"},
		{"missing path", "- status: 200", "path is required"},
		{"bad pattern", "- path: /a/[", "invalid path pattern"},
		{"body and file", "- path: /a\n  body: x\n  file: y", "mutually exclusive"},
	}

	for _, tt := range tests {
		tt := tt // per-iteration copy (go < 1.22 loop semantics)
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStubs([]byte(tt.yaml), ".")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestStubTable_NilSafe(t *testing.T) {
	t.Parallel()

	var table *StubTable
	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.Match(http.MethodGet, "/"))
}

func TestStubTable_WriteFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fixtures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fixtures", "app.json"), []byte(`{"app":1}`), 0o600))
	stubPath := filepath.Join(dir, "stubs.yaml")
	require.NoError(t, os.WriteFile(stubPath, []byte(testStubs), 0o600))

	table, err := LoadStubs(stubPath)
	require.NoError(t, err)

	s := table.Match(http.MethodGet, "/gdc/app/x")
	require.NotNil(t, s)

	rec := httptest.NewRecorder()
	require.NoError(t, table.Write(rec, s))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"app":1}`, rec.Body.String())
}

func TestLoadStubs_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadStubs(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading stub file")
}
