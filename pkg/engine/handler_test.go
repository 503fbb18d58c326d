package engine

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gooddata/grizzly/pkg/config"
	"github.com/gooddata/grizzly/pkg/logging"
)

// newTestHandler builds a Handler whose backend is a local TLS test server.
func newTestHandler(t *testing.T, stubs *StubTable) (*Handler, string) {
	t.Helper()

	backend := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backend-Host", r.Host)
		_, _ = io.WriteString(w, "backend:"+r.URL.Path)
	}))
	t.Cleanup(backend.Close)

	u, err := url.Parse(backend.URL)
	require.NoError(t, err)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>local</h1>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "assets", "app.js"), []byte("console.log(1)"), 0o600))

	cfg := config.Configuration{BackendHost: u.Host, DocumentRoot: root}
	h := NewHandler(cfg, stubs, logging.Nop())
	h.proxy.Transport = backend.Client().Transport
	return h, u.Host
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHandler_Routing(t *testing.T) {
	t.Parallel()

	stubs, err := ParseStubs([]byte("- path: /gdc/stubbed\n  body: stubbed\n"), ".")
	require.NoError(t, err)
	h, backendHost := newTestHandler(t, stubs)

	t.Run("root serves index from document root", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "local")
	})

	t.Run("static file from document root", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/assets/app.js")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "console.log(1)", rec.Body.String())
	})

	t.Run("stub wins over backend", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/gdc/stubbed")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "stubbed", rec.Body.String())
	})

	t.Run("unknown path goes to backend", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/gdc/md/project")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "backend:/gdc/md/project", rec.Body.String())
		assert.Equal(t, backendHost, rec.Header().Get("X-Backend-Host"))
	})

	t.Run("traversal stays inside document root", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/../../etc/passwd")
		assert.NotContains(t, rec.Body.String(), "root:")
	})
}

func TestHandler_SetStubs(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t, nil)
	assert.Equal(t, "backend:/gdc/late", do(t, h, http.MethodGet, "/gdc/late").Body.String())

	stubs, err := ParseStubs([]byte("- path: /gdc/late\n  status: 418\n"), ".")
	require.NoError(t, err)
	h.SetStubs(stubs)

	assert.Equal(t, http.StatusTeapot, do(t, h, http.MethodGet, "/gdc/late").Code)
}

func TestHandler_BackendDown(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	h := NewHandler(config.Configuration{BackendHost: "127.0.0.1:1", DocumentRoot: root}, nil, logging.Nop())

	rec := do(t, h, http.MethodGet, "/gdc/anything")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
