package engine

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"

	"github.com/gooddata/grizzly/pkg/config"
)

// Handler routes a request to a stub, a file under the document root, or
// the backend, in that order.
type Handler struct {
	docRoot string
	files   http.Handler
	proxy   *httputil.ReverseProxy
	stubs   atomic.Pointer[StubTable]
	log     *slog.Logger
}

// NewHandler creates the request handler for cfg. stubs may be nil.
func NewHandler(cfg config.Configuration, stubs *StubTable, log *slog.Logger) *Handler {
	backend := &url.URL{Scheme: "https", Host: cfg.BackendHost}

	h := &Handler{
		docRoot: cfg.DocumentRoot,
		files:   http.FileServer(http.Dir(cfg.DocumentRoot)),
		log:     log,
	}
	h.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(backend)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			h.log.Warn("backend request failed", "backend", backend.Host, "path", r.URL.Path, "error", err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}
	h.stubs.Store(stubs)
	return h
}

// SetStubs swaps the stub table in place.
func (h *Handler) SetStubs(stubs *StubTable) {
	h.stubs.Store(stubs)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stubs := h.stubs.Load()
	if s := stubs.Match(r.Method, r.URL.Path); s != nil {
		if err := stubs.Write(w, s); err != nil {
			h.log.Warn("stub response failed", "path", r.URL.Path, "error", err)
		}
		return
	}

	if h.isLocal(r.URL.Path) {
		h.files.ServeHTTP(w, r)
		return
	}

	h.proxy.ServeHTTP(w, r)
}

// isLocal reports whether urlPath names a file, or a directory with an
// index.html, inside the document root.
func (h *Handler) isLocal(urlPath string) bool {
	name := filepath.Join(h.docRoot, filepath.FromSlash(path.Clean("/"+urlPath)))
	info, err := os.Stat(name)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}
	_, err = os.Stat(filepath.Join(name, "index.html"))
	return err == nil
}
