package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Router is the outer HTTP mux. Framework endpoints are registered on it
// directly; every other request falls through to the dispatcher.
type Router struct {
	mux chi.Router
}

// NewRouter creates a Router with the default stack: RealIP, RequestID,
// access logging and Recoverer.
func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID())
	r.Use(AccessLog(logger.Named("http")))
	r.Use(middleware.Recoverer)
	return &Router{mux: r}
}

// Middleware adds one or more middleware to the router. It must be called
// before any route is registered.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// Get registers a GET-only framework endpoint.
func (r *Router) Get(pattern string, h http.Handler) { r.mux.Method(http.MethodGet, pattern, h) }

// Fallback sends every request no other route claims to h, whatever its
// method.
func (r *Router) Fallback(h http.Handler) {
	r.mux.Handle("/", h)
	r.mux.Handle("/*", h)
	r.mux.NotFound(h.ServeHTTP)
	r.mux.MethodNotAllowed(h.ServeHTTP)
}

// ServeHTTP implements http.Handler so Router can be passed to http.Server.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}
