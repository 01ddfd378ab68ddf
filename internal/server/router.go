package server

import (
	"net/http"
	"sort"
	"strings"
	"sync"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] internally for routing.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware

	mu       sync.Mutex
	routes   map[string]*methodHandler
	fallback bool
}

var _ Router = (*BasicRouter)(nil)

// fallbackPattern catches every request no route matches so that 404s pass through the middleware too.
const fallbackPattern = "/"

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
		routes:      map[string]*methodHandler{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Only paths registered after the call are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path.
//
// Several methods may share a path. Middleware wraps the whole path, so 405 responses for a known path and 404
// responses for unknown ones are wrapped as well.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.fallback {
		r.mux.Handle(fallbackPattern, r.Apply(http.NotFoundHandler()))
		r.fallback = true
	}

	pattern := muxPattern(path)
	mh, ok := r.routes[pattern]
	if !ok {
		mh = &methodHandler{handlers: map[string]http.Handler{}}
		r.routes[pattern] = mh
		r.mux.Handle(pattern, r.Apply(mh))
	}

	method = strings.ToUpper(method)
	mh.handlers[method] = handler
	if method == http.MethodGet {
		if _, ok := mh.handlers[http.MethodHead]; !ok {
			mh.handlers[http.MethodHead] = handler
		}
	}
}

// HandleFunc registers a handler function for the specified HTTP method and path.
func (r *BasicRouter) HandleFunc(method, path string, fn http.HandlerFunc) {
	r.Handle(method, path, fn)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}

// methodHandler dispatches one path by request method.
type methodHandler struct {
	handlers map[string]http.Handler
}

func (m *methodHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := m.handlers[req.Method]; ok {
		h.ServeHTTP(w, req)
		return
	}

	allowed := make([]string, 0, len(m.handlers))
	for method := range m.handlers {
		allowed = append(allowed, method)
	}
	sort.Strings(allowed)

	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// muxPattern keeps "/" from acting as the catch-all subtree pattern.
func muxPattern(path string) string {
	if path == "/" {
		return "/{$}"
	}
	return path
}
