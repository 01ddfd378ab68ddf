// Package server provides HTTP routing, middleware and a graceful server wrapper for the web application.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering: a path registered for
// GET answers other methods with 405 and an Allow header. The root path "/" matches only itself. Middleware wraps
// whole paths rather than single methods, and a catch-all fallback sends unknown paths through it as 404s.
//
// # Middleware
//
//   - [RequestID] : propagates or generates X-Request-ID
//   - [Logger] : one structured log line per request
//   - [Recover] : turns panics into 500 responses
//   - [Metrics.Middleware] : Prometheus request counters and latency histograms
//   - [RateLimiter.Middleware] : per-client token buckets
package server
