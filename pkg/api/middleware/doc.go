// Package middleware provides the HTTP middleware of the conduit API server.
//
// All middleware follows the standard pattern: func(http.Handler) http.Handler
// This allows easy chaining: handler = middleware1(middleware2(handler))
//
// Example usage:
//
//	handler := middleware.PanicRecovery(logger)(mux)
//	handler = middleware.Metrics(registry, middleware.RoutePattern)(handler)
//	handler = middleware.Logging(logger)(handler)
//	handler = middleware.RequestID()(handler)
package middleware
