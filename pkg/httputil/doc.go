// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// Helpers for JSON and raw responses, uniform error bodies, query parsing and the
// middleware stack used by the conversion server.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteBytes(w, http.StatusOK, "application/yaml", body)
//	httputil.WriteBadRequest(w, "invalid proto")
//
// Error bodies have the form {"error": "...", "request_id": "..."}.
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.MaxBytesMiddleware(4<<20),
//	)(router)
package httputil
