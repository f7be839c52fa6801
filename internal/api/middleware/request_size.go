package middleware

import "net/http"

// DefaultMaxBodySize caps request bodies at 10MB, matching the
// catalog's image-upload ceiling.
const DefaultMaxBodySize int64 = 10 << 20

// RequestSize wraps request bodies with http.MaxBytesReader. Bodies
// over the cap fail the read with 413 semantics.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
