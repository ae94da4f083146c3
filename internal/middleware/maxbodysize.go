package middleware

import (
	"net/http"
)

// tooLargeBody matches the API's error envelope so clients parse one shape.
const tooLargeBody = `{"errors":[{"kind":"RequestTooLargeError","message":"request body too large","cause":"request body too large"}]}` + "\n"

// NewMaxBodySizeHandler returns a middleware that limits incoming request body
// sizes to limit bytes. A declared Content-Length over the limit is rejected
// with 413 before the next handler runs; bodies of unknown length are wrapped
// in http.MaxBytesReader so the read fails once the limit is crossed.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(tooLargeBody))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
