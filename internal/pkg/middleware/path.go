package middleware

import (
	"net/http"
	"strings"
)

// TrimSlash drops a trailing slash from the request path before routing, so
// /api/users/ is served like /api/users.
func TrimSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) <= 1 || !strings.HasSuffix(r.URL.Path, "/") {
			next.ServeHTTP(w, r)
			return
		}

		u := *r.URL
		u.Path = strings.TrimRight(u.Path, "/")
		if u.Path == "" {
			u.Path = "/"
		}

		if u.RawPath != "" {
			u.RawPath = strings.TrimRight(u.RawPath, "/")
		}

		r2 := r.Clone(r.Context())
		r2.URL = &u

		next.ServeHTTP(w, r2)
	})
}
