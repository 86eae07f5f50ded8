package api

import (
	"net/http"
	"strings"
)

// corsPreflightMaxAge is how long browsers may cache a preflight answer,
// in seconds.
const corsPreflightMaxAge = "600"

// corsMiddleware answers cross-origin requests for the configured origins.
// "*" allows any origin; the request origin is echoed back rather than the
// wildcard so credentialed requests keep working. Preflight OPTIONS
// requests are answered here and never reach the wrapped handler.
func corsMiddleware(origins []string, next http.Handler) (result http.Handler) {
	allowAll := false
	allowed := make(map[string]struct{}, len(origins))

	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
			continue
		}

		allowed[strings.TrimSuffix(origin, "/")] = struct{}{}
	}

	result = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		originAllowed := false
		if origin != "" {
			_, listed := allowed[origin]
			originAllowed = allowAll || listed
		}

		if originAllowed {
			header := w.Header()
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Add("Vary", "Origin")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

				requestHeaders := r.Header.Get("Access-Control-Request-Headers")
				if requestHeaders == "" {
					requestHeaders = "Content-Type, Authorization, X-API-Key"
				}
				header.Set("Access-Control-Allow-Headers", requestHeaders)
				header.Set("Access-Control-Max-Age", corsPreflightMaxAge)

				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next.ServeHTTP(w, r)
	})

	return result
}
