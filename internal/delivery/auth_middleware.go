package delivery

import (
	"net/http"
	"strings"

	"github.com/Vovarama1992/voxstudio/internal/ports"
)

// AuthMiddleware guards /api/* with the X-Auth token. Static files, the
// websocket and /api/login stay public.
func AuthMiddleware(auth ports.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api/login" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-Auth")
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("missing token"))
				return
			}

			ok, _ := auth.ValidateToken(r.Context(), token)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorBody("invalid token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
