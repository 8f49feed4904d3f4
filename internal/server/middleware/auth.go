package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// ErrorResponder writes err as an HTTP error response.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// BearerAuth rejects requests whose Authorization header is not exactly
// "Bearer <token>". unauthorized builds the error handed to respond.
func BearerAuth(token string, unauthorized func() error, respond ErrorResponder) func(http.Handler) http.Handler {
	expected := []byte("Bearer " + token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if token == "" || subtle.ConstantTimeCompare([]byte(header), expected) != 1 {
				respond(w, r, unauthorized())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
