package auth

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// BasicAuth rejects requests without valid administrator credentials.
func BasicAuth(credentials Credentials, realm string) func(http.Handler) http.Handler {
	challenge := fmt.Sprintf(`Basic realm=%q, charset="UTF-8"`, realm)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, password, ok := r.BasicAuth()
			if !ok || !credentials.Verify(user, password) {
				if ok {
					log.Warnf("Failed admin login for %q from %s", user, r.RemoteAddr)
				}
				w.Header().Set("WWW-Authenticate", challenge)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
