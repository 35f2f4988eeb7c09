package app

import (
	"crypto/rand"
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/clubbrunch/brunch/internal/config"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, cfg config.Application) {
	r.Use(requestLogging)

	if !cfg.Csrf.Secure {
		// Without TLS the CSRF check has to be told it is looking at plain HTTP.
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, csrf.PlaintextHTTPRequest(req))
			})
		})
	}
	r.Use(csrf.Protect(csrfKey(cfg.Csrf.Key),
		csrf.Secure(cfg.Csrf.Secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	))
}

// csrfKey derives the 32 byte token key from the configured secret.
func csrfKey(secret string) []byte {
	if secret == "" {
		log.Warn("No CSRF key configured, using a random key; open forms break on restart")
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			log.Fatalf("failed to generate CSRF key: %v", err)
		}
		return key
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	log.Warnf("CSRF check failed for %s %s: %v", r.Method, r.URL.Path, csrf.FailureReason(r))
	http.Error(w, "Das Formular ist abgelaufen, bitte die Seite neu laden.", http.StatusForbidden)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debugf("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
