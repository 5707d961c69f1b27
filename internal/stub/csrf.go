package stub

import (
	"crypto/rand"
	"crypto/sha256"
	"log"
	"net/http"
	"net/url"

	"github.com/gorilla/csrf"
)

const (
	csrfFieldName  = "csrf_token"
	csrfCookieName = "faceauth_csrf"
)

// csrfKey derives the 32-byte token key from the session secret.
// An empty secret yields a random key, so tokens do not survive a restart.
func csrfKey(secret string) []byte {
	if secret == "" {
		b := make([]byte, 32)
		_, _ = rand.Read(b)
		return b
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// trustedHosts turns allowed origins into the host list gorilla/csrf
// compares Origin headers with.
func trustedHosts(origins []string) []string {
	var hosts []string
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}

// csrfMiddleware hands a token to every page. Submissions are checked only
// when enforce is set; otherwise unsafe requests skip the check.
func csrfMiddleware(secret string, enforce bool, origins []string) func(http.Handler) http.Handler {
	protect := csrf.Protect(csrfKey(secret),
		csrf.FieldName(csrfFieldName),
		csrf.CookieName(csrfCookieName),
		csrf.Path("/"),
		csrf.Secure(false),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(trustedHosts(origins)),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			if !enforce && !safeMethod(r.Method) {
				r = csrf.UnsafeSkipCheck(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// csrfFailure answers a rejected submission the way the form endpoints do.
func csrfFailure(w http.ResponseWriter, r *http.Request) {
	log.Printf("stub: csrf check failed for %s: %v", r.URL.Path, csrf.FailureReason(r))
	respondRejected(w, http.StatusBadRequest, "The CSRF token is missing or invalid.")
}
