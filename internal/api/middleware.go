package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/menulens/menulens/pkg/api"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// sessionID returns the verified session id placed on the request context
// by the authenticated middleware. Empty outside protected routes.
func sessionID(r *http.Request) string {
	sid, _ := r.Context().Value(sessionIDKey).(string)
	return sid
}

// cors wraps the whole router. Allow-listed origins are echoed back;
// everything else gets the configured default. Preflight requests are
// answered here with headers only.
func (a *API) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed := a.defaultOrigin
		if origin := r.Header.Get("Origin"); origin != "" && a.allowlist.Match(origin) {
			allowed = origin
		}
		w.Header().Set("Access-Control-Allow-Origin", allowed)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+api.SessionTokenHeader)
		w.Header().Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limited applies the business-endpoint rate limit, keyed by client IP.
func (a *API) limited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !a.apiLimiter.Allow(r.Context(), ip) {
			a.logApiErr(r, fmt.Sprintf("rate limit exceeded for %s", ip))
			a.returnError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticated verifies the session token and stores its sid on the
// request context. All verification failures collapse into one generic
// 401 body; the concrete reason is only ever logged.
func (a *API) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(api.SessionTokenHeader)
		if token == "" {
			a.returnError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		payload, err := a.verifier.Verify(token, r.Header.Get("Origin"))
		if err != nil {
			a.logApiErr(r, fmt.Sprintf("session token rejected: %v", err))
			a.returnError(w, http.StatusUnauthorized, "session expired, please refresh")
			return
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, payload.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			forwarded = forwarded[:i]
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
