package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/menulens/menulens/pkg/api"
	"github.com/menulens/menulens/pkg/sessiontoken"
)

// CreateSession handles POST /api/session: anonymous, rate limited per
// client IP, origin checked against the allow-list.
func (a *API) CreateSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !a.issueLimiter.Allow(r.Context(), ip) {
			a.logApiErr(r, fmt.Sprintf("session issuance rate limit exceeded for %s", ip))
			a.returnError(w, http.StatusTooManyRequests, "too many session requests, try again later")
			return
		}

		session, err := a.issuer.Issue(r.Header.Get("Origin"))
		if err != nil {
			if errors.Is(err, sessiontoken.ErrOriginNotAllowed) {
				a.logApiErr(r, fmt.Sprintf("session refused: %v", err))
				a.returnError(w, http.StatusForbidden, "origin not allowed")
				return
			}
			a.logApiErr(r, fmt.Sprintf("couldn't issue session token: %v", err))
			a.returnError(w, http.StatusInternalServerError, "could not create session")
			return
		}

		a.returnJson(api.SessionResponse{
			Success:   true,
			SessionID: session.ID,
			Token:     session.Token,
			ExpiresIn: session.ExpiresIn(),
		}, w)
	}
}
