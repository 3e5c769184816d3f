// Package api implements the MenuLens HTTP API: anonymous session
// issuance plus the token-protected scan, history, and favorites
// endpoints.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/menulens/menulens/internal/ratelimit"
	"github.com/menulens/menulens/internal/service"
	"github.com/menulens/menulens/pkg/api"
	"github.com/menulens/menulens/pkg/sessiontoken"
)

type API struct {
	service       *service.Service
	issuer        sessiontoken.Issuer
	verifier      sessiontoken.Verifier
	allowlist     *sessiontoken.Allowlist
	issueLimiter  *ratelimit.Limiter
	apiLimiter    *ratelimit.Limiter
	defaultOrigin string
	log           zerolog.Logger
}

func New(
	svc *service.Service,
	issuer sessiontoken.Issuer,
	verifier sessiontoken.Verifier,
	allowlist *sessiontoken.Allowlist,
	issueLimiter *ratelimit.Limiter,
	apiLimiter *ratelimit.Limiter,
	defaultOrigin string,
	log zerolog.Logger,
) *API {
	return &API{
		service:       svc,
		issuer:        issuer,
		verifier:      verifier,
		allowlist:     allowlist,
		issueLimiter:  issueLimiter,
		apiLimiter:    apiLimiter,
		defaultOrigin: defaultOrigin,
		log:           log,
	}
}

// maxRequestBytes caps request bodies at the read. The largest
// legitimate payload is a base64-encoded menu photo.
const maxRequestBytes = 12 << 20

func (a *API) decodeRequest(req any, w http.ResponseWriter, r *http.Request) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer body.Close()
	if err := json.NewDecoder(body).Decode(req); err != nil {
		a.logApiErr(r, "bad json request")
		a.returnError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (a *API) returnJson(data any, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

// returnError writes the generic user-facing message; the specific
// failure is logged separately via logApiErr.
func (a *API) returnError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: msg})
}

func (a *API) logApiErr(r *http.Request, msg string) {
	a.log.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(msg)
}
