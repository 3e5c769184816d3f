// Package menulenstest provides helpers for testing applications built
// on the MenuLens SDK: deterministic signing keys, pre-minted sessions,
// and an in-process server with canned scan results.
package menulenstest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	internalapi "github.com/menulens/menulens/internal/api"
	"github.com/menulens/menulens/internal/database"
	"github.com/menulens/menulens/internal/ratelimit"
	"github.com/menulens/menulens/internal/service"
	"github.com/menulens/menulens/internal/vision"
	"github.com/menulens/menulens/pkg/api"
	"github.com/menulens/menulens/pkg/client"
	"github.com/menulens/menulens/pkg/sessiontoken"
)

const (
	// DefaultSecret signs tokens when no secret is supplied.
	DefaultSecret = "menulenstest-secret"

	// DefaultOrigin is allow-listed when no origins are supplied.
	DefaultOrigin = "https://app.menulens.test"
)

// Keys holds the token signing configuration for a test setup. All
// components built from the same Keys accept each other's tokens.
type Keys struct {
	Secret  string
	Origins []string

	server *sessiontoken.Server
}

// NewKeys builds signing keys over secret for the given origins,
// falling back to DefaultSecret and DefaultOrigin.
func NewKeys(secret string, origins ...string) (*Keys, error) {
	if secret == "" {
		secret = DefaultSecret
	}
	if len(origins) == 0 {
		origins = []string{DefaultOrigin}
	}

	server, err := sessiontoken.InitServer(sessiontoken.Config{
		Secret:         secret,
		AllowedOrigins: origins,
	})
	if err != nil {
		return nil, err
	}

	return &Keys{
		Secret:  secret,
		Origins: origins,
		server:  server,
	}, nil
}

// NewSession mints a session bound to origin.
func (k *Keys) NewSession(origin string) (*sessiontoken.Session, error) {
	return k.server.Issue(origin)
}

// Verifier returns a verifier sharing these keys.
func (k *Keys) Verifier() sessiontoken.Verifier {
	return k.server
}

// AddSession attaches a session token and its origin to a request.
func AddSession(r *http.Request, session *sessiontoken.Session, origin string) {
	r.Header.Set(api.SessionTokenHeader, session.Token)
	r.Header.Set("Origin", origin)
}

// cannedAnalyzer returns a fixed scan result without any network calls.
type cannedAnalyzer struct {
	result *vision.Result
}

func (a *cannedAnalyzer) Analyze(_ context.Context, _ string, _ string) (*vision.Result, error) {
	return a.result, nil
}

// CannedResult is the scan result served by in-process servers.
func CannedResult() *vision.Result {
	return &vision.Result{
		SourceText: "唐揚げ ¥580\n味噌汁 ¥200",
		Items: []vision.MenuItem{
			{Original: "唐揚げ", Reading: "karaage", Translation: "fried chicken", Price: "¥580"},
			{Original: "味噌汁", Reading: "miso shiru", Translation: "miso soup", Price: "¥200"},
		},
	}
}

// Server is an in-process MenuLens instance backed by in-memory SQLite
// and a canned vision backend. Rate limits are set high enough to stay
// out of the way.
type Server struct {
	*httptest.Server
	Keys *Keys
	DB   *database.SQLiteStore
}

// StartServer runs an in-process server over keys. Cleanup is
// registered with t.
func StartServer(t *testing.T, keys *Keys) *Server {
	t.Helper()

	db, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	svc := service.New(
		db.ScanStore(),
		db.FavoriteStore(),
		&cannedAnalyzer{result: CannedResult()},
		zerolog.Nop(),
	)

	issueLimiter := ratelimit.New(ratelimit.NewMemoryStore(), "issue", time.Hour, 10_000, zerolog.Nop())
	apiLimiter := ratelimit.New(ratelimit.NewMemoryStore(), "api", time.Minute, 100_000, zerolog.Nop())

	a := internalapi.New(
		svc,
		keys.server,
		keys.server,
		keys.server.Allowlist(),
		issueLimiter,
		apiLimiter,
		keys.Origins[0],
		zerolog.Nop(),
	)

	server := &Server{
		Server: httptest.NewServer(a.Router()),
		Keys:   keys,
		DB:     db,
	}
	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})
	return server
}

// Client returns an SDK client wired to this server, presenting the
// first allow-listed origin.
func (s *Server) Client() *client.Client {
	return client.New(s.URL, s.Keys.Origins[0])
}
