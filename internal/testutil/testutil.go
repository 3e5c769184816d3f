// Package testutil provides test environment setup and utilities for internal package tests.
package testutil

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/menulens/menulens/internal/api"
	"github.com/menulens/menulens/internal/database"
	"github.com/menulens/menulens/internal/ratelimit"
	"github.com/menulens/menulens/internal/service"
	"github.com/menulens/menulens/internal/vision"
	"github.com/menulens/menulens/pkg/sessiontoken"
)

const (
	// TestSecret signs tokens in tests. Fixed so tokens stay verifiable
	// across components sharing one env.
	TestSecret = "test-secret"

	// TestOrigin is the only allow-listed origin in a default test env.
	TestOrigin = "https://app.menulens.test"

	// IssueLimit and APILimit are the per-IP budgets wired into the test
	// router's limiters.
	IssueLimit = 10
	APILimit   = 100
)

// Clock is a controllable time source shared by the env's limiters.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{t: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// StubAnalyzer is a canned vision backend.
type StubAnalyzer struct {
	mu     sync.Mutex
	Result *vision.Result
	Err    error
	calls  int
}

func (s *StubAnalyzer) Analyze(_ context.Context, _ string, _ string) (*vision.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.Result, s.Err
}

func (s *StubAnalyzer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StubResult returns the analyzer output used by default test envs.
func StubResult() *vision.Result {
	return &vision.Result{
		SourceText: "唐揚げ ¥580\nビール ¥450",
		Items: []vision.MenuItem{
			{Original: "唐揚げ", Reading: "karaage", Translation: "fried chicken", Price: "¥580"},
			{Original: "ビール", Reading: "biiru", Translation: "beer", Price: "¥450"},
		},
	}
}

// TestEnv provides all dependencies needed for testing
type TestEnv struct {
	DB       *database.SQLiteStore
	Service  *service.Service
	Tokens   *sessiontoken.Server
	Analyzer *StubAnalyzer
	Clock    *Clock
	Router   http.Handler
}

// SetupTestEnv creates an isolated test environment with in-memory SQLite
func SetupTestEnv(
	t *testing.T,
) *TestEnv {
	t.Helper()

	db, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	tokens, err := sessiontoken.InitServer(sessiontoken.Config{
		Secret:         TestSecret,
		AllowedOrigins: []string{TestOrigin},
	})
	if err != nil {
		t.Fatalf("failed to init token server: %v", err)
	}

	analyzer := &StubAnalyzer{Result: StubResult()}
	svc := service.New(db.ScanStore(), db.FavoriteStore(), analyzer, zerolog.Nop())

	return &TestEnv{
		DB:       db,
		Service:  svc,
		Tokens:   tokens,
		Analyzer: analyzer,
		Clock:    NewClock(time.Now()),
	}
}

// SetupTestEnvWithRouter creates TestEnv and configures the API router
func SetupTestEnvWithRouter(
	t *testing.T,
) *TestEnv {
	t.Helper()
	env := SetupTestEnv(t)

	issueLimiter := ratelimit.
		New(ratelimit.NewMemoryStore(), "issue", time.Hour, IssueLimit, zerolog.Nop()).
		WithClock(env.Clock.Now)
	apiLimiter := ratelimit.
		New(ratelimit.NewMemoryStore(), "api", time.Minute, APILimit, zerolog.Nop()).
		WithClock(env.Clock.Now)

	a := api.New(
		env.Service,
		env.Tokens,
		env.Tokens,
		env.Tokens.Allowlist(),
		issueLimiter,
		apiLimiter,
		TestOrigin,
		zerolog.Nop(),
	)
	env.Router = a.Router()
	return env
}

// IssueTestSession mints a session bound to TestOrigin.
func (env *TestEnv) IssueTestSession(
	t *testing.T,
) *sessiontoken.Session {
	t.Helper()
	session, err := env.Tokens.Issue(TestOrigin)
	if err != nil {
		t.Fatalf("failed to issue test session: %v", err)
	}
	return session
}

// InsertTestScan stores a scan owned by sid directly in the database.
func (env *TestEnv) InsertTestScan(
	t *testing.T,
	id string,
	sid string,
) *service.Scan {
	t.Helper()
	result := StubResult()
	scan := &service.Scan{
		ID:             id,
		SessionID:      sid,
		TargetLanguage: "English",
		SourceText:     result.SourceText,
		Items:          result.Items,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	if err := env.DB.InsertScan(scan); err != nil {
		t.Fatalf("failed to insert test scan: %v", err)
	}
	return scan
}
