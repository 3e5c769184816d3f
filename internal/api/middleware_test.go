package api_test

import (
	"net/http"
	"testing"

	"github.com/menulens/menulens/internal/testutil"
	"github.com/menulens/menulens/pkg/api"
)

func TestProtected_MissingToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	var response api.ErrorResponse
	result := testutil.Get(env.Router, "/api/history", &response)
	testutil.ExpectStatus(t, http.StatusUnauthorized, result)
	if response.Error != "authentication required" {
		t.Errorf("error = %q", response.Error)
	}
}

func TestProtected_InvalidToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	var response api.ErrorResponse
	result := testutil.Get(env.Router, "/api/history", &response,
		testutil.SessionToken("not-a-token"))
	testutil.ExpectStatus(t, http.StatusUnauthorized, result)
	if response.Error != "session expired, please refresh" {
		t.Errorf("error = %q", response.Error)
	}
}

func TestProtected_OriginMismatch(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	session := env.IssueTestSession(t)

	// a valid token presented from the wrong origin gets the same
	// generic message as any other verification failure
	var response api.ErrorResponse
	result := testutil.Get(env.Router, "/api/history", &response,
		testutil.SessionToken(session.Token),
		testutil.Origin("https://evil.example"))
	testutil.ExpectStatus(t, http.StatusUnauthorized, result)
	if response.Error != "session expired, please refresh" {
		t.Errorf("error = %q", response.Error)
	}
}

func TestProtected_ValidTokenWithoutOriginHeader(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	session := env.IssueTestSession(t)

	// non-browser clients send no Origin header; the origin binding is
	// only enforced when one is present
	result := testutil.Get(env.Router, "/api/history", nil,
		testutil.SessionToken(session.Token))
	testutil.ExpectStatus(t, http.StatusOK, result)
}

func TestCORS_EchoesAllowedOrigin(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	result := testutil.Options(env.Router, "/api/scan",
		testutil.Origin(testutil.TestOrigin))
	if result.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", result.Code)
	}
	if got := result.Headers.Get("Access-Control-Allow-Origin"); got != testutil.TestOrigin {
		t.Errorf("allow-origin = %q, want %q", got, testutil.TestOrigin)
	}
	if len(result.Body) != 0 {
		t.Errorf("preflight body = %q, want empty", string(result.Body))
	}
}

func TestCORS_UnknownOriginGetsDefault(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)

	result := testutil.Options(env.Router, "/api/scan",
		testutil.Origin("https://evil.example"))
	if got := result.Headers.Get("Access-Control-Allow-Origin"); got != testutil.TestOrigin {
		t.Errorf("allow-origin = %q, want default %q", got, testutil.TestOrigin)
	}
}

func TestProtected_RateLimited(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnvWithRouter(t)
	session := env.IssueTestSession(t)

	for i := 0; i < testutil.APILimit; i++ {
		result := testutil.Get(env.Router, "/api/history", nil,
			testutil.SessionToken(session.Token),
			testutil.ForwardedFor("198.51.100.4"))
		if result.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, result.Code)
		}
	}

	result := testutil.Get(env.Router, "/api/history", nil,
		testutil.SessionToken(session.Token),
		testutil.ForwardedFor("198.51.100.4"))
	testutil.ExpectStatus(t, http.StatusTooManyRequests, result)
}
