package menulenstest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/menulens/menulens/pkg/menulenstest"
)

func TestKeys_SessionsVerify(t *testing.T) {
	t.Parallel()
	keys, err := menulenstest.NewKeys("", menulenstest.DefaultOrigin)
	if err != nil {
		t.Fatalf("NewKeys failed: %v", err)
	}

	session, err := keys.NewSession(menulenstest.DefaultOrigin)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	payload, err := keys.Verifier().Verify(session.Token, menulenstest.DefaultOrigin)
	if err != nil {
		t.Fatalf("minted session failed verification: %v", err)
	}
	if payload.SessionID != session.ID {
		t.Errorf("payload sid = %q, want %q", payload.SessionID, session.ID)
	}
}

func TestServer_SDKRoundTrip(t *testing.T) {
	t.Parallel()
	keys, err := menulenstest.NewKeys("")
	if err != nil {
		t.Fatalf("NewKeys failed: %v", err)
	}
	server := menulenstest.StartServer(t, keys)
	c := server.Client()

	scan, err := c.Scan(context.Background(), "aW1hZ2U=", "English")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(scan.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(scan.Items))
	}

	history, err := c.History(context.Background())
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history = %d, want 1", len(history))
	}
}

func TestServer_PreMintedSessionAccepted(t *testing.T) {
	t.Parallel()
	keys, err := menulenstest.NewKeys("")
	if err != nil {
		t.Fatalf("NewKeys failed: %v", err)
	}
	server := menulenstest.StartServer(t, keys)

	session, err := keys.NewSession(menulenstest.DefaultOrigin)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/history", nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	menulenstest.AddSession(req, session, menulenstest.DefaultOrigin)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", res.StatusCode)
	}
}
