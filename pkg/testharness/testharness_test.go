package testharness

import (
	"context"
	"testing"

	"github.com/menulens/menulens/pkg/client"
)

func TestStart(t *testing.T) {
	if !Available("") {
		t.Skip("menulens-devserver binary not available")
	}

	h := Start(t, Config{
		Secret:  "harness-secret",
		Origins: []string{"https://app.menulens.test"},
		Quiet:   true,
	})

	if h.BaseURL == "" {
		t.Error("BaseURL is empty")
	}
	if h.Secret != "harness-secret" {
		t.Errorf("Secret = %q", h.Secret)
	}
	if len(h.Origins) != 1 || h.Origins[0] != "https://app.menulens.test" {
		t.Errorf("Origins = %v", h.Origins)
	}

	// the spawned server accepts SDK calls end to end
	c := client.New(h.BaseURL, h.Origins[0])
	scan, err := c.Scan(context.Background(), "aW1hZ2U=", "English")
	if err != nil {
		t.Fatalf("Scan against harness failed: %v", err)
	}
	if len(scan.Items) == 0 {
		t.Error("expected canned scan items")
	}

	history, err := c.History(context.Background())
	if err != nil {
		t.Fatalf("History against harness failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history = %d, want 1", len(history))
	}
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()
	args := buildArgs(Config{
		Secret:     "s",
		Origins:    []string{"https://a.example", "https://b.example"},
		ListenAddr: "127.0.0.1:0",
		Keep:       true,
		Quiet:      true,
	})

	want := []string{
		"--secret", "s",
		"--origin", "https://a.example",
		"--origin", "https://b.example",
		"--listen", "127.0.0.1:0",
		"--keep",
		"--quiet",
	}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}
