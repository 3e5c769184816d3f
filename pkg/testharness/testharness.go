// Package testharness spawns a menulens-devserver binary for
// integration tests that need a real MenuLens instance over TCP rather
// than the in-process server from pkg/menulenstest.
package testharness

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"
)

// Config holds configuration for starting the test harness.
type Config struct {
	Secret     string
	Origins    []string
	ListenAddr string
	DataDir    string
	Keep       bool
	BinaryPath string
	Quiet      bool
}

// Harness represents a running menulens-devserver instance.
type Harness struct {
	BaseURL string
	Secret  string
	Origins []string
	DataDir string
	DBPath  string

	cmd    *exec.Cmd
	cancel context.CancelFunc
}

// outputContract matches the JSON structure from menulens-devserver
type outputContract struct {
	BaseURL string      `json:"base_url"`
	Secret  string      `json:"secret"`
	Origins []string    `json:"origins"`
	Paths   outputPaths `json:"paths"`
}

type outputPaths struct {
	DataDir string `json:"data_dir"`
	DBPath  string `json:"db_path"`
}

// Available reports whether a devserver binary can be found, so tests
// can skip instead of failing on machines that haven't built one.
func Available(configPath string) bool {
	return findBinary(configPath) != ""
}

// Start spawns a menulens-devserver and returns a handle to it.
// It registers cleanup with t.Cleanup().
func Start(t *testing.T, cfg Config) *Harness {
	t.Helper()

	binaryPath := findBinary(cfg.BinaryPath)
	if binaryPath == "" {
		t.Fatal("menulens-devserver binary not found (check PATH or set Config.BinaryPath or MENULENS_DEVSERVER_BIN)")
	}

	args := buildArgs(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(ctx, binaryPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		t.Fatalf("failed to create stdout pipe: %v", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		t.Fatalf("failed to create stderr pipe: %v", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		t.Fatalf("failed to start menulens-devserver: %v", err)
	}

	// the first stdout line is the JSON contract
	scanner := bufio.NewScanner(stdout)
	if !scanner.Scan() {
		cancel()
		_ = cmd.Wait()
		t.Fatal("failed to read JSON contract from menulens-devserver")
	}

	var contract outputContract
	if err := json.Unmarshal(scanner.Bytes(), &contract); err != nil {
		cancel()
		_ = cmd.Wait()
		t.Fatalf("failed to parse JSON contract: %v", err)
	}

	if !cfg.Quiet {
		go func() {
			for scanner.Scan() {
				t.Logf("[menulens-devserver] %s", scanner.Text())
			}
		}()
		go func() {
			stderrScanner := bufio.NewScanner(stderr)
			for stderrScanner.Scan() {
				t.Logf("[menulens-devserver stderr] %s", stderrScanner.Text())
			}
		}()
	}

	harness := &Harness{
		BaseURL: contract.BaseURL,
		Secret:  contract.Secret,
		Origins: contract.Origins,
		DataDir: contract.Paths.DataDir,
		DBPath:  contract.Paths.DBPath,
		cmd:     cmd,
		cancel:  cancel,
	}

	t.Cleanup(func() {
		if err := harness.Close(); err != nil {
			t.Logf("warning: harness cleanup failed: %v", err)
		}
	})

	return harness
}

// Close terminates the menulens-devserver process.
func (h *Harness) Close() error {
	if h.cancel != nil {
		h.cancel()
	}

	if h.cmd == nil || h.cmd.Process == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- h.cmd.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		if err := h.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("force kill: %w", err)
		}
		return fmt.Errorf("timeout waiting for graceful shutdown, process killed")
	}
}

func findBinary(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	if envPath := os.Getenv("MENULENS_DEVSERVER_BIN"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	if pathBinary, err := exec.LookPath("menulens-devserver"); err == nil {
		return pathBinary
	}

	return ""
}

func buildArgs(cfg Config) []string {
	var args []string

	if cfg.Secret != "" {
		args = append(args, "--secret", cfg.Secret)
	}
	for _, origin := range cfg.Origins {
		args = append(args, "--origin", origin)
	}
	if cfg.ListenAddr != "" {
		args = append(args, "--listen", cfg.ListenAddr)
	}
	if cfg.DataDir != "" {
		args = append(args, "--data-dir", cfg.DataDir)
	}
	if cfg.Keep {
		args = append(args, "--keep")
	}
	if cfg.Quiet {
		args = append(args, "--quiet")
	}

	return args
}
