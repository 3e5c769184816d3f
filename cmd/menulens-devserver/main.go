// menulens-devserver runs a self-contained MenuLens instance for local
// development and integration tests: in-memory or throwaway SQLite, a
// canned vision backend, and a JSON contract printed on stdout so a
// harness can discover the base URL and credentials.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/menulens/menulens/internal/api"
	"github.com/menulens/menulens/internal/database"
	"github.com/menulens/menulens/internal/ratelimit"
	"github.com/menulens/menulens/internal/service"
	"github.com/menulens/menulens/internal/vision"
	"github.com/menulens/menulens/pkg/sessiontoken"
)

// Config holds all command-line configuration
type Config struct {
	ListenAddr string
	Secret     string
	Origins    []string
	DataDir    string
	Keep       bool
	Quiet      bool
}

// OutputContract is the JSON structure emitted on stdout
type OutputContract struct {
	BaseURL string      `json:"base_url"`
	Secret  string      `json:"secret"`
	Origins []string    `json:"origins"`
	Paths   OutputPaths `json:"paths"`
}

type OutputPaths struct {
	DataDir string `json:"data_dir"`
	DBPath  string `json:"db_path"`
}

// OriginFlag is a custom flag type for repeatable --origin flags
type OriginFlag []string

func (o *OriginFlag) String() string {
	return strings.Join(*o, ",")
}

func (o *OriginFlag) Set(value string) error {
	if value == "" {
		return fmt.Errorf("origin must be non-empty")
	}
	*o = append(*o, value)
	return nil
}

// cannedAnalyzer serves a fixed scan result so no vision API key is
// needed during development.
type cannedAnalyzer struct{}

func (cannedAnalyzer) Analyze(_ context.Context, _ string, _ string) (*vision.Result, error) {
	return &vision.Result{
		SourceText: "唐揚げ ¥580\nビール ¥450\n味噌汁 ¥200",
		Items: []vision.MenuItem{
			{Original: "唐揚げ", Reading: "karaage", Translation: "fried chicken", Price: "¥580"},
			{Original: "ビール", Reading: "biiru", Translation: "beer", Price: "¥450"},
			{Original: "味噌汁", Reading: "miso shiru", Translation: "miso soup", Price: "¥200"},
		},
	}, nil
}

func main() {
	cfg := parseFlags()

	if cfg.Quiet {
		log.SetOutput(io.Discard)
	}
	logger := zerolog.Nop()
	if !cfg.Quiet {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}

	dbPath, cleanup, err := createWorkspace(cfg)
	if err != nil {
		log.Fatalf("failed to create workspace: %v\n", err)
	}
	defer cleanup()

	db, err := database.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v\n", err)
	}
	defer db.Close()

	tokens, err := sessiontoken.InitServer(sessiontoken.Config{
		Secret:         cfg.Secret,
		AllowedOrigins: cfg.Origins,
	})
	if err != nil {
		log.Fatalf("failed to init session tokens: %v\n", err)
	}

	store := ratelimit.NewMemoryStore()
	issueLimiter := ratelimit.New(store, "issue", time.Hour, 1000, logger)
	apiLimiter := ratelimit.New(store, "api", time.Minute, 10000, logger)

	svc := service.New(db.ScanStore(), db.FavoriteStore(), cannedAnalyzer{}, logger)

	a := api.New(
		svc,
		tokens,
		tokens,
		tokens.Allowlist(),
		issueLimiter,
		apiLimiter,
		cfg.Origins[0],
		logger,
	)

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v\n", err)
	}
	defer listener.Close()

	addr := listener.Addr().(*net.TCPAddr)
	baseURL := fmt.Sprintf("http://%s:%d", addr.IP, addr.Port)

	contract := OutputContract{
		BaseURL: baseURL,
		Secret:  cfg.Secret,
		Origins: cfg.Origins,
		Paths: OutputPaths{
			DataDir: filepath.Dir(dbPath),
			DBPath:  dbPath,
		},
	}
	if err := json.NewEncoder(os.Stdout).Encode(contract); err != nil {
		log.Fatalf("failed to encode JSON contract: %v\n", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- http.Serve(listener, a.Router())
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalf("server error: %v\n", err)
	case sig := <-sigChan:
		log.Printf("received signal %v, shutting down\n", sig)
	}
}

func parseFlags() Config {
	var cfg Config
	var origins OriginFlag

	flag.StringVar(&cfg.ListenAddr, "listen", "127.0.0.1:0", "Listen address (default uses ephemeral port)")
	flag.StringVar(&cfg.Secret, "secret", "menulens-dev-secret", "Token signing secret")
	flag.Var(&origins, "origin", "Allow-listed origin (repeatable)")
	flag.StringVar(&cfg.DataDir, "data-dir", "", "Data directory (uses temp dir if not set)")
	flag.BoolVar(&cfg.Keep, "keep", false, "Keep data directory on exit")
	flag.BoolVar(&cfg.Quiet, "quiet", false, "Suppress log output")

	flag.Parse()

	if len(origins) == 0 {
		cfg.Origins = []string{"http://localhost:5173"}
	} else {
		cfg.Origins = origins
	}

	return cfg
}

func createWorkspace(cfg Config) (dbPath string, cleanup func(), err error) {
	var dataDir string
	var shouldCleanup bool

	if cfg.DataDir != "" {
		dataDir = cfg.DataDir
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return "", nil, err
		}
	} else {
		tempDir, err := os.MkdirTemp("", "menulens-devserver-*")
		if err != nil {
			return "", nil, err
		}
		dataDir = tempDir
		shouldCleanup = !cfg.Keep
	}

	cleanup = func() {
		if shouldCleanup {
			os.RemoveAll(dataDir)
		}
	}
	return filepath.Join(dataDir, "menulens.db"), cleanup, nil
}
