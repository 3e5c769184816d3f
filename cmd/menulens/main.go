package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/menulens/menulens/internal/api"
	"github.com/menulens/menulens/internal/config"
	"github.com/menulens/menulens/internal/database"
	"github.com/menulens/menulens/internal/logging"
	"github.com/menulens/menulens/internal/ratelimit"
	"github.com/menulens/menulens/internal/service"
	"github.com/menulens/menulens/internal/vision"
	"github.com/menulens/menulens/pkg/sessiontoken"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		flog := fallbackLog()
		flog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFile)

	db, err := database.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
	}
	defer db.Close()

	tokens, err := sessiontoken.InitServer(sessiontoken.Config{
		Secret:         cfg.SessionSecret,
		TTL:            cfg.SessionTTLDuration(),
		AllowedOrigins: cfg.AllowedOriginsList(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init session tokens")
	}

	if cfg.OriginsFile != "" {
		watcher, err := config.WatchOrigins(cfg.OriginsFile, tokens.Allowlist(), log)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.OriginsFile).Msg("failed to watch origins file")
		}
		defer watcher.Close()
	}

	store := limiterStore(cfg, log)
	issueLimiter := ratelimit.New(store, "issue", cfg.IssueWindow(), cfg.IssueRateMax, log)
	apiLimiter := ratelimit.New(store, "api", cfg.APIWindow(), cfg.APIRateMax, log)

	analyzer := vision.NewClient(cfg.VisionAPIURL, cfg.VisionAPIKey, cfg.VisionModel, log)
	svc := service.New(db.ScanStore(), db.FavoriteStore(), analyzer, log)

	a := api.New(
		svc,
		tokens,
		tokens,
		tokens.Allowlist(),
		issueLimiter,
		apiLimiter,
		cfg.DefaultOrigin,
		log,
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("menulens listening")
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown did not complete cleanly")
		}
	}
}

// limiterStore selects Redis when configured, falling back to
// process-local memory.
func limiterStore(cfg *config.Config, log zerolog.Logger) ratelimit.Store {
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemoryStore()
	}
	store, err := ratelimit.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis rate limit store")
	return store
}

func fallbackLog() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
