package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/vidmind/internal/analyze"
	"github.com/dgallion1/vidmind/internal/api"
	"github.com/dgallion1/vidmind/internal/chat"
	"github.com/dgallion1/vidmind/internal/config"
	"github.com/dgallion1/vidmind/internal/janitor"
	"github.com/dgallion1/vidmind/internal/media"
	"github.com/dgallion1/vidmind/internal/metrics"
	"github.com/dgallion1/vidmind/internal/render"
	"github.com/dgallion1/vidmind/internal/session"
	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/sync/errgroup"
)

// limiterIdle is how long a client may stay quiet before its rate limit
// bucket is dropped.
const limiterIdle = 10 * time.Minute

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	payload, ok := analyze.Payload(cfg.AnalyzerPayload)
	if !ok {
		log.Error("invalid configuration", "error", "unknown analyzer payload", "payload", cfg.AnalyzerPayload)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, dir := range []string{cfg.UploadDir, cfg.ExportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("create data directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}
	videos := media.NewStore(osfs.New(cfg.UploadDir), ".", cfg.MaxUploadBytes)
	exports := osfs.New(cfg.ExportDir)

	// Initialize the session backend.
	var (
		sessions session.Store
		memory   *session.MemoryStore
	)
	switch cfg.SessionBackend {
	case "redis":
		rs, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		}, log)
		if err != nil {
			log.Error("connect session store", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rs.Close()
		sessions = rs
	default:
		memory = session.NewMemoryStore(cfg.SessionTTL)
		sessions = memory
	}

	pages, err := render.New()
	if err != nil {
		log.Error("load templates", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	srv := api.NewServer(api.Deps{
		Videos:   videos,
		Exports:  exports,
		Sessions: sessions,
		Analyzer: analyze.StubAnalyzer{Payload: payload},
		Chat:     chat.NewResponder(chat.DefaultRules(), nil),
		Pages:    pages,
		Metrics:  m,
		Limiter:  limiter,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting vidmind", "port", cfg.Port, "sessions", cfg.SessionBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Housekeeping.
	g.Go(func() error {
		return janitor.Run(gctx, cfg.JanitorInterval, func() {
			removed, err := janitor.Sweep(exports, ".", cfg.ExportTTL, time.Now())
			if err != nil {
				log.Warn("export sweep failed", "error", err)
			}
			m.ObserveSweep(removed)

			dropped := limiter.Sweep(limiterIdle)
			expired := 0
			if memory != nil {
				expired = memory.Cleanup()
			}
			if removed+dropped+expired > 0 {
				log.Info("cleanup", "exports_removed", removed, "sessions_expired", expired, "clients_dropped", dropped)
			}
		})
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
