package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/kavinmuthu/scamlure/internal/config"
	"github.com/kavinmuthu/scamlure/internal/handler"
	"github.com/kavinmuthu/scamlure/internal/model/persona"
	aiservice "github.com/kavinmuthu/scamlure/internal/service/ai"
	"github.com/kavinmuthu/scamlure/internal/service/engage"
	"github.com/kavinmuthu/scamlure/internal/service/report"
	sessionstore "github.com/kavinmuthu/scamlure/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store := sessionstore.NewStore(cfg.Session.MaxTurnsPerSession)
	personaStore := persona.NewMemoryStore(persona.Seed())

	var generator aiservice.Generator
	if cfg.AI.Enabled() {
		svc, err := aiservice.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing with canned fallback replies only")
		} else {
			generator = svc
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, replies use canned fallbacks")
	}

	planner := engage.New(generator, personaStore, cfg.Engage.HistoryLimit, cfg.Engage.GenerationTimeout)

	var dispatcherOpts []report.Option
	if cfg.NATS.URL != "" {
		publisher, err := report.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Token)
		if err != nil {
			log.Printf("warning: failed to connect report publisher: %v", err)
		} else {
			defer publisher.Close()
			dispatcherOpts = append(dispatcherOpts, report.WithPublisher(publisher))
			log.Println("report event publisher connected")
		}
	}

	dispatcher := report.New(
		store,
		cfg.Callback.URL,
		cfg.Callback.Timeout,
		cfg.Callback.MaxAttempts,
		cfg.Session.MinTurnsForReport,
		dispatcherOpts...,
	)

	if cfg.Session.TTL > 0 {
		scheduler := cron.New()
		ttl := cfg.Session.TTL
		if _, err := scheduler.AddFunc(cfg.Session.CleanupSchedule, func() {
			store.CleanupExpired(ttl)
		}); err != nil {
			log.Printf("warning: invalid cleanup schedule %q: %v", cfg.Session.CleanupSchedule, err)
		} else {
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	router := handler.NewRouter(store, planner, dispatcher, personaStore, cfg.Auth.APIKey)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("scamlure listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
