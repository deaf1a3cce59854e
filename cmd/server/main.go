package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"visitprep/internal/config"
	"visitprep/internal/core"
	"visitprep/internal/db"
	httpserver "visitprep/internal/http"
	"visitprep/internal/llm"
	"visitprep/internal/logger"
	"visitprep/internal/records"
	"visitprep/internal/session"
	"visitprep/pkg"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "visitprep")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recs, source, err := loadRecords(ctx, cfg)
	if err != nil {
		log.Fatal("failed to load patient records", zap.String("source", source), zap.Error(err))
	}
	catalog, err := records.NewCatalog(recs)
	if err != nil {
		log.Fatal("invalid patient records", zap.String("source", source), zap.Error(err))
	}
	log.Info("patient records loaded", zap.String("source", source), zap.Int("count", catalog.Len()))

	var completer core.Completer
	if cfg.UseMockLLM {
		log.Warn("using mock completion client")
		completer = llm.NewMockClient()
	} else {
		client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		log.Info("using OpenAI completion client", zap.String("model", client.Model()))
		completer = client
	}

	visits := core.NewVisitService(completer, core.Options{
		MaxTokens:         cfg.PlanMaxTokens,
		Temperature:       cfg.Temperature,
		CompletionTimeout: cfg.CompletionTimeout,
	}, log.Named("visits"))
	sessions := session.NewStore()
	if cfg.SessionIdleTTL > 0 {
		go sweepSessions(ctx, sessions, cfg.SessionIdleTTL, log)
	}

	srv, err := httpserver.NewServer(catalog, sessions, visits, log.Named("http"))
	if err != nil {
		log.Fatal("failed to construct server", zap.Error(err))
	}
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.CompletionTimeout + 15*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Info("listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// loadRecords picks the record source: Postgres, then a YAML file, then the
// built-in set.
func loadRecords(ctx context.Context, cfg *config.Config) ([]pkg.PatientRecord, string, error) {
	switch {
	case cfg.PatientDatabaseURL != "":
		recs, err := loadFromPostgres(ctx, cfg.PatientDatabaseURL)
		return recs, "postgres", err
	case cfg.PatientRecordsFile != "":
		recs, err := records.LoadFile(cfg.PatientRecordsFile)
		return recs, cfg.PatientRecordsFile, err
	default:
		return records.Builtin(), "builtin", nil
	}
}

func loadFromPostgres(ctx context.Context, dsn string) ([]pkg.PatientRecord, error) {
	dbConn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := db.Migrate(ctx, dbConn); err != nil {
		return nil, err
	}
	return db.NewPatientRepository(dbConn).ListPatients(ctx)
}

func sweepSessions(ctx context.Context, store *session.Store, ttl time.Duration, log *zap.Logger) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.Sweep(now, ttl); n > 0 {
				log.Info("expired idle sessions", zap.Int("count", n), zap.Int("remaining", store.Len()))
			}
		}
	}
}
