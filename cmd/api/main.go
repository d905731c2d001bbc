package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"creator_mind/pkg/api/analyze"
	"creator_mind/pkg/api/config"
	"creator_mind/pkg/api/ingest"
	"creator_mind/pkg/api/reports"
	"creator_mind/pkg/api/respond"
	"creator_mind/pkg/core/agent"
	"creator_mind/pkg/core/analysis"
	appconfig "creator_mind/pkg/core/config"
	"creator_mind/pkg/core/logging"
	"creator_mind/pkg/core/prompt"
	"creator_mind/pkg/core/store"
)

func main() {
	cfg := appconfig.Load()

	log, err := logging.New(cfg.LogLevel, cfg.DevLogging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Prompt library: embedded defaults, then overrides from disk
	prompts := prompt.Get()
	if n, err := prompt.LoadFromDirectory(prompts, cfg.ResourcesDir); err != nil {
		log.Info("prompt: using embedded prompts", zap.String("dir", cfg.ResourcesDir), zap.Error(err))
	} else {
		log.Info("prompt: loaded overrides", zap.Int("count", n), zap.String("dir", cfg.ResourcesDir))
	}
	log.Info("prompt: registry ready", zap.Int("prompts", prompts.Count()), zap.Strings("ids", prompts.ListPrompts()))

	agentCfg, err := agent.LoadConfig(cfg.ModelsConfig)
	if err != nil {
		log.Fatal("config: models config", zap.Error(err))
	}
	agentMgr := agent.NewManager(agentCfg, log)

	// Hybrid vault: Postgres when configured, files otherwise
	cacheDir := cfg.CacheDir
	if cfg.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			log.Warn("store: database unavailable, using file cache", zap.Error(err))
		} else {
			defer store.Close()
			log.Info("store: connected to database")
		}
	}
	repo, err := store.NewReportRepo(store.GetPool(), cacheDir)
	if err != nil {
		log.Fatal("store: init", zap.Error(err))
	}

	svc := analysis.NewService(agentMgr, prompts, log)
	analyzeHandler := analyze.NewHandler(svc, agentMgr, repo, log)
	ingestHandler := ingest.NewHandler(repo, cfg.MaxUploadMB, log)
	reportsHandler := reports.NewHandler(repo, log)
	configHandler := config.NewHandler(agentMgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Ingestion and stats
	mux.HandleFunc("/api/ingest", ingestHandler.HandleIngest)
	mux.HandleFunc("/api/stats", ingestHandler.HandleStats)

	// Analysis
	mux.HandleFunc("/api/analyze", analyzeHandler.HandleAnalyze)

	// Reports and exports
	mux.HandleFunc("/api/reports", reportsHandler.HandleList)
	mux.HandleFunc("/api/report", reportsHandler.HandleGet)
	mux.HandleFunc("/api/report/markdown", reportsHandler.HandleMarkdown)
	mux.HandleFunc("/api/report/html", reportsHandler.HandleHTML)
	mux.HandleFunc("/api/batch/xlsx", reportsHandler.HandleBatchXLSX)

	// Config endpoints
	mux.HandleFunc("/api/config", configHandler.HandleConfig)
	mux.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("api: listening",
		zap.String("addr", srv.Addr),
		zap.String("provider", agentMgr.GetActiveProvider()),
		zap.Bool("database", store.GetPool() != nil))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("api: server failed", zap.Error(err))
	}
}
