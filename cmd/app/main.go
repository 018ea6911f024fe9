package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travel-ai-planner/internal/config"
	"travel-ai-planner/internal/domain/ports/adapter"
	planneradapter "travel-ai-planner/internal/infra/adapters/planner"
	pg "travel-ai-planner/internal/infra/db/postgres"
	"travel-ai-planner/internal/infra/logging"
	"travel-ai-planner/internal/infra/metrics"
	red "travel-ai-planner/internal/infra/redis"
	"travel-ai-planner/internal/infra/sched"
	"travel-ai-planner/internal/infra/web"
	"travel-ai-planner/internal/infra/worker"
	"travel-ai-planner/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop planner, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	jobRepo := pg.NewPlanJobRepoCacheDecorator(pg.NewPlanJobRepo(pool), redisClient)
	surveyRepo := pg.NewSurveyRepo(pool)
	itineraryRepo := pg.NewItineraryRepo(pool)

	// ---- Planner adapter ----
	var planner adapter.PlannerAdapter
	if cfg.Runtime.Dev && cfg.Planner.APIKey == "" {
		planner = planneradapter.NewNoopPlanner(*logger)
		logger.Info().Msg("planner adapter: noop (dev)")
	} else {
		planner = planneradapter.NewHTTPPlanner(&cfg.Planner)
		logger.Info().Str("base_url", cfg.Planner.BaseURL).Msg("planner adapter: http")
	}

	// ---- Use cases ----
	surveyUC := usecase.NewSurveyUseCase(surveyRepo)
	itinUC := usecase.NewItineraryUseCase(itineraryRepo)
	jobUC := usecase.NewPlanJobUseCase(jobRepo, surveyRepo, itineraryRepo, planner,
		cfg.Planner.CallbackBaseURL, cfg.Jobs.MaxRetries, logger)
	cbUC := usecase.NewCallbackUseCase(jobRepo, itineraryRepo, usecase.NewMaterializer(), txManager, logger)
	statsUC := usecase.NewStatsUseCase(jobRepo, cfg.Jobs.StaleAfter)

	// ---- Dispatch machinery ----
	workerPool := worker.NewPool(cfg.Jobs.Workers, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()
	dispatcher := worker.NewDispatchWorker(jobRepo, jobUC, workerPool,
		cfg.Jobs.SweepInterval, cfg.Jobs.SweepGrace, logger)
	go func() { _ = dispatcher.Run(ctx) }()

	staleMonitor := sched.NewStaleJobMonitor(jobRepo, cfg.Jobs.StaleAfter, cfg.Jobs.StaleCheckInterval, logger)
	go func() { _ = staleMonitor.Run(ctx) }()

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, "", cfg.Admin.SessionTTL)
	srv := web.NewServer(surveyUC, jobUC, itinUC, cbUC, statsUC, dispatcher, locker, rateLimiter, auth, cfg, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
