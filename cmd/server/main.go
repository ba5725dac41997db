package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/demoscope/demoscope/internal/api"
	"github.com/demoscope/demoscope/internal/config"
	"github.com/demoscope/demoscope/internal/db"
	"github.com/demoscope/demoscope/internal/jobs"
	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/pipeline"
	"github.com/demoscope/demoscope/internal/replay"
	"github.com/demoscope/demoscope/internal/repository/sqlite"
	"github.com/demoscope/demoscope/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("DemoScope Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("data_dir=%s", cfg.DataDir)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("process_worker_count=%d", cfg.ProcessWorkerCount)
	log.Debug("process_queue_size=%d", cfg.ProcessQueueSize)
	log.Debug("stats_worker_count=%d", cfg.StatsWorkerCount)
	log.Debug("stats_queue_size=%d", cfg.StatsQueueSize)
	log.Debug("job_poll_interval=%v", cfg.JobPollInterval)
	log.Debug("job_retry_limit=%d", cfg.JobRetryLimit)
	log.Debug("cleanup_schedule=%s", cfg.CleanupSchedule)
	log.Debug("retention_days=%d", cfg.RetentionDays)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	demoRepo := sqlite.NewDemoRepository(database.DB)
	userRepo := sqlite.NewUserRepository(database.DB)
	analysisRepo := sqlite.NewAnalysisRepository(database.DB)
	userStatsRepo := sqlite.NewUserStatsRepository(database.DB)
	jobRepo := sqlite.NewJobRepository(database.DB)
	demoStore := sqlite.NewDemoStore(database.DB)

	// Queue and pipeline
	queue := jobs.NewDurableQueue(jobRepo, cfg.JobRetryLimit)
	processor := pipeline.NewProcessor(demoRepo, userRepo, demoStore, queue, replay.DefaultRegistry())

	// Worker pools and dispatcher
	processPool := worker.NewPool("process-pool", cfg.ProcessWorkerCount, cfg.ProcessQueueSize)
	statsPool := worker.NewPool("stats-pool", cfg.StatsWorkerCount, cfg.StatsQueueSize)

	dispatcher := jobs.NewDispatcher(jobRepo, cfg.JobPollInterval, cfg.JobExpiry, cfg.JobRetryDelay)
	dispatcher.Register(models.JobTypeProcessDemo, processPool, pipeline.ProcessDemoHandler(processor))
	dispatcher.Register(models.JobTypeUserStatsRefresh, statsPool, pipeline.UserStatsRefreshHandler(userStatsRepo))
	dispatcher.Register(models.JobTypeCleanup, statsPool, pipeline.CleanupHandler(demoRepo, jobRepo))

	scheduler := jobs.NewScheduler(queue)
	if err := scheduler.ScheduleCleanup(cfg.CleanupSchedule, cfg.RetentionDays); err != nil {
		log.Error("failed to schedule cleanup: %v", err)
		os.Exit(1)
	}

	srv := api.NewServer(demoRepo, userRepo, analysisRepo, userStatsRepo, queue)
	srv.DataDir = cfg.DataDir

	ctx, cancel := context.WithCancel(context.Background())
	processPool.Start(ctx)
	statsPool.Start(ctx)
	dispatcher.Start(ctx)
	scheduler.Start()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Stop intake before the pools so in-flight jobs can drain. Claimed
	// jobs that get cut off are redelivered after their lease expires.
	log.Debug("stopping scheduler")
	scheduler.Stop()
	log.Debug("stopping dispatcher")
	dispatcher.Stop()
	cancel()
	log.Debug("stopping process pool")
	processPool.Stop()
	log.Debug("stopping stats pool")
	statsPool.Stop()

	log.Info("===========================================")
	log.Info("DemoScope Server Stopped")
	log.Info("===========================================")
}
