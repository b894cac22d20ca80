package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vytor/learnflow/internal/api"
	"github.com/vytor/learnflow/internal/coaching"
	"github.com/vytor/learnflow/internal/config"
	"github.com/vytor/learnflow/internal/db"
	"github.com/vytor/learnflow/internal/llm"
	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/metrics"
	"github.com/vytor/learnflow/internal/repository"
	"github.com/vytor/learnflow/internal/repository/redis"
	"github.com/vytor/learnflow/internal/repository/sqlite"
	"github.com/vytor/learnflow/internal/services"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	log.Info("===========================================")
	log.Info("learnflow server starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("cache_backend=%s", cfg.CacheBackend)
	log.Debug("coaching_card_ttl=%s", cfg.CoachingCardTTL())
	log.Debug("cold_start_sessions=%d", cfg.ColdStartSessions)
	log.Debug("assessment_event_limit=%d", cfg.AssessmentEventLimit)

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.NewContext(ctx, log)

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	store, closeStore, err := cacheStore(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer closeStore()

	var chatter llm.Chatter
	if cfg.GenAIAPIKey != "" {
		client, err := llm.NewGenAIClient(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
		if err != nil {
			return err
		}
		chatter = client
		log.Info("language model enabled: %s", cfg.GenAIModel)
	} else {
		log.Warn("GENAI_API_KEY not set, session exchange is disabled")
	}

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	profiles := sqlite.NewProfileRepository(database.DB)
	sessions := sqlite.NewSessionRepository(database.DB)
	events := sqlite.NewEventRepository(database.DB)
	retention := sqlite.NewRetentionRepository(database.DB)
	streaks := sqlite.NewStreakRepository(database.DB)

	cache := coaching.NewCache(sessions, retention, streaks, store,
		coaching.WithTTL(cfg.CoachingCardTTL()),
		coaching.WithColdStartSessions(cfg.ColdStartSessions),
	)

	srv := &api.Server{
		ProfileService: services.NewProfileService(profiles),
		SessionService: services.NewSessionService(
			sessions, events, retention,
			sqlite.NewReviewHistoryRepository(database.DB),
			streaks, cache, chatter,
			services.SessionConfig{AssessmentEventLimit: cfg.AssessmentEventLimit},
		),
		CoachingService: services.NewCoachingService(cache, nil),
		LearnerService:  services.NewLearnerService(retention, streaks, sqlite.NewSubjectRepository(database.DB), nil),
		DB:              database,
		Gatherer:        reg,
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("initiating graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error: %v", err)
		return err
	}

	log.Info("===========================================")
	log.Info("learnflow server stopped")
	log.Info("===========================================")
	return nil
}

// cacheStore picks the coaching-card store named by CACHE_BACKEND.
func cacheStore(ctx context.Context, cfg config.Config, database *db.DB) (repository.CoachingCacheRepository, func(), error) {
	if cfg.CacheBackend != config.CacheBackendRedis {
		return sqlite.NewCoachingCacheRepository(database.DB), func() {}, nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.FromContext(ctx).Info("coaching cards cached in redis at %s", cfg.RedisAddr)
	return redis.NewCoachingCacheRepository(client), func() { _ = client.Close() }, nil
}
