package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storepulse/backend/internal/aggregate"
	"github.com/storepulse/backend/internal/ai"
	"github.com/storepulse/backend/internal/collector"
	"github.com/storepulse/backend/internal/config"
	"github.com/storepulse/backend/internal/db"
	httpapi "github.com/storepulse/backend/internal/http"
	"github.com/storepulse/backend/internal/metrics"
	"github.com/storepulse/backend/internal/region"
	"github.com/storepulse/backend/internal/scheduler"
	"github.com/storepulse/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "storepulse-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	var enricher ai.Enricher
	if cfg.EnrichURL == "" {
		enricher = ai.HeuristicEnricher{}
		logger.Info().Msg("using heuristic enricher")
	} else {
		enricher = ai.HTTPEnricher{BaseURL: cfg.EnrichURL, Timeout: cfg.EnrichTimeout}
		logger.Info().Str("url", cfg.EnrichURL).Msg("using HTTP enricher")
	}

	builder := aggregate.NewBuilder(aggregateConfig(cfg), region.SuffixResolver{}, enricher, logger)
	processor := collector.New(cfg.MaxThemesPerStore)
	reg := metrics.NewRegistry()

	svc := &service.AggregationService{
		Store:   store,
		Builder: builder,
		Metrics: reg,
		Logger:  logger,
	}

	var assistant ai.Assistant
	if cfg.AssistantBaseURL != "" {
		assistant = ai.OpenAICompatAssistant{
			BaseURL: cfg.AssistantBaseURL,
			Model:   cfg.AssistantModel,
			APIKey:  cfg.AssistantAPIKey,
		}
		logger.Info().Str("model", cfg.AssistantModel).Msg("assistant enabled")
	}

	var sched *scheduler.Scheduler
	if cfg.AggregateCron != "" {
		sched = scheduler.New(logger)
		err := sched.AddJob("aggregate", cfg.AggregateCron, func(ctx context.Context) error {
			_, _, err := svc.RunCycle(ctx)
			return err
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid cron spec")
		}
		sched.Start()
	}

	router := httpapi.Router(cfg, store, svc, processor, assistant, reg, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if sched != nil {
		<-sched.Stop().Done()
	}
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

func aggregateConfig(cfg config.Config) aggregate.Config {
	return aggregate.Config{
		RatingDropThreshold:        cfg.AlertRatingDropThreshold,
		NegativeSentimentThreshold: cfg.AlertNegativeSentimentThreshold,
		VolumeDropThreshold:        cfg.AlertReviewVolumeDropThreshold,
		MinThemeFrequency:          cfg.MinThemeFrequency,
		MaxThemesPerStore:          cfg.MaxThemesPerStore,
		MinStoresForInsights:       cfg.MinStoresForInsights,
		TrendAnalysisDays:          cfg.TrendAnalysisDays,
		TopIssuesLimit:             cfg.TopIssuesLimit,
		NPSPromoterMin:             cfg.NPSPromoterMin,
		NPSDetractorMax:            cfg.NPSDetractorMax,
		Severity: aggregate.SeverityPolicy{
			CriticalMultiplier:    cfg.SeverityCriticalMultiplier,
			HighMultiplier:        cfg.SeverityHighMultiplier,
			SentimentCriticalStep: cfg.SentimentCriticalStep,
			SentimentHighStep:     cfg.SentimentHighStep,
			SentimentMediumStep:   cfg.SentimentMediumStep,
		},
	}
}
