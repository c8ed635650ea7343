package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/storepulse/backend/internal/aggregate"
	"github.com/storepulse/backend/internal/db"
	"github.com/storepulse/backend/internal/metrics"
	"github.com/storepulse/backend/internal/models"
)

const (
	StatusRunning = "RUNNING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

type AggregationService struct {
	Store   *db.Store
	Builder *aggregate.Builder
	Metrics *metrics.Registry
	Logger  zerolog.Logger
}

type RunSummary struct {
	Events []map[string]any `json:"events"`
	Counts map[string]any   `json:"counts"`
}

// RunCycle executes one aggregation run: loads the latest insight batch plus
// the previous cycle as baseline, builds the snapshot, and persists it.
func (s *AggregationService) RunCycle(ctx context.Context) (RunSummary, models.ExecutiveSnapshot, error) {
	summary := RunSummary{Counts: map[string]any{}}
	start := time.Now()

	dates, err := s.Store.LatestInsightDates(ctx, 2)
	if err != nil {
		return summary, models.ExecutiveSnapshot{}, err
	}

	var current, previous []models.StoreInsight
	if len(dates) > 0 {
		if current, err = s.Store.GetInsightsByDate(ctx, dates[0]); err != nil {
			return summary, models.ExecutiveSnapshot{}, err
		}
	}
	if len(dates) > 1 {
		if previous, err = s.Store.GetInsightsByDate(ctx, dates[1]); err != nil {
			return summary, models.ExecutiveSnapshot{}, err
		}
	}
	if len(current) == 0 {
		s.Logger.Warn().Msg("no insights available, producing empty snapshot")
	}

	summary.Events = append(summary.Events, map[string]any{
		"type":    "load",
		"message": "Insight batches loaded",
		"current": len(current),
		"baseline": len(previous),
		"time":    time.Now().UTC(),
	})

	snapshot := s.Builder.Build(ctx, current, previous)

	summary.Events = append(summary.Events, map[string]any{
		"type":            "aggregation",
		"message":         "Executive snapshot built",
		"stores":          snapshot.PerformanceMetrics.StoresProcessed,
		"errors":          snapshot.PerformanceMetrics.ErrorsEncountered,
		"alerts":          len(snapshot.Alerts),
		"regions":         len(snapshot.RegionalSummary),
		"trending_issues": len(snapshot.TrendingIssues),
		"time":            time.Now().UTC(),
	})

	if err := s.Store.SaveSnapshot(ctx, snapshot); err != nil {
		if s.Metrics != nil {
			s.Metrics.RunFailures.Inc()
		}
		return summary, models.ExecutiveSnapshot{}, err
	}

	summary.Events = append(summary.Events, map[string]any{
		"type":       "db_save",
		"message":    "Snapshot saved",
		"elapsed_ms": time.Since(start).Milliseconds(),
		"time":       time.Now().UTC(),
	})

	if s.Metrics != nil {
		s.Metrics.RunsTotal.Inc()
		s.Metrics.ObserveSnapshot(
			snapshot.PerformanceMetrics.ProcessingTimeSeconds,
			snapshot.PerformanceMetrics.StoresProcessed,
			snapshot.PerformanceMetrics.ErrorsEncountered,
			alertSeverities(snapshot.Alerts),
		)
	}

	summary.Counts["stores_processed"] = snapshot.PerformanceMetrics.StoresProcessed
	summary.Counts["errors_encountered"] = snapshot.PerformanceMetrics.ErrorsEncountered
	summary.Counts["alerts"] = len(snapshot.Alerts)
	summary.Counts["alerts_by_severity"] = countBySeverity(snapshot.Alerts)
	summary.Counts["regions"] = len(snapshot.RegionalSummary)
	summary.Counts["trending_issues"] = len(snapshot.TrendingIssues)
	return summary, snapshot, nil
}

func alertSeverities(alerts []models.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Severity)
	}
	return out
}

func countBySeverity(alerts []models.Alert) map[string]int {
	counts := map[string]int{}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	return counts
}
