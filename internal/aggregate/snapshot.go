package aggregate

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/storepulse/backend/internal/ai"
	"github.com/storepulse/backend/internal/models"
	"github.com/storepulse/backend/internal/region"
)

// Builder turns an insight batch into one Executive Snapshot. Construct with
// NewBuilder; the enricher variant is chosen once at wiring time, never by
// branching inside the pipeline.
type Builder struct {
	Config   Config
	Regions  region.Resolver
	Enricher ai.Enricher
	Logger   zerolog.Logger
	Clock    func() time.Time

	validate *validator.Validate
}

func NewBuilder(cfg Config, regions region.Resolver, enricher ai.Enricher, logger zerolog.Logger) *Builder {
	return &Builder{
		Config:   cfg,
		Regions:  regions,
		Enricher: enricher,
		Logger:   logger,
		Clock:    time.Now,
		validate: validator.New(),
	}
}

// Build aggregates the current batch into a snapshot, using the previous
// cycle's batch as the baseline for delta rules. Malformed records are skipped
// and counted; the run never fails. An empty batch yields a valid empty
// snapshot.
func (b *Builder) Build(ctx context.Context, current, previous []models.StoreInsight) models.ExecutiveSnapshot {
	start := b.Clock()

	valid, skipped := b.validBatch(current)
	if len(valid) < b.Config.MinStoresForInsights {
		b.Logger.Warn().
			Int("valid_stores", len(valid)).
			Int("min_stores", b.Config.MinStoresForInsights).
			Msg("insufficient data for full insights")
	}

	kpis := CalculateNationalKPIs(valid, b.Config)
	regional := BuildRegionalSummaries(valid, b.Regions, b.Config)
	alerts := DetectAlerts(valid, BaselinesFrom(previous), b.Config)
	trending := IdentifyTrendingIssues(valid, b.Config)

	if b.Enricher != nil && len(valid) > 0 {
		enriched, err := b.Enricher.Enrich(ctx, valid, alerts)
		if err != nil {
			b.Logger.Warn().Err(err).Msg("enrichment failed, keeping heuristic results")
		} else if enriched != nil {
			if enriched.Alerts != nil {
				alerts = enriched.Alerts
			}
			if enriched.TrendingIssues != nil {
				trending = enriched.TrendingIssues
			}
		}
	}

	now := b.Clock()
	return models.ExecutiveSnapshot{
		SnapshotDate:    now.Format(models.DateLayout),
		NationalKPIs:    kpis,
		RegionalSummary: regional,
		Alerts:          alerts,
		TrendingIssues:  trending,
		DataFreshness:   now.UTC(),
		PerformanceMetrics: models.PerformanceMetrics{
			ProcessingTimeSeconds: now.Sub(start).Seconds(),
			StoresProcessed:       len(valid),
			ErrorsEncountered:     skipped,
		},
	}
}

// validBatch drops records that violate the schema: field bounds, sentiment
// percentages not summing to 100 (all-zero tolerated for stores with no
// reviews), and duplicate store ids within the batch.
func (b *Builder) validBatch(batch []models.StoreInsight) ([]models.StoreInsight, int) {
	valid := make([]models.StoreInsight, 0, len(batch))
	seen := map[string]bool{}
	skipped := 0
	for _, in := range batch {
		if err := b.validate.Struct(in); err != nil {
			b.Logger.Warn().Str("store_id", in.StoreID).Err(err).Msg("skipping invalid insight record")
			skipped++
			continue
		}
		if total := in.SentimentDistribution.Total(); total != 100 && total != 0 {
			b.Logger.Warn().Str("store_id", in.StoreID).Int("sentiment_total", total).Msg("skipping record with bad sentiment distribution")
			skipped++
			continue
		}
		if seen[in.StoreID] {
			b.Logger.Warn().Str("store_id", in.StoreID).Msg("skipping duplicate store id")
			skipped++
			continue
		}
		seen[in.StoreID] = true
		valid = append(valid, in)
	}
	return valid, skipped
}
