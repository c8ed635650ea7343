package ai

import (
	"context"

	"github.com/storepulse/backend/internal/models"
)

// HeuristicEnricher is the no-AI variant, selected at startup when no
// enrichment endpoint is configured. The deterministic descriptions computed
// by the detector are already the fallback output, so it keeps them.
type HeuristicEnricher struct{}

func (HeuristicEnricher) Enrich(ctx context.Context, insights []models.StoreInsight, alerts []models.Alert) (*EnrichedResult, error) {
	return nil, nil
}
