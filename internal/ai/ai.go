package ai

import (
	"context"
	"errors"

	"github.com/storepulse/backend/internal/models"
)

// ErrUnavailable signals the enrichment provider could not be reached. Callers
// fall back to heuristic results and continue.
var ErrUnavailable = errors.New("enrichment unavailable")

// EnrichedResult carries AI-improved artifacts. A nil slice means "keep the
// heuristic result" for that field.
type EnrichedResult struct {
	Alerts         []models.Alert `json:"alerts"`
	TrendingIssues []string       `json:"trending_issues"`
}

// Enricher is the optional AI collaborator. The snapshot builder must produce
// an identical snapshot (modulo description text) when Enrich returns nil or
// an error.
type Enricher interface {
	Enrich(ctx context.Context, insights []models.StoreInsight, alerts []models.Alert) (*EnrichedResult, error)
}
