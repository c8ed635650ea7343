package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/storepulse/backend/internal/models"
)

// HTTPEnricher calls an external enrichment service for smarter alert
// descriptions and trending issues. Requests are time-bounded; any failure is
// reported as ErrUnavailable so the caller falls back.
type HTTPEnricher struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

type enrichRequest struct {
	Insights []models.StoreInsight `json:"insights"`
	Alerts   []models.Alert        `json:"alerts"`
}

func (e HTTPEnricher) Enrich(ctx context.Context, insights []models.StoreInsight, alerts []models.Alert) (*EnrichedResult, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := e.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b, _ := json.Marshal(enrichRequest{Insights: insights, Alerts: alerts})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/enrich", bytes.NewBuffer(b))
	if err != nil {
		return nil, ErrUnavailable
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrUnavailable
	}

	var result EnrichedResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, ErrUnavailable
	}

	// Enriched alerts must stay within the snapshot schema's enums; reject a
	// payload that would corrupt the snapshot.
	for _, a := range result.Alerts {
		if models.SeverityRank(a.Severity) == 0 {
			return nil, ErrUnavailable
		}
		switch a.AlertType {
		case models.AlertTypeRatingDrop, models.AlertTypeNegativeTrend, models.AlertTypeVolumeSpike:
		default:
			return nil, ErrUnavailable
		}
	}
	return &result, nil
}
