package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/storepulse/backend/internal/models"
)

// Baseline is the prior cycle's state for one store, resolved from the
// previous insight batch. Missing baselines disable the delta rules for that
// store; negative_trend still runs on current data alone.
type Baseline struct {
	Rating      float64
	ReviewCount int
}

// BaselinesFrom indexes a prior insight batch by store id. The first record
// wins on duplicates.
func BaselinesFrom(previous []models.StoreInsight) map[string]Baseline {
	baselines := make(map[string]Baseline, len(previous))
	for _, in := range previous {
		if _, ok := baselines[in.StoreID]; ok {
			continue
		}
		baselines[in.StoreID] = Baseline{Rating: in.Rating, ReviewCount: in.ReviewCount}
	}
	return baselines
}

// DetectAlerts evaluates every store independently against the three alert
// rules. A store may trigger zero, one, or several alerts in one cycle. The
// result is ordered by severity, then |change| descending, then store id.
func DetectAlerts(insights []models.StoreInsight, baselines map[string]Baseline, cfg Config) []models.Alert {
	var alerts []models.Alert
	for _, in := range insights {
		baseline, hasBaseline := baselines[in.StoreID]
		if hasBaseline {
			if a, ok := ratingDropAlert(in, baseline, cfg); ok {
				alerts = append(alerts, a)
			}
			if a, ok := volumeDropAlert(in, baseline, cfg); ok {
				alerts = append(alerts, a)
			}
		}
		if a, ok := negativeTrendAlert(in, cfg); ok {
			alerts = append(alerts, a)
		}
	}

	sort.Slice(alerts, func(i, j int) bool {
		ri, rj := models.SeverityRank(alerts[i].Severity), models.SeverityRank(alerts[j].Severity)
		if ri != rj {
			return ri > rj
		}
		ci, cj := math.Abs(alerts[i].Change), math.Abs(alerts[j].Change)
		if ci != cj {
			return ci > cj
		}
		if alerts[i].StoreID != alerts[j].StoreID {
			return alerts[i].StoreID < alerts[j].StoreID
		}
		return alerts[i].AlertType < alerts[j].AlertType
	})
	return alerts
}

func ratingDropAlert(in models.StoreInsight, baseline Baseline, cfg Config) (models.Alert, bool) {
	drop := baseline.Rating - in.Rating
	if drop < cfg.RatingDropThreshold {
		return models.Alert{}, false
	}
	prev := baseline.Rating
	return models.Alert{
		StoreID:        in.StoreID,
		AlertType:      models.AlertTypeRatingDrop,
		Severity:       severityForRatio(drop/cfg.RatingDropThreshold, cfg.Severity),
		CurrentRating:  in.Rating,
		PreviousRating: &prev,
		Change:         round2(in.Rating - baseline.Rating),
		Description:    fmt.Sprintf("Store rating dropped by %.1f stars", drop),
	}, true
}

func negativeTrendAlert(in models.StoreInsight, cfg Config) (models.Alert, bool) {
	share := in.SentimentDistribution.NegativeShare()
	if share <= cfg.NegativeSentimentThreshold {
		return models.Alert{}, false
	}
	over := share - cfg.NegativeSentimentThreshold
	var severity string
	switch p := cfg.Severity; {
	case over >= p.SentimentCriticalStep:
		severity = models.SeverityCritical
	case over >= p.SentimentHighStep:
		severity = models.SeverityHigh
	case over >= p.SentimentMediumStep:
		severity = models.SeverityMedium
	default:
		severity = models.SeverityLow
	}
	return models.Alert{
		StoreID:       in.StoreID,
		AlertType:     models.AlertTypeNegativeTrend,
		Severity:      severity,
		CurrentRating: in.Rating,
		Description:   fmt.Sprintf("Negative sentiment at %d%% of reviews", in.SentimentDistribution.Negative),
	}, true
}

func volumeDropAlert(in models.StoreInsight, baseline Baseline, cfg Config) (models.Alert, bool) {
	if baseline.ReviewCount <= 0 {
		return models.Alert{}, false
	}
	dropRatio := float64(baseline.ReviewCount-in.ReviewCount) / float64(baseline.ReviewCount)
	if dropRatio <= cfg.VolumeDropThreshold {
		return models.Alert{}, false
	}
	prev := baseline.Rating
	return models.Alert{
		StoreID:        in.StoreID,
		AlertType:      models.AlertTypeVolumeSpike,
		Severity:       severityForRatio(dropRatio/cfg.VolumeDropThreshold, cfg.Severity),
		CurrentRating:  in.Rating,
		PreviousRating: &prev,
		Change:         round2(-dropRatio),
		Description:    fmt.Sprintf("Review volume dropped %.0f%% (%d to %d reviews)", dropRatio*100, baseline.ReviewCount, in.ReviewCount),
	}, true
}

// severityForRatio bands a value expressed as a multiple of its base
// threshold. Values below 1.0 never reach this point for drop rules, but the
// low band keeps the policy total.
func severityForRatio(ratio float64, p SeverityPolicy) string {
	switch {
	case ratio >= p.CriticalMultiplier:
		return models.SeverityCritical
	case ratio >= p.HighMultiplier:
		return models.SeverityHigh
	case ratio >= 1.0:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
