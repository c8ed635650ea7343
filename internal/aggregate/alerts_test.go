package aggregate

import (
	"math"
	"testing"

	"github.com/storepulse/backend/internal/models"
)

func withSentiment(in models.StoreInsight, pos, neu, neg int) models.StoreInsight {
	in.SentimentDistribution = models.SentimentDistribution{Positive: pos, Neutral: neu, Negative: neg}
	return in
}

func TestDetectAlerts_RatingDropScenario(t *testing.T) {
	current := []models.StoreInsight{
		insight("store_001", 4.8, 100),
		insight("store_002", 2.0, 100),
		insight("store_003", 4.5, 100),
	}
	baselines := map[string]Baseline{
		"store_001": {Rating: 4.9, ReviewCount: 100},
		"store_002": {Rating: 3.0, ReviewCount: 100},
		"store_003": {Rating: 4.4, ReviewCount: 100},
	}

	alerts := DetectAlerts(current, baselines, Defaults())

	var drops []models.Alert
	for _, a := range alerts {
		if a.AlertType == models.AlertTypeRatingDrop {
			drops = append(drops, a)
		}
	}
	if len(drops) != 1 {
		t.Fatalf("expected exactly one rating_drop alert, got %d (%+v)", len(drops), drops)
	}
	a := drops[0]
	if a.StoreID != "store_002" {
		t.Fatalf("expected alert for store_002, got %s", a.StoreID)
	}
	if a.Change != -1.0 {
		t.Fatalf("expected change -1.0, got %v", a.Change)
	}
	if a.PreviousRating == nil || *a.PreviousRating != 3.0 {
		t.Fatalf("expected previous rating 3.0, got %v", a.PreviousRating)
	}
	// Drop of 1.0 is 2x the 0.5 threshold.
	if a.Severity != models.SeverityCritical {
		t.Fatalf("expected critical severity, got %s", a.Severity)
	}
}

func TestDetectAlerts_RatingDropBanding(t *testing.T) {
	cases := []struct {
		drop     float64
		severity string
	}{
		{1.0, models.SeverityCritical}, // 2.0x
		{0.9, models.SeverityHigh},     // 1.8x
		{0.8, models.SeverityHigh},     // 1.6x
		{0.6, models.SeverityMedium},   // 1.2x
		{0.5, models.SeverityMedium},   // 1.0x
	}
	for _, tc := range cases {
		current := []models.StoreInsight{insight("s1", 4.9-tc.drop, 100)}
		baselines := map[string]Baseline{"s1": {Rating: 4.9, ReviewCount: 100}}
		alerts := DetectAlerts(current, baselines, Defaults())
		if len(alerts) != 1 {
			t.Fatalf("drop %.2f: expected 1 alert, got %d", tc.drop, len(alerts))
		}
		if alerts[0].Severity != tc.severity {
			t.Fatalf("drop %.2f: expected %s, got %s", tc.drop, tc.severity, alerts[0].Severity)
		}
	}
}

func TestDetectAlerts_BelowThresholdNoAlert(t *testing.T) {
	current := []models.StoreInsight{insight("s1", 4.5, 100)}
	baselines := map[string]Baseline{"s1": {Rating: 4.9, ReviewCount: 100}}
	alerts := DetectAlerts(current, baselines, Defaults())
	if len(alerts) != 0 {
		t.Fatalf("drop of 0.4 is below threshold, expected no alerts, got %+v", alerts)
	}
}

func TestDetectAlerts_SeverityMonotonicity(t *testing.T) {
	// Identical prior rating, r1 < r2: the larger drop must never rank lower.
	current := []models.StoreInsight{
		insight("s1", 3.0, 100), // drop 1.5
		insight("s2", 3.8, 100), // drop 0.7
	}
	baselines := map[string]Baseline{
		"s1": {Rating: 4.5, ReviewCount: 100},
		"s2": {Rating: 4.5, ReviewCount: 100},
	}
	alerts := DetectAlerts(current, baselines, Defaults())
	bySeverity := map[string]string{}
	for _, a := range alerts {
		bySeverity[a.StoreID] = a.Severity
	}
	if models.SeverityRank(bySeverity["s1"]) < models.SeverityRank(bySeverity["s2"]) {
		t.Fatalf("larger drop got lower severity: s1=%s s2=%s", bySeverity["s1"], bySeverity["s2"])
	}
}

func TestDetectAlerts_NegativeTrendBanding(t *testing.T) {
	cases := []struct {
		negative int
		severity string
	}{
		{75, models.SeverityCritical}, // 0.35 over
		{65, models.SeverityHigh},     // 0.25 over
		{55, models.SeverityMedium},   // 0.15 over
		{45, models.SeverityLow},      // 0.05 over
	}
	for _, tc := range cases {
		in := withSentiment(insight("s1", 3.2, 50), 100-tc.negative, 0, tc.negative)
		alerts := DetectAlerts([]models.StoreInsight{in}, nil, Defaults())
		if len(alerts) != 1 {
			t.Fatalf("negative %d%%: expected 1 alert, got %d", tc.negative, len(alerts))
		}
		if alerts[0].AlertType != models.AlertTypeNegativeTrend {
			t.Fatalf("expected negative_trend, got %s", alerts[0].AlertType)
		}
		if alerts[0].Severity != tc.severity {
			t.Fatalf("negative %d%%: expected %s, got %s", tc.negative, tc.severity, alerts[0].Severity)
		}
	}
}

func TestDetectAlerts_NegativeTrendAtThresholdNoAlert(t *testing.T) {
	in := withSentiment(insight("s1", 3.2, 50), 60, 0, 40)
	alerts := DetectAlerts([]models.StoreInsight{in}, nil, Defaults())
	if len(alerts) != 0 {
		t.Fatalf("exactly at threshold should not alert, got %+v", alerts)
	}
}

func TestDetectAlerts_VolumeDropKeepsSpikeEnum(t *testing.T) {
	current := []models.StoreInsight{insight("s1", 4.0, 40)}
	baselines := map[string]Baseline{"s1": {Rating: 4.0, ReviewCount: 100}}
	alerts := DetectAlerts(current, baselines, Defaults())
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.AlertType != "volume_spike" {
		t.Fatalf("wire enum must stay volume_spike, got %s", a.AlertType)
	}
	// 60% drop is 2x the 0.3 threshold.
	if a.Severity != models.SeverityCritical {
		t.Fatalf("expected critical, got %s", a.Severity)
	}
	if a.Change != -0.6 {
		t.Fatalf("expected change -0.6, got %v", a.Change)
	}
}

func TestDetectAlerts_NoBaselineSkipsDeltaRules(t *testing.T) {
	in := withSentiment(insight("s1", 1.5, 10), 20, 10, 70)
	alerts := DetectAlerts([]models.StoreInsight{in}, nil, Defaults())
	if len(alerts) != 1 {
		t.Fatalf("expected only the negative_trend alert, got %+v", alerts)
	}
	if alerts[0].AlertType != models.AlertTypeNegativeTrend {
		t.Fatalf("expected negative_trend, got %s", alerts[0].AlertType)
	}
}

func TestDetectAlerts_MultipleAlertsPerStore(t *testing.T) {
	in := withSentiment(insight("s1", 3.0, 30), 20, 10, 70)
	baselines := map[string]Baseline{"s1": {Rating: 4.5, ReviewCount: 100}}
	alerts := DetectAlerts([]models.StoreInsight{in}, baselines, Defaults())
	types := map[string]bool{}
	for _, a := range alerts {
		types[a.AlertType] = true
	}
	if len(alerts) != 3 || !types[models.AlertTypeRatingDrop] || !types[models.AlertTypeVolumeSpike] || !types[models.AlertTypeNegativeTrend] {
		t.Fatalf("expected all three rules to fire, got %+v", alerts)
	}
}

func TestDetectAlerts_Ordering(t *testing.T) {
	current := []models.StoreInsight{
		insight("b", 3.9, 100), // drop 1.0 -> critical
		insight("a", 2.9, 100), // drop 2.0 -> critical, larger |change|
		insight("c", 4.2, 100), // drop 0.6 -> medium
	}
	baselines := map[string]Baseline{
		"a": {Rating: 4.9, ReviewCount: 100},
		"b": {Rating: 4.9, ReviewCount: 100},
		"c": {Rating: 4.8, ReviewCount: 100},
	}
	alerts := DetectAlerts(current, baselines, Defaults())
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	if alerts[0].StoreID != "a" || alerts[1].StoreID != "b" || alerts[2].StoreID != "c" {
		t.Fatalf("unexpected order: %s %s %s", alerts[0].StoreID, alerts[1].StoreID, alerts[2].StoreID)
	}
	for i := 1; i < len(alerts); i++ {
		prev, cur := alerts[i-1], alerts[i]
		if models.SeverityRank(prev.Severity) < models.SeverityRank(cur.Severity) {
			t.Fatalf("severity order violated at %d", i)
		}
		if models.SeverityRank(prev.Severity) == models.SeverityRank(cur.Severity) &&
			math.Abs(prev.Change) < math.Abs(cur.Change) {
			t.Fatalf("change magnitude order violated at %d", i)
		}
	}
}
