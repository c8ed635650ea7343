package service

import (
	"testing"

	"github.com/storepulse/backend/internal/models"
)

func TestCountBySeverity(t *testing.T) {
	alerts := []models.Alert{
		{StoreID: "s1", Severity: models.SeverityCritical},
		{StoreID: "s2", Severity: models.SeverityCritical},
		{StoreID: "s3", Severity: models.SeverityLow},
	}
	counts := countBySeverity(alerts)
	if counts[models.SeverityCritical] != 2 || counts[models.SeverityLow] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestAlertSeverities(t *testing.T) {
	alerts := []models.Alert{
		{Severity: models.SeverityHigh},
		{Severity: models.SeverityMedium},
	}
	got := alertSeverities(alerts)
	if len(got) != 2 || got[0] != models.SeverityHigh || got[1] != models.SeverityMedium {
		t.Fatalf("unexpected severities: %v", got)
	}
}
