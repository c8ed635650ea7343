package aggregate

import (
	"reflect"
	"testing"

	"github.com/storepulse/backend/internal/models"
)

func withNegativeThemes(storeID string, themes ...string) models.StoreInsight {
	in := insight(storeID, 3.5, 20)
	in.ThemesNegative = themes
	return in
}

func TestIdentifyTrendingIssues_ThresholdBoundary(t *testing.T) {
	cfg := Defaults() // MinThemeFrequency 3

	// Theme in exactly 2 records across 2 stores: below frequency, must not trend.
	below := []models.StoreInsight{
		withNegativeThemes("s1", "slow service"),
		withNegativeThemes("s2", "slow service"),
	}
	if got := IdentifyTrendingIssues(below, cfg); len(got) != 0 {
		t.Fatalf("frequency 2 must not trend, got %v", got)
	}

	// Exactly 3 records across 3 stores: must trend.
	at := append(below, withNegativeThemes("s3", "slow service"))
	got := IdentifyTrendingIssues(at, cfg)
	if len(got) != 1 || got[0] != "slow service" {
		t.Fatalf("frequency 3 must trend, got %v", got)
	}
}

func TestIdentifyTrendingIssues_SingleStoreCannotDominate(t *testing.T) {
	// One store repeating a theme still counts as one record and one store.
	insights := []models.StoreInsight{
		withNegativeThemes("s1", "dirty restrooms", "dirty restrooms", "dirty restrooms"),
		withNegativeThemes("s1", "dirty restrooms"),
		withNegativeThemes("s1", "dirty restrooms"),
	}
	if got := IdentifyTrendingIssues(insights, Defaults()); len(got) != 0 {
		t.Fatalf("single-store theme must not trend, got %v", got)
	}
}

func TestIdentifyTrendingIssues_OrderAndCase(t *testing.T) {
	insights := []models.StoreInsight{
		withNegativeThemes("s1", "long checkout lines", "Limited Parking"),
		withNegativeThemes("s2", "limited parking", "long checkout lines"),
		withNegativeThemes("s3", "limited parking", "long checkout lines"),
		withNegativeThemes("s4", "limited parking"),
	}
	got := IdentifyTrendingIssues(insights, Defaults())
	// limited parking: 4 records; long checkout lines: 3. Labels keep first-seen casing.
	want := []string{"Limited Parking", "long checkout lines"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestIdentifyTrendingIssues_FirstSeenTieBreak(t *testing.T) {
	insights := []models.StoreInsight{
		withNegativeThemes("s1", "slow service", "high prices"),
		withNegativeThemes("s2", "slow service", "high prices"),
		withNegativeThemes("s3", "slow service", "high prices"),
	}
	got := IdentifyTrendingIssues(insights, Defaults())
	want := []string{"slow service", "high prices"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected first-seen order %v, got %v", want, got)
	}
}

func TestIdentifyTrendingIssues_TopIssuesLimit(t *testing.T) {
	cfg := Defaults()
	cfg.MinThemeFrequency = 2
	cfg.TopIssuesLimit = 2
	insights := []models.StoreInsight{
		withNegativeThemes("s1", "a", "b", "c"),
		withNegativeThemes("s2", "a", "b", "c"),
	}
	got := IdentifyTrendingIssues(insights, cfg)
	if len(got) != 2 {
		t.Fatalf("expected list capped at 2, got %v", got)
	}
}

func TestIdentifyTrendingIssues_Empty(t *testing.T) {
	if got := IdentifyTrendingIssues(nil, Defaults()); len(got) != 0 {
		t.Fatalf("expected no trending issues, got %v", got)
	}
}
