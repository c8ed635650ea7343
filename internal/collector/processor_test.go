package collector

import (
	"testing"
	"time"

	"github.com/storepulse/backend/internal/models"
)

func testProcessor() Processor {
	p := New(5)
	p.Clock = func() time.Time { return time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC) }
	return p
}

func TestProcess_PreLabeledThemesAndSentiment(t *testing.T) {
	raw := models.RawStoreData{
		StoreID:     "store_001",
		Rating:      4.2,
		ReviewCount: 4,
		Reviews: []models.RawReview{
			{Text: "Great place", Sentiment: "positive", Themes: []string{"helpful staff"}, Date: "2025-06-10"},
			{Text: "Love it here", Sentiment: "positive", Themes: []string{"helpful staff", "clean store"}, Date: "2025-06-11"},
			{Text: "Too slow", Sentiment: "negative", Themes: []string{"slow service"}, Date: "2025-06-12"},
			{Text: "Fine", Sentiment: "neutral", Date: "2025-06-13"},
		},
	}

	in := testProcessor().Process(raw)
	if in.CollectionDate != "2025-06-16" {
		t.Fatalf("expected collection date 2025-06-16, got %s", in.CollectionDate)
	}
	if len(in.ThemesPositive) != 2 || in.ThemesPositive[0] != "helpful staff" {
		t.Fatalf("expected helpful staff first, got %v", in.ThemesPositive)
	}
	if len(in.ThemesNegative) != 1 || in.ThemesNegative[0] != "slow service" {
		t.Fatalf("expected slow service, got %v", in.ThemesNegative)
	}
	if in.SentimentDistribution.Positive != 50 || in.SentimentDistribution.Negative != 25 || in.SentimentDistribution.Neutral != 25 {
		t.Fatalf("unexpected distribution: %+v", in.SentimentDistribution)
	}
	if in.Metadata.DateRange != "2025-06-10 to 2025-06-13" {
		t.Fatalf("unexpected date range: %s", in.Metadata.DateRange)
	}
}

func TestProcess_KeywordFallback(t *testing.T) {
	raw := models.RawStoreData{
		StoreID:     "store_002",
		Rating:      2.8,
		ReviewCount: 2,
		Reviews: []models.RawReview{
			{Text: "The line at checkout was so long and slow, terrible", Date: "2025-06-01"},
			{Text: "Parking is limited and the staff were rude", Date: "2025-06-02"},
		},
	}

	in := testProcessor().Process(raw)
	if in.SentimentDistribution.Negative != 100 {
		t.Fatalf("keyword scoring should classify both reviews negative, got %+v", in.SentimentDistribution)
	}
	found := map[string]bool{}
	for _, theme := range in.ThemesNegative {
		found[theme] = true
	}
	if !found["long checkout lines"] || !found["limited parking"] {
		t.Fatalf("expected pattern themes, got %v", in.ThemesNegative)
	}
}

func TestProcess_ExcerptPrefersReadableRecent(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	readable := "The staff went out of their way to help me find what I needed today."
	raw := models.RawStoreData{
		StoreID: "store_003",
		Rating:  4.0,
		Reviews: []models.RawReview{
			{Text: string(long), Date: "2025-06-14"},
			{Text: readable, Date: "2025-06-10"},
			{Text: "ok", Date: "2025-06-15"},
		},
	}
	in := testProcessor().Process(raw)
	if in.ReviewExcerpt != readable {
		t.Fatalf("expected readable excerpt, got %q", in.ReviewExcerpt)
	}
}

func TestProcess_NoReviews(t *testing.T) {
	in := testProcessor().Process(models.RawStoreData{StoreID: "store_004", Rating: 3.0})
	if in.SentimentDistribution.Total() != 0 {
		t.Fatalf("expected zero distribution, got %+v", in.SentimentDistribution)
	}
	if in.Metadata.DateRange != "no reviews" {
		t.Fatalf("unexpected date range: %s", in.Metadata.DateRange)
	}
	if in.ReviewExcerpt != "" {
		t.Fatalf("expected empty excerpt, got %q", in.ReviewExcerpt)
	}
}
