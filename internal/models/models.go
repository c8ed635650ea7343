package models

import "time"

const (
	AlertTypeRatingDrop    = "rating_drop"
	AlertTypeNegativeTrend = "negative_trend"
	// AlertTypeVolumeSpike fires on review volume drops. The enum value is kept
	// as-is for wire compatibility with stored snapshots.
	AlertTypeVolumeSpike = "volume_spike"

	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// DateLayout is the wire format for collection_date and snapshot_date.
const DateLayout = "2006-01-02"

type SentimentDistribution struct {
	Positive int `json:"positive" validate:"gte=0,lte=100"`
	Neutral  int `json:"neutral" validate:"gte=0,lte=100"`
	Negative int `json:"negative" validate:"gte=0,lte=100"`
}

func (d SentimentDistribution) Total() int {
	return d.Positive + d.Neutral + d.Negative
}

// NegativeShare returns the negative fraction in [0,1].
func (d SentimentDistribution) NegativeShare() float64 {
	return float64(d.Negative) / 100.0
}

type InsightMetadata struct {
	ReviewsAnalyzed int    `json:"reviews_analyzed" validate:"gte=0"`
	DateRange       string `json:"date_range"`
	APICalls        int    `json:"api_calls" validate:"gte=0"`
}

// StoreInsight is one store's summary for one collection cycle. Produced by the
// collector, consumed read-only by the aggregation engine.
type StoreInsight struct {
	StoreID               string                `json:"store_id" validate:"required"`
	CollectionDate        string                `json:"collection_date" validate:"required"`
	Rating                float64               `json:"rating" validate:"gte=1,lte=5"`
	ReviewCount           int                   `json:"review_count" validate:"gte=0"`
	ThemesPositive        []string              `json:"themes_positive"`
	ThemesNegative        []string              `json:"themes_negative"`
	ReviewExcerpt         string                `json:"review_excerpt,omitempty"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
	Metadata              InsightMetadata       `json:"metadata"`
}

type NationalKPIs struct {
	AvgRating     float64 `json:"avg_rating"`
	TotalStores   int     `json:"total_stores"`
	NPSEquivalent float64 `json:"nps_equivalent"`
	TotalReviews  int     `json:"total_reviews"`
}

type RegionalSummary struct {
	Region           string  `json:"region"`
	AvgRating        float64 `json:"avg_rating"`
	StoreCount       int     `json:"store_count"`
	TopPositiveTheme string  `json:"top_positive_theme,omitempty"`
	TopConcern       string  `json:"top_concern,omitempty"`
}

type Alert struct {
	StoreID        string   `json:"store_id"`
	AlertType      string   `json:"alert_type"`
	Severity       string   `json:"severity"`
	CurrentRating  float64  `json:"current_rating"`
	PreviousRating *float64 `json:"previous_rating,omitempty"`
	Change         float64  `json:"change"`
	Description    string   `json:"description"`
}

type PerformanceMetrics struct {
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	StoresProcessed       int     `json:"stores_processed"`
	ErrorsEncountered     int     `json:"errors_encountered"`
}

// ExecutiveSnapshot is the aggregate root returned by one aggregation run.
// Immutable once built; downstream consumers only read it.
type ExecutiveSnapshot struct {
	SnapshotDate       string             `json:"snapshot_date"`
	NationalKPIs       NationalKPIs       `json:"national_kpis"`
	RegionalSummary    []RegionalSummary  `json:"regional_summary"`
	Alerts             []Alert            `json:"alerts"`
	TrendingIssues     []string           `json:"trending_issues"`
	DataFreshness      time.Time          `json:"data_freshness"`
	PerformanceMetrics PerformanceMetrics `json:"performance_metrics"`
}

// SeverityRank orders alert severities, critical highest. Unknown values rank
// below low so malformed data never outranks real alerts.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// RawReview is one review as delivered by the collection source.
type RawReview struct {
	Text      string   `json:"text"`
	Rating    int      `json:"rating"`
	Date      string   `json:"date"`
	Sentiment string   `json:"sentiment,omitempty"`
	Themes    []string `json:"themes,omitempty"`
}

// RawStoreData is the unprocessed payload for one store, before the collector
// turns it into a StoreInsight.
type RawStoreData struct {
	StoreID            string      `json:"store_id" validate:"required"`
	Rating             float64     `json:"rating" validate:"gte=1,lte=5"`
	ReviewCount        int         `json:"review_count" validate:"gte=0"`
	Reviews            []RawReview `json:"reviews"`
	CollectionMetadata struct {
		APICalls int `json:"api_calls"`
	} `json:"collection_metadata"`
}

type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	Summary    []byte    `json:"summary"`
}
