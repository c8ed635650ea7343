package aggregate

// SeverityPolicy holds the cut-points between alert severities. Drop-style
// rules (rating_drop, volume_spike) scale by multiples of their base
// threshold; negative_trend scales by how far the negative share sits above
// its threshold.
type SeverityPolicy struct {
	CriticalMultiplier float64
	HighMultiplier     float64

	SentimentCriticalStep float64
	SentimentHighStep     float64
	SentimentMediumStep   float64
}

// Config carries every threshold the engine consumes. It is immutable after
// construction; a zero value is not usable, start from Defaults().
type Config struct {
	RatingDropThreshold        float64
	NegativeSentimentThreshold float64
	VolumeDropThreshold        float64

	MinThemeFrequency    int
	MaxThemesPerStore    int
	MinStoresForInsights int
	TrendAnalysisDays    int
	TopIssuesLimit       int

	NPSPromoterMin  float64
	NPSDetractorMax float64

	Severity SeverityPolicy
}

func Defaults() Config {
	return Config{
		RatingDropThreshold:        0.5,
		NegativeSentimentThreshold: 0.4,
		VolumeDropThreshold:        0.3,
		MinThemeFrequency:          3,
		MaxThemesPerStore:          5,
		MinStoresForInsights:       3,
		TrendAnalysisDays:          30,
		TopIssuesLimit:             5,
		NPSPromoterMin:             4.5,
		NPSDetractorMax:            2.5,
		Severity: SeverityPolicy{
			CriticalMultiplier:    2.0,
			HighMultiplier:        1.5,
			SentimentCriticalStep: 0.3,
			SentimentHighStep:     0.2,
			SentimentMediumStep:   0.1,
		},
	}
}
