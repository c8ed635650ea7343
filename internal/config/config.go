package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env         string        `mapstructure:"ENV"`
	Port        string        `mapstructure:"PORT"`
	DatabaseURL string        `mapstructure:"DATABASE_URL"`
	AdminKey    string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel    string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	// Enrichment collaborator. Empty ENRICH_URL selects the heuristic provider.
	EnrichURL     string        `mapstructure:"ENRICH_URL"`
	EnrichTimeout time.Duration `mapstructure:"ENRICH_TIMEOUT"`

	AssistantBaseURL string `mapstructure:"ASSISTANT_BASE_URL"`
	AssistantModel   string `mapstructure:"ASSISTANT_MODEL"`
	AssistantAPIKey  string `mapstructure:"ASSISTANT_API_KEY"`

	// Empty cron spec disables scheduled aggregation.
	AggregateCron string `mapstructure:"AGGREGATE_CRON"`

	AlertRatingDropThreshold        float64 `mapstructure:"ALERT_RATING_DROP_THRESHOLD"`
	AlertNegativeSentimentThreshold float64 `mapstructure:"ALERT_NEGATIVE_SENTIMENT_THRESHOLD"`
	AlertReviewVolumeDropThreshold  float64 `mapstructure:"ALERT_REVIEW_VOLUME_DROP_THRESHOLD"`
	MinThemeFrequency               int     `mapstructure:"MIN_THEME_FREQUENCY"`
	MaxThemesPerStore               int     `mapstructure:"MAX_THEMES_PER_STORE"`
	MinStoresForInsights            int     `mapstructure:"MIN_STORES_FOR_INSIGHTS"`
	TrendAnalysisDays               int     `mapstructure:"TREND_ANALYSIS_DAYS"`
	TopIssuesLimit                  int     `mapstructure:"TOP_ISSUES_LIMIT"`

	NPSPromoterMin  float64 `mapstructure:"NPS_PROMOTER_MIN"`
	NPSDetractorMax float64 `mapstructure:"NPS_DETRACTOR_MAX"`

	// Severity banding policy. Drop-style rules scale by multiples of their base
	// threshold; negative_trend scales by how far the share sits above its threshold.
	SeverityCriticalMultiplier float64 `mapstructure:"SEVERITY_CRITICAL_MULTIPLIER"`
	SeverityHighMultiplier     float64 `mapstructure:"SEVERITY_HIGH_MULTIPLIER"`
	SentimentCriticalStep      float64 `mapstructure:"SENTIMENT_CRITICAL_STEP"`
	SentimentHighStep          float64 `mapstructure:"SENTIMENT_HIGH_STEP"`
	SentimentMediumStep        float64 `mapstructure:"SENTIMENT_MEDIUM_STEP"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("ENRICH_TIMEOUT", "10s")

	v.SetDefault("ALERT_RATING_DROP_THRESHOLD", 0.5)
	v.SetDefault("ALERT_NEGATIVE_SENTIMENT_THRESHOLD", 0.4)
	v.SetDefault("ALERT_REVIEW_VOLUME_DROP_THRESHOLD", 0.3)
	v.SetDefault("MIN_THEME_FREQUENCY", 3)
	v.SetDefault("MAX_THEMES_PER_STORE", 5)
	v.SetDefault("MIN_STORES_FOR_INSIGHTS", 3)
	v.SetDefault("TREND_ANALYSIS_DAYS", 30)
	v.SetDefault("TOP_ISSUES_LIMIT", 5)

	v.SetDefault("NPS_PROMOTER_MIN", 4.5)
	v.SetDefault("NPS_DETRACTOR_MAX", 2.5)

	v.SetDefault("SEVERITY_CRITICAL_MULTIPLIER", 2.0)
	v.SetDefault("SEVERITY_HIGH_MULTIPLIER", 1.5)
	v.SetDefault("SENTIMENT_CRITICAL_STEP", 0.3)
	v.SetDefault("SENTIMENT_HIGH_STEP", 0.2)
	v.SetDefault("SENTIMENT_MEDIUM_STEP", 0.1)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
