package collector

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/storepulse/backend/internal/models"
)

// themePattern maps a pair of co-occurring keyword groups to a theme label.
type themePattern struct {
	first  []string
	second []string
	label  string
}

var positivePatterns = []themePattern{
	{[]string{"staff", "employee", "worker"}, []string{"helpful", "friendly", "nice", "great"}, "helpful staff"},
	{[]string{"clean", "tidy", "neat"}, []string{"store", "location", "place"}, "clean store"},
	{[]string{"fast", "quick", "speedy"}, []string{"service", "checkout"}, "fast service"},
	{[]string{"good", "great", "excellent"}, []string{"selection", "variety"}, "good selection"},
	{[]string{"convenient", "easy"}, []string{"location", "parking"}, "convenient location"},
}

var negativePatterns = []themePattern{
	{[]string{"long", "slow"}, []string{"line", "wait", "checkout"}, "long checkout lines"},
	{[]string{"parking"}, []string{"limited", "hard", "difficult", "full"}, "limited parking"},
	{[]string{"crowded", "busy", "packed"}, []string{"aisle", "store"}, "crowded aisles"},
	{[]string{"slow", "poor"}, []string{"service", "staff"}, "slow service"},
	{[]string{"out of stock", "empty", "sold out"}, nil, "out of stock items"},
	{[]string{"expensive", "pricey"}, []string{"price", "cost"}, "high prices"},
}

var positiveKeywords = []string{
	"helpful", "friendly", "clean", "fast", "good", "great", "excellent",
	"recommend", "love", "amazing", "best",
}

var negativeKeywords = []string{
	"slow", "rude", "dirty", "expensive", "crowded", "wait", "poor", "bad",
	"terrible", "worst", "disappointing", "awful",
}

// Processor converts raw store review payloads into insight records. It is the
// deterministic counterpart of the AI extraction path: keyword matching only,
// no model calls.
type Processor struct {
	MaxThemes int
	Clock     func() time.Time
}

func New(maxThemes int) Processor {
	return Processor{MaxThemes: maxThemes, Clock: time.Now}
}

func (p Processor) Process(raw models.RawStoreData) models.StoreInsight {
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}

	var positive, negative []models.RawReview
	for _, r := range raw.Reviews {
		switch p.reviewSentiment(r) {
		case "positive":
			positive = append(positive, r)
		case "negative":
			negative = append(negative, r)
		}
	}

	return models.StoreInsight{
		StoreID:               raw.StoreID,
		CollectionDate:        clock().Format(models.DateLayout),
		Rating:                raw.Rating,
		ReviewCount:           raw.ReviewCount,
		ThemesPositive:        p.extractThemes(positive, positivePatterns),
		ThemesNegative:        p.extractThemes(negative, negativePatterns),
		ReviewExcerpt:         pickExcerpt(raw.Reviews),
		SentimentDistribution: p.sentimentDistribution(raw.Reviews),
		Metadata: models.InsightMetadata{
			ReviewsAnalyzed: len(raw.Reviews),
			DateRange:       dateRange(raw.Reviews),
			APICalls:        raw.CollectionMetadata.APICalls,
		},
	}
}

// reviewSentiment prefers the source label and falls back to keyword scoring.
func (p Processor) reviewSentiment(r models.RawReview) string {
	if r.Sentiment != "" {
		return r.Sentiment
	}
	text := strings.ToLower(r.Text)
	score := 0
	for _, kw := range positiveKeywords {
		if strings.Contains(text, kw) {
			score++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(text, kw) {
			score--
		}
	}
	switch {
	case score > 0:
		return "positive"
	case score < 0:
		return "negative"
	default:
		return "neutral"
	}
}

// extractThemes counts pre-labeled themes when the source provides them,
// otherwise matches keyword patterns against the combined review text. Output
// is ordered by frequency, first-seen breaking ties, capped at MaxThemes.
func (p Processor) extractThemes(reviews []models.RawReview, patterns []themePattern) []string {
	counts := map[string]int{}
	order := map[string]int{}
	next := 0

	for _, r := range reviews {
		for _, theme := range r.Themes {
			theme = strings.TrimSpace(theme)
			if theme == "" {
				continue
			}
			if _, ok := counts[theme]; !ok {
				order[theme] = next
				next++
			}
			counts[theme]++
		}
	}

	if len(counts) == 0 {
		var all strings.Builder
		for _, r := range reviews {
			all.WriteString(strings.ToLower(r.Text))
			all.WriteByte(' ')
		}
		text := all.String()
		for _, pat := range patterns {
			if matchesPattern(text, pat) {
				if _, ok := counts[pat.label]; !ok {
					order[pat.label] = next
					next++
				}
				counts[pat.label]++
			}
		}
	}

	themes := make([]string, 0, len(counts))
	for theme := range counts {
		themes = append(themes, theme)
	}
	sort.Slice(themes, func(i, j int) bool {
		if counts[themes[i]] != counts[themes[j]] {
			return counts[themes[i]] > counts[themes[j]]
		}
		return order[themes[i]] < order[themes[j]]
	})
	if p.MaxThemes > 0 && len(themes) > p.MaxThemes {
		themes = themes[:p.MaxThemes]
	}
	return themes
}

func matchesPattern(text string, pat themePattern) bool {
	if !containsAny(text, pat.first) {
		return false
	}
	return pat.second == nil || containsAny(text, pat.second)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// sentimentDistribution returns integer percentages summing to 100, neutral
// absorbing the rounding remainder. No reviews yields all zeros.
func (p Processor) sentimentDistribution(reviews []models.RawReview) models.SentimentDistribution {
	if len(reviews) == 0 {
		return models.SentimentDistribution{}
	}
	var pos, neg int
	for _, r := range reviews {
		switch p.reviewSentiment(r) {
		case "positive":
			pos++
		case "negative":
			neg++
		}
	}
	total := len(reviews)
	posPct := pos * 100 / total
	negPct := neg * 100 / total
	return models.SentimentDistribution{
		Positive: posPct,
		Negative: negPct,
		Neutral:  100 - posPct - negPct,
	}
}

// pickExcerpt picks the newest review of readable length (50-200 chars),
// falling back to any review with text.
func pickExcerpt(reviews []models.RawReview) string {
	var candidates []models.RawReview
	for _, r := range reviews {
		if n := len(r.Text); n >= 50 && n <= 200 {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		for _, r := range reviews {
			if r.Text != "" {
				candidates = append(candidates, r)
			}
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Date > candidates[j].Date
	})
	return candidates[0].Text
}

func dateRange(reviews []models.RawReview) string {
	var dates []string
	for _, r := range reviews {
		if r.Date != "" {
			dates = append(dates, r.Date)
		}
	}
	if len(dates) == 0 {
		return "no reviews"
	}
	sort.Strings(dates)
	if len(dates) == 1 {
		return dates[0]
	}
	return fmt.Sprintf("%s to %s", dates[0], dates[len(dates)-1])
}
