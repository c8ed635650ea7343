package aggregate

import (
	"math"
	"sort"
	"strings"

	"github.com/storepulse/backend/internal/models"
	"github.com/storepulse/backend/internal/region"
)

// CalculateNationalKPIs reduces a batch of insights into national statistics.
// An empty batch yields the defined empty state rather than an error.
func CalculateNationalKPIs(insights []models.StoreInsight, cfg Config) models.NationalKPIs {
	if len(insights) == 0 {
		return models.NationalKPIs{}
	}

	var ratingSum float64
	var totalReviews int
	promoters, detractors := 0, 0
	for _, in := range insights {
		ratingSum += in.Rating
		totalReviews += in.ReviewCount
		switch {
		case in.Rating >= cfg.NPSPromoterMin:
			promoters++
		case in.Rating <= cfg.NPSDetractorMax:
			detractors++
		}
	}

	n := float64(len(insights))
	nps := (float64(promoters) - float64(detractors)) / n * 100

	return models.NationalKPIs{
		AvgRating:     round2(ratingSum / n),
		TotalStores:   len(insights),
		NPSEquivalent: round1(nps),
		TotalReviews:  totalReviews,
	}
}

// BuildRegionalSummaries groups insights by resolved region and computes
// per-region statistics. Regions with zero stores are never emitted. Output is
// ordered by descending average rating, region name breaking ties.
func BuildRegionalSummaries(insights []models.StoreInsight, resolver region.Resolver, cfg Config) []models.RegionalSummary {
	grouped := map[string][]models.StoreInsight{}
	for _, in := range insights {
		r := resolver.RegionOf(in.StoreID)
		grouped[r] = append(grouped[r], in)
	}

	summaries := make([]models.RegionalSummary, 0, len(grouped))
	for name, group := range grouped {
		var ratingSum float64
		var positive, negative []string
		for _, in := range group {
			ratingSum += in.Rating
			positive = append(positive, capThemes(in.ThemesPositive, cfg.MaxThemesPerStore)...)
			negative = append(negative, capThemes(in.ThemesNegative, cfg.MaxThemesPerStore)...)
		}
		summaries = append(summaries, models.RegionalSummary{
			Region:           name,
			AvgRating:        round2(ratingSum / float64(len(group))),
			StoreCount:       len(group),
			TopPositiveTheme: topTheme(positive),
			TopConcern:       topTheme(negative),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].AvgRating == summaries[j].AvgRating {
			return summaries[i].Region < summaries[j].Region
		}
		return summaries[i].AvgRating > summaries[j].AvgRating
	})
	return summaries
}

// topTheme returns the most frequent theme, case-insensitive, ties broken by
// first occurrence order. Empty input yields "".
func topTheme(themes []string) string {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	label := map[string]string{}
	for i, theme := range themes {
		key := strings.ToLower(strings.TrimSpace(theme))
		if key == "" {
			continue
		}
		if _, ok := counts[key]; !ok {
			firstSeen[key] = i
			label[key] = strings.TrimSpace(theme)
		}
		counts[key]++
	}

	best := ""
	for key := range counts {
		if best == "" {
			best = key
			continue
		}
		if counts[key] > counts[best] || (counts[key] == counts[best] && firstSeen[key] < firstSeen[best]) {
			best = key
		}
	}
	if best == "" {
		return ""
	}
	return label[best]
}

func capThemes(themes []string, max int) []string {
	if max > 0 && len(themes) > max {
		return themes[:max]
	}
	return themes
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
