package aggregate

import (
	"sort"
	"strings"

	"github.com/storepulse/backend/internal/models"
)

// IdentifyTrendingIssues surfaces negative themes recurring across stores.
// A theme trends when it appears in at least MinThemeFrequency records AND in
// at least two distinct stores, so one verbose store cannot dominate. Matching
// is case-insensitive and exact; no fuzzy merging. Output is ordered by
// descending frequency, first-seen order breaking ties, capped at
// TopIssuesLimit.
func IdentifyTrendingIssues(insights []models.StoreInsight, cfg Config) []string {
	counts := map[string]int{}
	stores := map[string]map[string]bool{}
	firstSeen := map[string]int{}
	label := map[string]string{}

	seq := 0
	for _, in := range insights {
		seenInRecord := map[string]bool{}
		for _, theme := range capThemes(in.ThemesNegative, cfg.MaxThemesPerStore) {
			key := strings.ToLower(strings.TrimSpace(theme))
			if key == "" || seenInRecord[key] {
				continue
			}
			seenInRecord[key] = true
			if _, ok := counts[key]; !ok {
				firstSeen[key] = seq
				label[key] = strings.TrimSpace(theme)
			}
			seq++
			counts[key]++
			if stores[key] == nil {
				stores[key] = map[string]bool{}
			}
			stores[key][in.StoreID] = true
		}
	}

	var keys []string
	for key, count := range counts {
		if count >= cfg.MinThemeFrequency && len(stores[key]) >= 2 {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return firstSeen[keys[i]] < firstSeen[keys[j]]
	})

	if cfg.TopIssuesLimit > 0 && len(keys) > cfg.TopIssuesLimit {
		keys = keys[:cfg.TopIssuesLimit]
	}
	trending := make([]string, 0, len(keys))
	for _, key := range keys {
		trending = append(trending, label[key])
	}
	return trending
}
