// Package analytics computes aggregate views over stored feedback. All
// functions are pure: they take a snapshot slice and never touch the
// database, so callers decide how fresh the data needs to be.
package analytics

import (
	"sort"
	"time"

	"github.com/kalambet/revu/internal/storage"
)

// Stats is the headline summary shown on dashboards and in the CLI.
type Stats struct {
	Total         int     `json:"total"`
	AvgRating     float64 `json:"avg_rating"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	NeutralCount  int     `json:"neutral_count"`
}

// LabelCount pairs a grouping label with its record count. Breakdown
// functions return these sorted by count descending, label ascending on
// ties, so output order is stable.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Compute returns the headline stats for a snapshot. A nil or empty
// snapshot yields the zero value, not an error.
func Compute(records []storage.Feedback) Stats {
	s := Stats{Total: len(records)}
	if len(records) == 0 {
		return s
	}

	sum := 0
	for _, r := range records {
		sum += r.Rating
		switch r.Sentiment {
		case storage.SentimentPositive:
			s.PositiveCount++
		case storage.SentimentNegative:
			s.NegativeCount++
		default:
			s.NeutralCount++
		}
	}
	s.AvgRating = float64(sum) / float64(len(records))
	return s
}

// RatingDistribution counts records per star rating. Every key 1 through 5
// is present even when its count is zero, so chart axes stay fixed.
func RatingDistribution(records []storage.Feedback) map[int]int {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range records {
		if r.Rating >= 1 && r.Rating <= 5 {
			dist[r.Rating]++
		}
	}
	return dist
}

// SentimentBreakdown counts records per sentiment label.
func SentimentBreakdown(records []storage.Feedback) []LabelCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Sentiment]++
	}
	return sortedCounts(counts)
}

// CategoryBreakdown counts records per category.
func CategoryBreakdown(records []storage.Feedback) []LabelCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Category]++
	}
	return sortedCounts(counts)
}

// TopCategories returns at most n categories by record count.
func TopCategories(records []storage.Feedback, n int) []LabelCount {
	all := CategoryBreakdown(records)
	if n < 0 {
		n = 0
	}
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// AverageRatingByCategory maps each category to its mean rating.
func AverageRatingByCategory(records []storage.Feedback) map[string]float64 {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range records {
		sums[r.Category] += r.Rating
		counts[r.Category]++
	}

	avgs := make(map[string]float64, len(sums))
	for category, sum := range sums {
		avgs[category] = float64(sum) / float64(counts[category])
	}
	return avgs
}

// SentimentByRating cross-tabulates sentiment counts per star rating. All
// five rating rows are present, each with all three sentiment columns.
func SentimentByRating(records []storage.Feedback) map[int]map[string]int {
	table := make(map[int]map[string]int, 5)
	for rating := 1; rating <= 5; rating++ {
		table[rating] = map[string]int{
			storage.SentimentPositive: 0,
			storage.SentimentNegative: 0,
			storage.SentimentNeutral:  0,
		}
	}
	for _, r := range records {
		row, ok := table[r.Rating]
		if !ok {
			continue
		}
		switch r.Sentiment {
		case storage.SentimentPositive, storage.SentimentNegative:
			row[r.Sentiment]++
		default:
			row[storage.SentimentNeutral]++
		}
	}
	return table
}

// SatisfactionRate is the percentage of records rated 4 or 5 stars.
// Returns 0 for an empty snapshot.
func SatisfactionRate(records []storage.Feedback) float64 {
	if len(records) == 0 {
		return 0
	}
	satisfied := 0
	for _, r := range records {
		if r.Rating >= 4 {
			satisfied++
		}
	}
	return float64(satisfied) / float64(len(records)) * 100
}

// FilterByDateRange keeps records created within the last days days.
// Non-positive days defaults to 30.
func FilterByDateRange(records []storage.Feedback, days int) []storage.Feedback {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	filtered := []storage.Feedback{}
	for _, r := range records {
		if !r.CreatedAt.Before(cutoff) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Recent returns at most n records from the head of the snapshot. Callers
// pass store listings, which are already newest first.
func Recent(records []storage.Feedback, n int) []storage.Feedback {
	if n < 0 {
		n = 0
	}
	if len(records) > n {
		records = records[:n]
	}
	return records
}

func sortedCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
