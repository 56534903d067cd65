package api

import (
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kalambet/revu/internal/analytics"
	"github.com/kalambet/revu/internal/storage"
)

type StatsResponse struct {
	Days               int                    `json:"days"`
	Summary            analytics.Stats        `json:"summary"`
	SatisfactionRate   float64                `json:"satisfaction_rate"`
	RatingDistribution map[int]int            `json:"rating_distribution"`
	Sentiments         []analytics.LabelCount `json:"sentiments"`
	Categories         []analytics.LabelCount `json:"categories"`
	AvgRatingByCat     map[string]float64     `json:"avg_rating_by_category"`
}

func handleStats(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := parseIntParam(r, "days", 30, 365)
		if days <= 0 {
			days = 30
		}

		records, err := deps.Store.ListFeedback()
		if err != nil {
			slog.Warn("stats listing failed, serving empty stats", "error", err)
			records = []storage.Feedback{}
		}
		records = analytics.FilterByDateRange(records, days)

		resp := StatsResponse{
			Days:               days,
			Summary:            analytics.Compute(records),
			SatisfactionRate:   analytics.SatisfactionRate(records),
			RatingDistribution: analytics.RatingDistribution(records),
			Sentiments:         analytics.SentimentBreakdown(records),
			Categories:         analytics.CategoryBreakdown(records),
			AvgRatingByCat:     analytics.AverageRatingByCategory(records),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleExport(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := listFiltered(deps.Store, r)
		if err != nil {
			slog.Warn("export listing failed, serving empty export", "error", err)
			records = []storage.Feedback{}
		}

		switch format := r.URL.Query().Get("format"); format {
		case "", "json":
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Disposition", `attachment; filename="feedback.json"`)
			json.NewEncoder(w).Encode(records)
		case "csv":
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="feedback.csv"`)
			writeCSV(w, records)
		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unsupported export format %q", format)
		}
	}
}

func writeCSV(w http.ResponseWriter, records []storage.Feedback) {
	cw := csv.NewWriter(w)
	cw.Write([]string{
		"id", "user_name", "email", "category", "rating", "message",
		"sentiment", "summary", "ai_response", "recommendations", "created_at",
	})
	for _, f := range records {
		cw.Write([]string{
			strconv.FormatInt(f.ID, 10),
			f.UserName,
			f.Email,
			f.Category,
			strconv.Itoa(f.Rating),
			f.Message,
			f.Sentiment,
			f.Summary,
			f.AIResponse,
			f.Recommendations,
			f.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Warn("csv export write failed", "error", err)
	}
}
