package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kalambet/revu/internal/storage"
)

const minMessageLength = 10

type SubmitRequest struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Category string `json:"category"`
	Rating   int    `json:"rating"`
	Message  string `json:"message"`
}

func handleSubmitFeedback(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		req.UserName = strings.TrimSpace(req.UserName)
		req.Message = strings.TrimSpace(req.Message)
		if req.UserName == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "user_name is required")
			return
		}
		if len(req.Message) < minMessageLength {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message must be at least %d characters", minMessageLength)
			return
		}
		if req.Category == "" {
			req.Category = "General Feedback"
		}
		if !storage.ValidCategory(req.Category) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown category %q", req.Category)
			return
		}
		req.Rating = clampRating(req.Rating)

		enrichment := deps.Enricher.Enrich(r.Context(), req.Message, req.Category)

		f := storage.Feedback{
			UserName:        req.UserName,
			Email:           strings.TrimSpace(req.Email),
			Category:        req.Category,
			Rating:          req.Rating,
			Message:         req.Message,
			Sentiment:       enrichment.Sentiment,
			Summary:         enrichment.Summary,
			AIResponse:      enrichment.Response,
			Recommendations: enrichment.Recommendation,
		}
		id, err := deps.Store.InsertFeedback(f)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save feedback: %v", err)
			return
		}

		saved, err := deps.Store.GetFeedback(id)
		if err != nil {
			slog.Warn("readback after insert failed", "id", id, "error", err)
			f.ID = id
			saved = f
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(saved)
	}
}

func handleListFeedback(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := listFiltered(deps.Store, r)
		if err != nil {
			slog.Warn("feedback listing failed, serving empty set", "error", err)
			records = []storage.Feedback{}
		}

		limit := parseIntParam(r, "limit", 0, 0)
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}
}

// listFiltered picks the most selective store query for the request, then
// applies the remaining filters in memory.
func listFiltered(store *storage.Store, r *http.Request) ([]storage.Feedback, error) {
	q := r.URL.Query()
	category := q.Get("category")
	sentiment := q.Get("sentiment")
	minRating := parseIntParam(r, "min_rating", 1, 5)
	maxRating := parseIntParam(r, "max_rating", 5, 5)

	var (
		records []storage.Feedback
		err     error
	)
	switch {
	case category != "":
		records, err = store.ListFeedbackByCategory(category)
	case sentiment != "":
		records, err = store.ListFeedbackBySentiment(sentiment)
	case minRating > 1 || maxRating < 5:
		records, err = store.ListFeedbackByRatingRange(minRating, maxRating)
	default:
		records, err = store.ListFeedback()
	}
	if err != nil {
		return nil, err
	}

	filtered := records[:0:0]
	for _, f := range records {
		if sentiment != "" && f.Sentiment != sentiment {
			continue
		}
		if category != "" && f.Category != category {
			continue
		}
		if f.Rating < minRating || f.Rating > maxRating {
			continue
		}
		filtered = append(filtered, f)
	}
	if filtered == nil {
		filtered = []storage.Feedback{}
	}
	return filtered, nil
}

func clampRating(rating int) int {
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}
