package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Sentiment labels attached to feedback records.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Categories is the fixed set of feedback category labels. The set is not
// enforced at the database level; the submit path validates against it.
var Categories = []string{
	"General Feedback",
	"Feature Request",
	"Bug Report",
	"Performance",
	"UI/UX",
	"Documentation",
	"Customer Service",
	"Other",
}

// ValidCategory reports whether c is one of the known category labels.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Feedback is a submitted feedback record together with its AI-derived
// enrichment fields. ID and CreatedAt are assigned by the store on insert
// and never change; records are never updated or deleted.
type Feedback struct {
	ID              int64     `json:"id"`
	UserName        string    `json:"user_name"`
	Email           string    `json:"email,omitempty"`
	Category        string    `json:"category"`
	Rating          int       `json:"rating"`
	Message         string    `json:"message"`
	Sentiment       string    `json:"sentiment"`
	Summary         string    `json:"summary"`
	AIResponse      string    `json:"ai_response"`
	Recommendations string    `json:"recommendations,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
