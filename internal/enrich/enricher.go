// Package enrich derives sentiment, summary, response, and recommendation
// text for feedback messages via a chat-completion gateway. Every operation
// degrades to a deterministic fallback on gateway failure — a submission
// never fails because enrichment did.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/kalambet/revu/internal/storage"
)

// Completer is the outbound gateway contract (satisfied by *perplexity.Client).
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

// Per-operation temperatures and token budgets. The token budgets bound the
// model output; the truncation limits below are the independent storage
// policy applied after sanitation.
const (
	sentimentTemperature = 0.1
	sentimentMaxTokens   = 10
	sentimentMinInput    = 3

	responseTemperature = 0.5
	responseMaxTokens   = 150
	responseMaxLen      = 200

	summaryTemperature = 0.2
	summaryMaxTokens   = 50
	summaryMaxLen      = 100
	summaryFallbackLen = 50

	recommendationTemperature = 0.4
	recommendationMaxTokens   = 80
	recommendationMaxLen      = 150

	// Minimum message length for the three generation operations; shorter
	// input skips the network call entirely.
	generationMinInput = 5
)

// Enrichment is the set of AI-derived fields attached to a feedback record.
type Enrichment struct {
	Sentiment      string
	Summary        string
	Response       string
	Recommendation string
}

// Enricher composes the gateway into the four derived operations.
type Enricher struct {
	gw Completer
}

// New creates an Enricher backed by the given gateway.
func New(gw Completer) *Enricher {
	return &Enricher{gw: gw}
}

// Enrich runs the full pipeline for one submission: sentiment is resolved
// once and threaded into the dependent operations, so a submission costs at
// most four sequential gateway calls.
func (e *Enricher) Enrich(ctx context.Context, message, category string) Enrichment {
	sentiment := e.ClassifySentiment(ctx, message)
	return Enrichment{
		Sentiment:      sentiment,
		Summary:        e.GenerateSummary(ctx, message),
		Response:       e.GenerateResponse(ctx, message, category, sentiment),
		Recommendation: e.GenerateRecommendation(ctx, message, category, sentiment),
	}
}

// ClassifySentiment returns positive, negative, or neutral for the message.
// Messages shorter than three characters skip the gateway; any gateway
// failure or unrecognized answer yields neutral.
func (e *Enricher) ClassifySentiment(ctx context.Context, message string) string {
	if utf8.RuneCountInString(message) < sentimentMinInput {
		return storage.SentimentNeutral
	}

	raw, err := e.gw.Complete(ctx, "", sentimentPrompt(message), sentimentTemperature, sentimentMaxTokens)
	if err != nil {
		slog.Warn("sentiment classification failed, defaulting to neutral", "error", err)
		return storage.SentimentNeutral
	}

	return parseSentimentLabel(raw)
}

// parseSentimentLabel maps raw model output to one of the three labels.
// The model is asked for a single word but may echo punctuation or casing.
func parseSentimentLabel(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.NewReplacer(".", "", "!", "", ",", "").Replace(cleaned)

	switch {
	case strings.Contains(cleaned, storage.SentimentPositive):
		return storage.SentimentPositive
	case strings.Contains(cleaned, storage.SentimentNegative):
		return storage.SentimentNegative
	}
	return storage.SentimentNeutral
}

// GenerateResponse produces a short customer-facing reply keyed to the
// message's tone. Pass sentiment explicitly when already known; an empty
// sentiment triggers a single internal classification first.
func (e *Enricher) GenerateResponse(ctx context.Context, message, category, sentiment string) string {
	if utf8.RuneCountInString(message) < generationMinInput {
		return "Thank you for your feedback!"
	}
	if sentiment == "" {
		sentiment = e.ClassifySentiment(ctx, message)
	}

	raw, err := e.gw.Complete(ctx, "", responsePrompt(message, category, sentiment), responseTemperature, responseMaxTokens)
	if err != nil {
		slog.Warn("response generation failed, using templated fallback", "error", err)
		return fmt.Sprintf("Thank you for your %s feedback about %s. We appreciate your input!", sentiment, category)
	}

	content := sanitize(raw, "Response:")
	if content == "" {
		return "Thank you for your feedback!"
	}
	return truncate(content, responseMaxLen)
}

// GenerateSummary produces a one-sentence summary of the message. On failure
// the leading characters of the original message stand in.
func (e *Enricher) GenerateSummary(ctx context.Context, message string) string {
	if utf8.RuneCountInString(message) < generationMinInput {
		return "Short feedback received"
	}

	raw, err := e.gw.Complete(ctx, "", summaryPrompt(message), summaryTemperature, summaryMaxTokens)
	if err != nil {
		slog.Warn("summary generation failed, truncating original message", "error", err)
		if utf8.RuneCountInString(message) > summaryFallbackLen {
			return truncate(message, summaryFallbackLen) + "..."
		}
		return message
	}

	content := sanitize(raw, "Summary:")
	if content == "" {
		return truncate(message, summaryFallbackLen)
	}
	return truncate(content, summaryMaxLen)
}

// GenerateRecommendation produces one actionable recommendation for the
// team, framed by sentiment. Pass sentiment explicitly when already known;
// an empty sentiment triggers a single internal classification first.
func (e *Enricher) GenerateRecommendation(ctx context.Context, message, category, sentiment string) string {
	if utf8.RuneCountInString(message) < generationMinInput {
		return "Monitor feedback quality"
	}
	if sentiment == "" {
		sentiment = e.ClassifySentiment(ctx, message)
	}

	raw, err := e.gw.Complete(ctx, "", recommendationPrompt(message, category, sentiment), recommendationTemperature, recommendationMaxTokens)
	if err != nil {
		slog.Warn("recommendation generation failed, using canned fallback", "error", err, "sentiment", sentiment)
		switch sentiment {
		case storage.SentimentNegative:
			return "Investigate and resolve the reported issue"
		case storage.SentimentPositive:
			return "Document and replicate this successful approach"
		}
		return "Analyze feedback for potential improvements"
	}

	content := sanitize(raw, "Recommendation:")
	if content == "" {
		return "Review and act on feedback"
	}
	return truncate(content, recommendationMaxLen)
}

// sanitize trims whitespace and strips the operation's own label when the
// model echoes it back (e.g. a leading "Summary:").
func sanitize(raw, label string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, label) {
		s = strings.TrimSpace(strings.TrimPrefix(s, label))
	}
	return s
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
