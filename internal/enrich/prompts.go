package enrich

import (
	"fmt"

	"github.com/kalambet/revu/internal/storage"
)

// toneFor maps a sentiment label to the tone requested of the generated
// customer response.
func toneFor(sentiment string) string {
	switch sentiment {
	case storage.SentimentPositive:
		return "enthusiastic and grateful"
	case storage.SentimentNegative:
		return "empathetic and solution-focused"
	case storage.SentimentNeutral:
		return "professional and helpful"
	}
	return "professional"
}

// actionPromptFor maps a sentiment label to the framing question appended to
// the recommendation prompt.
func actionPromptFor(sentiment string) string {
	switch sentiment {
	case storage.SentimentNegative:
		return "What specific action should the team take to address this issue?"
	case storage.SentimentPositive:
		return "How can we maintain or build on this positive experience?"
	case storage.SentimentNeutral:
		return "How could we improve based on this feedback?"
	}
	return "How should we respond to this feedback?"
}

func sentimentPrompt(message string) string {
	return fmt.Sprintf(`Analyze the sentiment of this review and respond with ONLY one word:

Review: %s

Respond with ONLY: positive, negative, or neutral`, message)
}

func responsePrompt(message, category, sentiment string) string {
	return fmt.Sprintf(`Generate a short, professional customer service response (max 2 sentences) to this feedback.
Be %s.

Category: %s
Customer Feedback: %s

Response:`, toneFor(sentiment), category, message)
}

func summaryPrompt(message string) string {
	return fmt.Sprintf(`Summarize this feedback in exactly one sentence (under 15 words):

Feedback: %s

Summary:`, message)
}

func recommendationPrompt(message, category, sentiment string) string {
	return fmt.Sprintf(`Based on this customer feedback, provide ONE actionable recommendation (max 1 sentence).

Category: %s
Sentiment: %s
Feedback: %s

%s

Recommendation:`, category, sentiment, message, actionPromptFor(sentiment))
}
