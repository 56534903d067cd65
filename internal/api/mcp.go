package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/revu/internal/analytics"
	"github.com/kalambet/revu/internal/enrich"
	"github.com/kalambet/revu/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store    *storage.Store
	Enricher *enrich.Enricher
}

// NewMCPServer creates an MCP server exposing feedback submission and
// analytics to agent clients.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"revu",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("revu — customer feedback store with AI sentiment, summaries, and response suggestions."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("submit_feedback",
			mcp.WithDescription("Submit a piece of customer feedback. It is enriched with sentiment, a summary, and a suggested response before being stored."),
			mcp.WithString("user_name", mcp.Description("Name of the person giving feedback"), mcp.Required()),
			mcp.WithString("message", mcp.Description("The feedback text, at least 10 characters"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Feedback category (default General Feedback)")),
			mcp.WithNumber("rating", mcp.Description("Star rating 1-5 (default 3)")),
			mcp.WithString("email", mcp.Description("Optional contact email")),
		),
		mcpSubmitFeedback(deps),
	)

	s.AddTool(
		mcp.NewTool("recent_feedback",
			mcp.WithDescription("List the most recent feedback records, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of records (default 10)")),
			mcp.WithString("category", mcp.Description("Filter to a single category")),
			mcp.WithString("sentiment", mcp.Description("Filter to positive, negative, or neutral")),
		),
		mcpRecentFeedback(deps),
	)

	s.AddTool(
		mcp.NewTool("feedback_stats",
			mcp.WithDescription("Aggregate feedback statistics: totals, average rating, sentiment and category breakdowns."),
			mcp.WithNumber("days", mcp.Description("Only include feedback from the last N days (default 30)")),
		),
		mcpFeedbackStats(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"revu://stats",
			"Feedback Statistics",
			mcp.WithResourceDescription("Headline feedback statistics for the last 30 days as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceStats(deps),
	)

	return s
}

func mcpSubmitFeedback(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userName, err := req.RequireString("user_name")
		if err != nil {
			return mcpError("user_name is required"), nil
		}
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}
		message = strings.TrimSpace(message)
		if len(message) < minMessageLength {
			return mcpError(fmt.Sprintf("message must be at least %d characters", minMessageLength)), nil
		}

		category := req.GetString("category", "General Feedback")
		if !storage.ValidCategory(category) {
			return mcpError(fmt.Sprintf("unknown category %q", category)), nil
		}
		rating := clampRating(req.GetInt("rating", 3))

		enrichment := deps.Enricher.Enrich(ctx, message, category)

		id, err := deps.Store.InsertFeedback(storage.Feedback{
			UserName:        strings.TrimSpace(userName),
			Email:           strings.TrimSpace(req.GetString("email", "")),
			Category:        category,
			Rating:          rating,
			Message:         message,
			Sentiment:       enrichment.Sentiment,
			Summary:         enrichment.Summary,
			AIResponse:      enrichment.Response,
			Recommendations: enrichment.Recommendation,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to save feedback: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Stored feedback #%d (%s). Suggested response: %s", id, enrichment.Sentiment, enrichment.Response)), nil
	}
}

func mcpRecentFeedback(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > 50 {
			limit = 50
		}

		category := req.GetString("category", "")
		sentiment := req.GetString("sentiment", "")

		var (
			records []storage.Feedback
			err     error
		)
		switch {
		case category != "":
			records, err = deps.Store.ListFeedbackByCategory(category)
		case sentiment != "":
			records, err = deps.Store.ListFeedbackBySentiment(sentiment)
		default:
			records, err = deps.Store.ListFeedback()
		}
		if err != nil {
			slog.Warn("recent_feedback listing failed, returning empty set", "error", err)
			records = []storage.Feedback{}
		}
		records = analytics.Recent(records, limit)

		type feedbackSummary struct {
			ID        int64  `json:"id"`
			UserName  string `json:"user_name"`
			Category  string `json:"category"`
			Rating    int    `json:"rating"`
			Sentiment string `json:"sentiment"`
			Summary   string `json:"summary"`
			Message   string `json:"message"`
		}

		summaries := make([]feedbackSummary, len(records))
		for i, f := range records {
			summaries[i] = feedbackSummary{
				ID:        f.ID,
				UserName:  f.UserName,
				Category:  f.Category,
				Rating:    f.Rating,
				Sentiment: f.Sentiment,
				Summary:   f.Summary,
				Message:   clip(f.Message, 200),
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpFeedbackStats(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days := req.GetInt("days", 30)

		b, err := statsJSON(deps.Store, days)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceStats(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := statsJSON(deps.Store, 30)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stats: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func statsJSON(store *storage.Store, days int) ([]byte, error) {
	if days <= 0 {
		days = 30
	}
	records, err := store.ListFeedback()
	if err != nil {
		slog.Warn("stats listing failed, computing over empty set", "error", err)
		records = []storage.Feedback{}
	}
	records = analytics.FilterByDateRange(records, days)

	return json.Marshal(StatsResponse{
		Days:               days,
		Summary:            analytics.Compute(records),
		SatisfactionRate:   analytics.SatisfactionRate(records),
		RatingDistribution: analytics.RatingDistribution(records),
		Sentiments:         analytics.SentimentBreakdown(records),
		Categories:         analytics.CategoryBreakdown(records),
		AvgRatingByCat:     analytics.AverageRatingByCategory(records),
	})
}

func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
