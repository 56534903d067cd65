package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kalambet/revu/internal/enrich"
	"github.com/kalambet/revu/internal/storage"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return MCPDeps{
		Store:    store,
		Enricher: enrich.New(scriptedCompleter()),
	}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- tests ---

func TestMCPTool_SubmitFeedback(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	handler := mcpSubmitFeedback(deps)

	req := makeCallToolRequest("submit_feedback", map[string]interface{}{
		"user_name": "Morgan",
		"message":   "The invoice PDF download link returns a 404 since last week.",
		"category":  "Bug Report",
		"rating":    2,
	})

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}
	if text := toolText(t, result); !strings.Contains(text, "Stored feedback #1") {
		t.Fatalf("unexpected response: %s", text)
	}

	records, err := store.ListFeedback()
	if err != nil {
		t.Fatalf("listing feedback: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	f := records[0]
	if f.UserName != "Morgan" || f.Category != "Bug Report" || f.Rating != 2 {
		t.Fatalf("unexpected record: %+v", f)
	}
	if f.Sentiment != storage.SentimentNegative {
		t.Fatalf("expected negative sentiment, got %s", f.Sentiment)
	}
	if f.Summary == "" || f.AIResponse == "" {
		t.Fatalf("record not enriched: %+v", f)
	}
}

func TestMCPTool_SubmitFeedback_Validation(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpSubmitFeedback(deps)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing user_name", map[string]interface{}{
			"message": "A perfectly long enough feedback message.",
		}},
		{"missing message", map[string]interface{}{
			"user_name": "Morgan",
		}},
		{"short message", map[string]interface{}{
			"user_name": "Morgan",
			"message":   "too short",
		}},
		{"unknown category", map[string]interface{}{
			"user_name": "Morgan",
			"message":   "A perfectly long enough feedback message.",
			"category":  "Complaints Dept",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), makeCallToolRequest("submit_feedback", tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Fatalf("expected tool error, got: %s", toolText(t, result))
			}
		})
	}
}

func TestMCPTool_SubmitFeedback_DefaultRatingAndClamp(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	handler := mcpSubmitFeedback(deps)

	handler(context.Background(), makeCallToolRequest("submit_feedback", map[string]interface{}{
		"user_name": "Morgan",
		"message":   "Everything works, nothing to add right now.",
	}))
	handler(context.Background(), makeCallToolRequest("submit_feedback", map[string]interface{}{
		"user_name": "Morgan",
		"message":   "Rating out of range should still be accepted.",
		"rating":    11,
	}))

	records, err := store.ListFeedback()
	if err != nil {
		t.Fatalf("listing feedback: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Newest first: the clamped record, then the default.
	if records[0].Rating != 5 {
		t.Fatalf("expected clamped rating 5, got %d", records[0].Rating)
	}
	if records[1].Rating != 3 {
		t.Fatalf("expected default rating 3, got %d", records[1].Rating)
	}
}

func TestMCPTool_RecentFeedback(t *testing.T) {
	deps, store := newTestMCPDeps(t)

	submit := mcpSubmitFeedback(deps)
	for _, msg := range []string{
		"The onboarding checklist never marks step three as done.",
		"Release notes would be easier to scan with headings.",
		"Import from CSV drops rows with commas in quoted fields.",
	} {
		submit(context.Background(), makeCallToolRequest("submit_feedback", map[string]interface{}{
			"user_name": "Morgan",
			"message":   msg,
		}))
	}
	if records, _ := store.ListFeedback(); len(records) != 3 {
		t.Fatalf("seed failed, have %d records", len(records))
	}

	handler := mcpRecentFeedback(deps)
	result, err := handler(context.Background(), makeCallToolRequest("recent_feedback", map[string]interface{}{
		"limit": 2,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}

	var summaries []struct {
		ID      int64  `json:"id"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &summaries); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != 3 {
		t.Fatalf("expected newest record first, got id %d", summaries[0].ID)
	}
}

func TestMCPTool_RecentFeedback_EmptyStore(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpRecentFeedback(deps)

	result, err := handler(context.Background(), makeCallToolRequest("recent_feedback", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}
	if text := toolText(t, result); text != "[]" {
		t.Fatalf("expected empty array, got: %s", text)
	}
}

func TestMCPTool_FeedbackStats(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	submit := mcpSubmitFeedback(deps)
	submit(context.Background(), makeCallToolRequest("submit_feedback", map[string]interface{}{
		"user_name": "Morgan",
		"message":   "The sync conflict dialog loses my local edits.",
		"rating":    1,
	}))

	handler := mcpFeedbackStats(deps)
	result, err := handler(context.Background(), makeCallToolRequest("feedback_stats", map[string]interface{}{
		"days": 7,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error: %s", toolText(t, result))
	}

	var resp StatsResponse
	if err := json.Unmarshal([]byte(toolText(t, result)), &resp); err != nil {
		t.Fatalf("failed to parse stats: %v", err)
	}
	if resp.Days != 7 || resp.Summary.Total != 1 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

func TestMCPResource_Stats(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpResourceStats(deps)

	contents, err := handler(context.Background(), makeReadResourceRequest("revu://stats"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("expected TextResourceContents, got %T", contents[0])
	}
	if tc.URI != "revu://stats" || tc.MIMEType != "application/json" {
		t.Fatalf("unexpected resource metadata: %+v", tc)
	}

	var resp StatsResponse
	if err := json.Unmarshal([]byte(tc.Text), &resp); err != nil {
		t.Fatalf("failed to parse stats: %v", err)
	}
	if resp.Summary.Total != 0 {
		t.Fatalf("expected empty stats, got %+v", resp)
	}
}

func TestNewMCPServerRegisters(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	if s := NewMCPServer(deps); s == nil {
		t.Fatal("expected server")
	}
}
