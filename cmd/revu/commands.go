package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/revu/internal/api"
	"github.com/kalambet/revu/internal/config"
	"github.com/kalambet/revu/internal/storage"
)

// --- submit ---

var submitCmd = &cobra.Command{
	Use:   "submit <message>",
	Short: "Submit feedback",
	Long: `Submit a piece of feedback. It is enriched with sentiment, a summary,
and a suggested response before being stored.

Examples:
  revu submit "The dashboard loads slowly when filtering by date" --name Dana --category Performance --rating 2
  revu submit "Love the new export feature" --name Alex --rating 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		category, _ := cmd.Flags().GetString("category")
		rating, _ := cmd.Flags().GetInt("rating")

		if name == "" {
			return fmt.Errorf("--name is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post("/v1/feedback", api.SubmitRequest{
			UserName: name,
			Email:    email,
			Category: category,
			Rating:   rating,
			Message:  message,
		})
		if err != nil {
			return err
		}

		var saved storage.Feedback
		if err := decodeJSON(resp, &saved); err != nil {
			return err
		}

		printSuccess("Stored feedback #%d (%s)", saved.ID, saved.Sentiment)
		if saved.AIResponse != "" {
			fmt.Printf("\n%s\n  %s\n", colorize(colorBold, "Suggested response:"), saved.AIResponse)
		}
		if saved.Recommendations != "" {
			fmt.Printf("\n%s\n  %s\n", colorize(colorBold, "Recommendation:"), saved.Recommendations)
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().String("name", "", "name of the person giving feedback")
	submitCmd.Flags().String("email", "", "optional contact email")
	submitCmd.Flags().String("category", "General Feedback", "feedback category")
	submitCmd.Flags().Int("rating", 3, "star rating 1-5")
}

// --- list ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		category, _ := cmd.Flags().GetString("category")
		sentiment, _ := cmd.Flags().GetString("sentiment")
		minRating, _ := cmd.Flags().GetInt("min-rating")
		maxRating, _ := cmd.Flags().GetInt("max-rating")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		params := url.Values{}
		params.Set("limit", fmt.Sprintf("%d", limit))
		if category != "" {
			params.Set("category", category)
		}
		if sentiment != "" {
			params.Set("sentiment", sentiment)
		}
		if minRating > 1 {
			params.Set("min_rating", fmt.Sprintf("%d", minRating))
		}
		if maxRating < 5 {
			params.Set("max_rating", fmt.Sprintf("%d", maxRating))
		}

		resp, err := client.get("/v1/feedback?" + params.Encode())
		if err != nil {
			return err
		}

		var records []storage.Feedback
		if err := decodeJSON(resp, &records); err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No feedback found.")
			return nil
		}

		for _, f := range records {
			summary := f.Summary
			if summary == "" {
				summary = f.Message
			}
			if len(summary) > 80 {
				summary = summary[:80] + "..."
			}
			fmt.Printf("%s  %s  %s  %s  %s\n",
				colorize(colorCyan, fmt.Sprintf("#%-4d", f.ID)),
				f.CreatedAt.Format("2006-01-02 15:04"),
				stars(f.Rating),
				sentimentBadge(f.Sentiment),
				summary,
			)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().Int("limit", 20, "maximum number of records")
	listCmd.Flags().String("category", "", "filter by category")
	listCmd.Flags().String("sentiment", "", "filter by sentiment (positive, negative, neutral)")
	listCmd.Flags().Int("min-rating", 1, "only include ratings at or above this value")
	listCmd.Flags().Int("max-rating", 5, "only include ratings at or below this value")
}

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single feedback record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get("/v1/feedback/" + args[0])
		if err != nil {
			return err
		}

		var f any
		if err := decodeJSON(resp, &f); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	},
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show feedback statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(fmt.Sprintf("/v1/stats?days=%d", days))
		if err != nil {
			return err
		}

		var stats api.StatsResponse
		if err := decodeJSON(resp, &stats); err != nil {
			return err
		}

		fmt.Printf("%s (last %d days)\n\n", colorize(colorBold, "Feedback statistics"), stats.Days)
		printStatus("Total", "%d", stats.Summary.Total)
		printStatus("Average rating", "%.2f", stats.Summary.AvgRating)
		printStatus("Satisfaction", "%.0f%%", stats.SatisfactionRate)
		printStatus("Positive", "%d", stats.Summary.PositiveCount)
		printStatus("Negative", "%d", stats.Summary.NegativeCount)
		printStatus("Neutral", "%d", stats.Summary.NeutralCount)

		if len(stats.Categories) > 0 {
			fmt.Printf("\n%s\n", colorize(colorBold, "By category"))
			for _, c := range stats.Categories {
				printStatus(c.Label, "%d", c.Count)
			}
		}

		fmt.Printf("\n%s\n", colorize(colorBold, "Rating distribution"))
		for rating := 5; rating >= 1; rating-- {
			printStatus(stars(rating), "%d", stats.RatingDistribution[rating])
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("days", 30, "only include feedback from the last N days")
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all feedback as CSV or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		if format != "csv" && format != "json" {
			return fmt.Errorf("unsupported format %q (csv or json)", format)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get("/v1/export?format=" + format)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
		}

		var writer *os.File
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			writer = f
		} else {
			writer = os.Stdout
		}

		if _, err := io.Copy(writer, resp.Body); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}

		if output != "" {
			printSuccess("Feedback exported to %s", output)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "csv", "export format (csv or json)")
	exportCmd.Flags().String("output", "", "output file path (default: stdout)")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func sentimentBadge(sentiment string) string {
	switch sentiment {
	case storage.SentimentPositive:
		return colorize(colorGreen, "positive")
	case storage.SentimentNegative:
		return colorize(colorRed, "negative")
	}
	return colorize(colorYellow, "neutral ")
}
