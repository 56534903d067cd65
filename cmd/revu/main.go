package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "revu",
	Short:         "revu — feedback collection with AI sentiment, summaries, and response suggestions",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the revu version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("revu version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		startCmd,
		stopCmd,
		statusCmd,
		submitCmd,
		listCmd,
		showCmd,
		statsCmd,
		exportCmd,
		configCmd,
		versionCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
