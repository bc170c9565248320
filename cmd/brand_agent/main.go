// Package main provides the entry point for the brand studio HTTP API server
// and its command-line stages.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	apiKeyFlag string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "brand_agent",
	Short: "Brand Studio HTTP API server and pipeline tools",
	Long: `Brand Studio synthesizes brand guidelines from questionnaire answers and uploaded
guideline documents, and turns them into social posts: a caption, an image prompt
and a generated image.

Configuration can be loaded from a JSON file using --config. Environment variables
fill values the file leaves empty.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
