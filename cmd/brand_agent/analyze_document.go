package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-studio/internal/observability"
	"github.com/jonathan/brand-studio/internal/schemas"
)

var analyzeDocumentCmd = &cobra.Command{
	Use:   "analyze-document",
	Short: "Extract a brand profile from a guideline document",
	Long:  "Extract the text of a brand guideline document (file or URL) and analyze it into a brand profile. With --crawl-pages, the URL is crawled as a brand website.",
	RunE:  runAnalyzeDocument,
}

var (
	documentIn         string
	documentURL        string
	documentOut        string
	documentUseBrowser bool
	documentCrawlPages int
)

func init() {
	analyzeDocumentCmd.Flags().StringVarP(&documentIn, "in", "i", "", "Path to the guideline document")
	analyzeDocumentCmd.Flags().StringVar(&documentURL, "url", "", "URL of the guideline document or page")
	analyzeDocumentCmd.Flags().BoolVar(&documentUseBrowser, "use-browser", false, "Render script-heavy guideline pages in a headless browser (requires Chrome)")
	analyzeDocumentCmd.Flags().IntVar(&documentCrawlPages, "crawl-pages", 0, "Crawl up to this many pages of the --url site (brand and about pages first)")
	analyzeDocumentCmd.Flags().StringVarP(&documentOut, "out", "o", "", "Write the profile as JSON to this path")

	analyzeDocumentCmd.MarkFlagsOneRequired("in", "url")
	analyzeDocumentCmd.MarkFlagsMutuallyExclusive("in", "url")

	rootCmd.AddCommand(analyzeDocumentCmd)
}

func runAnalyzeDocument(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if documentUseBrowser {
		cfg.UseBrowser = true
	}
	logger := cfg.NewLogger()
	ctx := context.Background()

	text, err := loadGuidelineDocument(ctx, cfg, documentIn, documentURL, documentCrawlPages)
	if err != nil {
		return err
	}
	if text == nil {
		return fmt.Errorf("must provide either --in or --url")
	}

	client, err := newModelClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck
	studio := newStudio(client, cfg, logger, studioOptions{})

	profile, failure := studio.AnalyzeUploadedGuidelines(ctx, *text).Value()
	if failure != nil {
		return reportFailure(failure)
	}

	observability.NewPrinter(os.Stdout).PrintBrandProfile(&profile)
	return writeValidatedJSON(documentOut, schemas.BrandProfile, profile)
}
