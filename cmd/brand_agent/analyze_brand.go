package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-studio/internal/config"
	"github.com/jonathan/brand-studio/internal/crawling"
	"github.com/jonathan/brand-studio/internal/ingestion"
	"github.com/jonathan/brand-studio/internal/observability"
	"github.com/jonathan/brand-studio/internal/pipeline"
	"github.com/jonathan/brand-studio/internal/types"
)

var analyzeBrandCmd = &cobra.Command{
	Use:   "analyze-brand",
	Short: "Synthesize brand guidelines from questionnaire answers",
	Long: `Analyze questionnaire answers into a brand profile, merge a guideline document
when one is given, and render the brand guidelines.

The document can be a local file (--document) or a URL (--document-url). Its
palette and typography take precedence over the generated profile.`,
	RunE: runAnalyzeBrand,
}

var (
	brandAnswers     types.Questionnaire
	brandDocument    string
	brandDocumentURL string
	brandUseBrowser  bool
	brandCrawlPages  int
	brandOut         string
	brandGuidesOut   string
)

func init() {
	analyzeBrandCmd.Flags().StringVar(&brandAnswers.BusinessName, "business-name", "", "Business name")
	analyzeBrandCmd.Flags().StringVar(&brandAnswers.Industry, "industry", "", "Industry (default \"General\")")
	analyzeBrandCmd.Flags().StringVar(&brandAnswers.TargetAudience, "audience", "", "Target audience (default \"Modern consumers\")")
	analyzeBrandCmd.Flags().StringVarP(&brandAnswers.BrandDescription, "description", "d", "", "What the business does and stands for")
	analyzeBrandCmd.Flags().StringVar(&brandAnswers.Tone, "tone", "", "Preferred tone of voice")
	analyzeBrandCmd.Flags().StringVar(&brandAnswers.Competitors, "competitors", "", "Main competitors")
	analyzeBrandCmd.Flags().StringVar(&brandAnswers.UniqueValue, "unique-value", "", "What sets the business apart")
	analyzeBrandCmd.Flags().StringVar(&brandDocument, "document", "", "Path to a brand guideline document (PDF, HTML, text)")
	analyzeBrandCmd.Flags().StringVar(&brandDocumentURL, "document-url", "", "URL of a brand guideline document or page")
	analyzeBrandCmd.Flags().BoolVar(&brandUseBrowser, "use-browser", false, "Render script-heavy guideline pages in a headless browser (requires Chrome)")
	analyzeBrandCmd.Flags().IntVar(&brandCrawlPages, "crawl-pages", 0, "Crawl up to this many pages of the --document-url site (brand and about pages first)")
	analyzeBrandCmd.Flags().StringVarP(&brandOut, "out", "o", "", "Write the run result as JSON to this path")
	analyzeBrandCmd.Flags().StringVar(&brandGuidesOut, "guidelines-out", "", "Write the rendered guidelines text to this path")

	_ = analyzeBrandCmd.MarkFlagRequired("description")
	analyzeBrandCmd.MarkFlagsMutuallyExclusive("document", "document-url")

	rootCmd.AddCommand(analyzeBrandCmd)
}

func runAnalyzeBrand(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if brandUseBrowser {
		cfg.UseBrowser = true
	}
	logger := cfg.NewLogger()
	ctx := context.Background()

	q := brandAnswers.Normalize(0)
	if err := q.Validate(); err != nil {
		return fmt.Errorf("invalid questionnaire: %w", err)
	}

	document, err := loadGuidelineDocument(ctx, cfg, brandDocument, brandDocumentURL, brandCrawlPages)
	if err != nil {
		return err
	}

	client, err := newModelClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck
	studio := newStudio(client, cfg, logger, studioOptions{})

	printer := observability.NewPrinter(os.Stdout)
	run, failure := studio.RunBrand(ctx, pipeline.BrandRequest{
		Questionnaire: q,
		Document:      document,
		OnProgress:    progressPrinter(os.Stderr),
	}).Value()
	if failure != nil {
		return reportFailure(failure)
	}

	printer.PrintBrandProfile(&run.Profile)
	printer.PrintGuidelines(&run.Guidelines)

	if brandGuidesOut != "" {
		if err := os.WriteFile(brandGuidesOut, []byte(run.Guidelines.Text), 0o644); err != nil {
			return fmt.Errorf("failed to write guidelines: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", brandGuidesOut)
	}
	return writeJSONFile(brandOut, run)
}

// loadGuidelineDocument returns the extracted text of the document at path
// or url, or nil when both are empty. With crawlPages above one, url is
// treated as a brand website and its most relevant pages are combined.
func loadGuidelineDocument(ctx context.Context, cfg *config.Config, path, url string, crawlPages int) (*string, error) {
	switch {
	case path != "":
		text, meta, err := ingestion.IngestFromFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read guideline document: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Read %s (%s, %d characters)\n", path, meta.Format, len(text))
		return &text, nil
	case url != "" && crawlPages > 1:
		site, err := crawling.NewCrawler(crawlPages, cfg.NewLogger()).Crawl(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to crawl brand site: %w", err)
		}
		for _, page := range site.Pages {
			fmt.Fprintf(os.Stderr, "Crawled %s (%s, %d characters)\n", page.URL, page.Category, page.Chars)
		}
		return &site.Text, nil
	case url != "":
		text, meta, err := ingestion.IngestFromURL(ctx, url, ingestion.URLOptions{
			UseBrowser:     cfg.UseBrowser,
			BrowserTimeout: 60 * time.Second,
			Logger:         cfg.NewLogger(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch guideline document: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Fetched %s (%s, %d characters)\n", url, meta.Format, len(text))
		return &text, nil
	}
	return nil, nil
}
