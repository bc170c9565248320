package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-studio/internal/observability"
	"github.com/jonathan/brand-studio/internal/pipeline"
	"github.com/jonathan/brand-studio/internal/types"
)

var createContentCmd = &cobra.Command{
	Use:   "create-content",
	Short: "Create a social post: caption, image prompt and image",
	Long: `Run the content pipeline end to end. The caption and the visual analysis of the
reference images run concurrently; the image prompt combines both, and the image
is generated and stored like the API does (Supabase Storage or MEDIA_DIR).

References can be local image files or URLs.`,
	RunE: runCreateContent,
}

var (
	contentGuidelines string
	contentTopic      string
	contentPlatform   string
	contentImages     []string
	contentSize       string
	contentOut        string
)

func init() {
	createContentCmd.Flags().StringVarP(&contentGuidelines, "guidelines", "g", "", "Path to brand guidelines text (default guidelines when omitted)")
	createContentCmd.Flags().StringVarP(&contentTopic, "topic", "t", "", "Post topic")
	createContentCmd.Flags().StringVarP(&contentPlatform, "platform", "p", "", "Target platform, e.g. instagram or linkedin")
	createContentCmd.Flags().StringArrayVarP(&contentImages, "image", "i", nil, "Reference image path or URL (repeatable)")
	createContentCmd.Flags().StringVar(&contentSize, "size", string(types.SizeSquare), "Image size: 1024x1024, 1024x1792 or 1792x1024")
	createContentCmd.Flags().StringVarP(&contentOut, "out", "o", "", "Write the run result as JSON to this path")

	_ = createContentCmd.MarkFlagRequired("topic")
	_ = createContentCmd.MarkFlagRequired("platform")

	rootCmd.AddCommand(createContentCmd)
}

func runCreateContent(_ *cobra.Command, _ []string) error {
	size := types.ImageSize(contentSize)
	if !size.Valid() {
		return fmt.Errorf("unsupported --size %q (use %s, %s or %s)", contentSize, types.SizeSquare, types.SizePortrait, types.SizeLandscape)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	ctx := context.Background()

	guidelines, err := readGuidelines(contentGuidelines)
	if err != nil {
		return err
	}
	refs := contentImages
	if len(refs) == 0 && cfg.DefaultReferenceImageURL != "" {
		refs = []string{cfg.DefaultReferenceImageURL}
	}

	assets, err := newAssetStore(cfg, logger)
	if err != nil {
		return err
	}
	client, err := newModelClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck
	generator, err := newImageGenerator(ctx, cfg, assets, logger)
	if err != nil {
		return err
	}
	studio := newStudio(client, cfg, logger, studioOptions{images: newLocalImages(), generator: generator})

	run, failure := studio.RunContent(ctx, pipeline.ContentRequest{
		Guidelines:         guidelines,
		Topic:              contentTopic,
		Platform:           contentPlatform,
		ReferenceImageURLs: refs,
		Size:               size,
		OnProgress:         progressPrinter(os.Stderr),
	}).Value()
	if failure != nil {
		return reportFailure(failure)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintCaption(&run.Caption)
	if cfg.Verbose {
		printer.PrintVisualAnalysis(&run.Visual)
	}
	printer.PrintImagePrompt(&run.Prompt)
	fmt.Fprintf(os.Stdout, "Image: %s\n", run.ImageURL)

	return writeJSONFile(contentOut, run)
}
