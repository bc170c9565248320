package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-studio/internal/observability"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/schemas"
)

var generateCaptionCmd = &cobra.Command{
	Use:   "generate-caption",
	Short: "Write a social post caption in the brand's voice",
	RunE:  runGenerateCaption,
}

var (
	captionGuidelines string
	captionTopic      string
	captionPlatform   string
	captionOut        string
)

func init() {
	generateCaptionCmd.Flags().StringVarP(&captionGuidelines, "guidelines", "g", "", "Path to brand guidelines text (default guidelines when omitted)")
	generateCaptionCmd.Flags().StringVarP(&captionTopic, "topic", "t", "", "Post topic")
	generateCaptionCmd.Flags().StringVarP(&captionPlatform, "platform", "p", "", "Target platform, e.g. instagram or linkedin")
	generateCaptionCmd.Flags().StringVarP(&captionOut, "out", "o", "", "Write the caption as JSON to this path")

	_ = generateCaptionCmd.MarkFlagRequired("topic")
	_ = generateCaptionCmd.MarkFlagRequired("platform")

	rootCmd.AddCommand(generateCaptionCmd)
}

func runGenerateCaption(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	ctx := context.Background()

	guidelines, err := readGuidelines(captionGuidelines)
	if err != nil {
		return err
	}

	client, err := newModelClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck
	studio := newStudio(client, cfg, logger, studioOptions{})

	caption, failure := studio.GeneratePostCaption(ctx, outcome.Ok(guidelines), captionTopic, captionPlatform).Value()
	if failure != nil {
		return reportFailure(failure)
	}

	observability.NewPrinter(os.Stdout).PrintCaption(&caption)
	return writeValidatedJSON(captionOut, schemas.Caption, caption)
}
