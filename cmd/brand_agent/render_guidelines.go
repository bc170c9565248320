package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-studio/internal/observability"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/rendering"
	"github.com/jonathan/brand-studio/internal/types"
)

var renderGuidelinesCmd = &cobra.Command{
	Use:   "render-guidelines",
	Short: "Render brand guidelines from a brand profile JSON file",
	Long:  "Render the brand guideline text for a brand profile produced by analyze-brand or analyze-document. No model is called.",
	RunE:  runRenderGuidelines,
}

var (
	renderProfileFile string
	renderOut         string
)

func init() {
	renderGuidelinesCmd.Flags().StringVarP(&renderProfileFile, "profile", "p", "", "Path to brand profile JSON file")
	renderGuidelinesCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Write the guidelines text to this path")

	_ = renderGuidelinesCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(renderGuidelinesCmd)
}

func runRenderGuidelines(_ *cobra.Command, _ []string) error {
	var profile types.BrandProfile
	if err := readJSONFile(renderProfileFile, &profile); err != nil {
		return err
	}

	doc, failure := rendering.Render(outcome.Ok(profile)).Value()
	if failure != nil {
		return reportFailure(failure)
	}

	if renderOut == "" {
		fmt.Fprintln(os.Stdout, doc.Text)
		return nil
	}
	observability.NewPrinter(os.Stderr).PrintGuidelines(&doc)
	if err := os.WriteFile(renderOut, []byte(doc.Text), 0o644); err != nil {
		return fmt.Errorf("failed to write guidelines: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", renderOut)
	return nil
}
