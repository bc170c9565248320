package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/brand-studio/internal/types"
)

// readGuidelines loads guideline text from path. An empty path or file
// yields the default guidelines.
func readGuidelines(path string) (types.GuidelineDocument, error) {
	if path == "" {
		return types.GuidelineDocument{Text: types.DefaultGuidelinesText}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.GuidelineDocument{}, fmt.Errorf("failed to read guidelines: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return types.GuidelineDocument{Text: types.DefaultGuidelinesText}, nil
	}
	return types.GuidelineDocument{Text: text}, nil
}
