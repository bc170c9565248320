package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/brand-studio/internal/types"
)

func TestAnalyzeBrandCommand_MissingDescriptionFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "analyze-brand", "--business-name", "Acme Roasters")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"description\" not set")
}

func TestAnalyzeBrandCommand_DocumentFlagsExclusive(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "analyze-brand",
		"--description", "Small-batch coffee roastery",
		"--document", "brand.pdf",
		"--document-url", "https://acme.test/brand")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "none of the others can be")
}

func TestAnalyzeDocumentCommand_RequiresSource(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "analyze-document")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "at least one of the flags in the group [in url] is required")
}

func TestGenerateCaptionCommand_MissingTopicFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "generate-caption", "--platform", "instagram")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"topic\" not set")
}

func TestCreateContentCommand_MissingPlatformFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "create-content", "--topic", "Autumn blend")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"platform\" not set")
}

func TestCreateContentCommand_RejectsUnknownSize(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "create-content",
		"--topic", "Autumn blend",
		"--platform", "instagram",
		"--size", "800x600")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "unsupported --size")
}

func TestRenderGuidelinesCommand_MissingProfileFlag(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "render-guidelines")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "required flag(s) \"profile\" not set")
}

func TestRenderGuidelinesCommand_WritesGuidelines(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	industry := "Food & Beverage"
	profile := types.BrandProfile{
		BrandVoice:     []string{"warm", "direct", "curious"},
		ColorPalette:   []string{"#3B2416", "#C8A27A", "#E4572E", "#1F1F1F", "#FAF6F0"},
		ContentThemes:  []string{"origin stories", "brew guides", "seasonal blends", "behind the roast", "community"},
		TargetAudience: "Home brewers who care where their coffee comes from",
		PostingStyle:   "Short stories with one clear call to action",
		Industry:       &industry,
	}
	data, err := json.Marshal(profile)
	require.NoError(t, err)
	profilePath := filepath.Join(tmpDir, "profile.json")
	require.NoError(t, os.WriteFile(profilePath, data, 0o644))
	outPath := filepath.Join(tmpDir, "guidelines.txt")

	cmd := exec.Command(binaryPath, "render-guidelines", "--profile", profilePath, "--out", outPath)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))

	text, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(text), "#E4572E")
	assert.Contains(t, string(text), "Food & Beverage")
}

func TestRenderGuidelinesCommand_IncompleteProfile(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	profilePath := filepath.Join(tmpDir, "profile.json")
	require.NoError(t, os.WriteFile(profilePath, []byte(`{"brand_voice":["warm"]}`), 0o644))

	cmd := exec.Command(binaryPath, "render-guidelines", "--profile", profilePath)
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "missing required brand profile data")
}
