package content

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/brand-studio/internal/llm"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/types"
)

const guidelinesText = `# BRAND GUIDELINES

## Brand Voice
friendly, expert, calm

## Industry
Specialty coffee
`

const captionJSON = `{
	"caption": "Your morning ritual, upgraded.",
	"hashtags": ["coffee", "#SpecialtyCoffee", "roastery", "morning", "ritual"],
	"cta": "Order a bag today",
	"hook": "Still drinking stale beans?"
}`

const visualJSON = `{
	"metadata": {"confidence_score": 0.9, "image_type": "photograph", "primary_purpose": "product"},
	"composition": {"rule_applied": "rule of thirds", "aspect_ratio": "1:1"},
	"color_profile": {"dominant_colors": [{"color": "espresso brown", "hex": "#3B2417", "percentage": "45%", "role": "subject"}]},
	"lighting": {"type": "natural window light", "mood": "warm"},
	"technical_specs": {"medium": "photography"},
	"artistic_elements": {"visual_style": "minimalist", "mood": "cozy"},
	"typography": {"present": false},
	"subject_analysis": {"primary_subject": "coffee cup"},
	"background": {"setting_type": "cafe counter"},
	"generation_parameters": {"keywords": ["coffee", "latte art"]}
}`

var errBoom = errors.New("connection reset by peer")

func okGuidelines() outcome.Result[types.GuidelineDocument] {
	return outcome.Ok(types.GuidelineDocument{Text: guidelinesText, Industry: "Specialty coffee"})
}

func okCaption() outcome.Result[types.CaptionResult] {
	return outcome.Ok(types.CaptionResult{
		Caption:  "Your morning ritual, upgraded.",
		Hashtags: []string{"coffee", "SpecialtyCoffee", "roastery", "morning", "ritual"},
		CTA:      "Order a bag today",
		Hook:     "Still drinking stale beans?",
	})
}

func okVisual() outcome.Result[types.VisualAnalysis] {
	return outcome.Ok(types.VisualAnalysis{
		ArtisticElements: types.ArtisticElements{VisualStyle: "minimalist", Mood: "cozy"},
	})
}

// fakeImages serves images from a map and counts fetches.
type fakeImages struct {
	mu      sync.Mutex
	fetched []string
	fail    map[string]error
}

func (f *fakeImages) FetchImage(_ context.Context, url string) (llm.ImagePart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	if err := f.fail[url]; err != nil {
		return llm.ImagePart{}, err
	}
	return llm.ImagePart{MIMEType: "image/jpeg", Data: []byte(url)}, nil
}

// fakeGenerator returns a fixed URL or error and records its calls.
type fakeGenerator struct {
	url    string
	err    error
	calls  int
	prompt string
	size   types.ImageSize
	wait   bool
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string, size types.ImageSize) (string, error) {
	g.calls++
	g.prompt, g.size = prompt, size
	if g.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.url, g.err
}
