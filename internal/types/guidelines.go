package types

// DefaultGuidelinesText is used for content runs when a company has no stored guidelines.
const DefaultGuidelinesText = "Modern, professional brand with clean aesthetics"

// DefaultIndustry is the industry hint used when none can be determined.
const DefaultIndustry = "general business"

// GuidelineDocument is the rendered brand guideline text.
// Industry carries the structured industry of the profile the text was
// rendered from; it is empty for documents that arrived as plain text.
type GuidelineDocument struct {
	Text     string `json:"text"`
	Industry string `json:"industry,omitempty"`
}
