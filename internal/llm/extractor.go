// Package llm - extractor.go describes the structured outputs requested from the model.
package llm

import (
	"fmt"
	"strings"
)

// FieldType is the JSON type of an output field.
type FieldType string

// Supported field types.
const (
	FieldString     FieldType = "string"
	FieldStringList FieldType = "[]string"
)

// ExtractionSchema defines the structure the model must answer with.
// It drives both the prompt text and the provider's structured-output mode.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "BrandProfile", "Caption")
	Description string        // Preamble describing the task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the output.
type SchemaField struct {
	Name        string    // JSON field name
	Type        FieldType // defaults to FieldString
	Description string    // Description for the model
	Required    bool      // Whether this field is required
	MinItems    int       // list bounds, 0 when unbounded
	MaxItems    int
}

func (f SchemaField) fieldType() FieldType {
	if f.Type == "" {
		return FieldString
	}
	return f.Type
}

func (f SchemaField) typeHint() string {
	if f.fieldType() == FieldStringList {
		return `["string"]`
	}
	return `"string"`
}

func (f SchemaField) boundsHint() string {
	switch {
	case f.MinItems > 0 && f.MinItems == f.MaxItems:
		return fmt.Sprintf(" exactly %d items", f.MinItems)
	case f.MinItems > 0 && f.MaxItems > 0:
		return fmt.Sprintf(" %d-%d items", f.MinItems, f.MaxItems)
	case f.MinItems > 0:
		return fmt.Sprintf(" at least %d items", f.MinItems)
	}
	return ""
}

// BuildExtractionPrompt constructs the prompt from a schema, a task instruction and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, field.typeHint(), requiredHint))
		if field.Description != "" || field.boundsHint() != "" {
			sb.WriteString(fmt.Sprintf(" // %s%s", field.Description, field.boundsHint()))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// RequiredFields lists the names of required fields in declaration order.
func (s ExtractionSchema) RequiredFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// --- Predefined Schemas ---

// BrandProfileSchema returns the output schema for brand profile analysis and merging.
func BrandProfileSchema(description string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "BrandProfile",
		Description: description,
		Fields: []SchemaField{
			{Name: "brand_voice", Type: FieldStringList, Description: "adjectives that express the brand voice", Required: true, MinItems: 3, MaxItems: 5},
			{Name: "color_palette", Type: FieldStringList, Description: "hex colors in order primary, secondary, accent, text, background", Required: true, MinItems: 5, MaxItems: 5},
			{Name: "typography", Description: "font style recommendation"},
			{Name: "content_themes", Type: FieldStringList, Description: "topics the brand should post about", Required: true, MinItems: 5, MaxItems: 10},
			{Name: "target_audience", Description: "target audience description", Required: true},
			{Name: "posting_style", Description: "posting style, e.g. casual, professional, inspirational", Required: true},
			{Name: "industry", Description: "the industry this brand operates in"},
		},
	}
}

// CaptionSchema returns the output schema for post captions.
func CaptionSchema(description string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "Caption",
		Description: description,
		Fields: []SchemaField{
			{Name: "caption", Description: "the main post caption text", Required: true},
			{Name: "hashtags", Type: FieldStringList, Description: "relevant hashtags without the # sign", Required: true, MinItems: 5, MaxItems: 10},
			{Name: "cta", Description: "call to action text", Required: true},
			{Name: "hook", Description: "attention-grabbing first line", Required: true},
		},
	}
}

// ImagePromptSchema returns the output schema for image prompts.
func ImagePromptSchema(description string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "ImagePrompt",
		Description: description,
		Fields: []SchemaField{
			{Name: "post_topic", Description: "post topic of the generated prompt", Required: true},
			{Name: "prompt", Description: "image generation prompt, at most 400 characters", Required: true},
			{Name: "aspect_ratio", Description: "aspect ratio of the image, e.g. 1:1", Required: true},
		},
	}
}
