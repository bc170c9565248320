package types

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// Measure is a free-form quantity the vision model may answer as a string
// ("high", "40%") or as a bare number (0.9, 3).
type Measure string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Measure(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.(type) {
	case float64, bool:
		*m = Measure(data)
		return nil
	}
	return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(*m)}
}

// VisualAnalysis is an exhaustive description of the visual style of one or
// more reference images, used to steer image prompt composition.
type VisualAnalysis struct {
	Metadata             AnalysisMetadata     `json:"metadata"`
	Composition          Composition          `json:"composition"`
	ColorProfile         ColorProfile         `json:"color_profile"`
	Lighting             Lighting             `json:"lighting"`
	TechnicalSpecs       TechnicalSpecs       `json:"technical_specs"`
	ArtisticElements     ArtisticElements     `json:"artistic_elements"`
	Typography           ImageTypography      `json:"typography"`
	SubjectAnalysis      SubjectAnalysis      `json:"subject_analysis"`
	Background           Background           `json:"background"`
	GenerationParameters GenerationParameters `json:"generation_parameters"`
}

type AnalysisMetadata struct {
	ConfidenceScore Measure `json:"confidence_score"`
	ImageType       string  `json:"image_type"`
	PrimaryPurpose  string  `json:"primary_purpose"`
}

type Composition struct {
	RuleApplied     string   `json:"rule_applied"`
	AspectRatio     string   `json:"aspect_ratio"`
	Layout          string   `json:"layout"`
	FocalPoints     []string `json:"focal_points"`
	VisualHierarchy string   `json:"visual_hierarchy"`
	Balance         string   `json:"balance"`
}

type DominantColor struct {
	Color      string  `json:"color"`
	Hex        string  `json:"hex"`
	Percentage Measure `json:"percentage"`
	Role       string  `json:"role"`
}

type ColorProfile struct {
	DominantColors []DominantColor `json:"dominant_colors"`
	ColorPalette   string          `json:"color_palette"`
	Temperature    string          `json:"temperature"`
	Saturation     string          `json:"saturation"`
	Contrast       string          `json:"contrast"`
}

type Shadows struct {
	Type      string `json:"type"`
	Density   string `json:"density"`
	Placement string `json:"placement"`
	Length    string `json:"length"`
}

type Highlights struct {
	Treatment string `json:"treatment"`
	Placement string `json:"placement"`
}

type Lighting struct {
	Type             string     `json:"type"`
	SourceCount      Measure    `json:"source_count"`
	Direction        string     `json:"direction"`
	Directionality   string     `json:"directionality"`
	Quality          string     `json:"quality"`
	Intensity        string     `json:"intensity"`
	ContrastRatio    Measure    `json:"contrast_ratio"`
	Mood             string     `json:"mood"`
	Shadows          Shadows    `json:"shadows"`
	Highlights       Highlights `json:"highlights"`
	AmbientFill      string     `json:"ambient_fill"`
	LightTemperature string     `json:"light_temperature"`
}

type TechnicalSpecs struct {
	Medium       string `json:"medium"`
	Style        string `json:"style"`
	Texture      string `json:"texture"`
	Sharpness    string `json:"sharpness"`
	Grain        string `json:"grain"`
	DepthOfField string `json:"depth_of_field"`
	Perspective  string `json:"perspective"`
}

type ArtisticElements struct {
	Genre       string   `json:"genre"`
	Influences  []string `json:"influences"`
	Mood        string   `json:"mood"`
	Atmosphere  string   `json:"atmosphere"`
	VisualStyle string   `json:"visual_style"`
}

type Font struct {
	Type            string `json:"type"`
	Weight          string `json:"weight"`
	Characteristics string `json:"characteristics"`
}

type ImageTypography struct {
	Present     bool   `json:"present"`
	Fonts       []Font `json:"fonts"`
	Placement   string `json:"placement"`
	Integration string `json:"integration"`
}

type FacialExpression struct {
	Mouth          string `json:"mouth"`
	SmileIntensity string `json:"smile_intensity"`
	Eyes           string `json:"eyes"`
	Eyebrows       string `json:"eyebrows"`
	OverallEmotion string `json:"overall_emotion"`
	Authenticity   string `json:"authenticity"`
}

type Hair struct {
	Length               string `json:"length"`
	Cut                  string `json:"cut"`
	Texture              string `json:"texture"`
	TextureQuality       string `json:"texture_quality"`
	NaturalImperfections string `json:"natural_imperfections"`
	Styling              string `json:"styling"`
	StylingDetail        string `json:"styling_detail"`
	Part                 string `json:"part"`
	Volume               string `json:"volume"`
	Details              string `json:"details"`
}

type HandsAndGestures struct {
	LeftHand          string `json:"left_hand"`
	RightHand         string `json:"right_hand"`
	FingerPositions   string `json:"finger_positions"`
	FingerInterlacing string `json:"finger_interlacing"`
	HandTension       string `json:"hand_tension"`
	Interaction       string `json:"interaction"`
	Naturalness       string `json:"naturalness"`
}

type BodyPositioning struct {
	Posture            string `json:"posture"`
	Angle              string `json:"angle"`
	WeightDistribution string `json:"weight_distribution"`
	Shoulders          string `json:"shoulders"`
}

type SubjectAnalysis struct {
	PrimarySubject   string           `json:"primary_subject"`
	Positioning      string           `json:"positioning"`
	Scale            string           `json:"scale"`
	Interaction      string           `json:"interaction"`
	FacialExpression FacialExpression `json:"facial_expression"`
	Hair             Hair             `json:"hair"`
	HandsAndGestures HandsAndGestures `json:"hands_and_gestures"`
	BodyPositioning  BodyPositioning  `json:"body_positioning"`
}

type BackgroundElement struct {
	Item             string `json:"item"`
	Position         string `json:"position"`
	Distance         string `json:"distance"`
	Size             string `json:"size"`
	Condition        string `json:"condition"`
	SpecificFeatures string `json:"specific_features"`
}

type WallSurface struct {
	Material         string `json:"material"`
	SurfaceTreatment string `json:"surface_treatment"`
	Texture          string `json:"texture"`
	Finish           string `json:"finish"`
	Color            string `json:"color"`
	ColorVariation   string `json:"color_variation"`
	Features         string `json:"features"`
	WearIndicators   string `json:"wear_indicators"`
}

type FloorSurface struct {
	Material string `json:"material"`
	Color    string `json:"color"`
	Pattern  string `json:"pattern"`
}

type Background struct {
	SettingType         string              `json:"setting_type"`
	SpatialDepth        string              `json:"spatial_depth"`
	ElementsDetailed    []BackgroundElement `json:"elements_detailed"`
	WallSurface         WallSurface         `json:"wall_surface"`
	FloorSurface        FloorSurface        `json:"floor_surface"`
	ObjectsCatalog      string              `json:"objects_catalog"`
	BackgroundTreatment string              `json:"background_treatment"`
}

type GenerationParameters struct {
	Prompts           []string `json:"prompts"`
	Keywords          []string `json:"keywords"`
	TechnicalSettings string   `json:"technical_settings"`
	PostProcessing    string   `json:"post_processing"`
}

// StyleSummary condenses the analysis into a short comma-separated style hint.
func (v *VisualAnalysis) StyleSummary() string {
	if v == nil {
		return ""
	}
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}
	add(v.ArtisticElements.VisualStyle)
	add(v.ArtisticElements.Mood)
	add(v.Lighting.Type)
	add(v.Lighting.Mood)
	add(v.ColorProfile.ColorPalette)
	add(v.TechnicalSpecs.Medium)
	add(v.Composition.Layout)
	return strings.Join(parts, ", ")
}
