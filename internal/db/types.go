package db

import (
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/brand-studio/internal/runstate"
	"github.com/jonathan/brand-studio/internal/types"
)

// Company represents a business using the studio
type Company struct {
	ID             int64     `json:"id"`
	BusinessName   string    `json:"businessName"`
	NameNormalized string    `json:"-"`
	Industry       *string   `json:"industry,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// BrandGuidelines is the stored guideline state of a company: the rendered
// text plus the profiles it was built from.
type BrandGuidelines struct {
	ID              int64                `json:"id"`
	CompanyID       int64                `json:"companyId"`
	Content         string               `json:"content"`
	Questionnaire   *types.Questionnaire `json:"questionnaire,omitempty"`
	Profile         *types.BrandProfile  `json:"profile,omitempty"`
	UploadedProfile *types.BrandProfile  `json:"uploadedProfile,omitempty"`
	UploadedFileURL *string              `json:"uploadedFileUrl,omitempty"`
	DocumentHash    *string              `json:"-"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// Document returns the guideline text as a document for content runs,
// carrying the structured industry when a profile is stored. Companies
// without guideline text get the default description.
func (g *BrandGuidelines) Document() types.GuidelineDocument {
	if g == nil || strings.TrimSpace(g.Content) == "" {
		return types.GuidelineDocument{Text: types.DefaultGuidelinesText}
	}
	doc := types.GuidelineDocument{Text: g.Content}
	if g.Profile != nil {
		doc.Industry = g.Profile.IndustryName()
	}
	return doc
}

// UploadedAnalysis holds the result of analyzing an uploaded guideline document.
type UploadedAnalysis struct {
	Profile      types.BrandProfile
	FileURL      string
	DocumentHash string
}

// RunRecord is a finished pipeline run as stored in pipeline_runs.
type RunRecord struct {
	ID          string               `json:"id"`
	Kind        string               `json:"kind"`
	CompanyID   *int64               `json:"companyId,omitempty"`
	Status      string               `json:"status"`
	FailureKind *string              `json:"failureKind,omitempty"`
	Error       *string              `json:"error,omitempty"`
	Steps       []runstate.StepState `json:"steps"`
	CreatedAt   time.Time            `json:"createdAt"`
	CompletedAt *time.Time           `json:"completedAt,omitempty"`
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeName converts a company name to a normalized form for matching
// Example: "Blue Bottle Coffee, Inc." -> "bluebottlecoffeeinc"
func NormalizeName(name string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func nullIfZero(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
