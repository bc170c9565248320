package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Questionnaire defaults applied when the corresponding answer is blank.
const (
	DefaultQuestionnaireIndustry = "General"
	DefaultTargetAudience        = "Modern consumers"
)

// Questionnaire holds the answers a business gives about itself.
type Questionnaire struct {
	BusinessName     string `json:"business_name"`
	Industry         string `json:"industry"`
	TargetAudience   string `json:"target_audience"`
	BrandDescription string `json:"brand_description" validate:"required"`
	Tone             string `json:"tone"`
	Competitors      string `json:"competitors"`
	UniqueValue      string `json:"unique_value"`
}

// Normalize trims every answer and fills the documented fallbacks.
// companyID is used for the business name fallback when non-zero.
func (q Questionnaire) Normalize(companyID int64) Questionnaire {
	out := Questionnaire{
		BusinessName:     strings.TrimSpace(q.BusinessName),
		Industry:         strings.TrimSpace(q.Industry),
		TargetAudience:   strings.TrimSpace(q.TargetAudience),
		BrandDescription: strings.TrimSpace(q.BrandDescription),
		Tone:             strings.TrimSpace(q.Tone),
		Competitors:      strings.TrimSpace(q.Competitors),
		UniqueValue:      strings.TrimSpace(q.UniqueValue),
	}
	if out.BusinessName == "" && companyID > 0 {
		out.BusinessName = fmt.Sprintf("Company %d", companyID)
	}
	if out.Industry == "" {
		out.Industry = DefaultQuestionnaireIndustry
	}
	if out.TargetAudience == "" {
		out.TargetAudience = DefaultTargetAudience
	}
	return out
}

// Validate checks that the questionnaire carries a brand description.
func (q *Questionnaire) Validate() error {
	validate := validator.New()
	return validate.Struct(q)
}
