package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionnaire_NormalizeAppliesFallbacks(t *testing.T) {
	q := Questionnaire{BrandDescription: "  Small-batch coffee roaster  "}

	got := q.Normalize(42)

	assert.Equal(t, "Company 42", got.BusinessName)
	assert.Equal(t, DefaultQuestionnaireIndustry, got.Industry)
	assert.Equal(t, DefaultTargetAudience, got.TargetAudience)
	assert.Equal(t, "Small-batch coffee roaster", got.BrandDescription)
}

func TestQuestionnaire_NormalizeKeepsAnswers(t *testing.T) {
	q := Questionnaire{
		BusinessName:     "Bean There",
		Industry:         "Coffee",
		TargetAudience:   "Commuters",
		BrandDescription: "Drive-through espresso",
		Tone:             " upbeat ",
	}

	got := q.Normalize(0)

	assert.Equal(t, "Bean There", got.BusinessName)
	assert.Equal(t, "Coffee", got.Industry)
	assert.Equal(t, "Commuters", got.TargetAudience)
	assert.Equal(t, "upbeat", got.Tone)
}

func TestQuestionnaire_NormalizeWithoutCompanyID(t *testing.T) {
	got := Questionnaire{BrandDescription: "x"}.Normalize(0)
	assert.Equal(t, "", got.BusinessName)
}

func TestQuestionnaire_Validate(t *testing.T) {
	ok := Questionnaire{BrandDescription: "Eco-friendly cleaning products"}
	assert.NoError(t, ok.Validate())

	missing := Questionnaire{BusinessName: "Acme"}
	assert.Error(t, missing.Validate())
}
