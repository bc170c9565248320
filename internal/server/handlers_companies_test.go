package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCreateCompany(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(jsonRequest(t, http.MethodPost, "/api/companies", map[string]string{
		"businessName": "Blue Bottle Coffee",
		"industry":     "Food & Beverage",
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeBody[CompanyResponse](t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Company)
	assert.Equal(t, "Blue Bottle Coffee", resp.Company.BusinessName)

	// Same normalized name returns the existing company
	w = env.do(jsonRequest(t, http.MethodPost, "/api/companies", map[string]string{"businessName": "blue bottle coffee!"}))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, resp.Company.ID, decodeBody[CompanyResponse](t, w).Company.ID)
}

func TestHandleCreateCompany_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"missing name", map[string]string{"industry": "Retail"}, "businessName"},
		{"punctuation only", map[string]string{"businessName": "!!!"}, "businessName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(jsonRequest(t, http.MethodPost, "/api/companies", tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeBody[ErrorResponse](t, w)
			assert.Equal(t, "validation_error", resp.Kind)
			assert.Contains(t, resp.Message, tt.field)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/companies", nil)
	w := env.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleListCompanies(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/companies", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"companies":[],"total":0}`, w.Body.String())

	env.store.addCompany("Acme")
	w = env.do(httptest.NewRequest(http.MethodGet, "/api/companies", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody[map[string]any](t, w)["total"])
}

func TestHandleGetCompany(t *testing.T) {
	env := newTestEnv(t)
	company := env.store.addCompany("Acme")
	_, err := env.store.UpdateGuidelinesContent(context.Background(), company.ID, "Be bold.")
	require.NoError(t, err)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/companies/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[CompanyResponse](t, w)
	assert.Equal(t, "Acme", resp.Company.BusinessName)
	require.NotNil(t, resp.Guidelines)
	assert.Equal(t, "Be bold.", resp.Guidelines.Content)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/companies/99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeBody[ErrorResponse](t, w).Kind)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/companies/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
