package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jonathan/brand-studio/internal/db"
)

// CreateCompanyRequest is the body of POST /api/companies
type CreateCompanyRequest struct {
	BusinessName string `json:"businessName" validate:"required,max=200"`
	Industry     string `json:"industry" validate:"max=100"`
}

// CompanyResponse is a company with its stored guidelines, if any.
type CompanyResponse struct {
	Success    bool                `json:"success"`
	Company    *db.Company         `json:"company"`
	Guidelines *db.BrandGuidelines `json:"guidelines,omitempty"`
}

// handleListCompanies lists all companies
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.ListCompanies(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if companies == nil {
		companies = []db.Company{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":   true,
		"companies": companies,
		"total":     len(companies),
	})
}

// handleCreateCompany creates a company, or returns the existing company
// with the same normalized name.
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req CreateCompanyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if db.NormalizeName(req.BusinessName) == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "businessName", Message: "must contain letters or digits"})
		return
	}

	company, err := s.store.CreateCompany(r.Context(), req.BusinessName, req.Industry)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, CompanyResponse{Success: true, Company: company})
}

// handleGetCompany retrieves a company by ID with its guidelines
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseCompanyID(mux.Vars(r)["id"])
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	company, err := s.store.GetCompany(r.Context(), companyID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if company == nil {
		s.errorResponse(w, r, &ErrCompanyNotFound{CompanyID: companyID})
		return
	}

	guidelines, err := s.store.GetGuidelines(r.Context(), companyID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, CompanyResponse{Success: true, Company: company, Guidelines: guidelines})
}
