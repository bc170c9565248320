package db

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/jonathan/brand-studio/internal/types"
)

// -----------------------------------------------------------------------------
// Brand Guidelines Methods
// -----------------------------------------------------------------------------

const guidelineColumns = `id, company_id, content, questionnaire, profile, uploaded_profile,
	uploaded_file_url, document_hash, created_at, updated_at`

// SaveGeneratedGuidelines stores the rendered guidelines of a company with the
// questionnaire and profile they came from. The uploaded profile is kept.
func (db *DB) SaveGeneratedGuidelines(ctx context.Context, companyID int64, content string, q *types.Questionnaire, profile *types.BrandProfile) (*BrandGuidelines, error) {
	qJSON, err := marshalNullable(q)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questionnaire: %w", err)
	}
	profileJSON, err := marshalNullable(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile: %w", err)
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO brand_guidelines (company_id, content, questionnaire, profile)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (company_id) DO UPDATE
		   SET content = EXCLUDED.content,
		       questionnaire = EXCLUDED.questionnaire,
		       profile = EXCLUDED.profile,
		       updated_at = NOW()
		 RETURNING `+guidelineColumns,
		companyID, content, qJSON, profileJSON,
	)
	g, err := scanGuidelines(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save guidelines: %w", err)
	}
	return g, nil
}

// SaveUploadedAnalysis stores the profile extracted from an uploaded guideline
// document so that later brand runs can merge it.
func (db *DB) SaveUploadedAnalysis(ctx context.Context, companyID int64, a UploadedAnalysis) (*BrandGuidelines, error) {
	profileJSON, err := json.Marshal(a.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal uploaded profile: %w", err)
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO brand_guidelines (company_id, uploaded_profile, uploaded_file_url, document_hash)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (company_id) DO UPDATE
		   SET uploaded_profile = EXCLUDED.uploaded_profile,
		       uploaded_file_url = EXCLUDED.uploaded_file_url,
		       document_hash = EXCLUDED.document_hash,
		       updated_at = NOW()
		 RETURNING `+guidelineColumns,
		companyID, profileJSON, nullIfEmpty(a.FileURL), nullIfEmpty(a.DocumentHash),
	)
	g, err := scanGuidelines(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save uploaded analysis: %w", err)
	}
	return g, nil
}

// UpdateGuidelinesContent replaces the guideline text after a manual edit.
// Companies without a guidelines row get one. The generated profile is
// cleared because it no longer describes the text; the questionnaire and
// uploaded profile are kept.
func (db *DB) UpdateGuidelinesContent(ctx context.Context, companyID int64, content string) (*BrandGuidelines, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO brand_guidelines (company_id, content)
		 VALUES ($1, $2)
		 ON CONFLICT (company_id) DO UPDATE
		   SET content = EXCLUDED.content,
		       profile = NULL,
		       updated_at = NOW()
		 RETURNING `+guidelineColumns,
		companyID, content,
	)
	g, err := scanGuidelines(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update guidelines: %w", err)
	}
	return g, nil
}

// GetGuidelines returns the stored guidelines of a company, or nil when none exist.
func (db *DB) GetGuidelines(ctx context.Context, companyID int64) (*BrandGuidelines, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+guidelineColumns+` FROM brand_guidelines WHERE company_id = $1`,
		companyID,
	)
	g, err := scanGuidelines(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get guidelines: %w", err)
	}
	return g, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuidelines(row rowScanner) (*BrandGuidelines, error) {
	var (
		g                       BrandGuidelines
		qJSON, profJSON, upJSON []byte
		fileURL, documentHash   *string
	)
	if err := row.Scan(&g.ID, &g.CompanyID, &g.Content, &qJSON, &profJSON, &upJSON,
		&fileURL, &documentHash, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.UploadedFileURL, g.DocumentHash = fileURL, documentHash

	var err error
	if g.Questionnaire, err = unmarshalNullable[types.Questionnaire](qJSON); err != nil {
		return nil, fmt.Errorf("failed to decode questionnaire: %w", err)
	}
	if g.Profile, err = unmarshalNullable[types.BrandProfile](profJSON); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if g.UploadedProfile, err = unmarshalNullable[types.BrandProfile](upJSON); err != nil {
		return nil, fmt.Errorf("failed to decode uploaded profile: %w", err)
	}
	return &g, nil
}

// marshalNullable encodes v as JSON, or returns nil for a nil pointer so the
// column is stored as NULL.
func marshalNullable(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalNullable[T any](data []byte) (*T, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
