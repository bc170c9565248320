package db

import (
	"context"
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Company Methods
// -----------------------------------------------------------------------------

const companyColumns = `id, business_name, name_normalized, industry, created_at, updated_at`

// CreateCompany inserts a company, returning the existing row when a company
// with the same normalized name is already stored.
func (db *DB) CreateCompany(ctx context.Context, businessName, industry string) (*Company, error) {
	businessName = strings.TrimSpace(businessName)
	normalized := NormalizeName(businessName)
	if normalized == "" {
		return nil, fmt.Errorf("company name cannot be empty")
	}

	var c Company
	err := db.pool.QueryRow(ctx,
		`INSERT INTO companies (business_name, name_normalized, industry)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name_normalized) DO UPDATE
		   SET industry = COALESCE(EXCLUDED.industry, companies.industry), updated_at = NOW()
		 RETURNING `+companyColumns,
		businessName, normalized, nullIfEmpty(industry),
	).Scan(&c.ID, &c.BusinessName, &c.NameNormalized, &c.Industry, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return &c, nil
}

// GetCompany retrieves a company by ID, returning nil when it does not exist
func (db *DB) GetCompany(ctx context.Context, id int64) (*Company, error) {
	var c Company
	err := db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.BusinessName, &c.NameNormalized, &c.Industry, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// ListCompanies returns all companies, newest first
func (db *DB) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []Company{}
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.BusinessName, &c.NameNormalized, &c.Industry, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}
