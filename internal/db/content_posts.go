package db

import (
	"context"
	"fmt"

	"github.com/jonathan/brand-studio/internal/types"
)

// -----------------------------------------------------------------------------
// Content Post Methods
// -----------------------------------------------------------------------------

const postColumns = `id, company_id, topic, platform, reference_image_urls, prompt, caption,
	image_url, created_at, updated_at`

// SaveContentPost inserts post when its ID is zero and updates the stored
// post otherwise. The stored row is written back into post.
func (db *DB) SaveContentPost(ctx context.Context, post *types.ContentPost) error {
	refs := post.ReferenceImageURLs
	if refs == nil {
		refs = []string{}
	}

	var row rowScanner
	if post.ID == 0 {
		row = db.pool.QueryRow(ctx,
			`INSERT INTO content_posts (company_id, topic, platform, reference_image_urls, prompt, caption, image_url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING `+postColumns,
			post.CompanyID, post.Topic, post.Platform, refs, post.Prompt, post.Caption, nullIfEmpty(post.ImageURL),
		)
	} else {
		row = db.pool.QueryRow(ctx,
			`UPDATE content_posts
			 SET topic = $3, platform = $4, reference_image_urls = $5, prompt = $6, caption = $7,
			     image_url = $8, updated_at = NOW()
			 WHERE id = $1 AND company_id = $2
			 RETURNING `+postColumns,
			post.ID, post.CompanyID, post.Topic, post.Platform, refs, post.Prompt, post.Caption, nullIfEmpty(post.ImageURL),
		)
	}

	saved, err := scanPost(row)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("content post %d: %w", post.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to save content post: %w", err)
	}
	*post = *saved
	return nil
}

// LatestContentPost returns the most recent post of a company, or nil when it has none.
func (db *DB) LatestContentPost(ctx context.Context, companyID int64) (*types.ContentPost, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM content_posts
		 WHERE company_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		companyID,
	)
	post, err := scanPost(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest content post: %w", err)
	}
	return post, nil
}

func scanPost(row rowScanner) (*types.ContentPost, error) {
	var (
		p        types.ContentPost
		imageURL *string
	)
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Topic, &p.Platform, &p.ReferenceImageURLs,
		&p.Prompt, &p.Caption, &imageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if imageURL != nil {
		p.ImageURL = *imageURL
	}
	return &p, nil
}
