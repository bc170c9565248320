package types

import "time"

// ContentPost is a stored piece of generated social content.
type ContentPost struct {
	ID                 int64     `json:"id"`
	CompanyID          int64     `json:"companyId"`
	Topic              string    `json:"topic"`
	Platform           string    `json:"platform"`
	ReferenceImageURLs []string  `json:"referenceImageUrls"`
	Prompt             string    `json:"prompt"`
	Caption            string    `json:"caption"`
	ImageURL           string    `json:"imageUrl,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
