package pages

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Page is a CMS page managed through the admin surface.
type Page struct {
	ID        int64
	Slug      string
	Title     string
	Body      string
	Status    string
	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
