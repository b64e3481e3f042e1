package festivals

import "time"

// Status values for a festival edition.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Festival represents one festival edition managed through the admin surface.
type Festival struct {
	ID          int64
	Name        string
	Year        int
	Location    string
	Description string
	Status      string
	StartsOn    time.Time
	EndsOn      time.Time
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
