package activity

import "time"

// Entry is one security-relevant action to append to the log.
type Entry struct {
	ActorID    int64
	Action     string
	TargetType string
	TargetID   int64
	Details    map[string]any
	IP         string
	UserAgent  string
}

// Record is a stored activity log row. Rows are immutable once written.
type Record struct {
	ID         int64
	ActorID    int64
	ActorName  string
	Action     string
	TargetType string
	TargetID   int64
	Details    map[string]any
	IP         string
	UserAgent  string
	CreatedAt  time.Time
}

// TimelineFilters narrows the activity listing.
type TimelineFilters struct {
	ActorID  int64
	Action   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// Action labels recorded by the admin surface.
const (
	ActionUserCreated       = "user_created"
	ActionUserDeleted       = "user_deleted"
	ActionUserRoleChanged   = "user_role_changed"
	ActionUserOverridesSet  = "user_overrides_set"
	ActionUserStatusToggled = "user_status_toggled"
	ActionUserUnlocked      = "user_unlocked"
	ActionLogin             = "login"
	ActionLoginFailed       = "login_failed"
	ActionLogout            = "logout"
	ActionFestivalCreated   = "festival_created"
	ActionFestivalUpdated   = "festival_updated"
	ActionFestivalPublished = "festival_published"
	ActionFestivalDeleted   = "festival_deleted"
	ActionPageCreated       = "page_created"
	ActionPageUpdated       = "page_updated"
	ActionPagePublished     = "page_published"
	ActionPageDeleted       = "page_deleted"
)
