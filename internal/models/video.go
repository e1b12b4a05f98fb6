package models

import (
	"strings"
	"time"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
)

// Video is a scheduled content item. For stream videos Deadline is the
// start time and EndDate the planned end.
type Video struct {
	ID          string      `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	Link        string      `db:"link" json:"link,omitempty"`
	Status      VideoStatus `db:"status" json:"status"`
	Platform    Platform    `db:"platform" json:"platform"`
	Type        VideoType   `db:"type" json:"type"`
	Priority    Priority    `db:"priority" json:"priority"`
	Tags        string      `db:"tags" json:"tags,omitempty"` // Comma-separated
	Deadline    time.Time   `db:"deadline" json:"deadline"`
	EndDate     *time.Time  `db:"end_date" json:"end_date,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at,omitempty"`
}

// TableName returns the table name for Video.
func (Video) TableName() string {
	return "videos"
}

// Clone returns a copy that shares no pointers with v.
func (v Video) Clone() Video {
	out := v
	if v.EndDate != nil {
		end := *v.EndDate
		out.EndDate = &end
	}
	return out
}

// TagList splits the stored tag string. Entries are returned as stored.
func (v Video) TagList() []string {
	if v.Tags == "" {
		return nil
	}
	return strings.Split(v.Tags, ",")
}

// JoinTags builds the stored tag string from names.
func JoinTags(names []string) string {
	return strings.Join(names, ",")
}

// LastTouched is UpdatedAt, or CreatedAt for videos never updated.
func (v Video) LastTouched() time.Time {
	if v.UpdatedAt.IsZero() {
		return v.CreatedAt
	}
	return v.UpdatedAt
}

// Validate checks the full record. Statuses, types and priorities must be
// built in or present in catalog; platforms must be built in.
func (v Video) Validate(catalog Catalog) error {
	errs := apperrors.NewValidation("video")
	if strings.TrimSpace(v.ID) == "" {
		errs.Add("id", "id is required")
	}
	validateTitle(errs, v.Title)
	if !catalog.AllowsStatus(v.Status) {
		errs.Add("status", "unknown status "+quote(string(v.Status)))
	}
	if !v.Platform.IsKnown() {
		errs.Add("platform", "unknown platform "+quote(string(v.Platform)))
	}
	if !catalog.AllowsType(v.Type) {
		errs.Add("type", "unknown type "+quote(string(v.Type)))
	}
	if !catalog.AllowsPriority(v.Priority) {
		errs.Add("priority", "unknown priority "+quote(string(v.Priority)))
	}
	if v.Deadline.IsZero() {
		errs.Add("deadline", "deadline is required")
	}
	if v.EndDate != nil && !v.Deadline.IsZero() && v.EndDate.Before(v.Deadline) {
		errs.Add("end_date", "end date must not precede deadline")
	}
	if v.CreatedAt.IsZero() {
		errs.Add("created_at", "created_at is required")
	}
	return errs.Err()
}

func quote(s string) string {
	return `"` + s + `"`
}
