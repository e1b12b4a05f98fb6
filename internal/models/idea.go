package models

import (
	"regexp"
	"strings"
	"time"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
)

// durationPattern accepts "M:SS" and "MM:SS" style running times.
var durationPattern = regexp.MustCompile(`^\d+:[0-5]\d$`)

// Idea is a draft content concept that has not been scheduled yet.
type Idea struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description,omitempty"`
	Duration       string    `db:"duration" json:"duration"`
	ContentType    string    `db:"content_type" json:"content_type"`
	TargetAudience Audience  `db:"target_audience" json:"target_audience"`
	Outline        string    `db:"outline" json:"outline,omitempty"`
	IsFavorite     bool      `db:"is_favorite" json:"is_favorite"`
	Tags           []Tag     `db:"-" json:"tags"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for Idea.
func (Idea) TableName() string {
	return "idea_bank"
}

// Clone returns a copy that shares no slices with i.
func (i Idea) Clone() Idea {
	out := i
	if i.Tags != nil {
		out.Tags = make([]Tag, len(i.Tags))
		copy(out.Tags, i.Tags)
	}
	return out
}

// HasTag reports whether the idea carries a tag with exactly this name.
func (i Idea) HasTag(name string) bool {
	for _, t := range i.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Validate checks the full idea.
func (i Idea) Validate() error {
	v := apperrors.NewValidation("idea")
	if strings.TrimSpace(i.ID) == "" {
		v.Add("id", "id is required")
	}
	validateTitle(v, i.Title)
	validateDuration(v, i.Duration)
	if strings.TrimSpace(i.ContentType) == "" {
		v.Add("content_type", "content type is required")
	}
	if strings.TrimSpace(string(i.TargetAudience)) == "" {
		v.Add("target_audience", "target audience is required")
	}
	for _, t := range i.Tags {
		if strings.TrimSpace(t.Name) == "" {
			v.Add("tags", "tag name is required")
		}
	}
	if i.CreatedAt.IsZero() {
		v.Add("created_at", "created_at is required")
	}
	if !i.UpdatedAt.IsZero() && i.UpdatedAt.Before(i.CreatedAt) {
		v.Add("updated_at", "updated_at must not precede created_at")
	}
	return v.Err()
}

func validateTitle(v *apperrors.ValidationErrors, title string) {
	if strings.TrimSpace(title) == "" {
		v.Add("title", "Title is required")
	}
}

func validateDuration(v *apperrors.ValidationErrors, d string) {
	if !durationPattern.MatchString(d) {
		v.Add("duration", "duration must look like M:SS or MM:SS")
	}
}
