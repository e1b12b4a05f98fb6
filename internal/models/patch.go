package models

import (
	"strings"
	"time"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
)

// IdeaPatch lists the idea fields an update may change. Nil fields are
// left alone. Tags distinguishes "not part of the update" (nil) from
// "remove every tag" (pointer to an empty slice).
type IdeaPatch struct {
	Title          *string
	Description    *string
	Duration       *string
	ContentType    *string
	TargetAudience *Audience
	Outline        *string
	IsFavorite     *bool
	Tags           *[]Tag
}

// SetTags returns p with Tags set to the named tags.
func (p IdeaPatch) SetTags(names ...string) IdeaPatch {
	tags := TagsNamed(names...)
	p.Tags = &tags
	return p
}

// Validate checks only the fields present in the patch.
func (p IdeaPatch) Validate() error {
	v := apperrors.NewValidation("idea")
	if p.Title != nil {
		validateTitle(v, *p.Title)
	}
	if p.Duration != nil {
		validateDuration(v, *p.Duration)
	}
	if p.ContentType != nil && strings.TrimSpace(*p.ContentType) == "" {
		v.Add("content_type", "content type is required")
	}
	if p.TargetAudience != nil && strings.TrimSpace(string(*p.TargetAudience)) == "" {
		v.Add("target_audience", "target audience is required")
	}
	if p.Tags != nil {
		for _, t := range *p.Tags {
			if strings.TrimSpace(t.Name) == "" {
				v.Add("tags", "tag name is required")
			}
		}
	}
	return v.Err()
}

// Apply merges the non-tag fields of p into a copy of i.
func (p IdeaPatch) Apply(i Idea) Idea {
	out := i.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Duration != nil {
		out.Duration = *p.Duration
	}
	if p.ContentType != nil {
		out.ContentType = *p.ContentType
	}
	if p.TargetAudience != nil {
		out.TargetAudience = *p.TargetAudience
	}
	if p.Outline != nil {
		out.Outline = *p.Outline
	}
	if p.IsFavorite != nil {
		out.IsFavorite = *p.IsFavorite
	}
	return out
}

// VideoPatch lists the video fields an update may change. ClearEndDate
// removes the end date; it wins over EndDate.
type VideoPatch struct {
	Title        *string
	Description  *string
	Link         *string
	Status       *VideoStatus
	Platform     *Platform
	Type         *VideoType
	Priority     *Priority
	Tags         *string
	Deadline     *time.Time
	EndDate      *time.Time
	ClearEndDate bool
}

// Apply merges p into a copy of v.
func (p VideoPatch) Apply(v Video) Video {
	out := v.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Link != nil {
		out.Link = *p.Link
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Platform != nil {
		out.Platform = *p.Platform
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Tags != nil {
		out.Tags = *p.Tags
	}
	if p.Deadline != nil {
		out.Deadline = *p.Deadline
	}
	if p.EndDate != nil {
		end := *p.EndDate
		out.EndDate = &end
	}
	if p.ClearEndDate {
		out.EndDate = nil
	}
	return out
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
