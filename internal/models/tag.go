// Package models provides the planner's entity definitions.
package models

import (
	"strings"
	"time"
)

// Tag is a label attached to ideas. Tags are unique by name; lookups are
// name based and case sensitive.
type Tag struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TableName returns the table name for Tag.
func (Tag) TableName() string {
	return "tags"
}

// IdeaTag is a row of the idea/tag join table.
type IdeaTag struct {
	IdeaID string `db:"idea_id" json:"idea_id"`
	TagID  string `db:"tag_id" json:"tag_id"`
}

// TableName returns the table name for IdeaTag.
func (IdeaTag) TableName() string {
	return "idea_tags"
}

// TagsNamed builds unsaved tags from names, skipping blank entries.
func TagsNamed(names ...string) []Tag {
	tags := make([]Tag, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		tags = append(tags, Tag{Name: n})
	}
	return tags
}

// TagNames returns the names of tags in order.
func TagNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}
