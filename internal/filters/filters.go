// Package filters narrows and orders the cached idea and video lists the
// way the list views do. Empty criteria match everything.
package filters

import (
	"sort"
	"strings"

	"github.com/kimhsiao/creatorplanner/internal/models"
)

// IdeaFilter selects ideas. All set criteria must match.
type IdeaFilter struct {
	// Search is a case-insensitive substring of the title.
	Search string
	// Tags matches ideas carrying any of the names.
	Tags         []string
	ContentTypes []string
	Audiences    []models.Audience
	// FavoritesOnly keeps only favorites.
	FavoritesOnly bool
}

// IsEmpty reports whether the filter matches everything.
func (f IdeaFilter) IsEmpty() bool {
	return strings.TrimSpace(f.Search) == "" && len(f.Tags) == 0 &&
		len(f.ContentTypes) == 0 && len(f.Audiences) == 0 && !f.FavoritesOnly
}

// Match reports whether idea passes the filter.
func (f IdeaFilter) Match(idea models.Idea) bool {
	if !matchTitle(f.Search, idea.Title) {
		return false
	}
	if len(f.Tags) > 0 && !anyTag(f.Tags, idea) {
		return false
	}
	if !oneOf(f.ContentTypes, idea.ContentType) {
		return false
	}
	if !oneOf(f.Audiences, idea.TargetAudience) {
		return false
	}
	return !f.FavoritesOnly || idea.IsFavorite
}

// Apply returns the matching ideas in input order.
func (f IdeaFilter) Apply(ideas []models.Idea) []models.Idea {
	out := make([]models.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if f.Match(idea) {
			out = append(out, idea)
		}
	}
	return out
}

// VideoFilter selects videos. All set criteria must match.
type VideoFilter struct {
	Search     string
	Statuses   []models.VideoStatus
	Types      []models.VideoType
	Priorities []models.Priority
	Platforms  []models.Platform
}

// IsEmpty reports whether the filter matches everything.
func (f VideoFilter) IsEmpty() bool {
	return strings.TrimSpace(f.Search) == "" && len(f.Statuses) == 0 &&
		len(f.Types) == 0 && len(f.Priorities) == 0 && len(f.Platforms) == 0
}

// Match reports whether v passes the filter.
func (f VideoFilter) Match(v models.Video) bool {
	return matchTitle(f.Search, v.Title) &&
		oneOf(f.Statuses, v.Status) &&
		oneOf(f.Types, v.Type) &&
		oneOf(f.Priorities, v.Priority) &&
		oneOf(f.Platforms, v.Platform)
}

// Apply returns the matching videos in input order.
func (f VideoFilter) Apply(videos []models.Video) []models.Video {
	out := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if f.Match(v) {
			out = append(out, v)
		}
	}
	return out
}

func matchTitle(search, title string) bool {
	search = strings.TrimSpace(search)
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(search))
}

func anyTag(names []string, idea models.Idea) bool {
	for _, name := range names {
		if idea.HasTag(name) {
			return true
		}
	}
	return false
}

// oneOf is true when allowed is empty or holds v.
func oneOf[T comparable](allowed []T, v T) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// SortIdeas orders ideas by creation time, oldest first, then by id.
func SortIdeas(ideas []models.Idea) {
	sort.SliceStable(ideas, func(i, j int) bool {
		if !ideas[i].CreatedAt.Equal(ideas[j].CreatedAt) {
			return ideas[i].CreatedAt.Before(ideas[j].CreatedAt)
		}
		return ideas[i].ID < ideas[j].ID
	})
}

// SortVideos orders videos by creation time, oldest first, then by id.
func SortVideos(videos []models.Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		if !videos[i].CreatedAt.Equal(videos[j].CreatedAt) {
			return videos[i].CreatedAt.Before(videos[j].CreatedAt)
		}
		return videos[i].ID < videos[j].ID
	})
}

// SortVideosByDeadline orders videos by deadline, soonest first, which is
// how the schedule lists them.
func SortVideosByDeadline(videos []models.Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		if !videos[i].Deadline.Equal(videos[j].Deadline) {
			return videos[i].Deadline.Before(videos[j].Deadline)
		}
		return videos[i].ID < videos[j].ID
	})
}
