package db

import (
	"context"
	"time"

	"github.com/kimhsiao/creatorplanner/internal/models"
)

// IdeaStore defines the idea operations the presentation layer calls.
type IdeaStore interface {
	// Load replaces the cached ideas with the stored ones.
	Load(ctx context.Context) ([]models.Idea, error)

	// Add stores a new idea and its tags.
	Add(ctx context.Context, idea models.Idea) (models.Idea, error)

	// Update applies a partial change.
	Update(ctx context.Context, id string, patch models.IdeaPatch) (models.Idea, error)

	// Delete removes an idea.
	Delete(ctx context.Context, id string) error

	// ConvertToVideo consumes an idea and creates a video from it.
	ConvertToVideo(ctx context.Context, idea models.Idea, deadline time.Time, priority models.Priority) (ConversionResult, error)

	// Ideas returns the cached list.
	Ideas() []models.Idea
}

// VideoStore defines the video operations the presentation layer calls.
type VideoStore interface {
	Load(ctx context.Context) ([]models.Video, error)
	Add(ctx context.Context, video models.Video) (models.Video, error)
	Update(ctx context.Context, id string, patch models.VideoPatch) (models.Video, error)
	Delete(ctx context.Context, id string) error
	Videos() []models.Video
}

// SettingsStore defines the settings operations.
type SettingsStore interface {
	Load(ctx context.Context) (models.SettingsGroups, error)
	Initialize(ctx context.Context) (models.SettingsGroups, error)
	Add(ctx context.Context, s models.Setting) (models.Setting, error)
	Update(ctx context.Context, s models.Setting) (models.Setting, error)
	Delete(ctx context.Context, id string) error
	Groups() models.SettingsGroups
	Catalog() models.Catalog
}

// TagStore defines the tag catalogue operations.
type TagStore interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTagByName(ctx context.Context, name string) (models.Tag, error)
	CreateTag(ctx context.Context, name string) (models.Tag, error)
}

// Ensure the repositories implement the interfaces at compile time.
var (
	_ IdeaStore     = (*IdeaRepository)(nil)
	_ VideoStore    = (*VideoRepository)(nil)
	_ VideoSink     = (*VideoRepository)(nil)
	_ SettingsStore = (*SettingsRepository)(nil)
	_ TagStore      = (*TagRepository)(nil)
)
