package db

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
	"github.com/kimhsiao/creatorplanner/internal/events"
	"github.com/kimhsiao/creatorplanner/internal/models"
	"github.com/kimhsiao/creatorplanner/internal/uuid"
)

// Separators used when tags are folded into one column by GROUP_CONCAT.
// Control characters cannot appear in names typed into a form.
const (
	tagFieldSep  = "\x1f"
	tagRecordSep = "\x1e"
)

const loadIdeasQuery = `
SELECT i.id, i.title, i.description, i.duration, i.content_type, i.target_audience,
	i.outline, i.is_favorite, i.created_at, i.updated_at,
	GROUP_CONCAT(t.id || char(31) || t.name || char(31) || t.created_at, char(30)) AS tag_data
FROM idea_bank i
LEFT JOIN idea_tags it ON it.idea_id = i.id
LEFT JOIN tags t ON t.id = it.tag_id
GROUP BY i.id
`

// ConversionResult is the outcome of turning an idea into a video. Video
// tags are a flat string, so the idea's relational tags do not carry over;
// DroppedTags lists them.
type ConversionResult struct {
	Video       models.Video
	DroppedTags []string
}

// IdeaRepository owns the authoritative list of ideas. Mutations hold the
// write lock across the store call and the cache update.
type IdeaRepository struct {
	db   *sql.DB
	opts repoOptions

	mu    sync.RWMutex
	ideas []models.Idea
}

// NewIdeaRepository creates an IdeaRepository with an empty cache. Call
// Load to fill it.
func NewIdeaRepository(db *sql.DB, opts ...Option) *IdeaRepository {
	return &IdeaRepository{db: db, opts: buildOptions("ideas", opts)}
}

// Load replaces the cache with the stored ideas. Order is whatever the
// store returns.
func (r *IdeaRepository) Load(ctx context.Context) ([]models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ideas, err := r.query(ctx)
	if err != nil {
		r.opts.logger.Error("failed to load ideas", err)
		return nil, err
	}
	r.ideas = ideas
	r.opts.logger.Debug("ideas loaded", map[string]interface{}{"count": len(ideas)})
	r.opts.publish(events.TopicIdeas, events.ActionLoaded, "")
	return cloneIdeas(ideas), nil
}

func (r *IdeaRepository) query(ctx context.Context) ([]models.Idea, error) {
	rows, err := r.db.QueryContext(ctx, loadIdeasQuery)
	if err != nil {
		return nil, apperrors.Database("load ideas", err)
	}
	defer rows.Close()

	ideas := []models.Idea{}
	for rows.Next() {
		var (
			idea                                   models.Idea
			description, outline, updated, tagData sql.NullString
			audience, favorite, created            string
		)
		if err := rows.Scan(&idea.ID, &idea.Title, &description, &idea.Duration,
			&idea.ContentType, &audience, &outline, &favorite, &created, &updated, &tagData); err != nil {
			return nil, apperrors.Database("scan idea", err)
		}
		idea.Description = description.String
		idea.Outline = outline.String
		idea.TargetAudience = models.Audience(audience)
		idea.IsFavorite = parseFavorite(favorite)
		if idea.CreatedAt, err = parseTime(created); err != nil {
			return nil, apperrors.Database("parse idea created_at", err)
		}
		if updatedAt, err := parseNullTime(updated); err != nil {
			return nil, apperrors.Database("parse idea updated_at", err)
		} else if updatedAt != nil {
			idea.UpdatedAt = *updatedAt
		}
		if idea.Tags, err = parseTagData(tagData.String); err != nil {
			return nil, apperrors.Database("parse idea tags", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database("load ideas", err)
	}
	return ideas, nil
}

// parseFavorite accepts the stored "true"/"false" text and the 1/0 older
// rows may carry.
func parseFavorite(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true
	default:
		return false
	}
}

func formatFavorite(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// parseTagData splits the GROUP_CONCAT column back into tags.
func parseTagData(data string) ([]models.Tag, error) {
	tags := []models.Tag{}
	if data == "" {
		return tags, nil
	}
	for _, record := range strings.Split(data, tagRecordSep) {
		fields := strings.Split(record, tagFieldSep)
		if len(fields) != 3 {
			continue
		}
		createdAt, err := parseTime(fields[2])
		if err != nil {
			return nil, err
		}
		tags = append(tags, models.Tag{ID: fields[0], Name: fields[1], CreatedAt: createdAt})
	}
	return tags, nil
}

// Add validates and stores a new idea together with its tags. An id is
// generated when the idea has none.
func (r *IdeaRepository) Add(ctx context.Context, idea models.Idea) (models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idea = idea.Clone()
	if idea.ID == "" {
		idea.ID = uuid.New()
	}
	now := r.opts.stamp()
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = now
	}
	if idea.UpdatedAt.IsZero() {
		idea.UpdatedAt = idea.CreatedAt
	}
	if err := idea.Validate(); err != nil {
		return models.Idea{}, err
	}

	desired := idea.Tags
	if desired == nil {
		desired = []models.Tag{}
	}
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO idea_bank (id, title, description, duration, content_type, target_audience,
			outline, is_favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			idea.ID, idea.Title, idea.Description, idea.Duration, idea.ContentType,
			string(idea.TargetAudience), idea.Outline, formatFavorite(idea.IsFavorite),
			formatTime(idea.CreatedAt), formatTime(idea.UpdatedAt))
		if err != nil {
			return apperrors.Database("insert idea", err)
		}
		idea.Tags, _, err = ReconcileTags(ctx, tx, idea.ID, &desired, nil, now)
		return err
	})
	if err != nil {
		r.opts.logger.Error("failed to add idea", err, map[string]interface{}{"idea_id": idea.ID})
		return models.Idea{}, err
	}

	r.ideas = append(r.ideas, idea)
	r.opts.logger.Debug("idea added", map[string]interface{}{
		"idea_id": idea.ID,
		"tags":    len(idea.Tags),
	})
	r.opts.publish(events.TopicIdeas, events.ActionAdded, idea.ID)
	return idea.Clone(), nil
}

// ideaColumns maps patch fields onto columns. Only these columns can be
// named in an update.
func ideaColumns(p models.IdeaPatch) ([]string, []interface{}) {
	var cols []string
	var args []interface{}
	add := func(col string, v interface{}) {
		cols = append(cols, col+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Duration != nil {
		add("duration", *p.Duration)
	}
	if p.ContentType != nil {
		add("content_type", *p.ContentType)
	}
	if p.TargetAudience != nil {
		add("target_audience", string(*p.TargetAudience))
	}
	if p.Outline != nil {
		add("outline", *p.Outline)
	}
	if p.IsFavorite != nil {
		add("is_favorite", formatFavorite(*p.IsFavorite))
	}
	return cols, args
}

// Update applies patch to the idea with id. Fields absent from the patch
// keep their values; tags change only when patch.Tags is set.
func (r *IdeaRepository) Update(ctx context.Context, id string, patch models.IdeaPatch) (models.Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.Idea{}, apperrors.NotFound("idea", id)
	}
	if err := patch.Validate(); err != nil {
		return models.Idea{}, err
	}
	current := r.ideas[idx]
	now := r.opts.stamp()

	cols, args := ideaColumns(patch)
	cols = append(cols, "updated_at = ?")
	args = append(args, formatTime(now), id)
	query := "UPDATE idea_bank SET " + strings.Join(cols, ", ") + " WHERE id = ?"

	var (
		tags    []models.Tag
		changes TagChanges
	)
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return apperrors.Database("update idea", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperrors.NotFound("idea", id)
		}
		tags, changes, err = ReconcileTags(ctx, tx, id, patch.Tags, current.Tags, now)
		return err
	})
	if err != nil {
		r.opts.logger.Error("failed to update idea", err, map[string]interface{}{"idea_id": id})
		return models.Idea{}, err
	}

	updated := patch.Apply(current)
	updated.Tags = tags
	updated.UpdatedAt = now
	r.ideas[idx] = updated

	r.opts.logger.Debug("idea updated", map[string]interface{}{
		"idea_id":      id,
		"tags_added":   changes.Added,
		"tags_removed": changes.Removed,
	})
	r.opts.publish(events.TopicIdeas, events.ActionUpdated, id)
	return updated.Clone(), nil
}

// Delete removes the idea. Its join rows go with it; tag rows stay even
// when no idea references them any more.
func (r *IdeaRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, "DELETE FROM idea_bank WHERE id = ?", id)
	if err != nil {
		err = apperrors.Database("delete idea", err)
		r.opts.logger.Error("failed to delete idea", err, map[string]interface{}{"idea_id": id})
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("idea", id)
	}

	r.remove(id)
	r.opts.logger.Debug("idea deleted", map[string]interface{}{"idea_id": id})
	r.opts.publish(events.TopicIdeas, events.ActionDeleted, id)
	return nil
}

// ConvertToVideo moves idea into the video table: a video with the same id
// is inserted and the idea is deleted in one transaction. The video starts
// idle on the default platform, with the idea's content type as its type.
func (r *IdeaRepository) ConvertToVideo(ctx context.Context, idea models.Idea, deadline time.Time, priority models.Priority) (ConversionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(idea.ID)
	if idx < 0 {
		return ConversionResult{}, apperrors.NotFound("idea", idea.ID)
	}
	source := r.ideas[idx]

	video := models.Video{
		ID:          source.ID,
		Title:       source.Title,
		Description: source.Description,
		Status:      models.StatusIdle,
		Platform:    models.DefaultPlatform,
		Type:        models.VideoType(source.ContentType),
		Priority:    priority,
		Deadline:    deadline.UTC(),
		CreatedAt:   r.opts.stamp(),
	}
	if err := video.Validate(r.opts.catalog()); err != nil {
		return ConversionResult{}, err
	}

	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertVideo(ctx, tx, video); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM idea_bank WHERE id = ?", source.ID)
		if err != nil {
			return apperrors.Database("delete converted idea", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperrors.NotFound("idea", source.ID)
		}
		return nil
	})
	if err != nil {
		r.opts.logger.Error("failed to convert idea", err, map[string]interface{}{"idea_id": source.ID})
		return ConversionResult{}, err
	}

	r.remove(source.ID)
	if r.opts.sink != nil {
		r.opts.sink.Adopt(video)
	}

	result := ConversionResult{Video: video, DroppedTags: models.TagNames(source.Tags)}
	fields := map[string]interface{}{"idea_id": source.ID, "priority": string(priority)}
	if len(result.DroppedTags) > 0 {
		fields["dropped_tags"] = strings.Join(result.DroppedTags, ",")
	}
	r.opts.logger.Info("idea converted to video", fields)
	r.opts.publish(events.TopicIdeas, events.ActionConverted, source.ID)
	return result, nil
}

// Ideas returns a copy of the cached list.
func (r *IdeaRepository) Ideas() []models.Idea {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneIdeas(r.ideas)
}

// Get returns the cached idea with id.
func (r *IdeaRepository) Get(id string) (models.Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := r.indexOf(id); idx >= 0 {
		return r.ideas[idx].Clone(), nil
	}
	return models.Idea{}, apperrors.NotFound("idea", id)
}

func (r *IdeaRepository) indexOf(id string) int {
	for i, idea := range r.ideas {
		if idea.ID == id {
			return i
		}
	}
	return -1
}

func (r *IdeaRepository) remove(id string) {
	kept := r.ideas[:0]
	for _, idea := range r.ideas {
		if idea.ID != id {
			kept = append(kept, idea)
		}
	}
	r.ideas = kept
}

func cloneIdeas(ideas []models.Idea) []models.Idea {
	out := make([]models.Idea, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Clone()
	}
	return out
}
