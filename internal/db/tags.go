package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
	"github.com/kimhsiao/creatorplanner/internal/models"
	"github.com/kimhsiao/creatorplanner/internal/uuid"
)

// TagChanges counts the store mutations made by one reconciliation.
type TagChanges struct {
	Added   int // join rows inserted
	Removed int // join rows deleted
	Created int // tag rows created
}

// IsZero reports whether nothing was written.
func (c TagChanges) IsZero() bool {
	return c == TagChanges{}
}

// ReconcileTags brings the idea's join rows in line with desired and
// returns the resulting tag set. A nil desired leaves everything as is.
// Tags are matched by exact name; missing tag rows are created.
func ReconcileTags(ctx context.Context, q Querier, ideaID string, desired *[]models.Tag, current []models.Tag, now time.Time) ([]models.Tag, TagChanges, error) {
	var changes TagChanges
	if desired == nil {
		return current, changes, nil
	}

	want := dedupeTags(*desired)
	if len(want) == 0 {
		if len(current) > 0 {
			res, err := q.ExecContext(ctx, "DELETE FROM idea_tags WHERE idea_id = ?", ideaID)
			if err != nil {
				return nil, changes, apperrors.Database("clear idea tags", err)
			}
			changes.Removed = affected(res, len(current))
		}
		return []models.Tag{}, changes, nil
	}

	wantNames := make(map[string]bool, len(want))
	for _, t := range want {
		wantNames[t.Name] = true
	}
	haveNames := make(map[string]bool, len(current))
	for _, t := range current {
		haveNames[t.Name] = true
	}

	var kept, toDelete []models.Tag
	for _, t := range current {
		if wantNames[t.Name] {
			kept = append(kept, t)
		} else {
			toDelete = append(toDelete, t)
		}
	}
	var toAdd []models.Tag
	for _, t := range want {
		if !haveNames[t.Name] {
			toAdd = append(toAdd, t)
		}
	}

	if len(toDelete) > 0 {
		args := make([]interface{}, 0, len(toDelete)+1)
		args = append(args, ideaID)
		for _, t := range toDelete {
			args = append(args, t.ID)
		}
		query := "DELETE FROM idea_tags WHERE idea_id = ? AND tag_id IN (" + placeholders(len(toDelete)) + ")"
		res, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, changes, apperrors.Database("remove idea tags", err)
		}
		changes.Removed = affected(res, len(toDelete))
	}

	result := make([]models.Tag, 0, len(kept)+len(toAdd))
	result = append(result, kept...)
	for _, t := range toAdd {
		tag, found, err := findTagByName(ctx, q, t.Name)
		if err != nil {
			return nil, changes, err
		}
		if !found {
			tag = models.Tag{ID: uuid.New(), Name: t.Name, CreatedAt: now}
			if err := insertTag(ctx, q, tag); err != nil {
				return nil, changes, err
			}
			changes.Created++
		}
		if _, err := q.ExecContext(ctx,
			"INSERT OR IGNORE INTO idea_tags (idea_id, tag_id) VALUES (?, ?)", ideaID, tag.ID); err != nil {
			return nil, changes, apperrors.Database("link idea tag", err)
		}
		changes.Added++
		result = append(result, tag)
	}

	return result, changes, nil
}

// dedupeTags drops blank and repeated names, keeping the first occurrence.
func dedupeTags(tags []models.Tag) []models.Tag {
	seen := make(map[string]bool, len(tags))
	out := make([]models.Tag, 0, len(tags))
	for _, t := range tags {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" || seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		out = append(out, t)
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// affected returns the driver's row count, or fallback when the driver
// cannot report it.
func affected(res sql.Result, fallback int) int {
	n, err := res.RowsAffected()
	if err != nil {
		return fallback
	}
	return int(n)
}

func findTagByName(ctx context.Context, q Querier, name string) (models.Tag, bool, error) {
	var tag models.Tag
	var createdAt string
	err := q.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM tags WHERE name = ? LIMIT 1", name).
		Scan(&tag.ID, &tag.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tag{}, false, nil
	}
	if err != nil {
		return models.Tag{}, false, apperrors.Database("look up tag", err)
	}
	if tag.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Tag{}, false, apperrors.Database("parse tag created_at", err)
	}
	return tag, true, nil
}

func insertTag(ctx context.Context, q Querier, tag models.Tag) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)",
		tag.ID, tag.Name, formatTime(tag.CreatedAt))
	return apperrors.Database("insert tag", err)
}

// TagRepository reads and creates rows of the tag catalogue.
type TagRepository struct {
	db   *sql.DB
	opts repoOptions
}

// NewTagRepository creates a TagRepository.
func NewTagRepository(db *sql.DB, opts ...Option) *TagRepository {
	return &TagRepository{db: db, opts: buildOptions("tags", opts)}
}

// ListTags returns every tag sorted by name.
func (r *TagRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at FROM tags ORDER BY name")
	if err != nil {
		return nil, apperrors.Database("list tags", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		var createdAt string
		if err := rows.Scan(&tag.ID, &tag.Name, &createdAt); err != nil {
			return nil, apperrors.Database("scan tag", err)
		}
		if tag.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, apperrors.Database("parse tag created_at", err)
		}
		tags = append(tags, tag)
	}
	return tags, apperrors.Database("list tags", rows.Err())
}

// GetTagByName returns the tag with exactly this name.
func (r *TagRepository) GetTagByName(ctx context.Context, name string) (models.Tag, error) {
	tag, found, err := findTagByName(ctx, r.db, name)
	if err != nil {
		return models.Tag{}, err
	}
	if !found {
		return models.Tag{}, apperrors.NotFound("tag", name)
	}
	return tag, nil
}

// CreateTag returns the tag named name, creating it when it does not exist.
func (r *TagRepository) CreateTag(ctx context.Context, name string) (models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		v := apperrors.NewValidation("tag")
		v.Add("name", "tag name is required")
		return models.Tag{}, v.Err()
	}

	tag, found, err := findTagByName(ctx, r.db, name)
	if err != nil || found {
		return tag, err
	}
	tag = models.Tag{ID: uuid.New(), Name: name, CreatedAt: r.opts.stamp()}
	if err := insertTag(ctx, r.db, tag); err != nil {
		r.opts.logger.Error("failed to create tag", err, map[string]interface{}{"name": name})
		return models.Tag{}, err
	}
	r.opts.logger.Debug("tag created", map[string]interface{}{"tag_id": tag.ID, "name": name})
	return tag, nil
}
