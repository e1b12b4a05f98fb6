package db

import (
	"context"
	"database/sql"
	"sync"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
	"github.com/kimhsiao/creatorplanner/internal/events"
	"github.com/kimhsiao/creatorplanner/internal/models"
	"github.com/kimhsiao/creatorplanner/internal/uuid"
)

// VideoSink accepts videos created outside the video repository, such as
// by idea conversion, so its cache stays current without a reload.
type VideoSink interface {
	Adopt(video models.Video)
}

// VideoRepository owns the authoritative list of videos.
type VideoRepository struct {
	db   *sql.DB
	opts repoOptions

	mu     sync.RWMutex
	videos []models.Video
}

// NewVideoRepository creates a VideoRepository with an empty cache.
func NewVideoRepository(db *sql.DB, opts ...Option) *VideoRepository {
	return &VideoRepository{db: db, opts: buildOptions("videos", opts)}
}

// Load replaces the cache with the stored videos in store order.
func (r *VideoRepository) Load(ctx context.Context) ([]models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	videos, err := r.query(ctx)
	if err != nil {
		r.opts.logger.Error("failed to load videos", err)
		return nil, err
	}
	r.videos = videos
	r.opts.logger.Debug("videos loaded", map[string]interface{}{"count": len(videos)})
	r.opts.publish(events.TopicVideos, events.ActionLoaded, "")
	return cloneVideos(videos), nil
}

func (r *VideoRepository) query(ctx context.Context) ([]models.Video, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, title, description, link, status, platform, type, priority, tags,
		deadline, created_at, updated_at, end_date
	FROM videos`)
	if err != nil {
		return nil, apperrors.Database("load videos", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		var (
			v                                         models.Video
			description, link, tags, updated, endDate sql.NullString
			status, platform, videoType, priority     string
			deadline, created                         string
		)
		if err := rows.Scan(&v.ID, &v.Title, &description, &link, &status, &platform,
			&videoType, &priority, &tags, &deadline, &created, &updated, &endDate); err != nil {
			return nil, apperrors.Database("scan video", err)
		}
		v.Description = description.String
		v.Link = link.String
		v.Tags = tags.String
		v.Status = models.VideoStatus(status)
		v.Platform = models.Platform(platform)
		v.Type = models.VideoType(videoType)
		v.Priority = models.Priority(priority)
		if v.Deadline, err = parseTime(deadline); err != nil {
			return nil, apperrors.Database("parse video deadline", err)
		}
		if v.CreatedAt, err = parseTime(created); err != nil {
			return nil, apperrors.Database("parse video created_at", err)
		}
		if updatedAt, err := parseNullTime(updated); err != nil {
			return nil, apperrors.Database("parse video updated_at", err)
		} else if updatedAt != nil {
			v.UpdatedAt = *updatedAt
		}
		if v.EndDate, err = parseNullTime(endDate); err != nil {
			return nil, apperrors.Database("parse video end_date", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database("load videos", err)
	}
	return videos, nil
}

func insertVideo(ctx context.Context, q Querier, v models.Video) error {
	updated := sql.NullString{}
	if !v.UpdatedAt.IsZero() {
		updated = sql.NullString{String: formatTime(v.UpdatedAt), Valid: true}
	}
	_, err := q.ExecContext(ctx, `
	INSERT INTO videos (id, title, description, link, status, platform, type, priority, tags,
		deadline, created_at, updated_at, end_date)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Title, v.Description, v.Link, string(v.Status), string(v.Platform),
		string(v.Type), string(v.Priority), v.Tags, formatTime(v.Deadline),
		formatTime(v.CreatedAt), updated, formatNullTime(v.EndDate))
	return apperrors.Database("insert video", err)
}

// Add validates and stores a new video. An id is generated when the video
// has none. Tags are stored exactly as given.
func (r *VideoRepository) Add(ctx context.Context, video models.Video) (models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	video = video.Clone()
	if video.ID == "" {
		video.ID = uuid.New()
	}
	if video.CreatedAt.IsZero() {
		video.CreatedAt = r.opts.stamp()
	}
	if err := video.Validate(r.opts.catalog()); err != nil {
		return models.Video{}, err
	}

	if err := insertVideo(ctx, r.db, video); err != nil {
		r.opts.logger.Error("failed to add video", err, map[string]interface{}{"video_id": video.ID})
		return models.Video{}, err
	}

	r.videos = append(r.videos, video)
	r.opts.logger.Debug("video added", map[string]interface{}{"video_id": video.ID})
	r.opts.publish(events.TopicVideos, events.ActionAdded, video.ID)
	return video.Clone(), nil
}

// Update merges patch into the cached video, stamps UpdatedAt, validates
// the whole record and overwrites every column.
func (r *VideoRepository) Update(ctx context.Context, id string, patch models.VideoPatch) (models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.Video{}, apperrors.NotFound("video", id)
	}
	updated := patch.Apply(r.videos[idx])
	updated.UpdatedAt = r.opts.stamp()
	if err := updated.Validate(r.opts.catalog()); err != nil {
		return models.Video{}, err
	}

	res, err := r.db.ExecContext(ctx, `
	UPDATE videos SET title = ?, description = ?, link = ?, status = ?, platform = ?, type = ?,
		priority = ?, tags = ?, deadline = ?, updated_at = ?, end_date = ?
	WHERE id = ?`,
		updated.Title, updated.Description, updated.Link, string(updated.Status),
		string(updated.Platform), string(updated.Type), string(updated.Priority), updated.Tags,
		formatTime(updated.Deadline), formatTime(updated.UpdatedAt), formatNullTime(updated.EndDate), id)
	if err != nil {
		err = apperrors.Database("update video", err)
		r.opts.logger.Error("failed to update video", err, map[string]interface{}{"video_id": id})
		return models.Video{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Video{}, apperrors.NotFound("video", id)
	}

	r.videos[idx] = updated
	r.opts.logger.Debug("video updated", map[string]interface{}{
		"video_id": id,
		"status":   string(updated.Status),
	})
	r.opts.publish(events.TopicVideos, events.ActionUpdated, id)
	return updated.Clone(), nil
}

// Delete removes the video with id.
func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, "DELETE FROM videos WHERE id = ?", id)
	if err != nil {
		err = apperrors.Database("delete video", err)
		r.opts.logger.Error("failed to delete video", err, map[string]interface{}{"video_id": id})
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("video", id)
	}

	kept := r.videos[:0]
	for _, v := range r.videos {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	r.videos = kept
	r.opts.logger.Debug("video deleted", map[string]interface{}{"video_id": id})
	r.opts.publish(events.TopicVideos, events.ActionDeleted, id)
	return nil
}

// Adopt appends a video that is already stored.
func (r *VideoRepository) Adopt(video models.Video) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx := r.indexOf(video.ID); idx >= 0 {
		r.videos[idx] = video.Clone()
	} else {
		r.videos = append(r.videos, video.Clone())
	}
	r.opts.publish(events.TopicVideos, events.ActionAdded, video.ID)
}

// Videos returns a copy of the cached list.
func (r *VideoRepository) Videos() []models.Video {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneVideos(r.videos)
}

// Get returns the cached video with id.
func (r *VideoRepository) Get(id string) (models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx := r.indexOf(id); idx >= 0 {
		return r.videos[idx].Clone(), nil
	}
	return models.Video{}, apperrors.NotFound("video", id)
}

func (r *VideoRepository) indexOf(id string) int {
	for i, v := range r.videos {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func cloneVideos(videos []models.Video) []models.Video {
	out := make([]models.Video, len(videos))
	for i, v := range videos {
		out[i] = v.Clone()
	}
	return out
}
