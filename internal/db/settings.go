package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
	"github.com/kimhsiao/creatorplanner/internal/events"
	"github.com/kimhsiao/creatorplanner/internal/models"
	"github.com/kimhsiao/creatorplanner/internal/settings"
	"github.com/kimhsiao/creatorplanner/internal/uuid"
)

// SettingsRepository owns the grouped settings.
type SettingsRepository struct {
	db   *sql.DB
	opts repoOptions

	mu     sync.RWMutex
	groups models.SettingsGroups
}

// NewSettingsRepository creates a SettingsRepository. Without WithSeed,
// Initialize seeds the built-in catalog.
func NewSettingsRepository(db *sql.DB, opts ...Option) *SettingsRepository {
	o := buildOptions("settings", opts)
	if o.seed == nil {
		o.seed = func() ([]models.Setting, error) { return settings.DefaultCatalog(), nil }
	}
	return &SettingsRepository{db: db, opts: o, groups: models.SettingsGroups{}}
}

// Load replaces the cached groups with the stored rows.
func (r *SettingsRepository) Load(ctx context.Context) (models.SettingsGroups, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *SettingsRepository) load(ctx context.Context) (models.SettingsGroups, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, value, category FROM settings")
	if err != nil {
		err = apperrors.Database("load settings", err)
		r.opts.logger.Error("failed to load settings", err)
		return nil, err
	}
	defer rows.Close()

	var flat []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.ID, &s.Value, &s.Category); err != nil {
			return nil, apperrors.Database("scan setting", err)
		}
		flat = append(flat, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database("load settings", err)
	}

	r.groups = settings.Group(flat)
	if missing := settings.MissingCategories(r.groups); len(missing) > 0 {
		r.opts.logger.Warn("settings categories are empty", map[string]interface{}{
			"categories": strings.Join(missing, ","),
		})
	}
	r.opts.publish(events.TopicSettings, events.ActionLoaded, "")
	return settings.Clone(r.groups), nil
}

// Initialize seeds the table when it holds no rows and then loads it.
// The seed rows are inserted one at a time inside one transaction.
func (r *SettingsRepository) Initialize(ctx context.Context) (models.SettingsGroups, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM settings").Scan(&count); err != nil {
		return nil, apperrors.Database("count settings", err)
	}
	if count == 0 {
		rows, err := r.opts.seed()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternal, "failed to build seed catalog", err)
		}
		err = WithTx(ctx, r.db, func(tx *sql.Tx) error {
			for _, s := range rows {
				if s.ID == "" {
					s.ID = uuid.New()
				}
				if err := insertSetting(ctx, tx, s); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			r.opts.logger.Error("failed to seed settings", err)
			return nil, err
		}
		r.opts.logger.Info("settings seeded", map[string]interface{}{"rows": len(rows)})
		r.opts.publish(events.TopicSettings, events.ActionSeeded, "")
	}
	return r.load(ctx)
}

func insertSetting(ctx context.Context, q Querier, s models.Setting) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO settings (id, value, category) VALUES (?, ?, ?)", s.ID, s.Value, s.Category)
	return apperrors.Database("insert setting", err)
}

func validateSetting(s models.Setting) error {
	v := apperrors.NewValidation("setting")
	if strings.TrimSpace(s.Value) == "" {
		v.Add("value", "value is required")
	}
	if strings.TrimSpace(s.Category) == "" {
		v.Add("category", "category is required")
	}
	return v.Err()
}

// Add stores a new value in an existing category.
func (r *SettingsRepository) Add(ctx context.Context, s models.Setting) (models.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.Value = strings.TrimSpace(s.Value)
	if err := validateSetting(s); err != nil {
		return models.Setting{}, err
	}
	if !settings.CategoryExists(s.Category, r.groups) {
		return models.Setting{}, apperrors.New(apperrors.ErrCategoryMissing, "category does not exist: "+s.Category)
	}
	if s.ID == "" {
		s.ID = uuid.New()
	}

	if err := insertSetting(ctx, r.db, s); err != nil {
		r.opts.logger.Error("failed to add setting", err, map[string]interface{}{"category": s.Category})
		return models.Setting{}, err
	}
	r.groups = settings.AddToGroup(s, r.groups)
	r.opts.logger.Debug("setting added", map[string]interface{}{"setting_id": s.ID, "category": s.Category})
	r.opts.publish(events.TopicSettings, events.ActionAdded, s.ID)
	return s, nil
}

// Update renames a value. The category of a setting cannot change, and the
// protected idle status cannot be renamed.
func (r *SettingsRepository) Update(ctx context.Context, s models.Setting) (models.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.Value = strings.TrimSpace(s.Value)
	if err := validateSetting(s); err != nil {
		return models.Setting{}, err
	}
	if !settings.CategoryExists(s.Category, r.groups) {
		return models.Setting{}, apperrors.New(apperrors.ErrCategoryMissing, "category does not exist: "+s.Category)
	}
	current, ok := settings.Find(s.ID, r.groups)
	if !ok {
		return models.Setting{}, apperrors.NotFound("setting", s.ID)
	}
	if current.Category != s.Category {
		v := apperrors.NewValidation("setting")
		v.Add("category", "category cannot change")
		return models.Setting{}, v.Err()
	}
	if settings.IsLockedValue(current) && current.Value != s.Value {
		return models.Setting{}, apperrors.New(apperrors.ErrProtectedSetting, "the idle status cannot be renamed")
	}

	res, err := r.db.ExecContext(ctx, "UPDATE settings SET value = ? WHERE id = ?", s.Value, s.ID)
	if err != nil {
		err = apperrors.Database("update setting", err)
		r.opts.logger.Error("failed to update setting", err, map[string]interface{}{"setting_id": s.ID})
		return models.Setting{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Setting{}, apperrors.NotFound("setting", s.ID)
	}

	groups, err := settings.UpdateInGroup(s, r.groups)
	if err != nil {
		return models.Setting{}, err
	}
	r.groups = groups
	r.opts.logger.Debug("setting updated", map[string]interface{}{"setting_id": s.ID})
	r.opts.publish(events.TopicSettings, events.ActionUpdated, s.ID)
	return s, nil
}

// Delete removes the setting with id. The protected idle status is refused
// before anything is written.
func (r *SettingsRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s models.Setting
	err := r.db.QueryRowContext(ctx, "SELECT id, value, category FROM settings WHERE id = ?", id).
		Scan(&s.ID, &s.Value, &s.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("setting", id)
	}
	if err != nil {
		return apperrors.Database("look up setting", err)
	}
	if settings.IsLockedValue(s) {
		r.opts.logger.Warn("refused to delete protected setting", map[string]interface{}{"setting_id": id})
		return apperrors.New(apperrors.ErrProtectedSetting, "the idle status cannot be deleted")
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE id = ?", id); err != nil {
		err = apperrors.Database("delete setting", err)
		r.opts.logger.Error("failed to delete setting", err, map[string]interface{}{"setting_id": id})
		return err
	}
	if groups, err := settings.RemoveFromGroup(id, r.groups); err == nil {
		r.groups = groups
	}
	r.opts.logger.Debug("setting deleted", map[string]interface{}{"setting_id": id})
	r.opts.publish(events.TopicSettings, events.ActionDeleted, id)
	return nil
}

// IsProtected reports whether the cached setting with id is the protected
// idle status.
func (r *SettingsRepository) IsProtected(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := settings.Find(id, r.groups)
	return ok && settings.IsLockedValue(s)
}

// Groups returns a copy of the cached groups.
func (r *SettingsRepository) Groups() models.SettingsGroups {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return settings.Clone(r.groups)
}

// Catalog indexes the cached values for enum extension checks.
func (r *SettingsRepository) Catalog() models.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.groups.Catalog()
}
