package db

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
	"github.com/kimhsiao/creatorplanner/internal/events"
	"github.com/kimhsiao/creatorplanner/internal/logging"
	"github.com/kimhsiao/creatorplanner/internal/models"
)

// Querier is the statement surface shared by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise. fn's error is returned unchanged.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Database("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Database("commit transaction", err)
	}
	return nil
}

// timestampLayouts are accepted when reading time columns. Rows written by
// this package use the first one.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// repoOptions holds the collaborators shared by the repositories.
type repoOptions struct {
	logger  *logging.Logger
	hub     *events.Hub
	now     func() time.Time
	catalog func() models.Catalog
	sink    VideoSink
	seed    func() ([]models.Setting, error)
}

// Option configures a repository.
type Option func(*repoOptions)

// WithLogger sets the logger. Repositories log to a null logger otherwise.
func WithLogger(l *logging.Logger) Option {
	return func(o *repoOptions) { o.logger = l }
}

// WithHub publishes change events to h after every successful mutation.
func WithHub(h *events.Hub) Option {
	return func(o *repoOptions) { o.hub = h }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *repoOptions) { o.now = now }
}

// WithCatalog supplies the settings catalog used to accept extended
// statuses, types and priorities.
func WithCatalog(catalog func() models.Catalog) Option {
	return func(o *repoOptions) { o.catalog = catalog }
}

// WithVideoSink receives videos created by idea conversion.
func WithVideoSink(sink VideoSink) Option {
	return func(o *repoOptions) { o.sink = sink }
}

// WithSeed sets the rows written by SettingsRepository.Initialize into an
// empty settings table.
func WithSeed(seed func() ([]models.Setting, error)) Option {
	return func(o *repoOptions) { o.seed = seed }
}

func buildOptions(name string, opts []Option) repoOptions {
	o := repoOptions{
		now:     time.Now,
		catalog: func() models.Catalog { return nil },
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNull()
	}
	o.logger = o.logger.Named(name)
	return o
}

func (o repoOptions) stamp() time.Time {
	return o.now().UTC()
}

func (o repoOptions) publish(topic events.Topic, action events.Action, id string) {
	if o.hub == nil {
		return
	}
	o.hub.Publish(events.Event{Topic: topic, Action: action, ID: id, Timestamp: o.stamp()})
}
