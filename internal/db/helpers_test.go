package db

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/kimhsiao/creatorplanner/internal/models"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

// stepClock advances by one second on every call.
func stepClock() func() time.Time {
	now := testNow
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenPath(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func countRows(t *testing.T, db *DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func sampleIdea(title string, tags ...string) models.Idea {
	return models.Idea{
		Title:          title,
		Duration:       "5:00",
		ContentType:    "tutorial",
		TargetAudience: models.AudienceBeginner,
		Tags:           models.TagsNamed(tags...),
	}
}

func sampleVideo(title string) models.Video {
	return models.Video{
		Title:    title,
		Status:   models.StatusIdle,
		Platform: models.PlatformYouTube,
		Type:     models.TypeTutorial,
		Priority: models.PriorityMedium,
		Deadline: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func sortedNames(tags []models.Tag) []string {
	names := models.TagNames(tags)
	sort.Strings(names)
	return names
}
