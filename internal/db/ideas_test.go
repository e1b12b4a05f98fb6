package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
	"github.com/kimhsiao/creatorplanner/internal/events"
	"github.com/kimhsiao/creatorplanner/internal/models"
)

func TestIdeaRepository_AddThenLoad(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB, WithClock(fixedClock()))

	added, err := repo.Add(ctx, models.Idea{
		Title:          "X",
		Duration:       "5:00",
		ContentType:    "tutorial",
		TargetAudience: models.AudienceBeginner,
		Tags:           []models.Tag{},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.True(t, added.CreatedAt.Equal(testNow))

	fresh := NewIdeaRepository(db.DB)
	ideas, err := fresh.Load(ctx)
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "X", ideas[0].Title)
	assert.NotNil(t, ideas[0].Tags)
	assert.Empty(t, ideas[0].Tags)
	assert.False(t, ideas[0].IsFavorite)
	assert.True(t, ideas[0].CreatedAt.Equal(testNow))
}

func TestIdeaRepository_AddWithTags(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB)

	idea := sampleIdea("Tags, colons: and more", "go:lang", "a,b", "sqlite")
	idea.IsFavorite = true
	idea.Outline = "# Intro"
	added, err := repo.Add(ctx, idea)
	require.NoError(t, err)
	assert.Equal(t, []string{"a,b", "go:lang", "sqlite"}, sortedNames(added.Tags))

	loaded, err := NewIdeaRepository(db.DB).Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, []string{"a,b", "go:lang", "sqlite"}, sortedNames(loaded[0].Tags))
	assert.True(t, loaded[0].IsFavorite)
	assert.Equal(t, "# Intro", loaded[0].Outline)
	for _, tag := range loaded[0].Tags {
		assert.NotEmpty(t, tag.ID)
		assert.False(t, tag.CreatedAt.IsZero())
	}
}

func TestIdeaRepository_AddKeepsGivenID(t *testing.T) {
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB)

	idea := sampleIdea("with id")
	idea.ID = "abc"
	added, err := repo.Add(context.Background(), idea)
	require.NoError(t, err)
	assert.Equal(t, "abc", added.ID)

	_, err = repo.Add(context.Background(), idea)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConstraint))
	assert.Len(t, repo.Ideas(), 1)
}

func TestIdeaRepository_AddValidation(t *testing.T) {
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB)

	tests := []struct {
		name  string
		edit  func(*models.Idea)
		field string
	}{
		{"missing title", func(i *models.Idea) { i.Title = " " }, "title"},
		{"bad duration", func(i *models.Idea) { i.Duration = "5 minutes" }, "duration"},
		{"bad seconds", func(i *models.Idea) { i.Duration = "5:75" }, "duration"},
		{"missing content type", func(i *models.Idea) { i.ContentType = "" }, "content_type"},
		{"missing audience", func(i *models.Idea) { i.TargetAudience = "" }, "target_audience"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idea := sampleIdea("valid")
			tt.edit(&idea)

			_, err := repo.Add(context.Background(), idea)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
	assert.Equal(t, 0, countRows(t, db, "SELECT COUNT(*) FROM idea_bank"))
}

func TestIdeaRepository_UpdateWithoutTagsKeepsTags(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB, WithClock(stepClock()))

	added, err := repo.Add(ctx, sampleIdea("before", "a", "b"))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, added.ID, models.IdeaPatch{
		Title:      models.Ptr("after"),
		IsFavorite: models.Ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.True(t, updated.IsFavorite)
	assert.Equal(t, "5:00", updated.Duration)
	assert.ElementsMatch(t, added.Tags, updated.Tags)
	assert.True(t, updated.UpdatedAt.After(added.UpdatedAt))

	loaded, err := NewIdeaRepository(db.DB).Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "after", loaded[0].Title)
	assert.True(t, loaded[0].IsFavorite)
	assert.Equal(t, []string{"a", "b"}, sortedNames(loaded[0].Tags))
}

func TestIdeaRepository_UpdateEmptyTagsClears(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB)

	added, err := repo.Add(ctx, sampleIdea("tagged", "a", "b"))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, added.ID, models.IdeaPatch{}.SetTags())
	require.NoError(t, err)
	assert.NotNil(t, updated.Tags)
	assert.Empty(t, updated.Tags)
	assert.Equal(t, 0, countRows(t, db, "SELECT COUNT(*) FROM idea_tags WHERE idea_id = ?", added.ID))

	cached, err := repo.Get(added.ID)
	require.NoError(t, err)
	assert.Empty(t, cached.Tags)
}

func TestIdeaRepository_UpdateReplacesTags(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB)

	added, err := repo.Add(ctx, sampleIdea("tagged", "a", "b"))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, added.ID, models.IdeaPatch{}.SetTags("b", "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, sortedNames(updated.Tags))

	loaded, err := NewIdeaRepository(db.DB).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, sortedNames(loaded[0].Tags))
	assert.Equal(t, 3, countRows(t, db, "SELECT COUNT(*) FROM tags"), "orphaned tag rows remain")
}

func TestIdeaRepository_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB)

	_, err := repo.Update(ctx, "missing", models.IdeaPatch{Title: models.Ptr("x")})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	added, err := repo.Add(ctx, sampleIdea("valid"))
	require.NoError(t, err)

	_, err = repo.Update(ctx, added.ID, models.IdeaPatch{Duration: models.Ptr("soon")})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	cached, err := repo.Get(added.ID)
	require.NoError(t, err)
	assert.Equal(t, "5:00", cached.Duration)
}

func TestIdeaRepository_UpdateRollsBackOnTagFailure(t *testing.T) {
	ctx := context.Background()
	mockDB, mock := newMockDB(t)
	repo := NewIdeaRepository(mockDB, WithClock(fixedClock()))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idea_bank").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	added, err := repo.Add(ctx, models.Idea{
		ID: "i1", Title: "before", Duration: "1:00", ContentType: "tutorial",
		TargetAudience: models.AudienceAdvanced,
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE idea_bank SET title = \\?, updated_at = \\? WHERE id = \\?").
		WithArgs("after", sqlmock.AnyArg(), "i1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, name, created_at FROM tags").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err = repo.Update(ctx, added.ID, models.IdeaPatch{Title: models.Ptr("after")}.SetTags("new"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrDatabase))
	assert.Contains(t, err.Error(), "disk I/O error")

	cached, err := repo.Get("i1")
	require.NoError(t, err)
	assert.Equal(t, "before", cached.Title, "cache is untouched after a rollback")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdeaRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB)

	keep, err := repo.Add(ctx, sampleIdea("keep"))
	require.NoError(t, err)
	gone, err := repo.Add(ctx, sampleIdea("gone", "shared"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, gone.ID))

	ideas := repo.Ideas()
	require.Len(t, ideas, 1)
	assert.Equal(t, keep.ID, ideas[0].ID)
	assert.Equal(t, 0, countRows(t, db, "SELECT COUNT(*) FROM idea_tags"))
	assert.Equal(t, 1, countRows(t, db, "SELECT COUNT(*) FROM tags"), "tags are not cascaded")

	err = repo.Delete(ctx, gone.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestIdeaRepository_ConvertToVideo(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	videos := NewVideoRepository(db.DB)
	repo := NewIdeaRepository(db.DB, WithClock(fixedClock()), WithVideoSink(videos))

	idea := sampleIdea("Convert me", "draft", "short")
	idea.ID = "abc"
	idea.Description = "from the bank"
	_, err := repo.Add(ctx, idea)
	require.NoError(t, err)

	deadline := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	result, err := repo.ConvertToVideo(ctx, idea, deadline, models.PriorityHigh)
	require.NoError(t, err)

	v := result.Video
	assert.Equal(t, "abc", v.ID)
	assert.Equal(t, "Convert me", v.Title)
	assert.Equal(t, "from the bank", v.Description)
	assert.Equal(t, models.StatusIdle, v.Status)
	assert.Equal(t, models.PlatformYouTube, v.Platform)
	assert.Equal(t, models.TypeTutorial, v.Type)
	assert.Equal(t, models.PriorityHigh, v.Priority)
	assert.Empty(t, v.Tags)
	assert.ElementsMatch(t, []string{"draft", "short"}, result.DroppedTags)

	adopted := videos.Videos()
	require.Len(t, adopted, 1)
	assert.Equal(t, "abc", adopted[0].ID)

	ideas, err := NewIdeaRepository(db.DB).Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ideas)
	assert.Empty(t, repo.Ideas())

	stored, err := NewVideoRepository(db.DB).Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "abc", stored[0].ID)
	assert.Equal(t, models.StatusIdle, stored[0].Status)
	assert.True(t, stored[0].Deadline.Equal(deadline))
}

func TestIdeaRepository_ConvertValidatesAgainstCatalog(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	catalog := models.Catalog{}
	repo := NewIdeaRepository(db.DB, WithCatalog(func() models.Catalog { return catalog }))

	idea := sampleIdea("Podcast episode")
	idea.ContentType = "podcast"
	added, err := repo.Add(ctx, idea)
	require.NoError(t, err)

	deadline := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = repo.ConvertToVideo(ctx, added, deadline, models.PriorityLow)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Len(t, repo.Ideas(), 1)
	assert.Equal(t, 0, countRows(t, db, "SELECT COUNT(*) FROM videos"))

	catalog.Add(models.CategoryType, "podcast")
	result, err := repo.ConvertToVideo(ctx, added, deadline, models.PriorityLow)
	require.NoError(t, err)
	assert.Equal(t, models.VideoType("podcast"), result.Video.Type)
}

func TestIdeaRepository_ConvertUnknownIdea(t *testing.T) {
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB)

	_, err := repo.ConvertToVideo(context.Background(), models.Idea{ID: "nope"}, time.Now(), models.PriorityHigh)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestIdeaRepository_ConvertRollsBack(t *testing.T) {
	ctx := context.Background()
	mockDB, mock := newMockDB(t)
	videos := NewVideoRepository(mockDB)
	repo := NewIdeaRepository(mockDB, WithClock(fixedClock()), WithVideoSink(videos))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO idea_bank").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	idea, err := repo.Add(ctx, models.Idea{
		ID: "abc", Title: "t", Duration: "1:00", ContentType: "review",
		TargetAudience: models.AudienceBeginner,
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO videos").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM idea_bank").WithArgs("abc").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, err = repo.ConvertToVideo(ctx, idea, testNow.AddDate(0, 1, 0), models.PriorityHigh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")

	assert.Len(t, repo.Ideas(), 1, "idea stays cached")
	assert.Empty(t, videos.Videos(), "no video adopted")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdeaRepository_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	hub := events.NewHub()
	ch, cancel := hub.Subscribe(events.TopicIdeas)
	defer cancel()

	repo := NewIdeaRepository(db.DB, WithHub(hub))
	added, err := repo.Add(ctx, sampleIdea("evented"))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, added.ID))

	first := <-ch
	second := <-ch
	assert.Equal(t, events.ActionAdded, first.Action)
	assert.Equal(t, added.ID, first.ID)
	assert.Equal(t, events.ActionDeleted, second.Action)
}

func TestIdeaRepository_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB)

	added, err := repo.Add(ctx, sampleIdea("shared"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Update(ctx, added.ID, models.IdeaPatch{}.SetTags(fmt.Sprintf("t%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	cached, err := repo.Get(added.ID)
	require.NoError(t, err)
	require.Len(t, cached.Tags, 1)

	loaded, err := NewIdeaRepository(db.DB).Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, models.TagNames(cached.Tags), models.TagNames(loaded[0].Tags))
}

func TestIdeaRepository_SnapshotsAreCopies(t *testing.T) {
	db := newTestDB(t)
	repo := NewIdeaRepository(db.DB)
	_, err := repo.Add(context.Background(), sampleIdea("original", "a"))
	require.NoError(t, err)

	snapshot := repo.Ideas()
	snapshot[0].Title = "mutated"
	snapshot[0].Tags[0].Name = "mutated"

	again := repo.Ideas()
	assert.Equal(t, "original", again[0].Title)
	assert.Equal(t, "a", again[0].Tags[0].Name)
}
