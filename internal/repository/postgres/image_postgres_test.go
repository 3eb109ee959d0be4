package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"imagevault/internal/model"
	"imagevault/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "user_id", "filename", "size", "mime_type", "storage_path", "thumbnail_path", "created_at"}

func newRepo(t *testing.T) (*ImagePostgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewImagePostgres(db), mock
}

func sampleRecord() model.ImageRecord {
	return model.ImageRecord{
		ID:            "3f1c9a2e-8c1b-4a55-9f59-6f1b0d7e6a10",
		UserID:        "u1",
		Filename:      "a.png",
		Size:          1 << 20,
		MimeType:      "image/png",
		StoragePath:   "u1/a.png",
		ThumbnailPath: "u1/thumbnails/thumb-a.png",
		CreatedAt:     time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func addRow(rows *sqlmock.Rows, r model.ImageRecord) *sqlmock.Rows {
	return rows.AddRow(r.ID, r.UserID, r.Filename, r.Size, r.MimeType, r.StoragePath, r.ThumbnailPath, r.CreatedAt)
}

func TestImagePostgres_Create(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	rec := sampleRecord()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO images").
			WithArgs(rec.UserID, rec.Filename, rec.Size, rec.MimeType, rec.StoragePath, rec.ThumbnailPath).
			WillReturnRows(addRow(sqlmock.NewRows(columns), rec))

		in := rec
		in.ID = ""
		in.CreatedAt = time.Time{}
		got, err := repo.Create(ctx, &in)

		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.CreatedAt, got.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to ErrDuplicate", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO images").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "images_user_filename_key"})

		got, err := repo.Create(ctx, &rec)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Contains(t, err.Error(), "images_user_filename_key")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other errors pass through", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO images").WillReturnError(errors.New("conn reset"))

		got, err := repo.Create(ctx, &rec)

		assert.Nil(t, got)
		assert.EqualError(t, err, "conn reset")
		assert.False(t, errors.Is(err, repository.ErrDuplicate))
	})
}

func TestImagePostgres_FindByUserAndFilename(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	rec := sampleRecord()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM images WHERE user_id = \\$1 AND filename = \\$2").
			WithArgs("u1", "a.png").
			WillReturnRows(addRow(sqlmock.NewRows(columns), rec))

		got, err := repo.FindByUserAndFilename(ctx, "u1", "a.png")

		require.NoError(t, err)
		assert.Equal(t, rec, *got)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM images WHERE user_id = \\$1 AND filename = \\$2").
			WithArgs("u1", "missing.png").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByUserAndFilename(ctx, "u1", "missing.png")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImagePostgres_ListByUser(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM images WHERE user_id = \\$1").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM images WHERE user_id = \\$1 ORDER BY created_at DESC, id DESC LIMIT \\$2 OFFSET \\$3").
			WithArgs("u1", 10, 0).
			WillReturnRows(addRow(sqlmock.NewRows(columns), sampleRecord()))

		res, err := repo.ListByUser(ctx, "u1", repository.PageQuery{Limit: 10, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("past the end is empty not nil", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM images").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
		mock.ExpectQuery("SELECT (.+) FROM images WHERE user_id").
			WithArgs("u1", 10, 30).
			WillReturnRows(sqlmock.NewRows(columns))

		res, err := repo.ListByUser(ctx, "u1", repository.PageQuery{Limit: 10, Offset: 30})

		require.NoError(t, err)
		assert.Equal(t, 25, res.Total)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("db down"))

		res, err := repo.ListByUser(ctx, "u1", repository.PageQuery{Limit: 10})

		assert.Nil(t, res)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImagePostgres_DeleteByIDs(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	rec := sampleRecord()

	t.Run("scoped by user and returns removed rows", func(t *testing.T) {
		mock.ExpectQuery("DELETE FROM images WHERE user_id = \\$1 AND id IN \\(\\$2, \\$3\\) RETURNING").
			WithArgs("u1", rec.ID, "other-id").
			WillReturnRows(addRow(sqlmock.NewRows(columns), rec))

		deleted, err := repo.DeleteByIDs(ctx, "u1", []string{rec.ID, "other-id"})

		require.NoError(t, err)
		require.Len(t, deleted, 1)
		assert.Equal(t, rec.StoragePath, deleted[0].StoragePath)
		assert.Equal(t, rec.ThumbnailPath, deleted[0].ThumbnailPath)
	})

	t.Run("no ids is a no-op", func(t *testing.T) {
		deleted, err := repo.DeleteByIDs(ctx, "u1", nil)

		assert.NoError(t, err)
		assert.Empty(t, deleted)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("DELETE FROM images").WillReturnError(errors.New("db down"))

		deleted, err := repo.DeleteByIDs(ctx, "u1", []string{rec.ID})

		assert.Nil(t, deleted)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImagePostgres_PathsByUser(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("SELECT storage_path, thumbnail_path FROM images WHERE user_id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"storage_path", "thumbnail_path"}).
			AddRow("u1/a.png", "u1/thumbnails/thumb-a.png").
			AddRow("u1/b.png", "u1/thumbnails/thumb-b.png"))

	paths, err := repo.PathsByUser(context.Background(), "u1")

	require.NoError(t, err)
	assert.Len(t, paths, 4)
	assert.Contains(t, paths, "u1/thumbnails/thumb-b.png")
	assert.NoError(t, mock.ExpectationsWereMet())
}
