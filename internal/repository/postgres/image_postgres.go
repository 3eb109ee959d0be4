package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"imagevault/internal/model"
	"imagevault/internal/repository"
)

// uniqueViolation is the SQLSTATE raised by a unique index conflict.
const uniqueViolation = "23505"

const imageColumns = `id, user_id, filename, size, mime_type, storage_path, thumbnail_path, created_at`

// ImagePostgres is a PostgreSQL implementation of repository.ImageRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ImagePostgres struct {
	db *sql.DB
}

// NewImagePostgres creates a new ImagePostgres repository.
func NewImagePostgres(db *sql.DB) *ImagePostgres {
	return &ImagePostgres{db: db}
}

var _ repository.ImageRepository = (*ImagePostgres)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(s scanner) (model.ImageRecord, error) {
	var img model.ImageRecord
	err := s.Scan(
		&img.ID,
		&img.UserID,
		&img.Filename,
		&img.Size,
		&img.MimeType,
		&img.StoragePath,
		&img.ThumbnailPath,
		&img.CreatedAt,
	)
	return img, err
}

// Create inserts a new image row and returns the stored record with its store-assigned id and timestamp.
func (r *ImagePostgres) Create(ctx context.Context, img *model.ImageRecord) (*model.ImageRecord, error) {
	const q = `
		INSERT INTO images (user_id, filename, size, mime_type, storage_path, thumbnail_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + imageColumns

	row := r.db.QueryRowContext(ctx, q,
		img.UserID,
		img.Filename,
		img.Size,
		img.MimeType,
		img.StoragePath,
		img.ThumbnailPath,
	)
	out, err := scanImage(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
		}
		return nil, err
	}
	return &out, nil
}

// FindByUserAndFilename fetches the record for a (user, filename) pair.
func (r *ImagePostgres) FindByUserAndFilename(ctx context.Context, userID, filename string) (*model.ImageRecord, error) {
	const q = `
		SELECT ` + imageColumns + `
		FROM images
		WHERE user_id = $1 AND filename = $2
	`
	img, err := scanImage(r.db.QueryRowContext(ctx, q, userID, filename))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

// ListByUser returns the user's images using LIMIT/OFFSET pagination and the user's total count.
func (r *ImagePostgres) ListByUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.ImageRecord], error) {
	const qCount = `SELECT COUNT(*) FROM images WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + imageColumns + `
		FROM images
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ImageRecord, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ImageRecord]{
		Items: items,
		Total: total,
	}, nil
}

// DeleteByIDs removes the user's rows with the given ids and returns what was removed.
func (r *ImagePostgres) DeleteByIDs(ctx context.Context, userID string, ids []string) ([]model.ImageRecord, error) {
	if len(ids) == 0 {
		return []model.ImageRecord{}, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	q := `DELETE FROM images WHERE user_id = $1 AND id IN (` + strings.Join(placeholders, ", ") + `) RETURNING ` + imageColumns
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deleted := make([]model.ImageRecord, 0, len(ids))
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		deleted = append(deleted, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return deleted, nil
}

// PathsByUser returns the set of object keys referenced by the user's rows.
func (r *ImagePostgres) PathsByUser(ctx context.Context, userID string) (map[string]struct{}, error) {
	const q = `SELECT storage_path, thumbnail_path FROM images WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var storagePath, thumbnailPath string
		if err := rows.Scan(&storagePath, &thumbnailPath); err != nil {
			return nil, err
		}
		paths[storagePath] = struct{}{}
		paths[thumbnailPath] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}
