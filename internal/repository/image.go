package repository

import (
	"context"

	"imagevault/internal/model"
)

// ImageRepository defines data access for image metadata using SQL queries only.
// Every method is scoped by user id. No business logic here.
type ImageRepository interface {
	// Create inserts a new record. ID and CreatedAt are assigned by the store and returned.
	// A uniqueness violation on (user_id, filename) is reported as ErrDuplicate.
	Create(ctx context.Context, img *model.ImageRecord) (*model.ImageRecord, error)

	// FindByUserAndFilename returns the live record for the pair, or ErrNotFound.
	FindByUserAndFilename(ctx context.Context, userID, filename string) (*model.ImageRecord, error)

	// ListByUser returns a page of the user's records, newest first, with the user's total count.
	ListByUser(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.ImageRecord], error)

	// DeleteByIDs removes the user's records whose id is in ids and returns the removed rows.
	// Ids owned by other users are silently ignored.
	DeleteByIDs(ctx context.Context, userID string, ids []string) ([]model.ImageRecord, error)

	// PathsByUser returns every storage and thumbnail path referenced by the user's records.
	PathsByUser(ctx context.Context, userID string) (map[string]struct{}, error)
}
