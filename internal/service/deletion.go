package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"imagevault/internal/model"
	"imagevault/internal/repository"
	"imagevault/internal/storage"
)

const (
	// DefaultConfirmTimeout bounds the absence poll for each deleted key.
	DefaultConfirmTimeout = 30 * time.Second

	confirmConcurrency = 8
)

// DeleteResult reports what a deletion removed.
type DeleteResult struct {
	// DeletedRecords are the rows removed from the metadata store.
	DeletedRecords []model.ImageRecord
	// DeletedObjects are keys the store reported deleted and that were confirmed absent.
	DeletedObjects []string
	// Unconfirmed are keys reported deleted that were still visible when the poll gave up.
	Unconfirmed []string
}

// DeletionService removes images from both the metadata store and object storage.
type DeletionService interface {
	// DeleteImages deletes the caller's rows matching records' ids, then both objects of every
	// removed row. Rows are removed first so a failure can leave an orphaned object but never
	// a visible record without its object.
	DeleteImages(ctx context.Context, userID string, records []model.ImageRecord) (*DeleteResult, error)
}

type deletionService struct {
	repo           repository.ImageRepository
	store          storage.Storage
	log            *slog.Logger
	confirmTimeout time.Duration
}

// NewDeletionService constructs a DeletionService. confirmTimeout <= 0 selects DefaultConfirmTimeout.
func NewDeletionService(repo repository.ImageRepository, store storage.Storage, log *slog.Logger, confirmTimeout time.Duration) DeletionService {
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}
	return &deletionService{repo: repo, store: store, log: log, confirmTimeout: confirmTimeout}
}

func (s *deletionService) DeleteImages(ctx context.Context, userID string, records []model.ImageRecord) (*DeleteResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	ids, err := recordIDs(records)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no image ids", ErrInvalidInput)
	}

	rows, err := s.repo.DeleteByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("delete metadata: %w", err)
	}

	res := &DeleteResult{
		DeletedRecords: rows,
		DeletedObjects: []string{},
		Unconfirmed:    []string{},
	}
	// Keys come from the removed rows, never from the request body.
	keys := objectKeys(rows)
	if len(keys) == 0 {
		return res, nil
	}

	deleted, delErr := s.store.DeleteObjects(ctx, keys)
	if delErr != nil {
		s.logOrphans(userID, keys, deleted, delErr)
		if errors.Is(delErr, storage.ErrBucketNotFound) {
			return nil, ErrBucketNotFound
		}
	}

	res.DeletedObjects, res.Unconfirmed = s.confirm(ctx, deleted)
	if delErr != nil {
		return res, fmt.Errorf("delete objects: %w", delErr)
	}
	return res, nil
}

// confirm polls every key concurrently and splits them by outcome, preserving input order.
func (s *deletionService) confirm(ctx context.Context, keys []string) ([]string, []string) {
	absent := make([]bool, len(keys))

	var g errgroup.Group
	g.SetLimit(confirmConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			if err := s.store.WaitUntilAbsent(ctx, key, s.confirmTimeout); err != nil {
				s.log.Warn("delete_unconfirmed", "key", key, "error", err)
				return nil
			}
			absent[i] = true
			return nil
		})
	}
	_ = g.Wait()

	confirmed := make([]string, 0, len(keys))
	unconfirmed := make([]string, 0)
	for i, key := range keys {
		if absent[i] {
			confirmed = append(confirmed, key)
		} else {
			unconfirmed = append(unconfirmed, key)
		}
	}
	return confirmed, unconfirmed
}

func (s *deletionService) logOrphans(userID string, keys, deleted []string, err error) {
	done := make(map[string]struct{}, len(deleted))
	for _, k := range deleted {
		done[k] = struct{}{}
	}
	orphans := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := done[k]; !ok {
			orphans = append(orphans, k)
		}
	}
	s.log.Error("orphaned_objects", "user_id", userID, "keys", orphans, "error", err)
}

// recordIDs returns the non-empty ids in canonical UUID form, deduplicated. Anything that
// does not parse as a UUID is rejected before it reaches the uuid column.
func recordIDs(records []model.ImageRecord) ([]string, error) {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		parsed, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed image id %q", ErrInvalidInput, r.ID)
		}
		id := parsed.String()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func objectKeys(rows []model.ImageRecord) []string {
	keys := make([]string, 0, 2*len(rows))
	for _, r := range rows {
		for _, k := range []string{r.StoragePath, r.ThumbnailPath} {
			if k != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys
}
