package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"imagevault/internal/model"
	"imagevault/internal/repository"
)

// memRepo is an in-memory ImageRepository enforcing the (user_id, filename) unique index.
type memRepo struct {
	mu     sync.Mutex
	rows   map[string]model.ImageRecord
	clock  time.Time
	onFind func()
}

var _ repository.ImageRepository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{
		rows:  make(map[string]model.ImageRecord),
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) Create(_ context.Context, img *model.ImageRecord) (*model.ImageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == img.UserID && row.Filename == img.Filename {
			return nil, fmt.Errorf("%w: images_user_filename_key", repository.ErrDuplicate)
		}
	}
	r.clock = r.clock.Add(time.Second)
	out := *img
	out.ID = uuid.NewString()
	out.CreatedAt = r.clock
	r.rows[out.ID] = out
	return &out, nil
}

func (r *memRepo) FindByUserAndFilename(_ context.Context, userID, filename string) (*model.ImageRecord, error) {
	if r.onFind != nil {
		r.onFind()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == userID && row.Filename == filename {
			out := row
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) ListByUser(_ context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.ImageRecord], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]model.ImageRecord, 0)
	for _, row := range r.rows {
		if row.UserID == userID {
			all = append(all, row)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	items := make([]model.ImageRecord, 0)
	for i := pq.Offset; i < len(all) && i < pq.Offset+pq.Limit; i++ {
		items = append(items, all[i])
	}
	return &repository.PageResult[model.ImageRecord]{Items: items, Total: len(all)}, nil
}

func (r *memRepo) DeleteByIDs(_ context.Context, userID string, ids []string) ([]model.ImageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ImageRecord, 0)
	for _, id := range ids {
		row, ok := r.rows[id]
		if !ok || row.UserID != userID {
			continue
		}
		delete(r.rows, id)
		out = append(out, row)
	}
	return out, nil
}

func (r *memRepo) PathsByUser(_ context.Context, userID string) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make(map[string]struct{})
	for _, row := range r.rows {
		if row.UserID == userID {
			paths[row.StoragePath] = struct{}{}
			paths[row.ThumbnailPath] = struct{}{}
		}
	}
	return paths, nil
}
