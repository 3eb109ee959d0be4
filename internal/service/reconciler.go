package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"imagevault/internal/model"
	"imagevault/internal/repository"
	"imagevault/internal/storage"
)

// DefaultSweepGrace protects objects whose metadata is not registered yet.
// Objects are written before their record, so a fresh unreferenced object is usually an upload in flight.
const DefaultSweepGrace = time.Hour

// SweepResult summarizes one reconciliation pass.
type SweepResult struct {
	Scanned int
	Removed int
}

// Reconciler removes objects that no live record references.
type Reconciler struct {
	repo  repository.ImageRepository
	store storage.Storage
	log   *slog.Logger
	grace time.Duration
	now   func() time.Time
}

// NewReconciler constructs a Reconciler. grace <= 0 selects DefaultSweepGrace.
func NewReconciler(repo repository.ImageRepository, store storage.Storage, log *slog.Logger, grace time.Duration) *Reconciler {
	if grace <= 0 {
		grace = DefaultSweepGrace
	}
	return &Reconciler{repo: repo, store: store, log: log, grace: grace, now: time.Now}
}

// Sweep performs one pass over the whole bucket. A failure for one user does not stop the others.
func (r *Reconciler) Sweep(ctx context.Context) (*SweepResult, error) {
	objects, err := r.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	cutoff := r.now().Add(-r.grace)
	byUser := make(map[string][]storage.ObjectInfo)
	for _, obj := range objects {
		owner := model.OwnerOf(obj.Key)
		if owner == "" || obj.LastModified.After(cutoff) {
			continue
		}
		byUser[owner] = append(byUser[owner], obj)
	}

	res := &SweepResult{Scanned: len(objects)}
	var errs []error
	for userID, candidates := range byUser {
		removed, err := r.sweepUser(ctx, userID, candidates)
		res.Removed += removed
		if err != nil {
			errs = append(errs, fmt.Errorf("sweep %s: %w", userID, err))
		}
	}
	return res, errors.Join(errs...)
}

func (r *Reconciler) sweepUser(ctx context.Context, userID string, candidates []storage.ObjectInfo) (int, error) {
	referenced, err := r.repo.PathsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	orphans := make([]string, 0)
	for _, obj := range candidates {
		if _, ok := referenced[obj.Key]; !ok {
			orphans = append(orphans, obj.Key)
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	deleted, err := r.store.DeleteObjects(ctx, orphans)
	if len(deleted) > 0 {
		r.log.Info("orphans_removed", "user_id", userID, "keys", deleted)
	}
	return len(deleted), err
}

// Run sweeps every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := r.Sweep(ctx)
			if err != nil {
				r.log.Error("sweep_failed", "error", err)
			}
			if res != nil {
				r.log.Info("sweep_completed", "scanned", res.Scanned, "removed", res.Removed)
			}
		}
	}
}
