package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"imagevault/internal/storage"
)

// memStore is an in-memory object store.
type memStore struct {
	mu      sync.Mutex
	objects map[string]time.Time
}

var _ storage.Storage = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]time.Time)}
}

func (s *memStore) put(key string, modified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = modified
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *memStore) PresignPut(_ context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("mem://put/%s?exp=%d", key, int(expiry.Seconds())), nil
}

func (s *memStore) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("mem://get/%s?exp=%d", key, int(expiry.Seconds())), nil
}

func (s *memStore) DeleteObjects(_ context.Context, keys []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.objects, k)
	}
	return append([]string{}, keys...), nil
}

func (s *memStore) WaitUntilAbsent(_ context.Context, key string, _ time.Duration) error {
	if s.has(key) {
		return fmt.Errorf("%w: %s", storage.ErrNotConfirmed, key)
	}
	return nil
}

func (s *memStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.ObjectInfo, 0)
	for k, mod := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.ObjectInfo{Key: k, LastModified: mod})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
