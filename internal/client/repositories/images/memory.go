package images

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrQuotaExceeded is returned by MemoryRepository.Set when storing the
// payload would exceed the configured quota.
var ErrQuotaExceeded = errors.New("quota exceeded")

// MemoryRepository keeps payloads in a map. A positive quota bounds the
// total stored bytes, which makes write failures reproducible.
type MemoryRepository struct {
	mu    sync.RWMutex
	data  map[string][]byte
	used  int
	quota int
}

func NewMemoryRepository(quota int) *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte), quota: quota}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	used := r.used - len(r.data[key]) + len(data)
	if r.quota > 0 && used > r.quota {
		return fmt.Errorf("store %s (%d bytes): %w", key, len(data), ErrQuotaExceeded)
	}

	r.data[key] = append([]byte{}, data...)
	r.used = used
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.used -= len(r.data[key])
	delete(r.data, key)
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = make(map[string][]byte)
	r.used = 0
	return nil
}

func (r *MemoryRepository) TotalSize(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(r.used), nil
}

// Len returns the number of stored payloads.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
