package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a blob path has no content.
var ErrNotFound = errors.New("storage: not found")

// BlobStore is the content-addressed artifact store: timetable extracts,
// routing response archives, and finalized option sets all live here.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
}

// PGBlobStore keeps blobs in the blobs table, one row per path.
type PGBlobStore struct {
	DB *sql.DB
}

func (s *PGBlobStore) Put(ctx context.Context, path string, data []byte) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO blobs (path, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (path) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		path, data)
	if err != nil {
		return &PersistenceError{Op: fmt.Sprintf("put blob %s", path), Err: err}
	}
	return nil
}

func (s *PGBlobStore) Get(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := s.DB.QueryRowContext(ctx, `SELECT data FROM blobs WHERE path = $1`, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: fmt.Sprintf("get blob %s", path), Err: err}
	}
	return data, nil
}

// MemoryBlobStore is an in-process BlobStore for tests and one-shot runs.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Put(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[path] = cp
	return nil
}

func (s *MemoryBlobStore) Get(ctx context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[path]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}
