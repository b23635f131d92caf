package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/prepscore/pkg/metrics"
)

// MemoryStore keeps everything in process memory. State is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	defer observe(bucket, "get", time.Now())
	if err := checkKey(bucket, key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	v, ok := s.buckets[bucket][key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

// GetAll implements Store.
func (s *MemoryStore) GetAll(_ context.Context, bucket string) (map[string][]byte, error) {
	defer observe(bucket, "get_all", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make(map[string][]byte, len(s.buckets[bucket]))
	for k, v := range s.buckets[bucket] {
		out[k] = clone(v)
	}
	return out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, bucket, key string, value []byte) error {
	defer observe(bucket, "put", time.Now())
	if err := checkKey(bucket, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.bucket(bucket)[key] = clone(value)
	return nil
}

// BulkPut implements Store.
func (s *MemoryStore) BulkPut(_ context.Context, bucket string, items map[string][]byte) error {
	defer observe(bucket, "bulk_put", time.Now())
	for k := range items {
		if err := checkKey(bucket, k); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	b := s.bucket(bucket)
	for k, v := range items {
		b[k] = clone(v)
	}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	defer observe(bucket, "delete", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.buckets[bucket], key)
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context, bucket string) error {
	defer observe(bucket, "clear", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	delete(s.buckets, bucket)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) bucket(name string) map[string][]byte {
	b, ok := s.buckets[name]
	if !ok {
		b = make(map[string][]byte)
		s.buckets[name] = b
	}
	return b
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

func observe(bucket, op string, start time.Time) {
	metrics.RecordStoreOperation(bucket, op, float64(time.Since(start).Microseconds())/1000)
}
