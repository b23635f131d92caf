// Package repository persists the tracker and profiler state.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// Buckets used by the service.
const (
	BucketMastery = "mastery"
	BucketProfile = "profile"
)

// Store is a key-value store partitioned into buckets. Values are opaque
// bytes; callers usually go through GetJSON, GetAllJSON and PutJSON.
type Store interface {
	// Get returns the value under key, or ErrNotFound.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// GetAll returns every key/value pair in bucket.
	GetAll(ctx context.Context, bucket string) (map[string][]byte, error)
	// Put creates or replaces one value.
	Put(ctx context.Context, bucket, key string, value []byte) error
	// BulkPut writes all items atomically.
	BulkPut(ctx context.Context, bucket string, items map[string][]byte) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, bucket, key string) error
	// Clear removes every key in bucket.
	Clear(ctx context.Context, bucket string) error
	// Close releases resources.
	Close() error
}

// GetJSON loads and decodes one value.
func GetJSON[T any](ctx context.Context, s Store, bucket, key string) (T, error) {
	var out T
	raw, err := s.Get(ctx, bucket, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s/%s: %w", bucket, key, err)
	}
	return out, nil
}

// GetAllJSON loads and decodes a whole bucket. Undecodable entries are
// reported in skipped and left out of the result.
func GetAllJSON[T any](ctx context.Context, s Store, bucket string) (items map[string]T, skipped []string, err error) {
	raw, err := s.GetAll(ctx, bucket)
	if err != nil {
		return nil, nil, err
	}
	items = make(map[string]T, len(raw))
	for k, v := range raw {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			skipped = append(skipped, k)
			continue
		}
		items[k] = item
	}
	return items, skipped, nil
}

// PutJSON encodes and stores one value.
func PutJSON[T any](ctx context.Context, s Store, bucket, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, key, err)
	}
	return s.Put(ctx, bucket, key, raw)
}

// BulkPutJSON encodes and stores many values in one write.
func BulkPutJSON[T any](ctx context.Context, s Store, bucket string, items map[string]T) error {
	raw := make(map[string][]byte, len(items))
	for k, v := range items {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", bucket, k, err)
		}
		raw[k] = b
	}
	return s.BulkPut(ctx, bucket, raw)
}

func checkKey(bucket, key string) error {
	if bucket == "" || key == "" {
		return ErrEmptyKey
	}
	return nil
}
