package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// ErrNotFound is returned when a key does not exist in a bucket.
var ErrNotFound = errors.New("storage: not found")

// Buckets used by the shell.
const (
	BucketSessions    = "sessions"
	BucketIdentities  = "identities"
	BucketFiles       = "files"
	BucketFileData    = "file_data"
	BucketRevocations = "revocations"
	BucketPayments    = "payments"
	BucketThemes      = "themes"
	BucketSettings    = "settings"
)

// Record is one stored value.
type Record struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// Store is a bucketed key/value store.
type Store interface {
	Put(ctx context.Context, bucket, key string, value []byte) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	// List returns all records in a bucket ordered by key.
	List(ctx context.Context, bucket string) ([]Record, error)
	Close() error
}

// PutJSON encodes v and stores it under key.
func PutJSON(ctx context.Context, s Store, bucket, key string, v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", bucket, key, err)
	}
	return s.Put(ctx, bucket, key, data)
}

// GetJSON loads key and decodes it into v.
func GetJSON(ctx context.Context, s Store, bucket, key string, v any) error {
	data, err := s.Get(ctx, bucket, key)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", bucket, key, err)
	}
	return nil
}

// ListJSON decodes every record in a bucket. Records that fail to decode
// are skipped and reported through the returned count.
func ListJSON[T any](ctx context.Context, s Store, bucket string) ([]T, int, error) {
	records, err := s.List(ctx, bucket)
	if err != nil {
		return nil, 0, err
	}

	out := make([]T, 0, len(records))
	skipped := 0
	for _, r := range records {
		var v T
		if err := sonic.Unmarshal(r.Value, &v); err != nil {
			skipped++
			continue
		}
		out = append(out, v)
	}
	return out, skipped, nil
}
