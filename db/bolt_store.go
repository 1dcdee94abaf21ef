package db

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const blobBucket = "blobs"

// BoltStore provides a BoltDB-backed blob store
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens a BoltDB-backed store at the provided path
func OpenBolt(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &BoltStore{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying BoltDB database
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Read fetches the blob stored under key
func (s *BoltStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(blobBucket))
		if bucket == nil {
			return fmt.Errorf("blob bucket is missing")
		}
		payload := bucket.Get([]byte(key))
		if payload == nil {
			return ErrNotFound
		}
		// payload is only valid inside the transaction
		out = append([]byte(nil), payload...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Write replaces the blob stored under key
func (s *BoltStore) Write(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(blobBucket))
		if bucket == nil {
			return fmt.Errorf("blob bucket is missing")
		}
		return bucket.Put([]byte(key), value)
	})
}

func (s *BoltStore) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(blobBucket)); err != nil {
			return fmt.Errorf("create blob bucket: %w", err)
		}
		return nil
	})
}
