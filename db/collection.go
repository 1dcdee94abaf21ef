package db

import (
	"context"
	"encoding/json"
	"errors"
)

// ReadCollection loads the JSON array stored under key.
// An absent key is an empty collection. Any other failure also yields an empty
// collection, together with a *StorageReadError the caller may log or act on.
func ReadCollection[T any](ctx context.Context, store RecordStore, key string) ([]T, error) {
	raw, err := store.Read(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []T{}, nil
		}
		return []T{}, &StorageReadError{Key: key, Err: err}
	}
	if len(raw) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return []T{}, &StorageReadError{Key: key, Err: err}
	}
	if items == nil {
		// "null" blob
		items = []T{}
	}
	return items, nil
}

// WriteCollection replaces the blob under key with the JSON encoding of items
func WriteCollection[T any](ctx context.Context, store RecordStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return &StorageWriteError{Key: key, Err: err}
	}
	if err := store.Write(ctx, key, raw); err != nil {
		return &StorageWriteError{Key: key, Err: err}
	}
	return nil
}
