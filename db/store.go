package db

import (
	"context"
	"errors"
	"fmt"
)

// Keys of the blobs the application keeps in a RecordStore
const (
	AttendanceKey = "attendance" // JSON array of models.AttendanceRecord
	GradesKey     = "grades"     // JSON array of models.GradeRecord
	ClassroomsKey = "classrooms" // JSON array of models.Classroom
	StudentsKey   = "students"   // JSON array of models.Student
)

// ErrNotFound is returned by RecordStore.Read when a key holds no blob
var ErrNotFound = errors.New("key not found")

// RecordStore is a flat key-value blob store. Every write replaces the whole blob.
type RecordStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
}

// StorageReadError reports a blob that could not be read or decoded.
// Callers recover by substituting an empty collection.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read %q: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError reports a blob that could not be encoded or stored
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }
