package db

import (
	"context"
	"errors"
	"testing"

	"campus-records-go/models"
)

func TestReadCollectionAbsentKeyIsEmpty(t *testing.T) {
	items, err := ReadCollection[models.Classroom](context.Background(), NewMemoryStore(), ClassroomsKey)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}

func TestReadCollectionMalformedBlob(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Write(ctx, GradesKey, []byte(`[{"id":`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	items, err := ReadCollection[models.GradeRecord](ctx, store, GradesKey)
	var readErr *StorageReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}
	if readErr.Key != GradesKey {
		t.Fatalf("expected key %q, got %q", GradesKey, readErr.Key)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty result, got %d items", len(items))
	}
}

func TestWriteCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := WriteCollection[models.AttendanceRecord](ctx, store, AttendanceKey, nil); err != nil {
		t.Fatalf("write nil: %v", err)
	}
	raw, err := store.Read(ctx, AttendanceKey)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != "[]" {
		t.Fatalf("expected nil collection stored as [], got %s", raw)
	}

	want := []models.AttendanceRecord{
		{ID: "1", StudentID: "S1", ClassroomID: "C", SubjectID: "M", Date: "2024-01-10", Present: true},
		{ID: "2", StudentID: "S2", ClassroomID: "C", SubjectID: "M", Date: "2024-01-10"},
	}
	if err := WriteCollection(ctx, store, AttendanceKey, want); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadCollection[models.AttendanceRecord](ctx, store, AttendanceKey)
	if err != nil {
		t.Fatalf("read collection: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

type brokenStore struct{}

func (brokenStore) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (brokenStore) Write(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

func TestStorageErrorsWrapCause(t *testing.T) {
	ctx := context.Background()
	_, err := ReadCollection[models.Student](ctx, brokenStore{}, StudentsKey)
	var readErr *StorageReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}

	err = WriteCollection(ctx, brokenStore{}, StudentsKey, []models.Student{{ID: "1"}})
	var writeErr *StorageWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected StorageWriteError, got %v", err)
	}
	if writeErr.Unwrap().Error() != "quota exceeded" {
		t.Fatalf("expected cause preserved, got %v", writeErr.Unwrap())
	}
}
