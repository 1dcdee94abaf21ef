package classroom

import (
	"context"
	"errors"
	"testing"

	"campus-records-go/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(db.NewMemoryStore(), zap.NewNop())
}

func TestCreateClassroomAssignsUniqueCodes(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	s.newCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	first, err := s.CreateClassroom(ctx, "  CSE - A ")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Name != "CSE - A" {
		t.Fatalf("expected trimmed name, got %q", first.Name)
	}
	second, err := s.CreateClassroom(ctx, "CSE - B")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.ClassCode != "AAAAAA" || second.ClassCode != "BBBBBB" {
		t.Fatalf("expected codes AAAAAA and BBBBBB, got %s and %s", first.ClassCode, second.ClassCode)
	}

	if _, err := s.CreateClassroom(ctx, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
	if got := len(s.ListClassrooms(ctx)); got != 2 {
		t.Fatalf("expected 2 classrooms, got %d", got)
	}
}

func TestGeneratedClassCodeShape(t *testing.T) {
	code := generateClassCode()
	if len(code) != codeLength {
		t.Fatalf("expected %d characters, got %q", codeLength, code)
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			t.Fatalf("unexpected character %q in %q", r, code)
		}
	}
}

func TestJoinClass(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	clazz, err := s.CreateClassroom(ctx, "CSE - A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.JoinClass(ctx, clazz.ClassCode, "22CS001", "Aarav"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := s.JoinClass(ctx, clazz.ClassCode, "22CS002", "Diya"); err != nil {
		t.Fatalf("join: %v", err)
	}

	tests := []struct {
		name                   string
		code, roll, memberName string
		want                   error
	}{
		{"duplicate roll number", clazz.ClassCode, "22CS001", "Someone", ErrAlreadyEnrolled},
		{"unknown code", "ZZZZZZ", "22CS009", "Rohan", ErrInvalidCode},
		{"missing name", clazz.ClassCode, "22CS009", " ", ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.JoinClass(ctx, tt.code, tt.roll, tt.memberName); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	roster, err := s.Roster(ctx, clazz.ID)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(roster) != 2 || roster[0].StudentID != "22CS001" || roster[1].StudentID != "22CS002" {
		t.Fatalf("expected roster in enrolment order keyed by roll number, got %+v", roster)
	}
	if roster[0].ClassroomID != clazz.ID || roster[0].Name != "Aarav" {
		t.Fatalf("unexpected roster entry %+v", roster[0])
	}

	students := s.Students(ctx, clazz.ID)
	if len(students) != 2 {
		t.Fatalf("expected 2 registered students, got %d", len(students))
	}
	if got := s.Students(ctx, "other"); len(got) != 0 {
		t.Fatalf("expected no students for another classroom, got %d", len(got))
	}
}

func TestRosterUnknownClassroom(t *testing.T) {
	if _, err := newTestService(t).Roster(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveStudent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	clazz, _ := s.CreateClassroom(ctx, "CSE - A")
	for _, roll := range []string{"1", "2", "3"} {
		if _, err := s.JoinClass(ctx, clazz.ClassCode, roll, "Student "+roll); err != nil {
			t.Fatalf("join %s: %v", roll, err)
		}
	}

	if err := s.RemoveStudent(ctx, clazz.ID, "2"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	roster, _ := s.Roster(ctx, clazz.ID)
	if len(roster) != 2 || roster[0].StudentID != "1" || roster[1].StudentID != "3" {
		t.Fatalf("unexpected roster after removal %+v", roster)
	}
	if err := s.RemoveStudent(ctx, "missing", "1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubjects(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	clazz, _ := s.CreateClassroom(ctx, "CSE - A")

	dm, err := s.AddSubject(ctx, clazz.ID, "DM", "CS301")
	if err != nil {
		t.Fatalf("add subject: %v", err)
	}
	if _, err := s.AddSubject(ctx, clazz.ID, "Compilers", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without code, got %v", err)
	}

	added, err := s.ImportTimetableSubjects(ctx, clazz.ID)
	if err != nil {
		t.Fatalf("import timetable: %v", err)
	}
	if len(added) != len(TimetableSubjects)-1 {
		t.Fatalf("expected existing DM to be skipped, added %d of %d", len(added), len(TimetableSubjects))
	}
	again, err := s.ImportTimetableSubjects(ctx, clazz.ID)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected second import to add nothing, got %d", len(again))
	}

	if err := s.DeleteSubject(ctx, clazz.ID, dm.ID); err != nil {
		t.Fatalf("delete subject: %v", err)
	}
	got, _ := s.GetClassroom(ctx, clazz.ID)
	for _, sub := range got.Subjects {
		if sub.ID == dm.ID {
			t.Fatalf("expected subject %s to be removed", dm.ID)
		}
	}
}

func TestDeleteClassroom(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	clazz, _ := s.CreateClassroom(ctx, "CSE - A")

	if err := s.DeleteClassroom(ctx, clazz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetClassroom(ctx, clazz.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteClassroom(ctx, clazz.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListClassroomsDegradesOnMalformedBlob(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	if err := store.Write(ctx, db.ClassroomsKey, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewService(store, zap.NewNop())

	if got := s.ListClassrooms(ctx); len(got) != 0 {
		t.Fatalf("expected no classrooms, got %d", len(got))
	}
	if _, err := s.CreateClassroom(ctx, "CSE - A"); err == nil {
		t.Fatalf("expected create to refuse overwriting an unreadable blob")
	}
	raw, _ := store.Read(ctx, db.ClassroomsKey)
	if string(raw) != "{not json" {
		t.Fatalf("expected blob untouched, got %s", raw)
	}
}

func TestRemoveStudentDropsRegistryEntry(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	clazz, _ := s.CreateClassroom(ctx, "CSE - A")
	other, _ := s.CreateClassroom(ctx, "CSE - B")
	for _, c := range []string{clazz.ClassCode, other.ClassCode} {
		if _, err := s.JoinClass(ctx, c, "R1", "Aarav"); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	if err := s.RemoveStudent(ctx, clazz.ID, "R1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := s.Students(ctx, clazz.ID); len(got) != 0 {
		t.Fatalf("expected registry entry removed, got %+v", got)
	}
	if got := s.Students(ctx, other.ID); len(got) != 1 {
		t.Fatalf("expected other classroom's entry kept, got %+v", got)
	}
	if err := s.RemoveStudent(ctx, clazz.ID, "R1"); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound for roll number not on roster, got %v", err)
	}
}

// registryFailStore fails writes of the student registry while failing is set
type registryFailStore struct {
	*db.MemoryStore
	failing bool
}

func (s *registryFailStore) Write(ctx context.Context, key string, value []byte) error {
	if s.failing && key == db.StudentsKey {
		return errors.New("quota exceeded")
	}
	return s.MemoryStore.Write(ctx, key, value)
}

func TestRetriedJoinRestoresRegistryEntry(t *testing.T) {
	ctx := context.Background()
	store := &registryFailStore{MemoryStore: db.NewMemoryStore()}
	s := NewService(store, zap.NewNop())
	clazz, _ := s.CreateClassroom(ctx, "CSE - A")

	store.failing = true
	if _, err := s.JoinClass(ctx, clazz.ClassCode, "R1", "Aarav"); err == nil {
		t.Fatalf("expected registry write failure")
	}
	if got := s.Students(ctx, clazz.ID); len(got) != 0 {
		t.Fatalf("expected no registry entry yet, got %+v", got)
	}

	store.failing = false
	if _, err := s.JoinClass(ctx, clazz.ClassCode, "R1", "Aarav"); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled on retry, got %v", err)
	}
	got := s.Students(ctx, clazz.ID)
	if len(got) != 1 || got[0].RollNumber != "R1" || got[0].Name != "Aarav" {
		t.Fatalf("expected registry entry restored, got %+v", got)
	}
}

func TestAddStudent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	clazz, _ := s.CreateClassroom(ctx, "CSE - A")
	other, _ := s.CreateClassroom(ctx, "CSE - B")
	if _, err := s.JoinClass(ctx, other.ClassCode, "22CS001", "Aarav"); err != nil {
		t.Fatalf("join: %v", err)
	}

	added, err := s.AddStudent(ctx, clazz.ID, " 22CS002 ", "Diya")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.RollNumber != "22CS002" || added.ClassID != clazz.ID {
		t.Fatalf("unexpected student %+v", added)
	}

	tests := []struct {
		name, classroomID, roll, studentName string
		want                                 error
	}{
		{"roll number used in another class", clazz.ID, "22cs001", "Rohan", ErrDuplicateRoll},
		{"name used in this class", clazz.ID, "22CS003", "diya", ErrDuplicateName},
		{"missing roll number", clazz.ID, "", "Rohan", ErrInvalidInput},
		{"unknown classroom", "missing", "22CS003", "Rohan", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddStudent(ctx, tt.classroomID, tt.roll, tt.studentName); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	roster, _ := s.Roster(ctx, clazz.ID)
	if len(roster) != 1 || roster[0].StudentID != "22CS002" {
		t.Fatalf("unexpected roster %+v", roster)
	}
}

func TestUpdateStudent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	clazz, _ := s.CreateClassroom(ctx, "CSE - A")
	for _, st := range []struct{ roll, name string }{{"R1", "Aarav"}, {"R2", "Diya"}} {
		if _, err := s.AddStudent(ctx, clazz.ID, st.roll, st.name); err != nil {
			t.Fatalf("add %s: %v", st.roll, err)
		}
	}

	updated, err := s.UpdateStudent(ctx, clazz.ID, "R1", "R9", "Aarav S")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.RollNumber != "R9" || updated.Name != "Aarav S" {
		t.Fatalf("unexpected student %+v", updated)
	}
	roster, _ := s.Roster(ctx, clazz.ID)
	if roster[0].StudentID != "R9" || roster[0].Name != "Aarav S" {
		t.Fatalf("expected roster updated in place, got %+v", roster)
	}
	registry := s.Students(ctx, clazz.ID)
	if len(registry) != 2 || registry[0].RollNumber != "R9" || registry[0].Name != "Aarav S" {
		t.Fatalf("expected registry updated in place, got %+v", registry)
	}

	if _, err := s.UpdateStudent(ctx, clazz.ID, "R9", "R9", "Aarav"); err != nil {
		t.Fatalf("expected rename keeping the roll number to succeed, got %v", err)
	}
	if _, err := s.UpdateStudent(ctx, clazz.ID, "R9", "r2", "Aarav"); !errors.Is(err, ErrDuplicateRoll) {
		t.Fatalf("expected ErrDuplicateRoll, got %v", err)
	}
	if _, err := s.UpdateStudent(ctx, clazz.ID, "R9", "R9", "DIYA"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := s.UpdateStudent(ctx, clazz.ID, "R404", "R5", "Rohan"); !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestEnrolFromRegistry(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	source, _ := s.CreateClassroom(ctx, "CSE - A")
	target, _ := s.CreateClassroom(ctx, "CSE - B")
	for _, roll := range []string{"R1", "R2"} {
		if _, err := s.AddStudent(ctx, source.ID, roll, "Student "+roll); err != nil {
			t.Fatalf("add %s: %v", roll, err)
		}
	}
	if _, err := s.JoinClass(ctx, target.ClassCode, "R2", "Student R2"); err != nil {
		t.Fatalf("join: %v", err)
	}

	added, err := s.EnrolFromRegistry(ctx, target.ID)
	if err != nil {
		t.Fatalf("enrol: %v", err)
	}
	if len(added) != 1 || added[0].RollNumber != "R1" || added[0].ClassID != target.ID {
		t.Fatalf("expected only R1 enrolled, got %+v", added)
	}
	roster, _ := s.Roster(ctx, target.ID)
	if len(roster) != 2 || roster[1].StudentID != "R1" {
		t.Fatalf("unexpected roster %+v", roster)
	}
	if got := s.Students(ctx, target.ID); len(got) != 2 {
		t.Fatalf("expected registry entries for both students, got %+v", got)
	}

	again, err := s.EnrolFromRegistry(ctx, target.ID)
	if err != nil || len(again) != 0 {
		t.Fatalf("expected nothing left to enrol, got %+v %v", again, err)
	}
	if _, err := s.EnrolFromRegistry(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
