package classroom

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"campus-records-go/db"
	"campus-records-go/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound        = errors.New("classroom not found")
	ErrInvalidCode     = errors.New("invalid class code")
	ErrAlreadyEnrolled = errors.New("you are already enrolled in this class")
	ErrInvalidInput    = errors.New("please fill in all fields")
	ErrStudentNotFound = errors.New("student not found")
	ErrDuplicateRoll   = errors.New("a student with this roll number already exists")
	ErrDuplicateName   = errors.New("a student with this name already exists in this class")
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Service manages classrooms, their subjects and their rosters
type Service struct {
	store    db.RecordStore
	log      *zap.Logger
	validate *validator.Validate
	newCode  func() string
	newID    func() string
}

// NewService creates a new classroom Service
func NewService(store db.RecordStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		log:      log,
		validate: validator.New(),
		newCode:  generateClassCode,
		newID:    uuid.NewString,
	}
}

func generateClassCode() string {
	var b strings.Builder
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return b.String()
}

func (s *Service) load(ctx context.Context) ([]models.Classroom, error) {
	classrooms, err := db.ReadCollection[models.Classroom](ctx, s.store, db.ClassroomsKey)
	if err != nil {
		s.log.Error("failed to read classrooms", zap.Error(err))
		return nil, err
	}
	return classrooms, nil
}

func (s *Service) save(ctx context.Context, classrooms []models.Classroom) error {
	if err := db.WriteCollection(ctx, s.store, db.ClassroomsKey, classrooms); err != nil {
		s.log.Error("failed to write classrooms", zap.Error(err))
		return err
	}
	return nil
}

// update loads the classrooms, applies fn to the one with classroomID and saves
func (s *Service) update(ctx context.Context, classroomID string, fn func(*models.Classroom) error) (models.Classroom, error) {
	classrooms, err := s.load(ctx)
	if err != nil {
		return models.Classroom{}, err
	}
	for i := range classrooms {
		if classrooms[i].ID != classroomID {
			continue
		}
		if err := fn(&classrooms[i]); err != nil {
			return models.Classroom{}, err
		}
		if err := s.save(ctx, classrooms); err != nil {
			return models.Classroom{}, err
		}
		return classrooms[i], nil
	}
	return models.Classroom{}, ErrNotFound
}

// --- Classroom Operations ---

// ListClassrooms returns every classroom in insertion order.
// An unreadable blob reads as no classrooms.
func (s *Service) ListClassrooms(ctx context.Context) []models.Classroom {
	classrooms, err := s.load(ctx)
	if err != nil {
		return []models.Classroom{}
	}
	return classrooms
}

// GetClassroom retrieves a classroom by its ID
func (s *Service) GetClassroom(ctx context.Context, classroomID string) (models.Classroom, error) {
	for _, c := range s.ListClassrooms(ctx) {
		if c.ID == classroomID {
			return c, nil
		}
	}
	return models.Classroom{}, ErrNotFound
}

type newClassroom struct {
	Name string `validate:"required"`
}

// CreateClassroom adds a classroom with a fresh join code
func (s *Service) CreateClassroom(ctx context.Context, name string) (models.Classroom, error) {
	name = strings.TrimSpace(name)
	if err := s.validate.Struct(newClassroom{Name: name}); err != nil {
		return models.Classroom{}, fmt.Errorf("%w: classroom name is required", ErrInvalidInput)
	}

	classrooms, err := s.load(ctx)
	if err != nil {
		return models.Classroom{}, err
	}

	used := make(map[string]bool, len(classrooms))
	for _, c := range classrooms {
		used[c.ClassCode] = true
	}
	code := s.newCode()
	for used[code] {
		code = s.newCode()
	}

	created := models.Classroom{
		ID:        s.newID(),
		Name:      name,
		ClassCode: code,
		Subjects:  []models.Subject{},
		Students:  []models.Member{},
	}
	if err := s.save(ctx, append(classrooms, created)); err != nil {
		return models.Classroom{}, err
	}
	s.log.Info("classroom created", zap.String("classroom_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// DeleteClassroom removes a classroom. Its records are left in place.
func (s *Service) DeleteClassroom(ctx context.Context, classroomID string) error {
	classrooms, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := make([]models.Classroom, 0, len(classrooms))
	for _, c := range classrooms {
		if c.ID != classroomID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(classrooms) {
		return ErrNotFound
	}
	return s.save(ctx, kept)
}

// --- Subject Operations ---

type newSubject struct {
	Name string `validate:"required"`
	Code string `validate:"required"`
}

// AddSubject appends a subject to a classroom
func (s *Service) AddSubject(ctx context.Context, classroomID, name, code string) (models.Subject, error) {
	in := newSubject{Name: strings.TrimSpace(name), Code: strings.TrimSpace(code)}
	if err := s.validate.Struct(in); err != nil {
		return models.Subject{}, fmt.Errorf("%w: subject name and code are required", ErrInvalidInput)
	}

	subject := models.Subject{ID: s.newID(), Name: in.Name, Code: in.Code}
	_, err := s.update(ctx, classroomID, func(c *models.Classroom) error {
		c.Subjects = append(c.Subjects, subject)
		return nil
	})
	if err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

// DeleteSubject removes a subject from a classroom
func (s *Service) DeleteSubject(ctx context.Context, classroomID, subjectID string) error {
	_, err := s.update(ctx, classroomID, func(c *models.Classroom) error {
		kept := make([]models.Subject, 0, len(c.Subjects))
		for _, sub := range c.Subjects {
			if sub.ID != subjectID {
				kept = append(kept, sub)
			}
		}
		c.Subjects = kept
		return nil
	})
	return err
}

// ImportTimetableSubjects adds the timetable's subjects that the classroom
// does not already have by name. It returns the subjects added.
func (s *Service) ImportTimetableSubjects(ctx context.Context, classroomID string) ([]models.Subject, error) {
	var added []models.Subject
	_, err := s.update(ctx, classroomID, func(c *models.Classroom) error {
		existing := make(map[string]bool, len(c.Subjects))
		for _, sub := range c.Subjects {
			existing[sub.Name] = true
		}
		for _, entry := range TimetableSubjects {
			if existing[entry.Name] {
				continue
			}
			sub := models.Subject{ID: s.newID(), Name: entry.Name, Code: entry.Code}
			c.Subjects = append(c.Subjects, sub)
			added = append(added, sub)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// --- Roster Operations ---

type joinRequest struct {
	ClassCode  string `validate:"required"`
	RollNumber string `validate:"required"`
	Name       string `validate:"required"`
}

// JoinClass enrols a student in the classroom holding classCode and records
// the student in the registry
func (s *Service) JoinClass(ctx context.Context, classCode, rollNumber, name string) (models.Classroom, error) {
	req := joinRequest{
		ClassCode:  strings.TrimSpace(classCode),
		RollNumber: strings.TrimSpace(rollNumber),
		Name:       strings.TrimSpace(name),
	}
	if err := s.validate.Struct(req); err != nil {
		return models.Classroom{}, ErrInvalidInput
	}

	classrooms, err := s.load(ctx)
	if err != nil {
		return models.Classroom{}, err
	}
	classroomID := ""
	for _, c := range classrooms {
		if c.ClassCode == req.ClassCode {
			classroomID = c.ID
			break
		}
	}
	if classroomID == "" {
		return models.Classroom{}, ErrInvalidCode
	}

	joined, err := s.enrol(ctx, classroomID, models.Member{ID: s.newID(), Name: req.Name, RollNumber: req.RollNumber})
	if err != nil {
		return models.Classroom{}, err
	}
	s.log.Info("student joined classroom",
		zap.String("classroom_id", classroomID),
		zap.String("roll_number", req.RollNumber))
	return joined, nil
}

// enrol appends member to the classroom roster and upserts the registry entry.
// A member already on the roster still gets a missing registry entry restored.
func (s *Service) enrol(ctx context.Context, classroomID string, member models.Member) (models.Classroom, error) {
	var existing *models.Member
	joined, err := s.update(ctx, classroomID, func(c *models.Classroom) error {
		for i := range c.Students {
			if c.Students[i].RollNumber == member.RollNumber {
				m := c.Students[i]
				existing = &m
				return ErrAlreadyEnrolled
			}
		}
		c.Students = append(c.Students, member)
		return nil
	})
	if errors.Is(err, ErrAlreadyEnrolled) && existing != nil {
		if regErr := s.ensureRegistered(ctx, classroomID, *existing); regErr != nil {
			return models.Classroom{}, regErr
		}
		return models.Classroom{}, err
	}
	if err != nil {
		return models.Classroom{}, err
	}
	if err := s.register(ctx, registryEntry(classroomID, member)); err != nil {
		return models.Classroom{}, err
	}
	return joined, nil
}

func registryEntry(classroomID string, m models.Member) models.Student {
	return models.Student{ID: m.ID, Name: m.Name, RollNumber: m.RollNumber, ClassID: classroomID}
}

type newStudent struct {
	RollNumber string `validate:"required"`
	Name       string `validate:"required"`
}

// AddStudent enrols a student directly. The roll number must be unused in
// every classroom and the name unused in this one, both ignoring case.
func (s *Service) AddStudent(ctx context.Context, classroomID, rollNumber, name string) (models.Student, error) {
	in := newStudent{RollNumber: strings.TrimSpace(rollNumber), Name: strings.TrimSpace(name)}
	if err := s.validate.Struct(in); err != nil {
		return models.Student{}, ErrInvalidInput
	}
	clazz, err := s.GetClassroom(ctx, classroomID)
	if err != nil {
		return models.Student{}, err
	}
	if nameTaken(clazz.Students, in.Name, "") {
		return models.Student{}, ErrDuplicateName
	}
	registry, err := db.ReadCollection[models.Student](ctx, s.store, db.StudentsKey)
	if err != nil {
		return models.Student{}, err
	}
	for _, st := range registry {
		if strings.EqualFold(st.RollNumber, in.RollNumber) {
			return models.Student{}, ErrDuplicateRoll
		}
	}

	member := models.Member{ID: s.newID(), Name: in.Name, RollNumber: in.RollNumber}
	if _, err := s.enrol(ctx, classroomID, member); err != nil {
		if errors.Is(err, ErrAlreadyEnrolled) {
			return models.Student{}, ErrDuplicateRoll
		}
		return models.Student{}, err
	}
	s.log.Info("student added", zap.String("classroom_id", classroomID), zap.String("roll_number", in.RollNumber))
	return registryEntry(classroomID, member), nil
}

// UpdateStudent renames a student or changes their roll number, on the
// roster and in the registry. Records already keyed by the old roll number
// are left as they are.
func (s *Service) UpdateStudent(ctx context.Context, classroomID, rollNumber, newRollNumber, newName string) (models.Student, error) {
	in := newStudent{RollNumber: strings.TrimSpace(newRollNumber), Name: strings.TrimSpace(newName)}
	if err := s.validate.Struct(in); err != nil {
		return models.Student{}, ErrInvalidInput
	}

	registry, err := db.ReadCollection[models.Student](ctx, s.store, db.StudentsKey)
	if err != nil {
		return models.Student{}, err
	}
	if !strings.EqualFold(in.RollNumber, rollNumber) {
		for _, st := range registry {
			if strings.EqualFold(st.RollNumber, in.RollNumber) {
				return models.Student{}, ErrDuplicateRoll
			}
		}
	}

	var updated models.Member
	_, err = s.update(ctx, classroomID, func(c *models.Classroom) error {
		idx := -1
		for i, m := range c.Students {
			if m.RollNumber == rollNumber {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrStudentNotFound
		}
		if nameTaken(c.Students, in.Name, rollNumber) {
			return ErrDuplicateName
		}
		for i, m := range c.Students {
			if i != idx && strings.EqualFold(m.RollNumber, in.RollNumber) {
				return ErrDuplicateRoll
			}
		}
		c.Students[idx].Name = in.Name
		c.Students[idx].RollNumber = in.RollNumber
		updated = c.Students[idx]
		return nil
	})
	if err != nil {
		return models.Student{}, err
	}

	entry := registryEntry(classroomID, updated)
	err = s.mutateRegistry(ctx, func(all []models.Student) []models.Student {
		for i := range all {
			if all[i].ClassID == classroomID && all[i].RollNumber == rollNumber {
				entry.Email = all[i].Email
				all[i] = entry
				return all
			}
		}
		return append(all, entry)
	})
	if err != nil {
		return models.Student{}, err
	}
	s.log.Info("student updated",
		zap.String("classroom_id", classroomID),
		zap.String("roll_number", rollNumber),
		zap.String("new_roll_number", in.RollNumber))
	return entry, nil
}

// EnrolFromRegistry enrols every registered student not yet on the
// classroom roster. It returns the students added.
func (s *Service) EnrolFromRegistry(ctx context.Context, classroomID string) ([]models.Student, error) {
	registry, err := db.ReadCollection[models.Student](ctx, s.store, db.StudentsKey)
	if err != nil {
		return nil, err
	}

	var added []models.Member
	_, err = s.update(ctx, classroomID, func(c *models.Classroom) error {
		onRoster := make(map[string]bool, len(c.Students))
		for _, m := range c.Students {
			onRoster[m.RollNumber] = true
		}
		for _, st := range registry {
			if st.RollNumber == "" || onRoster[st.RollNumber] {
				continue
			}
			onRoster[st.RollNumber] = true
			m := models.Member{ID: st.ID, Name: st.Name, RollNumber: st.RollNumber}
			c.Students = append(c.Students, m)
			added = append(added, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.Student, 0, len(added))
	for _, m := range added {
		entry := registryEntry(classroomID, m)
		if err := s.register(ctx, entry); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	s.log.Info("enrolled registered students", zap.String("classroom_id", classroomID), zap.Int("added", len(out)))
	return out, nil
}

// nameTaken reports whether another member than skipRoll already uses name
func nameTaken(members []models.Member, name, skipRoll string) bool {
	for _, m := range members {
		if m.RollNumber != skipRoll && strings.EqualFold(m.Name, name) {
			return true
		}
	}
	return false
}

// RemoveStudent takes a student off a classroom roster and out of the registry
func (s *Service) RemoveStudent(ctx context.Context, classroomID, rollNumber string) error {
	_, err := s.update(ctx, classroomID, func(c *models.Classroom) error {
		kept := make([]models.Member, 0, len(c.Students))
		for _, m := range c.Students {
			if m.RollNumber != rollNumber {
				kept = append(kept, m)
			}
		}
		if len(kept) == len(c.Students) {
			return ErrStudentNotFound
		}
		c.Students = kept
		return nil
	})
	if err != nil {
		return err
	}
	return s.mutateRegistry(ctx, func(all []models.Student) []models.Student {
		kept := make([]models.Student, 0, len(all))
		for _, st := range all {
			if st.RollNumber != rollNumber || st.ClassID != classroomID {
				kept = append(kept, st)
			}
		}
		return kept
	})
}

// Roster lists the students of a classroom in enrolment order. StudentID is
// the roll number, the id attendance and grade records are keyed by.
func (s *Service) Roster(ctx context.Context, classroomID string) ([]models.RosterEntry, error) {
	classrooms, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range classrooms {
		if c.ID != classroomID {
			continue
		}
		entries := make([]models.RosterEntry, 0, len(c.Students))
		for _, m := range c.Students {
			entries = append(entries, models.RosterEntry{
				StudentID:   m.RollNumber,
				ClassroomID: c.ID,
				Name:        m.Name,
			})
		}
		return entries, nil
	}
	return nil, ErrNotFound
}

// --- Student Registry ---

// Students returns the student registry, optionally limited to one classroom
func (s *Service) Students(ctx context.Context, classroomID string) []models.Student {
	all, err := db.ReadCollection[models.Student](ctx, s.store, db.StudentsKey)
	if err != nil {
		s.log.Warn("failed to read students", zap.Error(err))
	}
	if classroomID == "" {
		return all
	}
	out := make([]models.Student, 0)
	for _, st := range all {
		if st.ClassID == classroomID {
			out = append(out, st)
		}
	}
	return out
}

// mutateRegistry applies fn to the registry and writes the result back.
// An unreadable registry is left intact rather than overwritten.
func (s *Service) mutateRegistry(ctx context.Context, fn func([]models.Student) []models.Student) error {
	all, err := db.ReadCollection[models.Student](ctx, s.store, db.StudentsKey)
	if err != nil {
		s.log.Error("failed to read students", zap.Error(err))
		return err
	}
	if err := db.WriteCollection(ctx, s.store, db.StudentsKey, fn(all)); err != nil {
		s.log.Error("failed to write students", zap.Error(err))
		return err
	}
	return nil
}

// register upserts student by roll number and classroom
func (s *Service) register(ctx context.Context, student models.Student) error {
	return s.mutateRegistry(ctx, func(all []models.Student) []models.Student {
		for i := range all {
			if all[i].RollNumber == student.RollNumber && all[i].ClassID == student.ClassID {
				all[i] = student
				return all
			}
		}
		return append(all, student)
	})
}

// ensureRegistered adds the member to the registry unless an entry exists
func (s *Service) ensureRegistered(ctx context.Context, classroomID string, m models.Member) error {
	all, err := db.ReadCollection[models.Student](ctx, s.store, db.StudentsKey)
	if err != nil {
		return err
	}
	for _, st := range all {
		if st.RollNumber == m.RollNumber && st.ClassID == classroomID {
			return nil
		}
	}
	s.log.Warn("restoring missing registry entry", zap.String("classroom_id", classroomID), zap.String("roll_number", m.RollNumber))
	return s.register(ctx, registryEntry(classroomID, m))
}
