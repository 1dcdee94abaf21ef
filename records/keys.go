package records

import (
	"strings"

	"github.com/google/uuid"
)

// NaturalKey identifies a record by its business fields.
// Date is empty for grade records.
type NaturalKey struct {
	StudentID   string `json:"studentId" validate:"required"`
	ClassroomID string `json:"classroomId" validate:"required"`
	SubjectID   string `json:"subjectId" validate:"required"`
	Date        string `json:"date,omitempty"`
}

// Scope selects the records a commit replaces
type Scope struct {
	ClassroomID string `json:"classroomId" validate:"required"`
	SubjectID   string `json:"subjectId" validate:"required"`
	Date        string `json:"date,omitempty"`
}

// IsZero reports whether no scope has been selected yet
func (s Scope) IsZero() bool {
	return s == Scope{}
}

// Contains reports whether k falls inside the scope. An empty scope date matches any date.
func (s Scope) Contains(k NaturalKey) bool {
	if k.ClassroomID != s.ClassroomID || k.SubjectID != s.SubjectID {
		return false
	}
	return s.Date == "" || s.Date == k.Date
}

// Key builds the natural key of studentID within the scope
func (s Scope) Key(studentID string) NaturalKey {
	return NaturalKey{
		StudentID:   studentID,
		ClassroomID: s.ClassroomID,
		SubjectID:   s.SubjectID,
		Date:        s.Date,
	}
}

// Filter is a partial natural key; empty fields match anything
type Filter struct {
	StudentID   string `json:"studentId,omitempty" form:"studentId"`
	ClassroomID string `json:"classroomId,omitempty" form:"classroomId"`
	SubjectID   string `json:"subjectId,omitempty" form:"subjectId"`
	Date        string `json:"date,omitempty" form:"date"`
}

// Matches reports whether k agrees with every field set on the filter
func (f Filter) Matches(k NaturalKey) bool {
	return matchField(f.StudentID, k.StudentID) &&
		matchField(f.ClassroomID, k.ClassroomID) &&
		matchField(f.SubjectID, k.SubjectID) &&
		matchField(f.Date, k.Date)
}

func matchField(want, got string) bool {
	return want == "" || want == got
}

var recordNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("campus-records"))

// RecordID derives the surrogate id of a record from its kind and natural key.
// The same key always yields the same id.
func RecordID(kind string, k NaturalKey) string {
	name := strings.Join([]string{kind, k.StudentID, k.ClassroomID, k.SubjectID, k.Date}, "\x1f")
	return uuid.NewSHA1(recordNamespace, []byte(name)).String()
}
