package records

import (
	"campus-records-go/db"
	"campus-records-go/models"
)

// GradeEditor stages and commits marks for one classroom and subject.
// The letter grade is always derived from the marks when a record is built.
type GradeEditor = Editor[models.GradeRecord, Marks]

// NewGradeEditor creates an editing session over the grades collection
func NewGradeEditor(store db.RecordStore, roster RosterProvider, opts Options) *GradeEditor {
	return newEditor(store, roster, kind[models.GradeRecord, Marks]{
		name:      "grades",
		label:     "All grades",
		noun:      "grades",
		storeKey:  db.GradesKey,
		keyOf:     gradeKey,
		build:     buildGrade,
		normalize: Marks.Clamp,
	}, opts)
}

func gradeKey(r models.GradeRecord) NaturalKey {
	return NaturalKey{
		StudentID:   r.StudentID,
		ClassroomID: r.ClassroomID,
		SubjectID:   r.SubjectID,
	}
}

func buildGrade(id string, k NaturalKey, m Marks) models.GradeRecord {
	return models.GradeRecord{
		ID:              id,
		StudentID:       k.StudentID,
		ClassroomID:     k.ClassroomID,
		SubjectID:       k.SubjectID,
		MidExamMarks:    m.MidExam,
		LabMarks:        m.Lab,
		AssignmentMarks: m.Assignment,
		SeminarMarks:    m.Seminar,
		ProjectMarks:    m.Project,
		Grade:           string(m.Letter()),
	}
}

// MarksOf extracts the marks of a grade record
func MarksOf(r models.GradeRecord) Marks {
	return Marks{
		MidExam:    r.MidExamMarks,
		Lab:        r.LabMarks,
		Assignment: r.AssignmentMarks,
		Seminar:    r.SeminarMarks,
		Project:    r.ProjectMarks,
	}
}
