package records

import (
	"campus-records-go/db"
	"campus-records-go/models"
)

// AttendanceEditor stages and commits attendance for one classroom, subject and date.
// Fields are the present flag; unmarked students commit as absent.
type AttendanceEditor = Editor[models.AttendanceRecord, bool]

// NewAttendanceEditor creates an editing session over the attendance collection
func NewAttendanceEditor(store db.RecordStore, roster RosterProvider, opts Options) *AttendanceEditor {
	return newEditor(store, roster, kind[models.AttendanceRecord, bool]{
		name:     "attendance",
		label:    "Attendance",
		noun:     "attendance records",
		storeKey: db.AttendanceKey,
		dated:    true,
		keyOf:    attendanceKey,
		build: func(id string, k NaturalKey, present bool) models.AttendanceRecord {
			return models.AttendanceRecord{
				ID:          id,
				StudentID:   k.StudentID,
				ClassroomID: k.ClassroomID,
				SubjectID:   k.SubjectID,
				Date:        k.Date,
				Present:     present,
			}
		},
	}, opts)
}

func attendanceKey(r models.AttendanceRecord) NaturalKey {
	return NaturalKey{
		StudentID:   r.StudentID,
		ClassroomID: r.ClassroomID,
		SubjectID:   r.SubjectID,
		Date:        r.Date,
	}
}

// AttendanceSummary is a student's attendance over a set of records
type AttendanceSummary struct {
	StudentID  string  `json:"studentId"`
	Present    int     `json:"present"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Summarize counts attendance per student, in order of first appearance
func Summarize(records []models.AttendanceRecord) []AttendanceSummary {
	index := make(map[string]int)
	out := make([]AttendanceSummary, 0)
	for _, r := range records {
		i, ok := index[r.StudentID]
		if !ok {
			i = len(out)
			index[r.StudentID] = i
			out = append(out, AttendanceSummary{StudentID: r.StudentID})
		}
		out[i].Total++
		if r.Present {
			out[i].Present++
		}
	}
	for i := range out {
		out[i].Percentage = float64(out[i].Present) * 100 / float64(out[i].Total)
	}
	return out
}
