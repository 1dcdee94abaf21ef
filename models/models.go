package models

// Subject is a course taught inside a classroom
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"` // Short code shown next to the name, e.g. "DBMS"
}

// Member is a student listed on a classroom
type Member struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
}

// Classroom represents a class managed by a lecturer
type Classroom struct {
	ID        string    `json:"id"`        // Unique classroom ID
	Name      string    `json:"name"`      // Classroom name
	ClassCode string    `json:"classCode"` // Join code handed out to students
	Subjects  []Subject `json:"subjects"`  // Insertion order
	Students  []Member  `json:"students"`  // Insertion order, the roster
}

// Student is an entry of the student registry
type Student struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
	ClassID    string `json:"classId"` // ID of the classroom the student joined
	Email      string `json:"email,omitempty"`
}

// RosterEntry identifies a student's membership in a classroom.
// StudentID is the student's roll number, the id records are keyed by.
type RosterEntry struct {
	StudentID   string `json:"studentId"`
	ClassroomID string `json:"classroomId"`
	Name        string `json:"name,omitempty"`
}

// AttendanceRecord is one student's presence for a subject on a date
type AttendanceRecord struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	ClassroomID string `json:"classroomId"`
	SubjectID   string `json:"subjectId"`
	Date        string `json:"date"` // YYYY-MM-DD
	Present     bool   `json:"present"`
}

// GradeRecord holds one student's marks for a subject. Grade is derived from the marks.
type GradeRecord struct {
	ID              string `json:"id"`
	StudentID       string `json:"studentId"`
	ClassroomID     string `json:"classroomId"`
	SubjectID       string `json:"subjectId"`
	MidExamMarks    int    `json:"midExamMarks"`
	LabMarks        int    `json:"labMarks"`
	AssignmentMarks int    `json:"assignmentMarks"`
	SeminarMarks    int    `json:"seminarMarks"`
	ProjectMarks    int    `json:"projectMarks"`
	Grade           string `json:"grade"`
}

// Role is the kind of user driving a session
type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
)

// Session is the caller identity passed into every record operation
type Session struct {
	Role      Role   `json:"role"`
	StudentID string `json:"studentId,omitempty"` // Roll number, set for students only
}

// IsLecturer reports whether the session may edit records
func (s Session) IsLecturer() bool {
	return s.Role == RoleLecturer
}
