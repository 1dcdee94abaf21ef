package records

// Letter is a derived grade
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
	LetterF Letter = "F"
)

// Rubric maxima per component. The maxima sum to 90 while the letter
// thresholds below assume a 100 point scale, so an A needs full marks.
const (
	MaxMidExam    = 35
	MaxLab        = 40
	MaxAssignment = 5
	MaxSeminar    = 5
	MaxProject    = 5
)

// Rank orders letters from F (0) to A (4)
func (l Letter) Rank() int {
	switch l {
	case LetterA:
		return 4
	case LetterB:
		return 3
	case LetterC:
		return 2
	case LetterD:
		return 1
	}
	return 0
}

// DeriveGrade maps the sum of the five components to a letter
func DeriveGrade(midExam, lab, assignment, seminar, project int) Letter {
	total := midExam + lab + assignment + seminar + project
	switch {
	case total >= 90:
		return LetterA
	case total >= 80:
		return LetterB
	case total >= 70:
		return LetterC
	case total >= 60:
		return LetterD
	}
	return LetterF
}

// Marks are the five graded components of a grade record
type Marks struct {
	MidExam    int `json:"midExamMarks"`
	Lab        int `json:"labMarks"`
	Assignment int `json:"assignmentMarks"`
	Seminar    int `json:"seminarMarks"`
	Project    int `json:"projectMarks"`
}

// Clamp limits every component to [0, max]
func (m Marks) Clamp() Marks {
	return Marks{
		MidExam:    clamp(m.MidExam, MaxMidExam),
		Lab:        clamp(m.Lab, MaxLab),
		Assignment: clamp(m.Assignment, MaxAssignment),
		Seminar:    clamp(m.Seminar, MaxSeminar),
		Project:    clamp(m.Project, MaxProject),
	}
}

// Total sums the components as stored
func (m Marks) Total() int {
	return m.MidExam + m.Lab + m.Assignment + m.Seminar + m.Project
}

// Letter derives the grade of the marks
func (m Marks) Letter() Letter {
	return DeriveGrade(m.MidExam, m.Lab, m.Assignment, m.Seminar, m.Project)
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
