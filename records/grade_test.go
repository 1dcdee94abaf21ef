package records

import "testing"

func TestDeriveGradeScenarios(t *testing.T) {
	cases := []struct {
		name                                   string
		mid, lab, assignment, seminar, project int
		want                                   Letter
	}{
		{"full marks", 35, 40, 5, 5, 5, LetterA},
		{"total 40", 20, 20, 0, 0, 0, LetterF},
		{"total 89", 35, 40, 5, 5, 4, LetterB},
		{"total 80", 35, 35, 5, 5, 0, LetterB},
		{"total 70", 30, 40, 0, 0, 0, LetterC},
		{"total 60", 20, 40, 0, 0, 0, LetterD},
		{"total 59", 19, 40, 0, 0, 0, LetterF},
		{"zero", 0, 0, 0, 0, 0, LetterF},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveGrade(tc.mid, tc.lab, tc.assignment, tc.seminar, tc.project)
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDeriveGradeIsMonotonic(t *testing.T) {
	maxima := [5]int{MaxMidExam, MaxLab, MaxAssignment, MaxSeminar, MaxProject}
	grade := func(m [5]int) Letter {
		return DeriveGrade(m[0], m[1], m[2], m[3], m[4])
	}

	for mid := 0; mid <= MaxMidExam; mid++ {
		for lab := 0; lab <= MaxLab; lab++ {
			for a := 0; a <= MaxAssignment; a++ {
				for s := 0; s <= MaxSeminar; s++ {
					for p := 0; p <= MaxProject; p++ {
						base := [5]int{mid, lab, a, s, p}
						rank := grade(base).Rank()
						for i := range base {
							if base[i] == maxima[i] {
								continue
							}
							up := base
							up[i]++
							if grade(up).Rank() < rank {
								t.Fatalf("raising component %d of %v lowered the grade", i, base)
							}
						}
					}
				}
			}
		}
	}
}

func TestMarksClamp(t *testing.T) {
	got := Marks{MidExam: 50, Lab: -3, Assignment: 9, Seminar: 5, Project: 2}.Clamp()
	want := Marks{MidExam: 35, Lab: 0, Assignment: 5, Seminar: 5, Project: 2}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got.Total() != 47 {
		t.Fatalf("expected total 47, got %d", got.Total())
	}
}
