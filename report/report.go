// Package report renders committed attendance and grades as Excel workbooks.
package report

import (
	"fmt"

	"campus-records-go/models"
	"campus-records-go/records"
	"github.com/xuri/excelize/v2"
)

const (
	AttendanceSheet = "Attendance"
	GradesSheet     = "Grades"
)

var (
	attendanceHeader = []interface{}{"Roll Number", "Name", "Status", "Date", "Subject", "Subject Code"}
	gradeHeader      = []interface{}{
		"Roll Number", "Name",
		fmt.Sprintf("Mid-Exam (%d)", records.MaxMidExam),
		fmt.Sprintf("Lab (%d)", records.MaxLab),
		fmt.Sprintf("Assignment (%d)", records.MaxAssignment),
		fmt.Sprintf("Seminar (%d)", records.MaxSeminar),
		fmt.Sprintf("Project (%d)", records.MaxProject),
		"Total", "Grade",
	}
)

// AttendanceWorkbook lists every roster entry with its status for the date.
// Students without a record are reported absent.
func AttendanceWorkbook(subject models.Subject, date string, roster []models.RosterEntry, attendance []models.AttendanceRecord) (*excelize.File, error) {
	present := make(map[string]bool, len(attendance))
	for _, r := range attendance {
		if r.SubjectID == subject.ID && r.Date == date {
			present[r.StudentID] = r.Present
		}
	}

	rows := make([][]interface{}, 0, len(roster))
	for _, entry := range roster {
		status := "Absent"
		if present[entry.StudentID] {
			status = "Present"
		}
		rows = append(rows, []interface{}{entry.StudentID, entry.Name, status, date, subject.Name, subject.Code})
	}
	return newWorkbook(AttendanceSheet, attendanceHeader, rows)
}

// GradeWorkbook lists every roster entry with its marks for the subject.
// Students without a record get zero marks.
func GradeWorkbook(subject models.Subject, roster []models.RosterEntry, grades []models.GradeRecord) (*excelize.File, error) {
	byStudent := make(map[string]models.GradeRecord, len(grades))
	for _, g := range grades {
		if g.SubjectID == subject.ID {
			byStudent[g.StudentID] = g
		}
	}

	rows := make([][]interface{}, 0, len(roster))
	for _, entry := range roster {
		m := records.MarksOf(byStudent[entry.StudentID])
		rows = append(rows, []interface{}{
			entry.StudentID, entry.Name,
			m.MidExam, m.Lab, m.Assignment, m.Seminar, m.Project,
			m.Total(), string(m.Letter()),
		})
	}
	return newWorkbook(GradesSheet, gradeHeader, rows)
}

func newWorkbook(sheet string, header []interface{}, rows [][]interface{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}

// FileName is the download name of a report
func FileName(kind, subjectCode, date string) string {
	if date == "" {
		return fmt.Sprintf("%s_%s.xlsx", kind, subjectCode)
	}
	return fmt.Sprintf("%s_%s_%s.xlsx", kind, subjectCode, date)
}
