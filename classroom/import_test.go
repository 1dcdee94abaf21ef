package classroom

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func rosterWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		row := row
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestImportRoster(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	clazz, _ := s.CreateClassroom(ctx, "CSE - A")
	if _, err := s.JoinClass(ctx, clazz.ClassCode, "22CS001", "Aarav"); err != nil {
		t.Fatalf("join: %v", err)
	}

	buf := rosterWorkbook(t, [][]interface{}{
		{"Roll Number", "Name"},
		{"22CS001", "Aarav Again"},
		{"22CS002", "Diya"},
		{"", "No Roll"},
		{"22CS003", " Rohan "},
	})

	result, err := s.ImportRoster(ctx, buf, clazz.ID)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", result.Imported)
	}
	if len(result.Skipped) != 2 || result.Skipped[0] != "22CS001" || result.Skipped[1] != "row 4" {
		t.Fatalf("unexpected skipped list %v", result.Skipped)
	}

	roster, _ := s.Roster(ctx, clazz.ID)
	if len(roster) != 3 || roster[2].Name != "Rohan" {
		t.Fatalf("unexpected roster %+v", roster)
	}
}

func TestImportRosterRejectsUnknownClassroomAndBadFile(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	buf := rosterWorkbook(t, [][]interface{}{{"Roll Number", "Name"}})
	if _, err := s.ImportRoster(ctx, buf, "missing"); err == nil {
		t.Fatalf("expected error for unknown classroom")
	}

	clazz, _ := s.CreateClassroom(ctx, "CSE - A")
	if _, err := s.ImportRoster(ctx, bytes.NewBufferString("not a workbook"), clazz.ID); err == nil {
		t.Fatalf("expected error for malformed file")
	}
}
