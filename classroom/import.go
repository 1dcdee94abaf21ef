package classroom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"campus-records-go/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ImportResult summarises a roster import
type ImportResult struct {
	Imported int      `json:"importedCount"`
	Skipped  []string `json:"skipped,omitempty"` // Roll numbers or row labels not imported
}

// ImportRoster reads an Excel workbook and enrols its students in the classroom.
// The first sheet is used; row 1 is a header, column A holds the roll number
// and column B the name.
func (s *Service) ImportRoster(ctx context.Context, file io.Reader, classroomID string) (ImportResult, error) {
	if _, err := s.GetClassroom(ctx, classroomID); err != nil {
		return ImportResult{}, err
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		s.log.Error("error opening Excel reader", zap.Error(err))
		return ImportResult{}, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("error closing excel file", zap.Error(err))
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return ImportResult{}, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to get rows from sheet %s: %w", sheetName, err)
	}

	result := ImportResult{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}

		var rollNumber, name string
		if len(row) > 0 {
			rollNumber = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			name = strings.TrimSpace(row[1])
		}
		if rollNumber == "" || name == "" {
			s.log.Debug("skipping row with missing roll number or name", zap.Int("row", i+1))
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d", i+1))
			continue
		}

		_, err := s.enrol(ctx, classroomID, models.Member{ID: s.newID(), Name: name, RollNumber: rollNumber})
		if err != nil {
			if errors.Is(err, ErrAlreadyEnrolled) {
				result.Skipped = append(result.Skipped, rollNumber)
				continue
			}
			return result, fmt.Errorf("enrol %s: %w", rollNumber, err)
		}
		result.Imported++
	}

	s.log.Info("imported roster",
		zap.String("classroom_id", classroomID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}
