package handlers

import (
	"errors"
	"net/http"

	"campus-records-go/models"
	"campus-records-go/records"
	"campus-records-go/report"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type scopeRequest struct {
	ClassroomID string `json:"classroomId"`
	SubjectID   string `json:"subjectId"`
	Date        string `json:"date"`
	Confirm     bool   `json:"confirm"` // Discard unsaved edits when switching
}

type attendanceEdit struct {
	StudentID string `json:"studentId" binding:"required"`
	Present   *bool  `json:"present" binding:"required"`
}

type gradeEdit struct {
	StudentID string `json:"studentId" binding:"required"`
	records.Marks
}

// --- Attendance Handlers ---

// SelectAttendanceScope handles PUT /api/attendance/scope
func (h *APIHandler) SelectAttendanceScope(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, true)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	selectScope(c, s, ws.attendance)
}

// StageAttendance handles POST /api/attendance/edits
func (h *APIHandler) StageAttendance(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	var req attendanceEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "studentId and present are required: " + err.Error()})
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()

	key := ws.attendance.Scope().Key(req.StudentID)
	staged, err := ws.attendance.StageEdit(s, key, *req.Present)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staged": staged, "state": ws.attendance.State().String()})
}

// ResetAttendance handles DELETE /api/attendance/edits/:studentId
func (h *APIHandler) ResetAttendance(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	resetEdit(c, s, ws.attendance)
}

// PreviewAttendance handles GET /api/attendance/edits
func (h *APIHandler) PreviewAttendance(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	preview(c, s, ws.attendance)
}

// CommitAttendance handles POST /api/attendance/commit
func (h *APIHandler) CommitAttendance(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	commit(c, s, ws.attendance)
}

// DiscardAttendance handles POST /api/attendance/discard
func (h *APIHandler) DiscardAttendance(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	if err := ws.attendance.Discard(s); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ws.attendance.State().String()})
}

// QueryAttendance handles GET /api/attendance
func (h *APIHandler) QueryAttendance(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var filter records.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.attendance.Query(c.Request.Context(), s, filter))
}

// AttendanceSummary handles GET /api/attendance/summary
func (h *APIHandler) AttendanceSummary(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var filter records.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, records.Summarize(h.attendance.Query(c.Request.Context(), s, filter)))
}

// ClearAttendance handles DELETE /api/attendance
func (h *APIHandler) ClearAttendance(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	banner, err := ws.attendance.ClearAll(c.Request.Context(), s)
	if err != nil {
		status, msg := statusOf(err)
		c.JSON(status, gin.H{"error": msg, "banner": bannerJSON(banner)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banner": bannerJSON(banner)})
}

// ExportAttendance handles GET /api/attendance/export?classroomId=&subjectId=&date=
func (h *APIHandler) ExportAttendance(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	filter := records.Filter{
		ClassroomID: c.Query("classroomId"),
		SubjectID:   c.Query("subjectId"),
		Date:        c.Query("date"),
	}
	if filter.ClassroomID == "" || filter.SubjectID == "" || filter.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "classroomId, subjectId and date are required"})
		return
	}
	subject, roster, ok := h.exportScope(c, filter)
	if !ok {
		return
	}

	f, err := report.AttendanceWorkbook(subject, filter.Date, roster, h.attendance.Query(c.Request.Context(), s, filter))
	if err != nil {
		h.Log.Error("failed to build attendance workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	h.sendWorkbook(c, f, report.FileName("attendance", subject.Code, filter.Date))
}

// --- Grade Handlers ---

// SelectGradeScope handles PUT /api/grades/scope
func (h *APIHandler) SelectGradeScope(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, true)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	selectScope(c, s, ws.grades)
}

// StageGrade handles POST /api/grades/edits
func (h *APIHandler) StageGrade(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	var req gradeEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "studentId is required and marks must be whole numbers: " + err.Error()})
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()

	key := ws.grades.Scope().Key(req.StudentID)
	staged, err := ws.grades.StageEdit(s, key, req.Marks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"staged": staged,
		"grade":  staged.Fields.Letter(),
		"state":  ws.grades.State().String(),
		"banner": bannerJSON(records.Banner{
			Message:      `Changes are not saved yet. Click "Save All Changes" to save permanently.`,
			DismissAfter: h.BannerTTL,
		}),
	})
}

// ResetGrade handles DELETE /api/grades/edits/:studentId
func (h *APIHandler) ResetGrade(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	resetEdit(c, s, ws.grades)
}

// PreviewGrades handles GET /api/grades/edits
func (h *APIHandler) PreviewGrades(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	preview(c, s, ws.grades)
}

// CommitGrades handles POST /api/grades/commit
func (h *APIHandler) CommitGrades(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	commit(c, s, ws.grades)
}

// DiscardGrades handles POST /api/grades/discard
func (h *APIHandler) DiscardGrades(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	if err := ws.grades.Discard(s); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ws.grades.State().String()})
}

// QueryGrades handles GET /api/grades
func (h *APIHandler) QueryGrades(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	var filter records.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.grades.Query(c.Request.Context(), s, filter))
}

// ClearGrades handles DELETE /api/grades
func (h *APIHandler) ClearGrades(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	ws, ok := h.workspace(c, false)
	if !ok {
		return
	}
	defer ws.mu.Unlock()
	banner, err := ws.grades.ClearAll(c.Request.Context(), s)
	if err != nil {
		status, msg := statusOf(err)
		c.JSON(status, gin.H{"error": msg, "banner": bannerJSON(banner)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"banner": bannerJSON(banner)})
}

// ExportGrades handles GET /api/grades/export?classroomId=&subjectId=
func (h *APIHandler) ExportGrades(c *gin.Context) {
	s, ok := lecturer(c)
	if !ok {
		return
	}
	filter := records.Filter{
		ClassroomID: c.Query("classroomId"),
		SubjectID:   c.Query("subjectId"),
	}
	if filter.ClassroomID == "" || filter.SubjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "classroomId and subjectId are required"})
		return
	}
	subject, roster, ok := h.exportScope(c, filter)
	if !ok {
		return
	}

	f, err := report.GradeWorkbook(subject, roster, h.grades.Query(c.Request.Context(), s, filter))
	if err != nil {
		h.Log.Error("failed to build grade workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	h.sendWorkbook(c, f, report.FileName("grades", subject.Code, ""))
}

// --- Shared ---

// exportScope resolves the subject and roster of a report request
func (h *APIHandler) exportScope(c *gin.Context, filter records.Filter) (models.Subject, []models.RosterEntry, bool) {
	clazz, err := h.Classrooms.GetClassroom(c.Request.Context(), filter.ClassroomID)
	if err != nil {
		respondError(c, err)
		return models.Subject{}, nil, false
	}
	var subject *models.Subject
	for i := range clazz.Subjects {
		if clazz.Subjects[i].ID == filter.SubjectID {
			subject = &clazz.Subjects[i]
			break
		}
	}
	if subject == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return models.Subject{}, nil, false
	}
	roster, err := h.Classrooms.Roster(c.Request.Context(), clazz.ID)
	if err != nil {
		respondError(c, err)
		return models.Subject{}, nil, false
	}
	return *subject, roster, true
}

func (h *APIHandler) sendWorkbook(c *gin.Context, f *excelize.File, name string) {
	defer func() {
		if err := f.Close(); err != nil {
			h.Log.Warn("error closing workbook", zap.Error(err))
		}
	}()
	buf, err := f.WriteToBuffer()
	if err != nil {
		h.Log.Error("failed to write workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func selectScope[R any, F any](c *gin.Context, s models.Session, ed *records.Editor[R, F]) {
	var req scopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	scope := records.Scope{ClassroomID: req.ClassroomID, SubjectID: req.SubjectID, Date: req.Date}
	switched, err := ed.Navigate(s, scope, func() bool { return req.Confirm })
	if err != nil {
		respondError(c, err)
		return
	}
	if !switched {
		c.JSON(http.StatusConflict, gin.H{
			"error": "You have unsaved changes. Confirm to discard them.",
			"state": ed.State().String(),
			"scope": ed.Scope(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scope": ed.Scope(), "state": ed.State().String()})
}

func resetEdit[R any, F any](c *gin.Context, s models.Session, ed *records.Editor[R, F]) {
	key := ed.Scope().Key(c.Param("studentId"))
	if err := ed.ResetEdit(s, key); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": ed.State().String()})
}

func preview[R any, F any](c *gin.Context, s models.Session, ed *records.Editor[R, F]) {
	rows, err := ed.Preview(c.Request.Context(), s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scope":   ed.Scope(),
		"state":   ed.State().String(),
		"pending": len(ed.Pending()),
		"records": rows,
	})
}

func commit[R any, F any](c *gin.Context, s models.Session, ed *records.Editor[R, F]) {
	result, err := ed.Commit(c.Request.Context(), s)
	if err != nil {
		status, msg := statusOf(err)
		body := gin.H{"error": msg, "state": ed.State().String()}
		if result.Banner.Message != "" {
			body["banner"] = bannerJSON(result.Banner)
		}
		if errors.Is(err, records.ErrNoScope) {
			body["error"] = "Select a classroom and subject first"
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scope":   result.Scope,
		"removed": result.Removed,
		"records": result.Records,
		"banner":  bannerJSON(result.Banner),
		"state":   ed.State().String(),
	})
}
