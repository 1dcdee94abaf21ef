package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"campus-records-go/classroom"
	"campus-records-go/db"
	"campus-records-go/models"
	"campus-records-go/records"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// APIHandler holds the dependencies for API handlers
type APIHandler struct {
	Store      db.RecordStore
	Classrooms *classroom.Service
	Log        *zap.Logger
	BannerTTL  time.Duration
	SessionTTL time.Duration // Idle time after which a workspace is evicted

	mu         sync.Mutex
	workspaces map[string]*workspace
	now        func() time.Time
	// read-only views used by query endpoints
	attendance *records.AttendanceEditor
	grades     *records.GradeEditor
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(store db.RecordStore, classrooms *classroom.Service, log *zap.Logger, bannerTTL, sessionTTL time.Duration) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &APIHandler{
		Store:      store,
		Classrooms: classrooms,
		Log:        log,
		BannerTTL:  bannerTTL,
		SessionTTL: sessionTTL,
		workspaces: make(map[string]*workspace),
		now:        time.Now,
	}
	h.attendance = records.NewAttendanceEditor(store, classrooms, h.editorOptions())
	h.grades = records.NewGradeEditor(store, classrooms, h.editorOptions())
	return h
}

func (h *APIHandler) editorOptions() records.Options {
	return records.Options{Log: h.Log, BannerTTL: h.BannerTTL}
}

// Register mounts every route on the group
func (h *APIHandler) Register(api *gin.RouterGroup) {
	// Classroom routes
	api.GET("/classrooms", h.GetAllClassrooms)
	api.POST("/classrooms", h.AddClassroom)
	api.GET("/classrooms/:classroomId", h.GetClassroomByID)
	api.DELETE("/classrooms/:classroomId", h.DeleteClassroom)
	api.POST("/classrooms/:classroomId/subjects", h.AddSubject)
	api.POST("/classrooms/:classroomId/subjects/import", h.ImportTimetableSubjects)
	api.DELETE("/classrooms/:classroomId/subjects/:subjectId", h.DeleteSubject)
	api.GET("/classrooms/:classroomId/students", h.GetRoster)
	api.POST("/classrooms/:classroomId/students", h.AddStudent)
	api.POST("/classrooms/:classroomId/students/load", h.LoadRegisteredStudents)
	api.PUT("/classrooms/:classroomId/students/:rollNumber", h.UpdateStudent)
	api.DELETE("/classrooms/:classroomId/students/:rollNumber", h.RemoveStudent)
	api.GET("/timetable/subjects", h.GetTimetableSubjects)
	api.GET("/students", h.GetStudents)

	// Enrolment
	api.POST("/join", h.JoinClass)
	api.POST("/import/students", h.ImportStudents)

	// Attendance
	api.GET("/attendance", h.QueryAttendance)
	api.DELETE("/attendance", h.ClearAttendance)
	api.GET("/attendance/summary", h.AttendanceSummary)
	api.GET("/attendance/export", h.ExportAttendance)
	api.PUT("/attendance/scope", h.SelectAttendanceScope)
	api.GET("/attendance/edits", h.PreviewAttendance)
	api.POST("/attendance/edits", h.StageAttendance)
	api.DELETE("/attendance/edits/:studentId", h.ResetAttendance)
	api.POST("/attendance/commit", h.CommitAttendance)
	api.POST("/attendance/discard", h.DiscardAttendance)

	// Grades
	api.GET("/grades", h.QueryGrades)
	api.DELETE("/grades", h.ClearGrades)
	api.GET("/grades/export", h.ExportGrades)
	api.PUT("/grades/scope", h.SelectGradeScope)
	api.GET("/grades/edits", h.PreviewGrades)
	api.POST("/grades/edits", h.StageGrade)
	api.DELETE("/grades/edits/:studentId", h.ResetGrade)
	api.POST("/grades/commit", h.CommitGrades)
	api.POST("/grades/discard", h.DiscardGrades)

	api.DELETE("/session", h.EndSession)
	api.GET("/ping", PingHandler)
}

// --- Classroom Handlers ---

// GetAllClassrooms handles GET /api/classrooms
func (h *APIHandler) GetAllClassrooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Classrooms.ListClassrooms(c.Request.Context()))
}

// GetClassroomByID handles GET /api/classrooms/:classroomId
func (h *APIHandler) GetClassroomByID(c *gin.Context) {
	clazz, err := h.Classrooms.GetClassroom(c.Request.Context(), c.Param("classroomId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clazz)
}

type classroomRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddClassroom handles POST /api/classrooms
func (h *APIHandler) AddClassroom(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	var req classroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Classroom name is required"})
		return
	}

	created, err := h.Classrooms.CreateClassroom(c.Request.Context(), req.Name)
	if err != nil {
		h.Log.Error("error in AddClassroom handler", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteClassroom handles DELETE /api/classrooms/:classroomId
func (h *APIHandler) DeleteClassroom(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	if err := h.Classrooms.DeleteClassroom(c.Request.Context(), c.Param("classroomId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type subjectRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// AddSubject handles POST /api/classrooms/:classroomId/subjects
func (h *APIHandler) AddSubject(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject name and code are required"})
		return
	}

	subject, err := h.Classrooms.AddSubject(c.Request.Context(), c.Param("classroomId"), req.Name, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

// DeleteSubject handles DELETE /api/classrooms/:classroomId/subjects/:subjectId
func (h *APIHandler) DeleteSubject(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	if err := h.Classrooms.DeleteSubject(c.Request.Context(), c.Param("classroomId"), c.Param("subjectId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportTimetableSubjects handles POST /api/classrooms/:classroomId/subjects/import
func (h *APIHandler) ImportTimetableSubjects(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	added, err := h.Classrooms.ImportTimetableSubjects(c.Request.Context(), c.Param("classroomId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if added == nil {
		added = []models.Subject{}
	}
	c.JSON(http.StatusOK, added)
}

// GetTimetableSubjects handles GET /api/timetable/subjects
func (h *APIHandler) GetTimetableSubjects(c *gin.Context) {
	c.JSON(http.StatusOK, classroom.TimetableSubjects)
}

// --- Roster Handlers ---

// GetRoster handles GET /api/classrooms/:classroomId/students
func (h *APIHandler) GetRoster(c *gin.Context) {
	roster, err := h.Classrooms.Roster(c.Request.Context(), c.Param("classroomId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}

// RemoveStudent handles DELETE /api/classrooms/:classroomId/students/:rollNumber
func (h *APIHandler) RemoveStudent(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	if err := h.Classrooms.RemoveStudent(c.Request.Context(), c.Param("classroomId"), c.Param("rollNumber")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStudents handles GET /api/students?classroomId=
func (h *APIHandler) GetStudents(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	c.JSON(http.StatusOK, h.Classrooms.Students(c.Request.Context(), c.Query("classroomId")))
}

type studentRequest struct {
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
}

// AddStudent handles POST /api/classrooms/:classroomId/students
func (h *APIHandler) AddStudent(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	student, err := h.Classrooms.AddStudent(c.Request.Context(), c.Param("classroomId"), req.RollNumber, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, student)
}

// UpdateStudent handles PUT /api/classrooms/:classroomId/students/:rollNumber
func (h *APIHandler) UpdateStudent(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	student, err := h.Classrooms.UpdateStudent(c.Request.Context(), c.Param("classroomId"), c.Param("rollNumber"), req.RollNumber, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

// LoadRegisteredStudents handles POST /api/classrooms/:classroomId/students/load
func (h *APIHandler) LoadRegisteredStudents(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	added, err := h.Classrooms.EnrolFromRegistry(c.Request.Context(), c.Param("classroomId"))
	if err != nil {
		respondError(c, err)
		return
	}
	msg := fmt.Sprintf("Successfully enrolled %d new students", len(added))
	if len(added) == 0 {
		msg = "No new students to add to this class"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "students": added})
}

type joinRequest struct {
	ClassCode  string `json:"classCode"`
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
}

// JoinClass handles POST /api/join
func (h *APIHandler) JoinClass(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	joined, err := h.Classrooms.JoinClass(c.Request.Context(), req.ClassCode, req.RollNumber, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Successfully joined the class!",
		"classroomId": joined.ID,
		"classroom":   joined.Name,
	})
}

// --- Import Handler ---

// ImportStudents handles POST /api/import/students
func (h *APIHandler) ImportStudents(c *gin.Context) {
	if _, ok := lecturer(c); !ok {
		return
	}
	classroomID := c.PostForm("classroomId")
	if classroomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'classroomId' in form data"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error retrieving uploaded file: " + err.Error()})
		return
	}
	defer file.Close()

	h.Log.Info("received roster upload", zap.String("file", header.Filename), zap.String("classroom_id", classroomID))

	result, err := h.Classrooms.ImportRoster(c.Request.Context(), file, classroomID)
	if err != nil {
		h.Log.Error("error importing roster", zap.String("file", header.Filename), zap.Error(err))
		status, msg := statusOf(err)
		if status == http.StatusInternalServerError {
			msg = "Failed to import students: " + err.Error()
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Import successful",
		"importedCount": result.Imported,
		"skipped":       result.Skipped,
		"classroomId":   classroomID,
	})
}

// PingHandler handles GET /api/ping
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
