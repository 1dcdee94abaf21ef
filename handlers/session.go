package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"campus-records-go/models"
	"campus-records-go/records"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Request headers carrying the caller's session
const (
	HeaderRole      = "X-User-Role"
	HeaderStudentID = "X-Student-Id"
	HeaderSessionID = "X-Session-Id"
)

// workspace holds the editing sessions of one client
type workspace struct {
	mu         sync.Mutex
	lastUsed   time.Time // Guarded by APIHandler.mu
	attendance *records.AttendanceEditor
	grades     *records.GradeEditor
}

// session reads the caller's role from the headers, aborting on an unknown role
func session(c *gin.Context) (models.Session, bool) {
	role := models.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderRole))))
	switch role {
	case models.RoleLecturer, models.RoleStudent:
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or unknown user role"})
		return models.Session{}, false
	}
	s := models.Session{Role: role}
	if role == models.RoleStudent {
		s.StudentID = strings.TrimSpace(c.GetHeader(HeaderStudentID))
	}
	return s, true
}

// lecturer reads the session and aborts unless it is a lecturer's
func lecturer(c *gin.Context) (models.Session, bool) {
	s, ok := session(c)
	if !ok {
		return s, false
	}
	if !s.IsLecturer() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only lecturers can do this"})
		return s, false
	}
	return s, true
}

// workspace returns the locked workspace of the X-Session-Id header. When the
// client has none, create decides between registering a new one and handing
// out a detached one that is dropped after the request. The caller must unlock it.
func (h *APIHandler) workspace(c *gin.Context, create bool) (*workspace, bool) {
	id := strings.TrimSpace(c.GetHeader(HeaderSessionID))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID header is required"})
		return nil, false
	}

	h.mu.Lock()
	now := h.now()
	h.evictIdle(now)
	ws, ok := h.workspaces[id]
	if !ok {
		ws = h.newWorkspace()
		if create {
			h.workspaces[id] = ws
		}
	}
	ws.lastUsed = now
	h.mu.Unlock()

	ws.mu.Lock()
	return ws, true
}

func (h *APIHandler) newWorkspace() *workspace {
	return &workspace{
		attendance: records.NewAttendanceEditor(h.Store, h.Classrooms, h.editorOptions()),
		grades:     records.NewGradeEditor(h.Store, h.Classrooms, h.editorOptions()),
	}
}

// evictIdle drops workspaces unused for longer than SessionTTL. h.mu must be held.
func (h *APIHandler) evictIdle(now time.Time) {
	if h.SessionTTL <= 0 {
		return
	}
	for id, ws := range h.workspaces {
		if now.Sub(ws.lastUsed) > h.SessionTTL {
			delete(h.workspaces, id)
			h.Log.Debug("evicted idle session", zap.String("session_id", id))
		}
	}
}

// EndSession handles DELETE /api/session, dropping all unsaved edits of the client
func (h *APIHandler) EndSession(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(HeaderSessionID))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID header is required"})
		return
	}
	h.mu.Lock()
	delete(h.workspaces, id)
	h.mu.Unlock()
	c.Status(http.StatusNoContent)
}
