package handlers

import (
	"errors"
	"net/http"

	"campus-records-go/classroom"
	"campus-records-go/db"
	"campus-records-go/records"
	"github.com/gin-gonic/gin"
)

// statusOf maps service errors to an HTTP status and a user-facing message
func statusOf(err error) (int, string) {
	var writeErr *db.StorageWriteError
	var readErr *db.StorageReadError
	switch {
	case errors.Is(err, records.ErrReadOnly):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, records.ErrNoScope), errors.Is(err, records.ErrInvalidEdit):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, classroom.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, classroom.ErrNotFound):
		return http.StatusNotFound, "Classroom not found"
	case errors.Is(err, classroom.ErrInvalidCode):
		return http.StatusNotFound, "Invalid class code"
	case errors.Is(err, classroom.ErrStudentNotFound):
		return http.StatusNotFound, "Student not found"
	case errors.Is(err, classroom.ErrAlreadyEnrolled):
		return http.StatusConflict, "You are already enrolled in this class"
	case errors.Is(err, classroom.ErrDuplicateRoll):
		return http.StatusConflict, "A student with this roll number already exists"
	case errors.Is(err, classroom.ErrDuplicateName):
		return http.StatusConflict, "A student with this name already exists in this class"
	case errors.As(err, &writeErr):
		return http.StatusInternalServerError, "Failed to save data"
	case errors.As(err, &readErr):
		return http.StatusInternalServerError, "Stored data could not be read"
	}
	return http.StatusInternalServerError, "Internal error"
}

func respondError(c *gin.Context, err error) {
	status, msg := statusOf(err)
	c.JSON(status, gin.H{"error": msg})
}

func bannerJSON(b records.Banner) gin.H {
	return gin.H{
		"message":        b.Message,
		"isError":        b.IsError,
		"dismissAfterMs": b.DismissAfterMillis(),
	}
}
