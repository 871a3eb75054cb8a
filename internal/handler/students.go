package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"aitutor/internal/model"
)

func (h *Handler) requireStudentDB(w http.ResponseWriter) bool {
	if h.students == nil {
		respondError(w, http.StatusServiceUnavailable, "Student database not configured")
		return false
	}
	return true
}

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request) {
	if !h.requireStudentDB(w) {
		return
	}
	students, err := h.students.ListStudents()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if students == nil {
		students = []model.Student{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"students": students,
		"count":    len(students),
	})
}

type createStudentRequest struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

func (h *Handler) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	if !h.requireStudentDB(w) {
		return
	}
	var req createStudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.StudentID) == "" || strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "student_id and name required")
		return
	}

	if err := h.students.UpsertStudent(req.StudentID, req.Name, req.Email); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message":    "Student created/updated successfully",
		"student_id": req.StudentID,
	})
}

func (h *Handler) handleStudentStats(w http.ResponseWriter, r *http.Request) {
	if !h.requireStudentDB(w) {
		return
	}
	studentID := chi.URLParam(r, "studentID")

	stats, err := h.students.GetStudentStats(studentID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if stats == nil {
		respondError(w, http.StatusNotFound, "Student not found")
		return
	}
	if stats.Progress == nil {
		stats.Progress = []model.TopicProgress{}
	}
	if stats.RecentAttempts == nil {
		stats.RecentAttempts = []model.QuizAttempt{}
	}
	respondJSON(w, http.StatusOK, stats)
}
