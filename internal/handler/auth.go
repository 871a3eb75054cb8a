package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"aitutor/internal/model"
	"aitutor/internal/store"
)

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Token   string `json:"token,omitempty"`
}

// publicUserID is the identifier handed to clients and used as the student
// key in the student database.
func publicUserID(dbID int64) string {
	return fmt.Sprintf("user_%d", dbID)
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		respondError(w, http.StatusBadRequest, "name and email required")
		return
	}
	if len(req.Password) < 6 {
		respondError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	id, err := h.store.CreateUser(model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if store.ErrDuplicateEmail(err) {
		respondError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	token, err := h.store.CreateAuthSession(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	userID := publicUserID(id)
	if h.students != nil {
		if err := h.students.UpsertStudent(userID, req.Name, req.Email); err != nil {
			slog.Warn("failed to create student profile", "student_id", userID, "error", err)
		}
	}

	respondJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Account created successfully",
		UserID:  userID,
		Name:    req.Name,
		Email:   req.Email,
		Token:   token,
	})
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to look up account")
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.store.CreateAuthSession(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	userID := publicUserID(user.ID)
	if h.students != nil {
		if err := h.students.UpsertStudent(userID, user.Name, user.Email); err != nil {
			slog.Warn("failed to refresh student profile", "student_id", userID, "error", err)
		}
	}

	respondJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Signed in successfully",
		UserID:  userID,
		Name:    user.Name,
		Email:   user.Email,
		Token:   token,
	})
}
