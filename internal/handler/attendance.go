package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/studysync/studysync/internal/ctxkeys"
	"github.com/studysync/studysync/internal/repository"
	"github.com/studysync/studysync/internal/service"
)

type AttendanceHandler struct {
	attendanceService *service.AttendanceService
}

func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
	}
}

type addSubjectRequest struct {
	Subject string `json:"subject"`
}

func (h *AttendanceHandler) AddSubject(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req addSubjectRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.attendanceService.CreateSubject(user.ID, req.Subject)
	if errors.Is(err, service.ErrSubjectRequired) {
		fail(w, http.StatusBadRequest, "Subject is required")
		return
	}
	if err != nil {
		slog.Error("failed to create subject", "error", err, "user_id", user.ID)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	ok(w, http.StatusCreated, map[string]any{"data": record})
}

type markRequest struct {
	Status string `json:"status"`
}

// Mark handles Present, Absent and Undo. Undo travels as a status token on
// the same endpoint, matching the wire protocol existing clients speak.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	recordID := r.PathValue("id")

	var req markRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.markOrUndo(user.ID, recordID, req.Status)
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		fail(w, http.StatusNotFound, "Record not found")
		return
	case errors.Is(err, repository.ErrEmptyHistory):
		fail(w, http.StatusBadRequest, "No history to undo")
		return
	case errors.Is(err, service.ErrInvalidStatus):
		fail(w, http.StatusBadRequest, "Invalid status")
		return
	case err != nil:
		slog.Error("failed to mark attendance", "error", err, "user_id", user.ID, "record_id", recordID)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	ok(w, http.StatusOK, map[string]any{"data": record})
}

func (h *AttendanceHandler) markOrUndo(userID, recordID, status string) (any, error) {
	if status == "Undo" {
		return h.attendanceService.Undo(userID, recordID)
	}
	return h.attendanceService.Mark(userID, recordID, status)
}

func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	records, err := h.attendanceService.Records(user.ID)
	if err != nil {
		slog.Error("failed to list attendance", "error", err, "user_id", user.ID)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	ok(w, http.StatusOK, map[string]any{"data": records})
}

func (h *AttendanceHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	recordID := r.PathValue("id")

	var req addSubjectRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.attendanceService.Rename(user.ID, recordID, req.Subject)
	switch {
	case errors.Is(err, service.ErrSubjectRequired):
		fail(w, http.StatusBadRequest, "Subject name is required")
		return
	case errors.Is(err, repository.ErrRecordNotFound):
		fail(w, http.StatusNotFound, "Subject not found")
		return
	case err != nil:
		slog.Error("failed to rename subject", "error", err, "user_id", user.ID, "record_id", recordID)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	ok(w, http.StatusOK, map[string]any{"data": record})
}

func (h *AttendanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	recordID := r.PathValue("id")

	err := h.attendanceService.Delete(user.ID, recordID)
	switch {
	case errors.Is(err, repository.ErrRecordNotFound):
		fail(w, http.StatusNotFound, "Record not found")
		return
	case err != nil:
		slog.Error("failed to delete subject", "error", err, "user_id", user.ID, "record_id", recordID)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	ok(w, http.StatusOK, map[string]any{"message": "Subject deleted"})
}
