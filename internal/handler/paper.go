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

type PaperHandler struct {
	paperService *service.PaperService
}

func NewPaperHandler(paperService *service.PaperService) *PaperHandler {
	return &PaperHandler{
		paperService: paperService,
	}
}

type uploadPaperRequest struct {
	Subject    string `json:"subject"`
	Year       int    `json:"year"`
	Semester   int    `json:"semester"`
	Term       string `json:"term"`
	FileBase64 string `json:"fileBase64"`
}

func (h *PaperHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req uploadPaperRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	paper, err := h.paperService.Upload(user.IsAdmin(), service.PaperInput{
		Subject:    req.Subject,
		Year:       req.Year,
		Semester:   req.Semester,
		Term:       req.Term,
		FileBase64: req.FileBase64,
	})
	switch {
	case errors.Is(err, service.ErrAdminOnly):
		fail(w, http.StatusForbidden, "Only admin can upload papers")
		return
	case errors.Is(err, service.ErrPaperFieldsRequired):
		fail(w, http.StatusBadRequest, "Missing required fields")
		return
	case errors.Is(err, service.ErrInvalidTerm):
		fail(w, http.StatusBadRequest, "Invalid term")
		return
	case err != nil:
		slog.Error("failed to upload paper", "error", err, "user_id", user.ID)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	ok(w, http.StatusOK, map[string]any{"paper": paper})
}

func (h *PaperHandler) List(w http.ResponseWriter, r *http.Request) {
	papers, err := h.paperService.Papers()
	if err != nil {
		slog.Error("failed to list papers", "error", err)
		fail(w, http.StatusInternalServerError, "Failed to fetch papers")
		return
	}

	ok(w, http.StatusOK, map[string]any{"papers": papers})
}

func (h *PaperHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	paperID := r.PathValue("id")

	err := h.paperService.Delete(user.IsAdmin(), paperID)
	switch {
	case errors.Is(err, service.ErrAdminOnly):
		fail(w, http.StatusForbidden, "Only admin can delete papers")
		return
	case errors.Is(err, repository.ErrPaperNotFound):
		fail(w, http.StatusNotFound, "Paper not found")
		return
	case err != nil:
		slog.Error("failed to delete paper", "error", err, "user_id", user.ID, "paper_id", paperID)
		fail(w, http.StatusInternalServerError, "Delete failed")
		return
	}

	ok(w, http.StatusOK, map[string]any{"message": "Paper deleted"})
}
