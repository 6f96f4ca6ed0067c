package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/studysync/studysync/internal/ctxkeys"
	"github.com/studysync/studysync/internal/repository"
	"github.com/studysync/studysync/internal/service"
	"github.com/studysync/studysync/internal/validation"
)

type NoteHandler struct {
	noteService   *service.NoteService
	maxUploadSize int64
	maxFormMemory int64
}

func NewNoteHandler(noteService *service.NoteService, maxUploadSize, maxFormMemory int64) *NoteHandler {
	return &NoteHandler{
		noteService:   noteService,
		maxUploadSize: maxUploadSize,
		maxFormMemory: maxFormMemory,
	}
}

// parseNoteForm extracts the note fields and attachment headers from a
// multipart form, checking per-file size limits before anything is staged.
func (h *NoteHandler) parseNoteForm(r *http.Request) (service.NoteInput, []*multipart.FileHeader, error) {
	err := r.ParseMultipartForm(h.maxFormMemory)
	if err != nil {
		return service.NoteInput{}, nil, err
	}

	in := service.NoteInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Subject: r.FormValue("subject"),
		Status:  r.FormValue("status"),
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["attachments"]
	}

	for _, header := range files {
		err = validation.ValidateFileSize(header, h.maxUploadSize)
		if err != nil {
			return service.NoteInput{}, nil, err
		}
	}

	return in, files, nil
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	in, files, err := h.parseNoteForm(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.noteService.Create(user.ID, in, files)
	switch {
	case errors.Is(err, service.ErrTitleContentRequired):
		fail(w, http.StatusBadRequest, "Missing title or content")
		return
	case errors.Is(err, service.ErrInvalidNoteStatus):
		fail(w, http.StatusBadRequest, "Invalid status")
		return
	case err != nil:
		slog.Error("failed to create note", "error", err, "user_id", user.ID)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	ok(w, http.StatusOK, map[string]any{"note": note})
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	notes, err := h.noteService.Notes(user.ID)
	if err != nil {
		slog.Error("failed to list notes", "error", err, "user_id", user.ID)
		fail(w, http.StatusInternalServerError, "Failed to fetch notes")
		return
	}

	ok(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	noteID := r.PathValue("id")

	in, files, err := h.parseNoteForm(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.noteService.Update(user.ID, noteID, in, files)
	switch {
	case errors.Is(err, repository.ErrNoteNotFound):
		fail(w, http.StatusNotFound, "Note not found")
		return
	case errors.Is(err, service.ErrTitleContentRequired):
		fail(w, http.StatusBadRequest, "Missing title or content")
		return
	case errors.Is(err, service.ErrInvalidNoteStatus):
		fail(w, http.StatusBadRequest, "Invalid status")
		return
	case err != nil:
		slog.Error("failed to update note", "error", err, "user_id", user.ID, "note_id", noteID)
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	ok(w, http.StatusOK, map[string]any{"note": note})
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	noteID := r.PathValue("id")

	err := h.noteService.Delete(user.ID, noteID)
	switch {
	case errors.Is(err, repository.ErrNoteNotFound):
		fail(w, http.StatusNotFound, "Note not found")
		return
	case err != nil:
		slog.Error("failed to delete note", "error", err, "user_id", user.ID, "note_id", noteID)
		fail(w, http.StatusInternalServerError, "Failed to delete note")
		return
	}

	ok(w, http.StatusOK, map[string]any{"message": "Note deleted"})
}
