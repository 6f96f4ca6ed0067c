package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studysync/studysync/internal/model"
	"github.com/studysync/studysync/internal/repository"
)

var (
	ErrTitleContentRequired = errors.New("missing title or content")
	ErrInvalidNoteStatus    = errors.New("invalid note status")
)

type NoteInput struct {
	Title   string
	Content string
	Subject string
	Status  string
}

type NoteService struct {
	repo   repository.NoteRepository
	ingest *IngestService
}

func NewNoteService(repo repository.NoteRepository, ingest *IngestService) *NoteService {
	return &NoteService{
		repo:   repo,
		ingest: ingest,
	}
}

func validateNoteInput(in *NoteInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if in.Title == "" || in.Content == "" {
		return ErrTitleContentRequired
	}

	if in.Status == "" {
		in.Status = model.NoteStatusPending
	}
	switch in.Status {
	case model.NoteStatusPending, model.NoteStatusUnderstood, model.NoteStatusRevisit:
	default:
		return ErrInvalidNoteStatus
	}

	return nil
}

// ingestBatch uploads the files in order. If one fails mid-batch the whole
// operation aborts; blobs uploaded earlier in the batch are not retired, only
// flagged in the log for manual cleanup.
func (s *NoteService) ingestBatch(files []*multipart.FileHeader) ([]*model.Attachment, error) {
	attachments := make([]*model.Attachment, 0, len(files))

	for _, header := range files {
		att, err := s.ingest.IngestMultipart(FolderNotes, header)
		if err != nil {
			if len(attachments) > 0 {
				slog.Warn("aborting attachment batch, earlier uploads orphaned",
					"error", err,
					"failed_file", header.Filename,
					"orphaned_remote_ids", remoteIDs(attachments),
				)
			}
			return nil, err
		}
		attachments = append(attachments, att)
	}

	return attachments, nil
}

func (s *NoteService) Create(userID string, in NoteInput, files []*multipart.FileHeader) (*model.Note, error) {
	err := validateNoteInput(&in)
	if err != nil {
		return nil, err
	}

	attachments, err := s.ingestBatch(files)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &model.Note{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Content:     in.Content,
		Subject:     in.Subject,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
		Attachments: attachments,
	}

	err = s.repo.Create(note)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return note, nil
}

// Update overwrites the note's fields. When new files are supplied the whole
// attachments array is replaced by the freshly ingested batch; the old blobs
// stay in the object store (flagged in the log, not retired).
func (s *NoteService) Update(userID, noteID string, in NoteInput, files []*multipart.FileHeader) (*model.Note, error) {
	note, err := s.repo.ByID(userID, noteID)
	if err != nil {
		return nil, err
	}

	err = validateNoteInput(&in)
	if err != nil {
		return nil, err
	}

	replace := len(files) > 0
	if replace {
		attachments, err := s.ingestBatch(files)
		if err != nil {
			return nil, err
		}

		if len(note.Attachments) > 0 {
			slog.Warn("replacing note attachments without retiring blobs",
				"note_id", note.ID,
				"orphaned_remote_ids", remoteIDs(note.Attachments),
			)
		}
		note.Attachments = attachments
	}

	note.Title = in.Title
	note.Content = in.Content
	note.Subject = in.Subject
	note.Status = in.Status

	err = s.repo.Update(note, replace)
	if err != nil {
		return nil, err
	}

	return s.repo.ByID(userID, noteID)
}

// Delete removes the metadata record only; attachment blobs are not retired
// (unlike papers). The orphaned remote IDs are logged for manual cleanup.
func (s *NoteService) Delete(userID, noteID string) error {
	note, err := s.repo.ByID(userID, noteID)
	if err != nil {
		return err
	}

	err = s.repo.Delete(userID, noteID)
	if err != nil {
		return err
	}

	if len(note.Attachments) > 0 {
		slog.Warn("note deleted without retiring attachment blobs",
			"note_id", noteID,
			"orphaned_remote_ids", remoteIDs(note.Attachments),
		)
	}

	return nil
}

func (s *NoteService) Notes(userID string) ([]*model.Note, error) {
	return s.repo.Notes(userID)
}

func (s *NoteService) ByID(userID, noteID string) (*model.Note, error) {
	return s.repo.ByID(userID, noteID)
}

func remoteIDs(attachments []*model.Attachment) []string {
	ids := make([]string, len(attachments))
	for i, att := range attachments {
		ids[i] = att.RemoteID
	}
	return ids
}
