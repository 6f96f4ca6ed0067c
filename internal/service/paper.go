package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studysync/studysync/internal/model"
	"github.com/studysync/studysync/internal/repository"
	"github.com/studysync/studysync/internal/storage"
)

var (
	ErrAdminOnly           = errors.New("only admin can manage papers")
	ErrPaperFieldsRequired = errors.New("missing required fields")
	ErrInvalidTerm         = errors.New("invalid term")
)

type PaperInput struct {
	Subject    string
	Year       int
	Semester   int
	Term       string
	FileBase64 string
}

type PaperService struct {
	repo    repository.PaperRepository
	ingest  *IngestService
	storage storage.Storage
}

func NewPaperService(repo repository.PaperRepository, ingest *IngestService, storage storage.Storage) *PaperService {
	return &PaperService{
		repo:    repo,
		ingest:  ingest,
		storage: storage,
	}
}

// Upload ingests exactly one inline-encoded file and persists the paper.
// The role check runs before validation and validation before any upload, so
// a rejected request never touches the object store.
func (s *PaperService) Upload(isAdmin bool, in PaperInput) (*model.Paper, error) {
	if !isAdmin {
		return nil, ErrAdminOnly
	}

	in.Subject = strings.TrimSpace(in.Subject)
	if in.Subject == "" || in.Year == 0 || in.Semester == 0 || in.Term == "" || in.FileBase64 == "" {
		return nil, ErrPaperFieldsRequired
	}
	if in.Term != model.TermMidSem && in.Term != model.TermEndSem {
		return nil, ErrInvalidTerm
	}

	att, err := s.ingest.IngestBase64(FolderPapers, in.FileBase64)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	paper := &model.Paper{
		ID:           uuid.New().String(),
		Subject:      in.Subject,
		Year:         in.Year,
		Semester:     in.Semester,
		Term:         in.Term,
		FileRemoteID: att.RemoteID,
		FileURL:      att.URL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	paper.FillFile()

	err = s.repo.Create(paper)
	if err != nil {
		return nil, fmt.Errorf("failed to create paper: %w", err)
	}

	return paper, nil
}

// Delete removes the metadata record, then retires the blob. A retirement
// failure is reported in the log but does not undo or fail the metadata
// removal; the blob can be cleaned up out of band.
func (s *PaperService) Delete(isAdmin bool, paperID string) error {
	if !isAdmin {
		return ErrAdminOnly
	}

	paper, err := s.repo.ByID(paperID)
	if err != nil {
		return err
	}

	err = s.repo.Delete(paperID)
	if err != nil {
		return err
	}

	if paper.FileRemoteID != "" {
		err = s.storage.Delete(paper.FileRemoteID)
		if err != nil {
			slog.Error("paper deleted but blob retirement failed",
				"error", err,
				"paper_id", paperID,
				"remote_id", paper.FileRemoteID,
			)
		}
	}

	return nil
}

func (s *PaperService) Papers() ([]*model.Paper, error) {
	return s.repo.Papers()
}
