package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studysync/studysync/internal/model"
	"github.com/studysync/studysync/internal/repository"
)

var (
	ErrSubjectRequired = errors.New("subject is required")
	ErrInvalidStatus   = errors.New("invalid status")
)

// AttendanceService owns the attendance ledger operations. Every mutation is
// a push or pop at the tail of the history paired with a matching counter
// delta; the repository commits both or neither.
type AttendanceService struct {
	repo repository.AttendanceRepository
}

func NewAttendanceService(repo repository.AttendanceRepository) *AttendanceService {
	return &AttendanceService{repo: repo}
}

// CreateSubject starts a fresh ledger: empty history, both counters zero.
// Subject names are not deduplicated per owner; two records may share a name.
func (s *AttendanceService) CreateSubject(userID, subject string) (*model.AttendanceRecord, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	now := time.Now().UTC()
	record := &model.AttendanceRecord{
		ID:              uuid.New().String(),
		UserID:          userID,
		Subject:         subject,
		AttendedClasses: 0,
		TotalClasses:    0,
		CreatedAt:       now,
		UpdatedAt:       now,
		History:         []*model.HistoryEntry{},
	}

	err := s.repo.Create(record)
	if err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	return record, nil
}

// Mark appends one Present/Absent entry and bumps the counters.
func (s *AttendanceService) Mark(userID, recordID, status string) (*model.AttendanceRecord, error) {
	if status != model.StatusPresent && status != model.StatusAbsent {
		return nil, ErrInvalidStatus
	}

	return s.repo.Mark(userID, recordID, status)
}

// Undo pops the most recent entry and decrements the counters to match.
// An empty history is an error, not a clamp.
func (s *AttendanceService) Undo(userID, recordID string) (*model.AttendanceRecord, error) {
	return s.repo.Undo(userID, recordID)
}

func (s *AttendanceService) Rename(userID, recordID, subject string) (*model.AttendanceRecord, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}

	err := s.repo.Rename(userID, recordID, subject)
	if err != nil {
		return nil, err
	}

	return s.repo.ByID(userID, recordID)
}

func (s *AttendanceService) Delete(userID, recordID string) error {
	return s.repo.Delete(userID, recordID)
}

func (s *AttendanceService) Records(userID string) ([]*model.AttendanceRecord, error) {
	return s.repo.Records(userID)
}

func (s *AttendanceService) ByID(userID, recordID string) (*model.AttendanceRecord, error) {
	return s.repo.ByID(userID, recordID)
}

// FoldHistory recomputes both counters from the stored history. The counters
// are derived state, so a fold must always reproduce them exactly; callers use
// this as a consistency check or repair primitive.
func (s *AttendanceService) FoldHistory(recordID string) (total, attended uint, err error) {
	return s.repo.FoldHistory(recordID)
}
