package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/studysync/studysync/internal/model"
)

var (
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrEmptyHistory   = errors.New("no history to undo")
)

// AttendanceRepository persists the attendance ledger. Mark and Undo pair the
// counter delta with the history push/pop inside a single transaction, and the
// deltas are applied as atomic SET x = x +/- 1 updates. Two concurrent marks on
// the same record therefore both land; neither overwrites the other's counters.
type AttendanceRepository interface {
	Create(record *model.AttendanceRecord) error
	ByID(userID, recordID string) (*model.AttendanceRecord, error)
	Records(userID string) ([]*model.AttendanceRecord, error)
	Mark(userID, recordID, status string) (*model.AttendanceRecord, error)
	Undo(userID, recordID string) (*model.AttendanceRecord, error)
	Rename(userID, recordID, subject string) error
	Delete(userID, recordID string) error
	FoldHistory(recordID string) (total, attended uint, err error)
}

type attendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(record *model.AttendanceRecord) error {
	query := `INSERT INTO attendance_records (id, user_id, subject, attended_classes, total_classes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		record.ID,
		record.UserID,
		record.Subject,
		record.AttendedClasses,
		record.TotalClasses,
		record.CreatedAt,
		record.UpdatedAt,
	)

	return err
}

func (r *attendanceRepository) ByID(userID, recordID string) (*model.AttendanceRecord, error) {
	record := &model.AttendanceRecord{}
	query := `SELECT * FROM attendance_records WHERE id = $1 AND user_id = $2`

	err := r.db.Get(record, query, recordID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.loadHistory(record)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *attendanceRepository) Records(userID string) ([]*model.AttendanceRecord, error) {
	var records []*model.AttendanceRecord
	query := `SELECT * FROM attendance_records WHERE user_id = $1 ORDER BY subject ASC`

	err := r.db.Select(&records, query, userID)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		err = r.loadHistory(record)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

func (r *attendanceRepository) loadHistory(record *model.AttendanceRecord) error {
	record.History = []*model.HistoryEntry{}
	query := `SELECT * FROM attendance_history WHERE record_id = $1 ORDER BY seq ASC`
	return r.db.Select(&record.History, query, record.ID)
}

// Mark appends a history entry and bumps the counters in one transaction.
// The new entry's seq is the post-increment total, so insertion order stays
// the chronological order even under concurrent marks.
func (r *attendanceRepository) Mark(userID, recordID, status string) (*model.AttendanceRecord, error) {
	attended := 0
	if status == model.StatusPresent {
		attended = 1
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	result, err := tx.Exec(`UPDATE attendance_records
	         SET total_classes = total_classes + 1, attended_classes = attended_classes + $1, updated_at = $2
	         WHERE id = $3 AND user_id = $4`,
		attended, now, recordID, userID)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrRecordNotFound
	}

	var seq int
	err = tx.Get(&seq, `SELECT total_classes FROM attendance_records WHERE id = $1`, recordID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(`INSERT INTO attendance_history (id, record_id, seq, status, marked_at)
	         VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), recordID, seq, status, now)
	if err != nil {
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	return r.ByID(userID, recordID)
}

// Undo removes the most recently appended history entry and decrements the
// counters to match, in one transaction. Fails with ErrEmptyHistory when there
// is nothing to pop; counters are never decremented past zero.
func (r *attendanceRepository) Undo(userID, recordID string) (*model.AttendanceRecord, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var owned string
	err = tx.Get(&owned, `SELECT id FROM attendance_records WHERE id = $1 AND user_id = $2`, recordID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	entry := &model.HistoryEntry{}
	err = tx.Get(entry, `SELECT * FROM attendance_history WHERE record_id = $1 ORDER BY seq DESC LIMIT 1`, recordID)
	if err == sql.ErrNoRows {
		return nil, ErrEmptyHistory
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(`DELETE FROM attendance_history WHERE id = $1`, entry.ID)
	if err != nil {
		return nil, err
	}

	attended := 0
	if entry.Status == model.StatusPresent {
		attended = 1
	}

	_, err = tx.Exec(`UPDATE attendance_records
	         SET total_classes = total_classes - 1, attended_classes = attended_classes - $1, updated_at = $2
	         WHERE id = $3`,
		attended, time.Now().UTC(), recordID)
	if err != nil {
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	return r.ByID(userID, recordID)
}

func (r *attendanceRepository) Rename(userID, recordID, subject string) error {
	query := `UPDATE attendance_records SET subject = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`
	result, err := r.db.Exec(query, subject, time.Now().UTC(), recordID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (r *attendanceRepository) Delete(userID, recordID string) error {
	query := `DELETE FROM attendance_records WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, recordID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// FoldHistory recomputes both counters from the history alone. The stored
// counters are derived state; this is the consistency check / repair primitive.
func (r *attendanceRepository) FoldHistory(recordID string) (total, attended uint, err error) {
	err = r.db.Get(&total, `SELECT COUNT(*) FROM attendance_history WHERE record_id = $1`, recordID)
	if err != nil {
		return 0, 0, err
	}

	err = r.db.Get(&attended, `SELECT COUNT(*) FROM attendance_history WHERE record_id = $1 AND status = $2`,
		recordID, model.StatusPresent)
	if err != nil {
		return 0, 0, err
	}

	return total, attended, nil
}
