package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/studysync/studysync/internal/model"
)

var (
	ErrNoteNotFound = errors.New("note not found")
)

type NoteRepository interface {
	Create(note *model.Note) error
	ByID(userID, noteID string) (*model.Note, error)
	Notes(userID string) ([]*model.Note, error)
	Update(note *model.Note, replaceAttachments bool) error
	Delete(userID, noteID string) error
}

type noteRepository struct {
	db *sqlx.DB
}

func NewNoteRepository(db *sqlx.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(note *model.Note) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO notes (id, user_id, title, content, subject, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.Subject,
		note.Status,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return err
	}

	err = insertAttachments(tx, note.ID, note.Attachments)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// insertAttachments writes the attachment rows in order; position preserves
// the upload order of the batch.
func insertAttachments(tx *sqlx.Tx, noteID string, attachments []*model.Attachment) error {
	query := `INSERT INTO note_attachments (id, note_id, position, remote_id, url, format)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	for i, att := range attachments {
		att.ID = uuid.New().String()
		att.NoteID = noteID
		att.Position = i

		_, err := tx.Exec(query, att.ID, att.NoteID, att.Position, att.RemoteID, att.URL, att.Format)
		if err != nil {
			return fmt.Errorf("failed to insert attachment %d: %w", i, err)
		}
	}

	return nil
}

func (r *noteRepository) ByID(userID, noteID string) (*model.Note, error) {
	note := &model.Note{}
	query := `SELECT * FROM notes WHERE id = $1 AND user_id = $2`

	err := r.db.Get(note, query, noteID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.loadAttachments(note)
	if err != nil {
		return nil, err
	}

	return note, nil
}

func (r *noteRepository) Notes(userID string) ([]*model.Note, error) {
	var notes []*model.Note
	query := `SELECT * FROM notes WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&notes, query, userID)
	if err != nil {
		return nil, err
	}

	for _, note := range notes {
		err = r.loadAttachments(note)
		if err != nil {
			return nil, err
		}
	}

	return notes, nil
}

func (r *noteRepository) loadAttachments(note *model.Note) error {
	note.Attachments = []*model.Attachment{}
	query := `SELECT * FROM note_attachments WHERE note_id = $1 ORDER BY position ASC`
	return r.db.Select(&note.Attachments, query, note.ID)
}

// Update replaces the note's fields; when replaceAttachments is set the whole
// attachments array is overwritten, otherwise the existing rows are untouched.
func (r *noteRepository) Update(note *model.Note, replaceAttachments bool) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `UPDATE notes
	          SET title = $1, content = $2, subject = $3, status = $4, updated_at = $5
	          WHERE id = $6 AND user_id = $7`

	result, err := tx.Exec(query,
		note.Title,
		note.Content,
		note.Subject,
		note.Status,
		time.Now().UTC(),
		note.ID,
		note.UserID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoteNotFound
	}

	if replaceAttachments {
		_, err = tx.Exec(`DELETE FROM note_attachments WHERE note_id = $1`, note.ID)
		if err != nil {
			return err
		}

		err = insertAttachments(tx, note.ID, note.Attachments)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *noteRepository) Delete(userID, noteID string) error {
	query := `DELETE FROM notes WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, noteID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNoteNotFound
	}

	return nil
}
