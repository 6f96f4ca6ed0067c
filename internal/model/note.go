package model

import (
	"time"
)

const (
	NoteStatusPending    = "Pending"
	NoteStatusUnderstood = "Understood"
	NoteStatusRevisit    = "Revisit"
)

type Note struct {
	ID        string    `db:"id" json:"_id"`
	UserID    string    `db:"user_id" json:"user"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Subject   string    `db:"subject" json:"subject,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Attachments []*Attachment `db:"-" json:"attachments"`
}

// Attachment is an immutable reference to one object-store blob.
type Attachment struct {
	ID       string `db:"id" json:"-"`
	NoteID   string `db:"note_id" json:"-"`
	Position int    `db:"position" json:"-"`
	RemoteID string `db:"remote_id" json:"remoteId"`
	URL      string `db:"url" json:"url"`
	Format   string `db:"format" json:"format,omitempty"`
}
