package model

import (
	"time"
)

const (
	TermMidSem = "MidSem"
	TermEndSem = "EndSem"
)

// Paper is a past-year paper. Papers are global (no owner): any authenticated
// user may list them, only admins may upload or delete.
type Paper struct {
	ID           string    `db:"id" json:"_id"`
	Subject      string    `db:"subject" json:"subject"`
	Year         int       `db:"year" json:"year"`
	Semester     int       `db:"semester" json:"semester"`
	Term         string    `db:"term" json:"term"`
	FileRemoteID string    `db:"file_remote_id" json:"-"`
	FileURL      string    `db:"file_url" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	// Computed field (not in database) - nested file object on the wire
	File PaperFile `db:"-" json:"file"`
}

type PaperFile struct {
	RemoteID string `json:"remoteId"`
	URL      string `json:"url"`
}

// FillFile populates the computed File field from the flat columns.
func (p *Paper) FillFile() {
	p.File = PaperFile{RemoteID: p.FileRemoteID, URL: p.FileURL}
}
