package model

import (
	"time"
)

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// AttendanceRecord is the per-(user, subject) ledger: two counters derived
// from an append-only history. total_classes == len(history) and
// attended_classes == count(history, Present) after every committed mutation.
type AttendanceRecord struct {
	ID              string    `db:"id" json:"_id"`
	UserID          string    `db:"user_id" json:"userId"`
	Subject         string    `db:"subject" json:"subject"`
	AttendedClasses uint      `db:"attended_classes" json:"attendedClasses"`
	TotalClasses    uint      `db:"total_classes" json:"totalClasses"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`

	History []*HistoryEntry `db:"-" json:"history"`
}

// HistoryEntry is one immutable Present/Absent event. Entries are only ever
// appended at the tail and removed from the tail; seq is the 1-based position.
type HistoryEntry struct {
	ID       string    `db:"id" json:"-"`
	RecordID string    `db:"record_id" json:"-"`
	Seq      int       `db:"seq" json:"-"`
	Status   string    `db:"status" json:"status"`
	MarkedAt time.Time `db:"marked_at" json:"date"`
}
