package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/studysync/studysync/internal/model"
)

var (
	ErrPaperNotFound = errors.New("paper not found")
)

type PaperRepository interface {
	Create(paper *model.Paper) error
	ByID(paperID string) (*model.Paper, error)
	Papers() ([]*model.Paper, error)
	Delete(paperID string) error
}

type paperRepository struct {
	db *sqlx.DB
}

func NewPaperRepository(db *sqlx.DB) PaperRepository {
	return &paperRepository{db: db}
}

func (r *paperRepository) Create(paper *model.Paper) error {
	query := `INSERT INTO papers (id, subject, year, semester, term, file_remote_id, file_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		paper.ID,
		paper.Subject,
		paper.Year,
		paper.Semester,
		paper.Term,
		paper.FileRemoteID,
		paper.FileURL,
		paper.CreatedAt,
		paper.UpdatedAt,
	)

	return err
}

func (r *paperRepository) ByID(paperID string) (*model.Paper, error) {
	paper := &model.Paper{}
	query := `SELECT * FROM papers WHERE id = $1`

	err := r.db.Get(paper, query, paperID)
	if err == sql.ErrNoRows {
		return nil, ErrPaperNotFound
	}
	if err != nil {
		return nil, err
	}

	paper.FillFile()
	return paper, nil
}

func (r *paperRepository) Papers() ([]*model.Paper, error) {
	var papers []*model.Paper
	query := `SELECT * FROM papers ORDER BY created_at DESC`

	err := r.db.Select(&papers, query)
	if err != nil {
		return nil, err
	}

	for _, paper := range papers {
		paper.FillFile()
	}

	return papers, nil
}

func (r *paperRepository) Delete(paperID string) error {
	query := `DELETE FROM papers WHERE id = $1`
	result, err := r.db.Exec(query, paperID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrPaperNotFound
	}

	return nil
}
