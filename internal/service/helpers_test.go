package service

import (
	"bytes"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/studysync/studysync/internal/db"
	"github.com/studysync/studysync/internal/model"
	"github.com/studysync/studysync/internal/repository"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	// in-memory sqlite: every connection is its own database
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	return database
}

func seedUser(t *testing.T, database *sqlx.DB) *model.User {
	t.Helper()

	user := &model.User{
		ID:        uuid.New().String(),
		Email:     uuid.New().String() + "@example.com",
		FullName:  "Test Student",
		Role:      model.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repository.NewUserRepository(database).Create(user))
	return user
}

type savedBlob struct {
	key         string
	contentType string
	size        int64
}

// fakeStorage records every Save and Delete. Setting saveErr makes Save fail
// once failAfter blobs have been accepted; setting deleteErr makes every
// Delete fail.
type fakeStorage struct {
	saves     []savedBlob
	deletes   []string
	saveErr   error
	failAfter int
	deleteErr error
}

func (f *fakeStorage) Save(path string, file io.Reader, contentType string) error {
	if f.saveErr != nil && len(f.saves) >= f.failAfter {
		return f.saveErr
	}

	n, err := io.Copy(io.Discard, file)
	if err != nil {
		return err
	}

	f.saves = append(f.saves, savedBlob{key: path, contentType: contentType, size: n})
	return nil
}

func (f *fakeStorage) Delete(path string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, path)
	return nil
}

func (f *fakeStorage) URL(path string) string {
	return "https://blobs.test/" + path
}

type mpFile struct {
	name    string
	content []byte
}

// multipartFiles round-trips the given files through a real multipart form so
// the headers behave exactly like ones produced by ParseMultipartForm.
func multipartFiles(t *testing.T, files []mpFile) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("attachments", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["attachments"]
}

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0x00}, 32)...)
)
