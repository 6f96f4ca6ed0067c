package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studysync/studysync/internal/model"
	"github.com/studysync/studysync/internal/repository"
)

func newNoteService(t *testing.T, store *fakeStorage) (*NoteService, string) {
	t.Helper()

	database := testDB(t)
	user := seedUser(t, database)
	svc := NewNoteService(
		repository.NewNoteRepository(database),
		NewIngestService(store, t.TempDir()),
	)
	return svc, user.ID
}

func TestCreateNoteWithAttachments(t *testing.T) {
	store := &fakeStorage{}
	svc, userID := newNoteService(t, store)

	files := multipartFiles(t, []mpFile{
		{name: "lecture.pdf", content: pdfBytes},
		{name: "whiteboard.png", content: pngBytes},
	})

	note, err := svc.Create(userID, NoteInput{Title: "Fourier Series", Content: "periodic signals"}, files)
	require.NoError(t, err)
	assert.Equal(t, model.NoteStatusPending, note.Status)

	got, err := svc.ByID(userID, note.ID)
	require.NoError(t, err)
	require.Len(t, got.Attachments, 2)
	// upload order is preserved
	assert.Equal(t, store.saves[0].key, got.Attachments[0].RemoteID)
	assert.Equal(t, store.saves[1].key, got.Attachments[1].RemoteID)
	assert.Equal(t, "pdf", got.Attachments[0].Format)
	assert.Equal(t, "png", got.Attachments[1].Format)
}

func TestCreateNoteValidation(t *testing.T) {
	store := &fakeStorage{}
	svc, userID := newNoteService(t, store)

	_, err := svc.Create(userID, NoteInput{Title: "  ", Content: "body"}, nil)
	assert.ErrorIs(t, err, ErrTitleContentRequired)

	_, err = svc.Create(userID, NoteInput{Title: "t", Content: "c", Status: "Done"}, nil)
	assert.ErrorIs(t, err, ErrInvalidNoteStatus)

	// rejected input must never reach the object store
	assert.Empty(t, store.saves)
}

func TestCreateNoteBatchAbortsOnUploadFailure(t *testing.T) {
	store := &fakeStorage{saveErr: errors.New("bucket unavailable"), failAfter: 1}
	svc, userID := newNoteService(t, store)

	files := multipartFiles(t, []mpFile{
		{name: "a.pdf", content: pdfBytes},
		{name: "b.png", content: pngBytes},
	})

	_, err := svc.Create(userID, NoteInput{Title: "t", Content: "c"}, files)
	assert.ErrorIs(t, err, ErrUploadFailed)

	// the note is not persisted; the first blob is orphaned, not retired
	notes, err := svc.Notes(userID)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Len(t, store.saves, 1)
	assert.Empty(t, store.deletes)
}

func TestUpdateNoteReplacesAttachments(t *testing.T) {
	store := &fakeStorage{}
	svc, userID := newNoteService(t, store)

	note, err := svc.Create(userID, NoteInput{Title: "t", Content: "c"},
		multipartFiles(t, []mpFile{{name: "old.pdf", content: pdfBytes}}))
	require.NoError(t, err)
	oldRemoteID := note.Attachments[0].RemoteID

	updated, err := svc.Update(userID, note.ID,
		NoteInput{Title: "t2", Content: "c2", Status: model.NoteStatusUnderstood},
		multipartFiles(t, []mpFile{
			{name: "new1.png", content: pngBytes},
			{name: "new2.pdf", content: pdfBytes},
		}))
	require.NoError(t, err)

	assert.Equal(t, "t2", updated.Title)
	assert.Equal(t, model.NoteStatusUnderstood, updated.Status)
	require.Len(t, updated.Attachments, 2)
	for _, att := range updated.Attachments {
		assert.NotEqual(t, oldRemoteID, att.RemoteID)
	}

	// replaced blobs stay in the object store
	assert.Empty(t, store.deletes)
}

func TestUpdateNoteWithoutFilesKeepsAttachments(t *testing.T) {
	store := &fakeStorage{}
	svc, userID := newNoteService(t, store)

	note, err := svc.Create(userID, NoteInput{Title: "t", Content: "c"},
		multipartFiles(t, []mpFile{{name: "keep.pdf", content: pdfBytes}}))
	require.NoError(t, err)

	updated, err := svc.Update(userID, note.ID, NoteInput{Title: "renamed", Content: "c"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "renamed", updated.Title)
	require.Len(t, updated.Attachments, 1)
	assert.Equal(t, note.Attachments[0].RemoteID, updated.Attachments[0].RemoteID)
	assert.Len(t, store.saves, 1)
}

func TestUpdateMissingNote(t *testing.T) {
	svc, userID := newNoteService(t, &fakeStorage{})

	_, err := svc.Update(userID, uuid.New().String(), NoteInput{Title: "t", Content: "c"}, nil)
	assert.ErrorIs(t, err, repository.ErrNoteNotFound)
}

func TestDeleteNoteLeavesBlobs(t *testing.T) {
	store := &fakeStorage{}
	svc, userID := newNoteService(t, store)

	note, err := svc.Create(userID, NoteInput{Title: "t", Content: "c"},
		multipartFiles(t, []mpFile{{name: "a.pdf", content: pdfBytes}}))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(userID, note.ID))

	notes, err := svc.Notes(userID)
	require.NoError(t, err)
	assert.Empty(t, notes)

	// note deletion never retires attachment blobs
	assert.Empty(t, store.deletes)

	assert.ErrorIs(t, svc.Delete(userID, note.ID), repository.ErrNoteNotFound)
}
