package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studysync/studysync/internal/ctxkeys"
	"github.com/studysync/studysync/internal/db"
	"github.com/studysync/studysync/internal/model"
	"github.com/studysync/studysync/internal/repository"
	"github.com/studysync/studysync/internal/service"
)

type attendanceEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		ID              string `json:"_id"`
		Subject         string `json:"subject"`
		AttendedClasses uint   `json:"attendedClasses"`
		TotalClasses    uint   `json:"totalClasses"`
		History         []struct {
			Status string    `json:"status"`
			Date   time.Time `json:"date"`
		} `json:"history"`
	} `json:"data"`
}

func newAttendanceMux(t *testing.T) http.Handler {
	t.Helper()

	database, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	user := &model.User{
		ID:        uuid.New().String(),
		Email:     "student@example.com",
		FullName:  "Test Student",
		Role:      model.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repository.NewUserRepository(database).Create(user))

	h := NewAttendanceHandler(service.NewAttendanceService(repository.NewAttendanceRepository(database)))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /attendance/add-subject", h.AddSubject)
	mux.HandleFunc("PATCH /attendance/mark/{id}", h.Mark)
	mux.HandleFunc("GET /attendance", h.List)
	mux.HandleFunc("PATCH /attendance/edit/{id}", h.Edit)
	mux.HandleFunc("DELETE /attendance/{id}", h.Delete)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body map[string]any) (int, attendanceEnvelope) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var envelope attendanceEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return rec.Code, envelope
}

func TestAttendanceMarkFlow(t *testing.T) {
	h := newAttendanceMux(t)

	status, resp := doJSON(t, h, http.MethodPost, "/attendance/add-subject", map[string]any{"subject": "Maths"})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, resp.Success)
	recordID := resp.Data.ID
	require.NotEmpty(t, recordID)
	assert.Equal(t, "Maths", resp.Data.Subject)

	markPath := "/attendance/mark/" + recordID
	status, resp = doJSON(t, h, http.MethodPatch, markPath, map[string]any{"status": "Present"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint(1), resp.Data.AttendedClasses)
	assert.Equal(t, uint(1), resp.Data.TotalClasses)

	status, resp = doJSON(t, h, http.MethodPatch, markPath, map[string]any{"status": "Absent"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint(1), resp.Data.AttendedClasses)
	assert.Equal(t, uint(2), resp.Data.TotalClasses)
	require.Len(t, resp.Data.History, 2)
	assert.Equal(t, "Present", resp.Data.History[0].Status)
	assert.Equal(t, "Absent", resp.Data.History[1].Status)

	// Undo travels as a status token on the mark endpoint
	status, resp = doJSON(t, h, http.MethodPatch, markPath, map[string]any{"status": "Undo"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint(1), resp.Data.AttendedClasses)
	assert.Equal(t, uint(1), resp.Data.TotalClasses)
}

func TestAttendanceMarkErrors(t *testing.T) {
	h := newAttendanceMux(t)

	status, resp := doJSON(t, h, http.MethodPost, "/attendance/add-subject", map[string]any{"subject": "Maths"})
	require.Equal(t, http.StatusCreated, status)
	markPath := "/attendance/mark/" + resp.Data.ID

	status, resp = doJSON(t, h, http.MethodPatch, markPath, map[string]any{"status": "Late"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid status", resp.Message)

	status, resp = doJSON(t, h, http.MethodPatch, markPath, map[string]any{"status": "Undo"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No history to undo", resp.Message)

	status, resp = doJSON(t, h, http.MethodPatch, "/attendance/mark/"+uuid.New().String(), map[string]any{"status": "Present"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Record not found", resp.Message)
}

func TestAttendanceEditAndDelete(t *testing.T) {
	h := newAttendanceMux(t)

	status, resp := doJSON(t, h, http.MethodPost, "/attendance/add-subject", map[string]any{"subject": "Mathz"})
	require.Equal(t, http.StatusCreated, status)
	recordID := resp.Data.ID

	status, resp = doJSON(t, h, http.MethodPatch, "/attendance/edit/"+recordID, map[string]any{"subject": "Maths"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Maths", resp.Data.Subject)

	status, resp = doJSON(t, h, http.MethodPatch, "/attendance/edit/"+recordID, map[string]any{"subject": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Subject name is required", resp.Message)

	status, resp = doJSON(t, h, http.MethodPatch, "/attendance/edit/"+uuid.New().String(), map[string]any{"subject": "Maths"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Subject not found", resp.Message)

	status, _ = doJSON(t, h, http.MethodDelete, "/attendance/"+recordID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, resp = doJSON(t, h, http.MethodDelete, "/attendance/"+recordID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Record not found", resp.Message)
}
