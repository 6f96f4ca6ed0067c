package routes

import (
	"net/http"

	"github.com/studysync/studysync/internal/app"
	"github.com/studysync/studysync/internal/handler"
	"github.com/studysync/studysync/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.Cfg.AppName)
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg)
	attendance := handler.NewAttendanceHandler(app.AttendanceService)
	note := handler.NewNoteHandler(app.NoteService, app.Cfg.MaxUploadSize, app.Cfg.MaxFormMemory)
	paper := handler.NewPaperHandler(app.PaperService)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /{$}", home.Health)

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /auth/signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("GET /auth/google", rateLimiter(auth.GoogleAuth))
	mux.HandleFunc("GET /auth/google/callback", rateLimiter(auth.GoogleCallback))

	// Attendance ledger
	mux.HandleFunc("POST /attendance/add-subject", middleware.RequireAuth(attendance.AddSubject))
	mux.HandleFunc("PATCH /attendance/mark/{id}", middleware.RequireAuth(attendance.Mark))
	mux.HandleFunc("GET /attendance", middleware.RequireAuth(attendance.List))
	mux.HandleFunc("PATCH /attendance/edit/{id}", middleware.RequireAuth(attendance.Edit))
	mux.HandleFunc("DELETE /attendance/{id}", middleware.RequireAuth(attendance.Delete))

	// Notes
	mux.HandleFunc("POST /notes/add", middleware.RequireAuth(note.Create))
	mux.HandleFunc("GET /notes", middleware.RequireAuth(note.List))
	mux.HandleFunc("PUT /notes/{id}", middleware.RequireAuth(note.Update))
	mux.HandleFunc("DELETE /notes/{id}", middleware.RequireAuth(note.Delete))

	// Past-year papers (mutations admin-only)
	mux.HandleFunc("POST /pypapers/upload", middleware.RequireAdmin(paper.Upload))
	mux.HandleFunc("GET /pypapers", middleware.RequireAuth(paper.List))
	mux.HandleFunc("DELETE /pypapers/{id}", middleware.RequireAdmin(paper.Delete))

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)

	return h
}
