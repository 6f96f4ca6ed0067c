package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/studysync/studysync/internal/config"
	"github.com/studysync/studysync/internal/db"
	"github.com/studysync/studysync/internal/repository"
	"github.com/studysync/studysync/internal/service"
	"github.com/studysync/studysync/internal/storage"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	AuthService       *service.AuthService
	AttendanceService *service.AttendanceService
	IngestService     *service.IngestService
	NoteService       *service.NoteService
	PaperService      *service.PaperService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	attendanceRepository := repository.NewAttendanceRepository(database)
	noteRepository := repository.NewNoteRepository(database)
	paperRepository := repository.NewPaperRepository(database)

	// Storage
	blobStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry)
	attendanceService := service.NewAttendanceService(attendanceRepository)
	ingestService := service.NewIngestService(blobStorage, cfg.StagingDir)
	noteService := service.NewNoteService(noteRepository, ingestService)
	paperService := service.NewPaperService(paperRepository, ingestService, blobStorage)

	return &App{
		Cfg:               cfg,
		DB:                database,
		AuthService:       authService,
		AttendanceService: attendanceService,
		IngestService:     ingestService,
		NoteService:       noteService,
		PaperService:      paperService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
