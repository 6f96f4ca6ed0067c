package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/studysync/studysync/internal/model"
	"github.com/studysync/studysync/internal/storage"
	"github.com/studysync/studysync/internal/validation"
)

const (
	// Destination folders in the object store
	FolderNotes  = "studysync_notes"
	FolderPapers = "studysync_pyp"
)

var (
	ErrUploadFailed = errors.New("upload failed")
	ErrEmptyFile    = errors.New("file is empty")
)

// IngestService moves file bytes from a request into durable object storage:
// stage to a local temp file, upload, release staging. The staging file is
// released on every exit path, including upload failure.
type IngestService struct {
	storage    storage.Storage
	stagingDir string
}

func NewIngestService(storage storage.Storage, stagingDir string) *IngestService {
	return &IngestService{
		storage:    storage,
		stagingDir: stagingDir,
	}
}

// IngestMultipart ingests one file from a parsed multipart form.
func (s *IngestService) IngestMultipart(folder string, header *multipart.FileHeader) (*model.Attachment, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %q: %w", header.Filename, err)
	}
	defer func() { _ = file.Close() }()

	return s.ingest(folder, header.Filename, file)
}

// IngestBase64 ingests one inline-encoded file. The payload may carry a
// data-URI prefix ("data:application/pdf;base64,....") or be bare base64.
func (s *IngestService) IngestBase64(folder, data string) (*model.Attachment, error) {
	payload := data
	if strings.HasPrefix(payload, "data:") {
		_, rest, found := strings.Cut(payload, ",")
		if !found {
			return nil, fmt.Errorf("malformed data URI")
		}
		payload = rest
	}

	decoder := base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload))
	return s.ingest(folder, "", decoder)
}

// ingest is the shared pipeline: stage -> sniff -> durable upload -> cleanup.
func (s *IngestService) ingest(folder, filename string, src io.Reader) (*model.Attachment, error) {
	staged, err := s.stage(src)
	if err != nil {
		return nil, err
	}
	defer staged.Release()

	contentType, err := validation.DetectContentType(staged.file)
	if err != nil {
		return nil, fmt.Errorf("failed to detect content type: %w", err)
	}

	format := blobFormat(contentType, filename)

	key := folder + "/" + uuid.New().String()
	if format != "" {
		key += "." + format
	}

	// PDFs go up in raw binary mode with a fixed content type; everything
	// else carries the sniffed type and lets the store serve it as detected.
	uploadType := contentType
	if format == "pdf" {
		uploadType = "application/pdf"
	}

	err = s.storage.Save(key, staged.file, uploadType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUploadFailed, err)
	}

	return &model.Attachment{
		RemoteID: key,
		URL:      s.storage.URL(key),
		Format:   format,
	}, nil
}

// stagedFile holds file bytes locally between receipt and durable upload.
// Owned exclusively by the request that created it.
type stagedFile struct {
	file *os.File
}

func (s *IngestService) stage(src io.Reader) (*stagedFile, error) {
	f, err := os.CreateTemp(s.stagingDir, "studysync-upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	n, err := io.Copy(f, src)
	if err != nil {
		release(f)
		return nil, fmt.Errorf("failed to stage file: %w", err)
	}
	if n == 0 {
		release(f)
		return nil, ErrEmptyFile
	}

	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		release(f)
		return nil, fmt.Errorf("failed to rewind staging file: %w", err)
	}

	return &stagedFile{file: f}, nil
}

// Release closes and removes the staging file. Safe to call exactly once per
// staged file; ingest defers it so no exit path leaks local disk.
func (sf *stagedFile) Release() {
	release(sf.file)
}

func release(f *os.File) {
	name := f.Name()
	if err := f.Close(); err != nil {
		slog.Warn("failed to close staging file", "error", err, "path", name)
	}
	if err := os.Remove(name); err != nil {
		slog.Warn("failed to remove staging file", "error", err, "path", name)
	}
}

// blobFormat derives the stored format hint: the original file extension when
// there is one, otherwise the sniffed content type's subtype.
func blobFormat(contentType, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" {
		return strings.TrimPrefix(ext, ".")
	}

	switch contentType {
	case "application/pdf":
		return "pdf"
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	}

	_, subtype, found := strings.Cut(contentType, "/")
	if !found {
		return ""
	}
	// "text/plain; charset=utf-8" -> "plain"
	if i := strings.IndexByte(subtype, ';'); i >= 0 {
		subtype = subtype[:i]
	}
	return strings.TrimSpace(subtype)
}
