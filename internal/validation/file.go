package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ValidateFileSize checks an upload's declared size against the per-file limit
// before any bytes are staged.
func ValidateFileSize(header *multipart.FileHeader, maxSize int64) error {
	if header.Size > maxSize {
		maxMB := maxSize / (1 << 20)
		return fmt.Errorf("file too large: maximum size is %d MB", maxMB)
	}
	return nil
}

// DetectContentType sniffs the content type from the first 512 bytes of an
// open file and seeks back to the start. Detection works on magic numbers,
// so it cannot be faked by renaming the file or changing a header.
func DetectContentType(f io.ReadSeeker) (string, error) {
	// http.DetectContentType reads max 512 bytes to determine MIME type
	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		return "", fmt.Errorf("failed to reset file pointer: %w", err)
	}

	return http.DetectContentType(buffer[:n]), nil
}
