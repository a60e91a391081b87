package files

import (
	"errors"
	"fmt"
	"os"

	"flowpulse/internal/dataprocessing"
	"flowpulse/pkg/contracts/domain"
)

// DefaultMaxFileSize matches the default upload limit of the HTTP API
const DefaultMaxFileSize int64 = 32 << 20

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file exceeds size limit")
)

// ValidateFile checks that a discovered file is non-empty and within maxSize.
// A maxSize of zero disables the size check.
func ValidateFile(file FileInfo, maxSize int64) error {
	if file.Size == 0 {
		return fmt.Errorf("%s: %w", file.Name, ErrEmptyFile)
	}
	if maxSize > 0 && file.Size > maxSize {
		return fmt.Errorf("%s: %w (%d > %d bytes)", file.Name, ErrFileTooLarge, file.Size, maxSize)
	}
	return nil
}

// ReadReports validates and reads each file, decoding Windows-1252 exports
// to UTF-8 text
func ReadReports(found []FileInfo, maxSize int64) ([]domain.UploadedFile, error) {
	uploads := make([]domain.UploadedFile, 0, len(found))
	for _, file := range found {
		if err := ValidateFile(file, maxSize); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(file.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file.Path, err)
		}
		uploads = append(uploads, domain.UploadedFile{
			Name:    file.Name,
			Content: dataprocessing.DecodeText(raw),
		})
	}
	return uploads, nil
}
