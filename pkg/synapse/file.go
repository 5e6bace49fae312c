package synapse

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// UploadedFile is a file received in a multipart request
type UploadedFile struct {
	header *multipart.FileHeader
	moved  bool
}

// NewUploadedFile wraps a multipart file header
func NewUploadedFile(header *multipart.FileHeader) *UploadedFile {
	return &UploadedFile{header: header}
}

// FromMultipartForm converts the file part of a parsed multipart form
func FromMultipartForm(form *multipart.Form) map[string][]*UploadedFile {
	files := make(map[string][]*UploadedFile)
	if form == nil {
		return files
	}
	for key, headers := range form.File {
		for _, header := range headers {
			files[key] = append(files[key], NewUploadedFile(header))
		}
	}
	return files
}

// ClientFilename returns the file name sent by the client
func (f *UploadedFile) ClientFilename() string {
	return f.header.Filename
}

// ClientMediaType returns the Content-Type of the part
func (f *UploadedFile) ClientMediaType() string {
	return f.header.Header.Get("Content-Type")
}

// Size returns the file size in bytes
func (f *UploadedFile) Size() int64 {
	return f.header.Size
}

// Header returns the MIME header of the part
func (f *UploadedFile) Header() map[string][]string {
	return f.header.Header
}

// Open opens the file contents for reading
func (f *UploadedFile) Open() (multipart.File, error) {
	if f.moved {
		return nil, ErrFileMoved
	}
	return f.header.Open()
}

// MoveTo copies the upload to path. The file cannot be opened afterwards.
func (f *UploadedFile) MoveTo(path string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create target file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to write uploaded file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to write uploaded file: %w", err)
	}

	f.moved = true
	return nil
}
