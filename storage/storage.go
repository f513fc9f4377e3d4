// Package storage persists uploaded CV attachments to the local
// filesystem, independently of the database transaction that will later
// reference them. The row is only created after the file write succeeds,
// so a row can never point at a file that was never written; the reverse
// (an orphaned file with no row) is tolerated and cleaned up out-of-band.
package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// File is an upload as received from the HTTP layer.
type File struct {
	Data         []byte
	OriginalName string
	MimeType     string
}

// StoredFile describes a successfully persisted upload.
type StoredFile struct {
	FileName string
	FilePath string
	FileSize int64
	MimeType string
}

// FileStore is the interface the route handlers use to persist uploads.
type FileStore interface {
	Save(File) (StoredFile, error)
	// Delete removes a stored file by name. Best-effort: errors are
	// swallowed, a failed cleanup must never surface to the client.
	Delete(fileName string)
	// MaxSize reports the per-file byte ceiling, so the HTTP layer can
	// bound request bodies before buffering them.
	MaxSize() int64
}

// InvalidFileError means the upload violated a constraint (size, type)
// and was rejected before anything touched the disk. Always a client
// error.
type InvalidFileError struct {
	Code    string
	Message string
}

func (e InvalidFileError) Error() string {
	return e.Message
}

// WriteError means the upload was acceptable but persisting it failed.
type WriteError struct {
	Err error
}

func (e WriteError) Error() string {
	return fmt.Sprintf("could not store file: %v", e.Err)
}

// IsInvalidFile reports whether err is a constraint rejection rather
// than a storage failure.
func IsInvalidFile(err error) bool {
	_, ok := err.(InvalidFileError)
	return ok
}

// Allowed CV types. Both the declared MIME type and the file extension
// are checked independently, and the pair must agree: a content-type
// check alone is bypassable by renaming, an extension check alone by
// lying in the upload headers.
var allowedMimeTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

func extensionForMime(mimeType string) (string, bool) {
	ext, ok := allowedMimeTypes[strings.ToLower(mimeType)]
	return ext, ok
}

func allowedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".pdf", ".doc", ".docx":
		return true
	}
	return false
}

func fileExtension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
