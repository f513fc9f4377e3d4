package storage

import (
	"fmt"
	"io/ioutil"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/brightvale/website-backend/sanitize"
	"github.com/brightvale/website-backend/util"
)

// DefaultMaxSize is the upload ceiling when MAX_FILE_SIZE isn't set: 5 MiB.
const DefaultMaxSize = 5 << 20

// Config holds the filesystem settings for a LocalStore.
type Config struct {
	Dir     string
	MaxSize int64
}

// LoadEnvironmentVariables reads UPLOAD_DIR and MAX_FILE_SIZE into a
// Config.
func LoadEnvironmentVariables() (Config, error) {
	cfg := Config{
		Dir:     util.EnvOrDefault("UPLOAD_DIR", "./uploads"),
		MaxSize: DefaultMaxSize,
	}
	if raw := os.Getenv("MAX_FILE_SIZE"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || size <= 0 {
			return cfg, fmt.Errorf("MAX_FILE_SIZE must be a positive integer, got %q", raw)
		}
		cfg.MaxSize = size
	}
	return cfg, nil
}

// LocalStore writes uploads under a single configured directory, created
// on first use.
type LocalStore struct {
	cfg Config
}

// NewLocalStore returns a LocalStore for the given config.
func NewLocalStore(cfg Config) *LocalStore {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	return &LocalStore{cfg: cfg}
}

// MaxSize reports the configured per-file byte ceiling.
func (s *LocalStore) MaxSize() int64 {
	return s.cfg.MaxSize
}

// randSuffix generates a short random hex string for stored names.
func randSuffix() string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}

// storedName builds a collision-resistant name from the sanitized
// original base name, a millisecond timestamp and a random suffix, with
// the original extension preserved. Two concurrent uploads of
// "resume.pdf" never overwrite each other.
func storedName(originalName string) string {
	ext := fileExtension(originalName)
	base := sanitize.Filename(strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)))
	if base == "" {
		base = "upload"
	}
	if len(base) > 64 {
		base = base[:64]
	}
	return fmt.Sprintf("%s-%d-%s%s", base, time.Now().UnixNano()/int64(time.Millisecond), randSuffix(), ext)
}

// Save validates the upload and writes it to disk. Constraint violations
// return InvalidFileError before any filesystem work; write failures
// return WriteError.
func (s *LocalStore) Save(file File) (StoredFile, error) {
	size := int64(len(file.Data))
	if size == 0 {
		return StoredFile{}, InvalidFileError{Code: "EMPTY_FILE",
			Message: "uploaded file is empty"}
	}
	if size > s.cfg.MaxSize {
		return StoredFile{}, InvalidFileError{Code: "FILE_TOO_LARGE",
			Message: fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxSize)}
	}
	expectedExt, ok := extensionForMime(file.MimeType)
	if !ok {
		return StoredFile{}, InvalidFileError{Code: "INVALID_FILE_TYPE",
			Message: "only PDF, DOC and DOCX files are accepted"}
	}
	ext := fileExtension(file.OriginalName)
	if !allowedExtension(ext) {
		return StoredFile{}, InvalidFileError{Code: "INVALID_FILE_TYPE",
			Message: "only PDF, DOC and DOCX files are accepted"}
	}
	if ext != expectedExt {
		return StoredFile{}, InvalidFileError{Code: "FILE_TYPE_MISMATCH",
			Message: "file extension does not match its declared content type"}
	}
	if err := os.MkdirAll(s.cfg.Dir, 0755); err != nil {
		return StoredFile{}, WriteError{Err: err}
	}
	name := storedName(file.OriginalName)
	path := filepath.Join(s.cfg.Dir, name)
	if err := ioutil.WriteFile(path, file.Data, 0644); err != nil {
		return StoredFile{}, WriteError{Err: err}
	}
	return StoredFile{
		FileName: name,
		FilePath: path,
		FileSize: size,
		MimeType: strings.ToLower(file.MimeType),
	}, nil
}

// Delete removes a previously stored file. Errors are logged and
// swallowed.
func (s *LocalStore) Delete(fileName string) {
	// Refuse anything that resolves outside the upload dir.
	if fileName != filepath.Base(fileName) {
		log.Printf("refusing to delete suspicious file name %q", fileName)
		return
	}
	path := filepath.Join(s.cfg.Dir, fileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("could not delete stored file %s: %v", path, err)
	}
}
