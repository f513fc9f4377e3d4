package storage

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) (*LocalStore, string) {
	dir, err := ioutil.TempDir("", "uploads")
	if err != nil {
		t.Fatal(err)
	}
	return NewLocalStore(Config{Dir: dir, MaxSize: 1024}), dir
}

func pdfFile(name string, size int) File {
	return File{
		Data:         bytes.Repeat([]byte("a"), size),
		OriginalName: name,
		MimeType:     "application/pdf",
	}
}

func TestSaveWritesFile(t *testing.T) {
	store, dir := newTestStore(t)
	defer os.RemoveAll(dir)
	stored, err := store.Save(pdfFile("resume.pdf", 100))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if stored.FileSize != 100 || stored.MimeType != "application/pdf" {
		t.Errorf("unexpected stored metadata: %+v", stored)
	}
	data, err := ioutil.ReadFile(filepath.Join(dir, stored.FileName))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if len(data) != 100 {
		t.Errorf("expected 100 bytes on disk, got %d", len(data))
	}
}

func TestSaveRejectsOversizeBeforeWriting(t *testing.T) {
	store, dir := newTestStore(t)
	defer os.RemoveAll(dir)
	if store.MaxSize() != 1024 {
		t.Errorf("expected configured ceiling 1024, got %d", store.MaxSize())
	}
	_, err := store.Save(pdfFile("big.pdf", 2048))
	invalid, ok := err.(InvalidFileError)
	if !ok {
		t.Fatalf("expected InvalidFileError, got %v", err)
	}
	if invalid.Code != "FILE_TOO_LARGE" {
		t.Errorf("expected FILE_TOO_LARGE, got %s", invalid.Code)
	}
	entries, _ := ioutil.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("rejected upload should leave no file on disk, found %d", len(entries))
	}
}

func TestSaveRejectsDisallowedMimeType(t *testing.T) {
	store, dir := newTestStore(t)
	defer os.RemoveAll(dir)
	_, err := store.Save(File{
		Data:         []byte("fake png"),
		OriginalName: "image.pdf",
		MimeType:     "image/png",
	})
	if !IsInvalidFile(err) {
		t.Fatalf("expected InvalidFileError for image/png, got %v", err)
	}
}

func TestSaveRejectsMimeExtensionMismatch(t *testing.T) {
	store, dir := newTestStore(t)
	defer os.RemoveAll(dir)
	// A .exe renamed to claim a Word MIME type.
	_, err := store.Save(File{
		Data:         []byte("MZ..."),
		OriginalName: "malware.exe",
		MimeType:     "application/msword",
	})
	if !IsInvalidFile(err) {
		t.Fatalf("expected InvalidFileError for .exe, got %v", err)
	}
	// A PDF extension with a Word MIME type is a mismatch too.
	_, err = store.Save(File{
		Data:         []byte("content"),
		OriginalName: "report.pdf",
		MimeType:     "application/msword",
	})
	invalid, ok := err.(InvalidFileError)
	if !ok {
		t.Fatalf("expected InvalidFileError for mismatch, got %v", err)
	}
	if invalid.Code != "FILE_TYPE_MISMATCH" {
		t.Errorf("expected FILE_TYPE_MISMATCH, got %s", invalid.Code)
	}
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store, dir := newTestStore(t)
	defer os.RemoveAll(dir)
	names := make(map[string]bool)
	for i := 0; i < 5; i++ {
		stored, err := store.Save(pdfFile("resume.pdf", 10))
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if names[stored.FileName] {
			t.Fatalf("stored name %s collided", stored.FileName)
		}
		names[stored.FileName] = true
		if !strings.HasSuffix(stored.FileName, ".pdf") {
			t.Errorf("stored name should keep extension, got %s", stored.FileName)
		}
	}
}

func TestSaveSanitizesTraversalNames(t *testing.T) {
	store, dir := newTestStore(t)
	defer os.RemoveAll(dir)
	stored, err := store.Save(pdfFile("../../../etc/passwd.pdf", 10))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if strings.Contains(stored.FileName, "/") || strings.Contains(stored.FileName, "..") {
		t.Errorf("stored name contains traversal sequences: %s", stored.FileName)
	}
	if filepath.Dir(stored.FilePath) != dir {
		t.Errorf("file written outside upload dir: %s", stored.FilePath)
	}
}

func TestDeleteIsBestEffort(t *testing.T) {
	store, dir := newTestStore(t)
	defer os.RemoveAll(dir)
	stored, err := store.Save(pdfFile("resume.pdf", 10))
	if err != nil {
		t.Fatal(err)
	}
	store.Delete(stored.FileName)
	if _, err := os.Stat(filepath.Join(dir, stored.FileName)); !os.IsNotExist(err) {
		t.Errorf("expected file to be removed")
	}
	// Deleting a missing or suspicious name must not panic or error out.
	store.Delete(stored.FileName)
	store.Delete("../outside.pdf")
}
