package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"code.sztanpet.net/zvpsz/buzzer/internal/file"
)

// FileStore keeps the document as a json object in a single file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (Document, error) {
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("malformed settings file %v: %w", s.path, err)
	}
	return doc, nil
}

// Save replaces the file atomically, creating its directory when needed.
func (s *FileStore) Save(doc Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	if err := file.WriteAtomically(s.path, bytes.NewReader(b)); err != nil {
		logger.Errorf("saving settings to %v failed: %v", s.path, err)
		return err
	}
	return nil
}
