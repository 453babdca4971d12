package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pichat-dev/pichat-go-server/internal/logger"
	"github.com/pichat-dev/pichat-go-server/internal/model"
)

// FileStore keeps the registry snapshot as one JSON file holding the
// serialized array of identity records. This is the default backend.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Load() ([]model.IdentityRecord, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		logger.InfoF("Database file %s does not exist yet, starting empty", fs.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read database file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []model.IdentityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("database file does not contain valid JSON: %w", err)
	}
	return records, nil
}

// SaveSnapshot writes through a temp file and renames it over the target, so
// a crash mid-write never leaves a truncated database behind.
func (fs *FileStore) SaveSnapshot(records []model.IdentityRecord) error {
	if records == nil {
		records = []model.IdentityRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to serialize records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".pichat-db-*")
	if err != nil {
		return fmt.Errorf("failed to create temp database file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write database file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp database file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace database file: %w", err)
	}
	return nil
}
