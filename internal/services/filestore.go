package services

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/docvault/docvault-backend/internal/logger"
)

// FileStore persists generated artifact bodies. The database row is the
// source of truth; the file on disk is a convenience copy, written before
// the row so a failed write aborts the artifact entirely.
type FileStore interface {
	Save(tagID uuid.UUID, filename string, content []byte) (string, error)
}

type localFileStore struct {
	rootDir string
	log     *logger.Logger
}

func NewLocalFileStore(rootDir string, baseLog *logger.Logger) FileStore {
	return &localFileStore{
		rootDir: rootDir,
		log:     baseLog.With("service", "FileStore"),
	}
}

func (fs *localFileStore) Save(tagID uuid.UUID, filename string, content []byte) (string, error) {
	dir := filepath.Join(fs.rootDir, tagID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", err
	}

	fs.log.Debug("artifact written", "path", path, "bytes", len(content))
	return path, nil
}
