package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/farellandr/eventpass/internal/models"
)

// FileEventInfoStore keeps the title and subtitle in two flat text files.
type FileEventInfoStore struct {
	mu           sync.RWMutex
	titleFile    string
	subtitleFile string
}

var _ EventInfoStore = (*FileEventInfoStore)(nil)

func NewFileEventInfoStore(titleFile, subtitleFile string) *FileEventInfoStore {
	return &FileEventInfoStore{titleFile: titleFile, subtitleFile: subtitleFile}
}

func (s *FileEventInfoStore) Get(_ context.Context) (models.EventInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	title, err := readTrimmed(s.titleFile)
	if err != nil {
		return models.EventInfo{}, storageError("read event title", err)
	}
	subtitle, err := readTrimmed(s.subtitleFile)
	if err != nil {
		return models.EventInfo{}, storageError("read event subtitle", err)
	}
	return models.EventInfo{ID: models.EventInfoID, Title: title, Subtitle: subtitle}.WithDefaults(), nil
}

func (s *FileEventInfoStore) SetTitle(_ context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFile(s.titleFile, title); err != nil {
		return storageError("write event title", err)
	}
	return nil
}

func (s *FileEventInfoStore) SetSubtitle(_ context.Context, subtitle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFile(s.subtitleFile, subtitle); err != nil {
		return storageError("write event subtitle", err)
	}
	return nil
}

// readTrimmed returns "" for a missing file so the caller can apply defaults.
func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
