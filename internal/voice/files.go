package voice

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore owns the lifecycle of generated audio files: save, serve,
// delete after playback, and clean up leftovers.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(name string, data []byte) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Path resolves a stored file name, rejecting traversal outside the dir.
func (s *FileStore) Path(name string) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

func (s *FileStore) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// CleanOld removes audio files older than maxAge.
func (s *FileStore) CleanOld(maxAge time.Duration) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("voice: read audio dir: %v", err)
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
				log.Printf("voice: remove stale audio %s: %v", entry.Name(), err)
			}
		}
	}
}

// StartJanitor periodically cleans stale audio files until ctx is done.
func (s *FileStore) StartJanitor(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanOld(maxAge)
			}
		}
	}()
}

func (s *FileStore) resolve(name string) (string, error) {
	base := filepath.Base(name)
	if base != name || strings.HasPrefix(base, ".") {
		return "", fmt.Errorf("invalid audio file name %q", name)
	}
	return filepath.Join(s.dir, base), nil
}
