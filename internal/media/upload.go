// Package media handles uploaded files: date-partitioned storage paths,
// audio duration probing and cover image resizing.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage writes uploaded bytes under a base media directory, grouping
// files into per-day subdirectories.
type Storage struct {
	baseDir string
	now     func() time.Time
}

// NewStorage builds a Storage rooted at baseDir.
func NewStorage(baseDir string) *Storage {
	return &Storage{baseDir: baseDir, now: time.Now}
}

// AlbumImageDir returns today's album cover directory, creating it if needed.
func (s *Storage) AlbumImageDir() (string, error) {
	return s.ensureDir(filepath.Join("img", "albums", s.datePartition()))
}

// PlaylistImageDir returns today's playlist cover directory, creating it if needed.
func (s *Storage) PlaylistImageDir() (string, error) {
	return s.ensureDir(filepath.Join("img", "playlists", s.datePartition()))
}

// AvatarImageDir returns today's avatar directory, creating it if needed.
func (s *Storage) AvatarImageDir() (string, error) {
	return s.ensureDir(filepath.Join("img", "avatars", s.datePartition()))
}

// TrackAudioDir returns today's track audio directory, creating it if needed.
func (s *Storage) TrackAudioDir() (string, error) {
	return s.ensureDir(filepath.Join("audio", "tracks", s.datePartition()))
}

// Save writes data into dir under filename. When the target name is
// already taken a random suffix is appended instead of overwriting.
// Returns the path of the written file.
func (s *Storage) Save(dir, filename string, data []byte) (string, error) {
	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); err == nil {
		ext := filepath.Ext(filename)
		stem := strings.TrimSuffix(filename, ext)
		path = filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, uuid.NewString()[:8], ext))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

func (s *Storage) ensureDir(rel string) (string, error) {
	dir := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	return dir, nil
}

func (s *Storage) datePartition() string {
	return s.now().UTC().Format("02012006")
}
