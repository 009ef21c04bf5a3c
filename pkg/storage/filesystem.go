package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Object describes a stored file.
type Object struct {
	Path string
	URL  string
	Size int64
}

// LocalStorage keeps uploaded documents on disk under a base directory and
// exposes them through a public base URL when one is configured.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: abs, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Put copies r into relPath and reports the stored object. Partial files are removed on failure.
func (s *LocalStorage) Put(relPath string, r io.Reader) (Object, error) {
	path, rel, err := s.resolvePath(relPath)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Object{}, fmt.Errorf("prepare storage directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return Object{}, fmt.Errorf("create object: %w", err)
	}
	written, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return Object{}, fmt.Errorf("write object: %w", copyErr)
		}
		return Object{}, fmt.Errorf("close object: %w", closeErr)
	}
	return Object{Path: rel, URL: s.URL(rel), Size: written}, nil
}

// Open returns a read-only handle for the stored file.
func (s *LocalStorage) Open(relPath string) (*os.File, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(relPath string) error {
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Root is the absolute base directory.
func (s *LocalStorage) Root() string {
	return s.baseDir
}

// URL returns the public address of relPath, or an empty string when no public base is configured.
func (s *LocalStorage) URL(relPath string) string {
	if s.publicBaseURL == "" {
		return ""
	}
	return s.publicBaseURL + "/" + strings.TrimLeft(filepath.ToSlash(relPath), "/")
}

func (s *LocalStorage) resolve(relPath string) (string, error) {
	full, _, err := s.resolvePath(relPath)
	return full, err
}

// resolvePath anchors relPath at the storage root so ".." segments cannot escape it.
func (s *LocalStorage) resolvePath(relPath string) (string, string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(relPath))
	if clean == string(os.PathSeparator) {
		return "", "", fmt.Errorf("empty object path")
	}
	full := filepath.Join(s.baseDir, clean)
	if !strings.HasPrefix(full, s.baseDir+string(os.PathSeparator)) {
		return "", "", fmt.Errorf("object path escapes storage root")
	}
	return full, filepath.ToSlash(strings.TrimPrefix(clean, string(os.PathSeparator))), nil
}
