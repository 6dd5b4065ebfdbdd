// Package storage implements the flat shared upload directory. Files are
// identified by sanitized name only; a second save under the same name
// overwrites the first (last writer wins).
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ndanilin/filebox/internal/models"
)

// Storage errors
var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid file name")
)

// FileStore reads and writes files under a single upload directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the upload directory if needed and returns a store
// over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// List returns the stored files sorted by name. Subdirectories are ignored.
func (fs *FileStore) List() ([]models.StoredFile, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	files := make([]models.StoredFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, models.StoredFile{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Save writes the content under name, replacing any existing file.
// name must already be a safe single path segment.
func (fs *FileStore) Save(name string, content io.Reader) (int64, error) {
	path, err := fs.path(name)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Do not leave a truncated file behind.
		_ = os.Remove(path)
		return 0, fmt.Errorf("write file: %w", err)
	}
	return n, nil
}

// Open returns a reader over the named file along with its size.
// The caller closes the reader.
func (fs *FileStore) Open(name string) (io.ReadCloser, int64, error) {
	path, err := fs.path(name)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat file: %w", err)
	}
	return f, info.Size(), nil
}

// Delete removes the named file. A missing file is reported as ErrNotFound.
func (fs *FileStore) Delete(name string) error {
	path, err := fs.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// path joins name under the upload dir, rejecting anything that is not a
// plain base name. Sanitization happens upstream; this is the last line of
// defense against traversal.
func (fs *FileStore) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", ErrInvalidName
	}
	return filepath.Join(fs.dir, name), nil
}
