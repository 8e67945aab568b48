package images

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/docarchive/internal/filex"
)

// FileSystemRepository stores each payload as a file whose path mirrors the
// key ("docs/5/images/2" -> <root>/docs/5/images/2).
type FileSystemRepository struct {
	root string
}

func NewFileSystemRepository(dir string) (*FileSystemRepository, error) {
	root, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &FileSystemRepository{root: root}, nil
}

func (r *FileSystemRepository) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid image key %q", key)
	}
	return filepath.Join(r.root, clean), nil
}

func (r *FileSystemRepository) Get(_ context.Context, key string) ([]byte, error) {
	p, err := r.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image[%s]: %w", key, err)
	}
	return data, nil
}

func (r *FileSystemRepository) Set(_ context.Context, key string, data []byte) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(p, data); err != nil {
		return fmt.Errorf("failed to write image[%s]: %w", key, err)
	}
	return nil
}

func (r *FileSystemRepository) Delete(_ context.Context, key string) error {
	p, err := r.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image[%s]: %w", key, err)
	}
	return nil
}

// Clear removes everything under the root but keeps the root itself.
func (r *FileSystemRepository) Clear(_ context.Context) error {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", r.root, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(r.root, e.Name())); err != nil {
			return fmt.Errorf("failed to clear images: %w", err)
		}
	}
	return nil
}

// TotalSize sums the sizes of the regular files under the root.
func (r *FileSystemRepository) TotalSize(_ context.Context) (int64, error) {
	var total int64
	err := filepath.WalkDir(r.root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to size images: %w", err)
	}
	return total, nil
}
