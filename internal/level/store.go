package level

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store persists one document per level name.
type Store interface {
	Save(ctx context.Context, doc *Document) error
	Load(ctx context.Context, name string) (*Document, error)
	// List returns campaign level names in level order.
	List(ctx context.Context) ([]string, error)
	// ListAll returns every stored name sorted lexically.
	ListAll(ctx context.Context) ([]string, error)
	Close() error
}

const fileExt = ".json"

// FileStore keeps documents as <dir>/<name>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create levels directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

// Save writes the document through a temp file and rename, so readers
// never observe a partial file.
func (s *FileStore) Save(ctx context.Context, doc *Document) error {
	if err := ValidateName(doc.Name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("encode level %s: %w", doc.Name, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+doc.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("save level %s: %w", doc.Name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save level %s: %w", doc.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save level %s: %w", doc.Name, err)
	}
	if err := os.Rename(tmpName, s.path(doc.Name)); err != nil {
		return fmt.Errorf("save level %s: %w", doc.Name, err)
	}
	return nil
}

// Load reads a document by name.
func (s *FileStore) Load(ctx context.Context, name string) (*Document, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", name, err)
	}
	return Parse(data)
}

// ListAll returns every stored level name.
func (s *FileStore) ListAll(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, fileExt) || strings.HasPrefix(n, ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(n, fileExt))
	}
	sort.Strings(names)
	return names, nil
}

// List returns the campaign level names in level order.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Campaign(all), nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
