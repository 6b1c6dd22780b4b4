package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes logos into Dir; the returned path is URLPrefix/<name>,
// which the router serves from the same directory.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, URLPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

func (s *LocalStore) Save(_ context.Context, originalName, contentType string, body io.Reader) (string, error) {
	name := uniqueName(originalName, contentType)

	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create logo file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write logo file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path.Join(s.URLPrefix, name), nil
}
