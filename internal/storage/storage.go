// Package storage writes uploaded business logos and reports the path or URL
// the pages should use to display them.
package storage

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LogoStore saves an uploaded image under a generated unique name.
type LogoStore interface {
	Save(ctx context.Context, originalName, contentType string, body io.Reader) (string, error)
}

// uniqueName keeps the upload's extension, falling back to one derived from
// the content type.
func uniqueName(originalName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return uuid.NewString() + ext
}
