// Package uploads stores user-submitted images on local disk and
// serves them back under /uploads/.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/evencat/server/internal/domain/ids"
)

const URLPrefix = "/uploads/"

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the uploaded file under a ULID-prefixed name and returns
// the public URL path it will be served from.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	id, err := ids.NewULID()
	if err != nil {
		return "", fmt.Errorf("uploads: mint name: %w", err)
	}

	name := id + "-" + sanitizeFilename(header.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("uploads: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("uploads: write file: %w", err)
	}
	return URLPrefix + name, nil
}

// Handler serves stored files. Mount under URLPrefix.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(s.dir)))
}

// sanitizeFilename strips path components and characters that do not
// belong in a stored name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
