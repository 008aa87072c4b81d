package media

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Domenick1991/airport/internal/domain"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Store keeps uploaded images under Root and serves them from URLPrefix.
type Store struct {
	Root      string
	URLPrefix string
	MaxBytes  int64
}

func NewStore(root, urlPrefix string, maxBytes int64) *Store {
	return &Store{Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/"), MaxBytes: maxBytes}
}

// Save writes r as <dir>/<slug(name)>-<uuid>.<ext> and returns its public URL.
// Content that is not a recognised image is rejected with domain.ErrInvalidImage.
func (s *Store) Save(dir, name string, r io.Reader) (string, error) {
	limited := io.LimitReader(r, s.MaxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.MaxBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidImage, s.MaxBytes)
	}

	ext, ok := extensions[http.DetectContentType(data)]
	if !ok {
		return "", domain.ErrInvalidImage
	}

	base := slug.Make(name)
	if base == "" {
		base = "image"
	}
	file := fmt.Sprintf("%s-%s%s", base, uuid.NewString(), ext)

	target := filepath.Join(s.Root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(target, file), data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return path.Join(s.URLPrefix, dir, file), nil
}
