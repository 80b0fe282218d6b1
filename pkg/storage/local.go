package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"anoa.com/realorai/pkg/apperror"
	"github.com/google/uuid"
)

type localStorage struct {
	dir        string
	publicPath string
}

// NewLocalStorage writes media below dir; the returned URLs start with
// publicPath, which the HTTP server maps back onto dir.
func NewLocalStorage(dir, publicPath string) (MediaStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if publicPath == "" {
		publicPath = "/uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir %s: %v: %w", dir, err, apperror.ErrStorage)
	}
	return &localStorage{dir: dir, publicPath: strings.TrimSuffix(publicPath, "/")}, nil
}

func (s *localStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	folder = sanitizeSegment(folder)
	target := filepath.Join(s.dir, folder)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create folder %s: %v: %w", target, err, apperror.ErrStorage)
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], strings.ToLower(filepath.Ext(fileName)))
	fullPath := filepath.Join(target, name)

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %v: %w", fullPath, err, apperror.ErrStorage)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("write %s: %v: %w", fullPath, err, apperror.ErrStorage)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("close %s: %v: %w", fullPath, err, apperror.ErrStorage)
	}

	return path.Join(s.publicPath, folder, name), nil
}

func (s *localStorage) Delete(ctx context.Context, fileURL string) error {
	rel := strings.TrimPrefix(fileURL, s.publicPath+"/")
	if rel == fileURL || strings.Contains(rel, "..") {
		return fmt.Errorf("url %s is not managed by local storage: %w", fileURL, apperror.ErrStorage)
	}

	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %v: %w", rel, err, apperror.ErrStorage)
	}
	return nil
}

func sanitizeSegment(s string) string {
	s = strings.Trim(filepath.Base(filepath.Clean("/"+s)), "/.")
	if s == "" {
		return "misc"
	}
	return s
}
