package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"anoa.com/realorai/pkg/apperror"
	"github.com/gabriel-vasile/mimetype"
)

// inlineStorage keeps media inside the record as a data URI, for deployments
// without a writable disk or CDN.
type inlineStorage struct{}

func NewInlineStorage() MediaStorage {
	return inlineStorage{}
}

func (inlineStorage) Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read media: %v: %w", err, apperror.ErrStorage)
	}
	mime := mimetype.Detect(data).String()
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}

// Delete is a no-op: the data lives in the row that references it.
func (inlineStorage) Delete(ctx context.Context, fileURL string) error {
	return nil
}
