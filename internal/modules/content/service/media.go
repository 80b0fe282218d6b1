package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/pkg/apperror"
	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how much of an upload mimetype needs to see.
const sniffLen = 3072

type sniffedMedia struct {
	Kind string
	MIME *mimetype.MIME
	Body io.Reader
}

// sniffMedia detects the media type from the leading bytes instead of
// trusting the client supplied content type. Body replays the whole stream.
func sniffMedia(r io.Reader) (*sniffedMedia, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read media: %w", err)
	}
	if n == 0 {
		return nil, apperror.Validation("media file is empty")
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	var kind string
	switch {
	case strings.HasPrefix(mt.String(), "image/"):
		kind = entity.MediaImage
	case strings.HasPrefix(mt.String(), "video/"):
		kind = entity.MediaVideo
	default:
		return nil, apperror.Validation(fmt.Sprintf("unsupported media type %s", mt.String()))
	}

	return &sniffedMedia{
		Kind: kind,
		MIME: mt,
		Body: io.MultiReader(bytes.NewReader(head), r),
	}, nil
}

// storedFileName keeps the client's base name but forces the detected extension.
func storedFileName(original string, mt *mimetype.MIME) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." || base == "/" {
		base = "media"
	}
	return base + mt.Extension()
}
