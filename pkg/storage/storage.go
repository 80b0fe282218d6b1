package storage

import (
	"context"
	"fmt"
	"io"
)

const (
	ModeLocal      = "local"
	ModeCloudinary = "cloudinary"
	ModeInline     = "inline"
)

// MediaStorage defines the contract for wherever uploaded media ends up.
type MediaStorage interface {
	// Upload stores the media read from r and returns the URL clients use to fetch it.
	// folder is an optional logical folder in storage (e.g. "content", "avatars").
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// Delete removes media previously returned by Upload.
	Delete(ctx context.Context, fileURL string) error
}

// Options selects and configures a MediaStorage implementation.
type Options struct {
	Mode       string
	LocalDir   string
	PublicPath string

	CloudinaryURL    string
	CloudinaryCloud  string
	CloudinaryFolder string
}

func New(opts Options) (MediaStorage, error) {
	switch opts.Mode {
	case "", ModeLocal:
		return NewLocalStorage(opts.LocalDir, opts.PublicPath)
	case ModeCloudinary:
		return NewCloudinaryStorage(opts.CloudinaryURL, opts.CloudinaryCloud, opts.CloudinaryFolder)
	case ModeInline:
		return NewInlineStorage(), nil
	default:
		return nil, fmt.Errorf("unknown media storage mode %q", opts.Mode)
	}
}
