// Package storage keeps uploaded catalogue, item and shop images on local disk or
// in an S3-compatible bucket and hands back the public URL stored on the record.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"ss-uniforms/internal/config"

	"github.com/google/uuid"
)

// MaxImageSize caps a single upload.
const MaxImageSize = 5 << 20

var ErrUnsupportedType = errors.New("storage: unsupported image type")

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// Disk stores objects by key.
type Disk interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL is the public address of key.
	URL(key string) string
}

// New returns the disk selected by UPLOAD_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Disk, error) {
	switch cfg.UploadDriver {
	case "s3":
		return NewS3Disk(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
	default:
		return &LocalDisk{Root: cfg.UploadDir, BaseURL: strings.TrimRight(cfg.BaseURL, "/") + "/uploads"}, nil
	}
}

// ImageKey derives a fresh object key for an uploaded file name under folder.
func ImageKey(folder, filename string) (key, contentType string, err error) {
	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := imageTypes[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	folder = strings.Trim(path.Clean("/"+folder), "/")
	if folder == "" {
		folder = "images"
	}
	return folder + "/" + uuid.NewString() + ext, contentType, nil
}
