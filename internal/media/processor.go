package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/webp"
)

const DefaultMaxDimension = 4096

var (
	ErrEmptyImage       = errors.New("media: empty image data")
	ErrImageTooLarge    = errors.New("media: image exceeds size limit")
	ErrUnsupportedImage = errors.New("media: unsupported image format")
	ErrImageDimensions  = errors.New("media: image dimensions out of range")
)

var contentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

var extensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

func (r *Result) Reader() io.Reader {
	return bytes.NewReader(r.Bytes)
}

type Processor interface {
	Process(ctx context.Context, upload Upload) (*Result, error)
}

// Inspector validates uploads by decoding the image header. The content type
// comes from the decoded format, never from the client.
type Inspector struct {
	maxBytes     int64
	maxDimension int
}

func NewInspector(maxBytes int64, maxDimension int) *Inspector {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Inspector{maxBytes: maxBytes, maxDimension: maxDimension}
}

func (i *Inspector) Process(ctx context.Context, upload Upload) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if upload.Reader == nil {
		return nil, ErrEmptyImage
	}
	if i.maxBytes > 0 && upload.Size > i.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, upload.Size)
	}

	reader := upload.Reader
	if i.maxBytes > 0 {
		reader = io.LimitReader(reader, i.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if i.maxBytes > 0 && int64(len(data)) > i.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, i.maxBytes)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	contentType, ok := contentTypes[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > i.maxDimension || cfg.Height > i.maxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageDimensions, cfg.Width, cfg.Height)
	}

	return &Result{
		Bytes:       data,
		ContentType: contentType,
		Extension:   extensions[format],
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
