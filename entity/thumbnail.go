package entity

import (
	"context"
	"time"
)

// Format is the detected encoding of an image payload.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatWEBP    Format = "webp"
	FormatUnknown Format = "unknown"
)

// ContentType returns the MIME type used when storing a thumbnail.
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatGIF:
		return "image/gif"
	case FormatWEBP:
		return "image/webp"
	}
	return "application/octet-stream"
}

// ThumbnailSpec is the process-wide transform configuration. It is built
// once at startup and never mutated by in-flight requests.
type ThumbnailSpec struct {
	MaxWidth          int
	MaxHeight         int
	JPEGQuality       int
	SourcePrefix      string
	DestinationPrefix string
}

// Thumbnail is the encoded output of one transform invocation.
type Thumbnail struct {
	Bytes  []byte
	Width  int
	Height int
	Format Format
}

// ProcessingResult describes one successfully processed upload event.
type ProcessingResult struct {
	OutputKey        string
	OutputBytes      uint64
	Width            int
	Height           int
	ProcessingTime   time.Duration
	CompressionRatio float64
}

// ThumbnailUsecase drives the fetch-transform-write pipeline for one event.
type ThumbnailUsecase interface {
	ProcessEvent(ctx context.Context, event UploadEvent) (ProcessingResult, error)
}
