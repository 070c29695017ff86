package thumbnail

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"image_thumbnailer/entity"
	"image_thumbnailer/internal/telemetry/metric"
	"image_thumbnailer/pkg/logger"
	"image_thumbnailer/pkg/thumbnailer"
)

const traceName = "Thumbnail-Usecase"

// Usecase runs the fetch-transform-write pipeline for one upload event.
// It holds no per-event state; the spec is read-only for the process
// lifetime, so one instance serves all deliveries.
type Usecase struct {
	storageRepo entity.StorageRepository
	generator   thumbnailer.Generator
	spec        entity.ThumbnailSpec
	metrics     *metric.Emitter
	l           logger.Interface
}

func NewUsecase(storageRepo entity.StorageRepository, generator thumbnailer.Generator, spec entity.ThumbnailSpec, metrics *metric.Emitter, l logger.Interface) *Usecase {
	return &Usecase{
		storageRepo: storageRepo,
		generator:   generator,
		spec:        spec,
		metrics:     metrics,
		l:           l,
	}
}

// ProcessEvent downloads the source object, generates the thumbnail and
// writes it under the destination prefix. The output key is derived
// deterministically from the source key, so reprocessing the same event
// overwrites the same object instead of creating duplicates.
func (u *Usecase) ProcessEvent(ctx context.Context, event entity.UploadEvent) (entity.ProcessingResult, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "ProcessEvent")
	defer span.End()

	span.SetAttributes(attribute.String("bucket", event.Bucket))
	span.SetAttributes(attribute.String("key", event.Key))

	start := time.Now()

	sourceBuffer := new(bytes.Buffer)
	inputBytes, err := u.storageRepo.DownloadObject(ctx, event.Bucket, event.Key, sourceBuffer)
	if err != nil {
		return entity.ProcessingResult{}, errors.Wrap(err, "thumbnail - ProcessEvent - download")
	}
	if inputBytes < 1 {
		return entity.ProcessingResult{}, errors.Wrap(entity.ErrUnsupportedFormat, "source object is empty")
	}

	thumb, err := u.generator.Generate(sourceBuffer.Bytes(), u.spec)
	if err != nil {
		return entity.ProcessingResult{}, errors.Wrap(err, "thumbnail - ProcessEvent - generate")
	}

	outputKey := u.OutputKey(event.Key)

	err = u.storageRepo.UploadObject(ctx, event.Bucket, outputKey, thumb.Format.ContentType(), bytes.NewReader(thumb.Bytes))
	if err != nil {
		return entity.ProcessingResult{}, errors.Wrap(err, "thumbnail - ProcessEvent - upload")
	}

	result := entity.ProcessingResult{
		OutputKey:        outputKey,
		OutputBytes:      uint64(len(thumb.Bytes)),
		Width:            thumb.Width,
		Height:           thumb.Height,
		ProcessingTime:   time.Since(start),
		CompressionRatio: float64(len(thumb.Bytes)) / float64(inputBytes),
	}

	u.metrics.Generated(result, uint64(inputBytes))

	u.l.Info("thumbnail created: %s/%s -> %s (%dx%d, %d bytes)",
		event.Bucket, event.Key, result.OutputKey, result.Width, result.Height, result.OutputBytes)

	return result, nil
}

// OutputKey maps a source key to its thumbnail key: same basename, source
// prefix swapped for the destination prefix.
func (u *Usecase) OutputKey(sourceKey string) string {
	return u.spec.DestinationPrefix + strings.TrimPrefix(sourceKey, u.spec.SourcePrefix)
}
