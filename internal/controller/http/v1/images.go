package v1

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"image_thumbnailer/entity"
	"image_thumbnailer/pkg/logger"
)

const traceName = "HTTP-V1"

// UploadPublisher emits an upload notification for an object the API wrote.
type UploadPublisher interface {
	PublishUploadEvent(ctx context.Context, event entity.UploadEvent) error
}

type imageRoutes struct {
	publisher UploadPublisher
	storage   entity.StorageRepository
	cfg       RouterConfig
	l         logger.Interface
}

func newImageRoutes(handler *gin.RouterGroup, l logger.Interface, publisher UploadPublisher, storage entity.StorageRepository, cfg RouterConfig) {
	r := &imageRoutes{publisher: publisher, storage: storage, cfg: cfg, l: l}

	h := handler.Group("/images")
	{
		h.POST("", r.upload)
	}
}

// upload stores the posted image under the source prefix and publishes the
// same notification the store would emit natively, which hands the object
// to the thumbnail worker.
func (r *imageRoutes) upload(c *gin.Context) {
	ctx, span := otel.Tracer(traceName).Start(c.Request.Context(), "upload-api")
	defer span.End()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "missing file field")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		r.l.Error(err, "http - v1 - upload")
		errorResponse(c, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer file.Close()

	key := r.cfg.SourcePrefix + uuid.New().String() + filepath.Ext(fileHeader.Filename)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := r.storage.UploadObject(ctx, r.cfg.Bucket, key, contentType, file); err != nil {
		r.l.Error(err, "http - v1 - upload")
		errorResponse(c, http.StatusBadGateway, "failed to store image")
		return
	}

	event := entity.UploadEvent{
		Bucket:    r.cfg.Bucket,
		Key:       key,
		SizeBytes: uint64(fileHeader.Size),
		EventTime: time.Now().UTC(),
	}

	if err := r.publisher.PublishUploadEvent(ctx, event); err != nil {
		r.l.Error(err, "http - v1 - upload")
		errorResponse(c, http.StatusBadGateway, "failed to publish notification")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"bucket": event.Bucket, "key": event.Key})
}
