package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"image_thumbnailer/entity"
	"image_thumbnailer/pkg/logger"
)

// NewRouter -.
func NewRouter(handler *gin.Engine, l logger.Interface, publisher UploadPublisher, storage entity.StorageRepository, cfg RouterConfig) {
	handler.Use(gin.Recovery())

	handler.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	h := handler.Group("/v1")
	{
		newImageRoutes(h, l, publisher, storage, cfg)
	}
}

// RouterConfig carries the store coordinates the ingest routes write to.
type RouterConfig struct {
	Bucket       string
	SourcePrefix string
}
