package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"image_thumbnailer/config"
	"image_thumbnailer/entity"
	"image_thumbnailer/internal/controller/rmq"
	"image_thumbnailer/internal/storage/s3repo"
	"image_thumbnailer/internal/telemetry/metric"
	"image_thumbnailer/internal/thumbnail"
	"image_thumbnailer/pkg/httpserver"
	"image_thumbnailer/pkg/logger"
	"image_thumbnailer/pkg/thumbnailer"

	ttrace "image_thumbnailer/internal/telemetry/trace"
)

var name = "image-thumbnail-worker"

// NewWorker ...
func NewWorker(cfg *config.Config) *Worker {
	worker := &Worker{}

	worker.InitGlobalProvider(name, cfg.OTEL)

	return worker
}

type Worker struct {
	traceProviderCloseFn []ttrace.CloseFunc
}

// Run wires the pipeline and blocks until a signal or a broker failure.
func (s *Worker) Run(ctx context.Context, cfg *config.Config) error {
	l := logger.New(cfg.Log.Level)

	s3Repo, err := s3repo.NewS3Repository(cfg.S3)
	if err != nil {
		l.Error(err)
		l.Fatal("Failed to init S3 Repository")
	}

	spec := entity.ThumbnailSpec{
		MaxWidth:          cfg.Thumbnail.MaxWidth,
		MaxHeight:         cfg.Thumbnail.MaxHeight,
		JPEGQuality:       cfg.Thumbnail.JPEGQuality,
		SourcePrefix:      cfg.Thumbnail.SourcePrefix,
		DestinationPrefix: cfg.Thumbnail.DestinationPrefix,
	}

	metrics := metric.NewEmitter(prometheus.DefaultRegisterer)

	tu := thumbnail.NewUsecase(s3Repo, thumbnailer.New(), spec, metrics, l)

	amqpWorker, err := rmq.NewAMQPWorker(cfg, l, tu, metrics)
	if err != nil {
		l.Fatal(err)
	}

	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- amqpWorker.StartConsumer()
	}()

	metricsServer := httpserver.New(metric.Handler(), httpserver.Port(cfg.OTEL.PrometheusPort))

	l.Info("thumbnail worker started, queue: %s, bounds: %dx%d", cfg.RMQ.Queue, spec.MaxWidth, spec.MaxHeight)

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-interrupt:
		l.Info("app - Run - signal: " + sig.String())
	case err := <-consumerErr:
		l.Error(fmt.Errorf("app - Run - amqpWorker.StartConsumer: %w", err))
	case err := <-metricsServer.Notify():
		l.Error(fmt.Errorf("app - Run - metricsServer.Notify: %w", err))
	}

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown
	if err := amqpWorker.CloseChan(); err != nil {
		l.Error(fmt.Errorf("app - Run - amqpWorker.CloseChan: %w", err))
	}

	if err := metricsServer.Shutdown(); err != nil {
		l.Error(fmt.Errorf("app - Run - metricsServer.Shutdown: %w", err))
	}

	for _, closeFn := range s.traceProviderCloseFn {
		if err := closeFn(ctxShutDown); err != nil {
			log.Error().Err(err).Msgf("Unable to close trace provider")
		}
	}

	log.Printf("worker exited properly")

	return err
}
