package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"image_thumbnailer/config"
	v1 "image_thumbnailer/internal/controller/http/v1"
	"image_thumbnailer/internal/controller/rmq"
	"image_thumbnailer/internal/storage/s3repo"
	"image_thumbnailer/pkg/httpserver"
	"image_thumbnailer/pkg/logger"

	ttrace "image_thumbnailer/internal/telemetry/trace"
)

var name = "image-thumbnail-server"

// NewServer ...
func NewServer(cfg *config.Config) *Server {
	srv := &Server{}

	srv.InitGlobalProvider(name, cfg.OTEL)

	return srv
}

type Server struct {
	traceProviderCloseFn []ttrace.CloseFunc
}

// Run serves the ingest API until a signal or server failure.
func (s *Server) Run(ctx context.Context, cfg *config.Config) error {
	l := logger.New(cfg.Log.Level)
	l.Info("Starting ingest server...")

	s3Repo, err := s3repo.NewS3Repository(cfg.S3)
	if err != nil {
		l.Error(err)
		l.Fatal("Failed to init S3 Repository")
	}

	amqpClient, err := rmq.NewAMQPClient(cfg, l)
	if err != nil {
		l.Fatal(err)
	}

	handler := gin.New()
	v1.NewRouter(handler, l, amqpClient, s3Repo, v1.RouterConfig{
		Bucket:       cfg.S3.Bucket,
		SourcePrefix: cfg.Thumbnail.SourcePrefix,
	})

	httpServer := httpserver.New(s.cors().Handler(handler), httpserver.Port(cfg.Server.Port))

	l.Info("server serving on port %s", cfg.Server.Port)

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-interrupt:
		l.Info("app - Run - signal: " + sig.String())
	case err := <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown
	if err := httpServer.Shutdown(); err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	if err := amqpClient.CloseChan(); err != nil {
		l.Error(fmt.Errorf("app - Run - amqpClient.CloseChan: %w", err))
	}

	for _, closeFn := range s.traceProviderCloseFn {
		if err := closeFn(ctxShutDown); err != nil {
			log.Error().Err(err).Msgf("Unable to close trace provider")
		}
	}

	log.Printf("server exited properly")

	return err
}

func (s *Server) cors() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"POST", "GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		MaxAge:           60, // 1 minutes
		AllowCredentials: true,
	})
}
