package main

import (
	"context"
	"log"

	"image_thumbnailer/config"
	"image_thumbnailer/internal/server"
)

func main() {
	// Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	// Run
	ctx := context.Background()
	s := server.NewServer(cfg)
	s.Run(ctx, cfg)
}
