package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	// Config -.
	Config struct {
		App       `yaml:"app"`
		Server    `yaml:"server"`
		Log       `yaml:"logger"`
		RMQ       `yaml:"rabbitmq"`
		S3        `yaml:"s3"`
		Thumbnail `yaml:"thumbnail"`
		OTEL      `yaml:"otel"`
	}

	// App -.
	App struct {
		Name    string `env-required:"true" yaml:"name"    env:"APP_NAME"`
		Version string `env-required:"true" yaml:"version" env:"APP_VERSION"`
	}

	// Server -.
	Server struct {
		Port string `env-required:"true" yaml:"port" env:"HTTP_PORT"`
	}

	// Log -.
	Log struct {
		Level string `env-required:"true" yaml:"log_level" env:"LOG_LEVEL"`
	}

	// RMQ -.
	RMQ struct {
		URL              string `env-required:"true" yaml:"url"                env:"RMQ_URL"`
		Exchange         string `yaml:"exchange"           env:"RMQ_EXCHANGE"          env-default:"storage_events"`
		Queue            string `yaml:"queue"              env:"RMQ_QUEUE"             env-default:"upload_notifications"`
		RoutingKey       string `yaml:"routing_key"        env:"RMQ_ROUTING_KEY"       env-default:"object_created"`
		DeadLetterQueue  string `yaml:"dead_letter_queue"  env:"RMQ_DEAD_LETTER_QUEUE" env-default:"upload_notifications_dead"`
		MaxDeliveryCount int    `yaml:"max_delivery_count" env:"RMQ_MAX_DELIVERY"      env-default:"3"`
	}

	// S3 -.
	S3 struct {
		Endpoint        string `yaml:"endpoint"          env:"S3_ENDPOINT"`
		Region          string `yaml:"region"            env:"S3_REGION"     env-default:"us-east-1"`
		AccessKeyID     string `yaml:"access_key_id"     env:"S3_ACCESS_KEY"`
		SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_KEY"`
		Bucket          string `env-required:"true" yaml:"bucket" env:"S3_BUCKET"`
		MaxAttempts     int    `yaml:"max_attempts"      env:"S3_MAX_ATTEMPTS" env-default:"5"`
	}

	// Thumbnail -.
	Thumbnail struct {
		MaxWidth          int    `yaml:"max_width"          env:"THUMB_MAX_WIDTH"    env-default:"200"`
		MaxHeight         int    `yaml:"max_height"         env:"THUMB_MAX_HEIGHT"   env-default:"200"`
		JPEGQuality       int    `yaml:"jpeg_quality"       env:"THUMB_JPEG_QUALITY" env-default:"85"`
		SourcePrefix      string `yaml:"source_prefix"      env:"THUMB_SOURCE_PREFIX"      env-default:"images/"`
		DestinationPrefix string `yaml:"destination_prefix" env:"THUMB_DESTINATION_PREFIX" env-default:"thumbnails/"`
	}

	OTEL struct {
		JaegerEndpoint string `env-required:"true" yaml:"jaeger_endpoint" env:"JAEGER_ENDPOINT"`
		OTLPEndpoint   string `yaml:"otlp_endpoint"   env:"OTLP_ENDPOINT"`
		PrometheusPort string `env-required:"true" yaml:"prometheus_port" env:"PROMETHEUS_PORT"`
	}
)

// NewConfig returns app config.
func NewConfig() (*Config, error) {
	cfg := &Config{}

	err := cleanenv.ReadConfig("./config/config.yml", cfg)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Thumbnail.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func (t Thumbnail) validate() error {
	if t.MaxWidth < 1 || t.MaxHeight < 1 {
		return fmt.Errorf("thumbnail bounds must be positive, got %dx%d", t.MaxWidth, t.MaxHeight)
	}
	if t.JPEGQuality < 1 || t.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be in 1..100, got %d", t.JPEGQuality)
	}
	return nil
}
