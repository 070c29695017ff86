package s3repo

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"

	"image_thumbnailer/config"
	"image_thumbnailer/entity"
)

const traceName = "S3-Repo"

// S3Repository talks to an S3-compatible object store. Transient failures
// are retried by the SDK's standard retryer with exponential backoff up to
// cfg.MaxAttempts; whatever still fails surfaces as a typed pipeline error.
type S3Repository struct {
	client     *s3.Client
	downloader *manager.Downloader
	uploader   *manager.Uploader
}

func NewS3Repository(cfg config.S3) (*S3Repository, error) {
	awsCfg, err := awsConfig(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					PartitionID:       "aws",
					SigningRegion:     cfg.Region,
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			})
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &S3Repository{
		client:     client,
		downloader: manager.NewDownloader(client),
		uploader:   manager.NewUploader(client),
	}, nil
}

// awsConfig prefers static credentials from the app config; without them it
// falls back to the SDK default chain (env, shared profile, instance role).
func awsConfig(cfg config.S3) (aws.Config, error) {
	if cfg.AccessKeyID == "" {
		return awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts),
			awsconfig.WithRetryMode(aws.RetryModeStandard),
		)
	}

	return aws.Config{
		Region:           cfg.Region,
		Credentials:      credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		RetryMaxAttempts: cfg.MaxAttempts,
		RetryMode:        aws.RetryModeStandard,
	}, nil
}

// DownloadObject fetches bucket/key into w and returns the byte count.
// A missing object maps to entity.ErrNotFound; other failures are
// transient and retryable.
func (s3Repo *S3Repository) DownloadObject(ctx context.Context, bucket string, key string, w io.Writer) (int64, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "DownloadObject")
	defer span.End()

	bw := manager.NewWriteAtBuffer(nil)

	numBytes, err := s3Repo.downloader.Download(ctx, bw, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, entity.ErrNotFound
		}
		return 0, &entity.TransientStoreError{Op: "download", Err: err}
	}

	if _, err := w.Write(bw.Bytes()); err != nil {
		return 0, err
	}

	return numBytes, nil
}

// UploadObject writes r to bucket/key with the given content type.
func (s3Repo *S3Repository) UploadObject(ctx context.Context, bucket string, key string, contentType string, r io.Reader) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "UploadObject")
	defer span.End()

	_, err := s3Repo.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return &entity.TransientStoreError{Op: "upload", Err: err}
	}

	return nil
}

func isNotFound(err error) bool {
	var responseError *awshttp.ResponseError
	return errors.As(err, &responseError) && responseError.HTTPStatusCode() == http.StatusNotFound
}
