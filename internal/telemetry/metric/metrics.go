package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"image_thumbnailer/entity"
)

// namespace keeps pipeline metrics apart from generic runtime metrics.
const namespace = "thumbnail_pipeline"

// Emitter publishes per-message pipeline metrics. Emission is best-effort:
// nothing here returns an error to the caller.
type Emitter struct {
	thumbnailsGenerated prometheus.Counter
	thumbnailErrors     prometheus.Counter
	fatalErrors         prometheus.Counter
	processingTimeMs    prometheus.Histogram
	compressionRatio    prometheus.Histogram
	originalFileSizeMB  prometheus.Histogram
}

// NewEmitter registers the pipeline metrics on reg. The worker passes
// prometheus.DefaultRegisterer so Handler picks them up.
func NewEmitter(reg prometheus.Registerer) *Emitter {
	factory := promauto.With(reg)

	return &Emitter{
		thumbnailsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnails_generated_total",
			Help:      "Thumbnails written to the destination prefix.",
		}),
		thumbnailErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_errors_total",
			Help:      "Retryable processing failures, left for broker redelivery.",
		}),
		fatalErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fatal_errors_total",
			Help:      "Non-retryable processing failures, acknowledged and dropped.",
		}),
		processingTimeMs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_time_ms",
			Help:      "Wall clock from fetch start to write end, in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3200},
		}),
		compressionRatio: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compression_ratio",
			Help:      "Thumbnail bytes divided by source bytes.",
			Buckets:   prometheus.LinearBuckets(0.05, 0.05, 20),
		}),
		originalFileSizeMB: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "original_file_size_mb",
			Help:      "Size of the fetched source object, in megabytes.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}

// Generated records one successful thumbnail.
func (e *Emitter) Generated(result entity.ProcessingResult, inputBytes uint64) {
	e.thumbnailsGenerated.Inc()
	e.processingTimeMs.Observe(float64(result.ProcessingTime.Milliseconds()))
	e.compressionRatio.Observe(result.CompressionRatio)
	e.originalFileSizeMB.Observe(float64(inputBytes) / (1024 * 1024))
}

// RetryableError records a failure that will be redelivered.
func (e *Emitter) RetryableError() {
	e.thumbnailErrors.Inc()
}

// FatalError records a failure that was acknowledged and dropped.
func (e *Emitter) FatalError() {
	e.fatalErrors.Inc()
}

// Handler exposes the process metrics for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
