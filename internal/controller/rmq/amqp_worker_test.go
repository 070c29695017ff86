package rmq

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"

	"image_thumbnailer/entity"
	"image_thumbnailer/internal/notification"
	"image_thumbnailer/internal/telemetry/metric"
	"image_thumbnailer/pkg/logger"
)

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

type fakeUsecase struct {
	calls []entity.UploadEvent
	err   error
}

func (f *fakeUsecase) ProcessEvent(_ context.Context, event entity.UploadEvent) (entity.ProcessingResult, error) {
	f.calls = append(f.calls, event)
	if f.err != nil {
		return entity.ProcessingResult{}, f.err
	}
	return entity.ProcessingResult{OutputKey: "thumbnails/" + event.Key}, nil
}

func newTestWorker(tu entity.ThumbnailUsecase) *AMQPWorker {
	return &AMQPWorker{
		l:       logger.New("error"),
		decoder: notification.NewDecoder("images/", "thumbnails/"),
		metrics: metric.NewEmitter(prometheus.NewRegistry()),
		tu:      tu,
	}
}

func delivery(body string, ack *fakeAcknowledger) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		DeliveryTag:  1,
		Body:         []byte(body),
	}
}

const twoRecordBody = `{
	"Records": [
		{"s3": {"bucket": {"name": "media"}, "object": {"key": "images/a.jpg", "size": 1}}},
		{"s3": {"bucket": {"name": "media"}, "object": {"key": "images/b.jpg", "size": 2}}}
	]
}`

func TestHandleDelivery_SuccessAcks(t *testing.T) {
	tu := &fakeUsecase{}
	worker := newTestWorker(tu)
	ack := &fakeAcknowledger{}

	worker.handleDelivery(context.Background(), delivery(twoRecordBody, ack))

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Len(t, tu.calls, 2)
}

func TestHandleDelivery_MalformedBodyAcksWithoutProcessing(t *testing.T) {
	tu := &fakeUsecase{}
	worker := newTestWorker(tu)
	ack := &fakeAcknowledger{}

	worker.handleDelivery(context.Background(), delivery(`not json`, ack))

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Empty(t, tu.calls)
}

func TestHandleDelivery_FatalErrorAcks(t *testing.T) {
	tu := &fakeUsecase{err: entity.ErrNotFound}
	worker := newTestWorker(tu)
	ack := &fakeAcknowledger{}

	worker.handleDelivery(context.Background(), delivery(twoRecordBody, ack))

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Len(t, tu.calls, 2)
}

func TestHandleDelivery_RetryableErrorNacksWithRequeue(t *testing.T) {
	tu := &fakeUsecase{err: &entity.TransientStoreError{Op: "upload", Err: assert.AnError}}
	worker := newTestWorker(tu)
	ack := &fakeAcknowledger{}

	worker.handleDelivery(context.Background(), delivery(twoRecordBody, ack))

	assert.False(t, ack.acked)
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
}

func TestHandleDelivery_FilteredEventsAck(t *testing.T) {
	tu := &fakeUsecase{}
	worker := newTestWorker(tu)
	ack := &fakeAcknowledger{}

	body := `{"Records": [{"s3": {"bucket": {"name": "media"}, "object": {"key": "thumbnails/a.jpg", "size": 1}}}]}`
	worker.handleDelivery(context.Background(), delivery(body, ack))

	assert.True(t, ack.acked)
	assert.Empty(t, tu.calls)
}
