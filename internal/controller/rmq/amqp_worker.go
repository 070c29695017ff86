package rmq

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"

	"image_thumbnailer/config"
	"image_thumbnailer/entity"
	"image_thumbnailer/internal/notification"
	"image_thumbnailer/internal/telemetry/metric"
	"image_thumbnailer/pkg/logger"
	"image_thumbnailer/pkg/rabbitmq"
)

const traceName = "RMQ-Worker"

// Every invocation is bounded; a message cut off by the deadline stays
// unacknowledged and is redelivered.
const processTimeout = 2 * time.Minute

// AMQPWorker consumes upload notifications and routes failures. Retry
// counting and dead-lettering belong to the broker: the queue is declared
// with a delivery limit and a dead-letter exchange, so the worker only
// classifies each outcome as ack or nack.
type AMQPWorker struct {
	amqpChan *amqp.Channel
	cfg      *config.Config
	l        logger.Interface
	decoder  *notification.Decoder
	metrics  *metric.Emitter
	tu       entity.ThumbnailUsecase
}

// NewAMQPWorker upload notifications rabbitmq Consumer constructor
func NewAMQPWorker(cfg *config.Config, l logger.Interface, tu entity.ThumbnailUsecase, metrics *metric.Emitter) (*AMQPWorker, error) {
	mqConn, err := rabbitmq.NewRabbitMQConn(cfg)
	if err != nil {
		return nil, err
	}
	amqpChan, err := mqConn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "amqpw.amqpConn.Channel")
	}

	decoder := notification.NewDecoder(cfg.Thumbnail.SourcePrefix, cfg.Thumbnail.DestinationPrefix)

	return &AMQPWorker{
		amqpChan: amqpChan,
		cfg:      cfg,
		l:        l,
		decoder:  decoder,
		metrics:  metrics,
		tu:       tu,
	}, nil
}

// SetupExchangeAndQueue declares the exchange, the notification queue and
// its dead-letter queue. The notification queue is a quorum queue with a
// delivery limit: a message rejected more than cfg.RMQ.MaxDeliveryCount
// times is moved to the dead-letter queue by the broker itself.
func (amqpw *AMQPWorker) SetupExchangeAndQueue() error {
	amqpw.l.Info("Declaring exchange: %s", amqpw.cfg.RMQ.Exchange)
	err := amqpw.amqpChan.ExchangeDeclare(
		amqpw.cfg.RMQ.Exchange,
		exchangeKind,
		exchangeDurable,
		exchangeAutoDelete,
		exchangeInternal,
		exchangeNoWait,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "Error ch.ExchangeDeclare")
	}

	_, err = amqpw.amqpChan.QueueDeclare(
		amqpw.cfg.RMQ.DeadLetterQueue,
		queueDurable,
		queueAutoDelete,
		queueExclusive,
		queueNoWait,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "Error ch.QueueDeclare dead-letter")
	}

	queue, err := amqpw.amqpChan.QueueDeclare(
		amqpw.cfg.RMQ.Queue,
		queueDurable,
		queueAutoDelete,
		queueExclusive,
		queueNoWait,
		amqp.Table{
			"x-queue-type":              "quorum",
			"x-delivery-limit":          int32(amqpw.cfg.RMQ.MaxDeliveryCount),
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": amqpw.cfg.RMQ.DeadLetterQueue,
		},
	)
	if err != nil {
		return errors.Wrap(err, "Error ch.QueueDeclare")
	}

	amqpw.l.Info("Declared queue, binding it to exchange: Queue: %v, messageCount: %v, "+
		"consumerCount: %v, exchange: %v, bindingKey: %v",
		queue.Name,
		queue.Messages,
		queue.Consumers,
		amqpw.cfg.RMQ.Exchange,
		amqpw.cfg.RMQ.RoutingKey,
	)

	err = amqpw.amqpChan.QueueBind(
		queue.Name,
		amqpw.cfg.RMQ.RoutingKey,
		amqpw.cfg.RMQ.Exchange,
		queueNoWait,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "Error ch.QueueBind")
	}

	return nil
}

// CloseChan Close messages chan
func (amqpw *AMQPWorker) CloseChan() error {
	if err := amqpw.amqpChan.Close(); err != nil {
		amqpw.l.Error("AMQPWorker CloseChan: %v", err)
		return err
	}
	return nil
}

// StartConsumer Start new rabbitmq consumer
func (c *AMQPWorker) StartConsumer() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.SetupExchangeAndQueue(); err != nil {
		return errors.Wrap(err, "SetupExchangeAndQueue")
	}

	if err := c.amqpChan.Qos(prefetchCount, prefetchSize, prefetchGlobal); err != nil {
		return errors.Wrap(err, "Qos")
	}

	deliveries, err := c.amqpChan.Consume(
		c.cfg.RMQ.Queue,
		"",
		consumeAutoAck,
		consumeExclusive,
		consumeNoLocal,
		consumeNoWait,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "Consume")
	}

	go c.ConsumeNotifications(ctx, deliveries)

	chanErr := <-c.amqpChan.NotifyClose(make(chan *amqp.Error))
	c.l.Error("ch.NotifyClose: %v", chanErr)
	return chanErr
}

func (c *AMQPWorker) ConsumeNotifications(ctx context.Context, messages <-chan amqp.Delivery) {
	for delivery := range messages {
		c.handleDelivery(ctx, delivery)
	}
}

// handleDelivery processes one queue message end to end. Fatal outcomes
// acknowledge the message so the broker stops redelivering it; a retryable
// outcome on any embedded event rejects the whole message and leaves the
// redelivery bookkeeping to the broker.
func (c *AMQPWorker) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	ctx, span := otel.Tracer(traceName).Start(ctx, "handleDelivery")
	defer span.End()

	events, err := c.decoder.Decode(delivery.Body)
	if err != nil {
		c.metrics.FatalError()
		c.l.Error(errors.Wrap(err, "rmq - handleDelivery - decode"))
		if err := delivery.Ack(false); err != nil {
			c.l.Error("delivery.Ack: %v", err)
		}
		return
	}

	retry := false

	for _, event := range events {
		if _, err := c.tu.ProcessEvent(ctx, event); err != nil {
			if entity.Retryable(err) {
				retry = true
				c.metrics.RetryableError()
				c.l.Error(errors.Wrapf(err, "rmq - handleDelivery - retryable, bucket %s key %s", event.Bucket, event.Key))
				continue
			}
			c.metrics.FatalError()
			c.l.Error(errors.Wrapf(err, "rmq - handleDelivery - fatal, bucket %s key %s", event.Bucket, event.Key))
		}
	}

	if retry {
		if err := delivery.Nack(false, true); err != nil {
			c.l.Error("delivery.Nack: %v", err)
		}
		return
	}

	if err := delivery.Ack(false); err != nil {
		c.l.Error("delivery.Ack: %v", err)
	}
}
