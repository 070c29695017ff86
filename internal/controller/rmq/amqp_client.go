package rmq

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/streadway/amqp"

	"image_thumbnailer/config"
	"image_thumbnailer/entity"
	"image_thumbnailer/internal/notification"
	"image_thumbnailer/pkg/logger"
	"image_thumbnailer/pkg/rabbitmq"
)

// AMQPClient publishes upload notifications. The ingest API uses it to
// emulate the store's native eventing for objects it writes itself.
type AMQPClient struct {
	amqpChan *amqp.Channel
	cfg      *config.Config
	l        logger.Interface
}

func NewAMQPClient(cfg *config.Config, l logger.Interface) (*AMQPClient, error) {
	mqConn, err := rabbitmq.NewRabbitMQConn(cfg)
	if err != nil {
		return nil, err
	}
	amqpChan, err := mqConn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "amqpw.amqpConn.Channel")
	}

	c := &AMQPClient{amqpChan: amqpChan, cfg: cfg, l: l}

	err = c.amqpChan.ExchangeDeclare(
		cfg.RMQ.Exchange,
		exchangeKind,
		exchangeDurable,
		exchangeAutoDelete,
		exchangeInternal,
		exchangeNoWait,
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "Error ch.ExchangeDeclare")
	}

	return c, nil
}

// CloseChan Close messages chan
func (amqpw *AMQPClient) CloseChan() error {
	if err := amqpw.amqpChan.Close(); err != nil {
		amqpw.l.Error("AMQPClient CloseChan: %v", err)
		return err
	}
	return nil
}

// Publish message
func (amqpw *AMQPClient) Publish(exchange, key, contentType string, body []byte) error {
	amqpw.l.Info("Publishing message Exchange: %s, RoutingKey: %s", exchange, key)

	if err := amqpw.amqpChan.Publish(
		exchange,
		key,
		publishMandatory,
		publishImmediate,
		amqp.Publishing{
			ContentType:  contentType,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		return errors.Wrap(err, "ch.Publish")
	}

	return nil
}

// PublishUploadEvent emits one upload notification in the storage-event
// wire format the worker consumes.
func (amqpw *AMQPClient) PublishUploadEvent(_ context.Context, event entity.UploadEvent) error {
	body, err := notification.Encode([]entity.UploadEvent{event})
	if err != nil {
		return errors.Wrap(err, "notification.Encode")
	}

	return amqpw.Publish(amqpw.cfg.RMQ.Exchange, amqpw.cfg.RMQ.RoutingKey, "application/json", body)
}
