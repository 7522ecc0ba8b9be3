package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/marketfront/cartstate/internal/domain"
)

const (
	EventsExchange         = "marketfront.events"
	NotificationRoutingKey = "cart.notification.v1"
)

// RabbitNotifier publishes notifications to a topic exchange. Publishing is
// fire-and-forget: a failed publish is logged and dropped.
type RabbitNotifier struct {
	ch     *amqp.Channel
	logger *zap.Logger
}

func DialRabbit(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp.Dial: %w", err)
	}
	return conn, nil
}

func NewRabbit(conn *amqp.Connection, logger *zap.Logger) (*RabbitNotifier, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("conn.Channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("ch.ExchangeDeclare: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &RabbitNotifier{ch: ch, logger: logger}, nil
}

func (n *RabbitNotifier) Notify(ctx context.Context, notification domain.Notification) {
	body, err := json.Marshal(notification)
	if err != nil {
		n.logger.Warn("failed to serialize notification", zap.Error(err))
		return
	}

	err = n.ch.PublishWithContext(ctx,
		EventsExchange,
		NotificationRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		n.logger.Warn("failed to publish notification",
			zap.String("routing_key", NotificationRoutingKey), zap.Error(err))
	}
}

func (n *RabbitNotifier) Close() error {
	return n.ch.Close()
}
