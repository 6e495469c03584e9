// Package feed connects the order store to RabbitMQ. The consumer applies
// status updates published by an external kitchen system and can replace the
// simulator as the store's status source; the publisher fans store events
// out to other listeners.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/store"
)

var ErrMalformed = errors.New("malformed status message")

// StatusMessage is the inbound update format.
type StatusMessage struct {
	OrderID   string    `json:"order_id"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	Timestamp time.Time `json:"timestamp"`
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id string, next models.OrderStatus, by models.Role) (models.Order, error)
}

type deliverySource interface {
	Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error)
	Cancel(consumer string) error
}

type Consumer struct {
	source   deliverySource
	queue    string
	tag      string
	prefetch int
	updater  StatusUpdater
	logger   *slog.Logger
}

func NewConsumer(source deliverySource, queue string, updater StatusUpdater, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		source:   source,
		queue:    queue,
		tag:      "dhaba-status-feed",
		prefetch: 10,
		updater:  updater,
		logger:   logger,
	}
}

// Run consumes until ctx is done or the broker closes the delivery channel.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.source.Consume(c.queue, c.tag, c.prefetch)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.logger.Info("status feed consuming", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			_ = c.source.Cancel(c.tag)
			c.logger.Info("status feed stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("status feed: delivery channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	err := c.Apply(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, store.ErrBusy), errors.Is(err, store.ErrClosed),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.logger.Warn("requeueing status update", "error", err)
		_ = d.Nack(false, true)
	default:
		// Bad or stale updates are dropped; retrying them cannot succeed.
		c.logger.Warn("discarding status update", "error", err)
		_ = d.Ack(false)
	}
}

// Apply decodes one message and hands it to the store, which decides whether
// the transition is legal.
func (c *Consumer) Apply(ctx context.Context, body []byte) error {
	var msg StatusMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(msg.OrderID) == "" {
		return fmt.Errorf("%w: missing order_id", ErrMalformed)
	}
	next, err := models.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(msg.NewStatus)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	by := models.RoleSystem
	if r, ok := models.ParseRole(strings.ToUpper(msg.ChangedBy)); ok {
		by = r
	}
	o, err := c.updater.UpdateStatus(ctx, msg.OrderID, next, by)
	if err != nil {
		return err
	}
	c.logger.Info("status applied from feed", "order_id", o.ID, "new_status", o.Status, "changed_by", by)
	return nil
}
