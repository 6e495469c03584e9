package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

type eventMessage struct {
	OrderID      string             `json:"order_id"`
	CustomerName string             `json:"customer_name"`
	OrderType    models.OrderType   `json:"order_type"`
	TotalAmount  int64              `json:"total_amount"`
	OldStatus    models.OrderStatus `json:"old_status,omitempty"`
	NewStatus    models.OrderStatus `json:"new_status"`
	ChangedBy    models.Role        `json:"changed_by,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}

type publishClient interface {
	Publish(ctx context.Context, exchange, key string, body []byte) error
}

type Publisher struct {
	client   publishClient
	exchange string
	logger   *slog.Logger
}

func NewPublisher(client publishClient, exchange string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, exchange: exchange, logger: logger}
}

// RoutingKey is order.placed for new orders and order.status.<status> for
// transitions.
func RoutingKey(ev models.OrderEvent) string {
	if ev.Kind == models.EventStatusChanged && ev.Change != nil {
		return "order.status." + strings.ToLower(string(ev.Change.To))
	}
	return "order.placed"
}

func (p *Publisher) Publish(ctx context.Context, ev models.OrderEvent) error {
	msg := eventMessage{
		OrderID:      ev.Order.ID,
		CustomerName: ev.Order.CustomerName,
		OrderType:    ev.Order.Type(),
		TotalAmount:  ev.Order.TotalAmount,
		NewStatus:    ev.Order.Status,
		Timestamp:    ev.Order.Timestamp,
	}
	if ev.Change != nil {
		msg.OldStatus = ev.Change.From
		msg.NewStatus = ev.Change.To
		msg.ChangedBy = ev.Change.ChangedBy
		msg.Timestamp = ev.Change.At
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.exchange, RoutingKey(ev), body)
}

// Run publishes events until the channel closes or ctx ends. Failures are
// logged and the event is skipped.
func (p *Publisher) Run(ctx context.Context, events <-chan models.OrderEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := p.Publish(pubCtx, ev); err != nil {
				p.logger.Warn("failed to publish order event", "order_id", ev.Order.ID, "error", err)
			}
			cancel()
		}
	}
}
