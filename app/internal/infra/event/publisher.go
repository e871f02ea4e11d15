// Package event publishes order events to kafka.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

const (
	TypeOrderCreated = "order.created"
	source           = "cleantec-orders"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Envelope struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	AggregateID string          `json:"aggregate_id"`
	Source      string          `json:"source"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Data        json.RawMessage `json:"data"`
}

type orderCreatedItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	ProductSKU  string  `json:"product_sku,omitempty"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type OrderCreated struct {
	OrderID      int64              `json:"order_id"`
	OrderNumber  string             `json:"order_number"`
	ClientNumber string             `json:"client_number"`
	ClientName   string             `json:"client_name"`
	Subtotal     float64            `json:"subtotal"`
	IVA          float64            `json:"iva"`
	Total        float64            `json:"total"`
	Status       string             `json:"status"`
	Items        []orderCreatedItem `json:"items"`
}

// NewWriter builds a synchronous writer for the given brokers.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
}

type Publisher struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewPublisher(writer MessageWriter, topic string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		writer: writer,
		topic:  topic,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// OrderCreated publishes an order.created event keyed by order number.
func (p *Publisher) OrderCreated(ctx context.Context, o *domorder.Order) error {
	data, err := json.Marshal(newOrderCreated(o))
	if err != nil {
		return fmt.Errorf("marshal order created: %w", err)
	}
	env := Envelope{
		EventID:     p.newID(),
		EventType:   TypeOrderCreated,
		AggregateID: o.OrderNumber,
		Source:      source,
		OccurredAt:  p.now().UTC(),
		Data:        data,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(o.OrderNumber),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(TypeOrderCreated)},
			{Key: "source", Value: []byte(source)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish event to %s: %w", p.topic, err)
	}

	p.logger.Debug("event published",
		zap.String("topic", p.topic),
		zap.String("event_type", TypeOrderCreated),
		zap.String("order_number", o.OrderNumber),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func newOrderCreated(o *domorder.Order) OrderCreated {
	items := make([]orderCreatedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderCreatedItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ProductSKU:  it.ProductSKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.LineTotal,
		})
	}
	return OrderCreated{
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		ClientNumber: o.ClientNumber,
		ClientName:   o.ClientName,
		Subtotal:     o.Subtotal,
		IVA:          o.Tax,
		Total:        o.Total,
		Status:       string(o.Status),
		Items:        items,
	}
}
