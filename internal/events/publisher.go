package events

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"mirror/internal/logger"
	"mirror/internal/models"

	"github.com/segmentio/kafka-go"
)

// Topic carries order-change events to downstream consumers. Delivery is
// best-effort: the sync engine never fails a run over a publish error.
const Topic = "order-events"

// OrderEvent is the payload published for every changed order.
type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

const EventOrderChanged = "order.changed"

type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

func (p *Publisher) OrderChanged(order *models.Order) error {
	event := OrderEvent{
		Type:      EventOrderChanged,
		OrderID:   order.ID,
		Status:    order.Status,
		Total:     order.Total,
		Currency:  order.Currency,
		Timestamp: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
