// Package events feeds finalized booking records to downstream
// collaborators (reminder delivery, calendar export) over Kafka. The
// service only publishes the record; templating and delivery live with the
// consumers.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/zayas4k/barberbook/internal/kafkax"
	"github.com/zayas4k/barberbook/internal/model"
)

const TopicBookingCreated = "barber.booking.created.v1"

// Publisher writes booking events. A Publisher built with no brokers is
// disabled and drops events silently after one startup log line.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewPublisher(brokers string, logger *slog.Logger) *Publisher {
	list := kafkax.SplitBrokers(brokers)
	if len(list) == 0 {
		logger.Warn("event publisher disabled (no kafka brokers configured)")
		return &Publisher{logger: logger}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(list...),
			Topic:        TopicBookingCreated,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger,
	}
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// BookingCreated publishes the finalized record in the background.
// Publishing is best-effort: a broker outage is logged and the booking
// stands.
func (p *Publisher) BookingCreated(ctx context.Context, b model.Booking) {
	if p.writer == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"booking_id": b.ID,
		"name":       b.Name,
		"email":      b.Email,
		"phone":      b.Phone,
		"service":    b.Service,
		"duration":   b.DurationMinutes,
		"price":      b.Price,
		"date":       b.Date,
		"time":       b.Time,
		"created":    b.Created.Format(time.RFC3339),
	})
	if err != nil {
		p.logger.Error("failed to build booking event payload", "err", err, "booking_id", b.ID)
		return
	}

	msg := kafka.Message{
		Key:   []byte(b.Date),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(TopicBookingCreated)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)

	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
			p.logger.Error("booking event publish failed", "err", err, "booking_id", b.ID)
		}
	}()
}
