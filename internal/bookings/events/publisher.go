// Package events emits booking lifecycle events for downstream consumers.
// Publishing is best-effort: a failed publish is logged and never changes
// the outcome of the operation that triggered it.
package events

import (
	"context"
	"time"

	"slotbook/pkg/kafka"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"
)

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingCancelled(ctx context.Context, booking *model.Booking)
}

type bookingEvent struct {
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, kafka.EventBookingCreated, booking)
}

func (p *kafkaPublisher) BookingCancelled(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, kafka.EventBookingCancelled, booking)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.ID).
		WithEventType(eventType).
		WithSource("bookings").
		WithCorrelationID(middleware.RequestID(ctx)).
		WithValue(bookingEvent{
			BookingID: booking.ID,
			UserID:    booking.UserID,
			Title:     booking.Title,
			StartTime: booking.StartTime,
			EndTime:   booking.EndTime,
			Status:    booking.Status,
		}).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

// NoopPublisher is used when the event stream is disabled.
type NoopPublisher struct{}

func (NoopPublisher) BookingCreated(ctx context.Context, booking *model.Booking)   {}
func (NoopPublisher) BookingCancelled(ctx context.Context, booking *model.Booking) {}
