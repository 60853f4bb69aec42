package model

import (
	"time"
)

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Booking is a committed time slot owned by a single user. Bookings are never
// physically deleted; cancellation flips Status to cancelled.
type Booking struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID          string    `json:"user_id" bson:"user_id" validate:"required"`
	Title           string    `json:"title" bson:"title" validate:"required,min=1,max=200"`
	StartTime       time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" bson:"end_time" validate:"required"`
	Status          string    `json:"status" bson:"status" validate:"required,oneof=active cancelled"`
	ExternalEventID string    `json:"external_event_id,omitempty" bson:"external_event_id,omitempty"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Active reports whether the booking still occupies its slot.
func (b *Booking) Active() bool {
	return b.Status == StatusActive
}
