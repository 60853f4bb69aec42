package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	}))
}

func validBooking() *model.Booking {
	return &model.Booking{
		UserID:    "user-1",
		Title:     "Team sync",
		StartTime: time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC),
		Status:    model.StatusActive,
	}
}

func TestValidate_ValidBooking(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validBooking()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(b *model.Booking)
		field  string
	}{
		{
			name:   "missing user",
			mutate: func(b *model.Booking) { b.UserID = "" },
			field:  "UserID",
		},
		{
			name:   "missing title",
			mutate: func(b *model.Booking) { b.Title = "" },
			field:  "Title",
		},
		{
			name:   "title too long",
			mutate: func(b *model.Booking) { b.Title = strings.Repeat("a", 201) },
			field:  "Title",
		},
		{
			name:   "missing start time",
			mutate: func(b *model.Booking) { b.StartTime = time.Time{} },
			field:  "StartTime",
		},
		{
			name:   "missing end time",
			mutate: func(b *model.Booking) { b.EndTime = time.Time{} },
			field:  "EndTime",
		},
		{
			name:   "unknown status",
			mutate: func(b *model.Booking) { b.Status = "pending" },
			field:  "Status",
		},
		{
			name:   "malformed id",
			mutate: func(b *model.Booking) { b.ID = "not-an-object-id" },
			field:  "ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := validBooking()
			tt.mutate(booking)

			err := v.Validate(booking)
			if err == nil {
				t.Fatal("expected validation error")
			}

			var validationErrs ValidationErrors
			if !errors.As(err, &validationErrs) {
				t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
			}

			found := false
			for _, vErr := range validationErrs {
				if vErr.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got: %v", tt.field, validationErrs)
			}
		})
	}
}

func TestValidate_MaxLengthTitleAccepted(t *testing.T) {
	v := newTestValidator()

	booking := validBooking()
	booking.Title = strings.Repeat("a", 200)

	if err := v.Validate(booking); err != nil {
		t.Fatalf("200 character title must be valid, got: %v", err)
	}
}
