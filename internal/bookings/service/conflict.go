package service

import (
	"context"
	"fmt"
	"time"

	"slotbook/internal/bookings/repository"
	"slotbook/pkg/interval"
)

// InternalConflictChecker scans the user's own active bookings for overlaps
// with a candidate interval. It is authoritative for data this service owns
// and cheap relative to the external check, so it always runs first.
type InternalConflictChecker struct {
	repo repository.BookingRepository
}

func NewInternalConflictChecker(repo repository.BookingRepository) *InternalConflictChecker {
	return &InternalConflictChecker{repo: repo}
}

// CheckConflict returns true on the first active booking overlapping
// [start, end). The result is existential, so scan order does not matter.
// Storage failures propagate; they are never reported as "no conflict".
func (c *InternalConflictChecker) CheckConflict(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	bookings, err := c.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to load active bookings: %w", err)
	}

	for _, booking := range bookings {
		overlaps, err := interval.Overlaps(start, end, booking.StartTime, booking.EndTime)
		if err != nil {
			return false, fmt.Errorf("stored booking %s has invalid interval: %w", booking.ID, err)
		}
		if overlaps {
			return true, nil
		}
	}

	return false, nil
}
