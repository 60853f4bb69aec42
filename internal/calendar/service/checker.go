package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	calendarerrors "slotbook/internal/calendar/errors"
	"slotbook/internal/calendar/gateway"
	"slotbook/internal/calendar/repository"
	"slotbook/pkg/clock"
	"slotbook/pkg/interval"
	"slotbook/pkg/logger"
)

// ConflictChecker answers whether a candidate interval collides with events
// the user holds elsewhere. Implementations must fail loudly when they
// cannot answer; a swallowed failure would let a double-booking through.
type ConflictChecker interface {
	CheckConflict(ctx context.Context, userID string, start, end time.Time) (bool, error)
}

// Checker queries the external calendar through the gateway using the user's
// stored link.
type Checker struct {
	links   repository.LinkRepository
	gateway gateway.Gateway
	clock   clock.Clock
	log     *logger.Logger
}

func NewChecker(links repository.LinkRepository, gw gateway.Gateway, clk clock.Clock, log *logger.Logger) *Checker {
	return &Checker{
		links:   links,
		gateway: gw,
		clock:   clk,
		log:     log,
	}
}

// CheckConflict applies the external-check policy in order: no link means no
// external conflicts (opt-in feature); an expired credential is an error, not
// a clean answer; provider failures propagate. Only events with concrete
// instants participate in overlap detection.
func (c *Checker) CheckConflict(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	link, err := c.links.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, calendarerrors.ErrNoLink) {
			c.log.Debug("No calendar link, skipping external check", "user_id", userID)
			return false, nil
		}
		return false, fmt.Errorf("failed to load calendar link: %w", err)
	}

	if link.Expired(c.clock.Now()) {
		c.log.Warn("Calendar credential expired", "user_id", userID, "expiry", link.Expiry)
		return false, calendarerrors.ErrCredentialExpired
	}

	events, err := c.gateway.ListEvents(ctx, link.AccessToken, start, end)
	if err != nil {
		return false, err
	}

	for _, event := range events {
		if !event.Timed() {
			continue
		}

		overlaps, err := interval.Overlaps(start, end, event.Start, event.End)
		if err != nil {
			// The provider returned a degenerate interval; skip it rather
			// than fail the whole check over junk data.
			c.log.Warn("Skipping external event with invalid interval",
				"user_id", userID,
				"event_id", event.ID,
				"start", event.Start,
				"end", event.End,
			)
			continue
		}

		if overlaps {
			c.log.Info("External calendar conflict detected",
				"user_id", userID,
				"event_id", event.ID,
				"event_start", event.Start,
				"event_end", event.End,
			)
			return true, nil
		}
	}

	return false, nil
}
