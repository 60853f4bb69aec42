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
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// CalendarService manages a user's external calendar link and mirrors
// committed bookings into the external calendar. Mirroring is best-effort:
// the internal record stays authoritative whatever happens here.
type CalendarService interface {
	Connect(ctx context.Context, userID, accessToken, refreshToken string, expiry time.Time) error
	Disconnect(ctx context.Context, userID string) error
	Status(ctx context.Context, userID string) (*model.CalendarStatus, error)

	// CreateMirror returns the external event id, or "" when the user has no
	// usable link. Transport failures are returned for the caller to log.
	CreateMirror(ctx context.Context, userID, title string, start, end time.Time) (string, error)
	// DeleteMirror removes a mirrored event. Callers treat failures as
	// non-fatal.
	DeleteMirror(ctx context.Context, userID, externalEventID string) error
}

type calendarService struct {
	links   repository.LinkRepository
	gateway gateway.Gateway
	clock   clock.Clock
	log     *logger.Logger
}

func NewCalendarService(links repository.LinkRepository, gw gateway.Gateway, clk clock.Clock, log *logger.Logger) CalendarService {
	return &calendarService{
		links:   links,
		gateway: gw,
		clock:   clk,
		log:     log,
	}
}

func (s *calendarService) Connect(ctx context.Context, userID, accessToken, refreshToken string, expiry time.Time) error {
	if userID == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}
	if accessToken == "" {
		return apperrors.InvalidInput("Access token cannot be empty")
	}

	link := &model.CalendarLink{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Expiry:       expiry.UTC(),
	}

	if err := s.links.Upsert(ctx, link); err != nil {
		s.log.Error("Failed to store calendar link", "user_id", userID, "error", err)
		return apperrors.Internal("Failed to connect calendar", err)
	}

	s.log.Info("Calendar connected", "user_id", userID, "expiry", link.Expiry)
	return nil
}

func (s *calendarService) Disconnect(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	if err := s.links.DeleteByUser(ctx, userID); err != nil {
		s.log.Error("Failed to delete calendar link", "user_id", userID, "error", err)
		return apperrors.Internal("Failed to disconnect calendar", err)
	}

	s.log.Info("Calendar disconnected", "user_id", userID)
	return nil
}

func (s *calendarService) Status(ctx context.Context, userID string) (*model.CalendarStatus, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	link, err := s.links.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, calendarerrors.ErrNoLink) {
			return &model.CalendarStatus{Connected: false}, nil
		}
		return nil, apperrors.Internal("Failed to load calendar status", err)
	}

	expiry := link.Expiry
	return &model.CalendarStatus{
		Connected: true,
		Expiry:    &expiry,
	}, nil
}

func (s *calendarService) CreateMirror(ctx context.Context, userID, title string, start, end time.Time) (string, error) {
	link, err := s.links.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, calendarerrors.ErrNoLink) {
			// Nothing to mirror into.
			return "", nil
		}
		return "", fmt.Errorf("failed to load calendar link: %w", err)
	}

	if link.Expired(s.clock.Now()) {
		s.log.Warn("Skipping external mirror, credential expired", "user_id", userID)
		return "", nil
	}

	eventID, err := s.gateway.CreateEvent(ctx, link.AccessToken, title, start, end)
	if err != nil {
		return "", err
	}

	s.log.Info("Created external calendar event", "user_id", userID, "event_id", eventID)
	return eventID, nil
}

func (s *calendarService) DeleteMirror(ctx context.Context, userID, externalEventID string) error {
	if externalEventID == "" {
		return nil
	}

	link, err := s.links.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, calendarerrors.ErrNoLink) {
			return nil
		}
		return fmt.Errorf("failed to load calendar link: %w", err)
	}

	if err := s.gateway.DeleteEvent(ctx, link.AccessToken, externalEventID); err != nil {
		return err
	}

	s.log.Info("Deleted external calendar event", "user_id", userID, "event_id", externalEventID)
	return nil
}
