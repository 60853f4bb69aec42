package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/bookings/events"
	"slotbook/internal/bookings/repository"
	"slotbook/internal/bookings/validator"
	calendarerrors "slotbook/internal/calendar/errors"
	calendarservice "slotbook/internal/calendar/service"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/interval"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
)

const lockIDPrefix = "booking_admission_"

type BookingService interface {
	Create(ctx context.Context, userID, title string, start, end time.Time) (*model.Booking, error)
	Cancel(ctx context.Context, userID, bookingID string) (*model.Booking, error)
	GetByID(ctx context.Context, userID, bookingID string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID, status string, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	cfg       *config.Config
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	validator *validator.BookingValidator
	internal  *InternalConflictChecker
	external  calendarservice.ConflictChecker
	calendars calendarservice.CalendarService
	publisher events.Publisher
	clock     clock.Clock
}

func NewBookingService(
	cfg *config.Config,
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	bookingValidator *validator.BookingValidator,
	external calendarservice.ConflictChecker,
	calendars calendarservice.CalendarService,
	publisher events.Publisher,
	clk clock.Clock,
) BookingService {
	return &bookingService{
		cfg:       cfg,
		repo:      repo,
		lockRepo:  lockRepo,
		validator: bookingValidator,
		internal:  NewInternalConflictChecker(repo),
		external:  external,
		calendars: calendars,
		publisher: publisher,
		clock:     clk,
	}
}

// Create admits a booking only after the slot passes every conflict check.
// Order matters: field validation, interval validation, past check, then the
// internal check, then the external check. An internal conflict must never
// cost a provider round trip. Any external checker failure rejects the
// booking; unavailability is treated as a potential conflict.
func (s *bookingService) Create(ctx context.Context, userID, title string, start, end time.Time) (*model.Booking, error) {
	booking := &model.Booking{
		UserID:    userID,
		Title:     sanitizer.NormalizeTitle(title),
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Status:    model.StatusActive,
	}

	if err := s.validator.Validate(booking); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			details := make(map[string]any, len(vErrs))
			for _, v := range vErrs {
				details[v.Field] = v.Message
			}
			return nil, apperrors.Validation("Booking validation failed", details)
		}
		return nil, apperrors.Internal("failed to validate booking", err)
	}

	if err := interval.Validate(booking.StartTime, booking.EndTime); err != nil {
		return nil, apperrors.InvalidTimeRange("Start time must be strictly before end time")
	}

	if !booking.StartTime.After(s.clock.Now()) {
		return nil, apperrors.PastBooking("Cannot book a time slot in the past")
	}

	release, err := s.acquireUserLock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	conflicted, err := s.internal.CheckConflict(ctx, userID, booking.StartTime, booking.EndTime)
	if err != nil {
		return nil, apperrors.Internal("failed to check internal conflicts", err)
	}
	if conflicted {
		return nil, apperrors.ConflictInternal("Time slot conflicts with an existing booking")
	}

	if err := s.checkExternal(ctx, userID, booking.StartTime, booking.EndTime); err != nil {
		return nil, err
	}

	if err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return s.repo.Create(sessCtx, booking)
	}); err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Internal("failed to persist booking", err)
	}

	s.mirrorCreate(ctx, booking)
	s.publisher.BookingCreated(ctx, booking)

	return booking, nil
}

// checkExternal runs the calendar conflict check under its own timeout. A
// negative answer requires a successful provider response; everything else,
// including expired credentials and timeouts, rejects the admission.
func (s *bookingService) checkExternal(ctx context.Context, userID string, start, end time.Time) error {
	checkCtx, cancel := context.WithTimeout(ctx, s.cfg.CalendarRequestTimeout)
	defer cancel()

	conflicted, err := s.external.CheckConflict(checkCtx, userID, start, end)
	if err != nil {
		reason := "check_failed"
		if errors.Is(err, calendarerrors.ErrCredentialExpired) {
			reason = "credential_expired"
		}
		return apperrors.ConflictExternal("Unable to verify external calendar availability", err).
			WithDetails(map[string]any{"reason": reason})
	}
	if conflicted {
		return apperrors.ConflictExternal("Time slot conflicts with an external calendar event", nil).
			WithDetails(map[string]any{"reason": "external_event_overlap"})
	}
	return nil
}

// mirrorCreate pushes the committed booking to the user's external calendar.
// Failures are logged and swallowed; the booking already exists either way.
func (s *bookingService) mirrorCreate(ctx context.Context, booking *model.Booking) {
	mirrorCtx, cancel := context.WithTimeout(ctx, s.cfg.CalendarRequestTimeout)
	defer cancel()

	eventID, err := s.calendars.CreateMirror(mirrorCtx, booking.UserID, booking.Title, booking.StartTime, booking.EndTime)
	if err != nil {
		s.cfg.Log.Warn("Failed to mirror booking to external calendar",
			"booking_id", booking.ID,
			"user_id", booking.UserID,
			"error", err.Error(),
		)
		return
	}
	if eventID == "" {
		return
	}

	if err := s.repo.UpdateExternalRef(ctx, booking.ID, eventID); err != nil {
		s.cfg.Log.Warn("Failed to store external event reference",
			"booking_id", booking.ID,
			"external_event_id", eventID,
			"error", err.Error(),
		)
		return
	}
	booking.ExternalEventID = eventID
}

// Cancel soft-deletes a booking on behalf of its owner. A booking owned by
// someone else is reported as not found, indistinguishable from a missing
// one. The external mirror is removed best effort.
func (s *bookingService) Cancel(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	booking, err := s.findOwned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.Active() {
		return nil, apperrors.AlreadyCancelled("Booking is already cancelled")
	}

	if booking.ExternalEventID != "" {
		mirrorCtx, cancel := context.WithTimeout(ctx, s.cfg.CalendarRequestTimeout)
		if err := s.calendars.DeleteMirror(mirrorCtx, userID, booking.ExternalEventID); err != nil {
			s.cfg.Log.Warn("Failed to remove external calendar event",
				"booking_id", booking.ID,
				"external_event_id", booking.ExternalEventID,
				"error", err.Error(),
			)
		}
		cancel()
	}

	cancelled, err := s.repo.UpdateStatus(ctx, bookingID, model.StatusCancelled)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, apperrors.Internal("failed to cancel booking", err)
	}

	s.publisher.BookingCancelled(ctx, cancelled)

	return cancelled, nil
}

func (s *bookingService) GetByID(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	return s.findOwned(ctx, userID, bookingID)
}

// ListByUser returns a page of the user's bookings with the given status
// alongside the total count. Count and page load run concurrently.
func (s *bookingService) ListByUser(ctx context.Context, userID, status string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if status == "" {
		status = model.StatusActive
	}
	if status != model.StatusActive && status != model.StatusCancelled {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown booking status: %s", status))
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		wg       sync.WaitGroup
		bookings []*model.Booking
		total    int64
		findErr  error
		countErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		bookings, findErr = s.repo.FindByUserAndStatus(ctx, userID, status, limit, offset)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.repo.CountByUserAndStatus(ctx, userID, status)
	}()
	wg.Wait()

	if findErr != nil {
		return nil, 0, apperrors.Internal("failed to list bookings", findErr)
	}
	if countErr != nil {
		return nil, 0, apperrors.Internal("failed to count bookings", countErr)
	}

	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, total, nil
}

// findOwned loads a booking and verifies ownership. Both a missing booking
// and a foreign booking surface as not found so existence does not leak
// across users.
func (s *bookingService) findOwned(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, apperrors.Internal("failed to find booking", err)
	}

	if booking.UserID != userID {
		return nil, apperrors.NotFoundWithID("Booking", bookingID)
	}

	return booking, nil
}

// acquireUserLock serializes admissions per user so the check-then-insert
// window cannot admit two overlapping bookings concurrently. The lock is an
// insert against a unique _id; a duplicate key means another admission for
// the same user is in flight.
func (s *bookingService) acquireUserLock(ctx context.Context, userID string) (func(), error) {
	lockID := lockIDPrefix + userID
	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: s.clock.Now().Add(s.cfg.BookingLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Another booking request for this user is in progress").
				WithDetails(map[string]any{"reason": bookingserrors.ErrLockHeld.Error()})
		}
		return nil, apperrors.Internal("failed to acquire admission lock", err)
	}

	release := func() {
		if err := s.lockRepo.Delete(context.WithoutCancel(ctx), lockID); err != nil {
			s.cfg.Log.Warn("Failed to release admission lock",
				"lock_id", lockID,
				"error", err.Error(),
			)
		}
	}
	return release, nil
}
