package service

import (
	"context"
	"errors"
	"testing"
	"time"

	calendarerrors "slotbook/internal/calendar/errors"
	"slotbook/pkg/clock"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

type mockLinkRepository struct {
	upsertFunc     func(ctx context.Context, link *model.CalendarLink) error
	findByUserFunc func(ctx context.Context, userID string) (*model.CalendarLink, error)
	deleteFunc     func(ctx context.Context, userID string) error
}

func (m *mockLinkRepository) Upsert(ctx context.Context, link *model.CalendarLink) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, link)
	}
	return nil
}

func (m *mockLinkRepository) FindByUser(ctx context.Context, userID string) (*model.CalendarLink, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID)
	}
	return nil, calendarerrors.ErrNoLink
}

func (m *mockLinkRepository) DeleteByUser(ctx context.Context, userID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID)
	}
	return nil
}

type mockGateway struct {
	listEventsFunc  func(ctx context.Context, accessToken string, start, end time.Time) ([]*model.CalendarEvent, error)
	createEventFunc func(ctx context.Context, accessToken, title string, start, end time.Time) (string, error)
	deleteEventFunc func(ctx context.Context, accessToken, eventID string) error
	listCalls       int
}

func (m *mockGateway) ListEvents(ctx context.Context, accessToken string, start, end time.Time) ([]*model.CalendarEvent, error) {
	m.listCalls++
	if m.listEventsFunc != nil {
		return m.listEventsFunc(ctx, accessToken, start, end)
	}
	return []*model.CalendarEvent{}, nil
}

func (m *mockGateway) CreateEvent(ctx context.Context, accessToken, title string, start, end time.Time) (string, error) {
	if m.createEventFunc != nil {
		return m.createEventFunc(ctx, accessToken, title, start, end)
	}
	return "", nil
}

func (m *mockGateway) DeleteEvent(ctx context.Context, accessToken, eventID string) error {
	if m.deleteEventFunc != nil {
		return m.deleteEventFunc(ctx, accessToken, eventID)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func validLink(userID string, clk clock.Clock) *model.CalendarLink {
	return &model.CalendarLink{
		UserID:      userID,
		AccessToken: "token-123",
		Expiry:      clk.Now().Add(time.Hour),
	}
}

func TestChecker_NoLinkMeansNoConflict(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	gw := &mockGateway{}
	checker := NewChecker(&mockLinkRepository{}, gw, clk, testLogger())

	conflicted, err := checker.CheckConflict(context.Background(), "user-1", clk.Now().Add(time.Hour), clk.Now().Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflicted {
		t.Error("a user without a calendar link must have no external conflicts")
	}
	if gw.listCalls != 0 {
		t.Errorf("no provider call expected without a link, got %d", gw.listCalls)
	}
}

func TestChecker_ExpiredCredentialIsAnError(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	links := &mockLinkRepository{
		findByUserFunc: func(ctx context.Context, userID string) (*model.CalendarLink, error) {
			return &model.CalendarLink{
				UserID:      userID,
				AccessToken: "token-123",
				Expiry:      clk.Now().Add(-time.Minute),
			}, nil
		},
	}
	gw := &mockGateway{}
	checker := NewChecker(links, gw, clk, testLogger())

	_, err := checker.CheckConflict(context.Background(), "user-1", clk.Now().Add(time.Hour), clk.Now().Add(2*time.Hour))
	if !errors.Is(err, calendarerrors.ErrCredentialExpired) {
		t.Fatalf("expected ErrCredentialExpired, got: %v", err)
	}
	if gw.listCalls != 0 {
		t.Errorf("no provider call expected with an expired credential, got %d", gw.listCalls)
	}
}

func TestChecker_ProviderFailurePropagates(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	links := &mockLinkRepository{
		findByUserFunc: func(ctx context.Context, userID string) (*model.CalendarLink, error) {
			return validLink(userID, clk), nil
		},
	}
	gw := &mockGateway{
		listEventsFunc: func(ctx context.Context, accessToken string, start, end time.Time) ([]*model.CalendarEvent, error) {
			return nil, calendarerrors.ErrProviderUnavailable
		},
	}
	checker := NewChecker(links, gw, clk, testLogger())

	_, err := checker.CheckConflict(context.Background(), "user-1", clk.Now().Add(time.Hour), clk.Now().Add(2*time.Hour))
	if !errors.Is(err, calendarerrors.ErrProviderUnavailable) {
		t.Fatalf("expected provider failure to propagate, got: %v", err)
	}
}

func TestChecker_OverlapDetection(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	base := clk.Now()

	tests := []struct {
		name     string
		events   []*model.CalendarEvent
		expected bool
	}{
		{
			name:     "no events",
			events:   []*model.CalendarEvent{},
			expected: false,
		},
		{
			name: "overlapping event",
			events: []*model.CalendarEvent{
				{ID: "evt-1", Start: base.Add(90 * time.Minute), End: base.Add(150 * time.Minute)},
			},
			expected: true,
		},
		{
			name: "touching event does not conflict",
			events: []*model.CalendarEvent{
				{ID: "evt-1", Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour)},
			},
			expected: false,
		},
		{
			name: "all-day event is skipped",
			events: []*model.CalendarEvent{
				{ID: "evt-1"},
			},
			expected: false,
		},
		{
			name: "degenerate event is skipped",
			events: []*model.CalendarEvent{
				{ID: "evt-1", Start: base.Add(90 * time.Minute), End: base.Add(90 * time.Minute)},
			},
			expected: false,
		},
		{
			name: "conflict after harmless events",
			events: []*model.CalendarEvent{
				{ID: "evt-1"},
				{ID: "evt-2", Start: base.Add(3 * time.Hour), End: base.Add(4 * time.Hour)},
				{ID: "evt-3", Start: base.Add(time.Hour), End: base.Add(2 * time.Hour)},
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := &mockLinkRepository{
				findByUserFunc: func(ctx context.Context, userID string) (*model.CalendarLink, error) {
					return validLink(userID, clk), nil
				},
			}
			gw := &mockGateway{
				listEventsFunc: func(ctx context.Context, accessToken string, start, end time.Time) ([]*model.CalendarEvent, error) {
					return tt.events, nil
				},
			}
			checker := NewChecker(links, gw, clk, testLogger())

			conflicted, err := checker.CheckConflict(context.Background(), "user-1", base.Add(time.Hour), base.Add(2*time.Hour))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if conflicted != tt.expected {
				t.Errorf("expected conflict=%v, got %v", tt.expected, conflicted)
			}
		})
	}
}

func TestChecker_UsesStoredAccessToken(t *testing.T) {
	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	links := &mockLinkRepository{
		findByUserFunc: func(ctx context.Context, userID string) (*model.CalendarLink, error) {
			return validLink(userID, clk), nil
		},
	}

	var usedToken string
	gw := &mockGateway{
		listEventsFunc: func(ctx context.Context, accessToken string, start, end time.Time) ([]*model.CalendarEvent, error) {
			usedToken = accessToken
			return []*model.CalendarEvent{}, nil
		},
	}
	checker := NewChecker(links, gw, clk, testLogger())

	if _, err := checker.CheckConflict(context.Background(), "user-1", clk.Now().Add(time.Hour), clk.Now().Add(2*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usedToken != "token-123" {
		t.Errorf("expected stored access token to be used, got %q", usedToken)
	}
}
