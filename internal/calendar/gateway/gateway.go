// Package gateway talks to the external calendar provider's HTTP API. The
// provider owns its data; every call here can fail and callers decide what a
// failure means for them.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	calendarerrors "slotbook/internal/calendar/errors"
	"slotbook/pkg/client"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// Gateway is the outbound capability surface the core consumes: list events
// in a window, mirror an event, delete a mirrored event.
type Gateway interface {
	ListEvents(ctx context.Context, accessToken string, start, end time.Time) ([]*model.CalendarEvent, error)
	CreateEvent(ctx context.Context, accessToken string, title string, start, end time.Time) (string, error)
	DeleteEvent(ctx context.Context, accessToken string, eventID string) error
}

type httpGateway struct {
	client *client.HttpClient
	log    *logger.Logger
}

func New(baseURL string, timeout time.Duration, log *logger.Logger) Gateway {
	return &httpGateway{
		client: client.NewHttpClient(baseURL, timeout),
		log:    log,
	}
}

type eventPayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type listEventsResponse struct {
	Events []eventPayload `json:"events"`
}

type createEventRequest struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type createEventResponse struct {
	ID string `json:"id"`
}

func authHeader(accessToken string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + accessToken}
}

func (g *httpGateway) ListEvents(ctx context.Context, accessToken string, start, end time.Time) ([]*model.CalendarEvent, error) {
	query := url.Values{}
	query.Set("time_min", start.UTC().Format(time.RFC3339))
	query.Set("time_max", end.UTC().Format(time.RFC3339))

	resp, err := g.client.GET(ctx, "/v1/events?"+query.Encode(), authHeader(accessToken))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", calendarerrors.ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: list events returned status %d", calendarerrors.ErrProviderUnavailable, resp.StatusCode)
	}

	var payload listEventsResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, fmt.Errorf("%w: malformed list response: %v", calendarerrors.ErrProviderUnavailable, err)
	}

	events := make([]*model.CalendarEvent, 0, len(payload.Events))
	for _, e := range payload.Events {
		events = append(events, &model.CalendarEvent{
			ID:    e.ID,
			Title: e.Title,
			Start: parseInstant(e.Start),
			End:   parseInstant(e.End),
		})
	}

	return events, nil
}

func (g *httpGateway) CreateEvent(ctx context.Context, accessToken string, title string, start, end time.Time) (string, error) {
	body := createEventRequest{
		Title: title,
		Start: start.UTC().Format(time.RFC3339),
		End:   end.UTC().Format(time.RFC3339),
	}

	resp, err := g.client.POST(ctx, "/v1/events", body, authHeader(accessToken))
	if err != nil {
		return "", fmt.Errorf("%w: %v", calendarerrors.ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: create event returned status %d", calendarerrors.ErrProviderUnavailable, resp.StatusCode)
	}

	var payload createEventResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		return "", fmt.Errorf("%w: malformed create response: %v", calendarerrors.ErrProviderUnavailable, err)
	}
	if payload.ID == "" {
		return "", fmt.Errorf("%w: create response missing event id", calendarerrors.ErrProviderUnavailable)
	}

	return payload.ID, nil
}

func (g *httpGateway) DeleteEvent(ctx context.Context, accessToken string, eventID string) error {
	resp, err := g.client.DELETE(ctx, "/v1/events/"+url.PathEscape(eventID), authHeader(accessToken))
	if err != nil {
		return fmt.Errorf("%w: %v", calendarerrors.ErrProviderUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		// Already gone on the provider side; deletion is idempotent.
		g.log.Debug("External event already deleted", "event_id", eventID)
		return nil
	default:
		return fmt.Errorf("%w: delete event returned status %d", calendarerrors.ErrProviderUnavailable, resp.StatusCode)
	}
}

// parseInstant returns the zero time for values the provider sends without a
// concrete instant (all-day markers send a bare date or nothing).
func parseInstant(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
