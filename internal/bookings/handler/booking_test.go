package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

type mockBookingService struct {
	createFunc func(ctx context.Context, userID, title string, start, end time.Time) (*model.Booking, error)
	cancelFunc func(ctx context.Context, userID, bookingID string) (*model.Booking, error)
	getFunc    func(ctx context.Context, userID, bookingID string) (*model.Booking, error)
	listFunc   func(ctx context.Context, userID, status string, limit int, offset int64) ([]*model.Booking, int64, error)
}

func (m *mockBookingService) Create(ctx context.Context, userID, title string, start, end time.Time) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, title, start, end)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, userID, bookingID)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID, bookingID)
	}
	return &model.Booking{}, nil
}

func (m *mockBookingService) ListByUser(ctx context.Context, userID, status string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, status, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func newTestRouter(svc *mockBookingService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestCreateHandler(t *testing.T) {
	var receivedUserID, receivedTitle string
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, userID, title string, start, end time.Time) (*model.Booking, error) {
			receivedUserID = userID
			receivedTitle = title
			return &model.Booking{
				ID:        "68b000000000000000000001",
				UserID:    userID,
				Title:     title,
				StartTime: start,
				EndTime:   end,
				Status:    model.StatusActive,
			}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"title":"Team sync","start_time":"2026-03-01T13:00:00Z","end_time":"2026-03-01T14:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set(httputil.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if receivedUserID != "user-1" || receivedTitle != "Team sync" {
		t.Errorf("service received user=%q title=%q", receivedUserID, receivedTitle)
	}

	var resp httputil.SuccessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestCreateHandler_MissingUserHeader(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{}"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateHandler_InvalidBody(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json"))
	req.Header.Set(httputil.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid time range",
			serviceErr: apperrors.InvalidTimeRange("Start time must be strictly before end time"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidTimeRange,
		},
		{
			name:       "past booking",
			serviceErr: apperrors.PastBooking("Cannot book a time slot in the past"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodePastBooking,
		},
		{
			name:       "internal conflict",
			serviceErr: apperrors.ConflictInternal("Time slot conflicts with an existing booking"),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeConflictInternal,
		},
		{
			name:       "external conflict",
			serviceErr: apperrors.ConflictExternal("Unable to verify external calendar availability", nil),
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.CodeConflictExternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				createFunc: func(ctx context.Context, userID, title string, start, end time.Time) (*model.Booking, error) {
					return nil, tt.serviceErr
				},
			}
			router := newTestRouter(svc)

			body := `{"title":"Team sync","start_time":"2026-03-01T13:00:00Z","end_time":"2026-03-01T14:00:00Z"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
			req.Header.Set(httputil.UserIDHeader, "user-1")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			var resp httputil.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestCancelHandler(t *testing.T) {
	var receivedID string
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
			receivedID = bookingID
			return &model.Booking{ID: bookingID, UserID: userID, Status: model.StatusCancelled}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/68b000000000000000000001/cancel", nil)
	req.Header.Set(httputil.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if receivedID != "68b000000000000000000001" {
		t.Errorf("expected booking id from path, got %q", receivedID)
	}
}

func TestCancelHandler_NotFound(t *testing.T) {
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/68b000000000000000000001/cancel", nil)
	req.Header.Set(httputil.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListHandler(t *testing.T) {
	var receivedStatus string
	svc := &mockBookingService{
		listFunc: func(ctx context.Context, userID, status string, limit int, offset int64) ([]*model.Booking, int64, error) {
			receivedStatus = status
			return []*model.Booking{
				{ID: "68b000000000000000000001", UserID: userID, Status: model.StatusCancelled},
			}, 1, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=cancelled&limit=5", nil)
	req.Header.Set(httputil.UserIDHeader, "user-1")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if receivedStatus != model.StatusCancelled {
		t.Errorf("expected status filter cancelled, got %q", receivedStatus)
	}

	var resp httputil.PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalCount != 1 {
		t.Errorf("expected total 1, got %d", resp.TotalCount)
	}
	if resp.Limit != 5 {
		t.Errorf("expected limit 5, got %d", resp.Limit)
	}
}
