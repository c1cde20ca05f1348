package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"congregationhub/internal/delivery/http/middleware"
	"congregationhub/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createEventErr    error
	getEventErr       error
	getEventResult    *domain.Event
	listEventsErr     error
	listEventsResult  []*domain.Event
	listEventsTotal   int
	updateEventErr    error
	updateEventResult *domain.Event
	cancelEventErr    error
	cancelEventResult *domain.Event
	lastCreateEvent   *domain.Event
	lastUpdateEventID string
	lastUpdate        domain.EventUpdate
	lastCancelEventID string
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	f.lastCreateEvent = event
	if f.createEventErr != nil {
		return f.createEventErr
	}
	event.ID = "ev-1"
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	if f.getEventErr != nil {
		return nil, f.getEventErr
	}
	return f.getEventResult, nil
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	if f.listEventsErr != nil {
		return nil, 0, f.listEventsErr
	}
	return f.listEventsResult, f.listEventsTotal, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	f.lastUpdateEventID = eventID
	f.lastUpdate = upd
	if f.updateEventErr != nil {
		return nil, f.updateEventErr
	}
	return f.updateEventResult, nil
}

func (f *fakeEventService) CancelEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	f.lastCancelEventID = eventID
	if f.cancelEventErr != nil {
		return nil, f.cancelEventErr
	}
	return f.cancelEventResult, nil
}

// fakeSessionService implements domain.SessionService for handler tests.
type fakeSessionService struct {
	startErr      error
	startEvent    *domain.Event
	startSession  *domain.EventSession
	stopErr       error
	activeErr     error
	activeEvent   *domain.Event
	activeSession *domain.EventSession
	lastStartID   string
	lastStartBy   string
	lastStopID    string
}

func (f *fakeSessionService) StartSession(ctx context.Context, eventID, callerID string) (*domain.Event, *domain.EventSession, error) {
	f.lastStartID = eventID
	f.lastStartBy = callerID
	if f.startErr != nil {
		return nil, nil, f.startErr
	}
	return f.startEvent, f.startSession, nil
}

func (f *fakeSessionService) StopSession(ctx context.Context, eventID string) error {
	f.lastStopID = eventID
	return f.stopErr
}

func (f *fakeSessionService) GetActiveSession(ctx context.Context) (*domain.Event, *domain.EventSession, error) {
	if f.activeErr != nil {
		return nil, nil, f.activeErr
	}
	return f.activeEvent, f.activeSession, nil
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestEventController_CreateEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		withUser   bool
		serviceErr error
		wantStatus int
	}{
		{
			name:       "success",
			body:       `{"title":"Sunday Service","starts_at":"2025-06-01T09:00:00Z","ends_at":"2025-06-01T11:00:00Z"}`,
			withUser:   true,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing title",
			body:       `{"starts_at":"2025-06-01T09:00:00Z","ends_at":"2025-06-01T11:00:00Z"}`,
			withUser:   true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "inverted range",
			body:       `{"title":"x","starts_at":"2025-06-01T11:00:00Z","ends_at":"2025-06-01T09:00:00Z"}`,
			withUser:   true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field rejected",
			body:       `{"title":"x","starts_at":"2025-06-01T09:00:00Z","ends_at":"2025-06-01T11:00:00Z","status":"live"}`,
			withUser:   true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no identity",
			body:       `{"title":"x","starts_at":"2025-06-01T09:00:00Z","ends_at":"2025-06-01T11:00:00Z"}`,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{createEventErr: tt.serviceErr}
			c := NewEventController(testLogger, svc, &fakeSessionService{})

			req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(tt.body))
			if tt.withUser {
				req = req.WithContext(middleware.SetIdentity(req.Context(), "user-1", []string{domain.RoleAdmin}))
			}
			rec := httptest.NewRecorder()
			c.CreateEvent(rec, req)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusCreated {
				require.Equal(t, "user-1", svc.lastCreateEvent.CreatedBy)
			}
		})
	}
}

func TestEventController_StartSession(t *testing.T) {
	startedAt := time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{name: "success", wantStatus: http.StatusCreated},
		{name: "event not found", serviceErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "already active", serviceErr: domain.ErrSessionAlreadyActive, wantStatus: http.StatusConflict, wantCode: "conflict"},
		{name: "another event live", serviceErr: &domain.AnotherEventLiveError{EventID: "ev-other", Title: "Youth Night"}, wantStatus: http.StatusConflict, wantCode: "conflict"},
		{name: "event locked", serviceErr: domain.ErrEventLocked, wantStatus: http.StatusConflict, wantCode: "conflict"},
		{name: "internal error", serviceErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSessionService{
				startErr:     tt.serviceErr,
				startEvent:   &domain.Event{ID: "ev-1", Title: "Sunday Service", Status: domain.EventStatusLive},
				startSession: &domain.EventSession{ID: "sess-1", EventID: "ev-1", Code: "4821", Status: domain.SessionStatusActive, StartedAt: startedAt},
			}
			c := NewEventController(testLogger, &fakeEventService{}, svc)

			req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/session/start", nil)
			req.SetPathValue("eventID", "ev-1")
			req = req.WithContext(middleware.SetIdentity(req.Context(), "user-1", []string{domain.RolePastor}))
			rec := httptest.NewRecorder()
			c.StartSession(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			envelope := decodeEnvelope(t, rec)
			if tt.wantCode != "" {
				errObj := envelope["error"].(map[string]any)
				require.Equal(t, tt.wantCode, errObj["code"])
				return
			}
			require.Equal(t, "ev-1", svc.lastStartID)
			require.Equal(t, "user-1", svc.lastStartBy)
			data := envelope["data"].(map[string]any)
			session := data["session"].(map[string]any)
			require.Equal(t, "4821", session["code"])
		})
	}
}

func TestEventController_StartSession_ConflictNamesLiveEvent(t *testing.T) {
	svc := &fakeSessionService{startErr: &domain.AnotherEventLiveError{EventID: "ev-other", Title: "Youth Night"}}
	c := NewEventController(testLogger, &fakeEventService{}, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/session/start", nil)
	req.SetPathValue("eventID", "ev-1")
	req = req.WithContext(middleware.SetIdentity(req.Context(), "user-1", []string{domain.RoleAdmin}))
	rec := httptest.NewRecorder()
	c.StartSession(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "Youth Night")
	require.Contains(t, rec.Body.String(), "ev-other")
}

func TestEventController_StopSession(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "no active session", serviceErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "internal error", serviceErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSessionService{stopErr: tt.serviceErr}
			c := NewEventController(testLogger, &fakeEventService{}, svc)

			req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/session/stop", nil)
			req.SetPathValue("eventID", "ev-1")
			req = req.WithContext(middleware.SetIdentity(req.Context(), "user-1", []string{domain.RoleAdmin}))
			rec := httptest.NewRecorder()
			c.StopSession(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, "ev-1", svc.lastStopID)
		})
	}
}

func TestEventController_UpdateEvent(t *testing.T) {
	t.Run("live event conflicts", func(t *testing.T) {
		svc := &fakeEventService{updateEventErr: domain.ErrEventLocked}
		c := NewEventController(testLogger, svc, &fakeSessionService{})

		req := httptest.NewRequest(http.MethodPatch, "/api/events/ev-1", bytes.NewBufferString(`{"title":"New Title"}`))
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetIdentity(req.Context(), "user-1", []string{domain.RoleAdmin}))
		rec := httptest.NewRecorder()
		c.UpdateEvent(rec, req)
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("status other than scheduled rejected", func(t *testing.T) {
		c := NewEventController(testLogger, &fakeEventService{}, &fakeSessionService{})

		req := httptest.NewRequest(http.MethodPatch, "/api/events/ev-1", bytes.NewBufferString(`{"status":"live"}`))
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetIdentity(req.Context(), "user-1", []string{domain.RoleAdmin}))
		rec := httptest.NewRecorder()
		c.UpdateEvent(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("passes fields through", func(t *testing.T) {
		svc := &fakeEventService{updateEventResult: &domain.Event{ID: "ev-1", Title: "New Title"}}
		c := NewEventController(testLogger, svc, &fakeSessionService{})

		req := httptest.NewRequest(http.MethodPatch, "/api/events/ev-1", bytes.NewBufferString(`{"title":"New Title","status":"scheduled"}`))
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetIdentity(req.Context(), "user-1", []string{domain.RoleAdmin}))
		rec := httptest.NewRecorder()
		c.UpdateEvent(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ev-1", svc.lastUpdateEventID)
		require.NotNil(t, svc.lastUpdate.Title)
		require.Equal(t, "New Title", *svc.lastUpdate.Title)
		require.NotNil(t, svc.lastUpdate.Status)
		require.Equal(t, domain.EventStatusScheduled, *svc.lastUpdate.Status)
	})
}

func TestEventController_CancelEvent(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "not found", serviceErr: domain.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "live or completed", serviceErr: domain.ErrEventLocked, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{
				cancelEventErr:    tt.serviceErr,
				cancelEventResult: &domain.Event{ID: "ev-1", Status: domain.EventStatusCancelled},
			}
			c := NewEventController(testLogger, svc, &fakeSessionService{})

			req := httptest.NewRequest(http.MethodPost, "/api/events/ev-1/cancel", nil)
			req.SetPathValue("eventID", "ev-1")
			req = req.WithContext(middleware.SetIdentity(req.Context(), "user-1", []string{domain.RoleAdmin}))
			rec := httptest.NewRecorder()
			c.CancelEvent(rec, req)
			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
