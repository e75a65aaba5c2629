package handlers

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velihant/financehub-api/internal/authz"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/notification"
)

// fakeNotificationService is an owner-scoped in-memory double for the store.
// The stream test publishes while a poll loop reads, so state is mutex-guarded.
type fakeNotificationService struct {
	mu            sync.Mutex
	notifications []models.Notification
	markReadCalls []string
	markAllOwner  string
}

func (f *fakeNotificationService) Publish(_ context.Context, evt notification.Event) (models.Notification, error) {
	if evt.Kind == "" {
		evt.Kind = models.NotificationKindInfo
	}
	if !models.IsValidNotificationKind(evt.Kind) {
		return models.Notification{}, sql.ErrNoRows
	}
	notif := models.Notification{
		ID:        "generated-id",
		OwnerID:   evt.OwnerID,
		Kind:      evt.Kind,
		Title:     evt.Title,
		Message:   evt.Message,
		CreatedAt: time.Now(),
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, notif)
	return notif, nil
}

func (f *fakeNotificationService) NotifyTransactionRecorded(context.Context, string, models.Transaction) error {
	return nil
}

func (f *fakeNotificationService) NotifyRiskThresholdBreached(context.Context, string, models.RiskScore) error {
	return nil
}

func (f *fakeNotificationService) NotifyReportScheduled(context.Context, string, models.ScheduledReport) error {
	return nil
}

func (f *fakeNotificationService) ListRecent(_ context.Context, ownerID string, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.OwnerID == ownerID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationService) ListSince(_ context.Context, ownerID string, since time.Time) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.OwnerID == ownerID && n.CreatedAt.After(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationService) MarkRead(_ context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadCalls = append(f.markReadCalls, id)
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].OwnerID == ownerID {
			f.notifications[i].Read = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeNotificationService) MarkAllRead(_ context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markAllOwner = ownerID
	for i := range f.notifications {
		if f.notifications[i].OwnerID == ownerID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func newNotificationTestHandler(service notification.Service) *NotificationHandler {
	streamer := notification.NewStreamer(service, notification.StreamConfig{
		PollInterval: 10 * time.Millisecond,
		MaxLifetime:  200 * time.Millisecond,
	}, zerolog.Nop())
	return NewNotificationHandler(service, streamer, 20, zerolog.Nop())
}

func asOwner(r *http.Request, ownerID string) *http.Request {
	ctx := authz.WithIdentity(r.Context(), ownerID, models.RoleViewer)
	return r.WithContext(ctx)
}

func TestNotificationListRequiresIdentity(t *testing.T) {
	handler := newNotificationTestHandler(&fakeNotificationService{})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNotificationListScopedToOwner(t *testing.T) {
	service := &fakeNotificationService{notifications: []models.Notification{
		{ID: "mine", OwnerID: "owner-1", CreatedAt: time.Now()},
		{ID: "theirs", OwnerID: "owner-2", CreatedAt: time.Now()},
	}}
	handler := newNotificationTestHandler(service)

	rec := httptest.NewRecorder()
	handler.List(rec, asOwner(httptest.NewRequest(http.MethodGet, "/api/notifications", nil), "owner-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []models.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "mine", body.Data[0].ID)
}

func TestNotificationListEmptyIsNotNull(t *testing.T) {
	handler := newNotificationTestHandler(&fakeNotificationService{})

	rec := httptest.NewRecorder()
	handler.List(rec, asOwner(httptest.NewRequest(http.MethodGet, "/api/notifications", nil), "owner-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestNotificationCreateValidatesBody(t *testing.T) {
	handler := newNotificationTestHandler(&fakeNotificationService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/notifications", strings.NewReader(`{"type":"info","title":""}`))
	handler.Create(rec, asOwner(req, "owner-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationCreatePersistsForCaller(t *testing.T) {
	service := &fakeNotificationService{}
	handler := newNotificationTestHandler(service)

	rec := httptest.NewRecorder()
	payload := `{"type":"warning","title":"Margin call","message":"Cover the position."}`
	req := httptest.NewRequest(http.MethodPost, "/api/notifications", strings.NewReader(payload))
	handler.Create(rec, asOwner(req, "owner-1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, service.notifications, 1)
	assert.Equal(t, "owner-1", service.notifications[0].OwnerID)
	assert.Equal(t, models.NotificationKindWarning, service.notifications[0].Kind)
}

func TestNotificationMarkReadSingle(t *testing.T) {
	service := &fakeNotificationService{notifications: []models.Notification{
		{ID: "n1", OwnerID: "owner-1"},
	}}
	handler := newNotificationTestHandler(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/notifications", strings.NewReader(`{"id":"n1"}`))
	handler.MarkRead(rec, asOwner(req, "owner-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, service.notifications[0].Read)
}

func TestNotificationMarkReadForeignOwnerIsNotFound(t *testing.T) {
	service := &fakeNotificationService{notifications: []models.Notification{
		{ID: "n1", OwnerID: "owner-2"},
	}}
	handler := newNotificationTestHandler(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/notifications", strings.NewReader(`{"id":"n1"}`))
	handler.MarkRead(rec, asOwner(req, "owner-1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, service.notifications[0].Read)
}

func TestNotificationMarkAllRead(t *testing.T) {
	service := &fakeNotificationService{notifications: []models.Notification{
		{ID: "n1", OwnerID: "owner-1"},
		{ID: "n2", OwnerID: "owner-1"},
	}}
	handler := newNotificationTestHandler(service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/notifications", strings.NewReader(`{"markAllRead":true}`))
	handler.MarkRead(rec, asOwner(req, "owner-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner-1", service.markAllOwner)
	assert.True(t, service.notifications[0].Read)
	assert.True(t, service.notifications[1].Read)
}

func TestNotificationMarkReadRejectsEmptyID(t *testing.T) {
	handler := newNotificationTestHandler(&fakeNotificationService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/notifications", strings.NewReader(`{"id":"  "}`))
	handler.MarkRead(rec, asOwner(req, "owner-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationStreamRequiresIdentity(t *testing.T) {
	handler := newNotificationTestHandler(&fakeNotificationService{})

	rec := httptest.NewRecorder()
	handler.Stream(rec, httptest.NewRequest(http.MethodGet, "/api/notifications/stream", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "data:")
}

func TestNotificationStreamEndToEnd(t *testing.T) {
	service := &fakeNotificationService{}
	handler := newNotificationTestHandler(service)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.Stream(w, asOwner(r, "owner-1"))
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() notification.StreamEvent {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var evt notification.StreamEvent
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &evt))
			return evt
		}
	}

	first := readEvent()
	assert.Equal(t, notification.StreamEventConnected, first.Type)

	// Raise a record after the stream is up so a poll tick must carry it.
	_, err = service.Publish(context.Background(), notification.Event{
		OwnerID: "owner-1",
		Kind:    models.NotificationKindAlert,
		Title:   "Risk threshold breached",
	})
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for {
		require.True(t, time.Now().Before(deadline), "notification frame never arrived")
		evt := readEvent()
		if evt.Type == notification.StreamEventNotifications {
			require.Len(t, evt.Data, 1)
			assert.Equal(t, "Risk threshold breached", evt.Data[0].Title)
			break
		}
		assert.Equal(t, notification.StreamEventHeartbeat, evt.Type)
	}
}
