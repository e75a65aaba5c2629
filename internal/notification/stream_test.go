package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velihant/financehub-api/internal/models"
	"github.com/velihant/financehub-api/internal/repository"
)

// fakeNotificationRepo is an in-memory store keyed by owner. Tests mutate it
// while a stream loop polls it, so every access takes the mutex.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
	listSinceErr  error
	listSinceCall int
}

func (f *fakeNotificationRepo) add(notif models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, notif)
}

func (f *fakeNotificationRepo) listSinceCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listSinceCall
}

func (f *fakeNotificationRepo) Create(_ context.Context, params repository.CreateNotificationParams) (models.Notification, error) {
	notif := models.Notification{
		ID:        params.Title, // deterministic for tests
		OwnerID:   params.OwnerID,
		Kind:      params.Kind,
		Title:     params.Title,
		Message:   params.Message,
		CreatedAt: time.Now(),
	}
	f.add(notif)
	return notif, nil
}

func (f *fakeNotificationRepo) ListRecent(_ context.Context, ownerID string, limit int) ([]models.Notification, error) {
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

func (f *fakeNotificationRepo) ListSince(_ context.Context, ownerID string, since time.Time) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listSinceCall++
	if f.listSinceErr != nil {
		err := f.listSinceErr
		f.listSinceErr = nil
		return nil, err
	}
	var out []models.Notification
	for _, n := range f.notifications {
		if n.OwnerID == ownerID && n.CreatedAt.After(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id && f.notifications[i].OwnerID == ownerID {
			f.notifications[i].Read = true
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].OwnerID == ownerID {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func newTestStreamer(repo *fakeNotificationRepo, poll, lifetime time.Duration) *Streamer {
	service := NewService(repo, zerolog.Nop())
	return NewStreamer(service, StreamConfig{PollInterval: poll, MaxLifetime: lifetime}, zerolog.Nop())
}

func TestStreamerSendsConnectedFirst(t *testing.T) {
	repo := &fakeNotificationRepo{}
	streamer := newTestStreamer(repo, 10*time.Millisecond, 35*time.Millisecond)

	var events []StreamEvent
	err := streamer.Run(context.Background(), "owner-1", func(evt StreamEvent) error {
		events = append(events, evt)
		return nil
	})
	require.NoError(t, err)

	require.NotEmpty(t, events)
	assert.Equal(t, StreamEventConnected, events[0].Type)
	for _, evt := range events[1:] {
		assert.Equal(t, StreamEventHeartbeat, evt.Type)
	}
}

func TestStreamerDeliversNewRecords(t *testing.T) {
	repo := &fakeNotificationRepo{}
	streamer := newTestStreamer(repo, 10*time.Millisecond, 60*time.Millisecond)

	events := make(chan StreamEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = streamer.Run(context.Background(), "owner-1", func(evt StreamEvent) error {
			events <- evt
			return nil
		})
	}()

	// Created after the stream opens, so only ListSince can surface it.
	time.Sleep(5 * time.Millisecond)
	repo.add(models.Notification{
		ID:        "n1",
		OwnerID:   "owner-1",
		Kind:      models.NotificationKindInfo,
		Title:     "hello",
		CreatedAt: time.Now(),
	})

	<-done
	close(events)

	var batches []StreamEvent
	for evt := range events {
		if evt.Type == StreamEventNotifications {
			batches = append(batches, evt)
		}
	}
	require.Len(t, batches, 1, "record must be delivered exactly once")
	require.Len(t, batches[0].Data, 1)
	assert.Equal(t, "n1", batches[0].Data[0].ID)
}

func TestStreamerIgnoresOtherOwners(t *testing.T) {
	repo := &fakeNotificationRepo{}
	streamer := newTestStreamer(repo, 10*time.Millisecond, 45*time.Millisecond)

	done := make(chan struct{})
	var sawBatch bool
	go func() {
		defer close(done)
		_ = streamer.Run(context.Background(), "owner-1", func(evt StreamEvent) error {
			if evt.Type == StreamEventNotifications {
				sawBatch = true
			}
			return nil
		})
	}()

	time.Sleep(5 * time.Millisecond)
	repo.add(models.Notification{
		ID:        "n-foreign",
		OwnerID:   "owner-2",
		CreatedAt: time.Now(),
	})

	<-done
	assert.False(t, sawBatch, "foreign-owner records must never cross the channel")
}

func TestStreamerSurvivesPollFailure(t *testing.T) {
	repo := &fakeNotificationRepo{listSinceErr: errors.New("store unavailable")}
	streamer := newTestStreamer(repo, 10*time.Millisecond, 60*time.Millisecond)

	events := make(chan StreamEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = streamer.Run(context.Background(), "owner-1", func(evt StreamEvent) error {
			events <- evt
			return nil
		})
	}()

	// The first tick fails; this record must arrive on a later tick, once.
	time.Sleep(5 * time.Millisecond)
	repo.add(models.Notification{
		ID:        "n1",
		OwnerID:   "owner-1",
		CreatedAt: time.Now(),
	})

	<-done
	close(events)

	var delivered int
	for evt := range events {
		if evt.Type == StreamEventNotifications {
			delivered++
		}
	}
	assert.Equal(t, 1, delivered)
	assert.GreaterOrEqual(t, repo.listSinceCalls(), 2)
}

func TestStreamerStopsOnDeliveryFailure(t *testing.T) {
	repo := &fakeNotificationRepo{}
	streamer := newTestStreamer(repo, 5*time.Millisecond, time.Second)

	calls := 0
	err := streamer.Run(context.Background(), "owner-1", func(StreamEvent) error {
		calls++
		if calls > 1 {
			return errors.New("client gone")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestStreamerHonorsContextCancel(t *testing.T) {
	repo := &fakeNotificationRepo{}
	streamer := newTestStreamer(repo, 5*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- streamer.Run(ctx, "owner-1", func(StreamEvent) error { return nil })
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop on context cancellation")
	}
}
