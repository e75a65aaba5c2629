package notifywatch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned by Run when a watch loop is already active
// on this Watcher. One Watcher owns at most one stream connection.
var ErrAlreadyRunning = errors.New("notifywatch: watcher already running")

// Watcher merges the initial snapshot and streamed deltas into a single
// newest-first list, keyed by id so a re-delivered record collapses into the
// entry it already has. All methods are safe for concurrent use.
type Watcher struct {
	client *Client

	mu      sync.Mutex
	items   []Notification
	loading bool
	running bool

	reconnectWait time.Duration
}

func NewWatcher(client *Client) *Watcher {
	return &Watcher{
		client:        client,
		loading:       true,
		reconnectWait: 10 * time.Second,
	}
}

// SetReconnectWait overrides the fixed backoff between stream reconnects.
func (w *Watcher) SetReconnectWait(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d > 0 {
		w.reconnectWait = d
	}
}

// Initialize fetches the bounded snapshot and replaces the local list
// wholesale. On failure the previous list is left intact; the loading flag
// is cleared on every path so a consumer never sticks in a loading state.
func (w *Watcher) Initialize(ctx context.Context) error {
	items, err := w.client.List(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if err != nil {
		return err
	}

	sortNewestFirst(items)
	w.items = items
	return nil
}

// Run drives the watch loop: snapshot, then stream, reconnecting after the
// fixed backoff whenever the stream drops. It returns when ctx is cancelled,
// or immediately with ErrAlreadyRunning if another Run is active.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	wait := w.reconnectWait
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	for {
		// Each (re)connect re-fetches the snapshot so records created while
		// disconnected are not lost. Snapshot failure is not fatal; the
		// stream may still come up and the next cycle retries the fetch.
		_ = w.Initialize(ctx)

		err := w.client.Stream(ctx, w.handleEvent)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = err // stream errors trigger the same fixed-backoff reconnect

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (w *Watcher) handleEvent(evt StreamEvent) {
	switch evt.Type {
	case eventNotifications:
		w.merge(evt.Data)
	case eventConnected, eventHeartbeat:
		// No state change.
	}
}

// merge folds streamed records into the list, dropping any id already
// present. The push channel may legitimately re-deliver a record, so this
// must stay idempotent.
func (w *Watcher) merge(records []Notification) {
	if len(records) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]struct{}, len(w.items))
	for _, item := range w.items {
		seen[item.ID] = struct{}{}
	}

	changed := false
	for _, record := range records {
		if _, ok := seen[record.ID]; ok {
			continue
		}
		seen[record.ID] = struct{}{}
		w.items = append(w.items, record)
		changed = true
	}
	if changed {
		sortNewestFirst(w.items)
	}
}

// Notifications returns a copy of the current list, newest first.
func (w *Watcher) Notifications() []Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Notification, len(w.items))
	copy(out, w.items)
	return out
}

func (w *Watcher) UnreadCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	count := 0
	for _, item := range w.items {
		if !item.Read {
			count++
		}
	}
	return count
}

func (w *Watcher) Loading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loading
}

// MarkRead flips the record locally first so the caller sees the change
// immediately, then confirms with the store. If the store call fails the
// local flip is rolled back and the error returned.
func (w *Watcher) MarkRead(ctx context.Context, id string) error {
	flipped := w.setRead(id, true)

	if err := w.client.MarkRead(ctx, id); err != nil {
		if flipped {
			w.setRead(id, false)
		}
		return err
	}
	return nil
}

// MarkAllRead flips every unread record locally, then confirms with the
// store. On failure only the records this call flipped are rolled back.
func (w *Watcher) MarkAllRead(ctx context.Context) error {
	w.mu.Lock()
	var flipped []string
	for i := range w.items {
		if !w.items[i].Read {
			w.items[i].Read = true
			flipped = append(flipped, w.items[i].ID)
		}
	}
	w.mu.Unlock()

	if err := w.client.MarkAllRead(ctx); err != nil {
		for _, id := range flipped {
			w.setRead(id, false)
		}
		return err
	}
	return nil
}

func (w *Watcher) setRead(id string, read bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.items {
		if w.items[i].ID == id {
			if w.items[i].Read == read {
				return false
			}
			w.items[i].Read = read
			return true
		}
	}
	return false
}

func sortNewestFirst(items []Notification) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
