// Package notify delivers transient user-facing notifications (toasts).
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// VariantDestructive marks an error toast.
const VariantDestructive = "destructive"

// Notification is one toast as rendered by the dashboard.
type Notification struct {
	ID          string    `json:"id"`
	Variant     string    `json:"variant"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewError builds a destructive notification stamped with a fresh id.
func NewError(title, description string) Notification {
	return Notification{
		ID:          uuid.NewString(),
		Variant:     VariantDestructive,
		Title:       title,
		Description: description,
		Timestamp:   time.Now().UTC(),
	}
}

// Notifier publishes notifications to whoever renders them.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// RedisNotifier publishes notifications as JSON on a Redis pub/sub channel the
// dashboard's realtime bridge subscribes to.
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisNotifier(client redis.UniversalClient, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (r *RedisNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notification to %s: %w", r.channel, err)
	}
	return nil
}

// Recorder keeps notifications in memory. It backs tests and processes that
// run without a realtime channel.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	return nil
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }
