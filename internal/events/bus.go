package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a cart or pricing occurrence fanned out to notifiers.
type Event struct {
	ID         string
	Topic      string
	CartID     string
	OccurredAt time.Time
	Payload    map[string]any
}

// Notifier reacts to emitted events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, event Event) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, event Event) error { return f(ctx, event) }

// Bus fans events out to notifiers synchronously.
type Bus struct {
	Notifiers []Notifier
	Now       func() time.Time
}

// Emit builds the event and hands it to every notifier. Notifier failures are
// joined and returned; they never stop delivery to the remaining notifiers.
// A nil Bus drops events.
func (b *Bus) Emit(ctx context.Context, topic, cartID string, payload map[string]any) (Event, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Event{}, errors.New("events: topic is required")
	}
	ev := Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		CartID:     cartID,
		OccurredAt: b.now(),
		Payload:    payload,
	}
	if b == nil {
		return ev, nil
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, ev); err != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", err))
		}
	}
	return ev, joined
}

func (b *Bus) now() time.Time {
	if b != nil && b.Now != nil {
		return b.Now()
	}
	return time.Now().UTC()
}
