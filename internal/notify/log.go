package notify

import (
	"context"
	"log"
	"sync"
)

// LogDispatcher writes events to the operator log instead of delivering
// them. Used in development and as the test double.
type LogDispatcher struct {
	mu     sync.Mutex
	events []Event
}

var _ Dispatcher = (*LogDispatcher)(nil)

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

func (d *LogDispatcher) Dispatch(_ context.Context, ev Event) error {
	d.mu.Lock()
	d.events = append(d.events, ev)
	d.mu.Unlock()

	log.Printf("notify: %s -> %s (%s)", ev.Kind, ev.To, ev.Subject())
	return nil
}

// Events returns a copy of everything dispatched so far.
func (d *LogDispatcher) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}
