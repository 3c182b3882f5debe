// Package store provides EventLog implementations.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hawks/dtr-engine/dtr"
)

// =============================================================================
// MEMORY EVENT LOG - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps each user's events in append order, which is the log order
// the reconstruction contract depends on.
type Memory struct {
	mu     sync.RWMutex
	events map[dtr.UserID][]dtr.ClockEvent
	ids    map[string]bool
}

func NewMemory() *Memory {
	return &Memory{
		events: make(map[dtr.UserID][]dtr.ClockEvent),
		ids:    make(map[string]bool),
	}
}

// Append adds a single event. Append-only.
func (m *Memory) Append(_ context.Context, ev dtr.ClockEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(ev)
}

// AppendBatch adds multiple events atomically: IDs are checked up front so
// a mid-batch duplicate cannot leave a partial write.
func (m *Memory) AppendBatch(_ context.Context, evs []dtr.ClockEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ev := range evs {
		if m.ids[ev.ID] {
			return fmt.Errorf("duplicate event id %s", ev.ID)
		}
	}
	for _, ev := range evs {
		if err := m.appendLocked(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) appendLocked(ev dtr.ClockEvent) error {
	if ev.ID != "" && m.ids[ev.ID] {
		return fmt.Errorf("duplicate event id %s", ev.ID)
	}
	m.events[ev.User] = append(m.events[ev.User], ev)
	if ev.ID != "" {
		m.ids[ev.ID] = true
	}
	return nil
}

// QueryByUserAndDate returns the user's events on the given calendar date,
// in log order. The date's location decides day boundaries.
func (m *Memory) QueryByUserAndDate(_ context.Context, user dtr.UserID, date time.Time) ([]dtr.ClockEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	y, mo, d := date.Date()
	var result []dtr.ClockEvent
	for _, ev := range m.events[user] {
		ey, emo, ed := ev.LoggedAt.In(date.Location()).Date()
		if ey == y && emo == mo && ed == d {
			result = append(result, ev)
		}
	}
	return result, nil
}

// Len reports the total number of stored events (test helper).
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, evs := range m.events {
		n += len(evs)
	}
	return n
}
