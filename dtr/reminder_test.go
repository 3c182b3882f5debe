package dtr_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawks/dtr-engine/dtr"
	"github.com/hawks/dtr-engine/dtr/store"
)

type captureNotifier struct {
	mu       sync.Mutex
	messages map[dtr.UserID][]string
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{messages: map[dtr.UserID][]string{}}
}

func (c *captureNotifier) Notify(_ context.Context, user dtr.UserProfile, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[user.ID] = append(c.messages[user.ID], message)
	return nil
}

func (c *captureNotifier) count(id dtr.UserID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages[id])
}

// reminderHarness holds a scheduler over a memory log with a movable clock.
type reminderHarness struct {
	sched    *dtr.ReminderScheduler
	log      *store.Memory
	notifier *captureNotifier
	now      *time.Time
	loc      *time.Location
}

func newReminderHarness(t *testing.T) *reminderHarness {
	t.Helper()
	loc := time.FixedZone("PHT", 8*3600)
	now := time.Date(2026, time.March, 5, 16, 0, 0, 0, loc)

	h := &reminderHarness{
		log:      store.NewMemory(),
		notifier: newCaptureNotifier(),
		now:      &now,
		loc:      loc,
	}
	clock := dtr.NewClockFunc(loc, func() time.Time { return *h.now })
	h.sched = dtr.NewReminderScheduler(h.log, newTestRoster(), h.notifier, clock, dtr.DefaultRules())
	return h
}

func (h *reminderHarness) at(hour, minute int) {
	*h.now = time.Date(h.now.Year(), h.now.Month(), h.now.Day(), hour, minute, 0, 0, h.loc)
}

// openAfternoon seeds a standard morning plus PM IN, leaving PM OUT open:
// 8:00-12:00 AM and PM IN at 1:00 means the 8h target lands at 5:00 PM.
func (h *reminderHarness) openAfternoon(t *testing.T, user dtr.UserID) {
	t.Helper()
	ctx := context.Background()
	for _, ev := range []struct {
		kind  dtr.EventKind
		input string
	}{
		{dtr.AMIn, "8:00:00 AM"},
		{dtr.AMOut, "12:00:00 PM"},
		{dtr.PMIn, "1:00:00 PM"},
	} {
		require.NoError(t, h.log.Append(ctx, dtr.NewClockEvent(user, ev.kind, ev.input, *h.now)))
	}
}

func TestReminder_FiresOnceInsideLead(t *testing.T) {
	// GIVEN: 4h of morning and PM IN at 1:00, target reached at 5:00 PM
	// WHEN: passes run at 4:50 (10m out), 4:57 (3m out), and 4:58
	// THEN: only the 4:57 pass notifies, and exactly once

	h := newReminderHarness(t)
	h.openAfternoon(t, "u1")
	ctx := context.Background()

	h.at(16, 50)
	h.sched.Pass(ctx)
	assert.Equal(t, 0, h.notifier.count("u1"), "10 minutes out is beyond the lead")

	h.at(16, 57)
	h.sched.Pass(ctx)
	require.Equal(t, 1, h.notifier.count("u1"))
	assert.Contains(t, h.notifier.messages["u1"][0], "0h 3m")
	assert.Contains(t, h.notifier.messages["u1"][0], "clock PM OUT")

	h.at(16, 58)
	h.sched.Pass(ctx)
	assert.Equal(t, 1, h.notifier.count("u1"), "reminders are one-shot per day")
}

func TestReminder_PastTargetStillSingleShot(t *testing.T) {
	h := newReminderHarness(t)
	h.openAfternoon(t, "u1")
	ctx := context.Background()

	h.at(17, 10)
	h.sched.Pass(ctx)
	require.Equal(t, 1, h.notifier.count("u1"))
	assert.Contains(t, h.notifier.messages["u1"][0], "reached your 8-hour requirement")
}

func TestReminder_SkipsClosedOrHalfDays(t *testing.T) {
	h := newReminderHarness(t)
	ctx := context.Background()

	// u1 already clocked out for the day.
	h.openAfternoon(t, "u1")
	require.NoError(t, h.log.Append(ctx, dtr.NewClockEvent("u1", dtr.PMOut, "5:00:00 PM", *h.now)))

	// u2 declared a morning half-day.
	require.NoError(t, h.log.Append(ctx, dtr.NewClockEvent("u2", dtr.AMIn, "8:00:00 AM", *h.now)))
	require.NoError(t, h.log.Append(ctx, dtr.NewClockEvent("u2", dtr.AMOut, "12:00:00 PM", *h.now)))
	require.NoError(t, h.log.AppendBatch(ctx, []dtr.ClockEvent{
		dtr.NewClockEvent("u2", dtr.PMIn, dtr.NotAvailable, *h.now),
		dtr.NewClockEvent("u2", dtr.PMOut, dtr.NotAvailable, *h.now),
	}))

	h.at(17, 30)
	h.sched.Pass(ctx)
	assert.Equal(t, 0, h.notifier.count("u1"))
	assert.Equal(t, 0, h.notifier.count("u2"))
}

func TestReminder_SkipsUsersWithNoOpenAfternoon(t *testing.T) {
	h := newReminderHarness(t)
	ctx := context.Background()

	// Only a morning on file: the afternoon never opened.
	require.NoError(t, h.log.Append(ctx, dtr.NewClockEvent("u1", dtr.AMIn, "8:00:00 AM", *h.now)))
	require.NoError(t, h.log.Append(ctx, dtr.NewClockEvent("u1", dtr.AMOut, "12:00:00 PM", *h.now)))

	h.at(16, 58)
	h.sched.Pass(ctx)
	assert.Equal(t, 0, h.notifier.count("u1"))
}

func TestReminder_DeliveryFailureIsolatedPerUser(t *testing.T) {
	// GIVEN: two users inside the lead, delivery failing for the first
	// THEN: the second still gets their reminder, and the failure is not
	//       retried on the next pass

	h := newReminderHarness(t)
	h.openAfternoon(t, "u1")
	h.openAfternoon(t, "u2")
	ctx := context.Background()

	var mu sync.Mutex
	attempts := map[dtr.UserID]int{}
	h.sched.Notifier = dtr.NotifierFunc(func(c context.Context, user dtr.UserProfile, msg string) error {
		mu.Lock()
		attempts[user.ID]++
		mu.Unlock()
		if user.ID == "u1" {
			return errors.New("channel closed")
		}
		return h.notifier.Notify(c, user, msg)
	})

	h.at(16, 57)
	h.sched.Pass(ctx)
	assert.Equal(t, 1, h.notifier.count("u2"), "one failure must not block the sweep")

	h.sched.Pass(ctx)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, attempts["u1"], "failed delivery is not retried")
	assert.Equal(t, 1, attempts["u2"])
}

func TestReminder_StartStopIdempotent(t *testing.T) {
	h := newReminderHarness(t)
	h.sched.Interval = 10 * time.Millisecond

	h.sched.Start()
	h.sched.Start() // second call is a no-op
	time.Sleep(30 * time.Millisecond)
	h.sched.Stop()
	h.sched.Stop() // stopping twice must not panic
}
