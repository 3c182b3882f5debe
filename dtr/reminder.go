/*
reminder.go - Required-hours reminder scheduler

PURPOSE:
  A recurring background pass over all known users that pings anyone about
  to hit the required-hours target so they don't forget to clock out.

ELIGIBILITY (per user, per pass):
  AM IN, AM OUT, and PM IN present; PM OUT absent; neither PM slot the
  half-day sentinel. Worked-so-far substitutes the current instant for the
  missing PM OUT. When the remaining time to the target is at or under the
  lead, one reminder goes out; a per-day set keeps it one-shot, and once
  PM OUT is recorded the shape stops matching anyway.

FAILURE ISOLATION:
  A store or delivery failure for one user is logged and the pass moves on.
  The scheduler never writes the event log.

USAGE:
  s := dtr.NewReminderScheduler(log, roster, notifier, clock, rules)
  s.Start()
  defer s.Stop()
*/
package dtr

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ReminderScheduler runs the periodic near-threshold pass.
type ReminderScheduler struct {
	Log      EventLog
	Roster   Roster
	Notifier Notifier
	Clock    *Clock
	Rules    Rules

	// Interval is the pass cadence (default: 1 minute).
	Interval time.Duration
	// Lead is how close to the target a user must be (default: 5 minutes).
	Lead time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	// notified keys are user|date; entries from past days are pruned.
	notified map[string]bool
}

// NewReminderScheduler builds a scheduler with the default cadence.
func NewReminderScheduler(eventLog EventLog, roster Roster, notifier Notifier, clock *Clock, rules Rules) *ReminderScheduler {
	return &ReminderScheduler{
		Log:      eventLog,
		Roster:   roster,
		Notifier: notifier,
		Clock:    clock,
		Rules:    rules,
		Interval: 1 * time.Minute,
		Lead:     5 * time.Minute,
		stop:     make(chan struct{}),
		notified: make(map[string]bool),
	}
}

// Start begins the background loop.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		return
	}
	rs.ticker = time.NewTicker(rs.Interval)
	rs.wg.Add(1)
	go rs.run()
	log.Printf("[Reminder] Started with interval %v, lead %v", rs.Interval, rs.Lead)
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker == nil {
		return
	}
	rs.ticker.Stop()
	close(rs.stop)
	rs.wg.Wait()
	rs.ticker = nil
	log.Println("[Reminder] Stopped")
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()
	for {
		select {
		case <-rs.ticker.C:
			rs.Pass(context.Background())
		case <-rs.stop:
			return
		}
	}
}

// Pass runs one sweep over the roster. Exported so tests and admin tooling
// can trigger it directly.
func (rs *ReminderScheduler) Pass(ctx context.Context) {
	users, err := rs.Roster.ListUsers(ctx)
	if err != nil {
		log.Printf("[Reminder] Error listing users: %v", err)
		return
	}

	date := rs.Clock.Today()
	rs.pruneOldKeys(date)

	for _, user := range users {
		if err := rs.checkUser(ctx, user, date); err != nil {
			log.Printf("[Reminder] %s: %v", user.ID, err)
		}
	}
}

// pruneOldKeys drops dedupe entries that are not for the current date.
func (rs *ReminderScheduler) pruneOldKeys(date time.Time) {
	suffix := "|" + date.Format("2006-01-02")
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for key := range rs.notified {
		if !strings.HasSuffix(key, suffix) {
			delete(rs.notified, key)
		}
	}
}

// checkUser evaluates one user and notifies at most once per day.
func (rs *ReminderScheduler) checkUser(ctx context.Context, user UserProfile, date time.Time) error {
	key := string(user.ID) + "|" + date.Format("2006-01-02")
	rs.mu.Lock()
	done := rs.notified[key]
	rs.mu.Unlock()
	if done {
		return nil
	}

	events, err := rs.Log.QueryByUserAndDate(ctx, user.ID, date)
	if err != nil {
		return &StoreError{Op: "query", Err: err}
	}
	rec := Reconstruct(user.ID, date, events)

	remaining, ok := rs.remainingToTarget(rec)
	if !ok {
		return nil
	}
	lead := decimal.NewFromFloat(rs.Lead.Minutes())
	if remaining.GreaterThan(lead) {
		return nil
	}

	msg := reminderMessage(remaining, rs.Rules.RequiredHours)
	// One-shot either way: a failed delivery is logged, not retried.
	rs.mu.Lock()
	rs.notified[key] = true
	rs.mu.Unlock()

	if err := rs.Notifier.Notify(ctx, user, msg); err != nil {
		return &DeliveryError{User: user.ID, Err: err}
	}
	return nil
}

// remainingToTarget returns minutes left to the required hours, with the
// current instant standing in for the missing PM OUT. ok is false when the
// record shape is not an open afternoon.
func (rs *ReminderScheduler) remainingToTarget(rec DailyRecord) (decimal.Decimal, bool) {
	if rec.AMIn == "" || rec.AMOut == "" || rec.PMIn == "" || rec.PMOut != "" {
		return decimal.Zero, false
	}
	if rec.PMIn == NotAvailable || rec.PMOut == NotAvailable {
		return decimal.Zero, false
	}

	morning, err := spanMinutes(rec.AMIn, rec.AMOut)
	if err != nil || morning < 0 {
		return decimal.Zero, false
	}
	pmIn, err := ParseWallClock(rec.PMIn)
	if err != nil {
		return decimal.Zero, false
	}
	now := WallClockOf(rs.Clock.Now())
	afternoon := now.Minutes() - pmIn.Minutes()
	if afternoon < 0 {
		return decimal.Zero, false
	}

	requiredMinutes := rs.Rules.RequiredHours.Mul(minutesPerHour)
	workedMinutes := decimal.NewFromInt(int64(morning + afternoon))
	return requiredMinutes.Sub(workedMinutes), true
}

func reminderMessage(remaining decimal.Decimal, required decimal.Decimal) string {
	if remaining.IsPositive() {
		return fmt.Sprintf("You are %s away from your %s-hour requirement. Don't forget to clock PM OUT!",
			FormatDuration(remaining.Div(minutesPerHour)), required.String())
	}
	return fmt.Sprintf("You have reached your %s-hour requirement. Don't forget to clock PM OUT!", required.String())
}

// LogNotifier is the default sink: it writes reminders to the process log.
// Real deployments swap in the chat front end's delivery channel.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, user UserProfile, message string) error {
	log.Printf("[Reminder] -> %s (%s): %s", user.DisplayName, user.ID, message)
	return nil
}
