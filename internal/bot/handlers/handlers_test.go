package handlers

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/config"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/journal"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/state"
)

type fakeSender struct {
	replies []string
}

func (f *fakeSender) SendText(_ context.Context, _, _ int64, text string) error {
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeSender) last() string {
	if len(f.replies) == 0 {
		return ""
	}
	return f.replies[len(f.replies)-1]
}

type fakeScheduler struct {
	rearms   int
	postNows int
	pollNows int
	nextRun  time.Time
	err      error
}

func (f *fakeScheduler) Rearm(context.Context) error { f.rearms++; return f.err }
func (f *fakeScheduler) Armed() bool                 { return !f.nextRun.IsZero() }
func (f *fakeScheduler) NextRun() (time.Time, bool)  { return f.nextRun, !f.nextRun.IsZero() }
func (f *fakeScheduler) PostNow(context.Context) error {
	f.postNows++
	return f.err
}
func (f *fakeScheduler) PollNow(context.Context) error {
	f.pollNows++
	return f.err
}

type fakeJournal struct {
	entries []journal.Delivery
}

func (f *fakeJournal) Ping(context.Context) error                              { return nil }
func (f *fakeJournal) RecordDelivery(_ context.Context, d *journal.Delivery) error {
	f.entries = append(f.entries, *d)
	return nil
}
func (f *fakeJournal) RecentDeliveries(_ context.Context, limit int) ([]journal.Delivery, error) {
	if limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDeps(t *testing.T) (HandlerDeps, *fakeSender, *fakeScheduler) {
	t.Helper()

	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"), "09:00", "UTC", nil)
	gw := &fakeSender{}
	sched := &fakeScheduler{}

	deps := HandlerDeps{
		Logger:    testLogger(),
		Config:    &config.Config{DefaultTimezone: "UTC", HistoryLimit: 10},
		Store:     store,
		Journal:   &fakeJournal{},
		Gateway:   gw,
		Scheduler: sched,
	}
	return deps, gw, sched
}

func commandUpdate(userID, chatID int64, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			Chat: models.Chat{ID: chatID},
			From: &models.User{ID: userID},
			Text: text,
		},
	}
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  string
	}{
		{input: "/addtask Buy milk", want: "Buy milk"},
		{input: "/addtask", want: ""},
		{input: "/addtask   ", want: ""},
		{input: "/settime 09:30", want: "09:30"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			if got := commandArgs(tc.input); got != tc.want {
				t.Errorf("commandArgs(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestMessageOrigin(t *testing.T) {
	t.Parallel()

	msg := &models.Message{Chat: models.Chat{ID: -100}, MessageThreadID: 7}
	if _, threadID := messageOrigin(msg); threadID != 0 {
		t.Errorf("thread id = %d for a non-topic message, want 0", threadID)
	}

	msg.IsTopicMessage = true
	chatID, threadID := messageOrigin(msg)
	if chatID != -100 || threadID != 7 {
		t.Errorf("origin = (%d, %d), want (-100, 7)", chatID, threadID)
	}
}

func TestAddTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("appends and confirms", func(t *testing.T) {
		t.Parallel()

		deps, gw, _ := newTestDeps(t)
		handler := NewAddTaskHandler(deps)

		handler(context.Background(), nil, commandUpdate(42, 100, "/addtask Buy milk"))

		rec := deps.Store.Load()
		if len(rec.Tasks) != 1 || rec.Tasks[0] != "Buy milk" {
			t.Errorf("tasks = %v", rec.Tasks)
		}
		if rec.OwnerID != 42 {
			t.Errorf("owner = %d, want 42", rec.OwnerID)
		}
		if !strings.Contains(gw.last(), "Buy milk") {
			t.Errorf("confirmation = %q", gw.last())
		}
	})

	t.Run("empty text is rejected without state change", func(t *testing.T) {
		t.Parallel()

		deps, gw, _ := newTestDeps(t)
		handler := NewAddTaskHandler(deps)

		handler(context.Background(), nil, commandUpdate(42, 100, "/addtask"))

		rec := deps.Store.Load()
		if len(rec.Tasks) != 0 {
			t.Errorf("tasks = %v, want none", rec.Tasks)
		}
		if rec.OwnerID != 0 {
			t.Errorf("owner claimed by a failed command: %d", rec.OwnerID)
		}
		if !strings.Contains(gw.last(), "usage") {
			t.Errorf("reply %q is not a usage hint", gw.last())
		}
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		t.Parallel()

		deps, gw, _ := newTestDeps(t)
		handler := NewAddTaskHandler(deps)

		handler(context.Background(), nil, commandUpdate(42, 100, "/addtask mine"))
		handler(context.Background(), nil, commandUpdate(43, 100, "/addtask theirs"))

		rec := deps.Store.Load()
		if len(rec.Tasks) != 1 {
			t.Errorf("tasks = %v, want only the owner's", rec.Tasks)
		}
		if !strings.Contains(gw.last(), "owner") {
			t.Errorf("rejection reply = %q", gw.last())
		}
	})
}

func TestDelTaskHandler(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (HandlerDeps, *fakeSender) {
		deps, gw, _ := newTestDeps(t)
		if _, err := deps.Store.Mutate(42, func(r *state.Record) error {
			r.Tasks = []string{"one", "two", "three"}
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		return deps, gw
	}

	t.Run("removes by 1-based index", func(t *testing.T) {
		t.Parallel()

		deps, gw := setup(t)
		NewDelTaskHandler(deps)(context.Background(), nil, commandUpdate(42, 100, "/deltask 2"))

		rec := deps.Store.Load()
		if len(rec.Tasks) != 2 || rec.Tasks[0] != "one" || rec.Tasks[1] != "three" {
			t.Errorf("tasks = %v", rec.Tasks)
		}
		if !strings.Contains(gw.last(), "two") {
			t.Errorf("confirmation = %q", gw.last())
		}
	})

	testCases := []struct {
		name string
		arg  string
	}{
		{name: "out of range high", arg: "/deltask 4"},
		{name: "zero", arg: "/deltask 0"},
		{name: "negative", arg: "/deltask -1"},
		{name: "not a number", arg: "/deltask two"},
		{name: "missing", arg: "/deltask"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			deps, _ := setup(t)
			NewDelTaskHandler(deps)(context.Background(), nil, commandUpdate(42, 100, tc.arg))

			if rec := deps.Store.Load(); len(rec.Tasks) != 3 {
				t.Errorf("tasks = %v, want unchanged", rec.Tasks)
			}
		})
	}
}

func TestSetTimeHandler(t *testing.T) {
	t.Parallel()

	t.Run("valid time is stored canonically and rearms", func(t *testing.T) {
		t.Parallel()

		deps, gw, sched := newTestDeps(t)
		NewSetTimeHandler(deps)(context.Background(), nil, commandUpdate(42, 100, "/settime 9:5"))

		if rec := deps.Store.Load(); rec.SendTime != "09:05" {
			t.Errorf("send time = %q, want 09:05", rec.SendTime)
		}
		if sched.rearms != 1 {
			t.Errorf("rearms = %d, want 1", sched.rearms)
		}
		if !strings.Contains(gw.last(), "09:05") {
			t.Errorf("confirmation = %q", gw.last())
		}
	})

	t.Run("invalid time leaves state unchanged and does not rearm", func(t *testing.T) {
		t.Parallel()

		deps, _, sched := newTestDeps(t)
		NewSetTimeHandler(deps)(context.Background(), nil, commandUpdate(42, 100, "/settime 25:00"))

		if rec := deps.Store.Load(); rec.SendTime != "09:00" {
			t.Errorf("send time = %q, want the default kept", rec.SendTime)
		}
		if sched.rearms != 0 {
			t.Errorf("rearms = %d, want 0 after rejected input", sched.rearms)
		}
	})
}

func TestSetTZHandler(t *testing.T) {
	t.Parallel()

	t.Run("valid zone", func(t *testing.T) {
		t.Parallel()

		deps, _, sched := newTestDeps(t)
		NewSetTZHandler(deps)(context.Background(), nil, commandUpdate(42, 100, "/settz Europe/Berlin"))

		if rec := deps.Store.Load(); rec.Timezone != "Europe/Berlin" {
			t.Errorf("timezone = %q", rec.Timezone)
		}
		if sched.rearms != 1 {
			t.Errorf("rearms = %d, want 1", sched.rearms)
		}
	})

	t.Run("unknown zone rejected", func(t *testing.T) {
		t.Parallel()

		deps, gw, sched := newTestDeps(t)
		NewSetTZHandler(deps)(context.Background(), nil, commandUpdate(42, 100, "/settz Mars/Olympus"))

		if rec := deps.Store.Load(); rec.Timezone != "UTC" {
			t.Errorf("timezone = %q, want the default kept", rec.Timezone)
		}
		if sched.rearms != 0 {
			t.Errorf("rearms = %d, want 0", sched.rearms)
		}
		if !strings.Contains(gw.last(), "Mars/Olympus") {
			t.Errorf("rejection reply = %q", gw.last())
		}
	})
}

func TestBindHandler(t *testing.T) {
	t.Parallel()

	deps, gw, sched := newTestDeps(t)

	update := commandUpdate(42, -100200, "/bind")
	update.Message.IsTopicMessage = true
	update.Message.MessageThreadID = 5

	NewBindHandler(deps)(context.Background(), nil, update)

	rec := deps.Store.Load()
	if rec.ChatID != -100200 || rec.ThreadID != 5 {
		t.Errorf("destination = (%d, %d), want (-100200, 5)", rec.ChatID, rec.ThreadID)
	}
	if sched.rearms != 1 {
		t.Errorf("rearms = %d, want 1", sched.rearms)
	}
	if !strings.Contains(gw.last(), "-100200") {
		t.Errorf("confirmation = %q", gw.last())
	}
}

func TestPostNowHandlers(t *testing.T) {
	t.Parallel()

	deps, gw, sched := newTestDeps(t)

	NewPostNowHandler(deps)(context.Background(), nil, commandUpdate(42, 100, "/postnow"))
	if sched.postNows != 1 {
		t.Errorf("postNows = %d, want 1", sched.postNows)
	}

	NewPollNowHandler(deps)(context.Background(), nil, commandUpdate(42, 100, "/pollnow"))
	if sched.pollNows != 1 {
		t.Errorf("pollNows = %d, want 1", sched.pollNows)
	}

	if len(gw.replies) != 2 {
		t.Errorf("replies = %v", gw.replies)
	}
}

func TestOwnerOnlyMiddleware(t *testing.T) {
	t.Parallel()

	deps, gw, _ := newTestDeps(t)

	var calls int
	gated := OwnerOnly(deps)(func(context.Context, *tgbot.Bot, *models.Update) {
		calls++
	})

	// First caller claims ownership and passes.
	gated(context.Background(), nil, commandUpdate(42, 100, "/postnow"))
	if calls != 1 {
		t.Fatalf("calls = %d after first caller, want 1", calls)
	}

	// A different user is rejected before the handler runs.
	gated(context.Background(), nil, commandUpdate(43, 100, "/postnow"))
	if calls != 1 {
		t.Errorf("calls = %d after non-owner, want still 1", calls)
	}
	if !strings.Contains(gw.last(), "owner") {
		t.Errorf("rejection reply = %q", gw.last())
	}

	// The owner keeps access.
	gated(context.Background(), nil, commandUpdate(42, 100, "/postnow"))
	if calls != 2 {
		t.Errorf("calls = %d after owner's second call, want 2", calls)
	}
}
