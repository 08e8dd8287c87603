package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/errs"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/journal"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/render"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/state"
)

// Sender is the delivery boundary the scheduler needs. Satisfied by
// *telegram.Gateway in production and by fakes in tests.
type Sender interface {
	SendText(ctx context.Context, chatID, threadID int64, text string) error
	SendPoll(ctx context.Context, chatID, threadID int64, question string, options []string) error
}

// Scheduler owns the single recurring daily trigger. It is Dormant while
// no destination chat is bound or the send time is unparseable, and Armed
// otherwise, with exactly one pending trigger at the next occurrence of
// the send time in the record's timezone.
type Scheduler struct {
	logger          *slog.Logger
	store           *state.Store
	journal         journal.Store
	gateway         Sender
	defaultTimezone string
	username        func() string

	mu    sync.Mutex
	sched gocron.Scheduler // nil while dormant
}

// NewScheduler creates a dormant scheduler. username supplies the bot
// username for template expansion and may be nil. Call Rearm to arm it
// from the persisted record.
func NewScheduler(logger *slog.Logger, store *state.Store, jstore journal.Store, gateway Sender, defaultTimezone string, username func() string) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if username == nil {
		username = func() string { return "" }
	}
	return &Scheduler{
		logger:          logger.With("component", "scheduler"),
		store:           store,
		journal:         jstore,
		gateway:         gateway,
		defaultTimezone: defaultTimezone,
		username:        username,
	}
}

// Rearm replaces the pending trigger with one computed from the current
// record: it shuts down any existing trigger (a missing one is not an
// error), re-reads the record, and arms when a destination is bound and
// the send time parses. Full replacement rather than patching, so a
// timezone change always recomputes the next fire instant. Must be called
// after every mutation of destination, send time, or timezone.
func (s *Scheduler) Rearm(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != nil {
		if err := s.sched.Shutdown(); err != nil {
			s.logger.WarnContext(ctx, "Error shutting down previous trigger", "error", err)
		}
		s.sched = nil
	}

	rec := s.store.Load()

	hour, minute, err := state.ParseSendTime(rec.SendTime)
	if !rec.Bound() || err != nil {
		s.logger.InfoContext(ctx, "Scheduler dormant",
			"bound", rec.Bound(), "send_time", rec.SendTime)
		return nil
	}

	loc := rec.Location(s.defaultTimezone)

	gs, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	job, err := gs.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(func(taskCtx context.Context) {
			startTime := time.Now()
			s.logger.InfoContext(taskCtx, "Running daily delivery")
			if fireErr := s.Fire(taskCtx); fireErr != nil {
				s.logger.ErrorContext(taskCtx, "Daily delivery failed", "error", fireErr)
			}
			s.logger.InfoContext(taskCtx, "Finished daily delivery", "duration", time.Since(startTime))
		}, context.Background()),
		gocron.WithName("daily_delivery"),
	)
	if err != nil {
		if shutdownErr := gs.Shutdown(); shutdownErr != nil {
			s.logger.WarnContext(ctx, "Error discarding unarmed scheduler", "error", shutdownErr)
		}
		return fmt.Errorf("failed to schedule daily delivery: %w", err)
	}

	gs.Start()
	s.sched = gs

	if next, nextErr := job.NextRun(); nextErr == nil {
		s.logger.InfoContext(ctx, "Scheduler armed",
			"send_time", rec.SendTime, "timezone", loc.String(), "next_run", next)
	}

	return nil
}

// Armed reports whether a pending daily trigger exists.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched != nil
}

// NextRun returns the next fire instant when armed.
func (s *Scheduler) NextRun() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched == nil {
		return time.Time{}, false
	}
	jobs := s.sched.Jobs()
	if len(jobs) == 0 {
		return time.Time{}, false
	}
	next, err := jobs[0].NextRun()
	if err != nil {
		return time.Time{}, false
	}
	return next, true
}

// Shutdown cancels the pending trigger, if any, and returns the scheduler
// to Dormant.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

// Fire performs one scheduled delivery. It reads the record fresh, so task
// edits made between arming and firing are reflected. No destination is a
// silent no-op; it should be unreachable while dormant. A delivery failure
// is reported and journaled but never cancels future firings.
func (s *Scheduler) Fire(ctx context.Context) error {
	rec := s.store.Load()
	if !rec.Bound() {
		s.logger.DebugContext(ctx, "Fire skipped, no destination bound")
		return nil
	}
	return s.deliver(ctx, rec, journal.KindPoll)
}

// PostNow delivers the task list immediately as plain text. Unlike Fire it
// reports an unbound destination to the caller.
func (s *Scheduler) PostNow(ctx context.Context) error {
	rec := s.store.Load()
	if !rec.Bound() {
		return errs.NewValidationError("no destination bound, use /bind in the target chat first", nil)
	}
	return s.deliver(ctx, rec, journal.KindText)
}

// PollNow delivers the task list immediately as polls. An empty list
// degrades to the text payload, never an empty poll.
func (s *Scheduler) PollNow(ctx context.Context) error {
	rec := s.store.Load()
	if !rec.Bound() {
		return errs.NewValidationError("no destination bound, use /bind in the target chat first", nil)
	}
	return s.deliver(ctx, rec, journal.KindPoll)
}

func (s *Scheduler) deliver(ctx context.Context, rec state.Record, kind string) error {
	now := time.Now().In(rec.Location(s.defaultTimezone))

	var (
		parts   int
		sendErr error
	)

	if kind == journal.KindPoll && len(rec.Tasks) > 0 {
		polls := render.Polls(rec.Tasks, now)
		for _, poll := range polls {
			if sendErr = s.gateway.SendPoll(ctx, rec.ChatID, rec.ThreadID, poll.Question, poll.Options); sendErr != nil {
				break
			}
			parts++
		}
	} else {
		kind = journal.KindText
		text := render.Text(rec.Tasks, now, rec.Template, s.username())
		if sendErr = s.gateway.SendText(ctx, rec.ChatID, rec.ThreadID, text); sendErr == nil {
			parts = 1
		}
	}

	entry := &journal.Delivery{
		Kind:      kind,
		ChatID:    rec.ChatID,
		ThreadID:  rec.ThreadID,
		Parts:     parts,
		TaskCount: len(rec.Tasks),
		Status:    journal.StatusSent,
	}
	if sendErr != nil {
		entry.Status = journal.StatusFailed
		entry.Detail = sendErr.Error()
	}
	if s.journal != nil {
		if jerr := s.journal.RecordDelivery(ctx, entry); jerr != nil {
			s.logger.WarnContext(ctx, "Failed to record delivery in journal", "error", jerr)
		}
	}

	if sendErr != nil {
		s.logger.ErrorContext(ctx, "Delivery failed",
			"chat_id", rec.ChatID, "kind", kind, "parts_sent", parts, "error", sendErr)
		return sendErr
	}

	s.logger.InfoContext(ctx, "Delivery complete",
		"chat_id", rec.ChatID, "kind", kind, "parts", parts, "tasks", len(rec.Tasks))
	return nil
}
