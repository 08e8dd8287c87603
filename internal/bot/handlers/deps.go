package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/config"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/journal"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/state"
)

// Sender is the slice of the delivery gateway the handlers use to reply
// to callers. Satisfied by *telegram.Gateway.
type Sender interface {
	SendText(ctx context.Context, chatID, threadID int64, text string) error
}

// Scheduler is the slice of the delivery scheduler the handlers drive:
// rearming after scheduling-relevant mutations and triggering immediate
// deliveries. Satisfied by *bot.Scheduler.
type Scheduler interface {
	Rearm(ctx context.Context) error
	Armed() bool
	NextRun() (time.Time, bool)
	PostNow(ctx context.Context) error
	PollNow(ctx context.Context) error
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     *state.Store
	Journal   journal.Store
	Gateway   Sender
	Scheduler Scheduler
}
