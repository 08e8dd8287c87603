package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/state"
)

// NewBindHandler returns the handler for /bind: it binds the invoking
// chat (and topic thread, when present) as the delivery destination and
// rearms the scheduler.
func NewBindHandler(deps HandlerDeps) bot.HandlerFunc {
	return bindHandler{deps}.Handle
}

type bindHandler struct {
	deps HandlerDeps
}

func (h bindHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		return
	}
	log := h.deps.Logger.With("handler", "bind")

	chatID, threadID := messageOrigin(update.Message)

	rec, err := h.deps.Store.Mutate(update.Message.From.ID, func(r *state.Record) error {
		r.ChatID = chatID
		r.ThreadID = threadID
		return nil
	})
	if err != nil {
		h.deps.replyError(ctx, update.Message, err)
		return
	}

	if err := h.deps.Scheduler.Rearm(ctx); err != nil {
		log.ErrorContext(ctx, "Failed to rearm after bind", "error", err)
	}

	log.InfoContext(ctx, "Destination bound", "chat_id", rec.ChatID, "thread_id", rec.ThreadID)
	h.deps.reply(ctx, update.Message, fmt.Sprintf(
		"Bound!\nchat_id = %d\nthread_id = %d\nDaily delivery at %s (%s).",
		rec.ChatID, rec.ThreadID, rec.SendTime, rec.Timezone))
}

// NewWhereAmIHandler returns the handler for /whereami: it reports the
// invoking chat and thread identifiers plus the scheduler state.
func NewWhereAmIHandler(deps HandlerDeps) bot.HandlerFunc {
	return whereAmIHandler{deps}.Handle
}

type whereAmIHandler struct {
	deps HandlerDeps
}

func (h whereAmIHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}

	chatID, threadID := messageOrigin(update.Message)
	text := fmt.Sprintf("chat_id = %d\nthread_id = %d", chatID, threadID)

	if next, ok := h.deps.Scheduler.NextRun(); ok {
		text += fmt.Sprintf("\nNext delivery: %s", next.Format("2006-01-02 15:04 MST"))
	} else {
		text += "\nScheduler is dormant (bind a chat and set a time)."
	}

	h.deps.reply(ctx, update.Message, text)
}
