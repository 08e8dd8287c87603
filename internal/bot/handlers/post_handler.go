package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/render"
)

// NewPreviewHandler returns the handler for /preview: it renders the text
// payload and replies in the invoking chat without touching the bound
// destination.
func NewPreviewHandler(deps HandlerDeps) bot.HandlerFunc {
	return previewHandler{deps}.Handle
}

type previewHandler struct {
	deps HandlerDeps
}

func (h previewHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		return
	}

	rec := h.deps.Store.Load()
	now := time.Now().In(rec.Location(h.deps.Config.DefaultTimezone))

	username := update.Message.From.Username
	text := render.Text(rec.Tasks, now, rec.Template, username)

	h.deps.reply(ctx, update.Message, text)
}

// NewPostNowHandler returns the handler for /postnow: immediate plain-text
// delivery to the bound destination.
func NewPostNowHandler(deps HandlerDeps) bot.HandlerFunc {
	return postNowHandler{deps}.Handle
}

type postNowHandler struct {
	deps HandlerDeps
}

func (h postNowHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		return
	}

	if err := h.deps.Scheduler.PostNow(ctx); err != nil {
		h.deps.replyError(ctx, update.Message, err)
		return
	}
	h.deps.reply(ctx, update.Message, "Sent the task list as a message.")
}

// NewPollNowHandler returns the handler for /pollnow: immediate poll
// delivery to the bound destination. An empty list degrades to text.
func NewPollNowHandler(deps HandlerDeps) bot.HandlerFunc {
	return pollNowHandler{deps}.Handle
}

type pollNowHandler struct {
	deps HandlerDeps
}

func (h pollNowHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		return
	}

	if err := h.deps.Scheduler.PollNow(ctx); err != nil {
		h.deps.replyError(ctx, update.Message, err)
		return
	}
	h.deps.reply(ctx, update.Message, "Sent the task list as a poll.")
}
