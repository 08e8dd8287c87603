package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/errs"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/state"
)

// NewSetTimeHandler returns the handler for /settime HH:MM. A valid time
// is stored in canonical form and the scheduler is rearmed; invalid input
// changes nothing.
func NewSetTimeHandler(deps HandlerDeps) bot.HandlerFunc {
	return setTimeHandler{deps}.Handle
}

type setTimeHandler struct {
	deps HandlerDeps
}

func (h setTimeHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		return
	}
	log := h.deps.Logger.With("handler", "settime")

	arg := commandArgs(update.Message.Text)

	rec, err := h.deps.Store.Mutate(update.Message.From.ID, func(r *state.Record) error {
		if arg == "" {
			return errs.NewValidationError("usage: /settime HH:MM", nil)
		}
		normalized, parseErr := state.NormalizeSendTime(arg)
		if parseErr != nil {
			return parseErr
		}
		r.SendTime = normalized
		return nil
	})
	if err != nil {
		h.deps.replyError(ctx, update.Message, err)
		return
	}

	if err := h.deps.Scheduler.Rearm(ctx); err != nil {
		log.ErrorContext(ctx, "Failed to rearm after settime", "error", err)
	}

	h.deps.reply(ctx, update.Message, fmt.Sprintf("OK, daily delivery at %s (%s).", rec.SendTime, rec.Timezone))
}

// NewSetTZHandler returns the handler for /settz <zone>. The zone must be
// a loadable IANA name.
func NewSetTZHandler(deps HandlerDeps) bot.HandlerFunc {
	return setTZHandler{deps}.Handle
}

type setTZHandler struct {
	deps HandlerDeps
}

func (h setTZHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		return
	}
	log := h.deps.Logger.With("handler", "settz")

	arg := commandArgs(update.Message.Text)

	rec, err := h.deps.Store.Mutate(update.Message.From.ID, func(r *state.Record) error {
		if arg == "" {
			return errs.NewValidationError("usage: /settz <IANA zone, e.g. Europe/Berlin>", nil)
		}
		if _, loadErr := time.LoadLocation(arg); loadErr != nil {
			return errs.NewValidationError(fmt.Sprintf("unknown timezone %q", arg), loadErr)
		}
		r.Timezone = arg
		return nil
	})
	if err != nil {
		h.deps.replyError(ctx, update.Message, err)
		return
	}

	if err := h.deps.Scheduler.Rearm(ctx); err != nil {
		log.ErrorContext(ctx, "Failed to rearm after settz", "error", err)
	}

	h.deps.reply(ctx, update.Message, fmt.Sprintf("OK, timezone set to %s, delivery at %s.", rec.Timezone, rec.SendTime))
}

// NewSetTemplateHandler returns the handler for /settemplate <text>. The
// template is used in place of the task list when the list is empty.
// Placeholders: {date}, {weekday}, {time}, {username}.
func NewSetTemplateHandler(deps HandlerDeps) bot.HandlerFunc {
	return setTemplateHandler{deps}.Handle
}

type setTemplateHandler struct {
	deps HandlerDeps
}

func (h setTemplateHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		return
	}

	arg := commandArgs(update.Message.Text)

	_, err := h.deps.Store.Mutate(update.Message.From.ID, func(r *state.Record) error {
		if arg == "" {
			return errs.NewValidationError("usage: /settemplate <text with {date} {weekday} {time} {username}>", nil)
		}
		r.Template = arg
		return nil
	})
	if err != nil {
		h.deps.replyError(ctx, update.Message, err)
		return
	}

	h.deps.reply(ctx, update.Message, "Template saved. It is used whenever the task list is empty.")
}
