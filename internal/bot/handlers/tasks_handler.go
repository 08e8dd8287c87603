package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/errs"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/render"
	"github.com/Senerol1/raven-daily-tasks-bot/internal/state"
)

// NewAddTaskHandler returns the handler for /addtask <text>.
func NewAddTaskHandler(deps HandlerDeps) bot.HandlerFunc {
	return addTaskHandler{deps}.Handle
}

type addTaskHandler struct {
	deps HandlerDeps
}

func (h addTaskHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		return
	}

	text := commandArgs(update.Message.Text)

	rec, err := h.deps.Store.Mutate(update.Message.From.ID, func(r *state.Record) error {
		if text == "" {
			return errs.NewValidationError("usage: /addtask <task text>", nil)
		}
		r.Tasks = append(r.Tasks, text)
		return nil
	})
	if err != nil {
		h.deps.replyError(ctx, update.Message, err)
		return
	}

	h.deps.reply(ctx, update.Message, fmt.Sprintf("Added %q. Total tasks: %d.", text, len(rec.Tasks)))
}

// NewDelTaskHandler returns the handler for /deltask <index>, 1-based.
func NewDelTaskHandler(deps HandlerDeps) bot.HandlerFunc {
	return delTaskHandler{deps}.Handle
}

type delTaskHandler struct {
	deps HandlerDeps
}

func (h delTaskHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		return
	}

	arg := commandArgs(update.Message.Text)

	var removed string
	rec, err := h.deps.Store.Mutate(update.Message.From.ID, func(r *state.Record) error {
		if arg == "" {
			return errs.NewValidationError("usage: /deltask <number>", nil)
		}
		idx, convErr := strconv.Atoi(arg)
		if convErr != nil {
			return errs.NewValidationError("the task number must be an integer", nil)
		}
		if idx < 1 || idx > len(r.Tasks) {
			return errs.NewValidationError(fmt.Sprintf("no task with number %d, the list has %d", idx, len(r.Tasks)), nil)
		}
		removed = r.Tasks[idx-1]
		r.Tasks = append(r.Tasks[:idx-1], r.Tasks[idx:]...)
		return nil
	})
	if err != nil {
		h.deps.replyError(ctx, update.Message, err)
		return
	}

	h.deps.reply(ctx, update.Message, fmt.Sprintf("Removed %q. Tasks left: %d.", removed, len(rec.Tasks)))
}

// NewListTasksHandler returns the handler for /listtasks.
func NewListTasksHandler(deps HandlerDeps) bot.HandlerFunc {
	return listTasksHandler{deps}.Handle
}

type listTasksHandler struct {
	deps HandlerDeps
}

func (h listTasksHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}

	rec := h.deps.Store.Load()
	if len(rec.Tasks) == 0 {
		h.deps.reply(ctx, update.Message, "The task list is empty.")
		return
	}
	h.deps.reply(ctx, update.Message, render.TaskList(rec.Tasks))
}

// NewClearTasksHandler returns the handler for /cleartasks.
func NewClearTasksHandler(deps HandlerDeps) bot.HandlerFunc {
	return clearTasksHandler{deps}.Handle
}

type clearTasksHandler struct {
	deps HandlerDeps
}

func (h clearTasksHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		return
	}

	var cleared int
	_, err := h.deps.Store.Mutate(update.Message.From.ID, func(r *state.Record) error {
		cleared = len(r.Tasks)
		r.Tasks = []string{}
		return nil
	})
	if err != nil {
		h.deps.replyError(ctx, update.Message, err)
		return
	}

	h.deps.reply(ctx, update.Message, fmt.Sprintf("Cleared %d task(s).", cleared))
}
