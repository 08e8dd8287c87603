package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const usageText = `I deliver your task list once a day as a multi-select poll.

/bind - bind this chat (or topic) as the delivery destination
/whereami - show chat/thread ids and the next delivery
/addtask <text> - append a task
/deltask <n> - remove task number n
/listtasks - show the numbered task list
/cleartasks - remove all tasks
/settime HH:MM - set the daily delivery time
/settz <zone> - set the IANA timezone (e.g. Europe/Berlin)
/settemplate <text> - message for days with no tasks ({date} {weekday} {time} {username})
/preview - render today's message here
/postnow - deliver the list now as text
/pollnow - deliver the list now as a poll
/history - recent delivery outcomes`

// NewStartHandler returns the handler for /start and /help.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}
	h.deps.reply(ctx, update.Message, usageText)
}
