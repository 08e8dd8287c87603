package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewHistoryHandler returns the handler for /history: the most recent
// delivery attempts from the journal, newest first.
func NewHistoryHandler(deps HandlerDeps) bot.HandlerFunc {
	return historyHandler{deps}.Handle
}

type historyHandler struct {
	deps HandlerDeps
}

func (h historyHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}
	log := h.deps.Logger.With("handler", "history")

	deliveries, err := h.deps.Journal.RecentDeliveries(ctx, h.deps.Config.HistoryLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to fetch delivery history", "error", err)
		h.deps.reply(ctx, update.Message, "Could not read the delivery history.")
		return
	}

	if len(deliveries) == 0 {
		h.deps.reply(ctx, update.Message, "No deliveries recorded yet.")
		return
	}

	var b strings.Builder
	b.WriteString("Recent deliveries:\n")
	for _, d := range deliveries {
		line := fmt.Sprintf("%s  %s  %d task(s) in %d part(s)  %s",
			d.CreatedAt.Format("2006-01-02 15:04"), d.Kind, d.TaskCount, d.Parts, d.Status)
		if d.Status != "sent" && d.Detail != "" {
			line += ": " + d.Detail
		}
		b.WriteString(line + "\n")
	}

	h.deps.reply(ctx, update.Message, strings.TrimRight(b.String(), "\n"))
}
