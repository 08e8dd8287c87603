package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/errs"
)

// Gateway is the delivery boundary: it sends rendered payloads to a
// destination (chat + optional topic thread) and reports success or
// failure. Scheduler and handlers depend on it through their own small
// interfaces so tests can substitute fakes.
type Gateway struct {
	bot    *bot.Bot
	logger *slog.Logger
}

// NewGateway wraps a Telegram bot instance as a delivery gateway.
func NewGateway(b *bot.Bot, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		bot:    b,
		logger: logger.With("component", "gateway"),
	}
}

// SendText delivers a plain text message. threadID zero targets the chat
// itself rather than a topic thread.
func (g *Gateway) SendText(ctx context.Context, chatID, threadID int64, text string) error {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if threadID != 0 {
		params.MessageThreadID = int(threadID)
	}

	if _, err := g.bot.SendMessage(ctx, params); err != nil {
		g.logger.ErrorContext(ctx, "Failed to send text message", "chat_id", chatID, "thread_id", threadID, "error", err)
		return errs.NewDeliveryError(fmt.Sprintf("failed to send message to chat %d", chatID), err)
	}

	return nil
}

// SendPoll delivers one multi-select, non-anonymous poll. The transport
// allows at most 10 options per poll; callers chunk accordingly.
func (g *Gateway) SendPoll(ctx context.Context, chatID, threadID int64, question string, options []string) error {
	pollOptions := make([]models.InputPollOption, len(options))
	for i, opt := range options {
		pollOptions[i] = models.InputPollOption{Text: opt}
	}

	params := &bot.SendPollParams{
		ChatID:                chatID,
		Question:              question,
		Options:               pollOptions,
		IsAnonymous:           bot.False(),
		AllowsMultipleAnswers: true,
	}
	if threadID != 0 {
		params.MessageThreadID = int(threadID)
	}

	if _, err := g.bot.SendPoll(ctx, params); err != nil {
		g.logger.ErrorContext(ctx, "Failed to send poll", "chat_id", chatID, "thread_id", threadID, "error", err)
		return errs.NewDeliveryError(fmt.Sprintf("failed to send poll to chat %d", chatID), err)
	}

	return nil
}
