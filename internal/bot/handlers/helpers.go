package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/Senerol1/raven-daily-tasks-bot/internal/errs"
)

// commandArgs returns the argument text following the command token,
// trimmed. "/addtask Buy milk" yields "Buy milk".
func commandArgs(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// messageOrigin extracts the invoking chat and topic thread from a message.
// A message outside a topic thread yields thread id 0.
func messageOrigin(msg *models.Message) (chatID, threadID int64) {
	chatID = msg.Chat.ID
	if msg.IsTopicMessage {
		threadID = int64(msg.MessageThreadID)
	}
	return chatID, threadID
}

// reply sends text back to the chat (and topic thread) the update came
// from, logging a failure instead of propagating it.
func (d HandlerDeps) reply(ctx context.Context, msg *models.Message, text string) {
	chatID, threadID := messageOrigin(msg)
	if err := d.Gateway.SendText(ctx, chatID, threadID, text); err != nil {
		d.Logger.ErrorContext(ctx, "Failed to send reply", "chat_id", chatID, "error", err)
	}
}

// replyError maps an application error to a user-facing corrective
// message. Invalid input is never silently dropped.
func (d HandlerDeps) replyError(ctx context.Context, msg *models.Message, err error) {
	var text string
	switch errs.Code(err) {
	case errs.CodeValidation:
		text = err.Error()
	case errs.CodeUnauthorized:
		text = "Only the bot owner can do that."
	case errs.CodeStorage:
		text = "Could not save the change, nothing was committed. Please try again."
	case errs.CodeDelivery:
		text = "Delivery failed: " + err.Error()
	default:
		text = "Something went wrong. Please try again."
	}
	d.reply(ctx, msg, text)
}

// validMessage reports whether the update carries a usable message with a
// sender.
func validMessage(update *models.Update) bool {
	return update != nil && update.Message != nil && update.Message.From != nil
}
