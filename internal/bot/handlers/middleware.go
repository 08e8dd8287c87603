// Package handlers contains the Telegram command handlers, their
// registration, and the owner-gate middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// OwnerOnly gates delivery commands that do not themselves mutate state.
// The first caller to pass the gate claims ownership; every later caller
// must match it. Mutating commands instead gate inside Store.Mutate so
// the ownership claim commits atomically with the mutation.
func OwnerOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if !validMessage(update) {
				return
			}

			userID := update.Message.From.ID
			if _, err := deps.Store.Authorize(userID); err != nil {
				log := deps.Logger.With("middleware", "owner_only")
				log.WarnContext(ctx, "Rejected non-owner command",
					"user_id", userID, "chat_id", update.Message.Chat.ID)
				deps.replyError(ctx, update.Message, err)
				return
			}

			next(ctx, bot, update)
		}
	}
}
