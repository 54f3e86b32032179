// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ControlChatOnly creates a middleware that lets an update through only
// when it comes from the configured control chat. Anything else is dropped
// without a reply.
func ControlChatOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil {
				return
			}

			chatID := update.Message.Chat.ID
			if chatID != deps.Config.Telegram.ControlChatID {
				log := deps.Logger.With("middleware", "ControlChatOnly")
				attrs := []any{"chat_id", chatID}
				if update.Message.From != nil {
					attrs = append(attrs, "user_id", update.Message.From.ID)
				}
				log.WarnContext(ctx, "Ignoring command from unauthorized chat", attrs...)
				return
			}

			next(ctx, bot, update)
		}
	}
}
