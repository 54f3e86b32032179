package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDefaultHandler returns the handler for updates no other handler
// matched. Unknown commands get no reply.
func NewDefaultHandler(deps HandlerDeps) bot.HandlerFunc {
	log := deps.Logger.With("handler", "default")

	return func(ctx context.Context, _ *bot.Bot, update *models.Update) {
		if update.Message != nil {
			log.DebugContext(ctx, "Unhandled message", "chat_id", update.Message.Chat.ID, "update_id", update.ID)
			return
		}
		log.DebugContext(ctx, "Unhandled update", "update_id", update.ID)
	}
}
