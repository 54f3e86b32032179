package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSendHandler returns a handler for /send, which relays its argument to
// the destination group. It must be wrapped with ControlChatOnly.
func NewSendHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newSendHandler(deps))
}

func newSendHandler(deps HandlerDeps) handleFunc {
	log := deps.Logger.With("handler", "send")

	return withArgument(deps, "send", func(ctx context.Context, s Sender, msg *models.Message, arg string) {
		dest := deps.Config.Telegram.DestinationChatID
		if err := sendText(ctx, s, log, dest, arg); err == nil {
			log.InfoContext(ctx, "Relayed message to group", "destination_chat_id", dest, "length", len(arg))
		}
	})
}
