package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/classbot/internal/metrics"
)

// IsChannelPost matches channel_post updates.
func IsChannelPost(update *models.Update) bool {
	return update != nil && update.ChannelPost != nil
}

// NewChannelForwarder returns a handler that forwards posts of the source
// channel to the destination group.
func NewChannelForwarder(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newChannelForwarder(deps))
}

func newChannelForwarder(deps HandlerDeps) handleFunc {
	log := deps.Logger.With("handler", "channel_forwarder")

	return func(ctx context.Context, s Sender, update *models.Update) {
		post := update.ChannelPost
		if post == nil {
			return
		}

		senderID := post.Chat.ID
		if post.SenderChat != nil {
			senderID = post.SenderChat.ID
		}
		if senderID != deps.Config.Telegram.SourceChannelID {
			log.DebugContext(ctx, "Ignoring post from other channel", "sender_chat_id", senderID)
			return
		}

		dest := deps.Config.Telegram.DestinationChatID
		_, err := s.ForwardMessage(ctx, &bot.ForwardMessageParams{
			ChatID:     dest,
			FromChatID: post.Chat.ID,
			MessageID:  post.ID,
		})
		metrics.IncForward(err == nil)
		if err != nil {
			log.ErrorContext(ctx, "Failed to forward channel post", "error", err, "message_id", post.ID, "destination_chat_id", dest)
			return
		}
		log.InfoContext(ctx, "Forwarded channel post", "message_id", post.ID, "destination_chat_id", dest)
	}
}
