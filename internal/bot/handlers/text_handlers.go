package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/classbot/internal/metrics"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newReplyHandler(deps, "start", func() string {
		return withBotName(deps.Config.Messages.Welcome, deps.botUsername())
	}))
}

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newReplyHandler(deps, "help", func() string {
		return withBotName(deps.Config.Messages.Help, deps.botUsername())
	}))
}

// NewDonateHandler returns a handler for the /donate command.
func NewDonateHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newReplyHandler(deps, "donate", func() string { return deps.Config.Messages.Donate }))
}

// NewPingHandler returns a handler for the /ping liveness check.
func NewPingHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newReplyHandler(deps, "ping", func() string { return deps.Config.Messages.Ping }))
}

// newReplyHandler answers command with a fixed text.
func newReplyHandler(deps HandlerDeps, command string, text func() string) handleFunc {
	log := deps.Logger.With("handler", command)

	return func(ctx context.Context, s Sender, update *models.Update) {
		if update.Message == nil {
			log.WarnContext(ctx, "Handler received update without message", "update_id", update.ID)
			return
		}
		metrics.IncCommand(command)
		log.InfoContext(ctx, "Handling command", "chat_id", update.Message.Chat.ID)

		if err := sendText(ctx, s, log, update.Message.Chat.ID, text()); err == nil {
			log.DebugContext(ctx, "Reply sent", "chat_id", update.Message.Chat.ID)
		}
	}
}

func withBotName(text, username string) string {
	if username == "" {
		return text
	}
	return strings.ReplaceAll(text, "@botname", "@"+username)
}
