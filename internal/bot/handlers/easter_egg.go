package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/classbot/internal/metrics"
)

// EasterEggMatcher matches a message that is just the letter f, or the
// command /f addressed to this bot.
func EasterEggMatcher(deps HandlerDeps) bot.MatchFunc {
	return func(update *models.Update) bool {
		return isEasterEgg(update, deps.botUsername())
	}
}

func isEasterEgg(update *models.Update, username string) bool {
	if update == nil || update.Message == nil {
		return false
	}
	text := strings.TrimSpace(update.Message.Text)
	if strings.IndexFunc(text, isSpace) >= 0 {
		return false
	}
	if name, mention, ok := parseCommand(text); ok {
		return strings.EqualFold(name, "f") && addressedToUs(mention, username)
	}
	return strings.EqualFold(text, "f")
}

// NewEasterEggHandler returns the handler paired with EasterEggMatcher.
func NewEasterEggHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newEasterEggHandler(deps))
}

func newEasterEggHandler(deps HandlerDeps) handleFunc {
	log := deps.Logger.With("handler", "f")

	return func(ctx context.Context, s Sender, update *models.Update) {
		if !isEasterEgg(update, deps.botUsername()) {
			return
		}
		metrics.IncCommand("f")
		_ = sendText(ctx, s, log, update.Message.Chat.ID, deps.Config.Messages.EasterEgg)
	}
}
