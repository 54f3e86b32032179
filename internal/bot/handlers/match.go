package handlers

import (
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// parseCommand splits a leading "/name@mention" token. ok is false when
// text does not start with a command.
func parseCommand(text string) (name, mention string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	token := text[1:]
	if i := strings.IndexFunc(token, isSpace); i >= 0 {
		token = token[:i]
	}
	name, mention, _ = strings.Cut(token, "@")
	return name, mention, name != ""
}

// addressedToUs reports whether a command mention targets this bot. A bare
// command is addressed to every bot in the chat.
func addressedToUs(mention, username string) bool {
	return mention == "" || (username != "" && strings.EqualFold(mention, username))
}

// startsWithCommandEntity reports whether msg opens with a bot_command
// entity, which is how Telegram marks a command the client recognised.
func startsWithCommandEntity(msg *models.Message) bool {
	for _, e := range msg.Entities {
		if e.Type == models.MessageEntityTypeBotCommand && e.Offset == 0 {
			return true
		}
	}
	return false
}

// CommandMatcher matches "/name", "/name args" and "/name@<bot> args" where
// <bot> is this bot's username. Commands for other bots do not match.
func CommandMatcher(deps HandlerDeps, name string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		if update == nil || update.Message == nil || !startsWithCommandEntity(update.Message) {
			return false
		}
		got, mention, ok := parseCommand(update.Message.Text)
		return ok && got == name && addressedToUs(mention, deps.botUsername())
	}
}
