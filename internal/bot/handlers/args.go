package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/classbot/internal/metrics"
)

// ArgumentSource tells where a command's argument came from.
type ArgumentSource int

const (
	ArgumentNone ArgumentSource = iota
	ArgumentInline
	ArgumentReplied
)

func (s ArgumentSource) String() string {
	switch s {
	case ArgumentInline:
		return "inline"
	case ArgumentReplied:
		return "replied"
	default:
		return "none"
	}
}

// ResolveArgument returns the text after the command token or, when there
// is none, the text of the message being replied to.
func ResolveArgument(msg *models.Message) (string, ArgumentSource) {
	if msg == nil {
		return "", ArgumentNone
	}
	if arg := commandArgument(msg.Text); arg != "" {
		return arg, ArgumentInline
	}
	if msg.ReplyToMessage != nil {
		if arg := strings.TrimSpace(msg.ReplyToMessage.Text); arg != "" {
			return arg, ArgumentReplied
		}
	}
	return "", ArgumentNone
}

// commandArgument drops the leading /command or /command@bot token.
func commandArgument(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	i := strings.IndexFunc(text, isSpace)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// argumentBody is a command body that runs only with a resolved argument.
type argumentBody func(ctx context.Context, s Sender, msg *models.Message, arg string)

// withArgument resolves the argument of command and runs body, or sends the
// usage prompt when there is nothing to work with.
func withArgument(deps HandlerDeps, command string, body argumentBody) handleFunc {
	log := deps.Logger.With("handler", command)

	return func(ctx context.Context, s Sender, update *models.Update) {
		msg := update.Message
		if msg == nil {
			log.WarnContext(ctx, "Handler received update without message", "update_id", update.ID)
			return
		}
		metrics.IncCommand(command)

		arg, source := ResolveArgument(msg)
		if source == ArgumentNone {
			log.DebugContext(ctx, "No argument, sending usage prompt", "chat_id", msg.Chat.ID)
			metrics.IncUsagePrompt(command)
			_ = sendText(ctx, s, log, msg.Chat.ID, deps.Config.Messages.Usage)
			return
		}

		log.InfoContext(ctx, "Handling command", "chat_id", msg.Chat.ID, "argument_source", source.String())
		body(ctx, s, msg, arg)
	}
}
