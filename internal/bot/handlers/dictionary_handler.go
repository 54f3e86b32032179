package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/classbot/internal/config"
	"github.com/edgard/classbot/internal/lookup"
)

// NewUrbanHandler returns a handler for /ud.
func NewUrbanHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newDictionaryHandler(deps, "ud", lookup.DictionaryUrban))
}

// NewOxfordHandler returns a handler for /od.
func NewOxfordHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newDictionaryHandler(deps, "od", lookup.DictionaryOxford))
}

func newDictionaryHandler(deps HandlerDeps, command string, dict lookup.Dictionary) handleFunc {
	log := deps.Logger.With("handler", command)

	return withArgument(deps, command, func(ctx context.Context, s Sender, msg *models.Message, arg string) {
		res := deps.Gateway.Lookup(ctx, lookup.Request{Query: arg, Mode: lookup.ModeDefinition, Dictionary: dict})

		switch v := res.(type) {
		case lookup.DefinitionResult:
			_ = sendMarkdown(ctx, s, log, msg.Chat.ID, FormatDefinition(deps.Config.Messages, v))
		case *lookup.Failure:
			if v.Kind == lookup.KindNotFound {
				log.InfoContext(ctx, "No definition found", "dictionary", dict.String())
				_ = sendText(ctx, s, log, msg.Chat.ID, deps.Config.Messages.NotFound)
				return
			}
			log.WarnContext(ctx, "Definition lookup failed", "dictionary", dict.String(), "kind", v.Kind.String(), "error", v)
			_ = sendText(ctx, s, log, msg.Chat.ID, v.Reason)
		default:
			log.ErrorContext(ctx, "Unexpected definition result", "type", lookup.Outcome(res))
		}
	})
}

// FormatDefinition renders a definition as Markdown, with the example
// section only when the dictionary returned one.
func FormatDefinition(msgs config.MessagesConfig, d lookup.DefinitionResult) string {
	var b strings.Builder
	b.WriteString(msgs.DefinitionHeader)
	b.WriteString("\n")
	b.WriteString(escapeMarkdown(d.Definition))
	if ex := strings.TrimSpace(d.Example); ex != "" {
		b.WriteString("\n\n")
		b.WriteString(msgs.ExampleHeader)
		b.WriteString("\n")
		b.WriteString(escapeMarkdown(ex))
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// escapeMarkdown escapes the legacy Markdown entities so that
// provider text cannot break the message formatting.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
