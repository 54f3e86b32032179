package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/classbot/internal/lookup"
)

// NewWolframHandler returns a handler for /wa. It runs the fallback chain:
// a short answer first, the rendered image when none exists.
func NewWolframHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newWolframHandler(deps))
}

func newWolframHandler(deps HandlerDeps) handleFunc {
	log := deps.Logger.With("handler", "wa")

	return withArgument(deps, "wa", func(ctx context.Context, s Sender, msg *models.Message, arg string) {
		r := chatReplier{sender: s, chatID: msg.Chat.ID, logger: log}
		state, err := deps.Chain.Run(ctx, arg, r)
		if err != nil {
			log.ErrorContext(ctx, "Failed to deliver answer", "error", err, "state", state.String())
		}
	})
}

// NewWolframSimpleHandler returns a handler for /wa_simple, which always
// answers with the rendered image.
func NewWolframSimpleHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newWolframSimpleHandler(deps))
}

func newWolframSimpleHandler(deps HandlerDeps) handleFunc {
	log := deps.Logger.With("handler", "wa_simple")

	return withArgument(deps, "wa_simple", func(ctx context.Context, s Sender, msg *models.Message, arg string) {
		switch res := deps.Images.Image(ctx, arg).(type) {
		case lookup.ImageResult:
			_ = sendImage(ctx, s, log, msg.Chat.ID, res)
		case *lookup.Failure:
			log.WarnContext(ctx, "Image lookup failed", "kind", res.Kind.String(), "error", res)
			_ = sendText(ctx, s, log, msg.Chat.ID, res.Reason)
		default:
			log.ErrorContext(ctx, "Unexpected image lookup result", "type", lookup.Outcome(res))
		}
	})
}
