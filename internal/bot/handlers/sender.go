package handlers

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/classbot/internal/lookup"
)

// Sender is the subset of the Bot API the handlers use.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	ForwardMessage(ctx context.Context, params *bot.ForwardMessageParams) (*models.Message, error)
}

var _ Sender = (*bot.Bot)(nil)

// handleFunc is a handler body that talks to Telegram through a Sender.
type handleFunc func(ctx context.Context, s Sender, update *models.Update)

// asHandler adapts fn to the library's handler signature.
func asHandler(fn handleFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		fn(ctx, b, update)
	}
}

func sendText(ctx context.Context, s Sender, log *slog.Logger, chatID int64, text string) error {
	_, err := s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
	return err
}

func sendMarkdown(ctx context.Context, s Sender, log *slog.Logger, chatID int64, text string) error {
	_, err := s.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send markdown message", "error", err, "chat_id", chatID)
	}
	return err
}

func sendImage(ctx context.Context, s Sender, log *slog.Logger, chatID int64, img lookup.ImageResult) error {
	ext := img.Ext
	if ext == "" {
		ext = ".gif"
	}
	_, err := s.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: "answer" + ext, Data: bytes.NewReader(img.Data)},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send image", "error", err, "chat_id", chatID, "size", len(img.Data))
	}
	return err
}

// chatReplier delivers fallback chain output to one chat.
type chatReplier struct {
	sender Sender
	chatID int64
	logger *slog.Logger
}

func (r chatReplier) ReplyText(ctx context.Context, text string) error {
	return sendText(ctx, r.sender, r.logger, r.chatID, text)
}

func (r chatReplier) ReplyImage(ctx context.Context, img lookup.ImageResult) error {
	return sendImage(ctx, r.sender, r.logger, r.chatID, img)
}
