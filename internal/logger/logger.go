// Package logger provides structured logging for the bot.
// It uses Go's slog package with configurable levels and formats.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/classbot/internal/metrics"
)

// NewLogger creates a new slog Logger with the specified level and format.
// If jsonOutput is true, logs will be formatted as JSON, otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Middleware creates a logging middleware for the Telegram bot.
// It logs every incoming message and channel post and counts updates by type.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()

			updateType, logEntry := describeUpdate(log.With("update_id", update.ID), update)
			metrics.IncUpdate(updateType)

			logEntry.DebugContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.InfoContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

func describeUpdate(log *slog.Logger, update *models.Update) (string, *slog.Logger) {
	switch {
	case update.Message != nil:
		msg := update.Message
		var userID int64
		if msg.From != nil {
			userID = msg.From.ID
		}
		return "message", log.With(
			"update_type", "message",
			"message_id", msg.ID,
			"chat_id", msg.Chat.ID,
			"user_id", userID,
			"text_preview", truncateString(msg.Text, 50),
		)
	case update.ChannelPost != nil:
		post := update.ChannelPost
		var senderChatID int64
		if post.SenderChat != nil {
			senderChatID = post.SenderChat.ID
		}
		return "channel_post", log.With(
			"update_type", "channel_post",
			"message_id", post.ID,
			"chat_id", post.Chat.ID,
			"sender_chat_id", senderChatID,
		)
	default:
		return "other", log.With("update_type", "other")
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}
