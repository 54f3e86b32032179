package handlers

import (
	"log/slog"
	"time"

	"github.com/edgard/classbot/internal/chain"
	"github.com/edgard/classbot/internal/config"
	"github.com/edgard/classbot/internal/lookup"
	"github.com/edgard/classbot/internal/timetable"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Gateway   lookup.Looker
	Chain     *chain.Chain
	Images    chain.ImageSource
	Timetable *timetable.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d HandlerDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d HandlerDeps) botUsername() string {
	if d.Config.Telegram.BotInfo == nil {
		return ""
	}
	return d.Config.Telegram.BotInfo.Username
}
