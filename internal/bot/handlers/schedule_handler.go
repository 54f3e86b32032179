package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/classbot/internal/metrics"
	"github.com/edgard/classbot/internal/timetable"
)

// NewScheduleHandler returns a handler for /schedule. The optional argument
// "tomorrow" shifts the date by one day.
func NewScheduleHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newScheduleHandler(deps))
}

func newScheduleHandler(deps HandlerDeps) handleFunc {
	log := deps.Logger.With("handler", "schedule")

	return func(ctx context.Context, s Sender, update *models.Update) {
		if update.Message == nil {
			log.WarnContext(ctx, "Handler received update without message", "update_id", update.ID)
			return
		}
		metrics.IncCommand("schedule")

		date := deps.now()
		if strings.EqualFold(commandArgument(update.Message.Text), "tomorrow") {
			date = date.AddDate(0, 0, 1)
		}

		sched := deps.Timetable.ScheduleFor(date)
		log.InfoContext(ctx, "Handling command",
			"chat_id", update.Message.Chat.ID,
			"date", sched.Date.Format(time.DateOnly),
			"parity", sched.Parity.String(),
			"weekend", sched.Weekend)

		_ = sendText(ctx, s, log, update.Message.Chat.ID, timetable.Render(sched, deps.Config.Messages.Weekend))
	}
}

// NewWeekHandler returns a handler for /week.
func NewWeekHandler(deps HandlerDeps) bot.HandlerFunc {
	return asHandler(newWeekHandler(deps))
}

func newWeekHandler(deps HandlerDeps) handleFunc {
	log := deps.Logger.With("handler", "week")

	return func(ctx context.Context, s Sender, update *models.Update) {
		if update.Message == nil {
			log.WarnContext(ctx, "Handler received update without message", "update_id", update.ID)
			return
		}
		metrics.IncCommand("week")

		text := deps.Config.Messages.WeekSecond
		if deps.Timetable.Parity(deps.now()) == timetable.ParityFirst {
			text = deps.Config.Messages.WeekFirst
		}
		_ = sendText(ctx, s, log, update.Message.Chat.ID, text)
	}
}
