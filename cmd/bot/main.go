// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/edgard/classbot/internal/bot"
	"github.com/edgard/classbot/internal/bot/handlers"
	"github.com/edgard/classbot/internal/bot/tasks"
	"github.com/edgard/classbot/internal/chain"
	"github.com/edgard/classbot/internal/config"
	"github.com/edgard/classbot/internal/database"
	"github.com/edgard/classbot/internal/imagecache"
	"github.com/edgard/classbot/internal/logger"
	"github.com/edgard/classbot/internal/lookup"
	"github.com/edgard/classbot/internal/metrics"
	"github.com/edgard/classbot/internal/telegram"
	"github.com/edgard/classbot/internal/timetable"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, logger, storage, lookups, handlers, scheduler and the
// ops server, then blocks until shutdown. It returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	loc, err := time.LoadLocation(cfg.Timetable.Timezone)
	if err != nil {
		log.Error("Failed to load timetable timezone", "timezone", cfg.Timetable.Timezone, "error", err)
		return 1
	}
	schedule, err := timetable.Load(cfg.Timetable.Path, loc)
	if err != nil {
		log.Error("Failed to load timetable", "path", cfg.Timetable.Path, "error", err)
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	cache, err := imagecache.New(cfg.Cache.Dir, store, cfg.Cache.MaxEntries, cfg.Cache.MaxAge, log)
	if err != nil {
		log.Error("Failed to initialize image cache", "dir", cfg.Cache.Dir, "error", err)
		return 1
	}

	gateway := lookup.NewGateway(
		lookup.NewWolframClient(cfg.Wolfram.BaseURL, cfg.Wolfram.AppID, cfg.Wolfram.Timeout, log),
		lookup.NewUrbanClient(cfg.Urban.BaseURL, cfg.Urban.Timeout, log),
		lookup.NewOxfordClient(cfg.Oxford.BaseURL, cfg.Oxford.AppID, cfg.Oxford.AppKey, cfg.Oxford.Language, cfg.Oxford.Timeout, log),
		log,
	)
	images := cache.Through(gateway)

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Gateway:   gateway,
		Chain:     chain.New(gateway, images, cfg.Messages.FallbackNotice, log),
		Images:    images,
		Timetable: schedule,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Cache:  cache,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps), loc)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var ops bot.Runner
	if cfg.Metrics.Enabled {
		metrics.MustRegister(prometheus.DefaultRegisterer)
		ops = metrics.NewServer(cfg.Metrics.Addr, prometheus.DefaultGatherer, store, log)
	}

	app := bot.NewBot(log, tg, sched, ops)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
