package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a handler with its match rule and middleware.
// A non-nil MatchFunc takes precedence over HandlerType/Pattern/MatchType.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	MatchFunc   tgbot.MatchFunc
}

// command registers name through CommandMatcher. The library's own command
// match compares the whole entity, "wa@classbot" included, against the
// pattern, so group-chat commands would never route.
func command(deps HandlerDeps, name string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) RegisteredHandler {
	return RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     name,
		Handler:     h,
		Middleware:  mw,
		MatchFunc:   CommandMatcher(deps, name),
	}
}

// RegisterAllCommands initializes and returns a map of all available bot handlers.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = command(deps, "start", NewStartHandler(deps))
	handlers["/help"] = command(deps, "help", NewHelpHandler(deps))
	handlers["/wa"] = command(deps, "wa", NewWolframHandler(deps))
	handlers["/wa_simple"] = command(deps, "wa_simple", NewWolframSimpleHandler(deps))
	handlers["/ud"] = command(deps, "ud", NewUrbanHandler(deps))
	handlers["/od"] = command(deps, "od", NewOxfordHandler(deps))
	handlers["/schedule"] = command(deps, "schedule", NewScheduleHandler(deps))
	handlers["/week"] = command(deps, "week", NewWeekHandler(deps))
	handlers["/donate"] = command(deps, "donate", NewDonateHandler(deps))
	handlers["/ping"] = command(deps, "ping", NewPingHandler(deps))
	handlers["/send"] = command(deps, "send", NewSendHandler(deps), ControlChatOnly(deps))

	// "f" and "/f" share one match rule so a message never hits two handlers.
	handlers["f"] = RegisteredHandler{
		Handler:   NewEasterEggHandler(deps),
		MatchFunc: EasterEggMatcher(deps),
	}
	handlers["channel_post"] = RegisteredHandler{
		Handler:   NewChannelForwarder(deps),
		MatchFunc: IsChannelPost,
	}

	return handlers
}
