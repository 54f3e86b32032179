package telegram

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/classbot/internal/bot/handlers"
)

type recordingRegistrar struct {
	patterns []string
	matchers []bot.HandlerFunc
	handlers []bot.HandlerFunc
}

func (r *recordingRegistrar) RegisterHandler(_ bot.HandlerType, pattern string, _ bot.MatchType, f bot.HandlerFunc, _ ...bot.Middleware) string {
	r.patterns = append(r.patterns, pattern)
	r.handlers = append(r.handlers, f)
	return pattern
}

func (r *recordingRegistrar) RegisterHandlerMatchFunc(_ bot.MatchFunc, f bot.HandlerFunc, _ ...bot.Middleware) string {
	r.matchers = append(r.matchers, f)
	return "match"
}

func TestRegisterHandlers(t *testing.T) {
	var order []string
	mw := func(name string) bot.Middleware {
		return func(next bot.HandlerFunc) bot.HandlerFunc {
			return func(ctx context.Context, b *bot.Bot, u *models.Update) {
				order = append(order, name)
				next(ctx, b, u)
			}
		}
	}
	noop := func(context.Context, *bot.Bot, *models.Update) { order = append(order, "handler") }

	r := &recordingRegistrar{}
	err := RegisterHandlers(r, nil, map[string]handlers.RegisteredHandler{
		"/ping": {HandlerType: bot.HandlerTypeMessageText, Pattern: "ping", Handler: noop, Middleware: []bot.Middleware{mw("outer"), mw("inner")}},
		"post":  {Handler: noop, MatchFunc: func(*models.Update) bool { return true }},
		"nil":   {Pattern: "nil"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ping"}, r.patterns)
	assert.Len(t, r.matchers, 1)

	r.handlers[0](context.Background(), nil, &models.Update{})
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestRegisterHandlers_Errors(t *testing.T) {
	assert.Error(t, RegisterHandlers(nil, nil, nil))
	assert.NoError(t, RegisterHandlers(&recordingRegistrar{}, nil, nil))
}

func TestNewTelegramBot_EmptyToken(t *testing.T) {
	_, err := NewTelegramBot("", nil)
	assert.Error(t, err)
	assert.Equal(t, "***", tokenPrefix("short"))
	assert.Equal(t, "12345678...", tokenPrefix("12345678:ABCDEF"))
}
