package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/classbot/internal/chain"
	"github.com/edgard/classbot/internal/config"
	"github.com/edgard/classbot/internal/lookup"
	"github.com/edgard/classbot/internal/timetable"
)

const (
	chatID        int64 = 100
	controlChatID int64 = 200
	sourceID      int64 = -1001
	destID        int64 = -2002
)

type sentMessage struct {
	chatID    any
	text      string
	parseMode models.ParseMode
}

type forwarded struct {
	chatID     any
	fromChatID any
	messageID  int
}

type fakeSender struct {
	messages  []sentMessage
	documents []*tgbot.SendDocumentParams
	forwards  []forwarded
	err       error
}

func (f *fakeSender) SendMessage(_ context.Context, p *tgbot.SendMessageParams) (*models.Message, error) {
	f.messages = append(f.messages, sentMessage{chatID: p.ChatID, text: p.Text, parseMode: p.ParseMode})
	return &models.Message{}, f.err
}

func (f *fakeSender) SendDocument(_ context.Context, p *tgbot.SendDocumentParams) (*models.Message, error) {
	f.documents = append(f.documents, p)
	return &models.Message{}, f.err
}

func (f *fakeSender) ForwardMessage(_ context.Context, p *tgbot.ForwardMessageParams) (*models.Message, error) {
	f.forwards = append(f.forwards, forwarded{chatID: p.ChatID, fromChatID: p.FromChatID, messageID: p.MessageID})
	return &models.Message{}, f.err
}

func (f *fakeSender) texts() []string {
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.text)
	}
	return out
}

type scriptedLooker struct {
	results map[lookup.Mode]lookup.Result
	calls   []lookup.Request
}

func (s *scriptedLooker) Lookup(_ context.Context, req lookup.Request) lookup.Result {
	s.calls = append(s.calls, req)
	if res, ok := s.results[req.Mode]; ok {
		return res
	}
	return &lookup.Failure{Kind: lookup.KindUnknown, Reason: "unscripted"}
}

func (s *scriptedLooker) count(mode lookup.Mode) int {
	n := 0
	for _, c := range s.calls {
		if c.Mode == mode {
			n++
		}
	}
	return n
}

const timetableDoc = `{
  "first_week": {
    "monday": [], "tuesday": [],
    "wednesday": [{"time": "08:30", "subject": "Physics"}],
    "thursday": [], "friday": []
  },
  "second_week": {
    "monday": [], "tuesday": [], "wednesday": [],
    "thursday": [{"subject": "History"}],
    "friday": []
  }
}`

// wednesday of week two of 2024, an even week.
var fixedNow = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

func newDeps(t *testing.T, looker *scriptedLooker) HandlerDeps {
	t.Helper()
	tt, err := timetable.Parse([]byte(timetableDoc), time.UTC)
	require.NoError(t, err)

	cfg := &config.Config{
		Telegram: config.TelegramConfig{
			ControlChatID:     controlChatID,
			SourceChannelID:   sourceID,
			DestinationChatID: destID,
			BotInfo:           &models.User{Username: "classbot"},
		},
		Messages: config.DefaultMessages,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Gateway:   looker,
		Chain:     chain.New(looker, nil, cfg.Messages.FallbackNotice, log),
		Images:    chain.GatewayImages{Looker: looker},
		Timetable: tt,
		Now:       func() time.Time { return fixedNow },
	}
}

func message(text string) *models.Update {
	return &models.Update{ID: 1, Message: &models.Message{ID: 10, Chat: models.Chat{ID: chatID}, Text: text}}
}

func replyTo(text, replied string) *models.Update {
	u := message(text)
	u.Message.ReplyToMessage = &models.Message{ID: 9, Chat: models.Chat{ID: chatID}, Text: replied}
	return u
}

func TestResolveArgument(t *testing.T) {
	tests := []struct {
		name       string
		msg        *models.Message
		wantArg    string
		wantSource ArgumentSource
	}{
		{name: "nil", msg: nil, wantSource: ArgumentNone},
		{name: "inline", msg: &models.Message{Text: "/wa  2+2 "}, wantArg: "2+2", wantSource: ArgumentInline},
		{name: "inline with bot name", msg: &models.Message{Text: "/wa@classbot integrate x"}, wantArg: "integrate x", wantSource: ArgumentInline},
		{name: "multiline", msg: &models.Message{Text: "/ud\nyeet"}, wantArg: "yeet", wantSource: ArgumentInline},
		{
			name:       "replied",
			msg:        &models.Message{Text: "/ud", ReplyToMessage: &models.Message{Text: " X "}},
			wantArg:    "X",
			wantSource: ArgumentReplied,
		},
		{
			name:       "inline wins over reply",
			msg:        &models.Message{Text: "/ud Y", ReplyToMessage: &models.Message{Text: "X"}},
			wantArg:    "Y",
			wantSource: ArgumentInline,
		},
		{
			name:       "empty reply",
			msg:        &models.Message{Text: "/ud", ReplyToMessage: &models.Message{Text: "  "}},
			wantSource: ArgumentNone,
		},
		{name: "bare command", msg: &models.Message{Text: "/wa"}, wantSource: ArgumentNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg, source := ResolveArgument(tt.msg)
			assert.Equal(t, tt.wantArg, arg)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestUsagePrompt(t *testing.T) {
	for _, name := range []string{"wa", "wa_simple", "ud", "od"} {
		t.Run(name, func(t *testing.T) {
			looker := &scriptedLooker{}
			deps := newDeps(t, looker)
			handlers := map[string]handleFunc{
				"wa":        newWolframHandler(deps),
				"wa_simple": newWolframSimpleHandler(deps),
				"ud":        newDictionaryHandler(deps, "ud", lookup.DictionaryUrban),
				"od":        newDictionaryHandler(deps, "od", lookup.DictionaryOxford),
			}
			s := &fakeSender{}

			handlers[name](context.Background(), s, message("/"+name))

			assert.Equal(t, []string{deps.Config.Messages.Usage}, s.texts())
			assert.Empty(t, s.documents)
			assert.Empty(t, looker.calls)
		})
	}
}

func TestWolframHandler_FallbackChain(t *testing.T) {
	img := lookup.ImageResult{Data: []byte("GIF89a"), MIME: "image/gif", Ext: ".gif"}

	t.Run("short answer", func(t *testing.T) {
		looker := &scriptedLooker{results: map[lookup.Mode]lookup.Result{
			lookup.ModeShortAnswer: lookup.TextResult{Text: "4"},
		}}
		deps := newDeps(t, looker)
		s := &fakeSender{}

		newWolframHandler(deps)(context.Background(), s, message("/wa 2+2"))

		assert.Equal(t, []string{"4"}, s.texts())
		assert.Equal(t, 0, looker.count(lookup.ModeImageAnswer))
		assert.Equal(t, "2+2", looker.calls[0].Query)
	})

	t.Run("no short answer renders image once", func(t *testing.T) {
		looker := &scriptedLooker{results: map[lookup.Mode]lookup.Result{
			lookup.ModeShortAnswer: &lookup.Failure{Kind: lookup.KindNoShortAnswer, Reason: "No short answer available", Recoverable: true},
			lookup.ModeImageAnswer: img,
		}}
		deps := newDeps(t, looker)
		s := &fakeSender{}

		newWolframHandler(deps)(context.Background(), s, replyTo("/wa", "population of france"))

		assert.Equal(t, []string{deps.Config.Messages.FallbackNotice}, s.texts())
		require.Len(t, s.documents, 1)
		assert.Equal(t, chatID, s.documents[0].ChatID)
		assert.Equal(t, 1, looker.count(lookup.ModeImageAnswer))
		assert.Equal(t, "population of france", looker.calls[1].Query)
	})

	t.Run("other failure surfaces reason", func(t *testing.T) {
		looker := &scriptedLooker{results: map[lookup.Mode]lookup.Result{
			lookup.ModeShortAnswer: &lookup.Failure{Kind: lookup.KindStatus, Reason: "Wolfram|Alpha did not understand your input"},
			lookup.ModeImageAnswer: img,
		}}
		deps := newDeps(t, looker)
		s := &fakeSender{}

		newWolframHandler(deps)(context.Background(), s, message("/wa ???"))

		assert.Equal(t, []string{"Wolfram|Alpha did not understand your input"}, s.texts())
		assert.Empty(t, s.documents)
		assert.Equal(t, 0, looker.count(lookup.ModeImageAnswer))
	})
}

func TestWolframSimpleHandler(t *testing.T) {
	img := lookup.ImageResult{Data: []byte("GIF89a"), MIME: "image/gif", Ext: ".gif"}

	looker := &scriptedLooker{results: map[lookup.Mode]lookup.Result{lookup.ModeImageAnswer: img}}
	deps := newDeps(t, looker)
	s := &fakeSender{}
	newWolframSimpleHandler(deps)(context.Background(), s, message("/wa_simple plot x"))

	require.Len(t, s.documents, 1)
	upload, ok := s.documents[0].Document.(*models.InputFileUpload)
	require.True(t, ok)
	assert.Equal(t, "answer.gif", upload.Filename)
	assert.Empty(t, s.messages)
	assert.Equal(t, 0, looker.count(lookup.ModeShortAnswer))

	looker = &scriptedLooker{results: map[lookup.Mode]lookup.Result{
		lookup.ModeImageAnswer: &lookup.Failure{Kind: lookup.KindStatus, Reason: "Error 1: Invalid appid"},
	}}
	deps = newDeps(t, looker)
	s = &fakeSender{}
	newWolframSimpleHandler(deps)(context.Background(), s, message("/wa_simple plot x"))

	assert.Equal(t, []string{"Error 1: Invalid appid"}, s.texts())
	assert.Empty(t, s.documents)
}

func TestDictionaryHandler(t *testing.T) {
	t.Run("definition with example", func(t *testing.T) {
		looker := &scriptedLooker{results: map[lookup.Mode]lookup.Result{
			lookup.ModeDefinition: lookup.DefinitionResult{Definition: "a *bold* claim", Example: "yeet it"},
		}}
		deps := newDeps(t, looker)
		s := &fakeSender{}

		newDictionaryHandler(deps, "ud", lookup.DictionaryUrban)(context.Background(), s, replyTo("/ud", "yeet"))

		require.Len(t, s.messages, 1)
		assert.Equal(t, models.ParseModeMarkdownV1, s.messages[0].parseMode)
		assert.Equal(t, "*Определение:*\na \\*bold\\* claim\n\n*Пример использования:*\nyeet it", s.messages[0].text)
		require.Len(t, looker.calls, 1)
		assert.Equal(t, lookup.Request{Query: "yeet", Mode: lookup.ModeDefinition, Dictionary: lookup.DictionaryUrban}, looker.calls[0])
	})

	t.Run("not found", func(t *testing.T) {
		looker := &scriptedLooker{results: map[lookup.Mode]lookup.Result{
			lookup.ModeDefinition: &lookup.Failure{Kind: lookup.KindNotFound, Reason: "no entries"},
		}}
		deps := newDeps(t, looker)
		s := &fakeSender{}

		newDictionaryHandler(deps, "od", lookup.DictionaryOxford)(context.Background(), s, message("/od qwzx"))

		assert.Equal(t, []string{deps.Config.Messages.NotFound}, s.texts())
		assert.Equal(t, lookup.DictionaryOxford, looker.calls[0].Dictionary)
	})

	t.Run("terminal failure", func(t *testing.T) {
		looker := &scriptedLooker{results: map[lookup.Mode]lookup.Result{
			lookup.ModeDefinition: &lookup.Failure{Kind: lookup.KindTransport, Reason: "connection refused"},
		}}
		deps := newDeps(t, looker)
		s := &fakeSender{}

		newDictionaryHandler(deps, "ud", lookup.DictionaryUrban)(context.Background(), s, message("/ud word"))

		assert.Equal(t, []string{"connection refused"}, s.texts())
	})
}

func TestFormatDefinition(t *testing.T) {
	msgs := config.MessagesConfig{DefinitionHeader: "*Definition:*", ExampleHeader: "*Example:*"}

	assert.Equal(t, "*Definition:*\nsnake\\_case", FormatDefinition(msgs, lookup.DefinitionResult{Definition: "snake_case"}))
	assert.Equal(t, "*Definition:*\nd\n\n*Example:*\ne", FormatDefinition(msgs, lookup.DefinitionResult{Definition: "d", Example: " e "}))
}

func TestScheduleAndWeekHandlers(t *testing.T) {
	deps := newDeps(t, &scriptedLooker{})

	s := &fakeSender{}
	newScheduleHandler(deps)(context.Background(), s, message("/schedule"))
	assert.Equal(t, []string{"wednesday\n\n1.\ntime: 08:30\nsubject: Physics"}, s.texts())

	s = &fakeSender{}
	newScheduleHandler(deps)(context.Background(), s, message("/schedule tomorrow"))
	assert.Equal(t, []string{"thursday"}, s.texts())

	deps.Now = func() time.Time { return time.Date(2024, time.January, 13, 9, 0, 0, 0, time.UTC) }
	s = &fakeSender{}
	newScheduleHandler(deps)(context.Background(), s, message("/schedule"))
	assert.Equal(t, []string{deps.Config.Messages.Weekend}, s.texts())

	s = &fakeSender{}
	newWeekHandler(deps)(context.Background(), s, message("/week"))
	assert.Equal(t, []string{deps.Config.Messages.WeekFirst}, s.texts())

	deps.Now = func() time.Time { return time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC) }
	s = &fakeSender{}
	newWeekHandler(deps)(context.Background(), s, message("/week"))
	assert.Equal(t, []string{deps.Config.Messages.WeekSecond}, s.texts())
}

func TestReplyHandlers(t *testing.T) {
	deps := newDeps(t, &scriptedLooker{})
	deps.Config.Messages.Help = "ask @botname"

	tests := []struct {
		handler handleFunc
		want    string
	}{
		{handler: newReplyHandler(deps, "ping", func() string { return deps.Config.Messages.Ping }), want: "i'm here"},
		{handler: newReplyHandler(deps, "help", func() string {
			return withBotName(deps.Config.Messages.Help, deps.botUsername())
		}), want: "ask @classbot"},
	}
	for _, tt := range tests {
		s := &fakeSender{}
		tt.handler(context.Background(), s, message("/x"))
		assert.Equal(t, []string{tt.want}, s.texts())
	}
}

func TestEasterEgg(t *testing.T) {
	deps := newDeps(t, &scriptedLooker{})
	match := EasterEggMatcher(deps)

	for text, want := range map[string]bool{
		"f":           true,
		"F":           true,
		" f ":         true,
		"/f":          true,
		"/F@classbot": true,
		"/f@ClassBot": true,
		"/f@otherbot": false,
		"ff":          false,
		"/fa":         false,
		"f me":        false,
		"/f me":       false,
		"":            false,
	} {
		assert.Equal(t, want, match(message(text)), "%q", text)
	}
	assert.False(t, match(&models.Update{}))

	s := &fakeSender{}
	newEasterEggHandler(deps)(context.Background(), s, message("F"))
	assert.Equal(t, []string{"F"}, s.texts())

	s = &fakeSender{}
	newEasterEggHandler(deps)(context.Background(), s, message("/f@otherbot"))
	assert.Empty(t, s.messages)
}

func commandUpdate(text string) *models.Update {
	u := message(text)
	length := len(text)
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		length = i
	}
	u.Message.Entities = []models.MessageEntity{{Type: models.MessageEntityTypeBotCommand, Offset: 0, Length: length}}
	return u
}

func TestCommandMatcher(t *testing.T) {
	deps := newDeps(t, &scriptedLooker{})
	wa := CommandMatcher(deps, "wa")

	tests := []struct {
		name   string
		update *models.Update
		want   bool
	}{
		{name: "bare", update: commandUpdate("/wa"), want: true},
		{name: "with argument", update: commandUpdate("/wa 2+2"), want: true},
		{name: "own mention", update: commandUpdate("/wa@classbot 2+2"), want: true},
		{name: "own mention any case", update: commandUpdate("/wa@ClassBot"), want: true},
		{name: "other bot", update: commandUpdate("/wa@otherbot 2+2"), want: false},
		{name: "longer command", update: commandUpdate("/wa_simple x"), want: false},
		{name: "no entity", update: message("/wa 2+2"), want: false},
		{name: "plain text", update: message("wa"), want: false},
		{name: "channel post", update: &models.Update{ChannelPost: &models.Message{Text: "/wa"}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wa(tt.update))
		})
	}

	deps.Config.Telegram.BotInfo = nil
	assert.False(t, CommandMatcher(deps, "wa")(commandUpdate("/wa@classbot x")))
	assert.True(t, CommandMatcher(deps, "wa")(commandUpdate("/wa x")))
}

func TestChannelForwarder(t *testing.T) {
	deps := newDeps(t, &scriptedLooker{})
	fwd := newChannelForwarder(deps)

	post := func(chat int64, sender *models.Chat) *models.Update {
		return &models.Update{ID: 2, ChannelPost: &models.Message{ID: 77, Chat: models.Chat{ID: chat}, SenderChat: sender}}
	}

	t.Run("source channel is forwarded once", func(t *testing.T) {
		s := &fakeSender{}
		fwd(context.Background(), s, post(sourceID, &models.Chat{ID: sourceID}))
		assert.Equal(t, []forwarded{{chatID: destID, fromChatID: sourceID, messageID: 77}}, s.forwards)
	})

	t.Run("chat id used without sender chat", func(t *testing.T) {
		s := &fakeSender{}
		fwd(context.Background(), s, post(sourceID, nil))
		assert.Len(t, s.forwards, 1)
	})

	t.Run("other channel is ignored", func(t *testing.T) {
		s := &fakeSender{}
		fwd(context.Background(), s, post(-999, &models.Chat{ID: -999}))
		fwd(context.Background(), s, message("hello"))
		assert.Empty(t, s.forwards)
		assert.Empty(t, s.messages)
	})

	t.Run("forward error is swallowed", func(t *testing.T) {
		s := &fakeSender{err: errors.New("forbidden")}
		fwd(context.Background(), s, post(sourceID, nil))
		assert.Len(t, s.forwards, 1)
		assert.Empty(t, s.messages)
	})
}

func TestSendRelay(t *testing.T) {
	deps := newDeps(t, &scriptedLooker{})

	t.Run("relays to destination", func(t *testing.T) {
		s := &fakeSender{}
		u := message("/send exam moved to friday")
		u.Message.Chat.ID = controlChatID
		newSendHandler(deps)(context.Background(), s, u)

		require.Len(t, s.messages, 1)
		assert.Equal(t, destID, s.messages[0].chatID)
		assert.Equal(t, "exam moved to friday", s.messages[0].text)
	})

	t.Run("missing argument prompts", func(t *testing.T) {
		s := &fakeSender{}
		u := message("/send")
		u.Message.Chat.ID = controlChatID
		newSendHandler(deps)(context.Background(), s, u)

		assert.Equal(t, []sentMessage{{chatID: controlChatID, text: deps.Config.Messages.Usage}}, s.messages)
	})

	t.Run("middleware blocks other chats", func(t *testing.T) {
		calls := 0
		next := func(context.Context, *tgbot.Bot, *models.Update) { calls++ }
		h := ControlChatOnly(deps)(next)

		h(context.Background(), nil, message("/send hi"))
		assert.Equal(t, 0, calls)

		u := message("/send hi")
		u.Message.Chat.ID = controlChatID
		h(context.Background(), nil, u)
		assert.Equal(t, 1, calls)
	})
}

func TestRegisterAllCommands(t *testing.T) {
	deps := newDeps(t, &scriptedLooker{})
	registered := RegisterAllCommands(deps)

	for _, key := range []string{"/start", "/help", "/wa", "/wa_simple", "/ud", "/od", "/schedule", "/week", "/donate", "/ping", "/send", "f", "channel_post"} {
		h, ok := registered[key]
		require.True(t, ok, key)
		assert.NotNil(t, h.Handler, key)
	}
	assert.Len(t, registered["/send"].Middleware, 1)
	assert.NotNil(t, registered["f"].MatchFunc)
	assert.True(t, registered["/wa"].MatchFunc(commandUpdate("/wa@classbot 1+1")))
	_, separate := registered["/f"]
	assert.False(t, separate)
}
