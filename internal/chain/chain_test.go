package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/classbot/internal/lookup"
)

type scriptedLooker struct {
	results map[lookup.Mode]lookup.Result
	calls   []lookup.Request
}

func (s *scriptedLooker) Lookup(_ context.Context, req lookup.Request) lookup.Result {
	s.calls = append(s.calls, req)
	return s.results[req.Mode]
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

type recordingReplier struct {
	texts   []string
	images  []lookup.ImageResult
	sendErr error
}

func (r *recordingReplier) ReplyText(_ context.Context, text string) error {
	r.texts = append(r.texts, text)
	return r.sendErr
}

func (r *recordingReplier) ReplyImage(_ context.Context, img lookup.ImageResult) error {
	r.images = append(r.images, img)
	return r.sendErr
}

const notice = "falling back"

func TestChain_Run(t *testing.T) {
	img := lookup.ImageResult{Data: []byte("GIF89a"), MIME: "image/gif", Ext: ".gif"}
	noShort := &lookup.Failure{Kind: lookup.KindNoShortAnswer, Reason: "No short answer available", Recoverable: true}
	misunderstood := &lookup.Failure{Kind: lookup.KindStatus, Reason: "Wolfram|Alpha did not understand your input"}
	renderFailed := &lookup.Failure{Kind: lookup.KindStatus, Reason: "Error 1: Invalid appid"}

	tests := []struct {
		name        string
		results     map[lookup.Mode]lookup.Result
		wantState   State
		wantTexts   []string
		wantImages  int
		wantShort   int
		wantImageCs int
	}{
		{
			name:      "short answer",
			results:   map[lookup.Mode]lookup.Result{lookup.ModeShortAnswer: lookup.TextResult{Text: "42"}},
			wantState: StateDone,
			wantTexts: []string{"42"},
			wantShort: 1,
		},
		{
			name: "falls back to image",
			results: map[lookup.Mode]lookup.Result{
				lookup.ModeShortAnswer: noShort,
				lookup.ModeImageAnswer: img,
			},
			wantState:   StateDone,
			wantTexts:   []string{notice},
			wantImages:  1,
			wantShort:   1,
			wantImageCs: 1,
		},
		{
			name: "image fallback fails",
			results: map[lookup.Mode]lookup.Result{
				lookup.ModeShortAnswer: noShort,
				lookup.ModeImageAnswer: renderFailed,
			},
			wantState:   StateFailed,
			wantTexts:   []string{notice, "Error 1: Invalid appid"},
			wantShort:   1,
			wantImageCs: 1,
		},
		{
			name: "other failure is surfaced verbatim without fallback",
			results: map[lookup.Mode]lookup.Result{
				lookup.ModeShortAnswer: misunderstood,
				lookup.ModeImageAnswer: img,
			},
			wantState: StateFailed,
			wantTexts: []string{"Wolfram|Alpha did not understand your input"},
			wantShort: 1,
		},
		{
			name: "non-recoverable failure with the same kind does not fall back",
			results: map[lookup.Mode]lookup.Result{
				lookup.ModeShortAnswer: &lookup.Failure{Kind: lookup.KindNoShortAnswer, Reason: "x", Recoverable: false},
				lookup.ModeImageAnswer: img,
			},
			wantState: StateFailed,
			wantTexts: []string{"x"},
			wantShort: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			looker := &scriptedLooker{results: tt.results}
			replier := &recordingReplier{}

			state, err := New(looker, nil, notice, nil).Run(context.Background(), "integrate x^2", replier)
			require.NoError(t, err)

			assert.Equal(t, tt.wantState, state)
			assert.Equal(t, tt.wantTexts, replier.texts)
			assert.Len(t, replier.images, tt.wantImages)
			assert.Equal(t, tt.wantShort, looker.count(lookup.ModeShortAnswer))
			assert.Equal(t, tt.wantImageCs, looker.count(lookup.ModeImageAnswer))
			for _, c := range looker.calls {
				assert.Equal(t, "integrate x^2", c.Query)
			}
		})
	}
}

type countingImages struct{ calls int }

func (c *countingImages) Image(context.Context, string) lookup.Result {
	c.calls++
	return lookup.ImageResult{Data: []byte("cached")}
}

func TestChain_RunUsesImageSource(t *testing.T) {
	looker := &scriptedLooker{results: map[lookup.Mode]lookup.Result{
		lookup.ModeShortAnswer: &lookup.Failure{Kind: lookup.KindNoShortAnswer, Reason: "No short answer available", Recoverable: true},
	}}
	images := &countingImages{}
	replier := &recordingReplier{}

	state, err := New(looker, images, notice, nil).Run(context.Background(), "q", replier)
	require.NoError(t, err)

	assert.Equal(t, StateDone, state)
	assert.Equal(t, 1, images.calls)
	assert.Equal(t, 0, looker.count(lookup.ModeImageAnswer))
	require.Len(t, replier.images, 1)
	assert.Equal(t, []byte("cached"), replier.images[0].Data)
}

func TestChain_RunReportsDeliveryError(t *testing.T) {
	looker := &scriptedLooker{results: map[lookup.Mode]lookup.Result{
		lookup.ModeShortAnswer: lookup.TextResult{Text: "42"},
	}}
	sendErr := errors.New("chat not found")

	state, err := New(looker, nil, notice, nil).Run(context.Background(), "q", &recordingReplier{sendErr: sendErr})

	assert.Equal(t, StateDone, state)
	assert.ErrorIs(t, err, sendErr)
}
