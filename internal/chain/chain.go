// Package chain implements the reply fallback chain for computational
// queries: ask for a short textual answer first and, only when the service
// reports that no short answer exists, render the same query as an image.
package chain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edgard/classbot/internal/lookup"
	"github.com/edgard/classbot/internal/metrics"
)

// State is a step of the chain.
type State int

const (
	StateTryingShort State = iota
	StateTryingImage
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateTryingShort:
		return "trying_short"
	case StateTryingImage:
		return "trying_image"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Replier delivers the chain's output to the originating chat.
type Replier interface {
	ReplyText(ctx context.Context, text string) error
	ReplyImage(ctx context.Context, img lookup.ImageResult) error
}

// ImageSource produces the image answer. The gateway satisfies it through
// GatewayImages; the image cache wraps it to serve repeated queries.
type ImageSource interface {
	Image(ctx context.Context, query string) lookup.Result
}

// GatewayImages asks the gateway for an image answer on every call.
type GatewayImages struct {
	Looker lookup.Looker
}

func (g GatewayImages) Image(ctx context.Context, query string) lookup.Result {
	return g.Looker.Lookup(ctx, lookup.Request{Query: query, Mode: lookup.ModeImageAnswer})
}

// Chain runs the short → image state machine.
type Chain struct {
	looker         lookup.Looker
	images         ImageSource
	fallbackNotice string
	logger         *slog.Logger
}

// New creates a chain. images defaults to GatewayImages{looker} when nil.
func New(looker lookup.Looker, images ImageSource, fallbackNotice string, logger *slog.Logger) *Chain {
	if images == nil {
		images = GatewayImages{Looker: looker}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		looker:         looker,
		images:         images,
		fallbackNotice: fallbackNotice,
		logger:         logger.With("component", "fallback_chain"),
	}
}

// Run resolves query into exactly one answer (text, image or failure
// reason) and returns the terminal state. The returned error reports a
// failed delivery, not a failed lookup.
func (c *Chain) Run(ctx context.Context, query string, r Replier) (State, error) {
	state := StateTryingShort
	fellBack := false
	var err error

	for state != StateDone && state != StateFailed {
		switch state {
		case StateTryingShort:
			res := c.looker.Lookup(ctx, lookup.Request{Query: query, Mode: lookup.ModeShortAnswer})
			switch v := res.(type) {
			case lookup.TextResult:
				err = r.ReplyText(ctx, v.Text)
				state = StateDone
			case *lookup.Failure:
				if lookup.NoShortAnswer(v) {
					c.logger.DebugContext(ctx, "No short answer, falling back to image")
					if nerr := r.ReplyText(ctx, c.fallbackNotice); nerr != nil {
						c.logger.WarnContext(ctx, "Failed to send fallback notice", "error", nerr)
					}
					fellBack = true
					state = StateTryingImage
					continue
				}
				err = r.ReplyText(ctx, v.Reason)
				state = StateFailed
			default:
				err = r.ReplyText(ctx, unexpected(res))
				state = StateFailed
			}

		case StateTryingImage:
			res := c.images.Image(ctx, query)
			switch v := res.(type) {
			case lookup.ImageResult:
				err = r.ReplyImage(ctx, v)
				state = StateDone
			case *lookup.Failure:
				err = r.ReplyText(ctx, v.Reason)
				state = StateFailed
			default:
				err = r.ReplyText(ctx, unexpected(res))
				state = StateFailed
			}
		}
	}

	metrics.IncFallbackChain(state.String(), fellBack)
	c.logger.InfoContext(ctx, "Fallback chain finished", "state", state.String(), "fell_back", fellBack)

	if err != nil {
		return state, fmt.Errorf("deliver %s reply: %w", state, err)
	}
	return state, nil
}

func unexpected(res lookup.Result) string {
	return fmt.Sprintf("unexpected lookup result %T", res)
}
