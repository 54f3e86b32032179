package lookup

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/classbot/internal/metrics"
)

// Looker is the contract handlers and the fallback chain depend on.
type Looker interface {
	Lookup(ctx context.Context, req Request) Result
}

// Gateway routes a Request to the provider serving its mode.
type Gateway struct {
	wolfram *WolframClient
	urban   *UrbanClient
	oxford  *OxfordClient
	logger  *slog.Logger
}

// NewGateway wires the three providers together.
func NewGateway(wolfram *WolframClient, urban *UrbanClient, oxford *OxfordClient, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		wolfram: wolfram,
		urban:   urban,
		oxford:  oxford,
		logger:  logger.With("component", "lookup_gateway"),
	}
}

// Lookup performs exactly one call to the provider selected by req.
func (g *Gateway) Lookup(ctx context.Context, req Request) Result {
	start := time.Now()

	var res Result
	switch req.Mode {
	case ModeShortAnswer:
		res = g.wolfram.ShortAnswer(ctx, req.Query)
	case ModeImageAnswer:
		res = g.wolfram.Simple(ctx, req.Query)
	case ModeDefinition:
		switch req.Dictionary {
		case DictionaryUrban:
			res = g.urban.Define(ctx, req.Query)
		case DictionaryOxford:
			res = g.oxford.Define(ctx, req.Query)
		default:
			res = newFailure(KindUnknown, ErrUnsupported.Error(), ErrUnsupported)
		}
	default:
		res = newFailure(KindUnknown, ErrUnsupported.Error(), ErrUnsupported)
	}

	took := time.Since(start)
	outcome := Outcome(res)
	metrics.ObserveLookup(req.Mode.String(), outcome, took)
	g.logger.DebugContext(ctx, "Lookup finished",
		"mode", req.Mode.String(),
		"dictionary", req.Dictionary.String(),
		"outcome", outcome,
		"duration", took)

	return res
}
