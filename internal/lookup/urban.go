package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const urbanDefinePath = "/v0/define"

// UrbanClient queries Urban Dictionary.
type UrbanClient struct {
	http   *resty.Client
	logger *slog.Logger
}

type urbanEnvelope struct {
	List []struct {
		Definition string `json:"definition"`
		Example    string `json:"example"`
	} `json:"list"`
}

// NewUrbanClient creates a client for the given base URL, e.g.
// https://api.urbandictionary.com.
func NewUrbanClient(baseURL string, timeout time.Duration, logger *slog.Logger) *UrbanClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &UrbanClient{
		http:   resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(timeout),
		logger: logger.With("component", "urban_client"),
	}
}

// Define returns the first listed definition of term.
func (c *UrbanClient) Define(ctx context.Context, term string) Result {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("term", term).
		Get(urbanDefinePath)
	if err != nil {
		c.logger.WarnContext(ctx, "Urban Dictionary request failed", "error", err)
		return newFailure(KindTransport, err.Error(), err)
	}
	if !res.IsSuccess() {
		return statusFailure(res.StatusCode(), strings.TrimSpace(string(res.Body())))
	}

	var env urbanEnvelope
	if err := json.Unmarshal(res.Body(), &env); err != nil {
		return newFailure(KindMalformed, "urban: "+err.Error(), fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	if len(env.List) == 0 || strings.TrimSpace(env.List[0].Definition) == "" {
		return newFailure(KindNotFound, ErrNotFound.Error(), ErrNotFound)
	}

	first := env.List[0]
	return DefinitionResult{
		Definition: stripCrossLinks(first.Definition),
		Example:    stripCrossLinks(first.Example),
	}
}

// stripCrossLinks drops the [term] link markers Urban Dictionary embeds.
func stripCrossLinks(s string) string {
	return strings.TrimSpace(strings.NewReplacer("[", "", "]", "", "\r\n", "\n").Replace(s))
}
