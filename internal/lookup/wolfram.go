package lookup

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
)

const (
	wolframShortPath  = "/v1/result"
	wolframSimplePath = "/v1/simple"

	noShortAnswerSignature = "no short answer available"
)

// WolframClient calls the Wolfram Alpha short-answer and simple APIs.
type WolframClient struct {
	http   *resty.Client
	appID  string
	logger *slog.Logger
}

// NewWolframClient creates a client for the given base URL, e.g.
// https://api.wolframalpha.com.
func NewWolframClient(baseURL, appID string, timeout time.Duration, logger *slog.Logger) *WolframClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &WolframClient{
		http:   resty.New().SetBaseURL(strings.TrimRight(baseURL, "/")).SetTimeout(timeout),
		appID:  appID,
		logger: logger.With("component", "wolfram_client"),
	}
}

// ShortAnswer returns a TextResult, the recoverable no-short-answer Failure,
// or a terminal Failure.
func (c *WolframClient) ShortAnswer(ctx context.Context, query string) Result {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"appid": c.appID, "i": query}).
		Get(wolframShortPath)
	if err != nil {
		c.logger.WarnContext(ctx, "Short answer request failed", "error", err)
		return newFailure(KindTransport, err.Error(), err)
	}

	body := strings.TrimSpace(string(res.Body()))
	if !res.IsSuccess() {
		// 501 covers both "no short answer" and "did not understand".
		if strings.Contains(strings.ToLower(body), noShortAnswerSignature) {
			return newFailure(KindNoShortAnswer, body, ErrNoShortAnswer)
		}
		return statusFailure(res.StatusCode(), body)
	}
	if body == "" {
		return newFailure(KindMalformed, "wolfram: empty short answer", ErrMalformed)
	}

	return TextResult{Text: body}
}

// Simple renders the query as an image.
func (c *WolframClient) Simple(ctx context.Context, query string) Result {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"appid": c.appID, "i": query}).
		Get(wolframSimplePath)
	if err != nil {
		c.logger.WarnContext(ctx, "Simple answer request failed", "error", err)
		return newFailure(KindTransport, err.Error(), err)
	}
	if !res.IsSuccess() {
		return statusFailure(res.StatusCode(), strings.TrimSpace(string(res.Body())))
	}

	data, err := decodeImagePayload(res.Body())
	if err != nil {
		return newFailure(KindMalformed, err.Error(), fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return newFailure(KindMalformed, "wolfram: response is not an image ("+mt.String()+")", ErrMalformed)
	}

	return ImageResult{Data: data, MIME: mt.String(), Ext: mt.Extension()}
}

// decodeImagePayload accepts either raw image bytes or a base64 data URI
// ("data:image/gif;base64,...") and returns the binary image.
func decodeImagePayload(body []byte) ([]byte, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("wolfram: empty image payload")
	}
	if !bytes.HasPrefix(body, []byte("data:")) {
		return body, nil
	}

	header, payload, ok := bytes.Cut(body, []byte(","))
	if !ok || !bytes.HasSuffix(header, []byte(";base64")) {
		return nil, fmt.Errorf("wolfram: unsupported data URI header %q", header)
	}

	data, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(payload)))
	if err != nil {
		return nil, fmt.Errorf("wolfram: decode base64 image: %w", err)
	}
	return data, nil
}

func statusFailure(status int, body string) *Failure {
	reason := body
	if reason == "" {
		reason = fmt.Sprintf("unexpected status %d", status)
	}
	return newFailure(KindStatus, reason, fmt.Errorf("status %d", status))
}
