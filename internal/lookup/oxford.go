package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const oxfordEntriesPath = "/api/v2/entries/{lang}/{word}"

// OxfordClient queries the Oxford Dictionaries entries API.
type OxfordClient struct {
	http     *resty.Client
	language string
	logger   *slog.Logger
}

type oxfordEnvelope struct {
	Results []struct {
		LexicalEntries []struct {
			Entries []struct {
				Senses []struct {
					Definitions []string `json:"definitions"`
					Examples    []struct {
						Text string `json:"text"`
					} `json:"examples"`
				} `json:"senses"`
			} `json:"entries"`
		} `json:"lexicalEntries"`
	} `json:"results"`
}

// firstSense walks the envelope to the first sense that has a definition.
func (e oxfordEnvelope) firstSense() (DefinitionResult, bool) {
	for _, r := range e.Results {
		for _, le := range r.LexicalEntries {
			for _, en := range le.Entries {
				for _, s := range en.Senses {
					if len(s.Definitions) == 0 || strings.TrimSpace(s.Definitions[0]) == "" {
						continue
					}
					def := DefinitionResult{Definition: strings.TrimSpace(s.Definitions[0])}
					if len(s.Examples) > 0 {
						def.Example = strings.TrimSpace(s.Examples[0].Text)
					}
					return def, true
				}
			}
		}
	}
	return DefinitionResult{}, false
}

// NewOxfordClient creates a client authenticated with appID/appKey.
func NewOxfordClient(baseURL, appID, appKey, language string, timeout time.Duration, logger *slog.Logger) *OxfordClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &OxfordClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("app_id", appID).
			SetHeader("app_key", appKey).
			SetHeader("Accept", "application/json"),
		language: language,
		logger:   logger.With("component", "oxford_client"),
	}
}

// Define returns the first sense of word.
func (c *OxfordClient) Define(ctx context.Context, word string) Result {
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"lang": c.language,
			"word": strings.ToLower(word),
		}).
		Get(oxfordEntriesPath)
	if err != nil {
		c.logger.WarnContext(ctx, "Oxford Dictionaries request failed", "error", err)
		return newFailure(KindTransport, err.Error(), err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return newFailure(KindNotFound, ErrNotFound.Error(), ErrNotFound)
	}
	if !res.IsSuccess() {
		return statusFailure(res.StatusCode(), strings.TrimSpace(string(res.Body())))
	}

	var env oxfordEnvelope
	if err := json.Unmarshal(res.Body(), &env); err != nil {
		return newFailure(KindMalformed, "oxford: "+err.Error(), fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	def, ok := env.firstSense()
	if !ok {
		return newFailure(KindNotFound, ErrNotFound.Error(), ErrNotFound)
	}
	return def
}
