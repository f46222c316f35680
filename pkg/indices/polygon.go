package indices

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/dxy-snapshot/internal/domain"
	"github.com/samvad-hq/dxy-snapshot/pkg/httpclient"
)

const (
	// SnapshotPath is the Polygon indices snapshot endpoint.
	SnapshotPath = "/v3/snapshot/indices"
	// SourcePolygon tags readings produced by PolygonFetcher.
	SourcePolygon = "polygon"

	// APIKeyEnv names the environment variable that carries the credential.
	APIKeyEnv = "POLYGON_API_KEY"

	defaultBaseURL   = "https://api.polygon.io"
	maxSnippetBytes  = 512
	redactedAPIKey   = "REDACTED"
	queryParamTicker = "ticker"
	queryParamAPIKey = "apiKey"
)

// Fetcher returns the current reading for an index ticker.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string) (domain.IndexReading, error)
}

// Logger defines the logging surface the fetcher relies on. Failures are
// returned, not logged; the caller owns error-level reporting.
type Logger interface {
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) WarnObj(string, string, interface{}) {}

// PolygonOptions configures a PolygonFetcher.
type PolygonOptions struct {
	APIKey  string
	BaseURL string
	Logger  Logger
	// Now is overridable in tests.
	Now func() time.Time
}

// PolygonFetcher reads index levels from the Polygon.io indices snapshot API.
type PolygonFetcher struct {
	client  httpclient.Client
	apiKey  string
	baseURL string
	log     Logger
	now     func() time.Time
}

// NewPolygonFetcher builds a fetcher. The API key is checked by Validate and on every Fetch.
func NewPolygonFetcher(client httpclient.Client, opts PolygonOptions) *PolygonFetcher {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &PolygonFetcher{
		client:  client,
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		log:     log,
		now:     now,
	}
}

type snapshotResponse struct {
	RequestID string           `json:"request_id"`
	Status    string           `json:"status"`
	Results   []snapshotResult `json:"results"`
}

type snapshotResult struct {
	Ticker       string           `json:"ticker"`
	Name         string           `json:"name"`
	Value        json.RawMessage  `json:"value"`
	MarketStatus string           `json:"market_status"`
	LastUpdated  int64            `json:"last_updated"`
	Session      *snapshotSession `json:"session"`
	Error        string           `json:"error"`
	Message      string           `json:"message"`
}

type snapshotSession struct {
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	PreviousClose float64 `json:"previous_close"`
}

// FetchValue returns only the current index level for ticker.
func (p *PolygonFetcher) FetchValue(ctx context.Context, ticker string) (float64, error) {
	reading, err := p.Fetch(ctx, ticker)
	if err != nil {
		return 0, err
	}
	return reading.Value, nil
}

// Validate reports a configuration error when the fetcher cannot issue a request.
// It never touches the network.
func (p *PolygonFetcher) Validate() error {
	return p.validate("")
}

func (p *PolygonFetcher) validate(ticker string) error {
	if p.apiKey == "" {
		return newError(KindConfig, ticker, "%s environment variable not found", APIKeyEnv)
	}
	if p.client == nil {
		return newError(KindConfig, ticker, "http client is not configured")
	}
	return nil
}

// Fetch performs one snapshot request and extracts the first result.
func (p *PolygonFetcher) Fetch(ctx context.Context, ticker string) (domain.IndexReading, error) {
	ticker = strings.TrimSpace(ticker)
	if err := p.validate(ticker); err != nil {
		return domain.IndexReading{}, err
	}
	if ticker == "" {
		return domain.IndexReading{}, newError(KindConfig, ticker, "ticker is empty")
	}

	resp, err := p.client.Get(ctx, p.baseURL+SnapshotPath, map[string]string{
		queryParamTicker: ticker,
		queryParamAPIKey: p.apiKey,
	}, map[string]string{"Accept": "application/json"})
	if err != nil {
		return domain.IndexReading{}, &Error{Kind: KindTransport, Ticker: ticker, Err: p.redact(err)}
	}

	if status := resp.StatusCode(); status < 200 || status > 299 {
		return domain.IndexReading{}, newError(KindTransport, ticker, "http response status %d: %s",
			status, p.redactString(readBodySnippet(resp.Body())))
	}

	var payload snapshotResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return domain.IndexReading{}, newError(KindParse, ticker, "decode snapshot response: %w", err)
	}

	return p.extract(ticker, payload)
}

func (p *PolygonFetcher) extract(ticker string, payload snapshotResponse) (domain.IndexReading, error) {
	if len(payload.Results) == 0 {
		return domain.IndexReading{}, newError(KindData, ticker, "%s value not found in the API response", ticker)
	}
	if len(payload.Results) > 1 {
		p.log.WarnObj("snapshot returned multiple results; using the first", "snapshot_meta", map[string]any{
			"ticker":     ticker,
			"results":    len(payload.Results),
			"request_id": payload.RequestID,
		})
	}

	first := payload.Results[0]
	if len(first.Value) == 0 || string(first.Value) == "null" {
		if first.Error != "" {
			return domain.IndexReading{}, newError(KindData, ticker, "%s value not found in the API response: %s %s",
				ticker, first.Error, strings.TrimSpace(first.Message))
		}
		return domain.IndexReading{}, newError(KindData, ticker, "%s value not found in the API response", ticker)
	}
	value, err := decodeValue(ticker, first.Value)
	if err != nil {
		return domain.IndexReading{}, err
	}

	reading := domain.IndexReading{
		Ticker:       ticker,
		Name:         first.Name,
		Value:        value,
		MarketStatus: first.MarketStatus,
		FetchedAt:    p.now().UTC(),
		Source:       SourcePolygon,
	}
	if first.LastUpdated > 0 {
		reading.LastUpdated = time.Unix(0, first.LastUpdated).UTC()
	}
	if first.Session != nil {
		reading.Change = first.Session.Change
		reading.ChangePercent = first.Session.ChangePercent
		reading.PreviousClose = first.Session.PreviousClose
	}
	return reading, nil
}

// decodeValue accepts only a finite JSON number. A well-formed payload carrying
// a string, bool or object in "value" is a data problem, not a parse problem.
func decodeValue(ticker string, raw json.RawMessage) (float64, error) {
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, newError(KindData, ticker, "%s value is not a number: %s", ticker, readBodySnippet(raw))
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, newError(KindData, ticker, "%s value is not a finite number", ticker)
	}
	return value, nil
}

// redactedError hides the API key in the message but keeps the cause reachable
// for errors.Is and errors.As.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// redact strips the API key from err's text; transport errors embed the request URL.
func (p *PolygonFetcher) redact(err error) error {
	if err == nil {
		return nil
	}
	msg := p.redactString(err.Error())
	if msg == err.Error() {
		return err
	}
	return &redactedError{msg: msg, err: err}
}

// redactString replaces the key in every form it can take inside a URL.
func (p *PolygonFetcher) redactString(s string) string {
	if p.apiKey == "" {
		return s
	}
	for _, form := range []string{url.QueryEscape(p.apiKey), url.PathEscape(p.apiKey), p.apiKey} {
		s = strings.ReplaceAll(s, form, redactedAPIKey)
	}
	return s
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxSnippetBytes {
		body = body[:maxSnippetBytes]
	}
	return strings.TrimSpace(string(body))
}
