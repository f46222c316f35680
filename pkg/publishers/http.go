package publishers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/dxy-snapshot/internal/logger"
	"github.com/samvad-hq/dxy-snapshot/pkg/httpclient"
)

// Header names the webhook sink sets from Event.Attributes.
const (
	HeaderTicker         = "X-Index-Ticker"
	HeaderSource         = "X-Index-Source"
	HeaderMarketStatus   = "X-Index-Market-Status"
	HeaderFetchedAt      = "X-Index-Fetched-At"
	HeaderIdempotencyKey = "Idempotency-Key"
)

var attributeHeaders = map[string]string{
	AttrTicker:       HeaderTicker,
	AttrSource:       HeaderSource,
	AttrMarketStatus: HeaderMarketStatus,
	AttrFetchedAt:    HeaderFetchedAt,
}

// webhookPublisher delivers readings to an HTTP endpoint. The body is the JSON
// event; reading metadata travels in X-Index-* headers.
type webhookPublisher struct {
	id     string
	cfg    HTTPPublisherConfig
	client *resty.Client
	log    logger.Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	hc := *cfg.HTTP
	if hc.Method == "" {
		hc.Method = http.MethodPost
	}

	return &webhookPublisher{
		id:     cfg.ID,
		cfg:    hc,
		client: httpclient.NewRestyHTTPClient(time.Duration(hc.TimeoutSeconds) * time.Second),
		log:    orNop(log),
	}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

// Publish sends the event. Configured headers may not override the reading headers.
func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeaders(w.cfg.Headers).
		SetHeaders(readingHeaders(evt)).
		SetHeader("Content-Type", "application/json").
		SetBody(evt).
		Execute(w.cfg.Method, w.cfg.URL)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook response status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
	}

	w.log.DebugObj("webhook accepted reading", "publisher_http_delivery", map[string]any{
		"publisher_id": w.id,
		"ticker":       evt.Ticker,
		"status":       resp.StatusCode(),
	})
	return nil
}

func readingHeaders(evt Event) map[string]string {
	headers := make(map[string]string, len(attributeHeaders)+1)
	for attr, val := range evt.Attributes() {
		headers[attributeHeaders[attr]] = val
	}
	if key := evt.DedupKey(); key != "" {
		headers[HeaderIdempotencyKey] = key
	}
	return headers
}

func bodySnippet(body []byte) string {
	const limit = 256
	if len(body) > limit {
		body = body[:limit]
	}
	return strings.TrimSpace(string(body))
}
