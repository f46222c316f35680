package publishers

import (
	"strconv"
	"time"

	"github.com/samvad-hq/dxy-snapshot/internal/domain"
)

// Attribute names attached to every delivered reading, next to the JSON body.
const (
	AttrTicker       = "ticker"
	AttrSource       = "source"
	AttrMarketStatus = "market_status"
	AttrFetchedAt    = "fetched_at"
)

// Event represents the payload published downstream.
type Event struct {
	Ticker      string              `json:"ticker"`
	Source      string              `json:"source"`
	Reading     domain.IndexReading `json:"reading"`
	PublishedAt time.Time           `json:"published_at"`
}

// NewEvent constructs an Event for the given reading.
func NewEvent(reading domain.IndexReading) Event {
	return Event{
		Ticker:      reading.Ticker,
		Source:      reading.Source,
		Reading:     reading,
		PublishedAt: time.Now().UTC(),
	}
}

// Attributes returns routing metadata for the reading. Empty values are omitted
// so consumers can filter on presence.
func (e Event) Attributes() map[string]string {
	attrs := make(map[string]string, 4)
	if e.Ticker != "" {
		attrs[AttrTicker] = e.Ticker
	}
	if e.Source != "" {
		attrs[AttrSource] = e.Source
	}
	if e.Reading.MarketStatus != "" {
		attrs[AttrMarketStatus] = e.Reading.MarketStatus
	}
	if !e.Reading.FetchedAt.IsZero() {
		attrs[AttrFetchedAt] = e.Reading.FetchedAt.UTC().Format(time.RFC3339Nano)
	}
	return attrs
}

// DedupKey identifies one reading across redeliveries of the same event.
func (e Event) DedupKey() string {
	if e.Ticker == "" || e.Reading.FetchedAt.IsZero() {
		return ""
	}
	return e.Ticker + "-" + strconv.FormatInt(e.Reading.FetchedAt.UnixNano(), 10)
}
