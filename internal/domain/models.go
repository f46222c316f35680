package domain

import "time"

// IndexReading is a single snapshot of an index level.
// Only Value is guaranteed; session fields are zero when the upstream omits them.
type IndexReading struct {
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name,omitempty"`
	Value         float64   `json:"value"`
	MarketStatus  string    `json:"market_status,omitempty"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent float64   `json:"change_percent,omitempty"`
	PreviousClose float64   `json:"previous_close,omitempty"`
	LastUpdated   time.Time `json:"last_updated,omitzero"`
	FetchedAt     time.Time `json:"fetched_at"`
	Source        string    `json:"source"`
}
