package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/dxy-snapshot/internal/config"
	"github.com/samvad-hq/dxy-snapshot/internal/domain"
	"github.com/samvad-hq/dxy-snapshot/internal/logger"
	"github.com/samvad-hq/dxy-snapshot/pkg/httpclient"
	"github.com/samvad-hq/dxy-snapshot/pkg/indices"
	"github.com/samvad-hq/dxy-snapshot/pkg/publishers"
)

// EventPublisher publishes readings downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
	Close() error
}

// Snapshot wires the index fetcher with optional publishers and performs a single fetch.
type Snapshot struct {
	cfg     *config.Config
	fetcher indices.Fetcher
	fanout  EventPublisher
	log     logger.Logger
}

// NewSnapshot builds the snapshot runtime from config.
func NewSnapshot(ctx context.Context, cfg *config.Config, log logger.Logger) (*Snapshot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fetcher := indices.NewPolygonFetcher(httpclient.NewRestyClient(cfg.HTTPTimeout), indices.PolygonOptions{
		APIKey:  cfg.PolygonAPIKey,
		BaseURL: cfg.PolygonBaseURL,
		Logger:  log,
	})
	// A missing credential must surface before any sink client is dialed.
	if err := fetcher.Validate(); err != nil {
		return nil, err
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var pub EventPublisher
	if fanout != nil {
		pub = fanout
	}
	return NewSnapshotWith(cfg, fetcher, pub, log), nil
}

// NewSnapshotWith assembles a Snapshot from pre-built parts. A nil fanout disables publishing.
func NewSnapshotWith(cfg *config.Config, fetcher indices.Fetcher, fanout EventPublisher, log logger.Logger) *Snapshot {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Snapshot{
		cfg:     cfg,
		fetcher: fetcher,
		fanout:  fanout,
		log:     log,
	}
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.DebugObj("publishing disabled", "publishers_file", "")
		return nil, nil
	}

	sinks, err := publishers.LoadSinks(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}

	enabledPublishers := sinks.Enabled()
	if len(enabledPublishers) == 0 {
		log.WarnObj("no enabled publishers; publishing disabled", "publishers_file", cfg.PublishersFile)
		return nil, nil
	}

	pubClients, err := publishers.DefaultBuilders().Build(ctx, enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	return publishers.NewFanout(pubClients), nil
}

// Run fetches the current reading for ticker and forwards it to configured publishers.
// Publish failures are logged and never fail the run.
func (s *Snapshot) Run(ctx context.Context, ticker string) (domain.IndexReading, error) {
	if s == nil || s.fetcher == nil {
		return domain.IndexReading{}, fmt.Errorf("snapshot is not initialized")
	}

	start := time.Now()
	reading, err := s.fetcher.Fetch(ctx, ticker)
	if err != nil {
		s.log.ErrorObj("index fetch failed", "fetch_meta", map[string]any{
			"ticker":     ticker,
			"kind":       string(indices.KindOf(err)),
			"error":      err.Error(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
		return domain.IndexReading{}, err
	}
	s.log.InfoObj("index fetched", "reading", reading)

	s.publish(ctx, reading)
	return reading, nil
}

func (s *Snapshot) publish(ctx context.Context, reading domain.IndexReading) {
	if s.fanout == nil || s.fanout.Size() == 0 {
		return
	}
	delivered, err := s.fanout.Publish(ctx, publishers.NewEvent(reading))
	if err != nil {
		s.log.WarnObj("reading publish incomplete", "publish_meta", map[string]any{
			"delivered":  delivered,
			"publishers": s.fanout.Size(),
			"error":      err.Error(),
		})
		return
	}
	s.log.DebugObj("reading published", "publish_meta", map[string]any{
		"delivered": delivered,
	})
}

// Close releases publisher resources, logging any errors encountered.
func (s *Snapshot) Close() {
	if s == nil || s.fanout == nil {
		return
	}
	if err := s.fanout.Close(); err != nil {
		s.log.ErrorObj("publisher close failed", "error", err)
	}
}
