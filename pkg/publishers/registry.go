package publishers

import (
	"context"
	"fmt"

	"github.com/samvad-hq/dxy-snapshot/internal/logger"
)

// Builder creates a sink from one publishers file entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error)

// Builders maps a sink type to its constructor.
type Builders map[string]Builder

// DefaultBuilders returns constructors for every supported sink type.
func DefaultBuilders() Builders {
	return Builders{
		TypeHTTP:      newHTTPPublisher,
		TypeSQS:       newSQSPublisher,
		TypeSNS:       newSNSPublisher,
		TypeGCPPubSub: newGCPPubSubPublisher,
	}
}

// Build constructs one sink per entry, in order. On failure the sinks already
// built are closed and none are returned.
func (b Builders) Build(ctx context.Context, cfgs []PublisherConfig, log logger.Logger) ([]Publisher, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		build, ok := b[cfg.Type]
		if !ok {
			_ = NewFanout(pubs).Close()
			return nil, fmt.Errorf("publisher %q: no sink for type %q", cfg.ID, cfg.Type)
		}
		pub, err := build(ctx, cfg, log)
		if err != nil {
			_ = NewFanout(pubs).Close()
			return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}
