package publishers

import (
	"context"

	"github.com/samvad-hq/dxy-snapshot/internal/logger"
)

// Publisher sends reading events to a downstream sink (SQS, SNS, Pub/Sub, HTTP).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

func orNop(log logger.Logger) logger.Logger {
	if log == nil {
		return &logger.NopLogger{}
	}
	return log
}
