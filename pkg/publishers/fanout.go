package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Fanout hands one reading to every sink in file order. A failing sink does
// not stop delivery to the rest.
type Fanout struct {
	sinks []Publisher
}

// NewFanout drops nil entries and keeps the order of pubs.
func NewFanout(pubs []Publisher) *Fanout {
	f := &Fanout{sinks: make([]Publisher, 0, len(pubs))}
	for _, p := range pubs {
		if p != nil {
			f.sinks = append(f.sinks, p)
		}
	}
	return f
}

// Publish returns how many sinks accepted evt and the joined errors of the rest.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil {
		return 0, nil
	}

	delivered := 0
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, evt); err != nil {
			errs = append(errs, sinkError(sink, "publish "+evt.Ticker, err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Close releases sinks that hold clients (Pub/Sub).
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, sink := range f.sinks {
		if c, ok := sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, sinkError(sink, "close", err))
			}
		}
	}
	return errors.Join(errs...)
}

func sinkError(sink Publisher, op string, err error) error {
	return fmt.Errorf("%s sink %q %s: %w", sink.Type(), sink.ID(), op, err)
}
