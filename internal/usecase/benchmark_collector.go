package usecase

import (
	"context"

	"ShortBasket/internal/domain/models"
	drepo "ShortBasket/internal/domain/repository"
)

// BenchmarkCollector consumes benchmark ticks from the market stream into
// the shared snapshot.
type BenchmarkCollector struct {
	stream  drepo.BenchmarkStream
	snap    *BenchmarkSnapshot
	metrics drepo.Metrics
}

// NewBenchmarkCollector creates a new BenchmarkCollector instance.
func NewBenchmarkCollector(stream drepo.BenchmarkStream, snap *BenchmarkSnapshot, metrics drepo.Metrics) *BenchmarkCollector {
	return &BenchmarkCollector{stream: stream, snap: snap, metrics: metrics}
}

// IsConnected returns true if the market stream is connected.
func (c *BenchmarkCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Snapshot exposes the shared snapshot for readers.
func (c *BenchmarkCollector) Snapshot() *BenchmarkSnapshot { return c.snap }

func (c *BenchmarkCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *BenchmarkCollector) consume(ctx context.Context, tickCh <-chan *models.BenchmarkTick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				break
			}
			if err != nil {
				c.metrics.RecordError("stream")
			}
		case t, ok := <-tickCh:
			if !ok {
				tickCh = nil
				break
			}
			if t == nil {
				continue
			}
			c.snap.Update(t)
			c.metrics.RecordBenchmarkChange(t.Symbol, t.PriceChange24h)
		}

		// The stream's read loop closes both channels once it dies. Rebuild
		// the connection and resume from fresh channels; a nil pair would
		// otherwise leave this select spinning.
		if tickCh == nil && errCh == nil {
			for {
				if ctx.Err() != nil {
					return
				}
				if err := c.stream.Reconnect(ctx); err != nil {
					c.metrics.RecordError("stream_reconnect")
					continue
				}
				tickCh, errCh = c.stream.Read(ctx)
				break
			}
		}
	}
}

// Shutdown closes the stream.
func (c *BenchmarkCollector) Shutdown(ctx context.Context) error {
	return c.stream.Close()
}
