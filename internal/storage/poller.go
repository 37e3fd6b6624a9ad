package storage

import (
	"context"
	"time"

	"burguerclub-pos/pkg/pubsub"

	"go.uber.org/zap"
)

// Poller periodically publishes "poll.tick" so read-side views re-read
// persisted state even when no storage event reached them. Together with
// the storage events this bounds staleness to one poll interval.
type Poller struct {
	bus      *pubsub.Bus
	interval time.Duration
	log      *zap.Logger
}

func NewPoller(bus *pubsub.Bus, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{bus: bus, interval: interval, log: log}
}

// Run ticks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info("poller started", zap.Duration("interval", p.interval))
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopped")
			return
		case at := <-ticker.C:
			p.bus.Publish("poll.tick", at)
		}
	}
}
