package game

import (
	"maps"
	"sync"

	"github.com/zeusync/asteroids/internal/core/events/bus"
	"github.com/zeusync/asteroids/internal/core/observability/log"
)

var _ bus.Observer = (*hitLog)(nil)

// hitLog counts published hits per pair and reports frame-end drops as they
// happen. The bus calls it on the frame goroutine; counts may be read from
// any goroutine.
type hitLog struct {
	logger log.Log

	mu     sync.Mutex
	counts map[string]uint64
}

func newHitLog(logger log.Log) *hitLog {
	return &hitLog{logger: logger, counts: make(map[string]uint64)}
}

func (o *hitLog) OnPublish(e bus.HitEvent) {
	o.mu.Lock()
	o.counts[e.Pair.String()]++
	o.mu.Unlock()
}

func (o *hitLog) OnDrained(p bus.Pair, reader string, events int) {
	if events > 0 {
		o.logger.Debug("hits drained", log.String("pair", p.String()), log.String("reader", reader), log.Int("events", events))
	}
}

func (o *hitLog) OnDropped(p bus.Pair, events int) {
	o.logger.Warn("undrained hit events dropped", log.String("pair", p.String()), log.Int("events", events))
}

func (o *hitLog) snapshot() map[string]uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.counts)
}
