// Package game assembles the world, the hit buses and the frame systems into
// a runnable session.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/asteroids/internal/config"
	"github.com/zeusync/asteroids/internal/core/boundary"
	"github.com/zeusync/asteroids/internal/core/collision"
	"github.com/zeusync/asteroids/internal/core/control"
	"github.com/zeusync/asteroids/internal/core/events/bus"
	"github.com/zeusync/asteroids/internal/core/input"
	"github.com/zeusync/asteroids/internal/core/lifecycle"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/random"
	"github.com/zeusync/asteroids/internal/core/reaction"
	"github.com/zeusync/asteroids/internal/core/system"
	"github.com/zeusync/asteroids/internal/core/systems"
	"github.com/zeusync/asteroids/internal/core/systems/motion"
	"github.com/zeusync/asteroids/internal/core/world"
)

// Totals accumulates frame statistics over the life of a game.
type Totals struct {
	Frames     uint64
	Hits       uint64
	Reactions  uint64
	SoftMisses uint64
	Dropped    uint64
	Spawned    uint64
	Despawned  uint64
}

func (t *Totals) add(s systems.FrameStats) {
	t.Frames++
	t.Hits += uint64(s.Hits)
	t.Reactions += uint64(s.Reactions)
	t.SoftMisses += uint64(s.SoftMisses)
	t.Dropped += uint64(s.Dropped)
	t.Spawned += uint64(s.Spawned)
	t.Despawned += uint64(s.Despawned)
}

// Game owns one session. Step and Run must be called from a single
// goroutine; Snapshot and Totals may be read from any goroutine.
type Game struct {
	cfg     config.Config
	world   *world.World
	hits    *bus.HitBus
	manager *system.Manager
	rng     *random.Rand
	input   input.Source
	logger  log.Log

	dispatcher *reaction.Dispatcher
	observer   *hitLog
	frame      uint64

	mu         sync.RWMutex
	snapshot   Snapshot
	totals     Totals
	busMetrics bus.Metrics
}

func New(cfg config.Config, rng *random.Rand, source input.Source, logger log.Log) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		source = input.None{}
	}
	g := &Game{
		cfg:     cfg,
		world:   world.New(),
		hits:    bus.New(),
		manager: system.NewManager(logger.With(log.String("component", "systems"))),
		rng:     rng,
		input:   source,
		logger:  logger.With(log.String("component", "game")),
	}
	if err := g.wire(); err != nil {
		return nil, err
	}
	if _, err := g.world.Spawn(lifecycle.NewShip(cfg.Ship)); err != nil {
		return nil, fmt.Errorf("spawn ship: %w", err)
	}
	g.snapshot = Capture(0, g.world)
	return g, nil
}

func (g *Game) wire() error {
	detector := collision.NewDetector(g.cfg.Detector.Parallel)
	for _, p := range collision.GamePairs {
		if err := detector.Register(p); err != nil {
			return err
		}
		if err := g.hits.Declare(p); err != nil {
			return err
		}
	}

	requests := reaction.NewSpawnRequests()
	g.dispatcher = reaction.NewDispatcher()
	for _, h := range []reaction.Handler{
		reaction.NewAsteroidHits(requests),
		reaction.NewUfoHits(),
		reaction.NewShipHits(),
	} {
		if err := g.dispatcher.Register(h); err != nil {
			return err
		}
	}
	if err := g.dispatcher.Attach(g.hits); err != nil {
		return err
	}
	g.observer = newHitLog(g.logger.With(log.String("component", "hits")))
	g.hits.AddObserver(g.observer)

	for _, s := range []systems.System{
		control.NewControls(),
		lifecycle.NewShipSystem(),
		lifecycle.NewUfoSystem(),
		lifecycle.NewExpirationSystem(),
		lifecycle.NewWeaponSystem(),
		lifecycle.NewFlickSystem(),
		reaction.NewAsteroidSpawner(g.cfg.Asteroids, requests),
		reaction.NewUfoSpawner(g.cfg.Ufo),
		detector,
		g.dispatcher,
		reaction.NewGenerator(requests),
		boundary.NewWrap(),
		boundary.NewRemoval(),
		motion.NewIntegrator(g.cfg.Physics.TimeStep),
		systems.NewFunc("end_frame", systems.PhaseCleanup, systems.PriorityNormal, g.endFrame),
	} {
		if err := g.manager.RegisterSystem(s); err != nil {
			return err
		}
	}
	return nil
}

// endFrame drops hit events nobody drained this frame. The hit observer
// logs each dropped pair.
func (g *Game) endFrame(f *systems.Frame) error {
	f.Stats.Dropped = f.Hits.EndFrame()
	return nil
}

// Step runs one frame of dt and publishes its snapshot.
func (g *Game) Step(dt time.Duration) (systems.FrameStats, error) {
	g.frame++
	f := &systems.Frame{
		Number:   g.frame,
		Delta:    dt,
		World:    g.world,
		Commands: world.NewCommands(),
		Hits:     g.hits,
		Rand:     g.rng,
		Input:    g.input.Poll(),
		Config:   &g.cfg,
		Log:      g.logger,
	}
	err := g.manager.Step(f)
	if f.Stats.SoftMisses > 0 {
		g.logger.Debug("soft misses", log.Int("count", f.Stats.SoftMisses), log.Uint64("frame", f.Number))
	}

	snap := Capture(g.frame, g.world)
	g.mu.Lock()
	g.snapshot = snap
	g.totals.add(f.Stats)
	g.busMetrics = g.hits.Metrics()
	g.mu.Unlock()
	return f.Stats, err
}

// Run steps the game at rate frames per second until ctx is done or frames
// frames have run; frames == 0 means no limit. onFrame, when set, receives
// every snapshot.
func (g *Game) Run(ctx context.Context, rate int, frames uint64, onFrame func(Snapshot)) error {
	if rate <= 0 {
		return fmt.Errorf("%w: frame rate must be positive", config.ErrInvalidConfig)
	}
	dt := time.Second / time.Duration(rate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	g.logger.Info("game loop started", log.Int("rate", rate), log.Uint64("frames", frames))
	defer g.logger.Info("game loop stopped", log.Uint64("frame", g.frame))

	for n := uint64(0); frames == 0 || n < frames; n++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if _, err := g.Step(dt); err != nil {
			g.logger.Error("frame failed", log.Uint64("frame", g.frame), log.Error(err))
		}
		if onFrame != nil {
			onFrame(g.Snapshot())
		}
	}
	return nil
}

func (g *Game) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshot
}

func (g *Game) Totals() Totals {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.totals
}

// World exposes the entity store for setup and inspection. It must not be
// touched while Run is active.
func (g *Game) World() *world.World { return g.world }

func (g *Game) Config() config.Config { return g.cfg }

// Metrics returns the per-system execution metrics keyed by system name.
func (g *Game) Metrics() map[string]systems.Metrics {
	out := make(map[string]systems.Metrics)
	for _, name := range g.manager.GetExecutionOrder() {
		if m, ok := g.manager.GetSystemMetrics(name); ok {
			out[name] = m
		}
	}
	return out
}

// BusMetrics returns the hit bus totals as of the last frame.
func (g *Game) BusMetrics() bus.Metrics {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.busMetrics
}

// HitCounts returns the number of hits published per pair, keyed by pair name
// such as "bullet->asteroid".
func (g *Game) HitCounts() map[string]uint64 {
	return g.observer.snapshot()
}

// Close releases the hit bus readers and the hit observer.
func (g *Game) Close() error {
	g.dispatcher.Detach()
	g.hits.RemoveObserver(g.observer)
	return nil
}
