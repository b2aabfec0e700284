// Profiling:
// go build ./cmd/asteroids
// ./asteroids -frames 6000 -rate 1000 -profile cpu
// go tool pprof -http=":8000" ./asteroids cpu.pprof

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/game"
	"github.com/zeusync/asteroids/internal/injector"
	"github.com/zeusync/asteroids/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		frames     = flag.Uint64("frames", 0, "stop after this many frames, 0 runs until interrupted")
		rate       = flag.Int("rate", 60, "frames per second")
		seed       = flag.Uint64("seed", 0, "random seed, 0 picks one")
		profiling  = flag.String("profile", "off", "profile mode: cpu, mem or off")
	)
	flag.Parse()

	if err := run(*configPath, *frames, *rate, *seed, *profiling); err != nil {
		fmt.Fprintln(os.Stderr, "asteroids:", err)
		os.Exit(1)
	}
}

func run(configPath string, frames uint64, rate int, seed uint64, profiling string) error {
	stop, err := startProfile(profiling)
	if err != nil {
		return err
	}
	defer stop()

	app, cleanup, err := injector.InitializeApp(injector.ConfigPath(configPath), injector.Seed(seed))
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() { _ = app.Logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	reporter := newReporter(app.Game, app.Logger)

	group.Go(func() error {
		// the server and reporter stop when the loop finishes
		defer cancel()
		return app.Game.Run(ctx, rate, frames, func(snap game.Snapshot) {
			if app.Config.Server.Enabled {
				if _, err := app.Server.Broadcast(snap); err != nil && !errors.Is(err, server.ErrServerClosed) {
					app.Logger.Warn("broadcast failed", log.Error(err))
				}
			}
			reporter.tick()
		})
	})
	if app.Config.Server.Enabled {
		group.Go(func() error { return app.Server.Start(ctx) })
	}

	err = group.Wait()
	reporter.report()
	return err
}

func startProfile(mode string) (func(), error) {
	switch mode {
	case "", "off":
		return func() {}, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop, nil
	case "mem":
		return profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop, nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q", mode)
	}
}

// reporter logs running totals about once per second of wall time.
type reporter struct {
	game   *game.Game
	logger log.Log
	last   time.Time
}

func newReporter(g *game.Game, logger log.Log) *reporter {
	return &reporter{game: g, logger: logger, last: time.Now()}
}

func (r *reporter) tick() {
	if time.Since(r.last) < time.Second {
		return
	}
	r.last = time.Now()
	r.report()
}

func (r *reporter) report() {
	t := r.game.Totals()
	snap := r.game.Snapshot()
	bm := r.game.BusMetrics()
	r.logger.Info("stats",
		log.Uint64("frames", t.Frames),
		log.Uint64("hits", t.Hits),
		log.Uint64("reactions", t.Reactions),
		log.Uint64("soft_misses", t.SoftMisses),
		log.Uint64("dropped", t.Dropped),
		log.Uint64("spawned", t.Spawned),
		log.Uint64("despawned", t.Despawned),
		log.Int("asteroids", snap.Count("asteroid")),
		log.Int("ufos", snap.Count("ufo")),
		log.Uint64("hits_published", bm.Published),
		log.Uint64("hits_drained", bm.Drained),
		log.Any("hits_by_pair", r.game.HitCounts()),
	)
}
