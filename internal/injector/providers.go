// Package injector wires configuration, logging, the game and the spectator
// server together.
package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/asteroids/internal/config"
	"github.com/zeusync/asteroids/internal/core/input"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/random"
	"github.com/zeusync/asteroids/internal/game"
	"github.com/zeusync/asteroids/internal/server"
)

// ConfigPath is the YAML config file; empty selects the defaults.
type ConfigPath string

// Seed fixes the random generator; zero seeds it from the OS.
type Seed uint64

// App is everything cmd needs to run a session.
type App struct {
	Config config.Config
	Logger *log.Logger
	Remote *input.Remote
	Game   *game.Game
	Server *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideRand,
	input.NewRemote,
	ProvideGame,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

func ProvideConfig(path ConfigPath) (config.Config, error) {
	return config.LoadFile(string(path))
}

func ProvideLogger(cfg config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.New(level), nil
}

func ProvideRand(seed Seed) *random.Rand {
	if seed == 0 {
		return random.New()
	}
	return random.NewSeeded(uint64(seed))
}

// ProvideGame builds the session with remote as its input source.
func ProvideGame(cfg config.Config, rng *random.Rand, remote *input.Remote, logger *log.Logger) (*game.Game, func(), error) {
	g, err := game.New(cfg, rng, remote, logger)
	if err != nil {
		return nil, nil, err
	}
	return g, func() { _ = g.Close() }, nil
}

func ProvideServer(cfg config.Config, remote *input.Remote, logger *log.Logger) *server.Server {
	return server.New(cfg.Server, remote, logger)
}
