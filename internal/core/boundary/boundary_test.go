package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/asteroids/internal/config"
	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/systems"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/internal/core/world"
)

var view = config.Viewport{Width: 800, Height: 600}

func TestOutsideUsesDoubleRadius(t *testing.T) {
	cases := []struct {
		name string
		p    physics.Vec2
		out  bool
	}{
		{"centre", physics.Zero, false},
		{"past edge within margin", physics.V(415, 0), false},
		{"exactly at margin", physics.V(420, 0), false},
		{"right", physics.V(420.5, 0), true},
		{"left", physics.V(-421, 0), true},
		{"top", physics.V(0, 321), true},
		{"bottom", physics.V(0, -320.01), true},
		{"corner inside", physics.V(419, -319), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.out, Outside(view, tc.p, 10))
		})
	}
}

func TestWrappedMirrorsExitedAxis(t *testing.T) {
	r := 10.0
	assert.Equal(t, physics.V(-420, 37), Wrapped(view, physics.V(421, 37), r))
	assert.Equal(t, physics.V(420, -12), Wrapped(view, physics.V(-425, -12), r))
	assert.Equal(t, physics.V(5, -320), Wrapped(view, physics.V(5, 330), r))
	assert.Equal(t, physics.V(-420, 320), Wrapped(view, physics.V(421, -321), r))
	assert.Equal(t, physics.V(100, 100), Wrapped(view, physics.V(100, 100), r))
}

func frame(w *world.World) *systems.Frame {
	cfg := config.Default()
	cfg.Viewport = view
	return &systems.Frame{World: w, Commands: world.NewCommands(), Config: &cfg, Log: log.NewNop()}
}

func TestWrapAndRemovalSystems(t *testing.T) {
	w := world.New()
	ship, err := w.Spawn(world.NewBundle(models.KindShip, models.KindBoundaryWrap).Spatial(physics.V(420, 50), 12))
	require.NoError(t, err)
	gone, err := w.Spawn(world.NewBundle(models.KindBullet, models.KindBoundaryRemoval).Spatial(physics.V(0, -305), 2))
	require.NoError(t, err)
	kept, err := w.Spawn(world.NewBundle(models.KindAsteroid, models.KindBoundaryRemoval).Spatial(physics.V(-500, 0), 55))
	require.NoError(t, err)
	untagged, err := w.Spawn(world.NewBundle(models.KindUfo).Spatial(physics.V(9000, 0), 15))
	require.NoError(t, err)

	f := frame(w)
	require.NoError(t, NewWrap().Update(f))
	require.NoError(t, NewRemoval().Update(f))
	_, err = w.Apply(f.Commands)
	require.NoError(t, err)

	s, _ := w.Spatial.Get(ship)
	assert.Equal(t, physics.V(420, 50), s.Position, "ship is still within its margin")

	s.Position = physics.V(426, 50)
	f = frame(w)
	require.NoError(t, NewWrap().Update(f))
	assert.Equal(t, physics.V(-424, 50), s.Position)

	assert.False(t, w.Alive(gone))
	assert.True(t, w.Alive(kept))
	assert.True(t, w.Alive(untagged))
}
