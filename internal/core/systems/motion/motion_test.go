package motion

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/systems"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/internal/core/world"
)

func TestStepMovesAndRotates(t *testing.T) {
	w := world.New()
	id, err := w.Spawn(world.NewBundle(models.KindAsteroid).
		Spatial(physics.V(10, 0), 20).
		Velocity(physics.V(60, -30)).
		Rotation(0).
		AngularVelocity(2))
	require.NoError(t, err)

	Step(w, 0.5)
	s, _ := w.Spatial.Get(id)
	assert.InDelta(t, 40, s.Position.X, 1e-9)
	assert.InDelta(t, -15, s.Position.Y, 1e-9)
	r, _ := w.Rotation.Get(id)
	assert.InDelta(t, 1, *r, 1e-9)
}

func TestStepThrustDampingLimit(t *testing.T) {
	w := world.New()
	id, err := w.Spawn(world.NewBundle(models.KindShip).
		Spatial(physics.Zero, 12).
		Velocity(physics.Zero).
		Rotation(math.Pi / 2).
		Thrust(models.Thrust{Force: 100, On: true}).
		Damping(0.5).
		SpeedLimit(30))
	require.NoError(t, err)

	Step(w, 0.1)
	v, _ := w.Velocity.Get(id)
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.InDelta(t, 30, v.Y, 1e-9)
	s, _ := w.Spatial.Get(id)
	assert.InDelta(t, 3, s.Position.Y, 1e-9)
}

func TestIntegratorFixedStep(t *testing.T) {
	w := world.New()
	id, err := w.Spawn(world.NewBundle(models.KindBullet).Spatial(physics.Zero, 2).Velocity(physics.V(100, 0)))
	require.NoError(t, err)

	in := NewIntegrator(10 * time.Millisecond)
	f := &systems.Frame{World: w, Commands: world.NewCommands(), Log: log.NewNop(), Delta: 20 * time.Millisecond}
	require.NoError(t, in.Update(f))
	assert.Equal(t, uint64(2), in.Steps())
	s, _ := w.Spatial.Get(id)
	assert.InDelta(t, 2, s.Position.X, 1e-9)

	f.Delta = 5 * time.Millisecond
	require.NoError(t, in.Update(f))
	assert.Equal(t, uint64(2), in.Steps())
	require.NoError(t, in.Update(f))
	assert.Equal(t, uint64(3), in.Steps())

	f.Delta = 10 * time.Second
	require.NoError(t, in.Update(f))
	assert.Equal(t, uint64(3+maxStepsPerFrame), in.Steps())
}
