package control

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/asteroids/internal/core/input"
	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/systems"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/internal/core/world"
)

func TestTurn(t *testing.T) {
	assert.Equal(t, 0.0, Turn(input.State{}))
	assert.Equal(t, 1.0, Turn(input.State{Left: true}))
	assert.Equal(t, -1.0, Turn(input.State{Right: true}))
	assert.Equal(t, 1.0, Turn(input.State{Left: true, Right: true}))
}

func TestTrigger(t *testing.T) {
	manual := models.NewWeapon(time.Second, 1)
	Trigger(&manual, input.State{Fire: true})
	assert.False(t, manual.Triggered, "held fire does not trigger a manual weapon")
	Trigger(&manual, input.State{Fire: true, FirePressed: true})
	assert.True(t, manual.Triggered)
	Trigger(&manual, input.State{})
	assert.True(t, manual.Triggered, "latch holds until the weapon fires")

	auto := models.NewWeapon(time.Second, 1)
	auto.Automatic = true
	Trigger(&auto, input.State{Fire: true})
	assert.True(t, auto.Triggered)
	Trigger(&auto, input.State{})
	assert.False(t, auto.Triggered, "automatic weapon stops when fire is released")
	Trigger(&auto, input.State{FirePressed: true})
	assert.False(t, auto.Triggered, "automatic weapon follows the held button only")
}

func TestControlsUpdate(t *testing.T) {
	w := world.New()
	ship, err := w.Spawn(world.NewBundle(models.KindShip).
		Spatial(physics.Zero, 12).
		AngularVelocity(0).
		Steering(models.Steering{Rate: math.Pi}).
		Thrust(models.Thrust{Force: 1.5}).
		Weapon(models.NewWeapon(time.Second, 1000)))
	require.NoError(t, err)
	ufo, err := w.Spawn(world.NewBundle(models.KindUfo).Spatial(physics.Zero, 15).Weapon(models.NewWeapon(time.Second, 400)))
	require.NoError(t, err)

	f := &systems.Frame{World: w, Commands: world.NewCommands(), Log: log.NewNop(),
		Input: input.State{Right: true, Thrust: true, Fire: true, FirePressed: true}}
	require.NoError(t, NewControls().Update(f))

	av, _ := w.AngularVelocity.Get(ship)
	assert.Equal(t, -math.Pi, *av)
	thrust, _ := w.Thrust.Get(ship)
	assert.True(t, thrust.On)
	weapon, _ := w.Weapon.Get(ship)
	assert.True(t, weapon.Triggered)
	ufoWeapon, _ := w.Weapon.Get(ufo)
	assert.False(t, ufoWeapon.Triggered)

	f.Input = input.State{}
	require.NoError(t, NewControls().Update(f))
	assert.Equal(t, 0.0, *av)
	assert.False(t, thrust.On)
}
