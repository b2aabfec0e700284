package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/asteroids/internal/config"
	"github.com/zeusync/asteroids/internal/core/events/bus"
	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/random"
	"github.com/zeusync/asteroids/internal/core/systems"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/internal/core/world"
	"github.com/zeusync/asteroids/pkg/timer"
)

func newFrame(w *world.World, dt time.Duration) *systems.Frame {
	cfg := config.Default()
	return &systems.Frame{
		Delta:    dt,
		World:    w,
		Commands: world.NewCommands(),
		Hits:     bus.New(),
		Rand:     random.NewSeeded(7),
		Config:   &cfg,
		Log:      log.NewNop(),
	}
}

func run(t *testing.T, f *systems.Frame, sys ...systems.System) {
	t.Helper()
	for _, s := range sys {
		require.NoError(t, s.Update(f))
	}
	_, err := f.World.Apply(f.Commands)
	require.NoError(t, err)
}

func TestShipMachineTransitions(t *testing.T) {
	m := ShipMachine{DeadTime: 2 * time.Second, SpawningTime: 2 * time.Second}

	s, effect := m.Hit(Alive())
	assert.Equal(t, models.ShipDead, s.Phase)
	assert.Equal(t, 2*time.Second, s.Remaining())
	assert.Equal(t, ShipDisarm, effect)

	s, effect = m.Advance(s, time.Second)
	assert.Equal(t, models.ShipDead, s.Phase)
	assert.Equal(t, time.Second, s.Remaining())
	assert.Equal(t, ShipNoEffect, effect)

	s, effect = m.Advance(s, time.Second)
	assert.Equal(t, models.ShipSpawning, s.Phase)
	assert.Equal(t, 2*time.Second, s.Remaining())
	assert.Equal(t, ShipRespawn, effect)

	s, effect = m.Advance(s, 2*time.Second)
	assert.Equal(t, models.ShipAlive, s.Phase)
	assert.Equal(t, ShipArm, effect)

	s, effect = m.Advance(s, time.Hour)
	assert.Equal(t, models.ShipAlive, s.Phase)
	assert.Equal(t, ShipNoEffect, effect)
}

func TestShipHitIgnoredUnlessAlive(t *testing.T) {
	m := ShipMachine{DeadTime: 2 * time.Second, SpawningTime: 2 * time.Second}
	for _, s := range []models.ShipState{Dead(time.Second), Spawning(time.Second)} {
		next, effect := m.Hit(s)
		assert.Equal(t, s, next)
		assert.Equal(t, ShipNoEffect, effect)
	}
}

// collidable(ship) must hold exactly while the ship is alive, through a full
// hit, death and respawn cycle.
func TestShipCollidableOnlyWhileAlive(t *testing.T) {
	w := world.New()
	cfg := config.Default()
	id, err := w.Spawn(NewShip(cfg.Ship))
	require.NoError(t, err)

	check := func() {
		t.Helper()
		st, ok := w.Ship.Get(id)
		require.True(t, ok)
		alive := st.Phase == models.ShipAlive
		assert.Equal(t, alive, w.Has(id, models.KindCollidable), "phase %s", st.Phase)
		assert.Equal(t, alive, w.Has(id, models.KindWeapon), "phase %s", st.Phase)
	}

	ships := NewShipSystem()
	dt := 100 * time.Millisecond
	run(t, newFrame(w, dt), ships)
	check()
	st, _ := w.Ship.Get(id)
	require.Equal(t, models.ShipAlive, st.Phase)
	assert.False(t, w.Has(id, models.KindFlick))

	f := newFrame(w, dt)
	next, effect := NewShipMachine(cfg.Ship).Hit(*st)
	*st = next
	ApplyShip(f.Commands, id, effect, cfg.Ship)
	run(t, f)
	check()
	for _, k := range []models.Kind{models.KindThrust, models.KindSteering, models.KindShape} {
		assert.False(t, w.Has(id, k), k.String())
	}

	sawSpawning := false
	for i := 0; i < 50; i++ {
		run(t, newFrame(w, dt), ships, NewFlickSystem())
		check()
		st, _ := w.Ship.Get(id)
		if st.Phase == models.ShipSpawning {
			sawSpawning = true
			assert.True(t, w.Has(id, models.KindShape))
			assert.True(t, w.Has(id, models.KindFlick))
		}
	}
	assert.True(t, sawSpawning)
	st, _ = w.Ship.Get(id)
	assert.Equal(t, models.ShipAlive, st.Phase)
	visible, ok := w.Visible.Get(id)
	require.True(t, ok)
	assert.True(t, *visible)
}

func TestAdvanceUfo(t *testing.T) {
	rng := random.NewSeeded(3)
	s, effect := AdvanceUfo(UfoAlive(time.Second), 500*time.Millisecond, rng)
	assert.Equal(t, models.UfoAlive, s.Phase)
	assert.Equal(t, UfoNoEffect, effect)

	s, effect = AdvanceUfo(s, 500*time.Millisecond, rng)
	assert.Equal(t, models.UfoChangingDirection, s.Phase)
	assert.Equal(t, UfoTurn, effect)
	assert.GreaterOrEqual(t, s.Remaining(), time.Second)
	assert.Less(t, s.Remaining(), 2*time.Second)

	s, effect = AdvanceUfo(s, 2*time.Second, rng)
	assert.Equal(t, models.UfoAlive, s.Phase)
	assert.Equal(t, UfoLevel, effect)
	assert.GreaterOrEqual(t, s.Remaining(), 4*time.Second)
	assert.Less(t, s.Remaining(), 8*time.Second)
}

func TestUfoEffectSteer(t *testing.T) {
	v := physics.V(150, 0)
	assert.Equal(t, physics.V(150, -100), UfoTurn.Steer(physics.V(0, 40), v))
	assert.Equal(t, physics.V(150, 100), UfoTurn.Steer(physics.V(0, -40), v))
	assert.Equal(t, physics.V(150, 0), UfoLevel.Steer(physics.V(0, 40), physics.V(150, 100)))
	assert.Equal(t, v, UfoNoEffect.Steer(physics.V(0, 40), v))
}

func spawnUfo(t *testing.T, w *world.World) models.EntityID {
	t.Helper()
	weapon := models.NewWeapon(time.Second, 400)
	weapon.Automatic = true
	id, err := w.Spawn(world.NewBundle(models.KindUfo, models.KindCollidable).
		Spatial(physics.V(-430, 50), 15).
		Velocity(physics.V(120, 0)).
		UfoState(UfoAlive(3 * time.Second)).
		Weapon(weapon))
	require.NoError(t, err)
	return id
}

func TestUfoRetargetsAliveShip(t *testing.T) {
	w := world.New()
	ufo := spawnUfo(t, w)

	run(t, newFrame(w, 10*time.Millisecond), NewUfoSystem())
	weapon, _ := w.Weapon.Get(ufo)
	assert.False(t, weapon.Triggered)
	assert.False(t, w.Has(ufo, models.KindWeaponTarget))

	dead, err := w.Spawn(world.NewBundle(models.KindShip).Spatial(physics.Zero, 12).ShipState(Dead(time.Second)))
	require.NoError(t, err)
	run(t, newFrame(w, 10*time.Millisecond), NewUfoSystem())
	assert.False(t, weapon.Triggered)

	ship, err := w.Spawn(world.NewBundle(models.KindShip).Spatial(physics.Zero, 12).ShipState(Alive()))
	require.NoError(t, err)
	run(t, newFrame(w, 10*time.Millisecond), NewUfoSystem())
	weapon, _ = w.Weapon.Get(ufo)
	assert.True(t, weapon.Triggered)
	target, ok := w.WeaponTarget.Get(ufo)
	require.True(t, ok)
	assert.Equal(t, ship, *target)
	assert.NotEqual(t, dead, *target)

	require.NoError(t, w.Despawn(ship))
	run(t, newFrame(w, 10*time.Millisecond), NewUfoSystem())
	assert.False(t, weapon.Triggered)
	assert.False(t, w.Has(ufo, models.KindWeaponTarget))
}

func TestUfoSystemChangesDirection(t *testing.T) {
	w := world.New()
	ufo := spawnUfo(t, w)
	run(t, newFrame(w, 3*time.Second), NewUfoSystem())

	st, _ := w.Ufo.Get(ufo)
	assert.Equal(t, models.UfoChangingDirection, st.Phase)
	vel, _ := w.Velocity.Get(ufo)
	assert.Equal(t, physics.V(120, -100), *vel)

	run(t, newFrame(w, 2*time.Second), NewUfoSystem())
	st, _ = w.Ufo.Get(ufo)
	assert.Equal(t, models.UfoAlive, st.Phase)
	assert.Equal(t, physics.V(120, 0), *vel)
}

func TestFireManualAndAutomatic(t *testing.T) {
	manual := models.NewWeapon(100*time.Millisecond, 1000)
	assert.False(t, Fire(&manual, 100*time.Millisecond), "untriggered weapon never fires")

	manual.Triggered = true
	assert.False(t, Fire(&manual, 50*time.Millisecond))
	assert.True(t, Fire(&manual, 50*time.Millisecond))
	assert.False(t, manual.Triggered)
	assert.False(t, Fire(&manual, 100*time.Millisecond))

	auto := models.NewWeapon(100*time.Millisecond, 1000)
	auto.Automatic = true
	auto.Triggered = true
	assert.True(t, Fire(&auto, 100*time.Millisecond))
	assert.True(t, auto.Triggered)
	assert.True(t, Fire(&auto, 100*time.Millisecond))

	auto.Triggered = false
	assert.False(t, Fire(&auto, 100*time.Millisecond), "released automatic weapon holds fire")
}

func TestWeaponSystemSpawnsBullet(t *testing.T) {
	w := world.New()
	weapon := models.NewWeapon(100*time.Millisecond, 1000)
	weapon.Triggered = true
	shooter, err := w.Spawn(world.NewBundle(models.KindShip).Spatial(physics.V(10, 10), 12).Rotation(0).Weapon(weapon))
	require.NoError(t, err)

	run(t, newFrame(w, 100*time.Millisecond), NewWeaponSystem())
	bullets := w.Query(models.MaskOf(models.KindBullet))
	require.Len(t, bullets, 1)
	s, _ := w.Spatial.Get(bullets[0])
	assert.InDelta(t, 32, s.Position.X, 1e-9)
	assert.InDelta(t, 10, s.Position.Y, 1e-9)
	assert.Equal(t, 2.0, s.Radius)
	v, _ := w.Velocity.Get(bullets[0])
	assert.InDelta(t, 1000, v.X, 1e-9)
	assert.True(t, w.Has(bullets[0], models.KindCollidable))
	assert.True(t, w.Has(bullets[0], models.KindBoundaryRemoval))

	target, err := w.Spawn(world.NewBundle(models.KindAsteroid).Spatial(physics.V(10, 110), 30))
	require.NoError(t, err)
	require.NoError(t, w.Insert(shooter, world.NewBundle().WeaponTarget(target)))
	wp, _ := w.Weapon.Get(shooter)
	wp.Triggered = true
	run(t, newFrame(w, 100*time.Millisecond), NewWeaponSystem())
	bullets = w.Query(models.MaskOf(models.KindBullet))
	require.Len(t, bullets, 2)
	v, _ = w.Velocity.Get(bullets[1])
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.InDelta(t, 1000, v.Y, 1e-9)
}

func TestExpirationAndFlick(t *testing.T) {
	w := world.New()
	particle, err := w.Spawn(world.NewBundle(models.KindExplosion).
		Spatial(physics.Zero, 1).
		Expiration(timer.NewOnce(250 * time.Millisecond)).
		Visible(true).
		Flick(timer.NewRepeating(20 * time.Millisecond)))
	require.NoError(t, err)

	run(t, newFrame(w, 20*time.Millisecond), NewExpirationSystem(), NewFlickSystem())
	v, _ := w.Visible.Get(particle)
	assert.False(t, *v)
	run(t, newFrame(w, 20*time.Millisecond), NewExpirationSystem(), NewFlickSystem())
	assert.True(t, *v)

	run(t, newFrame(w, 210*time.Millisecond), NewExpirationSystem(), NewFlickSystem())
	assert.False(t, w.Alive(particle))
}
