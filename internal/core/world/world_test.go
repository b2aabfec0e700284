package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/pkg/timer"
)

func spawn(t *testing.T, w *World, b *Bundle) models.EntityID {
	t.Helper()
	id, err := w.Spawn(b)
	require.NoError(t, err)
	return id
}

func TestSpawnAndQueryInCreationOrder(t *testing.T) {
	w := New()
	a := spawn(t, w, NewBundle(models.KindAsteroid, models.KindCollidable).Spatial(physics.V(1, 2), 30))
	s := spawn(t, w, NewBundle(models.KindShip).Spatial(physics.Zero, 12))
	b := spawn(t, w, NewBundle(models.KindAsteroid, models.KindCollidable).Spatial(physics.V(5, 5), 10))

	got := w.Query(models.MaskOf(models.KindAsteroid, models.KindCollidable))
	assert.Equal(t, []models.EntityID{a, b}, got)

	sp, ok := w.Spatial.Get(s)
	require.True(t, ok)
	assert.Equal(t, 12.0, sp.Radius)
	assert.Equal(t, 3, w.Len())
}

func TestDespawnedReadsMiss(t *testing.T) {
	w := New()
	id := spawn(t, w, NewBundle(models.KindBullet).Spatial(physics.Zero, 2).Velocity(physics.V(1, 0)))
	require.NoError(t, w.Despawn(id))

	_, ok := w.Spatial.Get(id)
	assert.False(t, ok)
	assert.False(t, w.Alive(id))
	assert.Empty(t, w.Query(models.MaskOf(models.KindBullet)))
	assert.ErrorIs(t, w.Despawn(id), ErrEntityNotFound)
}

func TestRemoveStripsOnlyRequestedKinds(t *testing.T) {
	w := New()
	id := spawn(t, w, NewBundle(models.KindShip, models.KindCollidable).
		Spatial(physics.Zero, 12).
		Weapon(models.NewWeapon(0, 1000)).
		Thrust(models.Thrust{Force: 1.5}))

	require.NoError(t, w.Remove(id, models.MaskOf(models.KindCollidable, models.KindWeapon)))

	mask, ok := w.Mask(id)
	require.True(t, ok)
	assert.False(t, mask.Has(models.KindCollidable))
	assert.False(t, w.Weapon.Has(id))
	assert.True(t, w.Thrust.Has(id))
	assert.True(t, w.Spatial.Has(id))
}

func TestRemovingFlickRestoresVisibility(t *testing.T) {
	w := New()
	id := spawn(t, w, NewBundle().Visible(false).Flick(timer.NewRepeating(0)))
	require.NoError(t, w.Remove(id, models.MaskOf(models.KindFlick)))

	v, ok := w.Visible.Get(id)
	require.True(t, ok)
	assert.True(t, *v)
}

func TestBundleRejectsTwoCategories(t *testing.T) {
	w := New()
	_, err := w.Spawn(NewBundle(models.KindShip, models.KindUfo))
	assert.ErrorIs(t, err, ErrInvalidBundle)

	_, err = w.Spawn(NewBundle().Spatial(physics.Zero, -1))
	assert.ErrorIs(t, err, ErrInvalidBundle)
}

func TestInsertCannotChangeCategory(t *testing.T) {
	w := New()
	id := spawn(t, w, NewBundle(models.KindShip))
	assert.ErrorIs(t, w.Insert(id, NewBundle(models.KindAsteroid)), ErrInvalidBundle)
	assert.NoError(t, w.Insert(id, NewBundle(models.KindShip, models.KindCollidable)))
}

func TestCommandsApplyDeferred(t *testing.T) {
	w := New()
	a := spawn(t, w, NewBundle(models.KindAsteroid).Spatial(physics.Zero, 30))
	cmds := NewCommands()

	cmds.Despawn(a)
	cmds.Despawn(a)
	cmds.Spawn(NewBundle(models.KindAsteroid).Spatial(physics.V(10, 0), 15))
	cmds.Insert(a, NewBundle(models.KindCollidable))
	assert.True(t, w.Alive(a), "nothing applied before Apply")

	stats, err := w.Apply(cmds)
	require.NoError(t, err)
	assert.Equal(t, ApplyStats{Spawned: 1, Despawned: 1, Missed: 2}, stats)
	assert.Zero(t, cmds.Len())
	assert.False(t, w.Alive(a))
	assert.Len(t, w.Query(models.MaskOf(models.KindAsteroid)), 1)
}

func TestCommandsReportInvalidBundles(t *testing.T) {
	w := New()
	cmds := NewCommands()
	cmds.Spawn(NewBundle(models.KindBullet, models.KindAsteroid))
	cmds.Spawn(NewBundle(models.KindBullet))

	stats, err := w.Apply(cmds)
	assert.ErrorIs(t, err, ErrInvalidBundle)
	assert.Equal(t, 1, stats.Spawned)
}
