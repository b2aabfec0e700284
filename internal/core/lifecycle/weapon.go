package lifecycle

import (
	"time"

	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/internal/core/world"
)

const (
	bulletRadius = 2.0
	muzzleGap    = 10.0
)

// Fire ticks the weapon cooldown by dt and reports whether a shot leaves
// the barrel on this tick. The cooldown runs whether or not the weapon is
// triggered. A manual weapon drops its trigger once it fires; an automatic
// one leaves it to the controller, which re-derives it every frame.
func Fire(w *models.Weapon, dt time.Duration) bool {
	w.Cooldown.Tick(dt)
	if !w.Cooldown.Finished() || !w.Triggered {
		return false
	}
	if !w.Automatic {
		w.Triggered = false
	}
	return true
}

// Bullet builds the projectile fired by a shooter at origin with the given
// radius, flying along dir at force units per second.
func Bullet(origin physics.Vec2, radius float64, dir physics.Vec2, force float64) *world.Bundle {
	dir = dir.Normalize()
	return world.NewBundle(models.KindBullet, models.KindCollidable, models.KindBoundaryRemoval).
		Spatial(origin.Add(dir.Scale(radius+muzzleGap)), bulletRadius).
		Velocity(dir.Scale(force)).
		Visible(true)
}
