// Package lifecycle holds the per-entity state machines and the timer-driven
// systems that advance them.
//
// Transitions are pure functions of (state, elapsed time or hit) returning the
// next state and the effect the caller must apply to the world. The systems in
// this package and in package reaction turn effects into queued commands.
package lifecycle

import (
	"math"
	"time"

	"github.com/zeusync/asteroids/internal/config"
	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/internal/core/world"
	"github.com/zeusync/asteroids/pkg/timer"
)

// ShipEffect is the world change that accompanies a ship transition.
type ShipEffect uint8

const (
	ShipNoEffect ShipEffect = iota
	// ShipDisarm follows entering Dead: the ship stays as an inert
	// placeholder without collision, weapon or controls.
	ShipDisarm
	// ShipRespawn follows entering Spawning: shape, physics and flicker come
	// back but the ship can neither hit nor be hit.
	ShipRespawn
	// ShipArm follows entering Alive: weapon and collision are restored and
	// flickering stops.
	ShipArm
)

func (e ShipEffect) String() string {
	switch e {
	case ShipNoEffect:
		return "none"
	case ShipDisarm:
		return "disarm"
	case ShipRespawn:
		return "respawn"
	case ShipArm:
		return "arm"
	default:
		return "unknown"
	}
}

const (
	shipSpeedLimit = 350.0
	shipDamping    = 0.998
	shipThrust     = 1.5
	shipTurnRate   = math.Pi
	bulletForce    = 1000.0
)

// disarmed lists what a dead ship loses.
var disarmed = []models.Kind{
	models.KindCollidable,
	models.KindWeapon,
	models.KindThrust,
	models.KindSteering,
	models.KindShape,
	models.KindVelocity,
	models.KindAngularVelocity,
	models.KindFlick,
}

// ShipMachine holds the timings of the ship state machine.
type ShipMachine struct {
	DeadTime     time.Duration
	SpawningTime time.Duration
}

func NewShipMachine(cfg config.Ship) ShipMachine {
	return ShipMachine{DeadTime: cfg.DeadTime, SpawningTime: cfg.SpawningTime}
}

func Alive() models.ShipState { return models.ShipState{Phase: models.ShipAlive} }

func Dead(d time.Duration) models.ShipState {
	return models.ShipState{Phase: models.ShipDead, Timer: timer.NewOnce(d)}
}

func Spawning(d time.Duration) models.ShipState {
	return models.ShipState{Phase: models.ShipSpawning, Timer: timer.NewOnce(d)}
}

// Hit kills an alive ship. A ship that is already dead or spawning ignores
// the hit.
func (m ShipMachine) Hit(s models.ShipState) (models.ShipState, ShipEffect) {
	if s.Phase != models.ShipAlive {
		return s, ShipNoEffect
	}
	return Dead(m.DeadTime), ShipDisarm
}

// Advance ticks the state timer by dt and moves to the next phase once it
// elapses. Alive ships have no timer.
func (m ShipMachine) Advance(s models.ShipState, dt time.Duration) (models.ShipState, ShipEffect) {
	switch s.Phase {
	case models.ShipDead:
		if s.Timer.Tick(dt).Finished() {
			return Spawning(m.SpawningTime), ShipRespawn
		}
	case models.ShipSpawning:
		if s.Timer.Tick(dt).Finished() {
			return Alive(), ShipArm
		}
	}
	return s, ShipNoEffect
}

// ShipShape is the outline of the ship pointing along +X.
func ShipShape() models.Shape {
	points := []physics.Vec2{
		physics.Zero,
		physics.V(-8, -8),
		physics.V(0, 12),
		physics.V(8, -8),
	}
	for i := range points {
		points[i] = points[i].Rotate(-math.Pi / 2)
	}
	return models.Shape{Points: points, Closed: true}
}

// NewShip is the bundle the game starts with: a ship that finishes spawning
// on its first lifecycle tick.
func NewShip(cfg config.Ship) *world.Bundle {
	return respawn(cfg, world.NewBundle(models.KindShip)).ShipState(Spawning(0))
}

// ApplyShip queues the commands for effect on ship id.
func ApplyShip(cmds *world.Commands, id models.EntityID, effect ShipEffect, cfg config.Ship) {
	switch effect {
	case ShipDisarm:
		cmds.Remove(id, disarmed...)
	case ShipRespawn:
		cmds.Insert(id, respawn(cfg, world.NewBundle()))
	case ShipArm:
		weapon := models.NewWeapon(cfg.FireRate, bulletForce)
		weapon.Automatic = cfg.AutomaticFire
		cmds.Insert(id, world.NewBundle(models.KindCollidable).Weapon(weapon))
		cmds.Remove(id, models.KindFlick)
	}
}

func respawn(cfg config.Ship, b *world.Bundle) *world.Bundle {
	return b.
		Tag(models.KindBoundaryWrap).
		Shape(ShipShape()).
		Spatial(physics.Zero, cfg.Radius).
		Rotation(0).
		Velocity(physics.Zero).
		AngularVelocity(0).
		SpeedLimit(shipSpeedLimit).
		Damping(shipDamping).
		Thrust(models.Thrust{Force: shipThrust}).
		Steering(models.Steering{Rate: shipTurnRate}).
		Visible(true).
		Flick(timer.NewRepeating(cfg.FlickFrequency))
}
