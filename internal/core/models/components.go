package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/pkg/timer"
)

var ErrNegativeRadius = errors.New("spatial radius must not be negative")

// Spatial is the collision circle of an entity.
type Spatial struct {
	Position physics.Vec2
	Radius   float64
}

func (s Spatial) Validate() error {
	if s.Radius < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeRadius, s.Radius)
	}
	return nil
}

func (s Spatial) Intersects(o Spatial) bool {
	return physics.CirclesIntersect(s.Position, s.Radius, o.Position, o.Radius)
}

// Thrust accelerates an entity along its rotation while On.
type Thrust struct {
	Force float64
	On    bool
}

// Steering is the turn rate applied while a steering key is held, in radians
// per second.
type Steering struct {
	Rate float64
}

// Weapon fires a bullet when its cooldown wraps while Triggered is set.
type Weapon struct {
	Cooldown  timer.Timer
	Force     float64
	Triggered bool
	Automatic bool
}

func NewWeapon(period time.Duration, force float64) Weapon {
	return Weapon{Cooldown: timer.NewRepeating(period), Force: force}
}

// Period is the time between two shots.
func (w Weapon) Period() time.Duration { return w.Cooldown.Duration }

// Shape is the outline drawn for an entity, relative to its position.
type Shape struct {
	Points []physics.Vec2
	Closed bool
}

type ShipPhase uint8

const (
	ShipAlive ShipPhase = iota
	ShipDead
	ShipSpawning
)

func (p ShipPhase) String() string {
	switch p {
	case ShipAlive:
		return "alive"
	case ShipDead:
		return "dead"
	case ShipSpawning:
		return "spawning"
	default:
		return "unknown"
	}
}

// ShipState is the tagged state of a ship. Timer is only meaningful for the
// Dead and Spawning phases.
type ShipState struct {
	Phase ShipPhase
	Timer timer.Timer
}

func (s ShipState) Remaining() time.Duration {
	if s.Phase == ShipAlive {
		return 0
	}
	return s.Timer.Remaining()
}

type UfoPhase uint8

const (
	UfoAlive UfoPhase = iota
	UfoChangingDirection
)

func (p UfoPhase) String() string {
	switch p {
	case UfoAlive:
		return "alive"
	case UfoChangingDirection:
		return "changing_direction"
	default:
		return "unknown"
	}
}

type UfoState struct {
	Phase UfoPhase
	Timer timer.Timer
}

func (s UfoState) Remaining() time.Duration { return s.Timer.Remaining() }
