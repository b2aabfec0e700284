package lifecycle

import (
	"time"

	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/random"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/pkg/timer"
)

// UfoEffect is the velocity change that accompanies a UFO transition.
type UfoEffect uint8

const (
	UfoNoEffect UfoEffect = iota
	// UfoTurn starts a vertical drift.
	UfoTurn
	// UfoLevel stops the vertical drift.
	UfoLevel
)

const ufoDriftSpeed = 100.0

var (
	UfoChangeTime = [2]time.Duration{1000 * time.Millisecond, 2000 * time.Millisecond}
	UfoAliveTime  = [2]time.Duration{4 * time.Second, 8 * time.Second}
	UfoFirstAlive = [2]time.Duration{1 * time.Second, 5 * time.Second}
)

func UfoAlive(d time.Duration) models.UfoState {
	return models.UfoState{Phase: models.UfoAlive, Timer: timer.NewOnce(d)}
}

func UfoChangingDirection(d time.Duration) models.UfoState {
	return models.UfoState{Phase: models.UfoChangingDirection, Timer: timer.NewOnce(d)}
}

// AdvanceUfo ticks the state timer by dt. Alive flips to ChangingDirection
// for 1-2s and ChangingDirection back to Alive for 4-8s.
func AdvanceUfo(s models.UfoState, dt time.Duration, rng *random.Rand) (models.UfoState, UfoEffect) {
	if !s.Timer.Tick(dt).Finished() {
		return s, UfoNoEffect
	}
	switch s.Phase {
	case models.UfoAlive:
		return UfoChangingDirection(rng.DurationRange(UfoChangeTime[0], UfoChangeTime[1])), UfoTurn
	case models.UfoChangingDirection:
		return UfoAlive(rng.DurationRange(UfoAliveTime[0], UfoAliveTime[1])), UfoLevel
	}
	return s, UfoNoEffect
}

// Steer applies effect to a UFO velocity given its position.
func (e UfoEffect) Steer(position, velocity physics.Vec2) physics.Vec2 {
	switch e {
	case UfoTurn:
		if position.Y > 0 {
			velocity.Y = -ufoDriftSpeed
		} else {
			velocity.Y = ufoDriftSpeed
		}
	case UfoLevel:
		velocity.Y = 0
	}
	return velocity
}
