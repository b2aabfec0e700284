package reaction

import (
	"math"
	"time"

	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/random"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/internal/core/world"
	"github.com/zeusync/asteroids/pkg/timer"
)

// ParticlesPerRing is the number of particles in one ring of a burst. A burst
// of n rings spawns n*ParticlesPerRing particles.
const ParticlesPerRing = 12

const (
	particleRadius  = 1.0
	particleDamping = 0.97
	// particles start between these distances from the burst origin
	scatterMin = 1.0
	scatterMax = 20.0
)

// Ring counts per exploding entity.
const (
	RingsSmallAsteroid  = 1
	RingsMediumAsteroid = 3
	RingsBigAsteroid    = 5
	RingsUfo            = 5
	RingsShip           = 6
)

// BurstProfile sets the speed and lifetime ranges of burst particles.
type BurstProfile struct {
	Speed    [2]float64
	Lifetime [2]time.Duration
}

var (
	DebrisBurst = BurstProfile{
		Speed:    [2]float64{50, 100},
		Lifetime: [2]time.Duration{400 * time.Millisecond, 700 * time.Millisecond},
	}
	ShipBurst = BurstProfile{
		Speed:    [2]float64{150, 250},
		Lifetime: [2]time.Duration{1000 * time.Millisecond, 1500 * time.Millisecond},
	}
	flickRange = [2]time.Duration{20 * time.Millisecond, 30 * time.Millisecond}
)

// Burst queues rings*ParticlesPerRing short-lived particles around origin.
// Particle n flies along the n-th twelfth of the circle plus a random angle
// inside that sector.
func Burst(cmds *world.Commands, rng *random.Rand, origin physics.Vec2, rings int, p BurstProfile) int {
	sector := 2 * math.Pi / ParticlesPerRing
	n := rings * ParticlesPerRing
	for i := 0; i < n; i++ {
		angle := sector*float64(i%ParticlesPerRing) + rng.Float64Range(0, sector)
		dir := physics.FromAngle(angle)
		cmds.Spawn(world.NewBundle(models.KindExplosion).
			Spatial(origin.Add(dir.Scale(rng.Float64Range(scatterMin, scatterMax))), particleRadius).
			Velocity(dir.Scale(rng.Float64Range(p.Speed[0], p.Speed[1]))).
			Damping(particleDamping).
			Expiration(timer.NewOnce(rng.DurationRange(p.Lifetime[0], p.Lifetime[1]))).
			Flick(timer.NewRepeating(rng.DurationRange(flickRange[0], flickRange[1]))).
			Visible(true))
	}
	return n
}
