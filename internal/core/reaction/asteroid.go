package reaction

import (
	"math"

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

// SpawnRequest asks for an asteroid of the given radius at Position. It is
// the first half of asteroid creation; the Generator resolves velocity and
// outline in the same frame.
type SpawnRequest struct {
	Position physics.Vec2
	Radius   float64
}

// SpawnRequests is the frame queue between spawn policy and the Generator.
type SpawnRequests = bus.Queue[SpawnRequest]

func NewSpawnRequests() *SpawnRequests { return bus.NewQueue[SpawnRequest]() }

// AsteroidHits despawns asteroids shot by bullets, splits big and medium ones
// and scatters debris sized to the asteroid.
type AsteroidHits struct {
	requests *SpawnRequests
}

func NewAsteroidHits(requests *SpawnRequests) *AsteroidHits {
	return &AsteroidHits{requests: requests}
}

func (h *AsteroidHits) Name() string { return "asteroid_hits" }

func (h *AsteroidHits) Pairs() []bus.Pair {
	return []bus.Pair{bus.NewPair(models.KindBullet, models.KindAsteroid)}
}

func (h *AsteroidHits) Handle(f *systems.Frame, events []bus.HitEvent) error {
	sizes := f.Config.Asteroids.Sizes
	removed := make(map[models.EntityID]struct{}, 2*len(events))
	for _, e := range events {
		asteroid, bullet := e.Hurtable, e.Hittable
		if _, ok := removed[asteroid]; ok {
			continue
		}
		if _, ok := removed[bullet]; ok {
			continue
		}
		spatial, ok := f.World.Spatial.Get(asteroid)
		if !ok {
			f.Stats.SoftMisses++
			f.Log.Debug("asteroid hit without spatial", log.Uint64("asteroid", uint64(asteroid)))
			continue
		}

		class := sizes.Classify(spatial.Radius)
		for _, r := range Split(sizes, class, f.Rand) {
			h.requests.Push(SpawnRequest{Position: spatial.Position, Radius: r})
		}
		Burst(f.Commands, f.Rand, spatial.Position, Rings(class), DebrisBurst)

		f.Commands.Despawn(asteroid)
		f.Commands.Despawn(bullet)
		removed[asteroid] = struct{}{}
		removed[bullet] = struct{}{}
		f.Stats.Reactions++
	}
	return nil
}

// Split draws the radii of the fragments of an asteroid of class c: three
// medium ones for a big asteroid, two small ones for a medium asteroid and
// none otherwise. Each fragment gets its own radius.
func Split(sizes config.AsteroidSizes, c config.SizeClass, rng *random.Rand) []float64 {
	var (
		n    int
		tier config.Range
	)
	switch c {
	case config.SizeBig:
		n, tier = 3, sizes.Medium
	case config.SizeMedium:
		n, tier = 2, sizes.Small
	default:
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64Range(tier.Min, tier.Max)
	}
	return out
}

// Rings is the burst size for an asteroid of class c.
func Rings(c config.SizeClass) int {
	switch c {
	case config.SizeBig:
		return RingsBigAsteroid
	case config.SizeMedium:
		return RingsMediumAsteroid
	default:
		return RingsSmallAsteroid
	}
}

// speed ranges per tier
var asteroidSpeed = map[config.SizeClass][2]float64{
	config.SizeBig:    {30, 60},
	config.SizeMedium: {60, 80},
	config.SizeSmall:  {80, 100},
}

// Generator resolves spawn requests into asteroids.
type Generator struct {
	systems.Base
	requests *SpawnRequests
}

func NewGenerator(requests *SpawnRequests) *Generator {
	return &Generator{
		Base:     systems.NewBase("asteroid_generator", systems.PhaseReact, systems.PriorityLowest),
		requests: requests,
	}
}

func (g *Generator) Update(f *systems.Frame) error {
	for _, req := range g.requests.Drain() {
		f.Commands.Spawn(Asteroid(f.Config, f.Rand, req))
	}
	return nil
}

// Asteroid builds an asteroid for req heading toward a random point of the
// viewport at a speed set by its size class.
func Asteroid(cfg *config.Config, rng *random.Rand, req SpawnRequest) *world.Bundle {
	hw, hh := cfg.Viewport.HalfWidth(), cfg.Viewport.HalfHeight()
	aim := physics.V(rng.Float64Range(-hw, hw), rng.Float64Range(-hh, hh))

	speed, ok := asteroidSpeed[cfg.Asteroids.Sizes.Classify(req.Radius)]
	if !ok {
		speed = asteroidSpeed[config.SizeSmall]
	}
	velocity := aim.Sub(req.Position).Normalize().Scale(rng.Float64Range(speed[0], speed[1]))

	return world.NewBundle(models.KindAsteroid, models.KindCollidable, models.KindBoundaryRemoval).
		Spatial(req.Position, req.Radius).
		Velocity(velocity).
		Rotation(0).
		AngularVelocity(rng.Float64Range(-3, 3)).
		Shape(Polygon(rng, req.Radius)).
		Visible(true)
}

// Polygon draws a closed outline of 6 to 11 vertices evenly spread around the
// circle, each pulled to 50-120% of radius.
func Polygon(rng *random.Rand, radius float64) models.Shape {
	sides := rng.IntRange(6, 12)
	n := float64(sides)
	internal := (n - 2) * math.Pi / n
	offset := -internal / 2
	step := 2 * math.Pi / n

	points := make([]physics.Vec2, sides)
	for i := range points {
		angle := float64(i)*step + offset
		points[i] = physics.V(
			radius*rng.Float64Range(0.5, 1.2)*math.Cos(angle),
			radius*rng.Float64Range(0.5, 1.2)*math.Sin(angle),
		)
	}
	return models.Shape{Points: points, Closed: true}
}

// AsteroidSpawner requests an asteroid of a random size class just outside a
// random edge of the viewport every spawn interval, with the configured
// chance.
type AsteroidSpawner struct {
	systems.Base
	requests *SpawnRequests
	every    timer.Timer
}

func NewAsteroidSpawner(cfg config.Asteroids, requests *SpawnRequests) *AsteroidSpawner {
	return &AsteroidSpawner{
		Base:     systems.NewBase("asteroid_spawner", systems.PhaseLifecycle, systems.PriorityLowest),
		requests: requests,
		every:    timer.NewRepeating(cfg.SpawnInterval),
	}
}

func (s *AsteroidSpawner) Update(f *systems.Frame) error {
	if !s.every.Tick(f.Delta).Finished() || !f.Rand.Chance(f.Config.Asteroids.SpawnChance) {
		return nil
	}
	s.requests.Push(OffscreenRequest(f.Config, f.Rand))
	return nil
}

// OffscreenRequest picks a size class uniformly, a radius inside it and a
// position twice the radius beyond a random edge.
func OffscreenRequest(cfg *config.Config, rng *random.Rand) SpawnRequest {
	sizes := cfg.Asteroids.Sizes
	var tier config.Range
	switch rng.IntRange(1, 4) {
	case 3:
		tier = sizes.Big
	case 2:
		tier = sizes.Medium
	default:
		tier = sizes.Small
	}
	radius := rng.Float64Range(tier.Min, tier.Max)
	return SpawnRequest{Position: edgePoint(cfg.Viewport, rng, 2*radius), Radius: radius}
}

// edgePoint returns a point margin beyond one of the four viewport edges,
// picking the edge on the side of a random inner point.
func edgePoint(v config.Viewport, rng *random.Rand, margin float64) physics.Vec2 {
	hw, hh := v.HalfWidth(), v.HalfHeight()
	x, y := rng.Float64Range(-hw, hw), rng.Float64Range(-hh, hh)
	if rng.Chance(0.5) {
		if y > 0 {
			return physics.V(x, hh+margin)
		}
		return physics.V(x, -(hh + margin))
	}
	if x > 0 {
		return physics.V(hw+margin, y)
	}
	return physics.V(-(hw + margin), y)
}
