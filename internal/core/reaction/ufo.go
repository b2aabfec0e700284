package reaction

import (
	"time"

	"github.com/zeusync/asteroids/internal/config"
	"github.com/zeusync/asteroids/internal/core/events/bus"
	"github.com/zeusync/asteroids/internal/core/lifecycle"
	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/random"
	"github.com/zeusync/asteroids/internal/core/systems"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/internal/core/world"
	"github.com/zeusync/asteroids/pkg/timer"
)

// UfoHits destroys UFOs hit by bullets or asteroids. Each UFO explodes once
// per frame however many events name it; the bullets involved are despawned,
// each once.
type UfoHits struct{}

func NewUfoHits() *UfoHits { return &UfoHits{} }

func (h *UfoHits) Name() string { return "ufo_hits" }

func (h *UfoHits) Pairs() []bus.Pair {
	return []bus.Pair{
		bus.NewPair(models.KindBullet, models.KindUfo),
		bus.NewPair(models.KindAsteroid, models.KindUfo),
	}
}

func (h *UfoHits) Handle(f *systems.Frame, events []bus.HitEvent) error {
	ufos := make(map[models.EntityID]struct{}, len(events))
	bullets := make(map[models.EntityID]struct{}, len(events))
	for _, e := range events {
		if _, ok := ufos[e.Hurtable]; !ok {
			ufos[e.Hurtable] = struct{}{}
			if spatial, ok := f.World.Spatial.Get(e.Hurtable); ok {
				Burst(f.Commands, f.Rand, spatial.Position, RingsUfo, DebrisBurst)
				f.Commands.Despawn(e.Hurtable)
				f.Stats.Reactions++
				f.Log.Debug("ufo destroyed",
					log.Uint64("ufo", uint64(e.Hurtable)),
					log.String("by", e.Pair.Hittable.String()),
				)
			} else {
				f.Stats.SoftMisses++
			}
		}
		if e.Pair.Hittable != models.KindBullet {
			continue
		}
		if _, ok := bullets[e.Hittable]; ok {
			continue
		}
		bullets[e.Hittable] = struct{}{}
		f.Commands.Despawn(e.Hittable)
	}
	return nil
}

const (
	ufoShapeWidth = 30.0
	ufoEdgeGap    = 30.0
	// UFOs appear within this share of the viewport height
	ufoSpawnBand = 0.8
)

var (
	ufoSpeed       = [2]float64{100, 200}
	ufoFireForce   = [2]float64{300, 500}
	ufoFirePeriods = [2]time.Duration{1000 * time.Millisecond, 3000 * time.Millisecond}
)

// UfoSpawner launches a UFO from the left or right edge every spawn
// interval, with the configured chance.
type UfoSpawner struct {
	systems.Base
	every timer.Timer
}

func NewUfoSpawner(cfg config.Ufo) *UfoSpawner {
	return &UfoSpawner{
		Base:  systems.NewBase("ufo_spawner", systems.PhaseLifecycle, systems.PriorityLowest),
		every: timer.NewRepeating(cfg.SpawnInterval),
	}
}

func (s *UfoSpawner) Update(f *systems.Frame) error {
	if !s.every.Tick(f.Delta).Finished() || !f.Rand.Chance(f.Config.Ufo.SpawnChance) {
		return nil
	}
	b := Ufo(f.Config, f.Rand)
	if ship, ok := random.Choose(f.Rand, f.World.Query(models.MaskOf(models.KindShip))); ok {
		b.WeaponTarget(ship)
	}
	f.Commands.Spawn(b)
	f.Log.Debug("ufo spawned", log.Uint64("frame", f.Number))
	return nil
}

// Ufo builds a UFO just outside a random side edge flying toward the other
// side with an automatic weapon.
func Ufo(cfg *config.Config, rng *random.Rand) *world.Bundle {
	hw := cfg.Viewport.HalfWidth()
	band := cfg.Viewport.Height * ufoSpawnBand / 2
	y := rng.Float64Range(-band, band)

	x, dir := -(hw + ufoEdgeGap), 1.0
	if rng.Chance(0.5) {
		x, dir = hw+ufoEdgeGap, -1.0
	}

	weapon := models.NewWeapon(rng.DurationRange(ufoFirePeriods[0], ufoFirePeriods[1]), rng.Float64Range(ufoFireForce[0], ufoFireForce[1]))
	weapon.Automatic = true
	weapon.Triggered = true

	return world.NewBundle(models.KindUfo, models.KindCollidable, models.KindBoundaryRemoval).
		Spatial(physics.V(x, y), cfg.Ufo.Radius).
		Velocity(physics.V(dir*rng.Float64Range(ufoSpeed[0], ufoSpeed[1]), 0)).
		UfoState(lifecycle.UfoAlive(rng.DurationRange(lifecycle.UfoFirstAlive[0], lifecycle.UfoFirstAlive[1]))).
		Weapon(weapon).
		Shape(UfoShape()).
		Visible(true)
}

// UfoShape is the saucer outline as an open polyline.
func UfoShape() models.Shape {
	w := ufoShapeWidth
	h := w / 2.5
	hw, hh := w/2, h/2
	return models.Shape{Points: []physics.Vec2{
		physics.V(0, -hh),
		physics.V(-hw*0.7, -hh),
		physics.V(-hw, 0),
		physics.V(-hw*0.7, hh),
		physics.V(hw*0.7, hh),
		physics.V(hw, 0),
		physics.V(hw*0.7, -hh),
		physics.V(0, -hh),
	}}
}
