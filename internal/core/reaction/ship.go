package reaction

import (
	"github.com/zeusync/asteroids/internal/core/events/bus"
	"github.com/zeusync/asteroids/internal/core/lifecycle"
	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/systems"
)

// ShipHits kills ships hit by asteroids, bullets or UFOs. Detection output
// for the frame is fixed before any reaction runs, so a ship can appear in
// several events; only the first one takes effect.
type ShipHits struct{}

func NewShipHits() *ShipHits { return &ShipHits{} }

func (h *ShipHits) Name() string { return "ship_hits" }

func (h *ShipHits) Pairs() []bus.Pair {
	return []bus.Pair{
		bus.NewPair(models.KindAsteroid, models.KindShip),
		bus.NewPair(models.KindBullet, models.KindShip),
		bus.NewPair(models.KindUfo, models.KindShip),
	}
}

func (h *ShipHits) Handle(f *systems.Frame, events []bus.HitEvent) error {
	machine := lifecycle.NewShipMachine(f.Config.Ship)
	hit := make(map[models.EntityID]struct{}, len(events))
	for _, e := range events {
		ship := e.Hurtable
		if _, ok := hit[ship]; ok {
			continue
		}
		hit[ship] = struct{}{}

		state, ok := f.World.Ship.Get(ship)
		if !ok {
			f.Stats.SoftMisses++
			continue
		}
		spatial, ok := f.World.Spatial.Get(ship)
		if !ok {
			f.Stats.SoftMisses++
			continue
		}
		next, effect := machine.Hit(*state)
		if effect == lifecycle.ShipNoEffect {
			continue
		}
		*state = next
		lifecycle.ApplyShip(f.Commands, ship, effect, f.Config.Ship)
		Burst(f.Commands, f.Rand, spatial.Position, RingsShip, ShipBurst)
		f.Stats.Reactions++
		f.Log.Info("ship destroyed",
			log.Uint64("ship", uint64(ship)),
			log.String("by", e.Pair.Hittable.String()),
			log.Uint64("frame", f.Number),
		)
	}
	return nil
}
