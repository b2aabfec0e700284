// Package collision reports circle intersections between entities of
// registered category pairs.
package collision

import (
	"fmt"
	"slices"

	"github.com/zeusync/asteroids/internal/core/events/bus"
	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/systems"
	"github.com/zeusync/asteroids/internal/core/world"
	"github.com/zeusync/asteroids/pkg/concurrent"
)

// Pairs the game registers, in detection order.
var GamePairs = []bus.Pair{
	bus.NewPair(models.KindBullet, models.KindAsteroid),
	bus.NewPair(models.KindBullet, models.KindUfo),
	bus.NewPair(models.KindBullet, models.KindShip),
	bus.NewPair(models.KindAsteroid, models.KindShip),
	bus.NewPair(models.KindAsteroid, models.KindUfo),
	bus.NewPair(models.KindUfo, models.KindShip),
}

// Detector is the detection-phase system. For every registered pair it tests
// each collidable entity of the hittable category against each collidable
// entity of the hurtable category and publishes one event per intersection.
// It never mutates the world.
type Detector struct {
	systems.Base
	pairs    []bus.Pair
	parallel bool
}

func NewDetector(parallel bool) *Detector {
	return &Detector{
		Base:     systems.NewBase("collision", systems.PhaseDetect, systems.PriorityNormal),
		parallel: parallel,
	}
}

func (d *Detector) Register(p bus.Pair) error {
	if !p.Hittable.IsCategory() || !p.Hurtable.IsCategory() {
		return fmt.Errorf("%w: %s", ErrNotCategory, p)
	}
	if p.Hittable == p.Hurtable {
		return fmt.Errorf("%w: %s", ErrSamePair, p)
	}
	if slices.Contains(d.pairs, p) {
		return fmt.Errorf("%w: %s", ErrPairRegistered, p)
	}
	d.pairs = append(d.pairs, p)
	return nil
}

func (d *Detector) Pairs() []bus.Pair { return slices.Clone(d.pairs) }

// Detect returns the intersections of every registered pair, grouped by pair
// in registration order.
func (d *Detector) Detect(w *world.World) [][]bus.HitEvent {
	if !d.parallel || len(d.pairs) < 2 {
		out := make([][]bus.HitEvent, len(d.pairs))
		for i, p := range d.pairs {
			out[i] = Intersections(w, p)
		}
		return out
	}
	// queries compact the world's order slice, so take them before fanning out
	sets := make(map[models.Kind][]models.EntityID)
	for _, p := range d.pairs {
		for _, k := range []models.Kind{p.Hittable, p.Hurtable} {
			if _, ok := sets[k]; !ok {
				sets[k] = w.Query(models.MaskOf(k, models.KindCollidable))
			}
		}
	}
	out, _ := concurrent.MapOrdered(d.pairs, 0, func(p bus.Pair) ([]bus.HitEvent, error) {
		return intersect(w, p, sets[p.Hittable], sets[p.Hurtable]), nil
	})
	return out
}

func (d *Detector) Update(f *systems.Frame) error {
	for _, events := range d.Detect(f.World) {
		for _, e := range events {
			if err := f.Hits.Publish(e); err != nil {
				return fmt.Errorf("publish hit: %w", err)
			}
			f.Stats.Hits++
		}
	}
	return nil
}

// Intersections scans the collidable entities of p's two categories, outer
// loop over the hittable side and inner loop over the hurtable side, both in
// creation order. Touching circles do not intersect.
func Intersections(w *world.World, p bus.Pair) []bus.HitEvent {
	as := w.Query(models.MaskOf(p.Hittable, models.KindCollidable))
	if len(as) == 0 {
		return nil
	}
	bs := w.Query(models.MaskOf(p.Hurtable, models.KindCollidable))
	return intersect(w, p, as, bs)
}

func intersect(w *world.World, p bus.Pair, as, bs []models.EntityID) []bus.HitEvent {
	var events []bus.HitEvent
	for _, a := range as {
		sa, ok := w.Spatial.Get(a)
		if !ok {
			continue
		}
		for _, b := range bs {
			sb, ok := w.Spatial.Get(b)
			if !ok {
				continue
			}
			if sa.Intersects(*sb) {
				events = append(events, bus.HitEvent{Pair: p, Hittable: a, Hurtable: b})
			}
		}
	}
	return events
}
