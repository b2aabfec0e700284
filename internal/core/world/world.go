// Package world stores entities and their components for one game session.
//
// The world is mutated directly only while spawning at setup; during a frame
// systems read through the stores and queue structural changes on a Commands
// buffer, which the scheduler applies between phases. Reads against an entity
// that has been despawned miss instead of failing.
package world

import (
	"fmt"
	"slices"

	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/pkg/timer"
)

type World struct {
	nextID models.EntityID
	masks  map[models.EntityID]models.Mask
	// order keeps live and despawned ids in creation order; despawned ones are
	// compacted away on the next query.
	order   []models.EntityID
	removed int

	Spatial         *Store[models.Spatial]
	Velocity        *Store[physics.Vec2]
	AngularVelocity *Store[float64]
	Rotation        *Store[float64]
	Damping         *Store[float64]
	SpeedLimit      *Store[float64]
	Thrust          *Store[models.Thrust]
	Steering        *Store[models.Steering]
	Weapon          *Store[models.Weapon]
	WeaponTarget    *Store[models.EntityID]
	Ship            *Store[models.ShipState]
	Ufo             *Store[models.UfoState]
	Expiration      *Store[timer.Timer]
	Flick           *Store[timer.Timer]
	Visible         *Store[bool]
	Shape           *Store[models.Shape]
}

func New() *World {
	return &World{
		masks:           make(map[models.EntityID]models.Mask),
		Spatial:         newStore[models.Spatial](),
		Velocity:        newStore[physics.Vec2](),
		AngularVelocity: newStore[float64](),
		Rotation:        newStore[float64](),
		Damping:         newStore[float64](),
		SpeedLimit:      newStore[float64](),
		Thrust:          newStore[models.Thrust](),
		Steering:        newStore[models.Steering](),
		Weapon:          newStore[models.Weapon](),
		WeaponTarget:    newStore[models.EntityID](),
		Ship:            newStore[models.ShipState](),
		Ufo:             newStore[models.UfoState](),
		Expiration:      newStore[timer.Timer](),
		Flick:           newStore[timer.Timer](),
		Visible:         newStore[bool](),
		Shape:           newStore[models.Shape](),
	}
}

// Spawn creates an entity from b immediately. Systems running inside a frame
// use Commands.Spawn instead.
func (w *World) Spawn(b *Bundle) (models.EntityID, error) {
	if err := b.Validate(); err != nil {
		return models.NoEntity, err
	}
	w.nextID++
	id := w.nextID
	w.masks[id] = 0
	w.order = append(w.order, id)
	w.attach(id, b)
	return id, nil
}

// Insert adds or overwrites the components of b on an existing entity.
func (w *World) Insert(id models.EntityID, b *Bundle) error {
	mask, ok := w.masks[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrEntityNotFound, id)
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if cur, ok := mask.Category(); ok {
		if next, ok := b.mask.Category(); ok && next != cur {
			return fmt.Errorf("%w: entity %d is already a %s", ErrInvalidBundle, id, cur)
		}
	}
	w.attach(id, b)
	return nil
}

// Remove drops the kinds in m from an entity. Missing kinds are ignored.
func (w *World) Remove(id models.EntityID, m models.Mask) error {
	mask, ok := w.masks[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrEntityNotFound, id)
	}
	for _, k := range models.Kinds() {
		if m.Has(k) && mask.Has(k) {
			w.detach(id, k)
		}
	}
	w.masks[id] = mask.Without(m)
	return nil
}

// Despawn deletes an entity with all of its components.
func (w *World) Despawn(id models.EntityID) error {
	mask, ok := w.masks[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrEntityNotFound, id)
	}
	for _, k := range models.Kinds() {
		if mask.Has(k) {
			w.detach(id, k)
		}
	}
	delete(w.masks, id)
	w.removed++
	return nil
}

func (w *World) Alive(id models.EntityID) bool {
	_, ok := w.masks[id]
	return ok
}

// Mask returns the kinds carried by id.
func (w *World) Mask(id models.EntityID) (models.Mask, bool) {
	m, ok := w.masks[id]
	return m, ok
}

func (w *World) Has(id models.EntityID, k models.Kind) bool {
	return w.masks[id].Has(k)
}

func (w *World) Len() int { return len(w.masks) }

// Query returns the live entities carrying every kind in m, in creation order.
func (w *World) Query(m models.Mask) []models.EntityID {
	w.compact()
	var out []models.EntityID
	for _, id := range w.order {
		if w.masks[id].Contains(m) {
			out = append(out, id)
		}
	}
	return out
}

// Count returns how many live entities carry every kind in m.
func (w *World) Count(m models.Mask) int {
	n := 0
	for _, mask := range w.masks {
		if mask.Contains(m) {
			n++
		}
	}
	return n
}

func (w *World) compact() {
	if w.removed == 0 {
		return
	}
	w.order = slices.DeleteFunc(w.order, func(id models.EntityID) bool {
		_, ok := w.masks[id]
		return !ok
	})
	w.removed = 0
}

func (w *World) attach(id models.EntityID, b *Bundle) {
	for _, k := range models.Kinds() {
		if !b.mask.Has(k) {
			continue
		}
		switch k {
		case models.KindSpatial:
			w.Spatial.set(id, b.spatial)
		case models.KindVelocity:
			w.Velocity.set(id, b.velocity)
		case models.KindAngularVelocity:
			w.AngularVelocity.set(id, b.angularVelocity)
		case models.KindRotation:
			w.Rotation.set(id, b.rotation)
		case models.KindDamping:
			w.Damping.set(id, b.damping)
		case models.KindSpeedLimit:
			w.SpeedLimit.set(id, b.speedLimit)
		case models.KindThrust:
			w.Thrust.set(id, b.thrust)
		case models.KindSteering:
			w.Steering.set(id, b.steering)
		case models.KindWeapon:
			w.Weapon.set(id, b.weapon)
		case models.KindWeaponTarget:
			w.WeaponTarget.set(id, b.weaponTarget)
		case models.KindShipState:
			w.Ship.set(id, b.ship)
		case models.KindUfoState:
			w.Ufo.set(id, b.ufo)
		case models.KindExpiration:
			w.Expiration.set(id, b.expiration)
		case models.KindFlick:
			w.Flick.set(id, b.flick)
		case models.KindVisibility:
			w.Visible.set(id, b.visible)
		case models.KindShape:
			w.Shape.set(id, b.shape)
		}
	}
	w.masks[id] |= b.mask
}

func (w *World) detach(id models.EntityID, k models.Kind) {
	switch k {
	case models.KindSpatial:
		w.Spatial.delete(id)
	case models.KindVelocity:
		w.Velocity.delete(id)
	case models.KindAngularVelocity:
		w.AngularVelocity.delete(id)
	case models.KindRotation:
		w.Rotation.delete(id)
	case models.KindDamping:
		w.Damping.delete(id)
	case models.KindSpeedLimit:
		w.SpeedLimit.delete(id)
	case models.KindThrust:
		w.Thrust.delete(id)
	case models.KindSteering:
		w.Steering.delete(id)
	case models.KindWeapon:
		w.Weapon.delete(id)
	case models.KindWeaponTarget:
		w.WeaponTarget.delete(id)
	case models.KindShipState:
		w.Ship.delete(id)
	case models.KindUfoState:
		w.Ufo.delete(id)
	case models.KindExpiration:
		w.Expiration.delete(id)
	case models.KindFlick:
		w.Flick.delete(id)
		// a flickering entity must not stay hidden once flicking stops
		if v, ok := w.Visible.Get(id); ok {
			*v = true
		}
	case models.KindVisibility:
		w.Visible.delete(id)
	case models.KindShape:
		w.Shape.delete(id)
	}
}
