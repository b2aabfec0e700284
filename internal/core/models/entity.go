package models

import (
	"math/bits"
	"strings"
)

// EntityID identifies an entity in the world. IDs are never reused and zero
// is never assigned.
type EntityID uint64

const NoEntity EntityID = 0

// Kind names a component type. Kinds without data are tags.
type Kind uint8

// Category tags. An entity carries at most one of these.
const (
	KindShip Kind = iota
	KindBullet
	KindAsteroid
	KindUfo
	KindExplosion

	// Behavioural tags.

	KindCollidable
	KindBoundaryWrap
	KindBoundaryRemoval

	// Data components.

	KindSpatial
	KindVelocity
	KindAngularVelocity
	KindRotation
	KindDamping
	KindSpeedLimit
	KindThrust
	KindSteering
	KindWeapon
	KindWeaponTarget
	KindShipState
	KindUfoState
	KindExpiration
	KindFlick
	KindVisibility
	KindShape

	kindCount
)

var kindNames = [kindCount]string{
	KindShip:            "ship",
	KindBullet:          "bullet",
	KindAsteroid:        "asteroid",
	KindUfo:             "ufo",
	KindExplosion:       "explosion",
	KindCollidable:      "collidable",
	KindBoundaryWrap:    "boundary_wrap",
	KindBoundaryRemoval: "boundary_removal",
	KindSpatial:         "spatial",
	KindVelocity:        "velocity",
	KindAngularVelocity: "angular_velocity",
	KindRotation:        "rotation",
	KindDamping:         "damping",
	KindSpeedLimit:      "speed_limit",
	KindThrust:          "thrust",
	KindSteering:        "steering",
	KindWeapon:          "weapon",
	KindWeaponTarget:    "weapon_target",
	KindShipState:       "ship_state",
	KindUfoState:        "ufo_state",
	KindExpiration:      "expiration",
	KindFlick:           "flick",
	KindVisibility:      "visibility",
	KindShape:           "shape",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// IsCategory reports whether k is one of the gameplay category tags.
func (k Kind) IsCategory() bool { return k <= KindExplosion }

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Mask is a set of kinds.
type Mask uint64

func MaskOf(kinds ...Kind) Mask {
	var m Mask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

func (m Mask) Has(k Kind) bool        { return m&(1<<k) != 0 }
func (m Mask) Contains(o Mask) bool   { return m&o == o }
func (m Mask) With(k Kind) Mask       { return m | 1<<k }
func (m Mask) Without(o Mask) Mask    { return m &^ o }
func (m Mask) Len() int               { return bits.OnesCount64(uint64(m)) }
func (m Mask) Intersects(o Mask) bool { return m&o != 0 }

// Category returns the category tag carried in m, if any.
func (m Mask) Category() (Kind, bool) {
	for k := KindShip; k <= KindExplosion; k++ {
		if m.Has(k) {
			return k, true
		}
	}
	return 0, false
}

func (m Mask) String() string {
	names := make([]string, 0, m.Len())
	for k := Kind(0); k < kindCount; k++ {
		if m.Has(k) {
			names = append(names, k.String())
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}
