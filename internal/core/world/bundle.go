package world

import (
	"fmt"

	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/pkg/timer"
)

// Bundle is a set of components inserted together, either into a new entity
// or onto an existing one. Only kinds set through the builder are applied.
type Bundle struct {
	mask models.Mask

	spatial         models.Spatial
	velocity        physics.Vec2
	angularVelocity float64
	rotation        float64
	damping         float64
	speedLimit      float64
	thrust          models.Thrust
	steering        models.Steering
	weapon          models.Weapon
	weaponTarget    models.EntityID
	ship            models.ShipState
	ufo             models.UfoState
	expiration      timer.Timer
	flick           timer.Timer
	visible         bool
	shape           models.Shape
}

// NewBundle starts a bundle carrying the given tags.
func NewBundle(tags ...models.Kind) *Bundle {
	return &Bundle{mask: models.MaskOf(tags...)}
}

func (b *Bundle) Mask() models.Mask { return b.mask }

func (b *Bundle) Tag(kinds ...models.Kind) *Bundle {
	b.mask |= models.MaskOf(kinds...)
	return b
}

func (b *Bundle) Spatial(position physics.Vec2, radius float64) *Bundle {
	b.spatial = models.Spatial{Position: position, Radius: radius}
	b.mask = b.mask.With(models.KindSpatial)
	return b
}

func (b *Bundle) Velocity(v physics.Vec2) *Bundle {
	b.velocity = v
	b.mask = b.mask.With(models.KindVelocity)
	return b
}

func (b *Bundle) AngularVelocity(v float64) *Bundle {
	b.angularVelocity = v
	b.mask = b.mask.With(models.KindAngularVelocity)
	return b
}

func (b *Bundle) Rotation(angle float64) *Bundle {
	b.rotation = angle
	b.mask = b.mask.With(models.KindRotation)
	return b
}

func (b *Bundle) Damping(factor float64) *Bundle {
	b.damping = factor
	b.mask = b.mask.With(models.KindDamping)
	return b
}

func (b *Bundle) SpeedLimit(max float64) *Bundle {
	b.speedLimit = max
	b.mask = b.mask.With(models.KindSpeedLimit)
	return b
}

func (b *Bundle) Thrust(t models.Thrust) *Bundle {
	b.thrust = t
	b.mask = b.mask.With(models.KindThrust)
	return b
}

func (b *Bundle) Steering(s models.Steering) *Bundle {
	b.steering = s
	b.mask = b.mask.With(models.KindSteering)
	return b
}

func (b *Bundle) Weapon(w models.Weapon) *Bundle {
	b.weapon = w
	b.mask = b.mask.With(models.KindWeapon)
	return b
}

func (b *Bundle) WeaponTarget(id models.EntityID) *Bundle {
	b.weaponTarget = id
	b.mask = b.mask.With(models.KindWeaponTarget)
	return b
}

func (b *Bundle) ShipState(s models.ShipState) *Bundle {
	b.ship = s
	b.mask = b.mask.With(models.KindShipState)
	return b
}

func (b *Bundle) UfoState(s models.UfoState) *Bundle {
	b.ufo = s
	b.mask = b.mask.With(models.KindUfoState)
	return b
}

func (b *Bundle) Expiration(t timer.Timer) *Bundle {
	b.expiration = t
	b.mask = b.mask.With(models.KindExpiration)
	return b
}

func (b *Bundle) Flick(t timer.Timer) *Bundle {
	b.flick = t
	b.mask = b.mask.With(models.KindFlick)
	return b
}

func (b *Bundle) Visible(v bool) *Bundle {
	b.visible = v
	b.mask = b.mask.With(models.KindVisibility)
	return b
}

func (b *Bundle) Shape(s models.Shape) *Bundle {
	b.shape = s
	b.mask = b.mask.With(models.KindShape)
	return b
}

// Validate rejects bundles that would break world invariants.
func (b *Bundle) Validate() error {
	categories := 0
	for k := models.KindShip; k <= models.KindExplosion; k++ {
		if b.mask.Has(k) {
			categories++
		}
	}
	if categories > 1 {
		return fmt.Errorf("%w: more than one category in %s", ErrInvalidBundle, b.mask)
	}
	if b.mask.Has(models.KindSpatial) {
		if err := b.spatial.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBundle, err)
		}
	}
	return nil
}
