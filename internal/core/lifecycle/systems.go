package lifecycle

import (
	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/random"
	"github.com/zeusync/asteroids/internal/core/systems"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/internal/core/world"
)

var (
	shipMask       = models.MaskOf(models.KindShip, models.KindShipState)
	ufoMask        = models.MaskOf(models.KindUfo, models.KindUfoState)
	weaponMask     = models.MaskOf(models.KindWeapon, models.KindSpatial)
	expirationMask = models.MaskOf(models.KindExpiration)
	flickMask      = models.MaskOf(models.KindFlick)
)

// ShipSystem advances the timer-driven ship transitions. Hit-driven ones
// happen in the reaction phase.
type ShipSystem struct {
	systems.Base
}

func NewShipSystem() *ShipSystem {
	return &ShipSystem{Base: systems.NewBase("ship_state", systems.PhaseLifecycle, systems.PriorityHighest)}
}

func (s *ShipSystem) Update(f *systems.Frame) error {
	machine := NewShipMachine(f.Config.Ship)
	for _, id := range f.World.Query(shipMask) {
		state, ok := f.World.Ship.Get(id)
		if !ok {
			continue
		}
		next, effect := machine.Advance(*state, f.Delta)
		*state = next
		if effect == ShipNoEffect {
			continue
		}
		ApplyShip(f.Commands, id, effect, f.Config.Ship)
		f.Log.Info("ship state changed",
			log.Uint64("entity", uint64(id)),
			log.String("state", next.Phase.String()),
			log.String("effect", effect.String()),
			log.Uint64("frame", f.Number),
		)
	}
	return nil
}

// UfoSystem advances UFO state and retargets every UFO weapon at a random
// alive ship on every tick.
type UfoSystem struct {
	systems.Base
}

func NewUfoSystem() *UfoSystem {
	return &UfoSystem{Base: systems.NewBase("ufo_state", systems.PhaseLifecycle, systems.PriorityHigh)}
}

func (s *UfoSystem) Update(f *systems.Frame) error {
	w := f.World
	ufos := w.Query(ufoMask)
	if len(ufos) == 0 {
		return nil
	}
	alive := AliveShips(f)

	for _, id := range ufos {
		state, ok := w.Ufo.Get(id)
		if !ok {
			continue
		}
		next, effect := AdvanceUfo(*state, f.Delta, f.Rand)
		*state = next
		if effect != UfoNoEffect {
			vel, hasVel := w.Velocity.Get(id)
			spatial, hasSpatial := w.Spatial.Get(id)
			if hasVel && hasSpatial {
				*vel = effect.Steer(spatial.Position, *vel)
			}
		}
		retarget(f, id, alive, f.Rand)
	}
	return nil
}

// AliveShips lists ships in the Alive phase, in creation order.
func AliveShips(f *systems.Frame) []models.EntityID {
	var out []models.EntityID
	for _, id := range f.World.Query(shipMask) {
		if st, ok := f.World.Ship.Get(id); ok && st.Phase == models.ShipAlive {
			out = append(out, id)
		}
	}
	return out
}

func retarget(f *systems.Frame, id models.EntityID, alive []models.EntityID, rng *random.Rand) {
	weapon, hasWeapon := f.World.Weapon.Get(id)
	ship, found := random.Choose(rng, alive)
	if !found {
		if hasWeapon {
			weapon.Triggered = false
		}
		if f.World.Has(id, models.KindWeaponTarget) {
			f.Commands.Remove(id, models.KindWeaponTarget)
		}
		return
	}
	if hasWeapon {
		weapon.Triggered = true
	}
	if target, ok := f.World.WeaponTarget.Get(id); ok {
		*target = ship
		return
	}
	f.Commands.Insert(id, world.NewBundle().WeaponTarget(ship))
}

// WeaponSystem ticks every weapon and spawns a bullet for each one that
// fires this frame.
type WeaponSystem struct {
	systems.Base
}

func NewWeaponSystem() *WeaponSystem {
	return &WeaponSystem{Base: systems.NewBase("weapon", systems.PhaseLifecycle, systems.PriorityLow)}
}

func (s *WeaponSystem) Update(f *systems.Frame) error {
	w := f.World
	for _, id := range w.Query(weaponMask) {
		weapon, ok := w.Weapon.Get(id)
		if !ok || !Fire(weapon, f.Delta) {
			continue
		}
		spatial, ok := w.Spatial.Get(id)
		if !ok {
			continue
		}
		f.Commands.Spawn(Bullet(spatial.Position, spatial.Radius, aim(f, id, spatial.Position), weapon.Force))
		f.Log.Debug("weapon fired", log.Uint64("entity", uint64(id)), log.Uint64("frame", f.Number))
	}
	return nil
}

// aim points at the weapon's target while it exists, otherwise along the
// shooter's rotation.
func aim(f *systems.Frame, id models.EntityID, from physics.Vec2) physics.Vec2 {
	if target, ok := f.World.WeaponTarget.Get(id); ok {
		if ts, ok := f.World.Spatial.Get(*target); ok {
			return ts.Position.Sub(from).Normalize()
		}
	}
	angle := 0.0
	if r, ok := f.World.Rotation.Get(id); ok {
		angle = *r
	}
	return physics.FromAngle(angle)
}

// ExpirationSystem despawns entities whose lifetime has elapsed.
type ExpirationSystem struct {
	systems.Base
}

func NewExpirationSystem() *ExpirationSystem {
	return &ExpirationSystem{Base: systems.NewBase("expiration", systems.PhaseLifecycle, systems.PriorityNormal)}
}

func (s *ExpirationSystem) Update(f *systems.Frame) error {
	for _, id := range f.World.Query(expirationMask) {
		t, ok := f.World.Expiration.Get(id)
		if ok && t.Tick(f.Delta).Finished() {
			f.Commands.Despawn(id)
		}
	}
	return nil
}

// FlickSystem toggles visibility every time a flick timer wraps.
type FlickSystem struct {
	systems.Base
}

func NewFlickSystem() *FlickSystem {
	return &FlickSystem{Base: systems.NewBase("flick", systems.PhaseLifecycle, systems.PriorityLowest)}
}

func (s *FlickSystem) Update(f *systems.Frame) error {
	for _, id := range f.World.Query(flickMask) {
		t, ok := f.World.Flick.Get(id)
		if !ok || !t.Tick(f.Delta).Finished() {
			continue
		}
		if v, ok := f.World.Visible.Get(id); ok {
			*v = !*v
			continue
		}
		f.Commands.Insert(id, world.NewBundle().Visible(false))
	}
	return nil
}
