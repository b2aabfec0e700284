// Package control maps the frame's input state onto player ship controls.
package control

import (
	"github.com/zeusync/asteroids/internal/core/input"
	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/systems"
)

var (
	steeringMask = models.MaskOf(models.KindSteering, models.KindAngularVelocity)
	thrustMask   = models.MaskOf(models.KindThrust)
	weaponMask   = models.MaskOf(models.KindShip, models.KindWeapon)
)

// Controls applies steering, thrust and trigger input. It runs first in the
// frame so lifecycle systems see this frame's trigger.
type Controls struct {
	systems.Base
}

func NewControls() *Controls {
	return &Controls{Base: systems.NewBase("controls", systems.PhaseInput, systems.PriorityNormal)}
}

func (c *Controls) Update(f *systems.Frame) error {
	w := f.World
	in := f.Input
	turn := Turn(in)
	for _, id := range w.Query(steeringMask) {
		s, _ := w.Steering.Get(id)
		av, _ := w.AngularVelocity.Get(id)
		*av = turn * s.Rate
	}
	for _, id := range w.Query(thrustMask) {
		t, _ := w.Thrust.Get(id)
		t.On = in.Thrust
	}
	for _, id := range w.Query(weaponMask) {
		weapon, _ := w.Weapon.Get(id)
		Trigger(weapon, in)
	}
	return nil
}

// Turn is +1 for left, -1 for right and 0 for neither. Left wins when both
// are held.
func Turn(in input.State) float64 {
	switch {
	case in.Left:
		return 1
	case in.Right:
		return -1
	}
	return 0
}

// Trigger applies fire input to a weapon. An automatic weapon follows the held
// button every frame. A manual one latches the frame the button went down and
// stays set until it fires.
func Trigger(w *models.Weapon, in input.State) {
	if w.Automatic {
		w.Triggered = in.Fire
		return
	}
	w.Triggered = w.Triggered || in.FirePressed
}
