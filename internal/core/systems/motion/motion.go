// Package motion integrates velocities at a fixed time step.
package motion

import (
	"time"

	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/systems"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
	"github.com/zeusync/asteroids/internal/core/world"
)

// maxStepsPerFrame bounds catch-up work after a long frame; time beyond it is
// dropped.
const maxStepsPerFrame = 8

var (
	thrustMask   = models.MaskOf(models.KindThrust, models.KindVelocity)
	dampingMask  = models.MaskOf(models.KindDamping, models.KindVelocity)
	limitMask    = models.MaskOf(models.KindSpeedLimit, models.KindVelocity)
	movingMask   = models.MaskOf(models.KindVelocity, models.KindSpatial)
	rotatingMask = models.MaskOf(models.KindAngularVelocity)
)

// Integrator accumulates frame time and runs whole physics steps: thrust,
// damping, speed limit, then movement and rotation.
type Integrator struct {
	systems.Base
	step        time.Duration
	accumulator time.Duration
	steps       uint64
}

func NewIntegrator(step time.Duration) *Integrator {
	return &Integrator{
		Base: systems.NewBase("motion", systems.PhasePhysics, systems.PriorityNormal),
		step: step,
	}
}

// Steps is the number of physics steps run so far.
func (in *Integrator) Steps() uint64 { return in.steps }

func (in *Integrator) Update(f *systems.Frame) error {
	in.accumulator += f.Delta
	n := 0
	for in.accumulator >= in.step {
		in.accumulator -= in.step
		if n == maxStepsPerFrame {
			in.accumulator = 0
			break
		}
		Step(f.World, in.step.Seconds())
		in.steps++
		n++
	}
	return nil
}

// Step advances every moving entity by dt seconds.
func Step(w *world.World, dt float64) {
	for _, id := range w.Query(thrustMask) {
		t, _ := w.Thrust.Get(id)
		if !t.On {
			continue
		}
		v, _ := w.Velocity.Get(id)
		angle := 0.0
		if r, ok := w.Rotation.Get(id); ok {
			angle = *r
		}
		*v = v.Add(physics.FromAngle(angle).Scale(t.Force))
	}
	for _, id := range w.Query(dampingMask) {
		d, _ := w.Damping.Get(id)
		v, _ := w.Velocity.Get(id)
		*v = v.Scale(*d)
	}
	for _, id := range w.Query(limitMask) {
		l, _ := w.SpeedLimit.Get(id)
		v, _ := w.Velocity.Get(id)
		*v = v.ClampLength(*l)
	}
	for _, id := range w.Query(movingMask) {
		v, _ := w.Velocity.Get(id)
		s, _ := w.Spatial.Get(id)
		s.Position = s.Position.Add(v.Scale(dt))
	}
	for _, id := range w.Query(rotatingMask) {
		av, _ := w.AngularVelocity.Get(id)
		if r, ok := w.Rotation.Get(id); ok {
			*r += *av * dt
		}
	}
}
