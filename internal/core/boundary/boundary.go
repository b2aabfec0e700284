// Package boundary wraps or removes entities that leave the play area.
//
// An entity has left when its centre is more than twice its radius beyond an
// edge, tested per axis. The double radius keeps anything drawn around the
// entity off screen before it moves.
package boundary

import (
	"github.com/zeusync/asteroids/internal/config"
	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/systems"
	"github.com/zeusync/asteroids/internal/core/systems/physics"
)

var (
	wrapMask    = models.MaskOf(models.KindBoundaryWrap, models.KindSpatial)
	removalMask = models.MaskOf(models.KindBoundaryRemoval, models.KindSpatial)
)

// Outside reports whether a circle at p with radius r has left the viewport
// on either axis.
func Outside(v config.Viewport, p physics.Vec2, r float64) bool {
	return exited(p.X, r, v.HalfWidth()) != 0 || exited(p.Y, r, v.HalfHeight()) != 0
}

// Wrapped returns p moved to the opposite edge on every axis it exited.
func Wrapped(v config.Viewport, p physics.Vec2, r float64) physics.Vec2 {
	return physics.V(wrapAxis(p.X, r, v.HalfWidth()), wrapAxis(p.Y, r, v.HalfHeight()))
}

// exited returns -1 when c is past the low edge, 1 when past the high edge
// and 0 while inside.
func exited(c, r, half float64) int {
	edge := half + 2*r
	switch {
	case c < -edge:
		return -1
	case c > edge:
		return 1
	}
	return 0
}

func wrapAxis(c, r, half float64) float64 {
	edge := half + 2*r
	switch exited(c, r, half) {
	case -1:
		return edge
	case 1:
		return -edge
	}
	return c
}

// Wrap moves entities tagged BoundaryWrap to the opposite edge.
type Wrap struct {
	systems.Base
}

func NewWrap() *Wrap {
	return &Wrap{Base: systems.NewBase("boundary_wrap", systems.PhaseBoundary, systems.PriorityNormal)}
}

func (s *Wrap) Update(f *systems.Frame) error {
	v := f.Config.Viewport
	for _, id := range f.World.Query(wrapMask) {
		if sp, ok := f.World.Spatial.Get(id); ok {
			sp.Position = Wrapped(v, sp.Position, sp.Radius)
		}
	}
	return nil
}

// Removal despawns entities tagged BoundaryRemoval once they are out.
type Removal struct {
	systems.Base
}

func NewRemoval() *Removal {
	return &Removal{Base: systems.NewBase("boundary_removal", systems.PhaseBoundary, systems.PriorityNormal)}
}

func (s *Removal) Update(f *systems.Frame) error {
	v := f.Config.Viewport
	for _, id := range f.World.Query(removalMask) {
		if sp, ok := f.World.Spatial.Get(id); ok && Outside(v, sp.Position, sp.Radius) {
			f.Commands.Despawn(id)
		}
	}
	return nil
}
