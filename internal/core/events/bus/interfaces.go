package bus

import (
	"fmt"

	"github.com/zeusync/asteroids/internal/core/models"
)

// Pair is an ordered category pair. Hittable is the role that deals the hit
// and Hurtable the role that receives it; Bullet→Asteroid and Asteroid→Bullet
// are different pairs.
type Pair struct {
	Hittable models.Kind
	Hurtable models.Kind
}

func NewPair(hittable, hurtable models.Kind) Pair {
	return Pair{Hittable: hittable, Hurtable: hurtable}
}

func (p Pair) String() string {
	return fmt.Sprintf("%s->%s", p.Hittable, p.Hurtable)
}

// HitEvent reports one intersection between two entities of a pair in the
// current frame.
type HitEvent struct {
	Pair     Pair
	Hittable models.EntityID
	Hurtable models.EntityID
}

// Reader is the single consumer attached to one pair's queue.
type Reader interface {
	// ID is a unique identifier for this reader.
	ID() string
	// Name is the name of the system that owns the reader.
	Name() string
	Pair() Pair
	// Drain returns the events published for the pair since the last drain
	// and empties the queue. A second drain in the same frame is empty.
	Drain() []HitEvent
	// Detach releases the pair so another reader can attach.
	Detach()
}

// Observer is notified about publishes, drains and frame-boundary drops.
// Observers must return quickly.
type Observer interface {
	OnPublish(event HitEvent)
	OnDrained(pair Pair, reader string, events int)
	OnDropped(pair Pair, events int)
}

// Metrics is a running total kept by a HitBus.
type Metrics struct {
	Published uint64
	Drained   uint64
	Dropped   uint64
	Frames    uint64
}
