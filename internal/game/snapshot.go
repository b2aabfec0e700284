package game

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/asteroids/internal/core/models"
	"github.com/zeusync/asteroids/internal/core/world"
)

// Entity is the read-only view of one entity in a snapshot.
type Entity struct {
	ID       uint64  `json:"id"`
	Kind     string  `json:"kind"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Rotation float64 `json:"rotation,omitempty"`
	Visible  bool    `json:"visible"`
	State    string  `json:"state,omitempty"`
}

// Snapshot is the state of the world after a frame. Digest covers the
// entities only, so two frames with an identical world share it.
type Snapshot struct {
	Frame    uint64   `json:"frame"`
	Entities []Entity `json:"entities"`
	Digest   uint64   `json:"digest"`
}

// Count returns the number of entities of the given kind name.
func (s Snapshot) Count(kind string) int {
	n := 0
	for _, e := range s.Entities {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

var spatialMask = models.MaskOf(models.KindSpatial)

// Capture builds the snapshot of every entity with a position, in creation
// order.
func Capture(frame uint64, w *world.World) Snapshot {
	ids := w.Query(spatialMask)
	snap := Snapshot{Frame: frame, Entities: make([]Entity, 0, len(ids))}
	d := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}

	for _, id := range ids {
		mask, _ := w.Mask(id)
		sp, _ := w.Spatial.Get(id)
		e := Entity{
			ID:      uint64(id),
			X:       sp.Position.X,
			Y:       sp.Position.Y,
			Radius:  sp.Radius,
			Visible: true,
		}
		if k, ok := mask.Category(); ok {
			e.Kind = k.String()
		}
		if r, ok := w.Rotation.Get(id); ok {
			e.Rotation = *r
		}
		if v, ok := w.Visible.Get(id); ok {
			e.Visible = *v
		}
		if st, ok := w.Ship.Get(id); ok {
			e.State = st.Phase.String()
		} else if st, ok := w.Ufo.Get(id); ok {
			e.State = st.Phase.String()
		}
		snap.Entities = append(snap.Entities, e)

		put(e.ID)
		put(uint64(mask))
		put(math.Float64bits(e.X))
		put(math.Float64bits(e.Y))
		put(math.Float64bits(e.Radius))
		put(math.Float64bits(e.Rotation))
		if e.Visible {
			put(1)
		} else {
			put(0)
		}
		_, _ = d.WriteString(e.State)
	}
	snap.Digest = d.Sum64()
	return snap
}
