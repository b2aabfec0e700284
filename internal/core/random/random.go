// Package random provides the pseudorandom generator shared by the frame's
// systems. A single Rand is owned by the game and passed explicitly to every
// system that draws from it; it is not safe for concurrent use.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

type Rand struct {
	r *rand.Rand
}

// New seeds a generator from the operating system entropy source.
func New() *Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		now := uint64(time.Now().UnixNano())
		return NewSeeded(now)
	}
	return &Rand{r: rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(seed[:8]),
		binary.LittleEndian.Uint64(seed[8:]),
	))}
}

// NewSeeded returns a generator with a fixed seed.
func NewSeeded(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Rand) Float64() float64 { return r.r.Float64() }

// Float64Range draws from [lo, hi). An empty range yields lo.
func (r *Rand) Float64Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.r.Float64()*(hi-lo)
}

// IntRange draws from [lo, hi). An empty range yields lo.
func (r *Rand) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.r.IntN(hi-lo)
}

// DurationRange draws from [lo, hi) at millisecond granularity.
func (r *Rand) DurationRange(lo, hi time.Duration) time.Duration {
	ms := r.IntRange(int(lo/time.Millisecond), int(hi/time.Millisecond))
	return time.Duration(ms) * time.Millisecond
}

// Chance returns true with probability p.
func (r *Rand) Chance(p float64) bool {
	switch {
	case p <= 0:
		return false
	case p >= 1:
		return true
	}
	return r.r.Float64() < p
}

func (r *Rand) IntN(n int) int { return r.r.IntN(n) }

// Choose picks a uniformly random element of items.
func Choose[T any](r *Rand, items []T) (T, bool) {
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[r.r.IntN(len(items))], true
}
