package bus

import (
	"fmt"

	"github.com/google/uuid"
)

// Queue is a frame-scoped FIFO. Items are read once by Drain and anything left
// when the frame ends is dropped by Reset.
type Queue[T any] struct {
	items []T
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

func (q *Queue[T]) Push(v T) { q.items = append(q.items, v) }

func (q *Queue[T]) Len() int { return len(q.items) }

// Drain hands the queued items to the caller and empties the queue.
func (q *Queue[T]) Drain() []T {
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Reset drops queued items and returns how many were dropped.
func (q *Queue[T]) Reset() int {
	n := len(q.items)
	q.items = nil
	return n
}

type reader struct {
	id   string
	name string
	pair Pair
	bus  *HitBus
}

func (r *reader) ID() string   { return r.id }
func (r *reader) Name() string { return r.name }
func (r *reader) Pair() Pair   { return r.pair }

func (r *reader) Drain() []HitEvent {
	return r.bus.drain(r.pair, r.name)
}

func (r *reader) Detach() {
	if cur, ok := r.bus.readers[r.pair]; ok && cur == r {
		delete(r.bus.readers, r.pair)
	}
}

// HitBus holds one queue per declared pair. It belongs to the frame loop and
// is not safe for concurrent use: detection that runs pairs in parallel must
// publish from a single goroutine.
type HitBus struct {
	queues    map[Pair]*Queue[HitEvent]
	order     []Pair
	readers   map[Pair]*reader
	observers map[Observer]struct{}
	metrics   Metrics
}

func New() *HitBus {
	return &HitBus{
		queues:    make(map[Pair]*Queue[HitEvent]),
		readers:   make(map[Pair]*reader),
		observers: make(map[Observer]struct{}),
	}
}

// Declare creates the queue for a pair.
func (b *HitBus) Declare(p Pair) error {
	if _, ok := b.queues[p]; ok {
		return fmt.Errorf("%w: %s", ErrPairDeclared, p)
	}
	b.queues[p] = NewQueue[HitEvent]()
	b.order = append(b.order, p)
	return nil
}

// Pairs lists declared pairs in declaration order.
func (b *HitBus) Pairs() []Pair {
	out := make([]Pair, len(b.order))
	copy(out, b.order)
	return out
}

func (b *HitBus) Publish(e HitEvent) error {
	q, ok := b.queues[e.Pair]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPairUnknown, e.Pair)
	}
	q.Push(e)
	b.metrics.Published++
	for obs := range b.observers {
		obs.OnPublish(e)
	}
	return nil
}

// Attach registers name as the only reader of p.
func (b *HitBus) Attach(p Pair, name string) (Reader, error) {
	if _, ok := b.queues[p]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrPairUnknown, p)
	}
	if cur, ok := b.readers[p]; ok {
		return nil, fmt.Errorf("%w: %s is read by %s", ErrReaderAttached, p, cur.name)
	}
	r := &reader{id: uuid.NewString(), name: name, pair: p, bus: b}
	b.readers[p] = r
	return r, nil
}

// Pending returns the number of undrained events for p.
func (b *HitBus) Pending(p Pair) int {
	if q, ok := b.queues[p]; ok {
		return q.Len()
	}
	return 0
}

// EndFrame drops every undrained event and returns the number dropped.
func (b *HitBus) EndFrame() int {
	total := 0
	for _, p := range b.order {
		n := b.queues[p].Reset()
		if n == 0 {
			continue
		}
		total += n
		for obs := range b.observers {
			obs.OnDropped(p, n)
		}
	}
	b.metrics.Dropped += uint64(total)
	b.metrics.Frames++
	return total
}

func (b *HitBus) AddObserver(obs Observer) {
	b.observers[obs] = struct{}{}
}

func (b *HitBus) RemoveObserver(obs Observer) {
	delete(b.observers, obs)
}

func (b *HitBus) Metrics() Metrics { return b.metrics }

func (b *HitBus) drain(p Pair, name string) []HitEvent {
	q, ok := b.queues[p]
	if !ok {
		return nil
	}
	events := q.Drain()
	b.metrics.Drained += uint64(len(events))
	for obs := range b.observers {
		obs.OnDrained(p, name, len(events))
	}
	return events
}
