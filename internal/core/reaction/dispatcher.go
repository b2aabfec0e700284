// Package reaction turns the frame's hit events into world changes: despawns,
// ship deaths, asteroid splits and explosion bursts. It also owns the spawn
// policy for asteroids and UFOs.
package reaction

import (
	"errors"
	"fmt"

	"github.com/zeusync/asteroids/internal/core/events/bus"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/systems"
)

// Handler reacts to the hit events of one or more pairs. Handle is called at
// most once per frame with the events of every pair the handler declared,
// grouped by pair in declaration order and in detection order inside a pair.
type Handler interface {
	Name() string
	Pairs() []bus.Pair
	Handle(f *systems.Frame, events []bus.HitEvent) error
}

type binding struct {
	handler Handler
	readers []bus.Reader
}

// Dispatcher is the reaction-phase system. It keeps a registry from hit pair
// to handler and drains each pair exactly once per frame on the handler's
// behalf.
type Dispatcher struct {
	systems.Base
	bindings []*binding
	byPair   map[bus.Pair]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Base:   systems.NewBase("reaction", systems.PhaseReact, systems.PriorityHigh),
		byPair: make(map[bus.Pair]Handler),
	}
}

func (d *Dispatcher) Register(h Handler) error {
	pairs := h.Pairs()
	if len(pairs) == 0 {
		return fmt.Errorf("%w: %s", ErrNoPairs, h.Name())
	}
	for _, p := range pairs {
		if cur, ok := d.byPair[p]; ok {
			return fmt.Errorf("%w: %s is handled by %s", ErrPairHandled, p, cur.Name())
		}
	}
	for _, p := range pairs {
		d.byPair[p] = h
	}
	d.bindings = append(d.bindings, &binding{handler: h})
	return nil
}

// Handler returns the handler registered for p.
func (d *Dispatcher) Handler(p bus.Pair) (Handler, bool) {
	h, ok := d.byPair[p]
	return h, ok
}

// Attach makes every registered handler the reader of its pairs on hits.
func (d *Dispatcher) Attach(hits *bus.HitBus) error {
	for _, b := range d.bindings {
		for _, p := range b.handler.Pairs() {
			r, err := hits.Attach(p, b.handler.Name())
			if err != nil {
				return fmt.Errorf("attach %s: %w", b.handler.Name(), err)
			}
			b.readers = append(b.readers, r)
		}
	}
	return nil
}

// Detach releases every reader taken by Attach.
func (d *Dispatcher) Detach() {
	for _, b := range d.bindings {
		for _, r := range b.readers {
			r.Detach()
		}
		b.readers = nil
	}
}

func (d *Dispatcher) Update(f *systems.Frame) error {
	var errs []error
	for _, b := range d.bindings {
		var events []bus.HitEvent
		for _, r := range b.readers {
			events = append(events, r.Drain()...)
		}
		if len(events) == 0 {
			continue
		}
		if err := b.handler.Handle(f, events); err != nil {
			f.Log.Error("hit handler failed", log.String("handler", b.handler.Name()), log.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", b.handler.Name(), err))
		}
	}
	return errors.Join(errs...)
}
