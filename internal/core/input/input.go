// Package input defines the per-frame control state polled from an external
// source (keyboard, remote client, script).
package input

import "sync"

// State is the control state for one frame.
type State struct {
	Left   bool `json:"left"`
	Right  bool `json:"right"`
	Thrust bool `json:"thrust"`
	// Fire is held; FirePressed is set only on the frame the button went down.
	Fire        bool `json:"fire"`
	FirePressed bool `json:"-"`
}

// Source is polled once at the start of each frame.
type Source interface {
	Poll() State
}

// Edge tracks the previous fire state to derive FirePressed.
type Edge struct {
	lastFire bool
}

func (e *Edge) Apply(s State) State {
	s.FirePressed = s.Fire && !e.lastFire
	e.lastFire = s.Fire
	return s
}

// None is a source with nothing pressed.
type None struct{}

func (None) Poll() State { return State{} }

// Script replays a fixed sequence of states, holding the last one.
type Script struct {
	states []State
	next   int
	edge   Edge
}

func NewScript(states ...State) *Script {
	return &Script{states: states}
}

func (s *Script) Poll() State {
	if len(s.states) == 0 {
		return State{}
	}
	st := s.states[min(s.next, len(s.states)-1)]
	if s.next < len(s.states) {
		s.next++
	}
	return s.edge.Apply(st)
}

// Remote holds the latest state pushed by a network client. Set may be called
// from any goroutine; Poll is called by the frame loop.
type Remote struct {
	mu    sync.Mutex
	state State
	edge  Edge
}

func NewRemote() *Remote {
	return &Remote{}
}

func (r *Remote) Set(s State) {
	r.mu.Lock()
	// a press and release between two polls must still fire once
	pressed := r.state.FirePressed || (s.Fire && !r.state.Fire)
	r.state = s
	r.state.FirePressed = pressed
	r.mu.Unlock()
}

func (r *Remote) Poll() State {
	r.mu.Lock()
	s := r.state
	r.state.FirePressed = false
	r.mu.Unlock()
	polled := r.edge.Apply(s)
	polled.FirePressed = polled.FirePressed || s.FirePressed
	return polled
}
