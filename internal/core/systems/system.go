package systems

import (
	"time"

	"github.com/zeusync/asteroids/internal/config"
	"github.com/zeusync/asteroids/internal/core/events/bus"
	"github.com/zeusync/asteroids/internal/core/input"
	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/random"
	"github.com/zeusync/asteroids/internal/core/world"
)

// System is one step of the frame. Systems run to completion inside their
// phase and queue structural world changes on Frame.Commands.
type System interface {
	Name() string
	Phase() ExecutionPhase
	Priority() Priority
	Update(f *Frame) error
}

// Priority orders systems inside a phase; higher runs first.
type Priority uint16

const (
	PriorityLowest  Priority = 100
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase is a fixed slot in the frame. Phases run in declaration
// order and pending commands are applied at the end of every phase.
type ExecutionPhase uint8

const (
	PhaseInput ExecutionPhase = iota
	PhaseLifecycle
	PhaseDetect
	PhaseReact
	PhaseBoundary
	PhasePhysics
	PhaseCleanup

	phaseCount
)

func Phases() []ExecutionPhase {
	out := make([]ExecutionPhase, phaseCount)
	for i := range out {
		out[i] = ExecutionPhase(i)
	}
	return out
}

func (p ExecutionPhase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseLifecycle:
		return "lifecycle"
	case PhaseDetect:
		return "detect"
	case PhaseReact:
		return "react"
	case PhaseBoundary:
		return "boundary"
	case PhasePhysics:
		return "physics"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// Frame is everything a system may touch during one step.
type Frame struct {
	Number   uint64
	Delta    time.Duration
	World    *world.World
	Commands *world.Commands
	Hits     *bus.HitBus
	Rand     *random.Rand
	Input    input.State
	Config   *config.Config
	Log      log.Log
	Stats    FrameStats
}

// FrameStats counts what happened in one frame.
type FrameStats struct {
	Hits       int
	Reactions  int
	SoftMisses int
	Dropped    int
	world.ApplyStats
}

// Base carries the identity fields shared by every system.
type Base struct {
	name     string
	phase    ExecutionPhase
	priority Priority
}

func NewBase(name string, phase ExecutionPhase, priority Priority) Base {
	return Base{name: name, phase: phase, priority: priority}
}

func (b Base) Name() string          { return b.name }
func (b Base) Phase() ExecutionPhase { return b.phase }
func (b Base) Priority() Priority    { return b.priority }

// Func adapts a function into a System.
type Func struct {
	Base
	fn func(f *Frame) error
}

func NewFunc(name string, phase ExecutionPhase, priority Priority, fn func(f *Frame) error) *Func {
	return &Func{Base: NewBase(name, phase, priority), fn: fn}
}

func (s *Func) Update(f *Frame) error { return s.fn(f) }

// Metrics provides runtime metrics for a system.
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	ErrorCount           uint64
	LastError            error
}

func (m *Metrics) Observe(d time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += d
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	if d > m.MaxExecutionTime {
		m.MaxExecutionTime = d
	}
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}
