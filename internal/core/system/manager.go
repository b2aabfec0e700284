package system

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/zeusync/asteroids/internal/core/observability/log"
	"github.com/zeusync/asteroids/internal/core/systems"
)

type entry struct {
	sys     systems.System
	seq     int
	enabled bool
	metrics systems.Metrics
}

// Manager runs registered systems phase by phase. Inside a phase systems run
// by descending priority, ties in registration order. After each phase the
// frame's command buffer is applied to the world, so every phase observes the
// structural changes of the phases before it.
type Manager struct {
	entries []*entry
	byName  map[string]*entry
	logger  log.Log
	seq     int

	frames        uint64
	totalDuration time.Duration
}

func NewManager(logger log.Log) *Manager {
	return &Manager{
		byName: make(map[string]*entry),
		logger: logger,
	}
}

func (m *Manager) RegisterSystem(s systems.System) error {
	if s == nil {
		return ErrNilSystem
	}
	if _, ok := m.byName[s.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrSystemExists, s.Name())
	}
	m.seq++
	e := &entry{sys: s, seq: m.seq, enabled: true}
	m.entries = append(m.entries, e)
	m.byName[s.Name()] = e
	slices.SortStableFunc(m.entries, func(a, b *entry) int {
		if a.sys.Phase() != b.sys.Phase() {
			return int(a.sys.Phase()) - int(b.sys.Phase())
		}
		if a.sys.Priority() != b.sys.Priority() {
			return int(b.sys.Priority()) - int(a.sys.Priority())
		}
		return a.seq - b.seq
	})
	return nil
}

func (m *Manager) GetSystem(name string) (systems.System, bool) {
	e, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return e.sys, true
}

func (m *Manager) EnableSystem(name string) error  { return m.setEnabled(name, true) }
func (m *Manager) DisableSystem(name string) error { return m.setEnabled(name, false) }

func (m *Manager) setEnabled(name string, enabled bool) error {
	e, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	e.enabled = enabled
	return nil
}

// GetExecutionOrder lists system names in the order Step runs them.
func (m *Manager) GetExecutionOrder() []string {
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.sys.Name())
	}
	return out
}

func (m *Manager) GetSystemMetrics(name string) (systems.Metrics, bool) {
	e, ok := m.byName[name]
	if !ok {
		return systems.Metrics{}, false
	}
	return e.metrics, true
}

// Frames returns how many frames have been stepped.
func (m *Manager) Frames() uint64 { return m.frames }

// AverageFrameTime is the mean wall time of Step.
func (m *Manager) AverageFrameTime() time.Duration {
	if m.frames == 0 {
		return 0
	}
	return m.totalDuration / time.Duration(m.frames)
}

// Step runs one frame. A failing system does not stop the frame; every error
// is returned joined once the frame is complete.
func (m *Manager) Step(f *systems.Frame) error {
	start := time.Now()
	var errs []error

	i := 0
	for _, phase := range systems.Phases() {
		for ; i < len(m.entries) && m.entries[i].sys.Phase() == phase; i++ {
			e := m.entries[i]
			if !e.enabled {
				continue
			}
			t := time.Now()
			err := e.sys.Update(f)
			e.metrics.Observe(time.Since(t), err)
			if err != nil {
				m.logger.Error("system failed",
					log.String("system", e.sys.Name()),
					log.Uint64("frame", f.Number),
					log.Error(err),
				)
				errs = append(errs, fmt.Errorf("%s: %w", e.sys.Name(), err))
			}
		}
		if f.Commands.Len() == 0 {
			continue
		}
		stats, err := f.World.Apply(f.Commands)
		f.Stats.Add(stats)
		if err != nil {
			errs = append(errs, fmt.Errorf("apply %s commands: %w", phase, err))
		}
	}

	m.frames++
	m.totalDuration += time.Since(start)
	return errors.Join(errs...)
}
