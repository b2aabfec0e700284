package world

import (
	"errors"

	"github.com/zeusync/asteroids/internal/core/models"
)

type opKind uint8

const (
	opSpawn opKind = iota
	opInsert
	opRemove
	opDespawn
)

type command struct {
	op     opKind
	id     models.EntityID
	bundle *Bundle
	mask   models.Mask
}

// Commands buffers structural world changes so systems never mutate the
// entity set while iterating it.
type Commands struct {
	queue []command
}

func NewCommands() *Commands {
	return &Commands{queue: make([]command, 0, 64)}
}

func (c *Commands) Spawn(b *Bundle) {
	c.queue = append(c.queue, command{op: opSpawn, bundle: b})
}

func (c *Commands) Insert(id models.EntityID, b *Bundle) {
	c.queue = append(c.queue, command{op: opInsert, id: id, bundle: b})
}

func (c *Commands) Remove(id models.EntityID, kinds ...models.Kind) {
	c.queue = append(c.queue, command{op: opRemove, id: id, mask: models.MaskOf(kinds...)})
}

func (c *Commands) Despawn(id models.EntityID) {
	c.queue = append(c.queue, command{op: opDespawn, id: id})
}

func (c *Commands) Len() int { return len(c.queue) }

// ApplyStats summarises one Apply pass.
type ApplyStats struct {
	Spawned   int
	Despawned int
	Mutated   int
	// Missed counts commands addressed to entities that no longer exist.
	Missed int
}

func (s *ApplyStats) Add(o ApplyStats) {
	s.Spawned += o.Spawned
	s.Despawned += o.Despawned
	s.Mutated += o.Mutated
	s.Missed += o.Missed
}

// Apply executes the buffered commands in order and empties the buffer.
// Commands addressed to despawned entities are skipped; a second despawn of
// the same entity in one pass is therefore harmless. Invalid bundles are
// reported together once every command has been tried.
func (w *World) Apply(c *Commands) (ApplyStats, error) {
	var (
		stats ApplyStats
		errs  []error
	)
	for _, cmd := range c.queue {
		var err error
		switch cmd.op {
		case opSpawn:
			if _, err = w.Spawn(cmd.bundle); err == nil {
				stats.Spawned++
			}
		case opInsert:
			if err = w.Insert(cmd.id, cmd.bundle); err == nil {
				stats.Mutated++
			}
		case opRemove:
			if err = w.Remove(cmd.id, cmd.mask); err == nil {
				stats.Mutated++
			}
		case opDespawn:
			if err = w.Despawn(cmd.id); err == nil {
				stats.Despawned++
			}
		}
		if errors.Is(err, ErrEntityNotFound) {
			stats.Missed++
			continue
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	clear(c.queue)
	c.queue = c.queue[:0]
	return stats, errors.Join(errs...)
}
