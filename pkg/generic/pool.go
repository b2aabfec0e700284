package generic

import "sync"

// Pool is a typed sync.Pool. Values handed back through Put are reset first,
// so Get never returns a dirty value.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

// NewPool builds a pool of values made by generate, pre-filled with warm of
// them. reset may be nil.
func NewPool[T any](generate func() T, reset func(T), warm int) *Pool[T] {
	p := &Pool[T]{
		pool:  sync.Pool{New: func() any { return generate() }},
		reset: reset,
	}
	for range warm {
		p.pool.Put(generate())
	}
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		p.reset(value)
	}
	p.pool.Put(value)
}
