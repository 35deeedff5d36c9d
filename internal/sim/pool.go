package sim

import (
	"sync"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/physics"
)

// SnapshotPool recycles position buffers of one fixed size.
type SnapshotPool struct {
	pool sync.Pool
	size int
}

func NewSnapshotPool(n int) *SnapshotPool {
	return &SnapshotPool{
		size: n,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]dynamo.Vec2, n)
			},
		},
	}
}

func (p *SnapshotPool) Get() []dynamo.Vec2 {
	return p.pool.Get().([]dynamo.Vec2)
}

func (p *SnapshotPool) Put(s []dynamo.Vec2) {
	if len(s) == p.size {
		p.pool.Put(s)
	}
}

func (p *SnapshotPool) Capture(g *physics.Grid) []dynamo.Vec2 {
	return g.Positions(p.Get())
}

// History keeps the most recent frames in a ring. Evicted buffers go back
// to the pool.
type History struct {
	pool   *SnapshotPool
	frames []dynamo.Frame
	start  int
	count  int
}

func NewHistory(capacity, particles int) *History {
	return &History{
		pool:   NewSnapshotPool(particles),
		frames: make([]dynamo.Frame, capacity),
	}
}

func (h *History) Len() int { return h.count }

func (h *History) Push(step int, t float64, g *physics.Grid) {
	if len(h.frames) == 0 {
		return
	}
	f := dynamo.Frame{Step: step, Time: t, Positions: h.pool.Capture(g)}

	if h.count < len(h.frames) {
		h.frames[(h.start+h.count)%len(h.frames)] = f
		h.count++
		return
	}

	h.pool.Put(h.frames[h.start].Positions)
	h.frames[h.start] = f
	h.start = (h.start + 1) % len(h.frames)
}

// At returns the i-th oldest frame still held.
func (h *History) At(i int) (dynamo.Frame, bool) {
	if i < 0 || i >= h.count {
		return dynamo.Frame{}, false
	}
	return h.frames[(h.start+i)%len(h.frames)], true
}

func (h *History) Clear() {
	for i := 0; i < h.count; i++ {
		idx := (h.start + i) % len(h.frames)
		h.pool.Put(h.frames[idx].Positions)
		h.frames[idx] = dynamo.Frame{}
	}
	h.start, h.count = 0, 0
}
