// Package mesh is the boundary between the simulator and whatever draws it.
// The simulator only ever writes vertex positions into a [Sink]; faces are
// generated once from grid dimensions and never flow back.
package mesh

import (
	"fmt"
	"sync"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/physics"
)

// Sink receives vertex positions after every step.
type Sink interface {
	Len() int
	SetVertex(i int, x, y float64)
	// MarkDirty tells the renderer the geometry changed.
	MarkDirty()
}

// Quad is one cloth cell, corners listed (x,y), (x+1,y), (x+1,y+1), (x,y+1).
type Quad [4]int

// Quads returns the faces of a w×h grid in row-major order.
func Quads(w, h int) []Quad {
	if w < 2 || h < 2 {
		return nil
	}
	qs := make([]Quad, 0, (w-1)*(h-1))
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			i := y*w + x
			qs = append(qs, Quad{i, i + 1, i + w + 1, i + w})
		}
	}
	return qs
}

// Triangles splits each quad into two triangles sharing the (x,y)-(x+1,y+1)
// diagonal.
func Triangles(qs []Quad) [][3]int {
	tris := make([][3]int, 0, len(qs)*2)
	for _, q := range qs {
		tris = append(tris, [3]int{q[0], q[1], q[2]}, [3]int{q[0], q[2], q[3]})
	}
	return tris
}

// Sync copies every particle position into sink and marks it dirty.
func Sync(g *physics.Grid, sink Sink) error {
	if sink.Len() < g.Len() {
		return fmt.Errorf("%w: %d < %d", dynamo.ErrSinkTooSmall, sink.Len(), g.Len())
	}
	for i, p := range g.Particles {
		sink.SetVertex(i, p.Pos.X, p.Pos.Y)
	}
	sink.MarkDirty()
	return nil
}

// Vertex is a renderable position. Z stays zero; the cloth is planar.
type Vertex struct {
	X, Y, Z float32
}

// Buffer is an in-memory Sink shared between the stepping goroutine and a
// renderer. Version increases on every MarkDirty.
type Buffer struct {
	mu       sync.RWMutex
	vertices []Vertex
	version  uint64
	dirty    bool
}

func NewBuffer(n int) *Buffer {
	return &Buffer{vertices: make([]Vertex, n)}
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.vertices)
}

func (b *Buffer) SetVertex(i int, x, y float64) {
	b.mu.Lock()
	b.vertices[i].X = float32(x)
	b.vertices[i].Y = float32(y)
	b.mu.Unlock()
}

func (b *Buffer) MarkDirty() {
	b.mu.Lock()
	b.dirty = true
	b.version++
	b.mu.Unlock()
}

// Consume copies the vertices into dst and clears the dirty flag. It
// reports whether anything changed since the last call.
func (b *Buffer) Consume(dst []Vertex) ([]Vertex, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cap(dst) < len(b.vertices) {
		dst = make([]Vertex, len(b.vertices))
	}
	dst = dst[:len(b.vertices)]
	copy(dst, b.vertices)

	changed := b.dirty
	b.dirty = false
	return dst, changed
}

func (b *Buffer) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Positions converts vertices back to world-space points, reusing dst
// when it is large enough.
func Positions(vs []Vertex, dst []dynamo.Vec2) []dynamo.Vec2 {
	if cap(dst) < len(vs) {
		dst = make([]dynamo.Vec2, len(vs))
	}
	dst = dst[:len(vs)]
	for i, v := range vs {
		dst[i] = dynamo.Vec2{X: float64(v.X), Y: float64(v.Y)}
	}
	return dst
}

// Snapshot returns a copy of the current vertices without touching the
// dirty flag.
func (b *Buffer) Snapshot() []Vertex {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Vertex, len(b.vertices))
	copy(out, b.vertices)
	return out
}
