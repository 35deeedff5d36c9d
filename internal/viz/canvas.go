package viz

import (
	"strings"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelSize is the canvas size in dots.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y) in dot coordinates. Out of range is a no-op.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Viewport maps a world rectangle onto a canvas. World y points up, dot
// rows point down.
type Viewport struct {
	Min, Max dynamo.Vec2
}

// ClothViewport frames a w×h cloth at rest and leaves room below it for
// the cloth to sag or swing.
func ClothViewport(w, h int) Viewport {
	hw, hh := float64(w)/2, float64(h)/2
	return Viewport{
		Min: dynamo.Vec2{X: -hw - 1, Y: -hh - float64(h) - 1},
		Max: dynamo.Vec2{X: hw + 1, Y: hh + 1},
	}
}

// Project maps p to dot coordinates. Points outside the viewport map
// outside the canvas; use DrawCloth for clipped drawing.
func (v Viewport) Project(p dynamo.Vec2, pw, ph int) (int, int) {
	x, y := v.project(p, pw, ph)
	return int(x), int(y)
}

func (v Viewport) project(p dynamo.Vec2, pw, ph int) (float64, float64) {
	sx := (p.X - v.Min.X) / (v.Max.X - v.Min.X)
	sy := (v.Max.Y - p.Y) / (v.Max.Y - v.Min.Y)
	return sx * float64(pw-1), sy * float64(ph-1)
}

// clipSegment trims the segment to [0, maxX]×[0, maxY] (Liang-Barsky).
// ok is false when nothing of it is inside.
func clipSegment(x0, y0, x1, y1, maxX, maxY float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0

	edges := [4][2]float64{
		{-dx, x0},
		{dx, maxX - x0},
		{-dy, y0},
		{dy, maxY - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = min(t1, r)
		}
	}

	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// DrawCloth draws every constraint of the cloth as a line segment, clipped
// to the canvas so far-off particles cost no more than visible ones.
func (c *Canvas) DrawCloth(v Viewport, pos []dynamo.Vec2, cs []dynamo.Constraint) {
	pw, ph := c.PixelSize()
	for _, k := range cs {
		if k.A >= len(pos) || k.B >= len(pos) {
			continue
		}
		a, b := pos[k.A], pos[k.B]
		if !a.IsFinite() || !b.IsFinite() {
			continue
		}
		x0, y0 := v.project(a, pw, ph)
		x1, y1 := v.project(b, pw, ph)
		x0, y0, x1, y1, ok := clipSegment(x0, y0, x1, y1, float64(pw-1), float64(ph-1))
		if !ok {
			continue
		}
		c.DrawLine(int(x0), int(y0), int(x1), int(y1))
	}
	if len(cs) == 0 {
		for _, p := range pos {
			if !p.IsFinite() {
				continue
			}
			x, y := v.project(p, pw, ph)
			if x >= 0 && y >= 0 && x <= float64(pw-1) && y <= float64(ph-1) {
				c.Set(int(x), int(y))
			}
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
