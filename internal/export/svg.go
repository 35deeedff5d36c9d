package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/mesh"
)

const svgHeader = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`

// frame maps world coordinates onto a width×height image with 10% padding
// around the bounds of pts. World y points up.
type frame struct {
	minX, minY, rangeX, rangeY float64
	width, height              int
}

func fit(pts []dynamo.Vec2, width, height int) frame {
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1

	return frame{
		minX: minX, minY: minY,
		rangeX: rangeX * 1.2, rangeY: rangeY * 1.2,
		width: width, height: height,
	}
}

func (f frame) project(p dynamo.Vec2) (float64, float64) {
	x := (p.X - f.minX) / f.rangeX * float64(f.width)
	y := float64(f.height) - (p.Y-f.minY)/f.rangeY*float64(f.height)
	return x, y
}

// MeshToSVG draws the cloth faces as filled quads with their edges
// stroked. Faces touching a non-finite vertex are left out.
func MeshToSVG(pos []dynamo.Vec2, quads []mesh.Quad, width, height int, stroke string) string {
	finite := make([]dynamo.Vec2, 0, len(pos))
	for _, p := range pos {
		if p.IsFinite() {
			finite = append(finite, p)
		}
	}
	if len(finite) == 0 {
		return ""
	}
	f := fit(finite, width, height)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(svgHeader, width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<g fill="%s" fill-opacity="0.15" stroke="%s" stroke-width="1">
`, stroke, stroke))

quads:
	for _, q := range quads {
		var pts [4]string
		for i, idx := range q {
			if idx >= len(pos) || !pos[idx].IsFinite() {
				continue quads
			}
			x, y := f.project(pos[idx])
			pts[i] = fmt.Sprintf("%.1f,%.1f", x, y)
		}
		sb.WriteString(fmt.Sprintf(`<polygon points="%s"/>
`, strings.Join(pts[:], " ")))
	}
	sb.WriteString("</g>\n")

	// Single-row or single-column cloths have no faces; draw the particles.
	if len(quads) == 0 {
		sb.WriteString(fmt.Sprintf(`<g fill="%s">
`, stroke))
		for _, p := range finite {
			x, y := f.project(p)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="2"/>
`, x, y))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws the path of one particle across recorded frames.
func TrajectoryToSVG(frames []dynamo.Frame, index, width, height int, strokeColor string) string {
	points := make([]dynamo.Vec2, 0, len(frames))
	for _, fr := range frames {
		if index < len(fr.Positions) && fr.Positions[index].IsFinite() {
			points = append(points, fr.Positions[index])
		}
	}
	if len(points) < 2 {
		return ""
	}
	f := fit(points, width, height)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(svgHeader, width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, p := range points {
		x, y := f.project(p)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
