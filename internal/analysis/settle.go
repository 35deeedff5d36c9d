package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// SettlingFrame returns the first index after which every value stays
// within tol of the last one, or -1 for an empty series.
func SettlingFrame(data []float64, tol float64) int {
	if len(data) == 0 {
		return -1
	}
	final := data[len(data)-1]
	settled := len(data) - 1
	for i := len(data) - 1; i >= 0; i-- {
		if math.Abs(data[i]-final) > tol {
			break
		}
		settled = i
	}
	return settled
}

// MeanHeight is the average y of each frame.
func MeanHeight(frames []dynamo.Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		if len(f.Positions) == 0 {
			continue
		}
		for _, p := range f.Positions {
			out[i] += p.Y
		}
		out[i] /= float64(len(f.Positions))
	}
	return out
}

// TrajectoryToASCII plots points on a width×height character grid with
// 10% padding around their bounds.
func TrajectoryToASCII(points []dynamo.Vec2, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
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
	rangeX *= 1.2
	rangeY *= 1.2

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row < 0 || row >= height || col < 0 || col >= width {
			continue
		}
		switch i {
		case 0:
			canvas[row][col] = 'o'
		case len(points) - 1:
			canvas[row][col] = 'x'
		default:
			if canvas[row][col] == ' ' {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
