package gui

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColCloth   = rl.NewColor(245, 230, 200, 255)
	ColPin     = rl.NewColor(255, 90, 90, 255)
	ColFill    = rl.NewColor(245, 230, 200, 40)
)

const (
	screenWidth  = 1280
	screenHeight = 720

	// grabRadius is how close, in world units, the cursor must be to a
	// particle to drag it.
	grabRadius = 1.5
	// dragGain is the fraction of the cursor offset applied per frame.
	dragGain = 0.2

	svgWidth  = 1200
	svgHeight = 900
)

type App struct {
	Cfg     *config.Config
	Sim     *sim.Simulator
	Metrics *metrics.Set
	Clock   *sim.Clock
	Buffer  *mesh.Buffer
	Quads   []mesh.Quad
	Tris    [][3]int
	Camera  rl.Camera3D
	Running bool

	verts     []mesh.Vertex
	sliders   []slider
	grabbed   int
	cursor    rl.Vector3
	telemetry []float64
	lastErr   error
	logger    *slog.Logger
}

func initWindow(title string) {
	rl.InitWindow(screenWidth, screenHeight, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// NewApp builds the simulator for cfg and frames the camera on the cloth.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	n := cfg.Width * cfg.Height
	buf := mesh.NewBuffer(n)

	s, set, err := sim.FromConfig(cfg, sim.WithSink(buf), sim.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	fps := cfg.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}

	quads := mesh.Quads(cfg.Width, cfg.Height)

	// Fit the cloth plus the same again below it for the drop.
	span := float32(max(cfg.Width, 2*cfg.Height))
	dist := span * 1.3
	centerY := -float32(cfg.Height) / 2

	return &App{
		Cfg:     cfg,
		Sim:     s,
		Metrics: set,
		Clock:   sim.NewClock(time.Second / time.Duration(fps)),
		Buffer:  buf,
		Quads:   quads,
		Tris:    mesh.Triangles(quads),
		Camera: rl.NewCamera3D(
			rl.NewVector3(0, centerY, dist),
			rl.NewVector3(0, centerY, 0),
			rl.NewVector3(0, 1, 0),
			45.0,
			rl.CameraPerspective,
		),
		Running: true,
		verts:   make([]mesh.Vertex, n),
		sliders: newSliders(s.GetParams()),
		grabbed: -1,
		logger:  logger,
	}, nil
}

// Run opens a window for cfg and blocks until it is closed.
func Run(cfg *config.Config, logger *slog.Logger) error {
	initWindow("clothsim")
	defer rl.CloseWindow()

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	app.RunLoop()
	return app.lastErr
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !rl.IsKeyPressed(rl.KeyQ) {
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.reset()
	}
	if rl.IsKeyPressed(rl.KeyG) {
		a.Sim.Gust(a.Cfg.Height-1, 0.5)
	}
	if rl.IsKeyPressed(rl.KeyP) {
		a.saveSVG()
	}

	a.drag()

	if !a.Running {
		return
	}

	frameTime := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))
	n, err := a.Clock.Drive(a.Sim, frameTime)
	if err != nil {
		a.lastErr = err
		a.Running = false
		a.logger.Error("simulation halted", "step", a.Sim.StepCount(), "error", err)
		return
	}
	if n > 0 {
		a.telemetry = append(a.telemetry, a.Metrics.Strain.Last().Mean)
		if len(a.telemetry) > 200 {
			a.telemetry = a.telemetry[1:]
		}
	}
}

func (a *App) reset() {
	a.Sim.Reset()
	a.telemetry = a.telemetry[:0]
	a.lastErr = nil
	a.Running = true
}

// drag pulls the particle nearest the cursor towards it while the left
// button is held. The cursor is raycast onto the cloth plane z = 0.
func (a *App) drag() {
	if !rl.IsMouseButtonDown(rl.MouseLeftButton) {
		a.grabbed = -1
		a.cursor.Z = 0
		return
	}
	if a.grabbed < 0 && rl.CheckCollisionPointRec(rl.GetMousePosition(), panelBounds()) {
		return
	}

	ray := rl.GetMouseRay(rl.GetMousePosition(), a.Camera)
	if ray.Direction.Z == 0 {
		return
	}
	t := -ray.Position.Z / ray.Direction.Z
	if t <= 0 {
		return
	}
	target := dynamo.Vec2{
		X: float64(ray.Position.X + t*ray.Direction.X),
		Y: float64(ray.Position.Y + t*ray.Direction.Y),
	}
	a.cursor = rl.NewVector3(float32(target.X), float32(target.Y), 1)

	g := a.Sim.Grid()
	if a.grabbed < 0 {
		a.grabbed = nearest(g.Particles, target, grabRadius)
		if a.grabbed < 0 {
			return
		}
	}

	p := g.Particles[a.grabbed].Pos
	d := target.Sub(p).Scale(dragGain)
	_ = a.Sim.Nudge(a.grabbed, d.X, d.Y)
}

// saveSVG writes the latest published frame next to the working
// directory without consuming it from the buffer.
func (a *App) saveSVG() {
	pos := mesh.Positions(a.Buffer.Snapshot(), nil)
	svg := export.MeshToSVG(pos, a.Quads, svgWidth, svgHeight, "#f5e6c8")
	path := fmt.Sprintf("%s_step%d.svg", a.Cfg.Name, a.Sim.StepCount())
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		a.lastErr = err
		a.logger.Error("failed to write svg", "error", err)
		return
	}
	a.logger.Info("wrote svg", "path", path)
}

// nearest returns the index of the particle closest to p within radius,
// or -1.
func nearest(ps []dynamo.Particle, p dynamo.Vec2, radius float64) int {
	best, bestDist := -1, math.Inf(1)
	for i, q := range ps {
		if d := q.Pos.Dist(p); d < bestDist && d <= radius {
			best, bestDist = i, d
		}
	}
	return best
}
