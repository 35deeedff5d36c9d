package viz

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	graphWindow     = 120
	gustStrength    = 0.5
)

type TickMsg time.Time

// Model drives one cloth in the terminal. The simulator writes into a
// mesh buffer; View reads whatever the buffer last published.
type Model struct {
	cfg     *config.Config
	sim     *sim.Simulator
	metrics *metrics.Set
	clock   *sim.Clock
	buf     *mesh.Buffer
	verts   []mesh.Vertex
	pos     []dynamo.Vec2
	history *sim.History

	canvas   *Canvas
	viewport Viewport
	lastTick time.Time

	running       bool
	playHead      int
	paramKeys     []string
	initialParams map[string]float64
	selected      int
	err           error
	showHelp      bool
}

// NewModel builds a simulator for cfg with its output wired to a mesh
// buffer the model renders from.
func NewModel(cfg *config.Config, logger *slog.Logger) (Model, error) {
	n := cfg.Width * cfg.Height
	buf := mesh.NewBuffer(n)

	s, set, err := sim.FromConfig(cfg, sim.WithSink(buf), sim.WithLogger(logger))
	if err != nil {
		return Model{}, err
	}

	fps := cfg.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}

	params := s.GetParams()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Model{
		cfg:           cfg,
		sim:           s,
		metrics:       set,
		clock:         sim.NewClock(time.Second / time.Duration(fps)),
		buf:           buf,
		verts:         make([]mesh.Vertex, n),
		pos:           make([]dynamo.Vec2, n),
		history:       sim.NewHistory(historyCapacity, n),
		canvas:        NewCanvas(width, height),
		viewport:      ClothViewport(cfg.Width, cfg.Height),
		running:       true,
		playHead:      -1,
		paramKeys:     keys,
		initialParams: params,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tick(m.clock.StepDuration)
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			if m.running {
				m.lastTick = time.Time{}
			}
		case "r":
			m.reset()
		case "g":
			m.sim.Gust(m.cfg.Height-1, gustStrength)
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		now := time.Time(msg)
		elapsed := m.clock.StepDuration
		if !m.lastTick.IsZero() {
			elapsed = now.Sub(m.lastTick)
		}
		m.lastTick = now

		if m.running {
			if m.playHead == -1 {
				m.advance(elapsed)
			} else {
				m.playHead++
				if m.playHead >= m.history.Len() {
					m.playHead = -1
				}
			}
		}
		return m, tick(m.clock.StepDuration)
	}
	return m, nil
}

func (m *Model) advance(elapsed time.Duration) {
	n, err := m.clock.Drive(m.sim, elapsed)
	if err != nil {
		m.err = err
		m.running = false
	}
	if n > 0 {
		m.history.Push(m.sim.StepCount(), m.sim.Time(), m.sim.Grid())
	}
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

// adjustParam nudges the selected parameter one notch in dir. Iterations
// move by one, everything else by 5%.
func (m *Model) adjustParam(dir int) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.sim.GetParams()[key]

	next := val * (1 + 0.05*float64(dir))
	if key == "iterations" {
		next = val + float64(dir)
	}
	if key == "relaxation" {
		next = min(next, 1)
	}
	if err := m.sim.SetParam(key, next); err != nil {
		m.err = err
		return
	}
	m.err = nil
}

// scrub moves the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if m.history.Len() == 0 {
			return
		}
		m.playHead = m.history.Len() - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= m.history.Len() {
		m.playHead = -1
	}
}

// reset restores the rest lattice and the starting parameters.
func (m *Model) reset() {
	m.sim.Reset()
	m.history.Clear()
	m.playHead = -1
	m.err = nil
	for k, v := range m.initialParams {
		_ = m.sim.SetParam(k, v)
	}
}

// positions picks what to draw: a history frame while replaying, otherwise
// the latest vertices published to the mesh buffer.
func (m *Model) positions() (dynamo.Frame, bool) {
	if m.playHead >= 0 {
		if f, ok := m.history.At(m.playHead); ok {
			return f, true
		}
	}
	m.verts, _ = m.buf.Consume(m.verts)
	m.pos = mesh.Positions(m.verts, m.pos)
	return dynamo.Frame{Step: m.sim.StepCount(), Time: m.sim.Time(), Positions: m.pos}, false
}

func (m *Model) draw(pos []dynamo.Vec2) {
	m.canvas.Clear()
	m.canvas.DrawCloth(m.viewport, pos, m.sim.Constraints())
}

// View renders the TUI interface.
func (m Model) View() string {
	frame, replay := m.positions()
	m.draw(frame.Positions)

	var s strings.Builder
	title := m.cfg.Name
	if title == "" {
		title = "cloth"
	}
	s.WriteString(headerStyle.Render(strings.ToUpper(title)) + "\n")
	s.WriteString(m.status(replay) + "\n\n")

	strain := m.metrics.Strain.History()
	if len(strain) > graphWindow {
		strain = strain[len(strain)-graphWindow:]
	}
	if len(strain) > 1 {
		chart := asciigraph.Plot(strain, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Mean strain"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(SparklineChart(strain, 30) + "\n\n")

	sum := m.metrics.Summary(frame.Step, frame.Time)
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", frame.Step)) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2f", frame.Time)) + "\n")
	s.WriteString(labelStyle.Render("Grid") + valueStyle.Render(fmt.Sprintf("%dx%d %s", m.cfg.Width, m.cfg.Height, m.sim.Config().Solver)) + "\n")
	s.WriteString(labelStyle.Render("Strain") + valueStyle.Render(fmt.Sprintf("%.4f (max %.4f)", sum.Strain.Mean, sum.Strain.Max)) + "\n")
	s.WriteString(labelStyle.Render("Kinetic") + valueStyle.Render(fmt.Sprintf("%.3g", sum.Kinetic)) + "\n")
	s.WriteString(labelStyle.Render("Skipped") + valueStyle.Render(fmt.Sprintf("%d", m.sim.Skipped())) + "\n")
	s.WriteString(labelStyle.Render("Stable") + ProgressBar(sum.Stability, 10) + "\n")

	s.WriteString("\nPARAMETERS\n")
	params := m.sim.GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-10s %.4g", k, params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Reset G:Gust Q:Quit\nT:Theme [ ]:Scrub ↑↓:Tune ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + main
	}
	return main
}

func (m Model) status(replay bool) string {
	switch {
	case m.err != nil && !m.running:
		return StatusError.Render("HALTED")
	case replay && m.running:
		return StatusPaused.Render(fmt.Sprintf("REPLAY %d/%d", m.playHead+1, m.history.Len()))
	case replay:
		return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED %d/%d", m.playHead+1, m.history.Len()))
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset cloth              ║
║  G        - Gust on the bottom row   ║
║  Q        - Quit                     ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter       ║
║  Down/J   - Decrease parameter       ║
║  [        - Rewind                   ║
║  ]        - Forward                  ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run opens the live view for cfg and blocks until the user quits.
func Run(cfg *config.Config, logger *slog.Logger) error {
	m, err := NewModel(cfg, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
