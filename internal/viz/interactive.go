package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/clothsim/internal/config"
)

var presetInfo = map[string]string{
	"reference": "20x10, corner pins",
	"earth":     "9.81 gravity, 60Hz steps",
	"stiff":     "8 relaxation passes",
	"banner":    "40x12, top row pinned",
	"jacobi":    "parallel relaxation",
	"damped":    "2% velocity damping",
	"hammock":   "pinned at four corners",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuValue    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Bold(true)
	menuInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// field is one editable setting on the config screen.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
	step float64
}

var fields = []field{
	{"width", func(c *config.Config) float64 { return float64(c.Width) }, func(c *config.Config, v float64) { c.Width = max(1, int(v)) }, 1},
	{"height", func(c *config.Config) float64 { return float64(c.Height) }, func(c *config.Config, v float64) { c.Height = max(1, int(v)) }, 1},
	{"gravity", func(c *config.Config) float64 { return c.Gravity }, func(c *config.Config, v float64) { c.Gravity = v }, 0.0005},
	{"iterations", func(c *config.Config) float64 { return float64(c.Iterations) }, func(c *config.Config, v float64) { c.Iterations = max(0, int(v)) }, 1},
	{"relaxation", func(c *config.Config) float64 { return c.Relaxation }, func(c *config.Config, v float64) { c.Relaxation = min(1, max(0.01, v)) }, 0.01},
	{"damping", func(c *config.Config) float64 { return c.Damping }, func(c *config.Config, v float64) { c.Damping = min(0.99, max(0, v)) }, 0.01},
}

type launcher struct {
	state, cursor int
	presets       []string
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	logger        *slog.Logger
	live          Model
}

// NewLauncher returns a menu that picks a preset, lets the user tweak it,
// then hands over to the live view.
func NewLauncher(logger *slog.Logger) tea.Model {
	return launcher{
		state:   stateMenu,
		presets: config.ListPresets(),
		logger:  logger,
	}
}

func (m launcher) Init() tea.Cmd { return nil }

func (m launcher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(key)
		case stateConfig:
			return m.configKey(key)
		}
	}
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}
	return m, nil
}

func (m launcher) menuKey(msg tea.KeyMsg) (launcher, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = config.GetPreset(m.presets[m.cursor])
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m launcher) configKey(msg tea.KeyMsg) (launcher, tea.Cmd) {
	f := fields[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%g", &val); err == nil {
				f.set(m.cfg, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-e") {
				m.editBuf += s
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", f.get(m.cfg))
	case "left", "h":
		f.set(m.cfg, f.get(m.cfg)-f.step)
	case "right", "l":
		f.set(m.cfg, f.get(m.cfg)+f.step)
	case "s":
		return m.start()
	}
	return m, nil
}

func (m launcher) start() (launcher, tea.Cmd) {
	live, err := NewModel(m.cfg, m.logger)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live, m.state = live, stateSim
	return m, live.Init()
}

func (m launcher) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	}
	return m.live.View()
}

func hints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuInactive.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m launcher) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("CLOTHSIM") + "\n    " + menuSub.Render("verlet cloth simulator") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-12s", name)), menuValue.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuInactive.Render(fmt.Sprintf("  %-12s", name)), menuDim.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m launcher) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(m.cfg.Name)) + "\n    " + menuSub.Render(presetInfo[m.cfg.Name]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, f := range fields {
		val := fmt.Sprintf("%10.4g", f.get(m.cfg))
		if m.editing && i == m.fieldCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-10s", f.name)), menuValue.Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuInactive.Render(fmt.Sprintf("  %-10s", f.name)), menuDim.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusError.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive starts at the preset menu.
func RunInteractive(logger *slog.Logger) error {
	_, err := tea.NewProgram(NewLauncher(logger), tea.WithAltScreen()).Run()
	return err
}
