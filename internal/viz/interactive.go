package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/choreo/internal/catalog"
	"github.com/san-kum/choreo/internal/config"
	"github.com/san-kum/choreo/internal/integrators"
	"github.com/san-kum/choreo/internal/sim"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var configFields = []string{"focus", "integrator", "fps"}

type model struct {
	state, cursor int
	solutions     []catalog.Solution
	cfg           config.Config
	opts          Options
	integrators   []string
	paramCursor   int
	err           error
	width, height int
	liveModel     Model
}

// NewInteractiveApp starts on the solution menu with cfg as the initial
// selection.
func NewInteractiveApp(cfg *config.Config, opts Options) *model {
	return &model{
		state:       stateMenu,
		cursor:      cfg.Solution,
		solutions:   catalog.All(),
		cfg:         *cfg,
		opts:        opts,
		integrators: integrators.Names(),
		width:       80,
		height:      24,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
		return m, nil
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.solutions)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg.Solution = m.cursor
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(configFields)-1 {
			m.paramCursor++
		}
	case "left", "h":
		m.adjust(-1)
	case "right", "l":
		m.adjust(1)
	case "s", "enter":
		cmd := m.start()
		return m, cmd
	}
	return m, nil
}

func (m *model) adjust(dir int) {
	switch configFields[m.paramCursor] {
	case "focus":
		// -1..2 wraps around
		m.cfg.Focus = (m.cfg.Focus+1+dir+4)%4 - 1
	case "integrator":
		idx := 0
		for i, name := range m.integrators {
			if name == m.cfg.Integrator {
				idx = i
			}
		}
		idx = (idx + dir + len(m.integrators)) % len(m.integrators)
		m.cfg.Integrator = m.integrators[idx]
	case "fps":
		m.cfg.FPS = min(240, max(10, m.cfg.FPS+10*dir))
	}
}

func (m model) fieldValue(name string) string {
	switch name {
	case "focus":
		return focusLabel(m.cfg.Focus)
	case "integrator":
		return m.cfg.Integrator
	case "fps":
		return fmt.Sprintf("%d", m.cfg.FPS)
	}
	return ""
}

func (m *model) start() tea.Cmd {
	ctrl, err := m.cfg.NewController(sim.WithLogger(m.opts.Logger))
	if err != nil {
		m.err = err
		return nil
	}
	opts := m.opts
	opts.FPS = m.cfg.FPS
	opts.Field = m.cfg.Field()
	m.liveModel = NewModel(ctrl, opts)
	m.state = stateSim
	return tea.Batch(m.liveModel.Init(), func() tea.Msg {
		return tea.WindowSizeMsg{Width: m.width, Height: m.height}
	})
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuInactive = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	menuKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKeyStyle.Render(pairs[i]) + menuInactive.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (m model) viewMenu() string {
	var b strings.Builder
	title := GradientText("CHOREO", CurrentTheme.Secondary, CurrentTheme.Primary)
	b.WriteString("\n\n    " + title + "\n    " + menuSub.Render("periodic three-body orbits") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, s := range m.solutions {
		desc := fmt.Sprintf("%-8s T=%-8.4g x%g", s.Class, s.Period, s.InstabilityFactor)
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-14s", s.Name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuInactive.Render(fmt.Sprintf("  %-14s", s.Name)), menuDim.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	s := m.solutions[m.cfg.Solution]
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(s.Name)) + "\n    " + menuSub.Render(fmt.Sprintf("class %s, period %.4f", s.Class, s.Period)) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range configFields {
		val := fmt.Sprintf("%-14s", m.fieldValue(name))
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-10s", name)), menuDesc.Bold(true).Render(val)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuInactive.Render(fmt.Sprintf("  %-10s", name)), menuDim.Render(val)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusPaused.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive shows the solution menu and then the live view.
func RunInteractive(cfg *config.Config, opts Options) error {
	_, err := tea.NewProgram(NewInteractiveApp(cfg, opts), tea.WithAltScreen()).Run()
	return err
}
