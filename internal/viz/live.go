package viz

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/choreo/internal/catalog"
	"github.com/san-kum/choreo/internal/driver"
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/export"
	"github.com/san-kum/choreo/internal/metrics"
	"github.com/san-kum/choreo/internal/physics"
	"github.com/san-kum/choreo/internal/sim"
	"github.com/san-kum/choreo/internal/trail"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 120
	maxSpeed        = 16
	axesColor       = dynamo.NumBodies
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle  = lipgloss.NewStyle().Width(12)
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Options configures the live view.
type Options struct {
	FPS     int
	Field   *physics.Field
	SaveDir string
	Logger  *slog.Logger
}

// energyHistory observes the controller and keeps the most recent total
// energies. After a reset the buffer is refilled with the first new value.
type energyHistory struct {
	field   *physics.Field
	ring    *trail.Ring[float64]
	pending bool
	resets  int
}

func (h *energyHistory) OnFrame(_ int, _ float64, bodies []dynamo.Body) {
	e := h.field.Energy(bodies)
	if h.pending {
		h.ring = trail.NewRing(h.ring.Cap(), e)
		h.pending = false
		return
	}
	h.ring.Push(e)
}

func (h *energyHistory) OnReset(reason dynamo.ResetReason) {
	h.pending = true
	if reason == dynamo.ResetDiverged {
		h.resets++
	}
}

// Model is the bubbletea view of one controller.
type Model struct {
	ctrl          *sim.Controller
	drv           *driver.Driver
	drift         *metrics.EnergyDrift
	history       *energyHistory
	logger        *slog.Logger
	canvas        *Canvas
	camera        *Camera
	trailBuf      []dynamo.Vector3
	interval      time.Duration
	saveDir       string
	width, height int
	speed         int
	running       bool
	showAxes      bool
	showHelp      bool
	message       string
}

// NewModel wraps a controller that has already been reset.
func NewModel(ctrl *sim.Controller, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Field == nil {
		opts.Field = physics.NewField()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	drift := metrics.NewEnergyDrift(opts.Field)
	history := &energyHistory{
		field: opts.Field,
		ring:  trail.NewRing(historyCapacity, opts.Field.Energy(ctrl.Bodies())),
	}
	ctrl.AddMetric(drift)
	ctrl.AddObserver(history)

	camera := NewCamera()
	camera.Scale = 1.5

	return Model{
		ctrl:     ctrl,
		drv:      driver.New(ctrl, opts.FPS),
		drift:    drift,
		history:  history,
		logger:   opts.Logger,
		canvas:   NewCanvas(width, height),
		camera:   camera,
		interval: time.Second / time.Duration(opts.FPS),
		saveDir:  opts.SaveDir,
		width:    width,
		height:   height,
		speed:    1,
		running:  true,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Controller() *sim.Controller { return m.ctrl }
func (m Model) Running() bool               { return m.running }
func (m Model) Speed() int                  { return m.speed }
func (m Model) Message() string             { return m.message }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		// leave room for the stats panel and padding
		m.width = max(20, msg.Width-52)
		m.height = max(8, msg.Height-4)
		m.canvas = NewCanvas(m.width, m.height)
		return m, nil
	case TickMsg:
		if m.running {
			for i := 0; i < m.speed; i++ {
				if _, err := m.drv.Step(); err != nil {
					break
				}
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.restart(m.ctrl.Solution(), m.ctrl.Focus())
	case "n", "right":
		m.restart((m.ctrl.Solution()+1)%catalog.Len(), m.ctrl.Focus())
	case "p", "left":
		m.restart((m.ctrl.Solution()+catalog.Len()-1)%catalog.Len(), m.ctrl.Focus())
	case "c":
		m.restart(m.ctrl.Solution(), -1)
	case "0", "1", "2":
		m.restart(m.ctrl.Solution(), int(msg.String()[0]-'0'))
	case ".", ">":
		m.speed = min(maxSpeed, m.speed*2)
	case ",", "<":
		m.speed = max(1, m.speed/2)
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "z":
		m.camera.RotateZ(0.1)
	case "Z":
		m.camera.RotateZ(-0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "v":
		m.camera.ResetView()
	case "a":
		m.showAxes = !m.showAxes
	case "s":
		m.saveSVG()
	case "t":
		names := ThemeNames()
		for i, name := range names {
			if name == CurrentTheme.Name {
				SetTheme(names[(i+1)%len(names)])
				break
			}
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// restart switches solution or focus. The controller validates both, so a
// failure leaves the current run untouched.
func (m *Model) restart(solution, focus int) {
	if err := m.ctrl.Reset(solution, focus); err != nil {
		m.logger.Error("reset failed", "err", err)
		m.message = err.Error()
		return
	}
	m.message = ""
}

func (m *Model) trails() [][]dynamo.Vector3 {
	out := make([][]dynamo.Vector3, dynamo.NumBodies)
	for i := range out {
		out[i] = m.ctrl.Trail(i, nil)
	}
	return out
}

func (m *Model) saveSVG() {
	s := m.ctrl.SolutionInfo()
	path := filepath.Join(m.saveDir, fmt.Sprintf("%s_%d.svg", s.Slug(), m.ctrl.Frame()))
	if err := export.SaveSVG(path, m.trails(), export.DefaultSVGOptions()); err != nil {
		m.logger.Error("save svg", "path", path, "err", err)
		m.message = err.Error()
		return
	}
	m.logger.Info("saved trails", "path", path)
	m.message = "saved " + path
}

// draw renders trails, bodies and optional axes into the canvas.
func (m *Model) draw() {
	m.canvas.Clear()

	wf := NewWireframe()
	if m.showAxes {
		wf.Edges = append(wf.Edges, CreateAxesWireframe(1, axesColor).Edges...)
	}
	for i := 0; i < dynamo.NumBodies; i++ {
		m.trailBuf = m.ctrl.Trail(i, m.trailBuf[:0])
		wf.AddPath(m.trailBuf, i)
	}
	Render3D(m.canvas, wf, m.camera)

	cw, ch := m.canvas.Width*2, m.canvas.Height*4
	for i := 0; i < dynamo.NumBodies; i++ {
		x, y, _, ok := m.camera.Project(m.ctrl.Position(i), cw, ch)
		if ok {
			m.canvas.Dot(x, y, 1, i)
		}
	}
}

func focusLabel(focus int) string {
	if focus == -1 {
		return "center of mass"
	}
	return fmt.Sprintf("body %d", focus)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	theme := CurrentTheme
	canvasView := canvasStyle.Render(m.canvas.Render(theme.Palette()))

	header := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).MarginBottom(1)
	label := labelStyle.Foreground(theme.Muted)
	value := lipgloss.NewStyle().Foreground(theme.Text)

	s := m.ctrl.SolutionInfo()
	var b strings.Builder
	b.WriteString(header.Render(strings.ToUpper(s.Name)) + "\n")

	status := StatusRunning.Render(AnimatedSpinner(m.ctrl.Frame()) + " RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	b.WriteString(fmt.Sprintf("%s  x%d\n\n", status, m.speed))

	energies := m.history.ring.Values()
	if len(energies) > 1 {
		chart := asciigraph.Plot(energies, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		b.WriteString(graphStyle.Foreground(theme.Accent).Render(chart) + "\n\n")
	}

	row := func(name, v string) {
		b.WriteString(label.Render(name) + value.Render(v) + "\n")
	}
	row("Solution", fmt.Sprintf("%d/%d  %s", m.ctrl.Solution()+1, catalog.Len(), s.Class))
	row("Focus", focusLabel(m.ctrl.Focus()))
	row("Integrator", m.ctrl.Integrator().Name())
	row("Step", fmt.Sprintf("%.2e x %d", m.ctrl.Dt(), m.ctrl.StepsPerFrame()))
	row("Trail", fmt.Sprintf("%d points", m.ctrl.TrailCapacity()))
	row("Time", fmt.Sprintf("%.2f", m.ctrl.Time()))
	phase := math.Mod(m.ctrl.Time(), s.Period) / s.Period
	row("Orbit", ProgressBar(phase, 20))
	row("Energy", fmt.Sprintf("%.6f", m.history.ring.Last()))
	row("Drift", fmt.Sprintf("%.2e", m.drift.Value()))
	row("Resets", fmt.Sprintf("%d", m.ctrl.Divergences()))

	if m.message != "" {
		b.WriteString("\n" + Subtle.Render(m.message) + "\n")
	}

	b.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nN/P:Solution 0-2/C:Focus\nS:SVG T:Theme ?:Help"))
	statsView := statsStyle.Render(b.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Restart solution         ║
║  N/P      - Next/previous solution   ║
║  0 1 2    - Follow a body            ║
║  C        - Follow center of mass    ║
║  . ,      - Faster/slower            ║
║  x y z    - Rotate (shift reverses)  ║
║  + -      - Zoom                     ║
║  V        - Reset view               ║
║  A        - Toggle axes              ║
║  S        - Save trails as SVG       ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// RunLive runs the live view until the user quits.
func RunLive(ctrl *sim.Controller, opts Options) error {
	_, err := tea.NewProgram(NewModel(ctrl, opts), tea.WithAltScreen()).Run()
	return err
}
