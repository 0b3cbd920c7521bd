package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mpetrov/gravlab/internal/body"
	"github.com/mpetrov/gravlab/internal/gravity"
)

const (
	width           = 70
	height          = 22
	historyCapacity = 600
	trailLength     = 120
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the simulation at the terminal frame rate and renders
// bodies onto a braille canvas with an energy sparkline alongside.
type Model struct {
	field   *gravity.Field
	stepper gravity.Stepper
	bodies  []body.Body
	initial []body.Body

	scenario string
	t, dt    float64
	running  bool
	stepErr  error

	canvas        *Canvas
	scale         float64
	trails        [][]struct{ x, y int }
	energyHistory []float64
}

func NewModel(field *gravity.Field, stepper gravity.Stepper, bodies []body.Body, dt float64, scenario string) Model {
	return Model{
		field:         field,
		stepper:       stepper,
		bodies:        bodies,
		initial:       body.Clone(bodies),
		scenario:      scenario,
		dt:            dt,
		running:       true,
		canvas:        NewCanvas(width, height),
		scale:         fitScale(bodies),
		trails:        make([][]struct{ x, y int }, len(bodies)),
		energyHistory: make([]float64, 0, historyCapacity),
	}
}

// fitScale picks a world-to-subpixel scale that keeps the initial
// configuration inside roughly a third of the canvas.
func fitScale(bodies []body.Body) float64 {
	maxR := 0.0
	for i := range bodies {
		if r := bodies[i].Pos.Norm(); r > maxR {
			maxR = r
		}
	}
	if maxR == 0 {
		maxR = 1
	}
	extent := math.Min(float64(width*2), float64(height*4))
	return extent / (3 * maxR)
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		}

	case TickMsg:
		if m.running && m.stepErr == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	if err := m.stepper.Step(m.field, m.bodies, m.dt); err != nil {
		m.stepErr = err
		m.running = false
		return
	}
	m.t += m.dt

	m.energyHistory = append(m.energyHistory, m.field.Energy(m.bodies))
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}

	for i := range m.bodies {
		x, y := m.project(m.bodies[i].Pos.X, m.bodies[i].Pos.Y)
		m.trails[i] = append(m.trails[i], struct{ x, y int }{x, y})
		if len(m.trails[i]) > trailLength {
			m.trails[i] = m.trails[i][1:]
		}
	}
}

func (m *Model) reset() {
	m.bodies = body.Clone(m.initial)
	m.t = 0
	m.stepErr = nil
	m.running = true
	m.energyHistory = m.energyHistory[:0]
	for i := range m.trails {
		m.trails[i] = m.trails[i][:0]
	}
}

// project maps world (x, y) to canvas sub-pixel coordinates.
func (m *Model) project(x, y float64) (int, int) {
	cw, ch := width*2, height*4
	return cw/2 + int(x*m.scale), ch/2 - int(y*m.scale)
}

func (m Model) View() string {
	m.canvas.Clear()

	for i := range m.trails {
		for j := 1; j < len(m.trails[i]); j++ {
			m.canvas.DrawLine(m.trails[i][j-1].x, m.trails[i][j-1].y, m.trails[i][j].x, m.trails[i][j].y)
		}
	}
	for i := range m.bodies {
		x, y := m.project(m.bodies[i].Pos.X, m.bodies[i].Pos.Y)
		// A fat dot: 2x2 sub-pixels.
		m.canvas.Set(x, y)
		m.canvas.Set(x+1, y)
		m.canvas.Set(x, y+1)
		m.canvas.Set(x+1, y+1)
	}

	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.scenario)) + "\n")

	status := "RUNNING"
	if m.stepErr != nil {
		status = "HALTED"
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.Caption("Energy"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Bodies") + valueStyle.Render(fmt.Sprintf("%d", len(m.bodies))) + "\n")
	s.WriteString(labelStyle.Render("Momentum") + valueStyle.Render(fmt.Sprintf("%.3e", gravity.Momentum(m.bodies).Norm())) + "\n")
	if len(m.energyHistory) > 0 {
		s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.3e", m.energyHistory[len(m.energyHistory)-1])) + "\n")
	}

	if m.stepErr != nil {
		s.WriteString("\n" + errorStyle.Render(m.stepErr.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("space:pause  r:reset  q:quit"))

	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
