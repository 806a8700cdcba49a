// Package tracker is the interactive vitals tracker: a form that submits
// readings to the engine and shows the verdict and recent readings.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cardiofola/internal/engine"
	"github.com/abhisek/cardiofola/internal/risk"
	"github.com/abhisek/cardiofola/internal/ui/components"
	"github.com/abhisek/cardiofola/internal/ui/layout"
	"github.com/abhisek/cardiofola/internal/ui/report"
	"github.com/abhisek/cardiofola/internal/ui/theme"
	"github.com/abhisek/cardiofola/internal/vitals"
)

// MaxReadings is how many recent readings the tracker keeps.
const MaxReadings = 5

const tickInterval = 200 * time.Millisecond

// Form field order.
const (
	fieldHeartRate = iota
	fieldSystolic
	fieldDiastolic
	fieldAge
	fieldCholesterol
	numFields
)

// Engine is the part of *engine.Engine the tracker drives.
type Engine interface {
	Initialize(ctx context.Context) *engine.Task
	IsReady() bool
	IsTraining() bool
	Progress() engine.Progress
	LastError() error
	Infer(ctx context.Context, rec vitals.Record) (risk.Verdict, bool)
}

var errRequired = errors.New("please fill in all required fields")

type tickMsg time.Time

type trainedMsg struct {
	err error
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx context.Context
	eng Engine
	now func() time.Time

	inputs   [numFields]components.NumberInput
	focus    int
	readings []report.Assessment
	errMsg   string
	trainErr error

	width  int
	height int
}

// New creates a tracker bound to eng.
func New(ctx context.Context, eng Engine) Model {
	m := Model{
		ctx: ctx,
		eng: eng,
		now: time.Now,
	}
	m.inputs[fieldHeartRate] = components.NewNumberInput("Heart rate", "BPM", "72", true)
	m.inputs[fieldSystolic] = components.NewNumberInput("Systolic", "mmHg", "120", true)
	m.inputs[fieldDiastolic] = components.NewNumberInput("Diastolic", "mmHg", "80", true)
	m.inputs[fieldAge] = components.NewNumberInput("Age", "years", "45", true)
	m.inputs[fieldCholesterol] = components.NewNumberInput("Cholesterol", "mg/dL", "200", false)
	m.inputs[fieldHeartRate].Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.train(), tick())
}

// train starts (or joins) engine initialization and reports when it ends.
func (m Model) train() tea.Cmd {
	task := m.eng.Initialize(m.ctx)
	return func() tea.Msg {
		<-task.Done()
		return trainedMsg{err: task.Err()}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Keeps the training progress bar moving.
		return m, tick()

	case trainedMsg:
		m.trainErr = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			cmd := m.setFocus((m.focus + 1) % numFields)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.setFocus((m.focus + numFields - 1) % numFields)
			return m, cmd
		case "enter":
			return m.submit()
		case "ctrl+r":
			if m.eng.IsTraining() {
				return m, nil
			}
			m.trainErr = nil
			return m, m.train()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

// submit validates the form and runs one assessment.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.eng.IsReady() {
		m.errMsg = "Model is not ready yet"
		if m.eng.IsTraining() {
			m.errMsg = "Model is still training, please wait"
		}
		return m, nil
	}

	rec, err := m.record()
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}

	v, ok := m.eng.Infer(m.ctx, rec)
	if !ok {
		m.errMsg = "Assessment unavailable, try again"
		return m, nil
	}

	a := report.NewAssessment(rec, v, m.now())
	m.readings = append([]report.Assessment{a}, m.readings...)
	if len(m.readings) > MaxReadings {
		m.readings = m.readings[:MaxReadings]
	}
	m.errMsg = ""

	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	cmd := m.setFocus(fieldHeartRate)
	return m, cmd
}

func (m Model) record() (vitals.Record, error) {
	values := make([]float64, numFields)
	for i, in := range m.inputs {
		if in.Value() == "" {
			if in.Required {
				return vitals.Record{}, errRequired
			}
			continue
		}
		v, ok := in.Float()
		if !ok {
			return vitals.Record{}, fmt.Errorf("%s is not a number", in.Label)
		}
		values[i] = v
	}

	rec := vitals.Record{
		HeartRate:   values[fieldHeartRate],
		Systolic:    values[fieldSystolic],
		Diastolic:   values[fieldDiastolic],
		Age:         values[fieldAge],
		Cholesterol: values[fieldCholesterol],
	}
	if err := rec.Validate(); err != nil {
		return vitals.Record{}, err
	}
	return rec, nil
}

// Readings returns the recent assessments, newest first.
func (m Model) Readings() []report.Assessment {
	return m.readings
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader("Vitals Tracker", m.status(), m.width)
	footer := layout.RenderFooter([]layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Assess"},
		{Key: "Ctrl+R", Description: "Retrain"},
		{Key: "Esc", Description: "Quit"},
	}, m.width)

	v.SetContent(layout.RenderFrame(header, m.body(m.width), footer, m.width, m.height))
	return v
}

func (m Model) status() string {
	switch {
	case m.eng.IsReady():
		return lipgloss.NewStyle().Foreground(theme.Normal).Render("● Model ready")
	case m.eng.IsTraining():
		return lipgloss.NewStyle().Foreground(theme.Warning).Render("● Training")
	default:
		return lipgloss.NewStyle().Foreground(theme.Danger).Render("● Model unavailable")
	}
}

// body renders everything between header and footer.
func (m Model) body(width int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render("Record your vitals"))
	b.WriteString("\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.submitRow(width))
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(m.errMsg))
		b.WriteString("\n")
	}

	if len(m.readings) > 0 {
		b.WriteString("\n")
		b.WriteString(report.Card(m.readings[0], min(width-2, 80)))
		b.WriteString("\n\n")
		b.WriteString(theme.Title.Render("Recent readings"))
		b.WriteString("\n")
		for _, a := range m.readings {
			b.WriteString(report.Reading(a))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) submitRow(width int) string {
	ready := m.eng.IsReady()
	row := components.NewButton("Assess risk", ready).View()

	switch {
	case m.eng.IsTraining():
		p := m.eng.Progress()
		bar := components.NewProgressBar("Training AI model...", p.Fraction(), true, min(width-4, 70))
		row += "\n" + bar.View()
	case !ready:
		msg := "Model not trained"
		if err := m.eng.LastError(); err != nil {
			msg = "Training failed: " + err.Error()
		} else if m.trainErr != nil {
			msg = "Training failed: " + m.trainErr.Error()
		}
		row += "\n" + theme.ErrorText.Render(msg) + theme.Hint.Render("  (ctrl+r to retry)")
	}
	return row
}

// Run starts the tracker program.
func Run(ctx context.Context, eng Engine) error {
	p := tea.NewProgram(New(ctx, eng))
	_, err := p.Run()
	return err
}
