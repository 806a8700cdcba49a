package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cardiofola/internal/ui/theme"
)

// NumberInput wraps bubbles/textinput for a labelled decimal field.
type NumberInput struct {
	Label    string
	Unit     string
	Required bool
	Model    textinput.Model
}

// NewNumberInput creates an unfocused numeric input.
func NewNumberInput(label, unit, placeholder string, required bool) NumberInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 7

	return NumberInput{
		Label:    label,
		Unit:     unit,
		Required: required,
		Model:    ti,
	}
}

// Focus focuses the input and returns the cursor blink command.
func (n *NumberInput) Focus() tea.Cmd {
	return n.Model.Focus()
}

// Blur removes focus.
func (n *NumberInput) Blur() {
	n.Model.Blur()
}

// Update handles messages. Single characters other than digits and one
// decimal point are dropped.
func (n NumberInput) Update(msg tea.Msg) (NumberInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len(key) == 1 {
			c := key[0]
			if c == '.' && strings.Contains(n.Model.Value(), ".") {
				return n, nil
			}
			if c != '.' && (c < '0' || c > '9') {
				return n, nil
			}
		}
	}

	var cmd tea.Cmd
	n.Model, cmd = n.Model.Update(msg)
	return n, cmd
}

// View renders the label, input and unit on one line.
func (n NumberInput) View() string {
	label := n.Label
	if n.Required {
		label += " *"
	}
	line := theme.Label.Render(label) + n.Model.View()
	if n.Unit != "" {
		line += " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(n.Unit)
	}
	return line
}

// Value returns the raw input value.
func (n NumberInput) Value() string {
	return strings.TrimSpace(n.Model.Value())
}

// Float returns the input parsed as a number. An empty input yields 0
// and ok false.
func (n NumberInput) Float() (float64, bool) {
	v, err := strconv.ParseFloat(n.Value(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Reset clears the input.
func (n *NumberInput) Reset() {
	n.Model.SetValue("")
}
