package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rpggio/bugtrail/internal/domain/defect"
)

// formField is a text input, or a fixed set of choices when choices is set.
type formField struct {
	label   string
	input   textinput.Model
	choices []string
	choice  int
}

func (f formField) value() string {
	if f.choices != nil {
		return f.choices[f.choice]
	}
	return strings.TrimSpace(f.input.Value())
}

// errorForm is the add/edit modal. index is the list position being edited,
// or -1 for a new error.
type errorForm struct {
	index  int
	fields []formField
	focus  int
}

const (
	fieldTitle = iota
	fieldAssignedTo
	fieldReportedBy
	fieldReportedAt
	fieldStatus
	fieldSeverity
	fieldEnvironment
	fieldCurrentBehavior
	fieldExpectedBehavior
)

func newErrorForm(index int, rec *defect.Record) errorForm {
	text := func(label, placeholder string) formField {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholder
		in.CharLimit = 500
		in.Width = 48
		return formField{label: label, input: in}
	}
	choice := func(label string, values []string) formField {
		return formField{label: label, choices: values}
	}

	f := errorForm{
		index: index,
		fields: []formField{
			text("Title", "Short summary"),
			text("Assigned to", "Who is fixing it"),
			text("Reported by", "Who found it"),
			text("Reported at", "M/D/YYYY, empty for today"),
			choice("Status", statusChoices()),
			choice("Severity", severityChoices()),
			choice("Environment", environmentChoices()),
			text("Current behavior", "What happens"),
			text("Expected behavior", "What should happen"),
		},
	}

	if rec != nil {
		f.fields[fieldTitle].input.SetValue(rec.Title)
		f.fields[fieldAssignedTo].input.SetValue(rec.AssignedTo)
		f.fields[fieldReportedBy].input.SetValue(rec.ReportedBy)
		f.fields[fieldReportedAt].input.SetValue(rec.ReportedAt)
		f.fields[fieldStatus].choice = indexOf(f.fields[fieldStatus].choices, string(rec.Status))
		f.fields[fieldSeverity].choice = indexOf(f.fields[fieldSeverity].choices, string(rec.Severity))
		f.fields[fieldEnvironment].choice = indexOf(f.fields[fieldEnvironment].choices, string(rec.Environment))
		f.fields[fieldCurrentBehavior].input.SetValue(rec.CurrentBehavior)
		f.fields[fieldExpectedBehavior].input.SetValue(rec.ExpectedBehavior)
	}
	f.fields[0].input.Focus()
	return f
}

func (f errorForm) editing() bool {
	return f.index >= 0
}

func (f errorForm) values() defect.Fields {
	return defect.Fields{
		Title:            f.fields[fieldTitle].value(),
		AssignedTo:       f.fields[fieldAssignedTo].value(),
		ReportedBy:       f.fields[fieldReportedBy].value(),
		ReportedAt:       f.fields[fieldReportedAt].value(),
		Status:           defect.Status(f.fields[fieldStatus].value()),
		Severity:         defect.Severity(f.fields[fieldSeverity].value()),
		Environment:      defect.Environment(f.fields[fieldEnvironment].value()),
		CurrentBehavior:  f.fields[fieldCurrentBehavior].value(),
		ExpectedBehavior: f.fields[fieldExpectedBehavior].value(),
	}
}

func (f errorForm) lastFocused() bool {
	return f.focus == len(f.fields)-1
}

// Update moves focus, cycles choices and feeds text inputs. Submitting and
// discarding are handled by the caller.
func (f errorForm) Update(msg tea.KeyMsg) (errorForm, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return f.moveFocus(1), nil
	case "shift+tab", "up":
		return f.moveFocus(-1), nil
	}

	field := &f.fields[f.focus]
	if field.choices != nil {
		switch msg.String() {
		case "left", "h":
			field.choice = (field.choice + len(field.choices) - 1) % len(field.choices)
		case "right", "l", " ":
			field.choice = (field.choice + 1) % len(field.choices)
		}
		return f, nil
	}

	var cmd tea.Cmd
	field.input, cmd = field.input.Update(msg)
	return f, cmd
}

func (f errorForm) moveFocus(delta int) errorForm {
	if f.fields[f.focus].choices == nil {
		f.fields[f.focus].input.Blur()
	}
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	if f.fields[f.focus].choices == nil {
		f.fields[f.focus].input.Focus()
	}
	return f
}

func (f errorForm) View(st styles) string {
	var b strings.Builder
	if f.editing() {
		b.WriteString(st.title.Render("Edit error"))
	} else {
		b.WriteString(st.title.Render("New error"))
	}
	b.WriteString("\n\n")

	for i, field := range f.fields {
		label := st.label
		if i == f.focus {
			label = st.labelFocus
		}
		b.WriteString(label.Render(field.label))
		if field.choices != nil {
			b.WriteString("‹ " + field.value() + " ›")
		} else {
			b.WriteString(field.input.View())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(st.help.Render("tab/shift+tab move · ←/→ choose · ctrl+s save · esc discard"))
	return st.modal.Render(b.String())
}

func statusChoices() []string {
	out := make([]string, 0, len(defect.Statuses))
	for _, s := range defect.Statuses {
		out = append(out, string(s))
	}
	return out
}

func severityChoices() []string {
	out := make([]string, 0, len(defect.Severities))
	for _, s := range defect.Severities {
		out = append(out, string(s))
	}
	return out
}

func environmentChoices() []string {
	out := make([]string, 0, len(defect.Environments))
	for _, e := range defect.Environments {
		out = append(out, string(e))
	}
	return out
}

func indexOf(values []string, v string) int {
	for i, candidate := range values {
		if candidate == v {
			return i
		}
	}
	return 0
}
