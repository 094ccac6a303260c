package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rpggio/bugtrail/internal/domain/defect"
)

var (
	colorAccent  = lipgloss.Color("#8BC34A")
	colorMuted   = lipgloss.Color("#6b7280")
	colorBorder  = lipgloss.Color("#2a3850")
	colorFailure = lipgloss.Color("#e53935")
	colorWarning = lipgloss.Color("#FFC107")
	colorSuccess = lipgloss.Color("#8BC34A")
)

type styles struct {
	sidebar       lipgloss.Style
	sidebarFocus  lipgloss.Style
	main          lipgloss.Style
	title         lipgloss.Style
	item          lipgloss.Style
	itemCurrent   lipgloss.Style
	itemCursor    lipgloss.Style
	muted         lipgloss.Style
	notice        lipgloss.Style
	modal         lipgloss.Style
	label         lipgloss.Style
	labelFocus    lipgloss.Style
	help          lipgloss.Style
	detailHeading lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		sidebar:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1),
		sidebarFocus:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1),
		main:          lipgloss.NewStyle().Padding(0, 1),
		title:         lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		item:          lipgloss.NewStyle(),
		itemCurrent:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		itemCursor:    lipgloss.NewStyle().Reverse(true),
		muted:         lipgloss.NewStyle().Foreground(colorMuted),
		notice:        lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
		modal:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2),
		label:         lipgloss.NewStyle().Width(18).Foreground(colorMuted),
		labelFocus:    lipgloss.NewStyle().Width(18).Bold(true).Foreground(colorAccent),
		help:          lipgloss.NewStyle().Foreground(colorMuted),
		detailHeading: lipgloss.NewStyle().Bold(true),
	}
}

// statusBadge renders status in the color defect.StatusColor names.
func statusBadge(status defect.Status) string {
	style := lipgloss.NewStyle().Bold(true)
	switch defect.StatusColor(status) {
	case "failure":
		style = style.Foreground(colorFailure)
	case "warning":
		style = style.Foreground(colorWarning)
	case "success":
		style = style.Foreground(colorSuccess)
	}
	return style.Render(string(status))
}
