package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

// detectDarkBackground resolves the "system" theme. Tests replace it so
// they never query the terminal.
var detectDarkBackground = lipgloss.HasDarkBackground

type uiPalette struct {
	accent   lipgloss.Color
	onAccent lipgloss.Color
	text     lipgloss.Color
	muted    lipgloss.Color
	overdue  lipgloss.Color
	dueSoon  lipgloss.Color
	onTrack  lipgloss.Color
	border   lipgloss.Color
}

var (
	darkPalette = uiPalette{
		accent:   lipgloss.Color("62"),
		onAccent: lipgloss.Color("230"),
		text:     lipgloss.Color("252"),
		muted:    lipgloss.Color("241"),
		overdue:  lipgloss.Color("196"),
		dueSoon:  lipgloss.Color("214"),
		onTrack:  lipgloss.Color("42"),
		border:   lipgloss.Color("240"),
	}
	lightPalette = uiPalette{
		accent:   lipgloss.Color("25"),
		onAccent: lipgloss.Color("255"),
		text:     lipgloss.Color("235"),
		muted:    lipgloss.Color("245"),
		overdue:  lipgloss.Color("160"),
		dueSoon:  lipgloss.Color("166"),
		onTrack:  lipgloss.Color("28"),
		border:   lipgloss.Color("250"),
	}
)

type uiStyles struct {
	title          lipgloss.Style
	filterActive   lipgloss.Style
	filterInactive lipgloss.Style
	cursor         lipgloss.Style
	item           lipgloss.Style
	selectedItem   lipgloss.Style
	completed      lipgloss.Style
	times          lipgloss.Style
	overdue        lipgloss.Style
	dueSoon        lipgloss.Style
	onTrack        lipgloss.Style
	muted          lipgloss.Style
	errorText      lipgloss.Style
	label          lipgloss.Style
	form           lipgloss.Style
}

// resolveTheme maps the "system" theme onto light or dark.
func resolveTheme(theme models.Theme) models.Theme {
	switch theme {
	case models.ThemeLight, models.ThemeDark:
		return theme
	}
	if detectDarkBackground() {
		return models.ThemeDark
	}
	return models.ThemeLight
}

func newUIStyles(theme models.Theme) uiStyles {
	p := darkPalette
	if theme == models.ThemeLight {
		p = lightPalette
	}
	return uiStyles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.onAccent).
			Background(p.accent).
			Padding(0, 1),
		filterActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent).
			Underline(true),
		filterInactive: lipgloss.NewStyle().Foreground(p.muted),
		cursor:         lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		item:           lipgloss.NewStyle().Foreground(p.text),
		selectedItem:   lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		completed:      lipgloss.NewStyle().Foreground(p.muted).Strikethrough(true),
		times:          lipgloss.NewStyle().Foreground(p.muted),
		overdue:        lipgloss.NewStyle().Foreground(p.overdue).Bold(true),
		dueSoon:        lipgloss.NewStyle().Foreground(p.dueSoon),
		onTrack:        lipgloss.NewStyle().Foreground(p.onTrack),
		muted:          lipgloss.NewStyle().Foreground(p.muted),
		errorText:      lipgloss.NewStyle().Foreground(p.overdue),
		label:          lipgloss.NewStyle().Foreground(p.accent).Width(7),
		form: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
	}
}
