package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskmaster/internal/core"
	"github.com/valter-silva-au/taskmaster/internal/storage"
	"github.com/valter-silva-au/taskmaster/pkg/models"
)

type uiMode int

const (
	modeList uiMode = iota
	modeForm
)

// Form fields, in tab order.
const (
	fieldTitle = iota
	fieldStart
	fieldDue
	fieldCount
)

// formTimeLayout is how existing times are pre-filled in the edit form.
// core.ParseTimeInput accepts it back unchanged.
const formTimeLayout = "2006-01-02 15:04"

var filterLabels = map[models.Filter]string{
	models.FilterAll:       "All",
	models.FilterActive:    "Active",
	models.FilterCompleted: "Completed",
	models.FilterDueSoon:   "Due soon",
}

type uiModel struct {
	store core.TaskStore
	prefs storage.PreferencesManager
	clock models.ClockFormat
	now   func() time.Time

	keys     uiKeyMap
	formKeys formKeyMap
	help     help.Model

	theme  models.Theme
	styles uiStyles

	mode      uiMode
	cursor    int
	editingID string
	inputs    []textinput.Model
	focus     int

	status    string
	statusErr bool
	width     int
	height    int
}

func newUIModel(store core.TaskStore, prefs storage.PreferencesManager, theme models.Theme, clock models.ClockFormat, now func() time.Time) uiModel {
	theme = resolveTheme(theme)
	return uiModel{
		store:    store,
		prefs:    prefs,
		clock:    clock,
		now:      now,
		keys:     defaultUIKeyMap(),
		formKeys: defaultFormKeyMap(),
		help:     help.New(),
		theme:    theme,
		styles:   newUIStyles(theme),
		mode:     modeList,
	}
}

func (m uiModel) Init() tea.Cmd {
	return nil
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}

	if m.mode == modeForm {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m uiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.store.VisibleTasks()
	selected, hasSelection := m.selected(visible)
	m.status = ""
	m.statusErr = false

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.MoveUp):
		m.moveSelected(visible, -1)

	case key.Matches(msg, m.keys.MoveDown):
		m.moveSelected(visible, 1)

	case key.Matches(msg, m.keys.Toggle):
		if hasSelection {
			if _, err := m.store.ToggleCompleted(selected.ID); err != nil {
				m.setError(err)
			}
		}

	case key.Matches(msg, m.keys.Add):
		cmd := m.openForm(nil)
		return m, cmd

	case key.Matches(msg, m.keys.Edit):
		if hasSelection {
			cmd := m.openForm(&selected)
			return m, cmd
		}

	case key.Matches(msg, m.keys.Delete):
		if hasSelection {
			if _, err := m.store.RemoveTask(selected.ID); err != nil {
				m.setError(err)
			} else {
				m.status = fmt.Sprintf("Removed %q", selected.Title)
			}
		}

	case key.Matches(msg, m.keys.ClearDone):
		n, err := m.store.ClearCompleted()
		switch {
		case err != nil:
			m.setError(err)
		case n == 0:
			m.status = "No completed tasks to clear"
		default:
			m.status = fmt.Sprintf("Cleared %d completed %s", n, plural(n, "task", "tasks"))
		}

	case key.Matches(msg, m.keys.NextFilter):
		m.cycleFilter(1)

	case key.Matches(msg, m.keys.PrevFilter):
		m.cycleFilter(-1)

	case key.Matches(msg, m.keys.Samples):
		if len(m.store.Tasks()) == 0 {
			n, err := m.store.AddSampleTasks()
			if err != nil {
				m.setError(err)
			} else {
				m.status = fmt.Sprintf("Added %d sample tasks", n)
			}
		}

	case key.Matches(msg, m.keys.Theme):
		m.toggleTheme()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.clampCursor()
	return m, nil
}

func (m uiModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.formKeys.Cancel):
		m.closeForm()
		return m, nil

	case key.Matches(msg, m.formKeys.Submit):
		return m.submitForm()

	case key.Matches(msg, m.formKeys.NextField):
		cmd := m.focusField((m.focus + 1) % fieldCount)
		return m, cmd

	case key.Matches(msg, m.formKeys.PrevField):
		cmd := m.focusField((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *uiModel) selected(visible []models.Task) (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(visible) {
		return models.Task{}, false
	}
	return visible[m.cursor], true
}

func (m *uiModel) clampCursor() {
	n := len(m.store.VisibleTasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// moveSelected swaps the selected task with its visible neighbour. The
// visible rows are a subsequence of the full list, so both rows are mapped
// back to full-list indices before reordering.
func (m *uiModel) moveSelected(visible []models.Task, delta int) {
	target := m.cursor + delta
	if m.cursor >= len(visible) || target < 0 || target >= len(visible) {
		return
	}

	all := m.store.Tasks()
	from, to := -1, -1
	for i, t := range all {
		switch t.ID {
		case visible[m.cursor].ID:
			from = i
		case visible[target].ID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return
	}

	moved, err := m.store.Reorder(from, to)
	if err != nil {
		m.setError(err)
		return
	}
	if moved {
		m.cursor = target
	}
}

func (m *uiModel) cycleFilter(step int) {
	current := m.store.Filter()
	idx := 0
	for i, f := range models.AllFilters {
		if f == current {
			idx = i
			break
		}
	}
	n := len(models.AllFilters)
	next := models.AllFilters[(idx+step+n)%n]
	if err := m.store.SetFilter(next); err != nil {
		m.setError(err)
		return
	}
	m.cursor = 0
}

func (m *uiModel) toggleTheme() {
	if m.theme == models.ThemeDark {
		m.theme = models.ThemeLight
	} else {
		m.theme = models.ThemeDark
	}
	m.styles = newUIStyles(m.theme)

	if m.prefs == nil {
		return
	}
	if err := m.prefs.Save(models.UIPreferences{Theme: m.theme}); err != nil {
		m.setError(err)
		return
	}
	m.status = fmt.Sprintf("Theme: %s", m.theme)
}

func (m *uiModel) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// openForm switches to the form. A nil task opens an empty "add" form.
func (m *uiModel) openForm(task *models.Task) tea.Cmd {
	placeholders := [fieldCount]string{
		"What needs to be done?",
		"optional, e.g. 9:00 AM or 2026-05-01 09:00",
		"optional, e.g. 5:30 PM or 2026-05-01 17:30",
	}

	m.inputs = make([]textinput.Model, fieldCount)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.Width = 44
		m.inputs[i] = ti
	}
	m.inputs[fieldTitle].CharLimit = core.MaxTitleLength

	m.editingID = ""
	if task != nil {
		m.editingID = task.ID
		m.inputs[fieldTitle].SetValue(task.Title)
		m.inputs[fieldStart].SetValue(formatFormTime(task.StartTime, m.now()))
		m.inputs[fieldDue].SetValue(formatFormTime(task.DueTime, m.now()))
	}

	m.mode = modeForm
	m.status = ""
	m.statusErr = false
	return m.focusField(fieldTitle)
}

func (m *uiModel) closeForm() {
	m.mode = modeList
	m.inputs = nil
	m.editingID = ""
	m.focus = fieldTitle
	m.status = ""
	m.statusErr = false
}

func (m *uiModel) focusField(field int) tea.Cmd {
	m.focus = field
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == field {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m uiModel) submitForm() (tea.Model, tea.Cmd) {
	now := m.now()
	start, err := parseFormTime("start", m.inputs[fieldStart].Value(), now)
	if err != nil {
		m.setError(err)
		return m, nil
	}
	due, err := parseFormTime("due", m.inputs[fieldDue].Value(), now)
	if err != nil {
		m.setError(err)
		return m, nil
	}
	title := m.inputs[fieldTitle].Value()

	if m.editingID == "" {
		task, err := m.store.AddTask(title, start, due)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.closeForm()
		m.cursor = 0
		m.status = fmt.Sprintf("Added %q", task.Title)
		m.clampCursor()
		return m, nil
	}

	patch := core.TaskPatch{Title: &title, SetStart: true, StartTime: start, SetDue: true, DueTime: due}
	if _, err := m.store.UpdateTask(m.editingID, patch); err != nil {
		m.setError(err)
		return m, nil
	}
	m.closeForm()
	m.status = "Task updated"
	m.clampCursor()
	return m, nil
}

func parseFormTime(field, value string, now time.Time) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, ok := core.ParseTimeInput(value, now)
	if !ok {
		return nil, fmt.Errorf("invalid %s time %q", field, value)
	}
	return t, nil
}

func formatFormTime(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(now.Location()).Format(formTimeLayout)
}

func (m uiModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render(" taskmaster "))
	b.WriteString("\n\n")

	if m.mode == modeForm {
		b.WriteString(m.viewForm())
	} else {
		b.WriteString(m.viewList())
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(m.styles.errorText.Render(m.status))
		} else {
			b.WriteString(m.styles.muted.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.mode == modeForm {
		b.WriteString(m.help.View(m.formKeys))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m uiModel) viewFilterBar(counts models.TaskCounts) string {
	current := m.store.Filter()
	amounts := map[models.Filter]int{
		models.FilterAll:       counts.Total,
		models.FilterActive:    counts.Active,
		models.FilterCompleted: counts.Completed,
		models.FilterDueSoon:   counts.DueSoon,
	}
	parts := make([]string, 0, len(models.AllFilters))
	for _, f := range models.AllFilters {
		label := fmt.Sprintf("%s (%d)", filterLabels[f], amounts[f])
		if f == current {
			parts = append(parts, m.styles.filterActive.Render(label))
		} else {
			parts = append(parts, m.styles.filterInactive.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m uiModel) viewList() string {
	var b strings.Builder
	all := m.store.Tasks()
	counts := m.store.Counts()

	if len(all) == 0 {
		b.WriteString("No tasks yet.\n")
		b.WriteString(m.styles.muted.Render("Press a to add one, or s to load some sample tasks."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.viewFilterBar(counts))
	b.WriteString("\n\n")

	visible := m.store.VisibleTasks()
	if len(visible) == 0 {
		b.WriteString(m.styles.muted.Render(fmt.Sprintf("No %s tasks.", strings.ToLower(filterLabels[m.store.Filter()]))))
		b.WriteString("\n")
	}
	for i, t := range visible {
		b.WriteString(m.viewRow(t, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render(countsLine(counts)))
	b.WriteString("\n")
	return b.String()
}

func (m uiModel) viewRow(t models.Task, selected bool) string {
	cursor := "  "
	if selected {
		cursor = m.styles.cursor.Render("> ")
	}

	check := "[ ]"
	title := m.styles.item.Render(t.Title)
	switch {
	case t.Completed:
		check = "[x]"
		title = m.styles.completed.Render(t.Title)
	case selected:
		title = m.styles.selectedItem.Render(t.Title)
	}

	row := cursor + check + " " + title
	if span := timeSpan(t, m.clock); span != "" {
		row += "  " + m.styles.times.Render(span)
	}
	if !t.Completed {
		switch m.store.DeadlineStatus(t) {
		case models.DeadlineOverdue:
			row += "  " + m.styles.overdue.Render("overdue")
		case models.DeadlineDueSoon:
			row += "  " + m.styles.dueSoon.Render("due soon")
		case models.DeadlineOnTrack:
			row += "  " + m.styles.onTrack.Render("on track")
		}
	}
	return row
}

func (m uiModel) viewForm() string {
	heading := "New task"
	if m.editingID != "" {
		heading = "Edit task"
	}
	labels := [fieldCount]string{"Title", "Start", "Due"}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n\n")
	for i, in := range m.inputs {
		b.WriteString(m.styles.label.Render(labels[i]))
		b.WriteString(" ")
		b.WriteString(in.View())
		if i < len(m.inputs)-1 {
			b.WriteString("\n")
		}
	}
	return m.styles.form.Render(b.String()) + "\n"
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Browse and edit tasks in an interactive terminal UI",
	Long: `Launch the interactive task list.

Move with j/k, reorder with J/K, toggle with space, add with a, edit with e,
delete with d, switch filters with f or tab, switch theme with t. Press ?
for the full list of keys and q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		theme := DefaultTheme
		if Prefs != nil {
			prefs, err := Prefs.Load()
			if err != nil {
				logger().Warn("ignoring UI preferences", "err", err)
			} else if prefs.Theme != "" {
				theme = prefs.Theme
			}
		}

		p := tea.NewProgram(newUIModel(Store, Prefs, theme, ClockFormat, nowFunc), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
