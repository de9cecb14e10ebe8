package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/routinr/internal/duration"
	"github.com/sadopc/routinr/internal/engine"
	"github.com/sadopc/routinr/internal/routine"
)

type routineForm int

const (
	formAddRoutine routineForm = iota
	formEditRoutine
	formDeleteRoutine
)

type routinesModel struct {
	engine *engine.Engine
	width  int
	height int

	routines []routine.Timer
	summary  routine.Summary
	cursor   int
	loadErr  error

	formActive bool
	form       *huh.Form
	formType   routineForm

	// Form field pointers (survive value copies)
	formName     *string
	formHours    *string
	formMinutes  *string
	formDuration *string
	formConfirm  *bool

	editingID string
}

func newRoutinesModel(e *engine.Engine) routinesModel {
	name, hours, minutes, dur, confirm := "", "", "", "", false
	return routinesModel{
		engine:       e,
		formName:     &name,
		formHours:    &hours,
		formMinutes:  &minutes,
		formDuration: &dur,
		formConfirm:  &confirm,
	}
}

func (r *routinesModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

// sync copies the engine state into the model.
func (r *routinesModel) sync() {
	r.routines = r.engine.Routines()
	r.summary = routine.Summarize(r.routines)
	if r.cursor >= len(r.routines) {
		r.cursor = max(0, len(r.routines)-1)
	}
}

func (r routinesModel) selected() (routine.Timer, bool) {
	if r.cursor < 0 || r.cursor >= len(r.routines) {
		return routine.Timer{}, false
	}
	return r.routines[r.cursor], true
}

func (r routinesModel) update(msg tea.Msg) (routinesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case routinesLoadedMsg:
		r.loadErr = msg.err
		r.sync()
		return r, nil

	case routinesChangedMsg, tickMsg:
		r.sync()
		return r, nil
	}

	if r.formActive && r.form != nil {
		return r.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return r.updateList(msg)
	}
	return r, nil
}

func (r routinesModel) updateList(msg tea.KeyMsg) (routinesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if r.cursor > 0 {
			r.cursor--
		}
	case key.Matches(msg, keys.Down):
		if r.cursor < len(r.routines)-1 {
			r.cursor++
		}
	case key.Matches(msg, keys.New):
		return r.showAddForm()
	case key.Matches(msg, keys.Start), key.Matches(msg, keys.Enter):
		t, ok := r.selected()
		if !ok {
			return r, nil
		}
		if t.IsRunning {
			// enter toggles
			if key.Matches(msg, keys.Enter) {
				return r.stop(t)
			}
			return r, nil
		}
		if err := r.engine.Start(t.ID); err != nil {
			if errors.Is(err, routine.ErrFinished) {
				return r, infoStatus(fmt.Sprintf("%s is already finished", t.Name))
			}
			return r, errorStatus(err)
		}
		r.sync()
		return r, infoStatus(fmt.Sprintf("Started %s", t.Name))
	case key.Matches(msg, keys.Stop):
		if t, ok := r.selected(); ok {
			return r.stop(t)
		}
	case key.Matches(msg, keys.Edit):
		t, ok := r.selected()
		if !ok {
			return r, nil
		}
		if !routine.CanEdit(t) {
			return r, infoStatus("Only routines that have not started can be edited")
		}
		return r.showEditForm(t)
	case key.Matches(msg, keys.Delete):
		t, ok := r.selected()
		if !ok {
			return r, nil
		}
		if !routine.CanDelete(t) {
			return r, infoStatus("Stop the routine before deleting it")
		}
		return r.showDeleteForm(t)
	}
	return r, nil
}

func (r routinesModel) stop(t routine.Timer) (routinesModel, tea.Cmd) {
	if !t.IsRunning {
		return r, nil
	}
	if err := r.engine.Stop(t.ID); err != nil {
		return r, errorStatus(err)
	}
	r.sync()
	return r, infoStatus(fmt.Sprintf("Stopped %s at %s", t.Name, duration.FormatPrecise(t.RemainingSeconds)))
}

func (r routinesModel) showAddForm() (routinesModel, tea.Cmd) {
	*r.formName = ""
	*r.formHours = "0"
	*r.formMinutes = "30"
	r.formType = formAddRoutine

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Routine Name").Value(r.formName).Validate(validateRoutineName),
			huh.NewInput().Title("Hours").Value(r.formHours).Validate(validateCount),
			huh.NewInput().Title("Minutes").Value(r.formMinutes).Validate(validateCount),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r routinesModel) showEditForm(t routine.Timer) (routinesModel, tea.Cmd) {
	*r.formName = t.Name
	*r.formDuration = t.Duration
	r.formType = formEditRoutine
	r.editingID = t.ID

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Routine Name").Value(r.formName).Validate(validateRoutineName),
			huh.NewInput().
				Title("Duration").
				Description("e.g. 1h 30m, 45 mins").
				Value(r.formDuration).
				Validate(func(s string) error {
					_, err := routine.ParseDurationText(s)
					return err
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r routinesModel) showDeleteForm(t routine.Timer) (routinesModel, tea.Cmd) {
	*r.formConfirm = false
	r.formType = formDeleteRoutine
	r.editingID = t.ID

	r.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", t.Name)).
				Affirmative("Delete").
				Negative("Keep").
				Value(r.formConfirm),
		),
	).WithShowHelp(true)

	r.formActive = true
	return r, r.form.Init()
}

func (r routinesModel) updateForm(msg tea.Msg) (routinesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			r.formActive = false
			r.form = nil
			return r, nil
		}
	}

	form, cmd := r.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		r.form = f
	}

	if r.form.State == huh.StateCompleted {
		r.formActive = false
		r.form = nil
		return r.submit()
	}

	return r, cmd
}

// submit applies the completed form to the engine.
func (r routinesModel) submit() (routinesModel, tea.Cmd) {
	switch r.formType {
	case formAddRoutine:
		hours, _ := strconv.Atoi(strings.TrimSpace(*r.formHours))
		minutes, _ := strconv.Atoi(strings.TrimSpace(*r.formMinutes))
		t, err := r.engine.Add(*r.formName, hours, minutes)
		if err != nil {
			return r, errorStatus(err)
		}
		r.sync()
		r.cursor = len(r.routines) - 1
		return r, infoStatus(fmt.Sprintf("Added %s (%s)", t.Name, t.Duration))

	case formEditRoutine:
		t, err := r.engine.Edit(r.editingID, *r.formName, *r.formDuration)
		if err != nil {
			if errors.Is(err, routine.ErrLocked) {
				return r, infoStatus("Routine has started and can no longer be edited")
			}
			return r, errorStatus(err)
		}
		r.sync()
		return r, infoStatus(fmt.Sprintf("Updated %s", t.Name))

	case formDeleteRoutine:
		if !*r.formConfirm {
			return r, nil
		}
		if err := r.engine.Delete(r.editingID); err != nil {
			return r, errorStatus(err)
		}
		r.sync()
		return r, infoStatus("Routine deleted")
	}
	return r, nil
}

func validateRoutineName(s string) error {
	_, err := routine.ValidateName(s)
	return err
}

func validateCount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return errors.New("enter a whole number, 0 or more")
	}
	return nil
}

func (r routinesModel) view() string {
	if r.formActive && r.form != nil {
		title := titleStyle.Render("New Routine")
		switch r.formType {
		case formEditRoutine:
			title = titleStyle.Render("Edit Routine")
		case formDeleteRoutine:
			title = titleStyle.Render("Delete Routine")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", r.form.View())
		return panelStyle.Width(r.width - 4).Render(content)
	}

	w := r.width - 4
	if !r.engine.Loaded() {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading routines..."))
	}

	sections := []string{r.renderSummary()}
	if clock := r.renderClock(); clock != "" {
		sections = append(sections, clock)
	}
	sections = append(sections, r.renderList(w))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (r routinesModel) renderSummary() string {
	s := r.summary
	cards := []string{
		cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render("Total"), titleStyle.Render(duration.Format(s.TotalSeconds)))),
		cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render("Done"), successStyle.Render(duration.Format(s.DoneSeconds)))),
		cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render("Remaining"), warningStyle.Render(duration.FormatPrecise(s.RemainingSeconds)))),
		cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render("Progress"), highlightStyle.Render(fmt.Sprintf("%.0f%%", s.Percent())))),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderClock shows the big countdown for the selected routine once it has
// started.
func (r routinesModel) renderClock() string {
	t, ok := r.selected()
	if !ok || (!t.IsRunning && !t.Elapsed()) {
		return ""
	}
	style := clockStyle
	if t.IsRunning {
		style = clockRunningStyle
	}
	clock := style.Width(r.width - 8).Render(duration.FormatClock(t.RemainingSeconds))
	label := mutedStyle.Width(r.width - 8).Align(lipgloss.Center).Render(t.Name)
	return activePanelStyle.Width(r.width - 4).Render(lipgloss.JoinVertical(lipgloss.Center, clock, label))
}

func (r routinesModel) renderList(w int) string {
	title := titleStyle.Render("Routines")

	var hints []string
	if !r.engine.Authenticated() {
		hints = append(hints, warningStyle.Render("Signed out: changes stay on this machine. Run `routinr login` to sync."))
	}
	if r.loadErr != nil {
		hints = append(hints, errorStyle.Render(fmt.Sprintf("Could not load routines: %v", r.loadErr)))
	}

	if len(r.routines) == 0 {
		rows := append([]string{title, ""}, hints...)
		rows = append(rows, mutedStyle.Render("No routines yet. Press n to add one."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	rows := []string{title}
	rows = append(rows, hints...)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-10s %-12s", "", "Name", "Duration", "Remaining")))

	for i, t := range r.routines {
		cursor := "  "
		style := normalItemStyle
		if i == r.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := style.Render(fmt.Sprintf("%s%s %-24s %-10s %-12s",
			cursor, statusIcon(t), truncate(t.Name, 24), t.Duration, duration.FormatPrecise(t.RemainingSeconds)))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  s/enter: start  x: stop  r: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func statusIcon(t routine.Timer) string {
	switch {
	case t.IsFinished:
		return successStyle.Render("✓")
	case t.IsRunning:
		return successStyle.Render("●")
	case t.Elapsed():
		return warningStyle.Render("⏸")
	}
	return mutedStyle.Render("○")
}
