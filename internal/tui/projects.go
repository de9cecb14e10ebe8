package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/routinr/internal/duration"
	"github.com/sadopc/routinr/internal/project"
)

const historyLimit = 5

type projectForm int

const (
	formNewProject projectForm = iota
	formEditProject
	formStopTracking
	formSearch
)

type projectsModel struct {
	svc    ProjectService
	token  string
	width  int
	height int

	projects   []project.Project
	pagination project.Pagination
	page       int
	search     string
	cursor     int
	loaded     bool

	tracker tracker

	viewingHistory bool
	history        *project.History

	formActive bool
	form       *huh.Form
	formType   projectForm

	// Form field pointers (survive value copies)
	formName        *string
	formDescription *string
	formAmount      *string
	formTags        *string
	formTitle       *string
	formSearch      *string

	editingID string
}

func newProjectsModel(svc ProjectService, token string, now func() time.Time) projectsModel {
	name, desc, amount, tags, title, search := "", "", "", "", "", ""
	return projectsModel{
		svc:             svc,
		token:           token,
		page:            1,
		tracker:         newTracker(now),
		formName:        &name,
		formDescription: &desc,
		formAmount:      &amount,
		formTags:        &tags,
		formTitle:       &title,
		formSearch:      &search,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p projectsModel) enabled() bool {
	return p.svc != nil && p.token != ""
}

type projectsDataMsg struct {
	page *project.Page
	err  error
}

type historyDataMsg struct {
	projectID string
	history   *project.History
	err       error
}

type trackingStartedMsg struct {
	projectID string
	name      string
	entry     *project.Entry
	err       error
}

type trackingStoppedMsg struct {
	projectID string
	entry     *project.Entry
	err       error
}

type projectSavedMsg struct {
	text string
	err  error
}

func (p projectsModel) refresh() tea.Cmd {
	if !p.enabled() {
		return nil
	}
	opts := project.ListOptions{Page: p.page, Search: p.search}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		page, err := p.svc.ListProjects(ctx, p.token, opts)
		return projectsDataMsg{page: page, err: err}
	}
}

func (p projectsModel) refreshHistory() tea.Cmd {
	proj, ok := p.selected()
	if !ok || !p.enabled() {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		h, err := p.svc.ProjectHistory(ctx, p.token, proj.ID, historyLimit)
		return historyDataMsg{projectID: proj.ID, history: h, err: err}
	}
}

func (p projectsModel) selected() (project.Project, bool) {
	if p.cursor < 0 || p.cursor >= len(p.projects) {
		return project.Project{}, false
	}
	return p.projects[p.cursor], true
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		if msg.err != nil {
			return p, errorStatus(msg.err)
		}
		p.loaded = true
		p.projects = msg.page.Projects
		p.pagination = msg.page.Pagination
		p.tracker.reconcile(p.projects)
		if p.cursor >= len(p.projects) {
			p.cursor = max(0, len(p.projects)-1)
		}
		return p, nil

	case historyDataMsg:
		if msg.err != nil {
			return p, errorStatus(msg.err)
		}
		if proj, ok := p.selected(); ok && proj.ID == msg.projectID {
			p.history = msg.history
		}
		return p, nil

	case trackingStartedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, project.ErrAlreadyRunning) {
				return p, infoStatus(fmt.Sprintf("%s is already tracking", msg.name))
			}
			return p, errorStatus(msg.err)
		}
		p.tracker.start(msg.projectID, msg.entry.Date)
		return p, tea.Batch(p.refresh(), infoStatus(fmt.Sprintf("Tracking %s", msg.name)))

	case trackingStoppedMsg:
		if msg.err != nil {
			return p, errorStatus(msg.err)
		}
		p.tracker.stop(msg.projectID)
		text := fmt.Sprintf("Logged %s: %s", duration.FormatPrecise(msg.entry.Duration), msg.entry.Title)
		cmds := []tea.Cmd{p.refresh(), infoStatus(text)}
		if p.viewingHistory {
			cmds = append(cmds, p.refreshHistory())
		}
		return p, tea.Batch(cmds...)

	case projectSavedMsg:
		if msg.err != nil {
			return p, errorStatus(msg.err)
		}
		return p, tea.Batch(p.refresh(), infoStatus(msg.text))

	case tea.KeyMsg:
		if !p.enabled() {
			return p, nil
		}
		if p.viewingHistory {
			return p.updateHistoryView(msg)
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Left):
		if p.page > 1 {
			p.page--
			p.cursor = 0
			return p, p.refresh()
		}
	case key.Matches(msg, keys.Right):
		if p.page*p.pagination.Limit < p.pagination.Total {
			p.page++
			p.cursor = 0
			return p, p.refresh()
		}
	case key.Matches(msg, keys.Refresh):
		return p, p.refresh()
	case key.Matches(msg, keys.Enter):
		if _, ok := p.selected(); ok {
			p.viewingHistory = true
			p.history = nil
			return p, p.refreshHistory()
		}
	case key.Matches(msg, keys.New):
		return p.showProjectForm(formNewProject, project.Project{})
	case key.Matches(msg, keys.Edit):
		if proj, ok := p.selected(); ok {
			return p.showProjectForm(formEditProject, proj)
		}
	case key.Matches(msg, keys.Search):
		return p.showSearchForm()
	case key.Matches(msg, keys.Delete):
		if proj, ok := p.selected(); ok {
			return p, p.archive(proj)
		}
	case key.Matches(msg, keys.Start):
		if proj, ok := p.selected(); ok {
			return p.startTracking(proj)
		}
	case key.Matches(msg, keys.Stop):
		if proj, ok := p.selected(); ok {
			return p.showStopForm(proj)
		}
	}
	return p, nil
}

func (p projectsModel) updateHistoryView(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingHistory = false
		p.history = nil
		return p, nil
	case key.Matches(msg, keys.Refresh):
		return p, p.refreshHistory()
	case key.Matches(msg, keys.Start):
		if proj, ok := p.selected(); ok {
			return p.startTracking(proj)
		}
	case key.Matches(msg, keys.Stop):
		if proj, ok := p.selected(); ok {
			return p.showStopForm(proj)
		}
	}
	return p, nil
}

func (p projectsModel) startTracking(proj project.Project) (projectsModel, tea.Cmd) {
	if p.tracker.running(proj.ID) {
		return p, infoStatus(fmt.Sprintf("%s is already tracking", proj.Name))
	}
	return p, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		entry, err := p.svc.StartTracking(ctx, p.token, proj.ID)
		return trackingStartedMsg{projectID: proj.ID, name: proj.Name, entry: entry, err: err}
	}
}

func (p projectsModel) stopTracking(projectID, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		entry, err := p.svc.StopTracking(ctx, p.token, projectID, title)
		return trackingStoppedMsg{projectID: projectID, entry: entry, err: err}
	}
}

func (p projectsModel) archive(proj project.Project) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		err := p.svc.ArchiveProject(ctx, p.token, proj.ID)
		return projectSavedMsg{text: fmt.Sprintf("Archived %s", proj.Name), err: err}
	}
}

func (p projectsModel) showProjectForm(kind projectForm, proj project.Project) (projectsModel, tea.Cmd) {
	*p.formName = proj.Name
	*p.formDescription = proj.Description
	*p.formAmount = ""
	if proj.Amount != 0 {
		*p.formAmount = strconv.FormatFloat(proj.Amount, 'f', -1, 64)
	}
	*p.formTags = strings.Join(proj.Tags, ", ")
	p.formType = kind
	p.editingID = proj.ID

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name is required")
				}
				return nil
			}),
			huh.NewInput().Title("Description").Value(p.formDescription),
			huh.NewInput().Title("Amount").Value(p.formAmount).Validate(validateAmount),
			huh.NewInput().Title("Tags (comma-separated)").Value(p.formTags),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showStopForm(proj project.Project) (projectsModel, tea.Cmd) {
	if !p.tracker.running(proj.ID) {
		return p, infoStatus(fmt.Sprintf("%s is not tracking", proj.Name))
	}
	*p.formTitle = ""
	p.formType = formStopTracking
	p.editingID = proj.ID

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What did you work on?").
				Value(p.formTitle).
				Validate(func(s string) error {
					_, err := project.ValidateTitle(s)
					return err
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showSearchForm() (projectsModel, tea.Cmd) {
	*p.formSearch = p.search
	p.formType = formSearch

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Search projects").Value(p.formSearch),
		),
	).WithShowHelp(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		return p.submit()
	}

	return p, cmd
}

func (p projectsModel) submit() (projectsModel, tea.Cmd) {
	switch p.formType {
	case formNewProject, formEditProject:
		in, err := p.formInput()
		if err != nil {
			return p, errorStatus(err)
		}
		kind, id := p.formType, p.editingID
		return p, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
			defer cancel()
			if kind == formEditProject {
				proj, err := p.svc.UpdateProject(ctx, p.token, id, in)
				if err != nil {
					return projectSavedMsg{err: err}
				}
				return projectSavedMsg{text: fmt.Sprintf("Updated %s", proj.Name)}
			}
			proj, err := p.svc.CreateProject(ctx, p.token, in)
			if err != nil {
				return projectSavedMsg{err: err}
			}
			return projectSavedMsg{text: fmt.Sprintf("Created %s", proj.Name)}
		}

	case formStopTracking:
		title, err := project.ValidateTitle(*p.formTitle)
		if err != nil {
			return p, errorStatus(err)
		}
		return p, p.stopTracking(p.editingID, title)

	case formSearch:
		p.search = strings.TrimSpace(*p.formSearch)
		p.page = 1
		p.cursor = 0
		return p, p.refresh()
	}
	return p, nil
}

// formInput builds the API payload from the project form.
func (p projectsModel) formInput() (project.Input, error) {
	in := project.Input{
		Name:        project.Ptr(strings.TrimSpace(*p.formName)),
		Description: project.Ptr(strings.TrimSpace(*p.formDescription)),
		Tags:        project.ParseTags(*p.formTags),
	}
	if s := strings.TrimSpace(*p.formAmount); s != "" {
		amount, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return project.Input{}, fmt.Errorf("amount %q is not a number", s)
		}
		in.Amount = &amount
	}
	if p.formType == formEditProject {
		return project.ValidatePatch(in)
	}
	return project.ValidateCreate(in)
}

func validateAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return errors.New("enter a number, 0 or more")
	}
	return nil
}

func (p projectsModel) view() string {
	w := p.width - 4
	if p.formActive && p.form != nil {
		var title string
		switch p.formType {
		case formNewProject:
			title = "New Project"
		case formEditProject:
			title = "Edit Project"
		case formStopTracking:
			title = "Stop Tracking"
		case formSearch:
			title = "Search"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", p.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if !p.enabled() {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Projects"),
			"",
			mutedStyle.Render("Sign in with `routinr login` to track time on projects."),
		))
	}

	if p.viewingHistory {
		return p.renderHistory(w)
	}
	return p.renderProjectList(w)
}

func (p projectsModel) renderProjectList(w int) string {
	title := titleStyle.Render("Projects")
	if p.search != "" {
		title = lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", mutedStyle.Render(fmt.Sprintf("matching %q", p.search)))
	}

	if !p.loaded {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("Loading projects...")))
	}

	if len(p.projects) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects found. Press n to create one."),
		))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-10s %-20s", "", "Name", "Tracked", "Tags")))

	for i, proj := range p.projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := mutedStyle.Render("○")
		clock := ""
		if p.tracker.running(proj.ID) {
			dot = successStyle.Render("●")
			clock = "tracking"
			if p.tracker.known(proj.ID) {
				clock = formatDuration(p.tracker.elapsed(proj.ID))
			}
		}
		row := style.Render(fmt.Sprintf("%s%s %-24s %-10s %-20s",
			cursor, dot, truncate(proj.Name, 24), clock, truncate(strings.Join(proj.Tags, ","), 20)))
		rows = append(rows, row)
	}

	if pg := p.pagination; pg.Total > pg.Limit && pg.Limit > 0 {
		pages := (pg.Total + pg.Limit - 1) / pg.Limit
		rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  page %d of %d  ←/→", pg.Page, pages)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  r: edit  d: archive  s: start  x: stop  /: search  enter: history"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderHistory(w int) string {
	proj, _ := p.selected()
	title := titleStyle.Render(fmt.Sprintf("%s: History", proj.Name))

	var rows []string
	rows = append(rows, title)
	if proj.Description != "" {
		rows = append(rows, mutedStyle.Render(proj.Description))
	}
	if p.tracker.running(proj.ID) {
		status := "● tracking"
		if p.tracker.known(proj.ID) {
			status += "  " + formatDuration(p.tracker.elapsed(proj.ID))
		}
		rows = append(rows, "", clockRunningStyle.Render(status))
	}
	rows = append(rows, "")

	switch {
	case p.history == nil:
		rows = append(rows, mutedStyle.Render("Loading history..."))
	case len(p.history.Entries) == 0:
		rows = append(rows, mutedStyle.Render("No time logged yet. Press s to start tracking."))
	default:
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-16s %-28s %10s", "Date", "Title", "Duration")))
		for _, e := range p.history.Entries {
			rows = append(rows, fmt.Sprintf("  %-16s %-28s %10s",
				e.Date.Local().Format("Jan 02 15:04"), truncate(e.Title, 28), formatSeconds(e.Duration)))
		}
		rows = append(rows, "", highlightStyle.Render(fmt.Sprintf("  Total %s", duration.FormatPrecise(p.history.TotalSeconds))))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  s: start  x: stop  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
