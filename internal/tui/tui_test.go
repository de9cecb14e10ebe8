package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/routinr/internal/engine"
	"github.com/sadopc/routinr/internal/project"
	"github.com/sadopc/routinr/internal/routine"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	// signed out, with an interval long enough that no tick fires mid-test
	e := engine.New(nil, engine.Options{Interval: time.Hour})
	if err := e.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func mustStatus(t *testing.T, cmd tea.Cmd) statusMsg {
	t.Helper()
	msg, ok := runCmd(t, cmd).(statusMsg)
	if !ok {
		t.Fatalf("expected statusMsg, got %T", msg)
	}
	return msg
}

type fakeProjects struct {
	projects []project.Project
	started  map[string]time.Time
	entries  []project.Entry
	now      time.Time
	listErr  error
}

func newFakeProjects(names ...string) *fakeProjects {
	f := &fakeProjects{started: make(map[string]time.Time), now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	for i, n := range names {
		f.projects = append(f.projects, project.Project{ID: string(rune('a' + i)), Name: n})
	}
	return f
}

func (f *fakeProjects) ListProjects(_ context.Context, _ string, opts project.ListOptions) (*project.Page, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	opts = opts.Normalize()
	out := make([]project.Project, 0, len(f.projects))
	for _, p := range f.projects {
		if opts.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(opts.Search)) {
			continue
		}
		_, p.Tracking = f.started[p.ID]
		out = append(out, p)
	}
	return &project.Page{
		Projects:   out,
		Pagination: project.Pagination{Page: opts.Page, Limit: opts.Limit, Total: len(out)},
	}, nil
}

func (f *fakeProjects) CreateProject(_ context.Context, _ string, in project.Input) (*project.Project, error) {
	p := project.Project{ID: "new", Name: *in.Name, Tags: in.Tags}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeProjects) UpdateProject(_ context.Context, _ string, id string, in project.Input) (*project.Project, error) {
	for i := range f.projects {
		if f.projects[i].ID == id {
			if in.Name != nil {
				f.projects[i].Name = *in.Name
			}
			return &f.projects[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeProjects) ArchiveProject(_ context.Context, _ string, id string) error {
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeProjects) StartTracking(_ context.Context, _ string, id string) (*project.Entry, error) {
	if _, ok := f.started[id]; ok {
		return nil, project.ErrAlreadyRunning
	}
	f.started[id] = f.now
	return &project.Entry{ID: "e-" + id, ProjectID: id, Date: f.now}, nil
}

func (f *fakeProjects) StopTracking(_ context.Context, _ string, id, title string) (*project.Entry, error) {
	start, ok := f.started[id]
	if !ok {
		return nil, project.ErrNotRunning
	}
	delete(f.started, id)
	end := start.Add(90 * time.Second)
	e := project.Entry{ID: "e-" + id, ProjectID: id, Title: title, Date: start, EndedAt: &end, Duration: 90}
	f.entries = append([]project.Entry{e}, f.entries...)
	return &e, nil
}

func (f *fakeProjects) ProjectHistory(_ context.Context, _ string, id string, limit int) (*project.History, error) {
	h := &project.History{Entries: []project.Entry{}}
	for _, e := range f.entries {
		if e.ProjectID == id && len(h.Entries) < limit {
			h.Entries = append(h.Entries, e)
			h.TotalSeconds += e.Duration
		}
	}
	return h, nil
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{-time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
	if got := formatSeconds(90); got != "00:01:30" {
		t.Errorf("formatSeconds(90) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"meditation", 5, "medi…"},
		{"çalışma", 4, "çal…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestViewNames(t *testing.T) {
	if len(viewNames) != 3 {
		t.Fatalf("expected 3 view names, got %d", len(viewNames))
	}
	if viewNames[viewRoutines] != "Routines" || viewNames[viewProgress] != "Progress" {
		t.Fatalf("unexpected view names: %v", viewNames)
	}
}

func TestSyncErrorMsg(t *testing.T) {
	msg, ok := SyncErrorMsg(errors.New("boom")).(statusMsg)
	if !ok || !msg.isError || !strings.Contains(msg.text, "boom") {
		t.Fatalf("unexpected sync message: %+v", msg)
	}
}

// ============================================================
// Routines view
// ============================================================

func TestRoutinesAddForm(t *testing.T) {
	e := newTestEngine(t)
	r := newRoutinesModel(e)

	r, _ = r.showAddForm()
	if !r.formActive || r.formType != formAddRoutine {
		t.Fatal("add form should be active")
	}
	*r.formName = "Reading"
	*r.formHours = "1"
	*r.formMinutes = "30"
	r.formActive = false

	r, cmd := r.submit()
	if msg := mustStatus(t, cmd); msg.isError {
		t.Fatalf("unexpected error: %s", msg.text)
	}
	if len(r.routines) != 1 {
		t.Fatalf("expected 1 routine, got %d", len(r.routines))
	}
	got := r.routines[0]
	if got.Name != "Reading" || got.OriginalSeconds != 5400 || got.Duration != "1h 30m" {
		t.Fatalf("unexpected routine: %+v", got)
	}
	if r.summary.TotalSeconds != 5400 {
		t.Fatalf("summary total = %d", r.summary.TotalSeconds)
	}
}

func TestRoutinesAddZeroDuration(t *testing.T) {
	e := newTestEngine(t)
	r := newRoutinesModel(e)
	r, _ = r.showAddForm()
	*r.formName = "Nothing"
	*r.formHours = "0"
	*r.formMinutes = "0"

	r, cmd := r.submit()
	if msg := mustStatus(t, cmd); !msg.isError {
		t.Fatal("zero duration should be rejected")
	}
	if len(e.Routines()) != 0 {
		t.Fatal("no routine should be created")
	}
}

func TestRoutinesStartStop(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Add("Walk", 0, 10); err != nil {
		t.Fatal(err)
	}
	r := newRoutinesModel(e)
	r, _ = r.update(routinesChangedMsg{})

	r, cmd := r.update(runes("s"))
	mustStatus(t, cmd)
	if !r.routines[0].IsRunning {
		t.Fatal("routine should be running after s")
	}
	if r.summary.Running != 1 {
		t.Fatalf("running = %d, want 1", r.summary.Running)
	}

	// s again is a no-op
	if _, cmd = r.update(runes("s")); cmd != nil {
		t.Fatal("second start should do nothing")
	}

	r, _ = r.update(runes("x"))
	if r.routines[0].IsRunning {
		t.Fatal("routine should stop after x")
	}
}

func TestRoutinesEnterToggles(t *testing.T) {
	e := newTestEngine(t)
	e.Add("Walk", 0, 10)
	r := newRoutinesModel(e)
	r, _ = r.update(routinesChangedMsg{})

	r, _ = r.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !r.routines[0].IsRunning {
		t.Fatal("enter should start")
	}
	r, _ = r.update(tea.KeyMsg{Type: tea.KeyEnter})
	if r.routines[0].IsRunning {
		t.Fatal("enter should stop a running routine")
	}
}

func TestRoutinesEditGuard(t *testing.T) {
	e := newTestEngine(t)
	e.Add("Walk", 0, 10)
	r := newRoutinesModel(e)
	r, _ = r.update(routinesChangedMsg{})

	r, _ = r.update(runes("s"))
	r, cmd := r.update(runes("r"))
	if r.formActive {
		t.Fatal("edit form must not open for a running routine")
	}
	if msg := mustStatus(t, cmd); !strings.Contains(msg.text, "not started") {
		t.Fatalf("unexpected status: %q", msg.text)
	}

	r, cmd = r.update(runes("d"))
	if r.formActive {
		t.Fatal("delete confirm must not open for a running routine")
	}
	mustStatus(t, cmd)
}

func TestRoutinesEditFresh(t *testing.T) {
	e := newTestEngine(t)
	e.Add("Walk", 0, 10)
	r := newRoutinesModel(e)
	r, _ = r.update(routinesChangedMsg{})

	r, _ = r.update(runes("r"))
	if !r.formActive || r.formType != formEditRoutine {
		t.Fatal("edit form should open for a fresh routine")
	}
	if *r.formDuration != "10m" {
		t.Fatalf("form duration = %q, want 10m", *r.formDuration)
	}
	*r.formName = "Long walk"
	*r.formDuration = "1h 15m"

	r, _ = r.submit()
	got := r.routines[0]
	if got.Name != "Long walk" || got.OriginalSeconds != 4500 || got.RemainingSeconds != 4500 {
		t.Fatalf("unexpected routine after edit: %+v", got)
	}
}

func TestRoutinesDeleteConfirm(t *testing.T) {
	e := newTestEngine(t)
	e.Add("Walk", 0, 10)
	r := newRoutinesModel(e)
	r, _ = r.update(routinesChangedMsg{})

	r, _ = r.update(runes("d"))
	if !r.formActive || r.formType != formDeleteRoutine {
		t.Fatal("delete confirm should open")
	}

	// declined
	r, _ = r.submit()
	if len(r.routines) != 1 {
		t.Fatal("declined delete should keep the routine")
	}

	*r.formConfirm = true
	r, _ = r.submit()
	if len(r.routines) != 0 {
		t.Fatal("confirmed delete should remove the routine")
	}
}

func TestRoutinesFormEscape(t *testing.T) {
	e := newTestEngine(t)
	r := newRoutinesModel(e)
	r, _ = r.showAddForm()
	r, _ = r.update(tea.KeyMsg{Type: tea.KeyEsc})
	if r.formActive {
		t.Fatal("esc should close the form")
	}
}

func TestRoutinesCursorClamp(t *testing.T) {
	e := newTestEngine(t)
	e.Add("A", 0, 1)
	e.Add("B", 0, 1)
	r := newRoutinesModel(e)
	r, _ = r.update(routinesChangedMsg{})

	r, _ = r.update(runes("j"))
	r, _ = r.update(runes("j"))
	if r.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", r.cursor)
	}
	e.Delete(r.routines[1].ID)
	r, _ = r.update(routinesChangedMsg{})
	if r.cursor != 0 {
		t.Fatalf("cursor should clamp to 0, got %d", r.cursor)
	}
}

func TestValidateCount(t *testing.T) {
	for _, ok := range []string{"", "0", "12", " 3 "} {
		if err := validateCount(ok); err != nil {
			t.Errorf("validateCount(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"-1", "1.5", "abc"} {
		if err := validateCount(bad); err == nil {
			t.Errorf("validateCount(%q) should fail", bad)
		}
	}
}

// ============================================================
// Progress chart
// ============================================================

func TestProgressBars(t *testing.T) {
	timers := []routine.Timer{
		{Name: "Reading", OriginalSeconds: 3600, RemainingSeconds: 1800},
		{Name: "Stretching every morning", OriginalSeconds: 600, RemainingSeconds: 0, IsFinished: true},
	}
	bars := progressBars(timers)
	if len(bars) != 2 {
		t.Fatalf("bars = %d, want 2", len(bars))
	}

	first := bars[0]
	if len(first.Values) != 2 {
		t.Fatalf("expected stacked completed/remaining values, got %d", len(first.Values))
	}
	if first.Values[0].Name != "Completed" || first.Values[0].Value != 30 {
		t.Fatalf("completed = %+v, want 30 minutes", first.Values[0])
	}
	if first.Values[1].Name != "Remaining" || first.Values[1].Value != 30 {
		t.Fatalf("remaining = %+v, want 30 minutes", first.Values[1])
	}

	if bars[1].Values[0].Value != 10 || bars[1].Values[1].Value != 0 {
		t.Fatalf("finished bar = %+v", bars[1].Values)
	}
	if len([]rune(bars[1].Label)) > minBarSlot-1 {
		t.Fatalf("label %q should be truncated", bars[1].Label)
	}
}

func TestProgressPaging(t *testing.T) {
	p := newProgressModel()
	p.setSize(36, 20) // chart width 28: 3 bars per page

	var timers []routine.Timer
	for i := 0; i < 5; i++ {
		timers = append(timers, routine.Timer{Name: string(rune('A' + i)), OriginalSeconds: 60, RemainingSeconds: 60})
	}
	p.setRoutines(timers)

	if p.pageSize() != 3 {
		t.Fatalf("page size = %d, want 3", p.pageSize())
	}
	if len(p.visible()) != 3 {
		t.Fatalf("visible = %d, want 3", len(p.visible()))
	}

	p, _ = p.update(runes("l"))
	p, _ = p.update(runes("l"))
	p, _ = p.update(runes("l")) // already at the last page
	if p.offset != 2 {
		t.Fatalf("offset = %d, want 2", p.offset)
	}
	if v := p.visible(); v[0].Name != "C" || len(v) != 3 {
		t.Fatalf("unexpected visible window: %+v", v)
	}

	p, _ = p.update(runes("h"))
	if p.offset != 1 {
		t.Fatalf("offset = %d, want 1", p.offset)
	}
}

func TestProgressEmptyView(t *testing.T) {
	p := newProgressModel()
	p.setSize(80, 20)
	if !strings.Contains(p.view(), "No routines") {
		t.Fatal("empty progress view should say so")
	}
}

// ============================================================
// Tracker
// ============================================================

func TestTrackerStartStop(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := newTracker(func() time.Time { return now })

	tr.start("p1", now)
	if !tr.running("p1") || !tr.known("p1") {
		t.Fatal("p1 should be running with a known start")
	}

	now = now.Add(95 * time.Second)
	if got := tr.elapsed("p1"); got != 95*time.Second {
		t.Fatalf("elapsed = %v, want 95s", got)
	}
	if got := tr.stop("p1"); got != 95*time.Second {
		t.Fatalf("stop = %v, want 95s", got)
	}
	if tr.running("p1") || tr.count() != 0 {
		t.Fatal("tracker should be empty after stop")
	}
}

func TestTrackerStopUnknown(t *testing.T) {
	tr := newTracker(nil)
	if got := tr.stop("missing"); got != 0 {
		t.Fatalf("stop on unknown project = %v", got)
	}
}

func TestTrackerReconcile(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := newTracker(func() time.Time { return now })
	tr.start("stale", now)
	tr.start("kept", now)

	tr.reconcile([]project.Project{
		{ID: "stale", Tracking: false},
		{ID: "kept", Tracking: true},
		{ID: "remote", Tracking: true},
	})

	if tr.running("stale") {
		t.Fatal("stale session should be dropped")
	}
	if !tr.known("kept") {
		t.Fatal("kept session should keep its start")
	}
	if !tr.running("remote") || tr.known("remote") {
		t.Fatal("remote session should be running without a known start")
	}
	if tr.elapsed("remote") != 0 {
		t.Fatal("unknown start should report zero elapsed")
	}
}

// ============================================================
// Projects view
// ============================================================

func loadedProjects(t *testing.T, svc *fakeProjects) projectsModel {
	t.Helper()
	p := newProjectsModel(svc, "tok", func() time.Time { return svc.now })
	p.setSize(100, 30)
	p, _ = p.update(runCmd(t, p.refresh()))
	return p
}

func TestProjectsSignedOut(t *testing.T) {
	p := newProjectsModel(newFakeProjects("Dev"), "", nil)
	p.setSize(80, 20)
	if p.refresh() != nil {
		t.Fatal("signed out refresh should be a no-op")
	}
	if !strings.Contains(p.view(), "routinr login") {
		t.Fatal("signed out view should point at login")
	}
}

func TestProjectsRefresh(t *testing.T) {
	svc := newFakeProjects("Dev", "Writing")
	p := loadedProjects(t, svc)
	if !p.loaded || len(p.projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(p.projects))
	}
	if !strings.Contains(p.view(), "Writing") {
		t.Fatal("view should list projects")
	}
}

func TestProjectsRefreshError(t *testing.T) {
	svc := newFakeProjects()
	svc.listErr = errors.New("offline")
	p := newProjectsModel(svc, "tok", nil)
	p, cmd := p.update(runCmd(t, p.refresh()))
	if msg := mustStatus(t, cmd); !msg.isError {
		t.Fatal("list error should surface")
	}
	if p.loaded {
		t.Fatal("model should not be marked loaded")
	}
}

func TestProjectsTrackingFlow(t *testing.T) {
	svc := newFakeProjects("Dev")
	p := loadedProjects(t, svc)

	p, cmd := p.update(runes("s"))
	started, ok := runCmd(t, cmd).(trackingStartedMsg)
	if !ok || started.err != nil {
		t.Fatalf("unexpected start result: %+v", started)
	}
	p, _ = p.update(started)
	if !p.tracker.known("a") {
		t.Fatal("tracker should hold the start time")
	}

	// starting again is refused locally
	_, cmd = p.update(runes("s"))
	if msg := mustStatus(t, cmd); !strings.Contains(msg.text, "already tracking") {
		t.Fatalf("unexpected status: %q", msg.text)
	}

	p, _ = p.update(runes("x"))
	if !p.formActive || p.formType != formStopTracking {
		t.Fatal("stop should ask for a title")
	}
	*p.formTitle = "  fixed login bug "
	p.formActive = false
	p, cmd = p.submit()
	stopped, ok := runCmd(t, cmd).(trackingStoppedMsg)
	if !ok || stopped.err != nil {
		t.Fatalf("unexpected stop result: %+v", stopped)
	}
	if stopped.entry.Title != "fixed login bug" {
		t.Fatalf("title = %q", stopped.entry.Title)
	}
	p, _ = p.update(stopped)
	if p.tracker.running("a") {
		t.Fatal("tracker should forget the session")
	}
}

func TestProjectsStopRequiresTitle(t *testing.T) {
	svc := newFakeProjects("Dev")
	p := loadedProjects(t, svc)
	p.tracker.start("a", svc.now)

	p, _ = p.showStopForm(p.projects[0])
	*p.formTitle = "   "
	_, cmd := p.submit()
	if msg := mustStatus(t, cmd); !msg.isError {
		t.Fatal("empty title should be rejected")
	}
	if len(svc.entries) != 0 {
		t.Fatal("no entry should be logged without a title")
	}
}

func TestProjectsStopWhenIdle(t *testing.T) {
	p := loadedProjects(t, newFakeProjects("Dev"))
	p, cmd := p.update(runes("x"))
	if p.formActive {
		t.Fatal("no title form for an idle project")
	}
	mustStatus(t, cmd)
}

func TestProjectsCreate(t *testing.T) {
	svc := newFakeProjects()
	p := loadedProjects(t, svc)

	p, _ = p.update(runes("n"))
	if !p.formActive || p.formType != formNewProject {
		t.Fatal("new project form should open")
	}
	*p.formName = "Client site"
	*p.formAmount = "120.5"
	*p.formTags = "Web, web, client"

	p, cmd := p.submit()
	saved, ok := runCmd(t, cmd).(projectSavedMsg)
	if !ok || saved.err != nil {
		t.Fatalf("unexpected save result: %+v", saved)
	}
	if len(svc.projects) != 1 {
		t.Fatal("project should be created")
	}
	got := svc.projects[0]
	if got.Amount != 120.5 || len(got.Tags) != 2 || got.Tags[0] != "web" {
		t.Fatalf("unexpected project: %+v", got)
	}
}

func TestProjectsFormInputBadAmount(t *testing.T) {
	p := newProjectsModel(newFakeProjects(), "tok", nil)
	p, _ = p.showProjectForm(formNewProject, project.Project{})
	*p.formName = "X"
	*p.formAmount = "lots"
	if _, err := p.formInput(); err == nil {
		t.Fatal("non-numeric amount should fail")
	}
}

func TestProjectsSearch(t *testing.T) {
	svc := newFakeProjects("Dev", "Writing", "DevOps")
	p := loadedProjects(t, svc)

	p, _ = p.update(runes("/"))
	*p.formSearch = "dev"
	p, cmd := p.submit()
	p, _ = p.update(runCmd(t, cmd))
	if p.search != "dev" || len(p.projects) != 2 {
		t.Fatalf("search %q returned %d projects", p.search, len(p.projects))
	}
}

func TestProjectsArchive(t *testing.T) {
	svc := newFakeProjects("Dev", "Writing")
	p := loadedProjects(t, svc)

	_, cmd := p.update(runes("d"))
	saved := runCmd(t, cmd).(projectSavedMsg)
	if saved.err != nil {
		t.Fatal(saved.err)
	}
	if len(svc.projects) != 1 || svc.projects[0].Name != "Writing" {
		t.Fatalf("unexpected projects after archive: %+v", svc.projects)
	}
}

func TestProjectsHistory(t *testing.T) {
	svc := newFakeProjects("Dev")
	svc.entries = []project.Entry{{ID: "e1", ProjectID: "a", Title: "setup", Date: svc.now, Duration: 600}}
	p := loadedProjects(t, svc)

	p, cmd := p.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !p.viewingHistory {
		t.Fatal("enter should open history")
	}
	p, _ = p.update(runCmd(t, cmd))
	if p.history == nil || p.history.TotalSeconds != 600 {
		t.Fatalf("unexpected history: %+v", p.history)
	}
	if !strings.Contains(p.view(), "setup") {
		t.Fatal("history view should list entries")
	}

	p, _ = p.update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.viewingHistory {
		t.Fatal("esc should leave history")
	}
}

// ============================================================
// App model
// ============================================================

func newTestApp(t *testing.T) App {
	t.Helper()
	app := NewApp(Options{
		Engine:    newTestEngine(t),
		Projects:  newFakeProjects("Dev"),
		Token:     "tok",
		ExportDir: t.TempDir(),
	})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

func TestNewApp(t *testing.T) {
	app := NewApp(Options{Engine: newTestEngine(t)})
	if app.activeView != viewRoutines {
		t.Fatal("default view should be routines")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("help and export picker should be hidden by default")
	}
	if app.exportDir == "" {
		t.Fatal("export dir should default to home")
	}
	if app.View() != "Loading..." {
		t.Fatal("view before first resize should be the loading placeholder")
	}
}

func TestAppTabs(t *testing.T) {
	app := newTestApp(t)

	m, cmd := app.Update(runes("2"))
	app = m.(App)
	if app.activeView != viewProjects {
		t.Fatal("2 should switch to projects")
	}
	if cmd == nil {
		t.Fatal("switching to projects should refresh them")
	}

	m, _ = app.Update(runes("3"))
	app = m.(App)
	if app.activeView != viewProgress {
		t.Fatal("3 should switch to progress")
	}

	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(App).activeView != viewRoutines {
		t.Fatal("tab should wrap around to routines")
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app := newTestApp(t)
	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newTestApp(t)
	m, _ := app.Update(statusMsg{text: "hello", isError: true})
	app = m.(App)
	if app.status != "hello" || !app.statusErr {
		t.Fatal("status should be stored")
	}
	if !strings.Contains(app.renderFooter(), "hello") {
		t.Fatal("footer should show status")
	}
}

func TestAppReloadKeepsLocalRoutines(t *testing.T) {
	app := newTestApp(t)
	r, _ := app.engine.Add("Walk", 0, 5)
	app.engine.Start(r.ID)

	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	app = m.(App)
	m, _ = app.Update(runCmd(t, cmd))
	app = m.(App)
	// signed out, a reload must not drop what was added on this machine
	if len(app.routines.routines) != 1 || !app.routines.routines[0].IsRunning {
		t.Fatalf("routines = %+v, want the running Walk routine", app.routines.routines)
	}
	if app.status != "Routines reloaded" || app.statusErr {
		t.Fatalf("status = %q", app.status)
	}
}

func TestAppRoutineChangesReachProgress(t *testing.T) {
	app := newTestApp(t)
	app.engine.Add("Walk", 0, 5)

	m, cmd := app.Update(routinesChangedMsg{})
	app = m.(App)
	if cmd == nil {
		t.Fatal("change handler should wait for the next change")
	}
	if len(app.routines.routines) != 1 || len(app.progress.routines) != 1 {
		t.Fatal("routines and progress should both see the new routine")
	}
}

func TestAppFooterRunningIndicator(t *testing.T) {
	app := newTestApp(t)
	r, _ := app.engine.Add("Walk", 0, 5)
	app.engine.Start(r.ID)

	m, _ := app.Update(routinesChangedMsg{})
	if !strings.Contains(m.(App).renderFooter(), "1 running") {
		t.Fatal("footer should count running routines")
	}
}

func TestAppExport(t *testing.T) {
	app := newTestApp(t)
	app.engine.Add("Walk", 0, 5)

	m, _ := app.Update(runes("e"))
	app = m.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	if !strings.Contains(app.View(), "Export Routines") {
		t.Fatal("view should show the picker")
	}

	m, _ = app.Update(runes("j"))
	m, cmd := m.(App).Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = m.(App)
	if app.exportPicking {
		t.Fatal("picker should close on enter")
	}

	done, ok := runCmd(t, cmd).(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg")
	}
	if filepath.Ext(done.path) != ".json" || filepath.Dir(done.path) != app.exportDir {
		t.Fatalf("unexpected export path %q", done.path)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
}

func TestAppFormCapturesKeys(t *testing.T) {
	app := newTestApp(t)
	m, _ := app.Update(runes("n"))
	app = m.(App)
	if !app.isFormActive() {
		t.Fatal("n should open the add form")
	}

	// q goes to the form, not to quit
	m, _ = app.Update(runes("q"))
	if !m.(App).isFormActive() {
		t.Fatal("typing in a form must not close it")
	}
}

func TestAppQuit(t *testing.T) {
	app := newTestApp(t)
	_, cmd := app.Update(runes("q"))
	if _, ok := runCmd(t, cmd).(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

// ============================================================
// Keys
// ============================================================

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should not be empty")
	}
	total := 0
	for _, group := range keys.FullHelp() {
		total += len(group)
	}
	if total < 15 {
		t.Fatalf("full help lists %d bindings", total)
	}
}
