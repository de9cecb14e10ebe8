package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/routinr/internal/project"
)

// viewState represents the currently active view.
type viewState int

const (
	viewRoutines viewState = iota
	viewProjects
	viewProgress
)

var viewNames = []string{"Routines", "Projects", "Progress"}

// remoteTimeout bounds every network call started from the UI.
const remoteTimeout = 15 * time.Second

// ProjectService is the project API the dashboard talks to. remote.Client
// implements it.
type ProjectService interface {
	ListProjects(ctx context.Context, token string, opts project.ListOptions) (*project.Page, error)
	CreateProject(ctx context.Context, token string, in project.Input) (*project.Project, error)
	UpdateProject(ctx context.Context, token, id string, in project.Input) (*project.Project, error)
	ArchiveProject(ctx context.Context, token, id string) error
	StartTracking(ctx context.Context, token, id string) (*project.Entry, error)
	StopTracking(ctx context.Context, token, id, title string) (*project.Entry, error)
	ProjectHistory(ctx context.Context, token, id string, limit int) (*project.History, error)
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type routinesLoadedMsg struct {
	err error
}

type routinesChangedMsg struct{}

type exportDoneMsg struct {
	path string
}

// SyncErrorMsg turns a background sync failure into a status line message.
// Send it with tea.Program.Send.
func SyncErrorMsg(err error) tea.Msg {
	return statusMsg{text: fmt.Sprintf("Sync failed: %v", err), isError: true}
}

func errorStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func infoStatus(text string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text}
	}
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
