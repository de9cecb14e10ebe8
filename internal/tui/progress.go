package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/routinr/internal/duration"
	"github.com/sadopc/routinr/internal/routine"
)

// minBarSlot is the horizontal room one routine needs in the chart.
const minBarSlot = 8

type progressModel struct {
	width  int
	height int

	routines []routine.Timer
	offset   int // first routine shown

	chart barchart.Model
}

func newProgressModel() progressModel {
	return progressModel{chart: barchart.New(60, 12)}
}

func (p *progressModel) setSize(w, h int) {
	p.width = w
	p.height = h
	p.buildChart()
}

func (p progressModel) update(msg tea.Msg) (progressModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if p.offset > 0 {
				p.offset--
				p.buildChart()
			}
		case key.Matches(msg, keys.Right):
			if p.offset+p.pageSize() < len(p.routines) {
				p.offset++
				p.buildChart()
			}
		}
	}
	return p, nil
}

// setRoutines replaces the snapshot and redraws.
func (p *progressModel) setRoutines(timers []routine.Timer) {
	p.routines = timers
	if p.offset > 0 && p.offset >= len(timers) {
		p.offset = max(0, len(timers)-p.pageSize())
	}
	p.buildChart()
}

func (p progressModel) chartSize() (int, int) {
	w := p.width - 8
	if w < 20 {
		w = 20
	}
	h := 12
	if p.height > 30 {
		h = 16
	}
	return w, h
}

func (p progressModel) pageSize() int {
	w, _ := p.chartSize()
	return max(1, w/minBarSlot)
}

func (p progressModel) visible() []routine.Timer {
	if p.offset >= len(p.routines) {
		return nil
	}
	end := min(len(p.routines), p.offset+p.pageSize())
	return p.routines[p.offset:end]
}

func (p *progressModel) buildChart() {
	w, h := p.chartSize()
	p.chart = barchart.New(w, h)
	if bars := progressBars(p.visible()); len(bars) > 0 {
		p.chart.PushAll(bars)
	}
	p.chart.Draw()
}

// progressBars stacks completed minutes under remaining minutes for each
// routine.
func progressBars(timers []routine.Timer) []barchart.BarData {
	doneStyle := lipgloss.NewStyle().Foreground(colorDone)
	leftStyle := lipgloss.NewStyle().Foreground(colorLeft)

	bars := make([]barchart.BarData, 0, len(timers))
	for _, t := range timers {
		bars = append(bars, barchart.BarData{
			Label: truncate(t.Name, minBarSlot-1),
			Values: []barchart.BarValue{
				{Name: "Completed", Value: minutes(t.DoneSeconds()), Style: doneStyle},
				{Name: "Remaining", Value: minutes(t.RemainingSeconds), Style: leftStyle},
			},
		})
	}
	return bars
}

func minutes(secs int64) float64 {
	return float64(secs) / 60
}

func (p progressModel) view() string {
	w := p.width - 4

	header := titleStyle.Render("Progress")
	if len(p.routines) > p.pageSize() {
		end := min(len(p.routines), p.offset+p.pageSize())
		header = lipgloss.JoinHorizontal(lipgloss.Bottom, header, "  ",
			mutedStyle.Render(fmt.Sprintf("%d-%d of %d", p.offset+1, end, len(p.routines))))
	}

	if len(p.routines) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("No routines to chart yet"),
		))
	}

	legend := "  " + lipgloss.NewStyle().Foreground(colorDone).Render("█") + " Completed  " +
		lipgloss.NewStyle().Foreground(colorLeft).Render("█") + " Remaining  " +
		mutedStyle.Render("(minutes)")

	nav := mutedStyle.Render("  ←/→: scroll")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", p.chart.View(), "", legend, "", p.renderTable(w), "", nav,
		),
	)
}

func (p progressModel) renderTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %10s %10s %6s", "Routine", "Done", "Left", "")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(0, min(w-6, 50)))))

	for _, t := range p.visible() {
		pct := 0.0
		if t.OriginalSeconds > 0 {
			pct = float64(t.DoneSeconds()) / float64(t.OriginalSeconds) * 100
		}
		rows = append(rows, fmt.Sprintf("  %-20s %10s %10s %5.0f%%",
			truncate(t.Name, 20), duration.Format(t.DoneSeconds()), duration.FormatPrecise(t.RemainingSeconds), pct))
	}
	return strings.Join(rows, "\n")
}
