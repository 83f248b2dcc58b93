package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/programme-lv/contest/timeline"
)

type tickMsg time.Time

type watchModel struct {
	tl       timeline.Timeline
	clock    func() time.Time
	phase    timeline.Phase
	progress progress.Model
}

func newWatchModel(tl timeline.Timeline, clock func() time.Time) watchModel {
	return watchModel{
		tl:       tl,
		clock:    clock,
		phase:    tl.Phase(clock()),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) Init() tea.Cmd {
	return tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.phase = m.tl.Phase(m.clock())
		return m, tick()
	}
	return m, nil
}

func (m watchModel) View() string {
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s\n",
		renderIntervals(m.phase),
		m.progress.ViewAs(m.phase.ProgressPercent/100),
		renderStatus(m.phase),
		labelStyle.Render("press q to quit"))
}
