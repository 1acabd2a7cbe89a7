package views

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/tui/theme"
)

type statusLoadedMsg struct {
	id     int
	status api.SystemStatus
	err    error
}

// Status shows the aggregated system status card.
type Status struct {
	base
	loaded bool
	status api.SystemStatus
	err    string
}

// NewStatus creates the screen behind menu entry 6.
func NewStatus(id int, deps Deps) *Status {
	return &Status{base: newBase(id, deps)}
}

func (s *Status) Init() tea.Cmd {
	s.startLoading("Loading system status...")
	id, ctx, client := s.id, s.deps.Ctx, s.deps.API
	return func() tea.Msg {
		st, err := client.GetSystemStatus(ctx)
		return statusLoadedMsg{id: id, status: st, err: err}
	}
}

func (s *Status) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statusLoadedMsg:
		if msg.id != s.id || s.done {
			return s, nil
		}
		s.stopLoading()
		s.loaded = true
		s.status = msg.status
		s.err = errMessage(msg.err)
	case tea.KeyMsg:
		if s.loaded {
			s.finish()
		}
	}
	return s, nil
}

func (s *Status) View() string {
	width := s.width()
	if !s.loaded {
		return theme.PageHeader("System Status", "")
	}
	if s.err != "" {
		return errorPage("System Status", s.err, width)
	}

	health := theme.TextDanger.Render("✗ Error")
	if s.status.Healthy() {
		health = theme.TextSuccess.Render("✓ Healthy")
	}
	body := theme.Table([][]string{
		{"Running Nodes:", strconv.Itoa(s.status.RunningNodes)},
		{"Running Heads:", strconv.Itoa(s.status.RunningHeads)},
		{"Total Heads:", strconv.Itoa(s.status.TotalHeads)},
		{"", ""},
		{"Status:", health},
	}, 0)

	card := theme.Card("📊 System Status", body, 40)
	_, height := s.deps.Surface.Size()
	if height > 4 {
		card = lipgloss.Place(width, height-2, lipgloss.Center, lipgloss.Center, card)
	}
	return card + "\n" + anyKeyFooter(width)
}
