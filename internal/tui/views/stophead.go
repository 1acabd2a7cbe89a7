package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/format"
	"github.com/hexcore/hexcore-cli/internal/tui/theme"
)

// NoHeadsMessage is shown when there is nothing to stop.
const NoHeadsMessage = "No heads available"

type stopPhase int

const (
	stopLoading stopPhase = iota
	stopSelect
	stopConfirm
	stopSubmitting
	stopResult
	stopFailed
)

type stopHeadsMsg struct {
	id    int
	heads []api.Head
	err   error
}

type headStoppedMsg struct {
	id     int
	headID string
	err    error
}

// StopHead selects a head and stops it after confirmation.
type StopHead struct {
	base
	phase   stopPhase
	heads   []api.Head
	cursor  int
	stopped string
	err     string
}

// NewStopHead creates the screen behind menu entry 3.
func NewStopHead(id int, deps Deps) *StopHead {
	return &StopHead{base: newBase(id, deps)}
}

func (s *StopHead) Init() tea.Cmd {
	s.startLoading("Loading heads...")
	id, ctx, client := s.id, s.deps.Ctx, s.deps.API
	return func() tea.Msg {
		heads, err := client.GetHeads(ctx)
		return stopHeadsMsg{id: id, heads: heads, err: err}
	}
}

func (s *StopHead) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case stopHeadsMsg:
		if msg.id != s.id || s.done {
			return s, nil
		}
		s.stopLoading()
		switch {
		case msg.err != nil:
			s.phase, s.err = stopFailed, errMessage(msg.err)
		case len(msg.heads) == 0:
			s.phase, s.err = stopFailed, NoHeadsMessage
		default:
			s.heads = msg.heads
			s.phase = stopSelect
		}
		return s, nil

	case headStoppedMsg:
		if msg.id != s.id || s.done {
			return s, nil
		}
		s.stopLoading()
		if msg.err != nil {
			s.phase, s.err = stopFailed, errMessage(msg.err)
			return s, nil
		}
		s.stopped = msg.headID
		s.phase = stopResult
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg.String())
	}
	return s, nil
}

func (s *StopHead) handleKey(k string) (Screen, tea.Cmd) {
	switch s.phase {
	case stopLoading, stopSubmitting:
	case stopSelect:
		switch k {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.heads)-1 {
				s.cursor++
			}
		case "enter":
			s.phase = stopConfirm
		case "backspace":
			s.finish()
		}
	case stopConfirm:
		if k == "y" || k == "Y" {
			return s, s.submit()
		}
		s.phase = stopSelect
	default:
		s.finish()
	}
	return s, nil
}

func (s *StopHead) submit() tea.Cmd {
	headID := s.heads[s.cursor].ID.String()
	s.phase = stopSubmitting
	s.startLoading(fmt.Sprintf("Stopping head %s...", headID))
	s.deps.Logger.Info("stopping head", "head", headID)

	id, ctx, client := s.id, s.deps.Ctx, s.deps.API
	return func() tea.Msg {
		err := client.StopHead(ctx, headID)
		return headStoppedMsg{id: id, headID: headID, err: err}
	}
}

func (s *StopHead) View() string {
	width := s.width()
	switch s.phase {
	case stopFailed:
		return errorPage("Stop Head", s.err, width)
	case stopResult:
		return theme.PageHeader("Stop Head", "") + "\n" +
			theme.SuccessBox("Head stopped", fmt.Sprintf("Head %s is stopping.", s.stopped), boxWidth(width)) +
			"\n\n" + anyKeyFooter(width)
	case stopLoading:
		return theme.PageHeader("Stop Head", "")
	}

	var b strings.Builder
	b.WriteString(theme.PageHeader("Stop Head", "select a head"))
	b.WriteString("\n")
	for i, h := range s.heads {
		line := fmt.Sprintf("%-8s %-28s %s", h.ID, format.Truncate(h.DescriptionText(), 28), theme.StatusBadge(h.Status))
		if i == s.cursor {
			b.WriteString(theme.MenuSelectedStyle.Render(line))
		} else {
			b.WriteString(theme.MenuItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.phase == stopConfirm {
		b.WriteString(theme.WarningBox("Confirm", fmt.Sprintf("Stop head %s? [y/N]", s.heads[s.cursor].ID), boxWidth(width)))
		b.WriteString("\n\n")
		b.WriteString(footer(width, theme.KeyHint("y", "stop"), theme.KeyHint("any", "cancel")))
		return b.String()
	}

	b.WriteString(footer(width,
		theme.KeyHint("↑/↓", "move"),
		theme.KeyHint("enter", "stop"),
		theme.KeyHint("backspace", "cancel"),
	))
	return b.String()
}
