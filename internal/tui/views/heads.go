package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/format"
	"github.com/hexcore/hexcore-cli/internal/tui/theme"
	"github.com/hexcore/hexcore-cli/internal/wallet"
)

type headsLoadedMsg struct {
	id    int
	heads []api.Head
	err   error
}

type headInfoMsg struct {
	id   int
	head *api.Head
	err  error
}

// Heads lists heads and shows the detail of one on Enter.
type Heads struct {
	base
	loaded    bool
	heads     []api.Head
	table     table.Model
	err       string
	detail    *api.Head
	detailErr string
	inDetail  bool
}

// NewHeads creates the screen behind menu entry 2.
func NewHeads(id int, deps Deps) *Heads {
	return &Heads{base: newBase(id, deps)}
}

func (s *Heads) Init() tea.Cmd {
	s.startLoading("Loading heads...")
	id, ctx, client := s.id, s.deps.Ctx, s.deps.API
	return func() tea.Msg {
		heads, err := client.GetHeads(ctx)
		return headsLoadedMsg{id: id, heads: heads, err: err}
	}
}

func (s *Heads) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case headsLoadedMsg:
		if msg.id != s.id || s.done {
			return s, nil
		}
		s.stopLoading()
		s.loaded = true
		if msg.err != nil {
			s.err = errMessage(msg.err)
			return s, nil
		}
		s.heads = msg.heads
		s.table = newTable(headColumns(), headRows(msg.heads), s.height()-8)
		return s, nil

	case headInfoMsg:
		if msg.id != s.id || s.done || !s.inDetail {
			return s, nil
		}
		s.stopLoading()
		if msg.err != nil {
			s.detailErr = errMessage(msg.err)
			return s, nil
		}
		s.detail = msg.head
		return s, nil

	case tea.WindowSizeMsg:
		if s.loaded && s.err == "" {
			s.table.SetHeight(max(3, msg.Height-8))
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Heads) handleKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	k := msg.String()

	if s.inDetail {
		if s.loading {
			return s, nil
		}
		s.inDetail, s.detail, s.detailErr = false, nil, ""
		return s, nil
	}

	if !s.loaded {
		return s, nil
	}
	if s.err != "" || len(s.heads) == 0 {
		s.finish()
		return s, nil
	}

	switch {
	case isNav(k):
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return s, cmd
	case k == "enter":
		row := s.table.SelectedRow()
		if row == nil {
			return s, nil
		}
		return s, s.openDetail(row[0])
	}
	s.finish()
	return s, nil
}

func (s *Heads) openDetail(headID string) tea.Cmd {
	s.inDetail = true
	s.startLoading(fmt.Sprintf("Loading head %s...", headID))
	id, ctx, client := s.id, s.deps.Ctx, s.deps.API
	return func() tea.Msg {
		head, err := client.GetHeadInfo(ctx, headID)
		return headInfoMsg{id: id, head: head, err: err}
	}
}

func (s *Heads) View() string {
	width := s.width()
	if !s.loaded {
		return theme.PageHeader("Heads Management", "")
	}
	if s.err != "" {
		return errorPage("Heads Management", s.err, width)
	}
	if s.inDetail {
		return s.detailView(width)
	}

	var b strings.Builder
	b.WriteString(theme.PageHeader("Heads Management", fmt.Sprintf("%d heads", len(s.heads))))
	b.WriteString("\n")
	if len(s.heads) == 0 {
		b.WriteString(theme.InfoBox("No heads", "No heads found. Create one with [1] Create New Head.", boxWidth(width)))
		b.WriteString("\n\n")
		b.WriteString(anyKeyFooter(width))
		return b.String()
	}
	b.WriteString(s.table.View())
	b.WriteString("\n\n")
	b.WriteString(footer(width,
		theme.KeyHint("↑/↓", "move"),
		theme.KeyHint("enter", "details"),
		theme.KeyHint("any", "back"),
	))
	return b.String()
}

func (s *Heads) detailView(width int) string {
	if s.detailErr != "" {
		var b strings.Builder
		b.WriteString(theme.PageHeader("Head Details", ""))
		b.WriteString("\n")
		b.WriteString(theme.ErrorBox("Error", s.detailErr, boxWidth(width)))
		b.WriteString("\n\n")
		b.WriteString(footer(width, theme.TextMuted.Render("Press any key to return to the list...")))
		return b.String()
	}
	if s.detail == nil {
		return theme.PageHeader("Head Details", "")
	}
	return HeadDetail(s.detail, width) + "\n\n" +
		footer(width, theme.TextMuted.Render("Press any key to return to the list..."))
}

// HeadDetail renders a head with its nodes.
func HeadDetail(h *api.Head, width int) string {
	var b strings.Builder
	b.WriteString(theme.PageHeader("Head "+h.ID.String(), h.DescriptionText()))
	b.WriteString("\n")
	b.WriteString(theme.Table([][]string{
		{"Status", theme.StatusBadge(h.Status)},
		{"Nodes", strconv.Itoa(max(h.Nodes, len(h.HydraNodes)))},
		{"Created", format.FormatTime(h.CreatedAt)},
	}, 1))

	if len(h.HydraNodes) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(theme.Divider(min(width, 100)))
	b.WriteString("\n")
	for _, n := range h.HydraNodes {
		rows := [][]string{
			{"Port", strconv.Itoa(n.Port)},
			{"Status", theme.StatusBadge(n.Status)},
		}
		if n.CardanoAccount != nil {
			rows = append(rows, []string{"Account", format.FormatID(n.CardanoAccount.BaseAddress, 16, 8)})
		}
		if n.VKey != "" {
			if hash, err := wallet.VKeyHash(n.VKey); err == nil {
				rows = append(rows, []string{"VKey hash", hash})
			}
		}
		b.WriteString(theme.CardTitleStyle.UnsetMarginBottom().Render("Node " + n.ID.String()))
		b.WriteString("\n")
		b.WriteString(theme.Table(rows, 2))
	}
	return b.String()
}

func headColumns() []table.Column {
	return []table.Column{
		{Title: "Head ID", Width: 10},
		{Title: "Description", Width: 28},
		{Title: "Nodes", Width: 6},
		{Title: "Status", Width: 10},
		{Title: "Created", Width: 18},
	}
}

func headRows(heads []api.Head) []table.Row {
	rows := make([]table.Row, 0, len(heads))
	for _, h := range heads {
		rows = append(rows, table.Row{
			h.ID.String(),
			format.Truncate(h.DescriptionText(), 28),
			strconv.Itoa(h.Nodes),
			h.Status,
			format.FormatDate(h.CreatedAt),
		})
	}
	return rows
}
