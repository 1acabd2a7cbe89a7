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
)

type nodesLoadedMsg struct {
	id    int
	nodes []api.Node
	err   error
}

// Nodes lists worker nodes.
type Nodes struct {
	base
	loaded bool
	nodes  []api.Node
	table  table.Model
	err    string
}

// NewNodes creates the screen behind menu entry 5.
func NewNodes(id int, deps Deps) *Nodes {
	return &Nodes{base: newBase(id, deps)}
}

func (s *Nodes) Init() tea.Cmd {
	s.startLoading("Loading nodes...")
	id, ctx, client := s.id, s.deps.Ctx, s.deps.API
	return func() tea.Msg {
		nodes, err := client.GetNodes(ctx)
		return nodesLoadedMsg{id: id, nodes: nodes, err: err}
	}
}

func (s *Nodes) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case nodesLoadedMsg:
		if msg.id != s.id || s.done {
			return s, nil
		}
		s.stopLoading()
		s.loaded = true
		if msg.err != nil {
			s.err = errMessage(msg.err)
			return s, nil
		}
		s.nodes = msg.nodes
		s.table = newTable(nodeColumns(), nodeRows(msg.nodes), s.height()-8)
		return s, nil

	case tea.WindowSizeMsg:
		if s.loaded && s.err == "" {
			s.table.SetHeight(max(3, msg.Height-8))
		}
		return s, nil

	case tea.KeyMsg:
		if !s.loaded {
			return s, nil
		}
		if s.err == "" && isNav(msg.String()) {
			var cmd tea.Cmd
			s.table, cmd = s.table.Update(msg)
			return s, cmd
		}
		s.finish()
	}
	return s, nil
}

func (s *Nodes) View() string {
	width := s.width()
	if !s.loaded {
		return theme.PageHeader("Nodes List", "")
	}
	if s.err != "" {
		return errorPage("Nodes List", s.err, width)
	}

	active := 0
	for _, n := range s.nodes {
		if n.Status == api.StatusActive {
			active++
		}
	}

	var b strings.Builder
	b.WriteString(theme.PageHeader("Nodes List", fmt.Sprintf("%d nodes, %d active", len(s.nodes), active)))
	b.WriteString("\n")
	b.WriteString(s.table.View())
	b.WriteString("\n\n")
	b.WriteString(footer(width, theme.KeyHint("↑/↓", "scroll"), theme.KeyHint("any", "back")))
	return b.String()
}

func nodeColumns() []table.Column {
	return []table.Column{
		{Title: "Node ID", Width: 8},
		{Title: "Description", Width: 28},
		{Title: "Port", Width: 6},
		{Title: "Account", Width: 24},
		{Title: "Status", Width: 10},
		{Title: "Age", Width: 10},
	}
}

func nodeRows(nodes []api.Node) []table.Row {
	rows := make([]table.Row, 0, len(nodes))
	for _, n := range nodes {
		account := "-"
		if n.CardanoAccount != nil && n.CardanoAccount.BaseAddress != "" {
			account = format.FormatID(n.CardanoAccount.BaseAddress, 12, 9)
		}
		rows = append(rows, table.Row{
			n.ID.String(),
			format.Truncate(n.Description, 28),
			strconv.Itoa(n.Port),
			account,
			n.Status,
			format.AgeOf(n.CreatedAt),
		})
	}
	return rows
}
