package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/format"
	"github.com/hexcore/hexcore-cli/internal/tui/theme"
)

// NoAccountsMessage is shown when a head cannot be created for lack of accounts.
const NoAccountsMessage = "No accounts available. Go to [4] Wallet Accounts"

type createPhase int

const (
	createLoading createPhase = iota
	createSelect
	createSubmitting
	createResult
	createFailed
)

type createAccountsMsg struct {
	id       int
	accounts []api.Account
	err      error
}

type headCreatedMsg struct {
	id   int
	head *api.Head
	err  error
}

// CreateHead lets the operator pick funding accounts and create a head.
type CreateHead struct {
	base
	phase    createPhase
	accounts []api.Account
	cursor   int
	selected map[int]bool
	head     *api.Head
	err      string
}

// NewCreateHead creates the screen behind menu entry 1.
func NewCreateHead(id int, deps Deps) *CreateHead {
	return &CreateHead{base: newBase(id, deps), selected: make(map[int]bool)}
}

func (s *CreateHead) Init() tea.Cmd {
	s.startLoading("Loading accounts...")
	id, ctx, client := s.id, s.deps.Ctx, s.deps.API
	return func() tea.Msg {
		accounts, err := client.GetAccounts(ctx)
		return createAccountsMsg{id: id, accounts: accounts, err: err}
	}
}

func (s *CreateHead) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case createAccountsMsg:
		if msg.id != s.id || s.done {
			return s, nil
		}
		s.stopLoading()
		switch {
		case msg.err != nil:
			s.phase, s.err = createFailed, errMessage(msg.err)
		case len(msg.accounts) == 0:
			s.phase, s.err = createFailed, NoAccountsMessage
		default:
			s.accounts = msg.accounts
			s.phase = createSelect
		}
		return s, nil

	case headCreatedMsg:
		if msg.id != s.id || s.done {
			return s, nil
		}
		s.stopLoading()
		if msg.err != nil {
			s.phase, s.err = createFailed, errMessage(msg.err)
			return s, nil
		}
		s.head = msg.head
		s.phase = createResult
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *CreateHead) handleKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	k := msg.String()
	switch s.phase {
	case createLoading, createSubmitting:
		if k == "backspace" {
			s.finish()
		}
	case createSelect:
		switch {
		case k == "up" || k == "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case k == "down" || k == "j":
			if s.cursor < len(s.accounts)-1 {
				s.cursor++
			}
		case isSpace(k):
			s.selected[s.cursor] = !s.selected[s.cursor]
		case k == "enter":
			return s, s.submit()
		case k == "backspace":
			s.finish()
		}
	default:
		s.finish()
	}
	return s, nil
}

// SelectedIDs returns the chosen account ids in display order, falling
// back to the account under the cursor.
func (s *CreateHead) SelectedIDs() []string {
	var ids []string
	for i, acc := range s.accounts {
		if s.selected[i] {
			ids = append(ids, acc.ID.String())
		}
	}
	if len(ids) == 0 && s.cursor < len(s.accounts) {
		ids = []string{s.accounts[s.cursor].ID.String()}
	}
	return ids
}

func (s *CreateHead) submit() tea.Cmd {
	ids := s.SelectedIDs()
	s.phase = createSubmitting
	s.startLoading("Creating head...")
	s.deps.Logger.Info("creating head", "accounts", ids)

	id, ctx, client := s.id, s.deps.Ctx, s.deps.API
	return func() tea.Msg {
		head, err := client.CreateHead(ctx, ids)
		return headCreatedMsg{id: id, head: head, err: err}
	}
}

func (s *CreateHead) View() string {
	width := s.width()
	switch s.phase {
	case createFailed:
		return errorPage("Create New Head", s.err, width)
	case createResult:
		var b strings.Builder
		b.WriteString(theme.PageHeader("Create New Head", ""))
		b.WriteString("\n")
		body := theme.Table([][]string{
			{"Head ID", s.head.ID.String()},
			{"Status", s.head.Status},
			{"Created", format.FormatTime(s.head.CreatedAt)},
		}, 0)
		b.WriteString(theme.SuccessBox("Head created", body, boxWidth(width)))
		b.WriteString("\n\n")
		b.WriteString(anyKeyFooter(width))
		return b.String()
	case createSelect, createSubmitting:
		return s.selectView(width)
	}
	return theme.PageHeader("Create New Head", "")
}

func (s *CreateHead) selectView(width int) string {
	var b strings.Builder
	b.WriteString(theme.PageHeader("Create New Head", "select funding accounts"))
	b.WriteString("\n")

	for i, acc := range s.accounts {
		check := "[ ]"
		if s.selected[i] {
			check = theme.TextSuccess.Render("[x]")
		}
		line := fmt.Sprintf("%s %-6s %s", check, acc.ID, format.FormatID(acc.BaseAddress, 12, 8))
		if i == s.cursor {
			b.WriteString(theme.MenuSelectedStyle.Render(line))
		} else {
			b.WriteString(theme.MenuItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.TextMuted.Render(fmt.Sprintf("%d selected; the first selected account funds the head", len(s.SelectedIDs()))))
	b.WriteString("\n\n")
	b.WriteString(footer(width,
		theme.KeyHint("space", "select"),
		theme.KeyHint("enter", "confirm"),
		theme.KeyHint("backspace", "cancel"),
	))
	return b.String()
}
