package views

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/blockfrost"
	"github.com/hexcore/hexcore-cli/internal/format"
	"github.com/hexcore/hexcore-cli/internal/tui/theme"
	"github.com/hexcore/hexcore-cli/internal/wallet"
)

// NoUTxOSourceMessage is shown when UTxOs are requested without a Blockfrost key.
const NoUTxOSourceMessage = "UTxO lookup needs a Blockfrost API key (start with --blockfrost-api-key)"

type accountsPhase int

const (
	accountsLoading accountsPhase = iota
	accountsTable
	accountsAdding
	accountsSubmitting
	accountsFetching
	accountsFailed
)

type accountsLoadedMsg struct {
	id       int
	accounts []api.Account
	err      error
}

type accountAddedMsg struct {
	id      int
	account *api.Account
	err     error
}

type utxoFetchedMsg struct {
	id        int
	accountID api.ID
	lovelace  uint64
	count     int
	err       error
}

// Accounts lists wallet accounts with their balances and registers new ones.
type Accounts struct {
	base
	phase    accountsPhase
	accounts []api.Account
	table    table.Model
	err      string

	input    textinput.Model
	inputErr string

	progress progress.Model
	pending  int
	total    int
	failed   int
	lovelace map[api.ID]uint64

	notice string
}

// NewAccounts creates the screen behind menu entry 4.
func NewAccounts(id int, deps Deps) *Accounts {
	ti := textinput.New()
	ti.Placeholder = "word1 word2 ... word24"
	ti.CharLimit = 512
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'

	return &Accounts{
		base:     newBase(id, deps),
		input:    ti,
		progress: progress.New(progress.WithDefaultGradient()),
		lovelace: make(map[api.ID]uint64),
	}
}

func (s *Accounts) Init() tea.Cmd {
	return s.load()
}

func (s *Accounts) load() tea.Cmd {
	s.phase = accountsLoading
	s.startLoading("Loading accounts...")
	id, ctx, client := s.id, s.deps.Ctx, s.deps.API
	return func() tea.Msg {
		accounts, err := client.GetAccounts(ctx)
		return accountsLoadedMsg{id: id, accounts: accounts, err: err}
	}
}

// CapturingText reports whether the mnemonic input has focus.
func (s *Accounts) CapturingText() bool {
	return s.phase == accountsAdding
}

func (s *Accounts) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		if msg.id != s.id || s.done {
			return s, nil
		}
		s.stopLoading()
		if msg.err != nil {
			s.phase, s.err = accountsFailed, errMessage(msg.err)
			return s, nil
		}
		s.accounts = SortAccounts(msg.accounts)
		s.table = newTable(accountColumns(), s.rows(), s.height()-10)
		s.phase = accountsTable
		return s, nil

	case accountAddedMsg:
		if msg.id != s.id || s.done {
			return s, nil
		}
		s.stopLoading()
		if msg.err != nil {
			s.phase = accountsAdding
			s.inputErr = errMessage(msg.err)
			return s, s.input.Focus()
		}
		s.input.Reset()
		s.notice = fmt.Sprintf("Account %s added", msg.account.ID)
		return s, s.load()

	case utxoFetchedMsg:
		if msg.id != s.id || s.done || s.phase != accountsFetching {
			return s, nil
		}
		s.pending--
		if msg.err != nil {
			s.failed++
			s.notice = fmt.Sprintf("Failed to fetch UTxO for account %s: %v", msg.accountID, msg.err)
		} else {
			s.lovelace[msg.accountID] = msg.lovelace
			s.notice = fmt.Sprintf("Fetched UTxO for account %s (%d UTxOs, %s ADA)", msg.accountID, msg.count, format.ADA(msg.lovelace))
		}
		s.table.SetRows(s.rows())
		if s.pending == 0 {
			s.phase = accountsTable
			s.notice = fmt.Sprintf("Fetched UTxOs for %d accounts (%d failed)", s.total, s.failed)
		}
		return s, nil

	case tea.WindowSizeMsg:
		if s.phase != accountsLoading && s.phase != accountsFailed {
			s.table.SetHeight(max(3, msg.Height-10))
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == accountsAdding {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Accounts) handleKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	k := msg.String()
	switch s.phase {
	case accountsLoading, accountsSubmitting, accountsFetching:
		return s, nil
	case accountsFailed:
		s.finish()
		return s, nil
	case accountsAdding:
		return s.handleInputKey(msg)
	}

	switch {
	case isNav(k):
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return s, cmd
	case k == "u":
		return s, s.fetchUTxOs()
	case k == "a":
		s.phase = accountsAdding
		s.inputErr = ""
		s.notice = ""
		return s, s.input.Focus()
	case k == "c":
		s.copySelected()
		return s, nil
	}
	s.finish()
	return s, nil
}

func (s *Accounts) handleInputKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.input.Blur()
		s.input.Reset()
		s.inputErr = ""
		s.phase = accountsTable
		return s, nil
	case "enter":
		phrase := s.input.Value()
		if err := wallet.ValidateMnemonic(phrase); err != nil {
			s.inputErr = "Invalid mnemonic: must be 12, 15, 18, 21 or 24 valid BIP-39 words"
			return s, nil
		}
		s.input.Blur()
		s.inputErr = ""
		s.phase = accountsSubmitting
		s.startLoading("Adding account...")

		mnemonic := wallet.NormalizeMnemonic(phrase)
		id, ctx, client := s.id, s.deps.Ctx, s.deps.API
		return s, func() tea.Msg {
			acc, err := client.AddAccount(ctx, mnemonic)
			return accountAddedMsg{id: id, account: acc, err: err}
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// fetchUTxOs starts one lookup per account; each completion advances the progress bar.
func (s *Accounts) fetchUTxOs() tea.Cmd {
	if s.deps.UTxO == nil {
		s.notice = NoUTxOSourceMessage
		return nil
	}
	if len(s.accounts) == 0 {
		return nil
	}

	s.phase = accountsFetching
	s.total = len(s.accounts)
	s.pending = s.total
	s.failed = 0
	s.notice = "Fetching UTxO from blockchain..."

	cmds := make([]tea.Cmd, 0, len(s.accounts))
	for _, acc := range s.accounts {
		cmds = append(cmds, fetchUTxO(s.deps.Ctx, s.deps.UTxO, s.id, acc))
	}
	return tea.Batch(cmds...)
}

func fetchUTxO(ctx context.Context, src UTxOSource, id int, acc api.Account) tea.Cmd {
	return func() tea.Msg {
		address := UTxOAddress(acc)
		if _, err := wallet.ParseAddress(address); err != nil {
			return utxoFetchedMsg{id: id, accountID: acc.ID, err: err}
		}
		utxos, err := src.AddressUTxOs(ctx, address)
		if err != nil {
			return utxoFetchedMsg{id: id, accountID: acc.ID, err: err}
		}
		return utxoFetchedMsg{id: id, accountID: acc.ID, lovelace: blockfrost.Lovelace(utxos), count: len(utxos)}
	}
}

// UTxOAddress is the address whose balance is shown for an account: the
// pointer address when present, else the base address.
func UTxOAddress(acc api.Account) string {
	if acc.PointerAddress != "" {
		return acc.PointerAddress
	}
	return acc.BaseAddress
}

func (s *Accounts) copySelected() {
	i := s.table.Cursor()
	if i < 0 || i >= len(s.accounts) {
		return
	}
	addr := s.accounts[i].BaseAddress
	if err := s.deps.Clipboard(addr); err != nil {
		s.notice = "Copy failed: " + err.Error()
		return
	}
	s.notice = fmt.Sprintf("Copied %s to clipboard", format.FormatID(addr, 12, 8))
}

// SortAccounts orders accounts by id, newest (highest) first.
func SortAccounts(accounts []api.Account) []api.Account {
	out := append([]api.Account(nil), accounts...)
	sort.SliceStable(out, func(i, j int) bool {
		a, errA := out[i].ID.Int()
		b, errB := out[j].ID.Int()
		if errA == nil && errB == nil {
			return a > b
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func accountColumns() []table.Column {
	return []table.Column{
		{Title: "Account ID", Width: 10},
		{Title: "Base Address", Width: 19},
		{Title: "Pointer Address", Width: 34},
		{Title: "ADA", Width: 18},
		{Title: "Created", Width: 16},
	}
}

func (s *Accounts) rows() []table.Row {
	rows := make([]table.Row, 0, len(s.accounts))
	for _, a := range s.accounts {
		ada := "-"
		if l, ok := s.lovelace[a.ID]; ok {
			ada = format.ADA(l)
		}
		rows = append(rows, table.Row{
			a.ID.String(),
			format.FormatID(a.BaseAddress, 8, 8),
			format.FormatID(a.PointerAddress, 20, 11),
			ada,
			format.FormatDate(a.CreatedAt),
		})
	}
	return rows
}

func (s *Accounts) View() string {
	width := s.width()
	switch s.phase {
	case accountsFailed:
		return errorPage("Wallet Accounts", s.err, width)
	case accountsLoading:
		if s.accounts == nil {
			return theme.PageHeader("Wallet Accounts", "")
		}
	}

	var b strings.Builder
	b.WriteString(theme.PageHeader("Wallet Accounts", fmt.Sprintf("%d accounts", len(s.accounts))))
	b.WriteString("\n")
	b.WriteString(s.table.View())
	b.WriteString("\n\n")

	switch s.phase {
	case accountsFetching:
		done := s.total - s.pending
		pct := 0.0
		if s.total > 0 {
			pct = float64(done) / float64(s.total)
		}
		s.progress.Width = min(width-4, 60)
		b.WriteString(" " + s.progress.ViewAs(pct))
		b.WriteString("\n")
	case accountsAdding, accountsSubmitting:
		b.WriteString(theme.TextBright.Render(" Mnemonic phrase: "))
		b.WriteString(s.input.View())
		b.WriteString("\n")
		if s.inputErr != "" {
			b.WriteString(" " + theme.TextDanger.Render("✗ "+s.inputErr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(footer(width, theme.KeyHint("enter", "add"), theme.KeyHint("esc", "cancel")))
		return b.String()
	}

	if s.notice != "" {
		b.WriteString(" " + theme.TextInfo.Render(s.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footer(width,
		theme.KeyHint("u", "fetch UTxO"),
		theme.KeyHint("a", "add account"),
		theme.KeyHint("c", "copy address"),
		theme.KeyHint("any", "back"),
	))
	return b.String()
}
