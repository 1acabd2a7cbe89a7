// Package views implements the dashboard's child screens. A screen owns
// keyboard input from the moment it is opened until Done reports true.
// Screens never return errors to the caller: failures are rendered in
// place and acknowledged with a keypress.
package views

import (
	"context"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/blockfrost"
	"github.com/hexcore/hexcore-cli/internal/tui/theme"
)

// API is the part of the cluster client the screens consume.
type API interface {
	GetHeads(ctx context.Context) ([]api.Head, error)
	GetHeadInfo(ctx context.Context, headID string) (*api.Head, error)
	CreateHead(ctx context.Context, accountIDs []string) (*api.Head, error)
	StopHead(ctx context.Context, headID string) error
	GetAccounts(ctx context.Context) ([]api.Account, error)
	AddAccount(ctx context.Context, mnemonic string) (*api.Account, error)
	GetNodes(ctx context.Context) ([]api.Node, error)
	GetSystemStatus(ctx context.Context) (api.SystemStatus, error)
}

// UTxOSource looks up the unspent outputs at an address.
type UTxOSource interface {
	AddressUTxOs(ctx context.Context, address string) ([]blockfrost.UTxO, error)
}

// Surface is the part of the shared display surface a screen may touch.
// The owner draws the loading indicator over whatever the active screen
// renders.
type Surface interface {
	ShowLoading(text string)
	HideLoading()
	Size() (width, height int)
}

// Screen is a child screen.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	Done() bool
}

// TextCapturer is implemented by screens that can be editing free text,
// during which q and esc belong to the screen.
type TextCapturer interface {
	CapturingText() bool
}

// Deps are the collaborators handed to every screen.
type Deps struct {
	Ctx     context.Context
	API     API
	Surface Surface
	// UTxO is nil when no Blockfrost key was configured.
	UTxO UTxOSource
	// Clipboard copies text; defaults to the system clipboard.
	Clipboard func(string) error
	Logger    *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Ctx == nil {
		d.Ctx = context.Background()
	}
	if d.Clipboard == nil {
		d.Clipboard = clipboard.WriteAll
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// base carries what every screen needs: identity, deps and the loading state.
type base struct {
	id      int
	deps    Deps
	loading bool
	done    bool
}

func newBase(id int, deps Deps) base {
	return base{id: id, deps: deps.withDefaults()}
}

func (b *base) startLoading(text string) {
	b.loading = true
	b.deps.Surface.ShowLoading(text)
}

func (b *base) stopLoading() {
	if b.loading {
		b.loading = false
		b.deps.Surface.HideLoading()
	}
}

// finish marks the screen done, releasing the loading indicator if held.
func (b *base) finish() {
	b.stopLoading()
	b.done = true
}

func (b base) Done() bool { return b.done }

func (b base) width() int {
	w, _ := b.deps.Surface.Size()
	if w <= 0 {
		return 80
	}
	return w
}

func (b base) height() int {
	_, h := b.deps.Surface.Size()
	if h <= 0 {
		return 24
	}
	return h
}

// isNav reports keys forwarded to tables for cursor movement.
func isNav(k string) bool {
	switch k {
	case "up", "k", "down", "j", "pgup", "pgdown", "home", "end", "g", "G":
		return true
	}
	return false
}

func isSpace(k string) bool { return k == " " || k == "space" }

func newTable(cols []table.Column, rows []table.Row, height int) table.Model {
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Foreground(theme.ColorAccent).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(theme.ColorBright).
		Background(theme.ColorBrand).
		Bold(false)
	t.SetStyles(s)
	return t
}

func footer(width int, hints ...string) string {
	return theme.RenderStatusBar("", theme.KeyHints(hints...), "", width)
}

func anyKeyFooter(width int) string {
	return footer(width, theme.TextMuted.Render("Press any key to return to menu..."))
}

// errorPage renders an error that the next keypress acknowledges.
func errorPage(title, message string, width int) string {
	var b strings.Builder
	b.WriteString(theme.PageHeader(title, ""))
	b.WriteString("\n")
	b.WriteString(theme.ErrorBox("Error", message, boxWidth(width)))
	b.WriteString("\n\n")
	b.WriteString(anyKeyFooter(width))
	return b.String()
}

func boxWidth(width int) int {
	w := width - 4
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
