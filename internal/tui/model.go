package tui

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/tui/theme"
	"github.com/hexcore/hexcore-cli/internal/tui/views"
)

// View names
type viewName string

const (
	viewMenu       viewName = "menu"
	viewCreateHead viewName = "create-head"
	viewHeads      viewName = "heads"
	viewStopHead   viewName = "stop-head"
	viewAccounts   viewName = "accounts"
	viewNodes      viewName = "nodes"
	viewStatus     viewName = "status"
)

// selectionViews maps a menu entry to the view it opens.
var selectionViews = [...]viewName{
	1: viewCreateHead,
	2: viewHeads,
	3: viewStopHead,
	4: viewAccounts,
	5: viewNodes,
	6: viewStatus,
}

const (
	DefaultTitle           = "hexcore-cli - Hydra Node Manager"
	DefaultRefreshInterval = 30 * time.Second
	DefaultPollInterval    = 5 * time.Second
	DefaultRetryDelay      = 2 * time.Second
)

// Options configures the dashboard.
type Options struct {
	Title string
	// Info is shown on the right of the header, usually the API URL.
	Info string

	RefreshInterval time.Duration
	PollInterval    time.Duration
	RetryDelay      time.Duration

	// UTxO enables balance lookups on the accounts screen.
	UTxO      views.UTxOSource
	Clipboard func(string) error
	Logger    *slog.Logger

	// Surface defaults to a terminal Display.
	Surface Surface
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Surface == nil {
		o.Surface = NewDisplay()
	}
	return o
}

// Model is the dashboard session. It is only ever mutated by Update.
type Model struct {
	ctx    context.Context
	client views.API
	opts   Options
	logger *slog.Logger

	surface Surface
	spinner spinner.Model
	keys    keyMap
	help    help.Model
	newMenu menuFactory
	now     func() time.Time

	view      viewName
	screen    views.Screen
	screenSeq int
	selection int

	menu       MenuControls
	status     api.SystemStatus
	lastUpdate time.Time

	// suppress swallows the next bound menu key after a screen closes.
	suppress bool
	// renderForeground marks the render in flight as one the user waits on.
	rendering        bool
	renderForeground bool
	// pending is a menu entry chosen while a render was in flight.
	pending int
	polling bool
	stopped bool
	fatal   error
}

// NewModel creates the dashboard session.
func NewModel(ctx context.Context, client views.API, opts Options) Model {
	opts = opts.withDefaults()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.TextAction

	h := help.New()
	h.ShortSeparator = "  "

	return Model{
		ctx:       ctx,
		client:    client,
		opts:      opts,
		logger:    opts.Logger,
		surface:   opts.Surface,
		spinner:   s,
		keys:      defaultKeyMap(),
		help:      h,
		newMenu:   NewMenu,
		now:       time.Now,
		view:      viewMenu,
		selection: minSelection,
	}
}

// Init starts the spinner and the session.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return startMsg{} },
	)
}

// Err returns the error that ended the session, if any.
func (m Model) Err() error { return m.fatal }
