package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/tui/views"
)

// Messages
type (
	startMsg struct{}

	menuRenderMsg struct {
		status api.SystemStatus
		err    error
	}

	refreshTickMsg struct{}
	pollTickMsg    struct{}

	pollResultMsg struct {
		status api.SystemStatus
		err    error
	}

	retryMsg struct{}
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeypress(msg)

	case tea.WindowSizeMsg:
		m.surface.SetSize(msg.Width, msg.Height)
		m.help.Width = msg.Width
		return m.forward(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startMsg:
		var cmd tea.Cmd
		m, cmd = m.renderMenu(false)
		return m, tea.Batch(cmd, m.refreshTick(), m.pollTick())

	case menuRenderMsg:
		return m.handleMenuRender(msg)

	case retryMsg:
		m.surface.HideError()
		if m.stopped || m.view != viewMenu {
			return m, nil
		}
		return m.renderMenu(false)

	case refreshTickMsg:
		if m.stopped {
			return m, nil
		}
		next := m.refreshTick()
		if m.view != viewMenu || m.menu == nil {
			return m, next
		}
		var cmd tea.Cmd
		m, cmd = m.renderMenu(true)
		return m, tea.Batch(cmd, next)

	case pollTickMsg:
		if m.stopped {
			return m, nil
		}
		next := m.pollTick()
		if m.view != viewMenu || m.menu == nil || m.polling {
			return m, next
		}
		m.polling = true
		return m, tea.Batch(m.fetchPoll(), next)

	case pollResultMsg:
		m.polling = false
		if msg.err != nil {
			m.logger.Debug("status poll failed", "error", msg.err)
			return m, nil
		}
		if m.stopped || m.view != viewMenu || m.menu == nil {
			return m, nil
		}
		if !msg.status.Equal(m.status) {
			now := m.now()
			m.status = msg.status
			m.lastUpdate = now
			m.menu.UpdateStatus(msg.status, now)
		}
		return m, nil
	}

	return m.forward(msg)
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	if m.view != viewMenu {
		if key.Matches(msg, m.keys.Quit) && !m.capturingText() {
			return m.quit()
		}
		return m.forward(msg)
	}

	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}

	bound := key.Matches(msg, m.keys.Up) ||
		key.Matches(msg, m.keys.Down) ||
		key.Matches(msg, m.keys.Select) ||
		key.Matches(msg, m.keys.Jump)
	if !bound {
		return m, nil
	}
	if m.suppress {
		m.suppress = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.setSelection(m.selection - 1)
	case key.Matches(msg, m.keys.Down):
		m.setSelection(m.selection + 1)
	case key.Matches(msg, m.keys.Select):
		return m.requestScreen(m.selection)
	case key.Matches(msg, m.keys.Jump):
		m.setSelection(int(msg.Runes[0] - '0'))
		return m.requestScreen(m.selection)
	}
	return m, nil
}

func (m *Model) setSelection(n int) {
	m.selection = clampSelection(n)
	if m.menu != nil {
		m.menu.UpdateSelection(m.selection)
	}
}

func (m Model) capturingText() bool {
	c, ok := m.screen.(views.TextCapturer)
	return ok && c.CapturingText()
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.stopped = true
	return m, tea.Quit
}

// requestScreen opens the screen behind a menu entry, or queues it until
// the menu render in flight has settled.
func (m Model) requestScreen(selection int) (tea.Model, tea.Cmd) {
	if !m.rendering {
		return m.openScreen(selection)
	}
	m.pending = selection
	var cmd tea.Cmd
	m, cmd = m.renderMenu(false)
	return m, cmd
}

// openScreen hands input to the screen behind a menu entry.
func (m Model) openScreen(selection int) (tea.Model, tea.Cmd) {
	m.screenSeq++
	deps := views.Deps{
		Ctx:       m.ctx,
		API:       m.client,
		Surface:   m.surface,
		UTxO:      m.opts.UTxO,
		Clipboard: m.opts.Clipboard,
		Logger:    m.logger,
	}

	var screen views.Screen
	switch selection {
	case 1:
		screen = views.NewCreateHead(m.screenSeq, deps)
	case 2:
		screen = views.NewHeads(m.screenSeq, deps)
	case 3:
		screen = views.NewStopHead(m.screenSeq, deps)
	case 4:
		screen = views.NewAccounts(m.screenSeq, deps)
	case 5:
		screen = views.NewNodes(m.screenSeq, deps)
	case 6:
		screen = views.NewStatus(m.screenSeq, deps)
	default:
		return m, nil
	}

	m.view = selectionViews[selection]
	m.screen = screen
	m.logger.Debug("opening view", "view", m.view, "id", m.screenSeq)
	return m, screen.Init()
}

// forward routes a message to the active screen and reclaims the menu
// once the screen is done.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen == nil {
		return m, nil
	}

	screen, cmd := m.screen.Update(msg)
	m.screen = screen
	if !screen.Done() {
		return m, cmd
	}

	m.logger.Debug("view closed", "view", m.view)
	m.screen = nil
	m.view = viewMenu
	m.suppress = true
	var render tea.Cmd
	m, render = m.renderMenu(false)
	return m, tea.Batch(cmd, render)
}

// renderMenu fetches the status and redraws the menu. Only one render is
// in flight at a time. A foreground request made while a background render
// is in flight promotes that render: it shows the loading indicator and its
// failure is handled like any foreground failure.
func (m Model) renderMenu(background bool) (Model, tea.Cmd) {
	if m.stopped {
		return m, nil
	}
	if m.rendering {
		if !background && !m.renderForeground {
			m.renderForeground = true
			m.surface.ShowLoading("Loading...")
		}
		return m, nil
	}
	m.rendering = true
	m.renderForeground = !background
	if !background {
		m.surface.ShowLoading("Loading...")
	}

	ctx, client := m.ctx, m.client
	return m, func() tea.Msg {
		status, err := client.GetSystemStatus(ctx)
		return menuRenderMsg{status: status, err: err}
	}
}

func (m Model) handleMenuRender(msg menuRenderMsg) (tea.Model, tea.Cmd) {
	foreground := m.renderForeground
	m.rendering = false
	m.renderForeground = false
	if foreground {
		m.surface.HideLoading()
	}
	pending := m.pending
	m.pending = 0

	if msg.err != nil {
		if !foreground {
			m.logger.Debug("menu refresh failed", "error", msg.err)
			return m, nil
		}
		if m.menu == nil {
			m.logger.Error("initial status fetch failed", "error", msg.err)
			m.surface.ShowError(msg.err.Error())
			m.fatal = msg.err
			m.stopped = true
			return m, tea.Quit
		}
		m.logger.Warn("status fetch failed, retrying", "error", msg.err, "delay", m.opts.RetryDelay)
		m.surface.ShowError(msg.err.Error())
		return m, tea.Tick(m.opts.RetryDelay, func(time.Time) tea.Msg { return retryMsg{} })
	}

	if m.view != viewMenu || m.stopped {
		return m, nil
	}

	now := m.now()
	m.status = msg.status
	m.lastUpdate = now
	if m.menu == nil {
		m.menu = m.newMenu(m.opts.Title, m.opts.Info, msg.status, m.selection, now)
	} else {
		m.menu.UpdateStatus(msg.status, now)
		m.menu.UpdateSelection(m.selection)
	}
	if pending != 0 {
		return m.openScreen(pending)
	}
	return m, nil
}

func (m Model) fetchPoll() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		status, err := client.GetSystemStatus(ctx)
		return pollResultMsg{status: status, err: err}
	}
}

func (m Model) refreshTick() tea.Cmd {
	return tea.Tick(m.opts.RefreshInterval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func (m Model) pollTick() tea.Cmd {
	return tea.Tick(m.opts.PollInterval, func(time.Time) tea.Msg { return pollTickMsg{} })
}
