package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/format"
	"github.com/hexcore/hexcore-cli/internal/tui/theme"
)

// Menu entries, in selection order.
var menuItems = []string{
	"Create New Head",
	"Heads Management",
	"Stop Head",
	"Wallet Accounts",
	"Nodes List",
	"Health Status",
}

const (
	minSelection = 1
	maxSelection = 6
)

// MenuControls updates the menu in place after it has been rendered once.
type MenuControls interface {
	UpdateSelection(selection int)
	UpdateStatus(status api.SystemStatus, at time.Time)
	View(width int, now time.Time) string
}

// menuFactory builds the menu on the first successful render.
type menuFactory func(title, info string, status api.SystemStatus, selection int, at time.Time) MenuControls

// Menu is the dashboard home screen: overview, quick actions and status bar.
type Menu struct {
	title     string
	info      string
	status    api.SystemStatus
	selection int
	updated   time.Time
}

// NewMenu creates the menu.
func NewMenu(title, info string, status api.SystemStatus, selection int, at time.Time) MenuControls {
	return &Menu{title: title, info: info, status: status, selection: selection, updated: at}
}

func (m *Menu) UpdateSelection(selection int) { m.selection = selection }

func (m *Menu) UpdateStatus(status api.SystemStatus, at time.Time) {
	m.status = status
	m.updated = at
}

func (m *Menu) View(width int, now time.Time) string {
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(theme.RenderHeader(m.title, m.info, width))
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(" " + theme.TextAction.Render("⭐ OVERVIEW"))
	b.WriteString("\n ")
	b.WriteString(strings.Join([]string{
		theme.Counter("Running Nodes:", m.status.RunningNodes),
		theme.Counter("Running Heads:", m.status.RunningHeads),
		theme.Counter("Total:", m.status.TotalHeads),
	}, theme.TextMuted.Render(" | ")))
	b.WriteString("\n\n")
	b.WriteString(theme.Divider(width))
	b.WriteString("\n")

	b.WriteString(" " + theme.TextAction.Render("⚡ QUICK ACTIONS"))
	b.WriteString("\n\n")
	for i, item := range menuItems {
		n := i + 1
		line := fmt.Sprintf("[%d] %s", n, item)
		if n == m.selection {
			b.WriteString(theme.MenuSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(theme.MenuItemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.TextMuted.Render(fmt.Sprintf(" Enter selection (%d-%d): ", minSelection, maxSelection)))
	b.WriteString("\n")
	b.WriteString(theme.Divider(width))
	b.WriteString("\n")

	b.WriteString(m.statusBar(width, now))
	return b.String()
}

func (m *Menu) statusBar(width int, now time.Time) string {
	since := format.TimeSince(now.Sub(m.updated).Seconds())
	text := "✓ All systems operational | Last update: " + since
	bg := theme.ColorSuccess
	if !m.status.Healthy() {
		text = "✗ Connection failed | Last update: " + since
		bg = theme.ColorDanger
	}
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(lipgloss.Color("235")).
		Bold(true).
		Padding(0, 1).
		Width(width).
		Render(text)
}

// clampSelection keeps a menu cursor within the menu.
func clampSelection(n int) int {
	return min(max(n, minSelection), maxSelection)
}
