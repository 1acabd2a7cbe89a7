// Package theme holds the dashboard palette and shared lipgloss styles.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	ColorBrand = lipgloss.Color("99")

	ColorBgHeader = lipgloss.Color("234")
	ColorBorder   = lipgloss.Color("238")
	ColorSelected = lipgloss.Color("237")

	ColorMuted  = lipgloss.Color("241") // labels, static text
	ColorNormal = lipgloss.Color("252")
	ColorBright = lipgloss.Color("255") // dynamic values
	ColorAccent = lipgloss.Color("99")  // key hints

	ColorSuccess = lipgloss.Color("82")
	ColorWarning = lipgloss.Color("220")
	ColorDanger  = lipgloss.Color("196")
	ColorInfo    = lipgloss.Color("75")
)

// Text styles
var (
	TextMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	TextNormal  = lipgloss.NewStyle().Foreground(ColorNormal)
	TextBright  = lipgloss.NewStyle().Foreground(ColorBright)
	TextAction  = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	TextSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	TextDanger  = lipgloss.NewStyle().Foreground(ColorDanger)
	TextInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
)

// Card styles
var (
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	CardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			MarginBottom(1)
)

// Header styles
var (
	PageTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright).
			MarginBottom(1)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	BrandTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBrand).
			PaddingRight(1)

	HeaderBarStyle = lipgloss.NewStyle().
			Background(ColorBgHeader).
			Padding(0, 1)

	HeaderInfoStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	StatusBarStyle = lipgloss.NewStyle().
			Background(ColorBgHeader).
			Foreground(ColorMuted).
			Padding(0, 1)

	// MenuItemStyle and MenuSelectedStyle render one menu entry.
	MenuItemStyle = lipgloss.NewStyle().
			Foreground(ColorNormal).
			PaddingLeft(2)

	MenuSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorBright).
				Background(ColorSelected).
				Bold(true).
				PaddingLeft(1).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(ColorBrand)
)

// Icon is the brand glyph shown in the header bar.
const Icon = "◆"

// RenderHeader renders the top bar: brand on the left, info on the right.
func RenderHeader(title, info string, width int) string {
	left := BrandTitleStyle.Render(Icon) + " " + TextBright.Bold(true).Render(strings.ToUpper(title))
	right := HeaderInfoStyle.Render(info)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return HeaderBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// RenderStatusBar renders a footer with hints in the middle.
func RenderStatusBar(left, hints, right string, width int) string {
	remaining := width - lipgloss.Width(left) - lipgloss.Width(hints) - lipgloss.Width(right) - 2
	if remaining < 0 {
		remaining = 0
	}
	leftGap := remaining / 2
	bar := left + strings.Repeat(" ", leftGap) + hints + strings.Repeat(" ", remaining-leftGap) + right
	return StatusBarStyle.Width(width).Render(bar)
}

// PageHeader renders a screen title with an optional subtitle.
func PageHeader(title, subtitle string) string {
	header := PageTitleStyle.Render(title)
	if subtitle != "" {
		header += "  " + SubHeaderStyle.Render(subtitle)
	}
	return header
}

// BadgeKind groups statuses that share a badge color.
type BadgeKind int

const (
	BadgeNeutral BadgeKind = iota
	BadgeGood
	BadgeDegraded
	BadgeDown
)

var badgeStyles = map[BadgeKind]lipgloss.Style{
	BadgeNeutral:  lipgloss.NewStyle().Foreground(ColorMuted).Background(ColorBorder).Padding(0, 1),
	BadgeGood:     lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(ColorSuccess).Padding(0, 1).Bold(true),
	BadgeDegraded: lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(ColorWarning).Padding(0, 1).Bold(true),
	BadgeDown:     lipgloss.NewStyle().Foreground(ColorBright).Background(ColorDanger).Padding(0, 1).Bold(true),
}

var statusKinds = map[string]BadgeKind{
	"active":   BadgeGood,
	"running":  BadgeGood,
	"healthy":  BadgeGood,
	"inactive": BadgeDegraded,
	"pending":  BadgeDegraded,
	"starting": BadgeDegraded,
	"stopped":  BadgeDown,
	"exited":   BadgeDown,
	"error":    BadgeDown,
	"failed":   BadgeDown,
}

// StatusKind classifies a head or node status. Unknown values are neutral.
func StatusKind(status string) BadgeKind {
	return statusKinds[strings.ToLower(strings.TrimSpace(status))]
}

// Badge renders text in the style of kind.
func Badge(kind BadgeKind, text string) string {
	return badgeStyles[kind].Render(text)
}

// StatusBadge renders a head or node status as an upper-case badge.
func StatusBadge(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return Badge(BadgeNeutral, "-")
	}
	return Badge(StatusKind(status), strings.ToUpper(status))
}

// Card creates a bordered card with a title.
func Card(title, body string, width int) string {
	if width == 0 {
		width = 40
	}
	return CardStyle.Width(width).Render(CardTitleStyle.Render(title) + "\n" + body)
}

// KeyHint renders "[k] action".
func KeyHint(key, action string) string {
	return TextAction.Render("["+key+"]") + " " + TextMuted.Render(action)
}

// KeyHints joins key hints.
func KeyHints(hints ...string) string {
	return strings.Join(hints, "  ")
}

// Table renders aligned label/value rows.
func Table(rows [][]string, indent int) string {
	if len(rows) == 0 {
		return ""
	}

	maxWidth := 0
	for _, row := range rows {
		if len(row) > 0 && lipgloss.Width(row[0]) > maxWidth {
			maxWidth = lipgloss.Width(row[0])
		}
	}

	var b strings.Builder
	pad := strings.Repeat(" ", indent)
	for _, row := range rows {
		b.WriteString(pad)
		switch {
		case len(row) >= 2:
			b.WriteString(TextMuted.Render(row[0]))
			b.WriteString(strings.Repeat(" ", maxWidth-lipgloss.Width(row[0])+2))
			b.WriteString(TextBright.Render(row[1]))
		case len(row) == 1:
			b.WriteString(row[0])
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ErrorBox renders an error message in a red bordered box.
func ErrorBox(title, message string, width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDanger).
		Padding(1, 2).
		Width(width)

	return style.Render(TextDanger.Bold(true).Render("✗ "+title) + "\n" + TextNormal.Render(message))
}

// InfoBox renders a message in a bordered box.
func InfoBox(title, message string, width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorInfo).
		Padding(1, 2).
		Width(width)

	return style.Render(TextInfo.Bold(true).Render("ℹ "+title) + "\n" + TextNormal.Render(message))
}

// SuccessBox renders a confirmation in a green bordered box.
func SuccessBox(title, message string, width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSuccess).
		Padding(1, 2).
		Width(width)

	return style.Render(TextSuccess.Bold(true).Render("✓ "+title) + "\n" + TextNormal.Render(message))
}

// WarningBox renders a warning in a yellow bordered box.
func WarningBox(title, message string, width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Padding(1, 2).
		Width(width)

	return style.Render(TextWarning.Bold(true).Render("⚠ "+title) + "\n" + TextNormal.Render(message))
}

// Divider draws a horizontal rule.
func Divider(width int) string {
	if width < 0 {
		width = 0
	}
	return lipgloss.NewStyle().Foreground(ColorBorder).Render(strings.Repeat("─", width))
}

// Counter renders "label value" with the value highlighted.
func Counter(label string, value int) string {
	return TextMuted.Render(label+" ") + TextBright.Bold(true).Render(fmt.Sprintf("%d", value))
}
