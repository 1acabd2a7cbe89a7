package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/hexcore/hexcore-cli/internal/tui/theme"
	"github.com/hexcore/hexcore-cli/internal/tui/views"
)

// Surface is the single display surface shared by the controller and the
// active screen. Render composes the loading indicator and the error
// overlay over the current body.
type Surface interface {
	views.Surface
	ShowError(message string)
	HideError()
	SetSize(width, height int)
	Render(body, spinner string) string
}

// Display is the terminal implementation of Surface.
type Display struct {
	width  int
	height int

	loading     bool
	loadingText string
	errMessage  string
}

// NewDisplay creates an empty display.
func NewDisplay() *Display {
	return &Display{}
}

func (d *Display) ShowLoading(text string) {
	d.loading = true
	d.loadingText = text
}

func (d *Display) HideLoading() {
	d.loading = false
	d.loadingText = ""
}

func (d *Display) ShowError(message string) { d.errMessage = message }

func (d *Display) HideError() { d.errMessage = "" }

func (d *Display) Size() (int, int) { return d.width, d.height }

func (d *Display) SetSize(width, height int) {
	d.width, d.height = width, height
}

// Loading reports whether the loading indicator is attached.
func (d *Display) Loading() bool { return d.loading }

func (d *Display) Render(body, spinner string) string {
	width, height := d.width, d.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	if d.errMessage != "" {
		w := min(width-4, 60)
		box := theme.ErrorBox("Error", wordwrap.String(d.errMessage, w-4), w)
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}

	if !d.loading {
		return body
	}

	indicator := spinner + " " + theme.TextMuted.Render(d.loadingText)
	if strings.TrimSpace(body) == "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, indicator)
	}
	return body + "\n\n " + indicator
}
