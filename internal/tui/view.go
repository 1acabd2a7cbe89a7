package tui

// View renders the current state
func (m Model) View() string {
	var body string
	switch {
	case m.view != viewMenu && m.screen != nil:
		body = m.screen.View()
	case m.menu != nil:
		width, _ := m.surface.Size()
		body = m.menu.View(width, m.now()) + "\n" + " " + m.help.View(m.keys)
	}
	return m.surface.Render(body, m.spinner.View())
}
