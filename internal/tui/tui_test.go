package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hexcore/hexcore-cli/internal/api"
	"github.com/hexcore/hexcore-cli/internal/tui/views"
)

var (
	healthy   = api.SystemStatus{RunningNodes: 2, RunningHeads: 1, TotalHeads: 3, Status: api.HealthHealthy}
	unhealthy = api.SystemStatus{RunningNodes: 2, Status: api.HealthError}
)

// events is a shared, ordered log of surface and API calls.
type events []string

func (e *events) add(s string) { *e = append(*e, s) }

func (e events) count(s string) int {
	n := 0
	for _, v := range e {
		if v == s {
			n++
		}
	}
	return n
}

func (e events) index(s string) int {
	for i, v := range e {
		if v == s {
			return i
		}
	}
	return -1
}

type fakeAPI struct {
	status    api.SystemStatus
	statusErr error
	log       *events
}

func (f *fakeAPI) GetSystemStatus(context.Context) (api.SystemStatus, error) {
	f.log.add("fetch")
	return f.status, f.statusErr
}

func (f *fakeAPI) GetHeads(context.Context) ([]api.Head, error) { return nil, nil }
func (f *fakeAPI) GetHeadInfo(context.Context, string) (*api.Head, error) { return nil, nil }
func (f *fakeAPI) CreateHead(context.Context, []string) (*api.Head, error) { return nil, nil }
func (f *fakeAPI) StopHead(context.Context, string) error { return nil }
func (f *fakeAPI) GetAccounts(context.Context) ([]api.Account, error) { return nil, nil }
func (f *fakeAPI) AddAccount(context.Context, string) (*api.Account, error) { return nil, nil }
func (f *fakeAPI) GetNodes(context.Context) ([]api.Node, error) { return nil, nil }

type recorder struct {
	log    *events
	errMsg string
}

func (r *recorder) ShowLoading(string) { r.log.add("show") }
func (r *recorder) HideLoading() { r.log.add("hide") }
func (r *recorder) ShowError(msg string) { r.errMsg = msg; r.log.add("error") }
func (r *recorder) HideError() { r.errMsg = "" }
func (r *recorder) Size() (int, int) { return 80, 24 }
func (r *recorder) SetSize(int, int) {}
func (r *recorder) Render(body, _ string) string { return body }

// menuSpy counts in-place status updates.
type menuSpy struct {
	MenuControls
	statusUpdates int
	last          api.SystemStatus
}

func (s *menuSpy) UpdateStatus(status api.SystemStatus, at time.Time) {
	s.statusUpdates++
	s.last = status
	s.MenuControls.UpdateStatus(status, at)
}

type harness struct {
	api  *fakeAPI
	log  *events
	surf *recorder
	menu *menuSpy
}

func newTestModel(t *testing.T) (Model, *harness) {
	t.Helper()
	log := &events{}
	h := &harness{
		api:  &fakeAPI{status: healthy, log: log},
		log:  log,
		surf: &recorder{log: log},
		menu: &menuSpy{},
	}
	m := NewModel(context.Background(), h.api, Options{Surface: h.surf})
	m.newMenu = func(title, info string, status api.SystemStatus, selection int, at time.Time) MenuControls {
		h.menu.MenuControls = NewMenu(title, info, status, selection, at)
		return h.menu
	}
	return m, h
}

// started returns a model whose first menu render has completed.
func started(t *testing.T) (Model, *harness) {
	t.Helper()
	m, h := newTestModel(t)
	m, cmd := m.renderMenu(false)
	m = send(t, m, run(t, cmd)...)
	if m.menu == nil {
		t.Fatal("menu not rendered")
	}
	return m, h
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

// run executes cmd and flattens batches. It must not be given timer commands.
func run(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(t, c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func keyRune(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyCtrlC = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t)

	if m.view != viewMenu {
		t.Errorf("NewModel() view = %v, want menu", m.view)
	}
	if m.selection != 1 {
		t.Errorf("NewModel() selection = %d, want 1", m.selection)
	}
	if m.opts.RefreshInterval != DefaultRefreshInterval || m.opts.PollInterval != DefaultPollInterval {
		t.Errorf("NewModel() intervals = %v/%v", m.opts.RefreshInterval, m.opts.PollInterval)
	}
	if m.Init() == nil {
		t.Error("Init() should start the session")
	}
}

func TestModel_SelectionClamped(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{"up at top", []tea.KeyMsg{keyUp, keyUp}, 1},
		{"down once", []tea.KeyMsg{keyDown}, 2},
		{"down past bottom", []tea.KeyMsg{keyDown, keyDown, keyDown, keyDown, keyDown, keyDown, keyDown, keyDown}, 6},
		{"vim keys", []tea.KeyMsg{keyRune('j'), keyRune('j'), keyRune('k')}, 2},
		{"down then up past top", []tea.KeyMsg{keyDown, keyUp, keyUp, keyUp}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, h := started(t)
			for _, k := range tt.keys {
				m = send(t, m, k)
				if m.selection < 1 || m.selection > 6 {
					t.Fatalf("selection = %d out of range", m.selection)
				}
			}
			if m.selection != tt.want {
				t.Errorf("selection = %d, want %d", m.selection, tt.want)
			}
			if got := h.menu.MenuControls.(*Menu).selection; got != tt.want {
				t.Errorf("menu selection = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestModel_OpenViewSuspendsMenu(t *testing.T) {
	m, _ := started(t)

	m = send(t, m, keyRune('5'))
	if m.view != viewNodes {
		t.Fatalf("view = %v, want nodes", m.view)
	}
	if m.screen == nil {
		t.Fatal("screen not opened")
	}

	// Navigation belongs to the screen now.
	m = send(t, m, keyDown, keyRune('3'))
	if m.selection != 5 {
		t.Errorf("selection changed to %d while a view was active", m.selection)
	}
	if m.view != viewNodes {
		t.Errorf("digit key re-dispatched, view = %v", m.view)
	}
}

func TestModel_EnterOpensCurrentSelection(t *testing.T) {
	m, _ := started(t)

	m = send(t, m, keyDown, keyEnter)
	if m.view != viewHeads {
		t.Errorf("view = %v, want heads", m.view)
	}

	m, _ = started(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if m.view != viewCreateHead {
		t.Errorf("space: view = %v, want create-head", m.view)
	}
}

func TestModel_DismissKeyIsNotReplayed(t *testing.T) {
	m, _ := started(t)

	updated, cmd := m.Update(keyRune('6'))
	m = updated.(Model)
	if m.view != viewStatus {
		t.Fatalf("view = %v, want status", m.view)
	}
	m = send(t, m, run(t, cmd)...)

	// The first enter dismisses the status view, the second is swallowed.
	updated, closeCmd := m.Update(keyEnter)
	m = updated.(Model)
	m = send(t, m, keyEnter)

	if m.view != viewMenu {
		t.Fatalf("view = %v, want menu", m.view)
	}
	if m.screen != nil || m.screenSeq != 1 {
		t.Fatalf("status view re-entered: screen=%v seq=%d", m.screen, m.screenSeq)
	}
	if m.suppress {
		t.Error("suppression flag should be consumed")
	}

	// Once the menu redraw lands, the next enter is handled normally.
	m = send(t, m, run(t, closeCmd)...)
	m = send(t, m, keyEnter)
	if m.view != viewStatus || m.screenSeq != 2 {
		t.Errorf("third enter: view = %v seq = %d, want status/2", m.view, m.screenSeq)
	}
}

func TestModel_SuppressionIgnoresUnboundKeys(t *testing.T) {
	m, _ := started(t)
	m.suppress = true

	m = send(t, m, keyRune('x'))
	if !m.suppress {
		t.Fatal("unbound key consumed the suppression flag")
	}

	m = send(t, m, keyDown)
	if m.suppress || m.selection != 1 {
		t.Errorf("after suppressed down: suppress=%v selection=%d", m.suppress, m.selection)
	}

	m = send(t, m, keyDown)
	if m.selection != 2 {
		t.Errorf("second down: selection = %d, want 2", m.selection)
	}
}

func TestModel_SelectionQueuedWhileRendering(t *testing.T) {
	t.Run("opens after render", func(t *testing.T) {
		m, h := started(t)
		m, cmd := m.renderMenu(true)
		*h.log = nil

		m = send(t, m, keyRune('4'))
		if m.view != viewMenu {
			t.Fatalf("view = %v, want menu while a render is in flight", m.view)
		}
		if h.log.count("show") != 1 {
			t.Fatalf("queued selection gave no loading indicator: %v", *h.log)
		}

		m = send(t, m, keyEnter)
		if h.log.count("show") != 1 {
			t.Errorf("second selection showed the indicator again: %v", *h.log)
		}

		m = send(t, m, run(t, cmd)...)
		if m.view != viewAccounts || m.screen == nil {
			t.Fatalf("view = %v, want accounts once the render settled", m.view)
		}
		if h.log.index("hide") < h.log.index("fetch") {
			t.Errorf("indicator removed before fetch settled: %v", *h.log)
		}
	})

	t.Run("dropped on failure", func(t *testing.T) {
		m, h := started(t)
		h.api.statusErr = errors.New("Cannot connect to http://localhost:3013")
		m, cmd := m.renderMenu(true)

		m = send(t, m, keyEnter)
		m = send(t, m, run(t, cmd)...)
		if m.view != viewMenu || m.pending != 0 {
			t.Errorf("view = %v pending = %d, want menu and nothing queued", m.view, m.pending)
		}
		if h.surf.errMsg == "" {
			t.Error("failure of a render the user waited on should show the overlay")
		}
	})
}

func TestModel_PollRedrawsOnlyOnChange(t *testing.T) {
	m, h := started(t)

	m.polling = true
	m = send(t, m, run(t, m.fetchPoll())...)
	if h.menu.statusUpdates != 0 {
		t.Fatalf("unchanged poll redrew %d times", h.menu.statusUpdates)
	}
	if m.polling {
		t.Error("poll result should clear the in-flight flag")
	}

	changed := healthy
	changed.RunningHeads = 2
	h.api.status = changed
	m = send(t, m, run(t, m.fetchPoll())...)
	if h.menu.statusUpdates != 1 {
		t.Fatalf("changed poll redrew %d times, want 1", h.menu.statusUpdates)
	}
	if !h.menu.last.Equal(changed) || !m.status.Equal(changed) {
		t.Errorf("snapshot = %+v, want %+v", m.status, changed)
	}

	// Same again: no further redraw.
	m = send(t, m, run(t, m.fetchPoll())...)
	if h.menu.statusUpdates != 1 {
		t.Errorf("repeat poll redrew, count = %d", h.menu.statusUpdates)
	}
}

func TestModel_PollDiscardsStaleAndFailedResults(t *testing.T) {
	m, h := started(t)

	m = send(t, m, pollResultMsg{err: errors.New("boom")})
	if h.menu.statusUpdates != 0 || h.surf.errMsg != "" {
		t.Errorf("failed poll changed state: updates=%d overlay=%q", h.menu.statusUpdates, h.surf.errMsg)
	}

	m = send(t, m, keyRune('5'))
	m = send(t, m, pollResultMsg{status: unhealthy})
	if h.menu.statusUpdates != 0 {
		t.Error("poll applied while a view was active")
	}
	if !m.status.Equal(healthy) {
		t.Errorf("snapshot = %+v, want unchanged", m.status)
	}
}

func TestModel_TimersGuardOnView(t *testing.T) {
	m, _ := started(t)

	m = send(t, m, keyRune('5'))
	updated, cmd := m.Update(pollTickMsg{})
	m = updated.(Model)
	if m.polling || cmd == nil {
		t.Errorf("poll tick in a view: polling=%v rearmed=%v", m.polling, cmd != nil)
	}

	updated, cmd = m.Update(refreshTickMsg{})
	m = updated.(Model)
	if m.rendering || cmd == nil {
		t.Errorf("refresh tick in a view: rendering=%v rearmed=%v", m.rendering, cmd != nil)
	}

	m, _ = started(t)
	updated, _ = m.Update(pollTickMsg{})
	if !updated.(Model).polling {
		t.Error("poll tick in menu should start a fetch")
	}

	m.stopped = true
	if _, cmd := m.Update(pollTickMsg{}); cmd != nil {
		t.Error("poll tick re-armed after stop")
	}
	if _, cmd := m.Update(refreshTickMsg{}); cmd != nil {
		t.Error("refresh tick re-armed after stop")
	}
}

func TestModel_LoadingLifecycle(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failure", errors.New("Cannot connect to http://localhost:3013")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, h := started(t)
			*h.log = nil
			h.api.statusErr = tt.err

			m, cmd := m.renderMenu(false)
			if h.log.count("show") != 1 || h.log.count("hide") != 0 {
				t.Fatalf("before fetch: %v", *h.log)
			}
			m = send(t, m, run(t, cmd)...)

			if got := h.log.count("show"); got != 1 {
				t.Errorf("show count = %d, want 1", got)
			}
			if got := h.log.count("hide"); got != 1 {
				t.Errorf("hide count = %d, want 1", got)
			}
			if h.log.index("hide") < h.log.index("fetch") {
				t.Errorf("indicator removed before fetch settled: %v", *h.log)
			}
			if m.rendering {
				t.Error("render still marked in flight")
			}
			if tt.err != nil && h.surf.errMsg != tt.err.Error() {
				t.Errorf("overlay = %q, want %q", h.surf.errMsg, tt.err.Error())
			}
		})
	}
}

func TestModel_FirstRenderFailureIsFatal(t *testing.T) {
	m, h := newTestModel(t)
	h.api.statusErr = errors.New("Cannot connect to http://localhost:3013")

	m, cmd := m.renderMenu(false)
	updated, cmd := m.Update(run(t, cmd)[0])
	m = updated.(Model)

	if m.Err() == nil || !m.stopped {
		t.Fatalf("Err() = %v stopped = %v, want fatal", m.Err(), m.stopped)
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
}

func TestModel_LaterRenderFailureRetries(t *testing.T) {
	m, h := started(t)
	h.api.statusErr = errors.New("Operation timed out (60s)")

	m, cmd := m.renderMenu(false)
	updated, retry := m.Update(run(t, cmd)[0])
	m = updated.(Model)
	if m.Err() != nil || m.stopped {
		t.Fatal("session torn down after menu existed")
	}
	if retry == nil {
		t.Fatal("expected a retry to be scheduled")
	}

	h.api.statusErr = nil
	updated, cmd = m.Update(retryMsg{})
	m = updated.(Model)
	if h.surf.errMsg != "" {
		t.Error("overlay should be cleared on retry")
	}
	if !m.rendering || cmd == nil {
		t.Fatal("retry should re-issue the render")
	}
	m = send(t, m, run(t, cmd)...)
	if m.rendering || !m.status.Equal(healthy) {
		t.Errorf("after retry: rendering=%v status=%+v", m.rendering, m.status)
	}
}

func TestModel_BackgroundRefreshFailureIsSilent(t *testing.T) {
	m, h := started(t)
	h.api.statusErr = errors.New("boom")
	*h.log = nil

	m, cmd := m.renderMenu(true)
	updated, cmd := m.Update(run(t, cmd)[0])
	m = updated.(Model)
	if cmd != nil || h.surf.errMsg != "" || m.stopped {
		t.Errorf("background failure surfaced: cmd=%v overlay=%q", cmd != nil, h.surf.errMsg)
	}
	if len(*h.log) != 1 || h.log.count("fetch") != 1 {
		t.Errorf("background failure touched the surface: %v", *h.log)
	}
}

func TestModel_RetryJoinsBackgroundRender(t *testing.T) {
	m, h := started(t)
	h.api.statusErr = errors.New("Operation timed out (60s)")

	m, cmd := m.renderMenu(false)
	m = send(t, m, run(t, cmd)...)
	if h.surf.errMsg == "" {
		t.Fatal("expected the error overlay")
	}

	// The refresh timer fires during the retry delay.
	updated, tick := m.Update(refreshTickMsg{})
	m = updated.(Model)
	batch, ok := tick().(tea.BatchMsg)
	if !ok || len(batch) != 2 || !m.rendering {
		t.Fatalf("refresh tick did not start a render: rendering=%v", m.rendering)
	}
	render := batch[0]

	*h.log = nil
	updated, cmd = m.Update(retryMsg{})
	m = updated.(Model)
	if cmd != nil {
		t.Fatal("retry should join the render in flight")
	}
	if h.surf.errMsg != "" || h.log.count("show") != 1 {
		t.Fatalf("retry: overlay=%q log=%v", h.surf.errMsg, *h.log)
	}

	updated, retry := m.Update(render())
	m = updated.(Model)
	if h.surf.errMsg == "" {
		t.Error("failure of the joined render was dropped")
	}
	if retry == nil {
		t.Error("expected another retry to be scheduled")
	}
	if h.log.count("show") != h.log.count("hide") {
		t.Errorf("loading indicator left unbalanced: %v", *h.log)
	}
	if m.rendering || m.stopped {
		t.Errorf("rendering=%v stopped=%v", m.rendering, m.stopped)
	}
}

func TestModel_QuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyRune('q'), keyEsc, keyCtrlC} {
		t.Run(k.String(), func(t *testing.T) {
			m, _ := started(t)
			updated, cmd := m.Update(k)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.Quit")
			}
			if !updated.(Model).stopped {
				t.Error("session not stopped")
			}

			// Quit works from inside a view too.
			m = send(t, m, keyRune('6'))
			if _, cmd := m.Update(k); cmd == nil {
				t.Error("expected quit from inside a view")
			}
		})
	}
}

type captureScreen struct {
	capturing bool
	keys      []string
}

func (s *captureScreen) Init() tea.Cmd { return nil }

func (s *captureScreen) Update(msg tea.Msg) (views.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		s.keys = append(s.keys, k.String())
	}
	return s, nil
}

func (s *captureScreen) View() string { return "capture" }
func (s *captureScreen) Done() bool { return false }
func (s *captureScreen) CapturingText() bool { return s.capturing }

func TestModel_TextCaptureKeepsQuitKeys(t *testing.T) {
	m, _ := started(t)
	screen := &captureScreen{capturing: true}
	m.view, m.screen = viewAccounts, screen

	updated, cmd := m.Update(keyRune('q'))
	m = updated.(Model)
	if cmd != nil || m.stopped {
		t.Fatal("q quit while the screen was capturing text")
	}
	m = send(t, m, keyEsc)
	if strings.Join(screen.keys, ",") != "q,esc" {
		t.Errorf("screen keys = %v, want q,esc", screen.keys)
	}

	if _, cmd := m.Update(keyCtrlC); cmd == nil {
		t.Error("ctrl+c should always quit")
	}

	screen.capturing = false
	if _, cmd := m.Update(keyRune('q')); cmd == nil {
		t.Error("q should quit once capture ends")
	}
}

func TestModel_View(t *testing.T) {
	m, h := started(t)

	view := m.View()
	for _, want := range []string{"OVERVIEW", "QUICK ACTIONS", "Health Status", "All systems operational"} {
		if !strings.Contains(view, want) {
			t.Errorf("menu view missing %q", want)
		}
	}

	m = send(t, m, pollResultMsg{status: unhealthy})
	if !strings.Contains(m.View(), "Connection failed") {
		t.Error("unhealthy status should show the failure bar")
	}
	if h.menu.statusUpdates != 1 {
		t.Errorf("status updates = %d, want 1", h.menu.statusUpdates)
	}
}

func TestDisplay_Render(t *testing.T) {
	d := NewDisplay()
	d.SetSize(60, 10)

	if got := d.Render("body", "*"); got != "body" {
		t.Errorf("Render() = %q, want body", got)
	}

	d.ShowLoading("Loading...")
	if got := d.Render("body", "*"); !strings.Contains(got, "Loading...") || !strings.Contains(got, "body") {
		t.Errorf("loading render = %q", got)
	}
	if !d.Loading() {
		t.Error("Loading() = false after ShowLoading")
	}

	d.ShowError("Cannot connect to http://localhost:3013")
	if got := d.Render("body", "*"); !strings.Contains(got, "Cannot connect to") || strings.Contains(got, "body") {
		t.Errorf("error overlay render = %q", got)
	}

	d.HideError()
	d.HideLoading()
	if got := d.Render("body", "*"); got != "body" {
		t.Errorf("after hide: Render() = %q", got)
	}
}
