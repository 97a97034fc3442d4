package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ext2view/internal/remote/remotetest"
	"ext2view/internal/session"
	"ext2view/internal/terminal"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestModel(t *testing.T, srv *remotetest.Server) (appModel, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := newAppModel(AppOptions{
		Context:     context.Background(),
		Backend:     srv.Client(),
		BackendURL:  srv.URL,
		DoubleClick: 400 * time.Millisecond,
		Version:     "0.1.0",
	})
	m.now = clock.Now
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 36})
	m = run(t, updated.(appModel), m.Init())
	return m, clock
}

// run executes cmd and everything it leads to, feeding results back into the
// model the way the program loop would.
func run(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 50 {
			t.Fatalf("command chain did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		updated, next := m.Update(msg)
		m = updated.(appModel)
		queue = append(queue, next)
	}
	return m
}

func send(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	updated, cmd := m.Update(msg)
	return run(t, updated.(appModel), cmd)
}

func key(v string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(v)}
}

func leftClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
}

func rightClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonRight, Action: tea.MouseActionPress}
}

// entryRow is the screen row of the idx-th visible entry.
func entryRow(m appModel, idx int) int {
	return m.layout().browserTop + browserChromeRows + idx - m.browser.scroll
}

func entryNames(m appModel) []string {
	names := make([]string, 0, len(m.browser.entries))
	for _, e := range m.browser.entries {
		names = append(names, e.Name)
	}
	return names
}

func lastTerminalLine(t *testing.T, m appModel) terminal.Line {
	t.Helper()
	lines := m.session.Terminal.Lines()
	if len(lines) == 0 {
		t.Fatalf("terminal is empty")
	}
	return lines[len(lines)-1]
}

func TestStartupShowsWelcomeAndListing(t *testing.T) {
	srv := remotetest.New(t)
	srv.MkdirAll("/home")
	srv.MkdirAll("/etc")
	m, _ := newTestModel(t, srv)

	if got := strings.Join(entryNames(m), ","); got != "etc,home" {
		t.Fatalf("unexpected entries: %s", got)
	}
	lines := m.session.Terminal.Lines()
	if len(lines) == 0 || lines[0].Kind != terminal.KindSystem {
		t.Fatalf("expected welcome lines first, got %+v", lines)
	}
	if m.session.Path != "/" {
		t.Fatalf("expected path /, got %s", m.session.Path)
	}
}

func TestTerminalSubmitEchoesAndRuns(t *testing.T) {
	srv := remotetest.New(t)
	m, _ := newTestModel(t, srv)

	m = send(t, m, key("echo hi"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.prompt.Value() != "" {
		t.Fatalf("expected prompt cleared, got %q", m.prompt.Value())
	}
	lines := m.session.Terminal.Lines()
	if len(lines) < 2 {
		t.Fatalf("expected echo and output lines")
	}
	echo := lines[len(lines)-2]
	if echo.Kind != terminal.KindInput || echo.Text != "[/]$ echo hi" {
		t.Fatalf("unexpected echo line: %+v", echo)
	}
	if out := lastTerminalLine(t, m); out.Kind != terminal.KindOutput || out.Text != "hi" {
		t.Fatalf("unexpected output line: %+v", out)
	}
}

func TestTerminalHistoryNavigation(t *testing.T) {
	srv := remotetest.New(t)
	m, _ := newTestModel(t, srv)
	for _, line := range []string{"pwd", "ls"} {
		m = send(t, m, key(line))
		m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	}

	steps := []struct {
		key  tea.KeyType
		want string
	}{
		{tea.KeyUp, "ls"},
		{tea.KeyUp, "pwd"},
		{tea.KeyUp, "pwd"},
		{tea.KeyDown, "ls"},
		{tea.KeyDown, ""},
	}
	for i, st := range steps {
		m = send(t, m, tea.KeyMsg{Type: st.key})
		if got := m.prompt.Value(); got != st.want {
			t.Fatalf("step %d: expected %q, got %q", i, st.want, got)
		}
	}
}

func TestClearIsLocal(t *testing.T) {
	srv := remotetest.New(t)
	m, _ := newTestModel(t, srv)
	srv.ResetCalls()

	m = send(t, m, key("clear"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if n := m.session.Terminal.Len(); n != 0 {
		t.Fatalf("expected empty terminal, got %d lines", n)
	}
	if calls := srv.Calls(); len(calls) != 0 {
		t.Fatalf("expected no backend calls, got %+v", calls)
	}
}

func TestDoubleClickEntersDirectory(t *testing.T) {
	srv := remotetest.New(t)
	srv.MkdirAll("/home/user")
	srv.MkdirAll("/etc")
	m, clock := newTestModel(t, srv)

	row := entryRow(m, 1)
	m = send(t, m, leftClick(10, row))
	if m.activePane != paneBrowser || m.browser.cursor != 1 {
		t.Fatalf("expected click to focus browser and select home")
	}
	clock.advance(100 * time.Millisecond)
	m = send(t, m, leftClick(10, row))

	if srv.Cwd() != "/home" || m.session.Path != "/home" {
		t.Fatalf("expected to be in /home, server %s session %s", srv.Cwd(), m.session.Path)
	}
	if got := strings.Join(entryNames(m), ","); got != "..,user" {
		t.Fatalf("unexpected entries after cd: %s", got)
	}
	if m.browser.cursor != 0 || m.browser.scroll != 0 {
		t.Fatalf("expected browser reset to top")
	}
	if last := lastTerminalLine(t, m); last.Text != "/home" {
		t.Fatalf("expected pwd echo, got %+v", last)
	}
}

func TestSlowClicksDoNotActivate(t *testing.T) {
	srv := remotetest.New(t)
	srv.MkdirAll("/home")
	m, clock := newTestModel(t, srv)

	row := entryRow(m, 0)
	m = send(t, m, leftClick(10, row))
	clock.advance(time.Second)
	m = send(t, m, leftClick(10, row))

	if srv.Cwd() != "/" {
		t.Fatalf("expected no directory change, cwd %s", srv.Cwd())
	}
}

func TestItemMenuDeleteRemovesEntry(t *testing.T) {
	srv := remotetest.New(t)
	srv.WriteFile("/a.txt", "x")
	srv.MkdirAll("/tmp")
	m, _ := newTestModel(t, srv)

	m = send(t, m, rightClick(10, entryRow(m, 0)))
	menu := m.dispatch.Menu()
	if menu.State().Kind != session.MenuItem || menu.State().Target.Name != "a.txt" {
		t.Fatalf("expected item menu for a.txt, got %+v", menu.State())
	}
	b := menu.Bounds()
	deleteRow := -1
	for i, a := range menu.Actions() {
		if a == session.ActionDelete {
			deleteRow = b.Y + 1 + i
		}
	}
	m = send(t, m, leftClick(b.X+2, deleteRow))

	if menu.Visible() {
		t.Fatalf("expected menu hidden after selection")
	}
	if got := strings.Join(entryNames(m), ","); got != "tmp" {
		t.Fatalf("expected a.txt removed, got %s", got)
	}
}

func TestRightClickOnParentIsIgnored(t *testing.T) {
	srv := remotetest.New(t)
	srv.MkdirAll("/tmp")
	m, _ := newTestModel(t, srv)
	m = run(t, m, m.dispatch.Run(session.NewCommand("cd", "tmp")))
	if entryNames(m)[0] != ".." {
		t.Fatalf("expected parent entry first, got %v", entryNames(m))
	}

	m = send(t, m, rightClick(10, entryRow(m, 0)))
	if m.dispatch.Menu().Visible() {
		t.Fatalf("expected no menu for parent entry")
	}
}

func TestBackgroundMenuAndOutsideClick(t *testing.T) {
	srv := remotetest.New(t)
	srv.MkdirAll("/tmp")
	m, _ := newTestModel(t, srv)

	m = send(t, m, rightClick(10, entryRow(m, 5)))
	menu := m.dispatch.Menu()
	if menu.State().Kind != session.MenuBackground {
		t.Fatalf("expected background menu, got %+v", menu.State())
	}
	if !strings.Contains(m.View(), "New folder") {
		t.Fatalf("expected menu rendered in view")
	}

	m = send(t, m, leftClick(0, 0))
	if menu.Visible() {
		t.Fatalf("expected click outside to hide menu")
	}
	if m.dispatch.Modal().Active() {
		t.Fatalf("outside click must not trigger an action")
	}
}

func TestKeyboardMenuRefresh(t *testing.T) {
	srv := remotetest.New(t)
	m, _ := newTestModel(t, srv)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	srv.MkdirAll("/late")
	srv.ResetCalls()

	m = send(t, m, key("b"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := strings.Join(entryNames(m), ","); got != "late" {
		t.Fatalf("expected refreshed listing, got %s", got)
	}
}

func TestCreateFolderDialog(t *testing.T) {
	srv := remotetest.New(t)
	m, _ := newTestModel(t, srv)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m = send(t, m, key("N"))
	if m.dispatch.Modal().State().Kind != session.ModalCreateFolder {
		t.Fatalf("expected create folder dialog")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	st := m.dispatch.Modal().State()
	if st.Kind != session.ModalCreateFolder || st.Err == "" {
		t.Fatalf("expected validation error to keep dialog open, got %+v", st)
	}

	m = send(t, m, key("docs"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.dispatch.Modal().Active() {
		t.Fatalf("expected dialog closed after confirm")
	}
	if got := strings.Join(entryNames(m), ","); got != "docs" {
		t.Fatalf("expected docs entry, got %s", got)
	}
}

func TestViewThenEditWritesFile(t *testing.T) {
	srv := remotetest.New(t)
	srv.WriteFile("/note.txt", "hello")
	m, clock := newTestModel(t, srv)

	row := entryRow(m, 0)
	m = send(t, m, leftClick(10, row))
	clock.advance(50 * time.Millisecond)
	m = send(t, m, leftClick(10, row))

	st := m.dispatch.Modal().State()
	if st.Kind != session.ModalViewFile || st.Loading || st.Content != "hello" {
		t.Fatalf("unexpected view state: %+v", st)
	}
	view := m.View()
	if !strings.Contains(view, "View file") || !strings.Contains(view, "Focus:") {
		t.Fatalf("expected dialog over base view")
	}

	m = send(t, m, key("e"))
	if m.dispatch.Modal().State().Kind != session.ModalWriteFile || m.editor.Value() != "hello" {
		t.Fatalf("expected editor prefilled with file content")
	}
	m = send(t, m, key(" world"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	if m.dispatch.Modal().Active() {
		t.Fatalf("expected dialog closed after save")
	}
	res, err := srv.Client().Execute(context.Background(), "cat", []string{"note.txt"})
	if err != nil || res.Output != "hello world" {
		t.Fatalf("unexpected file content %q err %v", res.Output, err)
	}
}

func TestEscapeClosesDialogWithoutDispatch(t *testing.T) {
	srv := remotetest.New(t)
	m, _ := newTestModel(t, srv)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	srv.ResetCalls()

	m = send(t, m, key("n"))
	m = send(t, m, key("draft.txt"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.dispatch.Modal().Active() {
		t.Fatalf("expected dialog closed")
	}
	if calls := srv.Calls(); len(calls) != 0 {
		t.Fatalf("expected nothing dispatched, got %+v", calls)
	}
}

func TestRefreshFailureKeepsListing(t *testing.T) {
	srv := remotetest.New(t)
	srv.MkdirAll("/home")
	m, _ := newTestModel(t, srv)
	srv.FailDirectory(500)

	m = run(t, m, m.dispatch.Refresh())

	if got := strings.Join(entryNames(m), ","); got != "home" {
		t.Fatalf("expected listing unchanged, got %s", got)
	}
	if last := lastTerminalLine(t, m); last.Kind != terminal.KindError {
		t.Fatalf("expected error line, got %+v", last)
	}
}

func TestLongPathKeepsTerminalBorder(t *testing.T) {
	srv := remotetest.New(t)
	long := "/home/alice/projects/very-long-directory-name"
	srv.MkdirAll(long)
	m, _ := newTestModel(t, srv)
	m = run(t, m, m.dispatch.Run(session.NewCommand("cd", long)))
	if m.session.Path != long {
		t.Fatalf("expected path %s, got %s", long, m.session.Path)
	}

	m = send(t, m, key(strings.Repeat("x", 100)))

	rows := strings.Split(strings.TrimRight(m.View(), "\n"), "\n")
	if len(rows) != 36 {
		t.Fatalf("expected 36 rows, got %d", len(rows))
	}
	last := stripANSI(rows[len(rows)-1])
	if !strings.HasPrefix(last, "╰") || !strings.HasSuffix(last, "╯") {
		t.Fatalf("expected terminal bottom border last, got %q", last)
	}
	promptRow := stripANSI(rows[len(rows)-2])
	if !strings.Contains(promptRow, "very-long-directory-name]$") || !strings.Contains(promptRow, "xxx") {
		t.Fatalf("expected prompt and input on one row, got %q", promptRow)
	}
}

func TestPromptLabelShortensDeepPaths(t *testing.T) {
	srv := remotetest.New(t)
	deep := "/" + strings.Repeat("segment/", 12) + "leaf"
	srv.MkdirAll(deep)
	m, _ := newTestModel(t, srv)
	m = run(t, m, m.dispatch.Run(session.NewCommand("cd", deep)))

	label := m.promptLabel()
	if !strings.HasPrefix(label, "…") || !strings.HasSuffix(label, "leaf]$ ") {
		t.Fatalf("unexpected prompt label %q", label)
	}
	if w := len([]rune(label)); w > panelInnerWidth(120)/2 {
		t.Fatalf("prompt label too wide: %d", w)
	}
	if m.prompt.Width < panelInnerWidth(120)/2-1 {
		t.Fatalf("expected room for typing, width %d", m.prompt.Width)
	}
}

func TestBrowserShowsModeAndModified(t *testing.T) {
	srv := remotetest.New(t)
	srv.MkdirAll("/home")
	m, _ := newTestModel(t, srv)

	if e := m.browser.entries[0]; e.Mode == "" || e.Modified == "" {
		t.Fatalf("expected mode and modified time decoded, got %+v", e)
	}
	view := stripANSI(m.View())
	for _, want := range []string{"Mode", "Modified", "[d].rwxr-xr-x", "2024-01-01"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in browser view", want)
		}
	}
}

func TestFormatVersionLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "vdev"},
		{"0.1.0", "v0.1.0"},
		{"v0.1.0", "v0.1.0"},
		{" dev ", "vdev"},
	}
	for _, tc := range cases {
		if got := formatVersionLabel(tc.in); got != tc.want {
			t.Fatalf("formatVersionLabel(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}
