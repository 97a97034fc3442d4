package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ext2view/internal/session"
)

// headerRows is the banner, help and status lines above the browser box.
const headerRows = 3

type AppOptions struct {
	Context     context.Context
	Backend     session.Backend
	BackendURL  string
	Capacity    int
	DoubleClick time.Duration
	Version     string
	Theme       UITheme
}

type clickRecord struct {
	index int
	at    time.Time
	valid bool
}

type layout struct {
	browserTop    int
	browserHeight int
	termTop       int
	termHeight    int
}

type appModel struct {
	session  *session.Session
	dispatch *session.Dispatcher

	browser     dirBrowser
	output      viewport.Model
	prompt      textinput.Model
	nameInput   textinput.Model
	targetInput textinput.Model
	editor      textarea.Model

	activePane  activePane
	modalKind   session.ModalKind
	modalRev    int
	modalField  int
	viewScroll  int
	width       int
	height      int
	appVersion  string
	backendURL  string
	theme       UITheme
	doubleClick time.Duration
	lastClick   clickRecord
	now         func() time.Time
	quitting    bool
}

func RunApp(opts AppOptions) error {
	m := newAppModel(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}

func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newAppModel(opts AppOptions) appModel {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	s := session.New(opts.Capacity)
	s.Welcome()

	prompt := newTextInput("type a command")
	prompt.Focus()

	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Cursor.SetMode(cursor.CursorStatic)

	dbl := opts.DoubleClick
	if dbl <= 0 {
		dbl = 400 * time.Millisecond
	}

	m := appModel{
		session:     s,
		dispatch:    session.NewDispatcher(ctx, opts.Backend, s),
		browser:     newDirBrowser(),
		output:      viewport.New(80, 10),
		prompt:      prompt,
		nameInput:   newTextInput("name"),
		targetInput: newTextInput("target"),
		editor:      editor,
		activePane:  paneTerminal,
		appVersion:  opts.Version,
		backendURL:  opts.BackendURL,
		theme:       opts.Theme.withDefaults(),
		doubleClick: dbl,
		now:         time.Now,
	}
	m.resize()
	m.sync()
	return m
}

func (m appModel) Init() tea.Cmd {
	return m.dispatch.Refresh()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		cmd := m.updateKey(msg)
		m.sync()
		return m, cmd
	case tea.MouseMsg:
		cmd := m.updateMouse(msg)
		m.sync()
		return m, cmd
	}
	if cmd, ok := m.dispatch.Update(msg); ok {
		m.sync()
		return m, cmd
	}
	return m, nil
}

// sync pulls session changes into the view components.
func (m *appModel) sync() {
	if m.session.TakeViewReset() {
		m.browser.replaceEntries(m.session.Entries)
		m.lastClick = clickRecord{}
		m.fitPrompt()
	}
	if m.session.Terminal.TakeFollow() {
		m.renderOutput()
		m.output.GotoBottom()
	}
	modal := m.dispatch.Modal()
	if modal.Revision() != m.modalRev {
		m.loadModalInputs()
	}
}

func (m *appModel) resize() {
	w, _ := m.size()
	lay := m.layout()
	m.browser.setHeight(lay.browserHeight)
	m.dispatch.Menu().Resize(m.size())

	m.output.Width = panelInnerWidth(w)
	m.output.Height = max(lay.termHeight-3, 1)
	m.fitPrompt()
	m.renderOutput()
	m.output.GotoBottom()

	inner := panelInnerWidth(m.modalWidth())
	m.nameInput.Width = max(inner-14, 8)
	m.targetInput.Width = max(inner-14, 8)
	m.editor.SetWidth(inner)
	m.editor.SetHeight(clampInt(m.height-16, 3, 20))
}

// promptLabel is the session prompt shortened from the left so at least half
// of the line stays free for typing.
func (m appModel) promptLabel() string {
	w, _ := m.size()
	limit := max(panelInnerWidth(w)/2, 8)
	r := []rune(m.session.Prompt())
	if len(r) <= limit {
		return string(r)
	}
	return "…" + string(r[len(r)-limit+1:])
}

// fitPrompt sizes the input to the room left after the prompt label. The
// label changes with every listing, so this runs on resize and view reset.
func (m *appModel) fitPrompt() {
	w, _ := m.size()
	m.prompt.Width = max(panelInnerWidth(w)-lipgloss.Width(m.promptLabel())-1, 1)
}

func (m appModel) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = 120
	}
	if h <= 0 {
		h = 36
	}
	return w, h
}

func (m appModel) layout() layout {
	_, h := m.size()
	avail := h - headerRows
	bh := avail * 11 / 20
	if bh < 6 {
		bh = 6
	}
	th := avail - bh
	if th < 5 {
		th = 5
	}
	return layout{
		browserTop:    headerRows,
		browserHeight: bh,
		termTop:       headerRows + bh,
		termHeight:    th,
	}
}

func (m *appModel) renderOutput() {
	width := m.output.Width
	if width <= 0 {
		width = 80
	}
	lines := m.session.Terminal.Lines()
	rendered := make([]string, 0, len(lines))
	for _, l := range lines {
		style := lineStyle(l.Kind, m.theme)
		for _, seg := range hardWrap(l.Text, width) {
			rendered = append(rendered, style.Render(seg))
		}
	}
	m.output.SetContent(strings.Join(rendered, "\n"))
}

func (m *appModel) focusPane(p activePane) {
	m.activePane = p
	if p == paneTerminal {
		m.prompt.Focus()
	} else {
		m.prompt.Blur()
	}
}

func (m *appModel) updateKey(msg tea.KeyMsg) tea.Cmd {
	s := msg.String()
	if s == "ctrl+c" {
		m.quitting = true
		return tea.Quit
	}
	if m.dispatch.Menu().Visible() {
		return m.updateMenuKey(s)
	}
	if m.dispatch.Modal().Active() {
		return m.updateModalKey(msg)
	}
	if s == "tab" {
		if m.activePane == paneBrowser {
			m.focusPane(paneTerminal)
		} else {
			m.focusPane(paneBrowser)
		}
		return nil
	}
	if m.activePane == paneTerminal {
		return m.updateTerminalKey(msg)
	}
	return m.updateBrowserKey(s)
}

func (m *appModel) updateTerminalKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		line := m.prompt.Value()
		m.prompt.Reset()
		return m.dispatch.Submit(line)
	case "up":
		if v, ok := m.session.History.Previous(); ok {
			m.prompt.SetValue(v)
			m.prompt.CursorEnd()
		}
		return nil
	case "down":
		m.prompt.SetValue(m.session.History.Next())
		m.prompt.CursorEnd()
		return nil
	case "pgup":
		m.output.ViewUp()
		return nil
	case "pgdown":
		m.output.ViewDown()
		return nil
	case "esc":
		m.focusPane(paneBrowser)
		return nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *appModel) updateBrowserKey(s string) tea.Cmd {
	switch s {
	case "q":
		m.quitting = true
		return tea.Quit
	case "up", "k":
		m.browser.moveCursor(-1)
	case "down", "j":
		m.browser.moveCursor(1)
	case "pgup":
		m.browser.pageMove(-1)
	case "pgdown":
		m.browser.pageMove(1)
	case "home", "g":
		m.browser.selectIndex(0)
	case "end", "G":
		m.browser.selectIndex(len(m.browser.entries) - 1)
	case "enter", "right", "l":
		if e, ok := m.browser.current(); ok {
			return m.dispatch.Activate(e)
		}
	case "backspace", "left", "h":
		return m.dispatch.Run(session.NewCommand("cd", ".."))
	case "m":
		if e, ok := m.browser.current(); ok {
			row := m.layout().browserTop + browserChromeRows + m.browser.cursor - m.browser.scroll
			m.dispatch.Menu().RightClick(session.Point{X: 4, Y: row}, &e)
		}
	case "b":
		m.dispatch.Menu().RightClick(session.Point{X: 2, Y: m.layout().browserTop + 1}, nil)
	case "n":
		m.dispatch.Modal().OpenCreateFile()
	case "N":
		m.dispatch.Modal().OpenCreateFolder()
	case "r":
		return m.dispatch.Refresh()
	case ":", "i":
		m.focusPane(paneTerminal)
	}
	return nil
}

func (m *appModel) updateMenuKey(s string) tea.Cmd {
	menu := m.dispatch.Menu()
	switch s {
	case "up", "k", "shift+tab":
		menu.Move(-1)
	case "down", "j", "tab":
		menu.Move(1)
	case "enter":
		target := menu.State().Target
		if action, ok := menu.Select(); ok {
			return m.dispatch.Perform(action, target)
		}
	case "esc", "q":
		menu.Escape()
	}
	return nil
}

func (m *appModel) updateMouse(msg tea.MouseMsg) tea.Cmd {
	p := session.Point{X: msg.X, Y: msg.Y}
	menu := m.dispatch.Menu()
	lay := m.layout()
	inBrowser := msg.Y >= lay.browserTop && msg.Y < lay.browserTop+lay.browserHeight
	inTerminal := msg.Y >= lay.termTop && msg.Y < lay.termTop+lay.termHeight

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		delta := 3
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -3
		}
		if inBrowser {
			m.browser.scrollBy(delta)
		} else if inTerminal {
			if delta < 0 {
				m.output.LineUp(-delta)
			} else {
				m.output.LineDown(delta)
			}
		}
		return nil
	case msg.Action != tea.MouseActionPress:
		return nil
	case msg.Button == tea.MouseButtonLeft:
		if menu.Visible() {
			target := menu.State().Target
			if action, ok := menu.PrimaryClick(p); ok {
				return m.dispatch.Perform(action, target)
			}
			return nil
		}
		if m.dispatch.Modal().Active() {
			return nil
		}
		if inTerminal {
			m.focusPane(paneTerminal)
			return nil
		}
		if !inBrowser {
			return nil
		}
		m.focusPane(paneBrowser)
		idx, ok := m.browser.entryAtRow(msg.Y - lay.browserTop)
		if !ok {
			m.lastClick = clickRecord{}
			return nil
		}
		m.browser.selectIndex(idx)
		now := m.now()
		if m.lastClick.valid && m.lastClick.index == idx && now.Sub(m.lastClick.at) <= m.doubleClick {
			m.lastClick = clickRecord{}
			return m.dispatch.Activate(m.browser.entries[idx])
		}
		m.lastClick = clickRecord{index: idx, at: now, valid: true}
		return nil
	case msg.Button == tea.MouseButtonRight:
		if m.dispatch.Modal().Active() || !inBrowser {
			return nil
		}
		idx, ok := m.browser.entryAtRow(msg.Y - lay.browserTop)
		if !ok {
			menu.RightClick(p, nil)
			return nil
		}
		e := m.browser.entries[idx]
		if menu.RightClick(p, &e) {
			m.browser.selectIndex(idx)
		}
		return nil
	}
	return nil
}

func (m appModel) View() string {
	if m.quitting {
		return "Exited.\n"
	}
	w, h := m.size()
	lay := m.layout()

	banner := fmt.Sprintf("ext2view %s  %s", formatVersionLabel(m.appVersion), m.backendURL)
	pathLabel := "path: " + m.session.Path
	gap := w - len([]rune(banner)) - len([]rune(pathLabel))
	header := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.HeaderText)).Bold(true).Render(banner)
	if gap > 1 {
		header += strings.Repeat(" ", gap) + lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.PathText)).Render(pathLabel)
	}

	help := globalHelp()
	switch {
	case m.dispatch.Modal().Active():
		help = modalHelp()
	case m.activePane == paneTerminal:
		help = help + " | " + terminalHelp()
	default:
		help = help + " | " + browserHelp()
	}
	help = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.HelpText)).Render(clampLine(help, w))

	status := fmt.Sprintf("Focus: %s | Entries: %d | Scrollback: %d/%d", paneLabel(m.activePane), len(m.session.Entries), m.session.Terminal.Len(), m.session.Terminal.Capacity())
	status = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusText)).Render(clampLine(status, w))

	m.browser.setHeight(lay.browserHeight)
	browser := m.browser.render(w, m.activePane == paneBrowser, m.theme)
	term := m.renderTerminal(w, lay.termHeight)

	view := strings.Join([]string{header, help, status, browser, term}, "\n")
	if m.dispatch.Modal().Active() {
		backdrop := applyBackdrop(view, w, h)
		view = overlayCentered(backdrop, m.renderModalOverlay(), w, h)
	} else if menu := m.dispatch.Menu(); menu.Visible() {
		b := menu.Bounds()
		view = overlayAt(view, m.renderMenu(), b.X, b.Y, w, h)
	}
	return view + "\n"
}

func (m appModel) renderTerminal(width, height int) string {
	borderColor := m.theme.PaneBorderInactive
	if m.activePane == paneTerminal {
		borderColor = m.theme.PaneBorderActive
	}
	prompt := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Prompt)).Render(m.promptLabel())
	body := m.output.View() + "\n" + prompt + m.prompt.View()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(body)
}

func (m appModel) renderMenu() string {
	menu := m.dispatch.Menu()
	b := menu.Bounds()
	st := menu.State()
	labelWidth := b.W - 4
	lines := make([]string, 0, len(menu.Actions()))
	for i, a := range menu.Actions() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.TextPrimary))
		if a == session.ActionDelete {
			style = style.Foreground(lipgloss.Color(m.theme.DangerText))
		}
		if i == st.Cursor {
			style = lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.SelectionFg)).
				Background(lipgloss.Color(m.theme.SelectionBg))
		}
		lines = append(lines, style.Render(pad(a.Label(), labelWidth)))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.PopupBorder)).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}
