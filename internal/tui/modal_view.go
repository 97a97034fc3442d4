package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ext2view/internal/session"
)

// Field indexes inside the dialogs. Write and shortcut dialogs have two.
const (
	fieldFirst = iota
	fieldSecond
)

func (m appModel) modalWidth() int {
	w, _ := m.size()
	return clampInt(w-6, 36, 84)
}

// loadModalInputs copies dialog state into the input widgets. The focused
// field survives reloads that keep the same dialog kind.
func (m *appModel) loadModalInputs() {
	modal := m.dispatch.Modal()
	st := modal.State()
	m.modalRev = modal.Revision()
	m.nameInput.SetValue(st.Name)
	m.nameInput.CursorEnd()
	m.targetInput.SetValue(st.LinkTarget)
	m.targetInput.CursorEnd()
	if m.editor.Value() != st.Content {
		m.editor.SetValue(st.Content)
	}
	if st.Kind != m.modalKind {
		m.modalKind = st.Kind
		m.viewScroll = 0
		switch st.Kind {
		case session.ModalWriteFile:
			m.modalField = fieldSecond
			if st.Name == "" {
				m.modalField = fieldFirst
			}
		case session.ModalCreateShortcut:
			m.modalField = fieldSecond
		default:
			m.modalField = fieldFirst
		}
	}
	if st.Kind != session.ModalNone {
		m.prompt.Blur()
	} else if m.activePane == paneTerminal {
		m.prompt.Focus()
	}
	m.focusModalField()
}

func (m *appModel) focusModalField() {
	m.nameInput.Blur()
	m.targetInput.Blur()
	m.editor.Blur()
	switch m.modalKind {
	case session.ModalCreateFile, session.ModalCreateFolder:
		m.nameInput.Focus()
	case session.ModalCreateShortcut:
		if m.modalField == fieldFirst {
			m.targetInput.Focus()
		} else {
			m.nameInput.Focus()
		}
	case session.ModalWriteFile:
		if m.modalField == fieldFirst {
			m.nameInput.Focus()
		} else {
			m.editor.Focus()
		}
	}
}

func (m *appModel) updateModalKey(msg tea.KeyMsg) tea.Cmd {
	modal := m.dispatch.Modal()
	st := modal.State()
	s := msg.String()
	if s == "esc" {
		modal.Close()
		return nil
	}

	switch st.Kind {
	case session.ModalViewFile:
		switch s {
		case "e":
			return m.dispatch.EditModal()
		case "enter", "q":
			modal.Close()
		case "up", "k":
			m.viewScroll = max(m.viewScroll-1, 0)
		case "down", "j":
			m.viewScroll++
		case "pgup":
			m.viewScroll = max(m.viewScroll-m.viewerRows(), 0)
		case "pgdown":
			m.viewScroll += m.viewerRows()
		}
		return nil
	case session.ModalWriteFile:
		switch s {
		case "ctrl+s":
			return m.dispatch.ConfirmModal()
		case "tab", "shift+tab":
			m.modalField = 1 - m.modalField
			m.focusModalField()
			return nil
		case "enter":
			if m.modalField == fieldFirst {
				m.modalField = fieldSecond
				m.focusModalField()
				return nil
			}
		}
	case session.ModalCreateShortcut:
		switch s {
		case "tab", "shift+tab", "up", "down":
			m.modalField = 1 - m.modalField
			m.focusModalField()
			return nil
		case "enter":
			return m.dispatch.ConfirmModal()
		}
	default:
		if s == "enter" {
			return m.dispatch.ConfirmModal()
		}
	}
	return m.updateModalInputs(msg)
}

// updateModalInputs feeds a key to the focused widget and pushes the result
// back into the dialog state.
func (m *appModel) updateModalInputs(msg tea.KeyMsg) tea.Cmd {
	modal := m.dispatch.Modal()
	var cmd tea.Cmd
	switch {
	case m.nameInput.Focused():
		m.nameInput, cmd = m.nameInput.Update(msg)
		if m.nameInput.Value() != modal.State().Name {
			modal.SetName(m.nameInput.Value())
		}
	case m.targetInput.Focused():
		m.targetInput, cmd = m.targetInput.Update(msg)
		if m.targetInput.Value() != modal.State().LinkTarget {
			modal.SetLinkTarget(m.targetInput.Value())
		}
	case m.editor.Focused():
		m.editor, cmd = m.editor.Update(msg)
		modal.SetContent(m.editor.Value())
	}
	return cmd
}

func (m appModel) viewerRows() int {
	_, h := m.size()
	return max(h-14, 3)
}

func (m appModel) renderModalOverlay() string {
	st := m.dispatch.Modal().State()
	width := m.modalWidth()
	inner := panelInnerWidth(width)

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.HeaderText)).Render(st.Kind.String())
	lines := []string{title, ""}
	field := func(label string, view string, focused bool) string {
		marker := "  "
		if focused {
			marker = "> "
		}
		return marker + colorizeLabelLine(label, "", m.theme) + " " + view
	}

	switch st.Kind {
	case session.ModalCreateFile, session.ModalCreateFolder:
		lines = append(lines,
			colorizeLabelLine("Directory", m.session.Path, m.theme),
			"",
			field("Name", m.nameInput.View(), true),
		)
	case session.ModalCreateShortcut:
		lines = append(lines,
			colorizeLabelLine("Directory", m.session.Path, m.theme),
			"",
			field("Target", m.targetInput.View(), m.modalField == fieldFirst),
			field("Link name", m.nameInput.View(), m.modalField == fieldSecond),
		)
	case session.ModalViewFile:
		lines = append(lines, colorizeLabelLine("File", st.Target.Name, m.theme), "")
		switch {
		case st.Loading:
			lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.TextMuted)).Render("Loading..."))
		case st.Err != "":
			lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.DangerText)).Render(clampLine(st.Err, inner)))
		default:
			lines = append(lines, m.viewerLines(inner)...)
		}
	case session.ModalWriteFile:
		lines = append(lines,
			field("File", m.nameInput.View(), m.modalField == fieldFirst),
			"",
			m.editor.View(),
		)
	}

	if st.Err != "" && st.Kind != session.ModalViewFile {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.DangerText)).Render(st.Err))
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.HelpText)).Render(dialogHint(st.Kind)))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.PopupBorder)).
		Padding(0, 1).
		Width(width - 2).
		Render(strings.Join(lines, "\n"))
}

func (m appModel) viewerLines(width int) []string {
	content := m.dispatch.Modal().State().Content
	var wrapped []string
	for _, l := range strings.Split(content, "\n") {
		wrapped = append(wrapped, hardWrap(l, width)...)
	}
	rows := m.viewerRows()
	start := clampInt(m.viewScroll, 0, max(len(wrapped)-rows, 0))
	end := min(start+rows, len(wrapped))
	out := append([]string(nil), wrapped[start:end]...)
	if len(wrapped) > rows {
		out = append(out, lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.TextMuted)).
			Render(fmt.Sprintf("lines %d-%d of %d", start+1, end, len(wrapped))))
	}
	return out
}

func dialogHint(k session.ModalKind) string {
	switch k {
	case session.ModalViewFile:
		return "e edit, up/down scroll, enter/esc close"
	case session.ModalWriteFile:
		return "ctrl+s save, tab switch field, esc cancel"
	case session.ModalCreateShortcut:
		return "tab switch field, enter create, esc cancel"
	default:
		return "enter create, esc cancel"
	}
}
