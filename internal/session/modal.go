package session

import (
	"errors"
	"strings"

	"ext2view/internal/remote"
)

type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalCreateFile
	ModalCreateFolder
	ModalCreateShortcut
	ModalViewFile
	ModalWriteFile
)

func (k ModalKind) String() string {
	switch k {
	case ModalCreateFile:
		return "New file"
	case ModalCreateFolder:
		return "New folder"
	case ModalCreateShortcut:
		return "Create shortcut"
	case ModalViewFile:
		return "View file"
	case ModalWriteFile:
		return "Write file"
	default:
		return ""
	}
}

type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

var errNothingToConfirm = errors.New("dialog has nothing to confirm")

type ModalState struct {
	Kind       ModalKind
	Target     remote.Entry
	Name       string
	LinkTarget string
	Content    string
	Loading    bool
	Err        string
}

type readPurpose int

const (
	readForView readPurpose = iota
	readForEditor
)

type readRequest struct {
	name    string
	seq     int
	purpose readPurpose
}

// ModalController holds the single active dialog. Each open gets a new
// sequence number; read responses carrying an older number are dropped.
type ModalController struct {
	state    ModalState
	seq      int
	revision int
	edited   bool
}

func NewModalController() *ModalController {
	return &ModalController{}
}

func (m *ModalController) State() ModalState { return m.state }

func (m *ModalController) Active() bool { return m.state.Kind != ModalNone }

// Revision changes whenever the controller itself rewrites the fields (open,
// content arrival); views reload their inputs when it moves.
func (m *ModalController) Revision() int { return m.revision }

func (m *ModalController) open(s ModalState) {
	m.seq++
	m.revision++
	m.edited = false
	m.state = s
}

func (m *ModalController) OpenCreateFile() {
	m.open(ModalState{Kind: ModalCreateFile})
}

func (m *ModalController) OpenCreateFolder() {
	m.open(ModalState{Kind: ModalCreateFolder})
}

func (m *ModalController) OpenCreateShortcut(target remote.Entry) {
	m.open(ModalState{
		Kind:       ModalCreateShortcut,
		Target:     target,
		LinkTarget: target.Name,
		Name:       target.Name + "_shortcut",
	})
}

func (m *ModalController) openView(target remote.Entry) readRequest {
	m.open(ModalState{Kind: ModalViewFile, Target: target, Name: target.Name, Loading: true})
	return readRequest{name: target.Name, seq: m.seq, purpose: readForView}
}

func (m *ModalController) openWrite(name, content string) (readRequest, bool) {
	m.open(ModalState{Kind: ModalWriteFile, Name: name, Content: content})
	if strings.TrimSpace(name) == "" {
		return readRequest{}, false
	}
	return readRequest{name: name, seq: m.seq, purpose: readForEditor}, true
}

// edit moves a file view into the editor. Content already fetched is carried
// over; a view still loading asks for a fresh read for the editor.
func (m *ModalController) edit() (readRequest, bool, bool) {
	if m.state.Kind != ModalViewFile {
		return readRequest{}, false, false
	}
	prev := m.state
	content := prev.Content
	if prev.Err != "" {
		content = ""
	}
	m.open(ModalState{Kind: ModalWriteFile, Target: prev.Target, Name: prev.Name, Content: content})
	if prev.Loading {
		return readRequest{name: prev.Name, seq: m.seq, purpose: readForEditor}, true, true
	}
	return readRequest{}, false, true
}

func (m *ModalController) SetName(v string) {
	if m.state.Name != v {
		m.state.Name = v
		m.state.Err = ""
	}
}

func (m *ModalController) SetLinkTarget(v string) {
	if m.state.LinkTarget != v {
		m.state.LinkTarget = v
		m.state.Err = ""
	}
}

func (m *ModalController) SetContent(v string) {
	if m.state.Content != v {
		m.state.Content = v
		m.edited = true
	}
}

func (m *ModalController) Close() {
	m.seq++
	m.revision++
	m.edited = false
	m.state = ModalState{}
}

// Confirm validates the active dialog and returns the command it stands
// for. On success the dialog closes; on a ValidationError it stays open with
// the message set inline.
func (m *ModalController) Confirm() (Command, error) {
	var cmd Command
	switch m.state.Kind {
	case ModalCreateFile, ModalCreateFolder:
		name := strings.TrimSpace(m.state.Name)
		if name == "" {
			return Command{}, m.invalid("name")
		}
		if m.state.Kind == ModalCreateFile {
			cmd = NewCommand("touch", name)
		} else {
			cmd = NewCommand("mkdir", name)
		}
	case ModalCreateShortcut:
		target := strings.TrimSpace(m.state.LinkTarget)
		name := strings.TrimSpace(m.state.Name)
		if target == "" {
			return Command{}, m.invalid("target")
		}
		if name == "" {
			return Command{}, m.invalid("link name")
		}
		cmd = NewCommand("ln", "-s", target, name)
	case ModalWriteFile:
		name := strings.TrimSpace(m.state.Name)
		if name == "" {
			return Command{}, m.invalid("file name")
		}
		cmd = NewCommand("write", name, m.state.Content)
	default:
		return Command{}, errNothingToConfirm
	}
	m.Close()
	return cmd, nil
}

func (m *ModalController) invalid(field string) error {
	err := &ValidationError{Field: field}
	m.state.Err = err.Error()
	return err
}

// applyContent installs a read response. View reads show failures inline;
// editor prefill failures leave the editor as it is. Stale responses and
// prefills arriving after the user started typing are ignored.
func (m *ModalController) applyContent(msg ContentMsg) bool {
	if msg.seq != m.seq {
		return false
	}
	failed, reason := msg.failure()
	switch {
	case msg.purpose == readForView && m.state.Kind == ModalViewFile:
		m.state.Loading = false
		if failed {
			m.state.Err = reason
			m.state.Content = ""
		} else {
			m.state.Content = msg.Result.Output
		}
	case msg.purpose == readForEditor && m.state.Kind == ModalWriteFile:
		if failed || m.edited {
			return false
		}
		m.state.Content = msg.Result.Output
	default:
		return false
	}
	m.revision++
	return true
}
