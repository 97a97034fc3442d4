package session

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ext2view/internal/logging"
	"ext2view/internal/remote"
)

type ResultMsg struct {
	Command Command
	Result  remote.Result
	Err     error
}

type ContentMsg struct {
	Name   string
	Result remote.Result
	Err    error

	seq     int
	purpose readPurpose
}

func (m ContentMsg) failure() (bool, string) {
	if m.Err != nil {
		return true, m.Err.Error()
	}
	if !m.Result.Success {
		return true, m.Result.Output
	}
	return false, ""
}

// Dispatcher routes typed lines and gesture commands to local handling, the
// directory-change protocol, or the generic command endpoint.
type Dispatcher struct {
	ctx     context.Context
	backend Backend
	session *Session
	sync    *Sync
	modal   *ModalController
	menu    *ContextMenuController
}

func NewDispatcher(ctx context.Context, backend Backend, s *Session) *Dispatcher {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Dispatcher{
		ctx:     ctx,
		backend: backend,
		session: s,
		sync:    NewSync(ctx, backend, s),
		modal:   NewModalController(),
		menu:    NewContextMenuController(),
	}
}

func (d *Dispatcher) Session() *Session            { return d.session }
func (d *Dispatcher) Modal() *ModalController      { return d.modal }
func (d *Dispatcher) Menu() *ContextMenuController { return d.menu }
func (d *Dispatcher) Refresh() tea.Cmd             { return d.sync.Refresh() }

// Submit handles one line typed at the prompt.
func (d *Dispatcher) Submit(line string) tea.Cmd {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	d.session.History.Submit(line)
	d.session.Terminal.Input(d.session.Prompt() + line)
	cmd, ok := Parse(line)
	if !ok {
		return nil
	}
	return d.Dispatch(cmd)
}

// Run dispatches a command built from a gesture, echoing it first the way a
// typed line would be.
func (d *Dispatcher) Run(cmd Command) tea.Cmd {
	d.session.Terminal.Input(d.session.Prompt() + cmd.Display())
	return d.Dispatch(cmd)
}

func (d *Dispatcher) Dispatch(cmd Command) tea.Cmd {
	route := cmd.Route()
	logging.Debug("dispatch",
		zap.String("cmd", logging.Sanitize(cmd.Name())),
		zap.Int("args", cmd.NArgs()),
		zap.String("route", route.String()))

	switch route {
	case RouteLocal:
		return d.local(cmd)
	case RouteChangeDir:
		return d.sync.ChangeDirectory(cmd.Arg(0))
	default:
		return d.execute(cmd)
	}
}

func (d *Dispatcher) local(cmd Command) tea.Cmd {
	switch cmd.Name() {
	case "clear":
		d.session.Terminal.Clear()
		return nil
	case "write":
		return d.OpenWrite(cmd.Arg(0))
	}
	return nil
}

func (d *Dispatcher) execute(cmd Command) tea.Cmd {
	ctx, backend := d.ctx, d.backend
	return func() tea.Msg {
		res, err := backend.Execute(ctx, cmd.Name(), cmd.Args())
		return ResultMsg{Command: cmd, Result: res, Err: err}
	}
}

func (d *Dispatcher) read(req readRequest) tea.Cmd {
	ctx, backend := d.ctx, d.backend
	return func() tea.Msg {
		res, err := backend.Execute(ctx, "cat", []string{req.name})
		return ContentMsg{Name: req.name, Result: res, Err: err, seq: req.seq, purpose: req.purpose}
	}
}

// Update applies a response produced by one of the dispatcher's commands. It
// reports false for messages it does not own.
func (d *Dispatcher) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case ResultMsg:
		return d.applyResult(msg), true
	case ChangeDirMsg:
		return d.sync.applyChangeDir(msg), true
	case ListingMsg:
		return d.sync.applyListing(msg), true
	case ContentMsg:
		d.modal.applyContent(msg)
		return nil, true
	}
	return nil, false
}

// applyResult renders the outcome line, then refreshes after any mutating
// command whether or not the backend reported success. A transport failure
// skips the refresh.
func (d *Dispatcher) applyResult(msg ResultMsg) tea.Cmd {
	if msg.Err != nil {
		d.session.Terminal.Error(fmt.Sprintf("%s: %v", msg.Command.Name(), msg.Err))
		return nil
	}
	if msg.Result.Success {
		d.session.Terminal.Output(msg.Result.Output)
	} else {
		d.session.Terminal.Error(msg.Result.Output)
	}
	if msg.Command.Mutating() {
		return d.sync.Refresh()
	}
	return nil
}

func (d *Dispatcher) OpenView(entry remote.Entry) tea.Cmd {
	d.menu.Escape()
	return d.read(d.modal.openView(entry))
}

func (d *Dispatcher) OpenWrite(name string) tea.Cmd {
	d.menu.Escape()
	req, ok := d.modal.openWrite(name, "")
	if !ok {
		return nil
	}
	return d.read(req)
}

func (d *Dispatcher) EditModal() tea.Cmd {
	req, needRead, ok := d.modal.edit()
	if !ok || !needRead {
		return nil
	}
	return d.read(req)
}

// ConfirmModal dispatches the active dialog's command. Validation failures
// stay inside the dialog.
func (d *Dispatcher) ConfirmModal() tea.Cmd {
	cmd, err := d.modal.Confirm()
	if err != nil {
		return nil
	}
	return d.Run(cmd)
}

// Activate is the double-click behavior: directories are entered, anything
// else is opened in the viewer.
func (d *Dispatcher) Activate(entry remote.Entry) tea.Cmd {
	if entry.IsDir {
		return d.Run(NewCommand("cd", entry.Name))
	}
	return d.OpenView(entry)
}

func (d *Dispatcher) Perform(action MenuAction, target remote.Entry) tea.Cmd {
	d.menu.Escape()
	switch action {
	case ActionNewFile:
		d.modal.OpenCreateFile()
	case ActionNewFolder:
		d.modal.OpenCreateFolder()
	case ActionRefresh:
		return d.sync.Refresh()
	case ActionOpen, ActionView:
		return d.Activate(target)
	case ActionEdit:
		return d.OpenWrite(target.Name)
	case ActionCreateShortcut:
		d.modal.OpenCreateShortcut(target)
	case ActionDelete:
		if target.IsDir && !target.IsSymlink {
			return d.Run(NewCommand("rmdir", target.Name))
		}
		return d.Run(NewCommand("rm", target.Name))
	}
	return nil
}
