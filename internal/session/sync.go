package session

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ext2view/internal/logging"
	"ext2view/internal/remote"
)

// cdPhase names the steps of a directory change. Each phase is issued only
// after the previous one's response has been applied.
type cdPhase int

const (
	cdPhaseRequest cdPhase = iota
	cdPhaseRefresh
	cdPhaseEcho
)

func (p cdPhase) String() string {
	switch p {
	case cdPhaseRequest:
		return "request"
	case cdPhaseRefresh:
		return "refresh"
	default:
		return "echo"
	}
}

type ListingMsg struct {
	Listing remote.Listing
	Err     error

	inCD bool
}

type ChangeDirMsg struct {
	Target string
	Result remote.Result
	Err    error
}

// Sync keeps Session.Path and Session.Entries in step with the backend.
type Sync struct {
	ctx     context.Context
	backend Backend
	session *Session
}

func NewSync(ctx context.Context, backend Backend, s *Session) *Sync {
	return &Sync{ctx: ctx, backend: backend, session: s}
}

func (s *Sync) Refresh() tea.Cmd {
	return s.fetch(false)
}

func (s *Sync) fetch(inCD bool) tea.Cmd {
	ctx, backend := s.ctx, s.backend
	return func() tea.Msg {
		l, err := backend.Directory(ctx)
		return ListingMsg{Listing: l, Err: err, inCD: inCD}
	}
}

func (s *Sync) ChangeDirectory(target string) tea.Cmd {
	ctx, backend := s.ctx, s.backend
	logging.Debug("change directory", zap.String("phase", cdPhaseRequest.String()), zap.String("target", logging.Sanitize(target)))
	return func() tea.Msg {
		res, err := backend.ChangeDirectory(ctx, target)
		return ChangeDirMsg{Target: target, Result: res, Err: err}
	}
}

func (s *Sync) applyChangeDir(msg ChangeDirMsg) tea.Cmd {
	if msg.Err != nil {
		s.session.Terminal.Error(fmt.Sprintf("cd %s: %v", msg.Target, msg.Err))
		return nil
	}
	if !msg.Result.Success {
		s.session.Terminal.Error(msg.Result.Output)
		return nil
	}
	logging.Debug("change directory", zap.String("phase", cdPhaseRefresh.String()), zap.String("path", logging.Sanitize(msg.Result.Output)))
	return s.fetch(true)
}

// applyListing installs a listing. When it closes the refresh phase of a
// directory change the echo phase is returned; the echo runs even if the
// refresh failed so the user still sees where the backend now is.
func (s *Sync) applyListing(msg ListingMsg) tea.Cmd {
	if msg.Err != nil {
		s.session.Terminal.Error(fmt.Sprintf("refresh failed: %v", msg.Err))
	} else {
		s.session.applyListing(msg.Listing)
	}
	if !msg.inCD {
		return nil
	}
	logging.Debug("change directory", zap.String("phase", cdPhaseEcho.String()))
	return s.echoPath()
}

func (s *Sync) echoPath() tea.Cmd {
	ctx, backend := s.ctx, s.backend
	cmd := NewCommand("pwd")
	return func() tea.Msg {
		res, err := backend.Execute(ctx, cmd.Name(), cmd.Args())
		return ResultMsg{Command: cmd, Result: res, Err: err}
	}
}
