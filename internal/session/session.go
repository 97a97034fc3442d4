package session

import (
	"context"

	"ext2view/internal/remote"
	"ext2view/internal/terminal"
)

// Backend is the remote filesystem service. *remote.Client satisfies it.
type Backend interface {
	Directory(ctx context.Context) (remote.Listing, error)
	ChangeDirectory(ctx context.Context, target string) (remote.Result, error)
	Execute(ctx context.Context, name string, args []string) (remote.Result, error)
}

// Session is the client's view of the remote working directory. Path and
// Entries only change together, from a listing response.
type Session struct {
	Path     string
	Entries  []remote.Entry
	Terminal *terminal.Buffer
	History  *terminal.History

	viewReset bool
}

func New(capacity int) *Session {
	return &Session{
		Terminal: terminal.NewBuffer(capacity),
		History:  terminal.NewHistory(),
	}
}

func (s *Session) Prompt() string {
	return "[" + s.Path + "]$ "
}

func (s *Session) Welcome() {
	s.Terminal.System("Welcome to the ext2 filesystem terminal.")
	s.Terminal.System(`Type commands below; "clear" empties this pane, "write <file>" opens the editor.`)
}

func (s *Session) applyListing(l remote.Listing) {
	s.Path = l.Path
	s.Entries = append([]remote.Entry(nil), l.Items...)
	s.viewReset = true
}

// TakeViewReset reports whether the listing was replaced since the last
// call; the browser then returns its cursor and scroll to the top.
func (s *Session) TakeViewReset() bool {
	r := s.viewReset
	s.viewReset = false
	return r
}
