package session

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/kballard/go-shellquote"
)

type Route int

const (
	RouteLocal Route = iota
	RouteChangeDir
	RouteRemote
)

func (r Route) String() string {
	switch r {
	case RouteLocal:
		return "local"
	case RouteChangeDir:
		return "cd"
	default:
		return "remote"
	}
}

var mutatingCommands = map[string]bool{
	"mkdir": true,
	"touch": true,
	"rm":    true,
	"rmdir": true,
	"cp":    true,
	"write": true,
	"ln":    true,
}

// Command is an immutable command name plus arguments.
type Command struct {
	name string
	args []string
}

func NewCommand(name string, args ...string) Command {
	return Command{name: name, args: append([]string(nil), args...)}
}

// Parse splits a typed line on whitespace. It reports false for a blank line.
func Parse(line string) (Command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{name: fields[0], args: fields[1:]}, true
}

func (c Command) Name() string { return c.name }

func (c Command) Args() []string { return append([]string(nil), c.args...) }

func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.args) {
		return ""
	}
	return c.args[i]
}

func (c Command) NArgs() int { return len(c.args) }

func (c Command) Mutating() bool { return mutatingCommands[c.name] }

func (c Command) Route() Route {
	switch c.name {
	case "clear":
		return RouteLocal
	case "write":
		if len(c.args) <= 1 {
			return RouteLocal
		}
		return RouteRemote
	case "cd":
		return RouteChangeDir
	default:
		return RouteRemote
	}
}

// String is the shell-quoted form, suitable for echoing a command that was
// built from a gesture rather than typed.
func (c Command) String() string {
	return shellquote.Join(append([]string{c.name}, c.args...)...)
}

// Display is String with file contents of a write shortened to a size.
func (c Command) Display() string {
	if c.name == "write" && len(c.args) >= 2 {
		content := strings.Join(c.args[1:], " ")
		return shellquote.Join("write", c.args[0]) + " <" + humanize.Bytes(uint64(len(content))) + ">"
	}
	return c.String()
}
