package terminal

import "strings"

const DefaultCapacity = 100

type Kind int

const (
	KindSystem Kind = iota
	KindInput
	KindOutput
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSystem:
		return "system"
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

type Line struct {
	Text string
	Kind Kind
}

// Buffer is the bounded scrollback of the terminal pane. It never holds more
// than its capacity; the oldest line is dropped to make room for a new one.
type Buffer struct {
	lines    []Line
	capacity int
	follow   bool
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		lines:    make([]Line, 0, capacity),
		capacity: capacity,
	}
}

func (b *Buffer) Append(line Line) {
	if len(b.lines) >= b.capacity {
		copy(b.lines, b.lines[1:])
		b.lines = b.lines[:len(b.lines)-1]
	}
	b.lines = append(b.lines, line)
	b.follow = true
}

func (b *Buffer) System(text string) { b.Append(Line{Text: text, Kind: KindSystem}) }
func (b *Buffer) Input(text string)  { b.Append(Line{Text: text, Kind: KindInput}) }
func (b *Buffer) Error(text string)  { b.Append(Line{Text: text, Kind: KindError}) }

// Output records a command result. A single trailing newline is dropped so
// that backend output such as "hello\n" renders as one row.
func (b *Buffer) Output(text string) {
	b.Append(Line{Text: strings.TrimSuffix(text, "\n"), Kind: KindOutput})
}

func (b *Buffer) Clear() {
	b.lines = b.lines[:0]
	b.follow = true
}

func (b *Buffer) Lines() []Line {
	return append([]Line(nil), b.lines...)
}

func (b *Buffer) Len() int      { return len(b.lines) }
func (b *Buffer) Capacity() int { return b.capacity }

// TakeFollow reports whether lines changed since the last call, which is the
// signal for the view to scroll to the newest line.
func (b *Buffer) TakeFollow() bool {
	f := b.follow
	b.follow = false
	return f
}
