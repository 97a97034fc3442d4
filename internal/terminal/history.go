package terminal

// History is the command recall list behind the up/down keys of the prompt.
// The cursor ranges over [0, len]; len means "past the newest entry".
type History struct {
	entries []string
	cursor  int
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Submit(line string) {
	h.entries = append(h.entries, line)
	h.cursor = len(h.entries)
}

func (h *History) Previous() (string, bool) {
	if h.cursor <= 0 {
		return "", false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

func (h *History) Next() string {
	if h.cursor < len(h.entries)-1 {
		h.cursor++
		return h.entries[h.cursor]
	}
	h.cursor = len(h.entries)
	return ""
}

func (h *History) Len() int    { return len(h.entries) }
func (h *History) Cursor() int { return h.cursor }

func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}
