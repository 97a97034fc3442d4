package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ext2view/internal/remote"
)

type columnSpec struct {
	title  string
	min    int
	max    int
	weight int
}

// browserChromeRows is the top border, header row and header separator above
// the first entry.
const browserChromeRows = 3

type dirBrowser struct {
	entries []remote.Entry
	cursor  int
	scroll  int
	height  int
}

func newDirBrowser() dirBrowser {
	return dirBrowser{height: 12}
}

// replaceEntries installs a new listing and returns to the top.
func (b *dirBrowser) replaceEntries(entries []remote.Entry) {
	b.entries = append([]remote.Entry(nil), entries...)
	b.cursor = 0
	b.scroll = 0
}

func (b *dirBrowser) setHeight(h int) {
	b.height = h
	b.ensureVisible()
}

func (b *dirBrowser) moveCursor(delta int) {
	if len(b.entries) == 0 {
		return
	}
	b.cursor = clampInt(b.cursor+delta, 0, len(b.entries)-1)
	b.ensureVisible()
}

func (b *dirBrowser) pageMove(delta int) {
	b.moveCursor(delta * b.bodyRows())
}

func (b *dirBrowser) scrollBy(delta int) {
	maxScroll := len(b.entries) - b.bodyRows()
	if maxScroll < 0 {
		maxScroll = 0
	}
	b.scroll = clampInt(b.scroll+delta, 0, maxScroll)
	if b.cursor < b.scroll {
		b.cursor = b.scroll
	}
	if last := b.scroll + b.bodyRows() - 1; b.cursor > last {
		b.cursor = clampInt(last, 0, max(len(b.entries)-1, 0))
	}
}

func (b *dirBrowser) current() (remote.Entry, bool) {
	if b.cursor < 0 || b.cursor >= len(b.entries) {
		return remote.Entry{}, false
	}
	return b.entries[b.cursor], true
}

// entryAtRow maps a row inside the browser box (0 = top border) to an entry.
func (b *dirBrowser) entryAtRow(row int) (int, bool) {
	body := row - browserChromeRows
	if body < 0 || body >= b.bodyRows() {
		return 0, false
	}
	idx := b.scroll + body
	if idx >= len(b.entries) {
		return 0, false
	}
	return idx, true
}

func (b *dirBrowser) selectIndex(idx int) {
	if idx < 0 || idx >= len(b.entries) {
		return
	}
	b.cursor = idx
	b.ensureVisible()
}

func (b *dirBrowser) ensureVisible() {
	if len(b.entries) == 0 {
		b.cursor = 0
		b.scroll = 0
		return
	}
	rows := b.bodyRows()
	if b.cursor < b.scroll {
		b.scroll = b.cursor
	}
	if b.cursor >= b.scroll+rows {
		b.scroll = b.cursor - rows + 1
	}
	maxScroll := len(b.entries) - rows
	if maxScroll < 0 {
		maxScroll = 0
	}
	b.scroll = clampInt(b.scroll, 0, maxScroll)
}

func (b dirBrowser) bodyRows() int {
	height := b.height
	if height <= 0 {
		height = 12
	}
	// top border, header, separator, bottom border
	rows := height - browserChromeRows - 1
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (b dirBrowser) render(totalWidth int, focused bool, theme UITheme) string {
	cols := []columnSpec{
		{title: "T", min: 3, max: 3, weight: 0},
		{title: "Name", min: 12, max: 80, weight: 4},
		{title: "Size", min: 8, max: 12, weight: 1},
		{title: "Owner", min: 6, max: 16, weight: 1},
		{title: "Mode", min: 10, max: 16, weight: 1},
		{title: "Modified", min: 10, max: 23, weight: 2},
	}
	widths := allocateColumnWidths(totalWidth-2, cols)
	rowLimit := b.bodyRows()
	start := b.scroll
	end := start + rowLimit
	if end > len(b.entries) {
		end = len(b.entries)
	}

	borderColor := theme.PaneBorderInactive
	if focused {
		borderColor = theme.PaneBorderActive
	}
	border := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))

	lines := make([]string, 0, rowLimit+4)
	lines = append(lines, border.Render(drawBorder("┌", "┬", "┐", widths)))
	lines = append(lines, drawRow(remote.Entry{}, []string{"T", "Name", "Size", "Owner", "Mode", "Modified"}, widths, false, theme, true, border))
	lines = append(lines, border.Render(drawBorder("├", "┼", "┤", widths)))
	for i := start; i < end; i++ {
		e := b.entries[i]
		name := e.Name
		if e.IsDir && !e.IsParent() {
			name += "/"
		}
		if e.IsSymlink {
			name += " @"
		}
		lines = append(lines, drawRow(e, []string{entryGlyph(e), name, string(e.Size), e.Owner, e.Mode, e.Modified}, widths, i == b.cursor && focused, theme, false, border))
	}
	if len(b.entries) == 0 && rowLimit > 0 {
		lines = append(lines, drawRow(remote.Entry{}, []string{"", "(empty)"}, widths, false, theme, false, border))
		end = start + 1
	}
	for i := end; i < start+rowLimit; i++ {
		lines = append(lines, drawRow(remote.Entry{}, nil, widths, false, theme, false, border))
	}
	lines = append(lines, border.Render(drawBorder("└", "┴", "┘", widths)))
	return strings.Join(lines, "\n")
}

func entryGlyph(e remote.Entry) string {
	switch {
	case e.IsSymlink:
		return "l"
	case e.IsDir:
		return "d"
	default:
		return "-"
	}
}

func entryColor(e remote.Entry, theme UITheme) string {
	switch {
	case e.IsSymlink:
		return theme.ColSymlink
	case e.IsDir:
		return theme.ColDir
	default:
		return theme.ColFile
	}
}

func drawBorder(left, mid, right string, widths []int) string {
	parts := make([]string, 0, len(widths)+2)
	parts = append(parts, left)
	for i, w := range widths {
		parts = append(parts, strings.Repeat("─", w))
		if i != len(widths)-1 {
			parts = append(parts, mid)
		}
	}
	parts = append(parts, right)
	return strings.Join(parts, "")
}

func drawRow(e remote.Entry, values []string, widths []int, selected bool, theme UITheme, isHeader bool, border lipgloss.Style) string {
	sep := border.Render("│")
	parts := make([]string, 0, len(widths)+2)
	parts = append(parts, sep)
	columnColors := []string{
		entryColor(e, theme),
		entryColor(e, theme),
		theme.ColSize,
		theme.ColOwner,
		theme.TextMuted,
		theme.TextMuted,
	}
	for i := range widths {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		cellText := truncate(v, widths[i])
		cell := pad(cellText, widths[i])
		if i == 0 {
			cell = center(cellText, widths[i])
		}
		cellStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(columnColors[i]))
		if isHeader {
			cellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.TableHeader)).Bold(true)
		}
		if selected {
			cellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(theme.SelectionFg)).
				Background(lipgloss.Color(theme.SelectionBg))
		}
		parts = append(parts, cellStyle.Render(cell))
		if i != len(widths)-1 {
			parts = append(parts, sep)
		}
	}
	parts = append(parts, sep)
	return strings.Join(parts, "")
}

func allocateColumnWidths(total int, cols []columnSpec) []int {
	if total < 10 {
		total = 10
	}
	sep := len(cols) - 1
	available := total - sep
	widths := make([]int, len(cols))
	used := 0
	for i, c := range cols {
		widths[i] = c.min
		used += c.min
	}
	remaining := available - used
	for remaining > 0 {
		changed := false
		for i, c := range cols {
			if remaining == 0 {
				break
			}
			if widths[i] >= c.max || c.weight == 0 {
				continue
			}
			widths[i]++
			remaining--
			changed = true
		}
		if !changed {
			break
		}
	}
	return widths
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "~"
	}
	return string(r[:max-1]) + "~"
}

func pad(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

func center(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	left := (width - len(r)) / 2
	right := width - len(r) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
