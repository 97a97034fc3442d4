package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func overlayCentered(base, overlay string, width, height int) string {
	overLines := strings.Split(overlay, "\n")
	overW := 0
	for _, l := range overLines {
		if w := lipgloss.Width(stripANSI(l)); w > overW {
			overW = w
		}
	}
	return overlayAt(base, overlay, (width-overW)/2, (height-len(overLines))/2, width, height)
}

// overlayAt draws overlay with its top-left corner at (x, y). Only the base
// rows under the overlay lose their styling.
func overlayAt(base, overlay string, x, y, width, height int) string {
	baseLines := strings.Split(base, "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	overLines := strings.Split(overlay, "\n")
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	overW := 0
	for _, l := range overLines {
		if w := lipgloss.Width(stripANSI(l)); w > overW {
			overW = w
		}
	}
	for i := 0; i < len(overLines) && y+i < len(baseLines); i++ {
		baseRunes := []rune(normalizeLines(stripANSI(baseLines[y+i]), width, 1)[0])
		for len(baseRunes) < x+overW {
			baseRunes = append(baseRunes, ' ')
		}
		lineWidth := lipgloss.Width(stripANSI(overLines[i]))
		if x+lineWidth > len(baseRunes) {
			lineWidth = len(baseRunes) - x
		}
		prefix := string(baseRunes[:x])
		suffix := ""
		if x+lineWidth < len(baseRunes) {
			suffix = string(baseRunes[x+lineWidth:])
		}
		baseLines[y+i] = prefix + overLines[i] + suffix
	}
	return strings.Join(baseLines, "\n")
}

func applyBackdrop(base string, width, height int) string {
	lines := normalizeLines(stripANSI(base), width, height)
	for i := range lines {
		r := []rune(lines[i])
		for j := range r {
			r[j] = softenRune(r[j])
		}
		lines[i] = string(r)
	}
	return strings.Join(lines, "\n")
}

func normalizeLines(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = max(len(lines), 1)
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for i := range lines {
		r := []rune(lines[i])
		if len(r) < width {
			lines[i] = lines[i] + strings.Repeat(" ", width-len(r))
		} else if len(r) > width {
			lines[i] = string(r[:width])
		}
	}
	return lines
}

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func softenRune(r rune) rune {
	switch r {
	case '│', '┃':
		return '┆'
	case '─', '━':
		return '┄'
	case '┬', '┴', '┼':
		return '┼'
	case '├':
		return '┝'
	case '┤':
		return '┥'
	case '┌':
		return '┍'
	case '┐':
		return '┑'
	case '└':
		return '┕'
	case '┘':
		return '┙'
	default:
		return r
	}
}

func clampLine(s string, maxWidth int) string {
	if maxWidth <= 1 {
		return truncate(s, 1)
	}
	if len([]rune(s)) <= maxWidth {
		return s
	}
	return truncate(s, maxWidth)
}

func panelInnerWidth(totalWidth int) int {
	w := totalWidth - 4
	if w < 1 {
		return 1
	}
	return w
}

// hardWrap splits s on newlines and cuts each piece at width runes, keeping
// spacing intact.
func hardWrap(s string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	s = strings.ReplaceAll(s, "\t", "    ")
	var out []string
	for _, part := range strings.Split(s, "\n") {
		r := []rune(strings.TrimRight(part, "\r"))
		if len(r) == 0 {
			out = append(out, "")
			continue
		}
		for len(r) > width {
			out = append(out, string(r[:width]))
			r = r[width:]
		}
		out = append(out, string(r))
	}
	return out
}

func formatVersionLabel(v string) string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return "vdev"
	}
	if strings.HasPrefix(trimmed, "v") {
		return trimmed
	}
	return "v" + trimmed
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
