package theme

import (
	"strconv"

	"github.com/muesli/termenv"
)

// DetectTrueColor reports whether stdout accepts 24-bit colors, honoring
// COLORTERM, NO_COLOR and CLICOLOR_FORCE the way termenv does.
func DetectTrueColor() bool {
	return termenv.EnvColorProfile() == termenv.TrueColor
}

// ResolveForTerminal turns a hex palette into lipgloss color values. Without
// truecolor each color becomes the nearest xterm-256 index. Invalid colors
// resolve to "" so WithFallback can fill them.
func ResolveForTerminal(p PaletteHex, trueColor bool) PaletteResolved {
	var out PaletteResolved
	src, dst := p.fields(), out.fields()
	for i := range src {
		*dst[i] = resolveHex(*src[i].val, trueColor)
	}
	return out
}

func resolveHex(h Hex, trueColor bool) string {
	if !hexRe.MatchString(string(h)) {
		return ""
	}
	if trueColor {
		return string(h)
	}
	if c, ok := termenv.ANSI256.Color(string(h)).(termenv.ANSI256Color); ok {
		return strconv.Itoa(int(c))
	}
	return ""
}
