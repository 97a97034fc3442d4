package tui

import (
	"ext2view/internal/theme"
)

type UITheme struct {
	theme.PaletteResolved
}

func defaultUITheme() UITheme {
	return UITheme{theme.ResolveForTerminal(theme.DefaultPaletteHex(), theme.DetectTrueColor())}
}

func (t UITheme) withDefaults() UITheme {
	return UITheme{t.PaletteResolved.WithFallback(defaultUITheme().PaletteResolved)}
}
