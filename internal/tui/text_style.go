package tui

import (
	"github.com/charmbracelet/lipgloss"

	"ext2view/internal/terminal"
)

func lineStyle(kind terminal.Kind, theme UITheme) lipgloss.Style {
	switch kind {
	case terminal.KindSystem:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LineSystem)).Italic(true)
	case terminal.KindInput:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LineInput))
	case terminal.KindError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LineError))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(theme.LineOutput))
	}
}

func colorizeLabelLine(label, value string, theme UITheme) string {
	labelStyled := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.TableHeader)).Render(label + ":")
	if value == "" {
		return labelStyled
	}
	return labelStyled + " " + lipgloss.NewStyle().Foreground(lipgloss.Color(theme.TextPrimary)).Render(value)
}
