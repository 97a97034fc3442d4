package tui

type activePane int

const (
	paneBrowser activePane = iota
	paneTerminal
)

func paneLabel(p activePane) string {
	if p == paneTerminal {
		return "terminal"
	}
	return "browser"
}

func globalHelp() string {
	return "tab switch pane, right-click menu, double-click open, ctrl+c quit"
}

func browserHelp() string {
	return "Browser: j/k move, enter open, backspace up, m item menu, b folder menu, n new file, N new folder, r refresh, q quit"
}

func terminalHelp() string {
	return "Terminal: enter run, up/down history, pgup/pgdown scroll, esc back to browser"
}

func modalHelp() string {
	return "Dialog: tab next field, enter confirm, esc cancel"
}
