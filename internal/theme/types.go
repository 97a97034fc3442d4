package theme

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

type Hex string

type PaletteHex struct {
	PaneBorderActive   Hex `json:"pane_border_active"`
	PaneBorderInactive Hex `json:"pane_border_inactive"`
	PopupBorder        Hex `json:"popup_border"`
	PopupOuterBorder   Hex `json:"popup_outer_border"`
	Danger             Hex `json:"danger"`
	DangerText         Hex `json:"danger_text"`
	Success            Hex `json:"success"`
	TextPrimary        Hex `json:"text_primary"`
	TextMuted          Hex `json:"text_muted"`
	SelectionBg        Hex `json:"selection_bg"`
	SelectionFg        Hex `json:"selection_fg"`
	HeaderText         Hex `json:"header_text"`
	HelpText           Hex `json:"help_text"`
	StatusText         Hex `json:"status_text"`
	PathText           Hex `json:"path_text"`
	TableHeader        Hex `json:"table_header"`
	ColDir             Hex `json:"col_dir"`
	ColFile            Hex `json:"col_file"`
	ColSymlink         Hex `json:"col_symlink"`
	ColSize            Hex `json:"col_size"`
	ColOwner           Hex `json:"col_owner"`
	Prompt             Hex `json:"prompt"`
	LineSystem         Hex `json:"line_system"`
	LineInput          Hex `json:"line_input"`
	LineOutput         Hex `json:"line_output"`
	LineError          Hex `json:"line_error"`
}

type ThemeFile struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Version int        `json:"version"`
	Colors  PaletteHex `json:"colors"`
}

type PaletteResolved struct {
	PaneBorderActive   string
	PaneBorderInactive string
	PopupBorder        string
	PopupOuterBorder   string
	Danger             string
	DangerText         string
	Success            string
	TextPrimary        string
	TextMuted          string
	SelectionBg        string
	SelectionFg        string
	HeaderText         string
	HelpText           string
	StatusText         string
	PathText           string
	TableHeader        string
	ColDir             string
	ColFile            string
	ColSymlink         string
	ColSize            string
	ColOwner           string
	Prompt             string
	LineSystem         string
	LineInput          string
	LineOutput         string
	LineError          string
}

var (
	hexRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	varRe = regexp.MustCompile(`^var\(--([A-Za-z0-9_-]+)\)$`)
)

type hexField struct {
	key string
	val *Hex
}

// fields lists the palette in a fixed order shared with PaletteResolved.
func (p *PaletteHex) fields() []hexField {
	return []hexField{
		{"pane_border_active", &p.PaneBorderActive},
		{"pane_border_inactive", &p.PaneBorderInactive},
		{"popup_border", &p.PopupBorder},
		{"popup_outer_border", &p.PopupOuterBorder},
		{"danger", &p.Danger},
		{"danger_text", &p.DangerText},
		{"success", &p.Success},
		{"text_primary", &p.TextPrimary},
		{"text_muted", &p.TextMuted},
		{"selection_bg", &p.SelectionBg},
		{"selection_fg", &p.SelectionFg},
		{"header_text", &p.HeaderText},
		{"help_text", &p.HelpText},
		{"status_text", &p.StatusText},
		{"path_text", &p.PathText},
		{"table_header", &p.TableHeader},
		{"col_dir", &p.ColDir},
		{"col_file", &p.ColFile},
		{"col_symlink", &p.ColSymlink},
		{"col_size", &p.ColSize},
		{"col_owner", &p.ColOwner},
		{"prompt", &p.Prompt},
		{"line_system", &p.LineSystem},
		{"line_input", &p.LineInput},
		{"line_output", &p.LineOutput},
		{"line_error", &p.LineError},
	}
}

func (p *PaletteResolved) fields() []*string {
	return []*string{
		&p.PaneBorderActive,
		&p.PaneBorderInactive,
		&p.PopupBorder,
		&p.PopupOuterBorder,
		&p.Danger,
		&p.DangerText,
		&p.Success,
		&p.TextPrimary,
		&p.TextMuted,
		&p.SelectionBg,
		&p.SelectionFg,
		&p.HeaderText,
		&p.HelpText,
		&p.StatusText,
		&p.PathText,
		&p.TableHeader,
		&p.ColDir,
		&p.ColFile,
		&p.ColSymlink,
		&p.ColSize,
		&p.ColOwner,
		&p.Prompt,
		&p.LineSystem,
		&p.LineInput,
		&p.LineOutput,
		&p.LineError,
	}
}

func (p PaletteHex) Validate() error {
	for _, f := range p.fields() {
		if !hexRe.MatchString(string(*f.val)) {
			return fmt.Errorf("invalid hex color for %s: %q", f.key, string(*f.val))
		}
	}
	return nil
}

// WithFallback fills every empty color of p from d.
func (p PaletteResolved) WithFallback(d PaletteResolved) PaletteResolved {
	dst, src := p.fields(), d.fields()
	for i := range dst {
		if *dst[i] == "" {
			*dst[i] = *src[i]
		}
	}
	return p
}

type rawThemeFile struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Version int               `json:"version"`
	Vars    map[string]string `json:"vars"`
	Colors  map[string]string `json:"colors"`
}

// ParseThemeFile reads a theme. Colors missing from the file keep their
// default; values may reference entries of "vars" as var(--name).
func ParseThemeFile(b []byte) (ThemeFile, error) {
	var raw rawThemeFile
	if err := json.Unmarshal(b, &raw); err != nil {
		return ThemeFile{}, err
	}
	if raw.ID == "" {
		return ThemeFile{}, fmt.Errorf("theme id is required")
	}
	t := ThemeFile{
		ID:      raw.ID,
		Name:    raw.Name,
		Version: raw.Version,
		Colors:  DefaultPaletteHex(),
	}
	if t.Version == 0 {
		t.Version = 1
	}

	byKey := map[string]*Hex{}
	for _, f := range t.Colors.fields() {
		byKey[f.key] = f.val
	}
	for key, val := range raw.Colors {
		dst, ok := byKey[key]
		if !ok {
			return ThemeFile{}, fmt.Errorf("unknown color key %q", key)
		}
		resolved, err := resolveVar(strings.TrimSpace(val), raw.Vars, nil)
		if err != nil {
			return ThemeFile{}, fmt.Errorf("%s: %w", key, err)
		}
		*dst = Hex(resolved)
	}
	if err := t.Colors.Validate(); err != nil {
		return ThemeFile{}, err
	}
	return t, nil
}

func resolveVar(val string, vars map[string]string, seen []string) (string, error) {
	if !strings.HasPrefix(val, "var(") {
		return val, nil
	}
	m := varRe.FindStringSubmatch(val)
	if m == nil {
		return "", fmt.Errorf("invalid variable reference %q", val)
	}
	name := m[1]
	for _, s := range seen {
		if s == name {
			return "", fmt.Errorf("circular variable reference: %s", strings.Join(append(seen, name), " -> "))
		}
	}
	next, ok := vars[name]
	if !ok {
		return "", fmt.Errorf("unknown color variable %q", name)
	}
	return resolveVar(strings.TrimSpace(next), vars, append(seen, name))
}

func DefaultPaletteHex() PaletteHex {
	return PaletteHex{
		PaneBorderActive:   "#fff67d",
		PaneBorderInactive: "#585858",
		PopupBorder:        "#fff67d",
		PopupOuterBorder:   "#000000",
		Danger:             "#d70000",
		DangerText:         "#ff5f5f",
		Success:            "#87d787",
		TextPrimary:        "#ddd7c1",
		TextMuted:          "#9e9987",
		SelectionBg:        "#fff67d",
		SelectionFg:        "#000000",
		HeaderText:         "#efe8ca",
		HelpText:           "#d8cfaa",
		StatusText:         "#fff67d",
		PathText:           "#9fd0d0",
		TableHeader:        "#fff1a6",
		ColDir:             "#87afff",
		ColFile:            "#f7e4a3",
		ColSymlink:         "#c7b3e6",
		ColSize:            "#d6d1b3",
		ColOwner:           "#bdb79f",
		Prompt:             "#87d787",
		LineSystem:         "#9e9987",
		LineInput:          "#fff67d",
		LineOutput:         "#ddd7c1",
		LineError:          "#ff5f5f",
	}
}
