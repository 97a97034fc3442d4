package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ext2view/internal/config"
)

func TestPaletteHexValidate(t *testing.T) {
	p := DefaultPaletteHex()
	if p.PaneBorderActive != "#fff67d" || p.PopupBorder != "#fff67d" || p.SelectionBg != "#fff67d" {
		t.Fatalf("default accent colors should be #fff67d")
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected valid default palette: %v", err)
	}
	p.LineError = "red"
	err := p.Validate()
	if err == nil || !strings.Contains(err.Error(), "line_error") {
		t.Fatalf("expected invalid hex error naming line_error, got %v", err)
	}
}

func TestResolveForTerminal(t *testing.T) {
	p := DefaultPaletteHex()
	resolvedTrue := ResolveForTerminal(p, true)
	if resolvedTrue.Danger != string(p.Danger) || resolvedTrue.LineError != string(p.LineError) {
		t.Fatalf("expected truecolor to keep hex")
	}
	resolved256 := ResolveForTerminal(p, false)
	if resolved256.Danger == "" || resolved256.Danger[0] == '#' {
		t.Fatalf("expected numeric terminal color for 256 fallback, got %q", resolved256.Danger)
	}
	if resolved256.ColDir == "" || resolved256.Prompt == "" {
		t.Fatalf("expected every field to resolve")
	}
	mapped := ResolveForTerminal(PaletteHex{SelectionFg: "#000000", SelectionBg: "#ffffff", Prompt: "oops"}, false)
	if mapped.SelectionFg != "16" || mapped.SelectionBg != "231" {
		t.Fatalf("expected cube corners 16/231, got %q/%q", mapped.SelectionFg, mapped.SelectionBg)
	}
	if mapped.Prompt != "" || mapped.LineOutput != "" {
		t.Fatalf("invalid or missing colors should resolve empty, got %q/%q", mapped.Prompt, mapped.LineOutput)
	}
}

func TestWithFallbackFillsEmptyFields(t *testing.T) {
	d := ResolveForTerminal(DefaultPaletteHex(), true)
	got := PaletteResolved{Prompt: "#123456"}.WithFallback(d)
	if got.Prompt != "#123456" {
		t.Fatalf("set field overwritten: %q", got.Prompt)
	}
	if got.LineOutput != d.LineOutput || got.ColDir != d.ColDir {
		t.Fatalf("empty fields not filled")
	}
}

func TestParseThemeFilePartialColorsDefaultFilled(t *testing.T) {
	raw := []byte(`{
		"id":"legacy",
		"name":"Legacy",
		"version":1,
		"colors":{
			"pane_border_active":"#89b4fa",
			"text_primary":"#cdd6f4"
		}
	}`)
	tf, err := ParseThemeFile(raw)
	if err != nil {
		t.Fatalf("expected theme to parse: %v", err)
	}
	if tf.Colors.PaneBorderActive != "#89b4fa" {
		t.Fatalf("explicit color lost")
	}
	if tf.Colors.ColDir != DefaultPaletteHex().ColDir {
		t.Fatalf("expected missing fields to be default-filled")
	}
}

func TestParseThemeFileWithVars(t *testing.T) {
	raw := []byte(`{
		"id":"vars-theme",
		"name":"Vars Theme",
		"version":1,
		"vars":{
			"blue":"#112233",
			"accent":"var(--blue)"
		},
		"colors":{
			"pane_border_active":"var(--accent)",
			"text_primary":"#abcdef"
		}
	}`)
	tf, err := ParseThemeFile(raw)
	if err != nil {
		t.Fatalf("expected vars theme to parse: %v", err)
	}
	if got := string(tf.Colors.PaneBorderActive); got != "#112233" {
		t.Fatalf("unexpected resolved pane_border_active: %s", got)
	}
	if got := string(tf.Colors.TextPrimary); got != "#abcdef" {
		t.Fatalf("unexpected text_primary: %s", got)
	}
}

func TestParseThemeFileUnknownVarFails(t *testing.T) {
	raw := []byte(`{"id":"bad-vars","colors":{"pane_border_active":"var(--missing)"}}`)
	_, err := ParseThemeFile(raw)
	if err == nil || !strings.Contains(err.Error(), "unknown color variable") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseThemeFileVarCycleFails(t *testing.T) {
	raw := []byte(`{
		"id":"cycle-vars",
		"vars":{"a":"var(--b)","b":"var(--a)"},
		"colors":{"pane_border_active":"var(--a)"}
	}`)
	_, err := ParseThemeFile(raw)
	if err == nil || !strings.Contains(err.Error(), "circular variable reference") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseThemeFileInvalidVarFormatFails(t *testing.T) {
	raw := []byte(`{"id":"invalid-ref","colors":{"pane_border_active":"var(blue)"}}`)
	if _, err := ParseThemeFile(raw); err == nil {
		t.Fatalf("expected invalid var format error")
	}
}

func TestParseThemeFileUnknownKeyFails(t *testing.T) {
	raw := []byte(`{"id":"x","colors":{"logo_line_1":"#ffffff"}}`)
	if _, err := ParseThemeFile(raw); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestInstallListAndActivate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	src := filepath.Join(t.TempDir(), "ocean.json")
	if err := os.WriteFile(src, []byte(`{"id":"ocean","name":"Ocean","colors":{"prompt":"#00afff"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := InstallFile(src); err != nil {
		t.Fatalf("install: %v", err)
	}
	ids, err := ListLocalThemeIDs()
	if err != nil || len(ids) != 1 || ids[0] != "ocean" {
		t.Fatalf("list = %v, %v", ids, err)
	}

	cfg := config.Default()
	cfg.Theme.Active = "ocean"
	hex, id, err := LoadActivePaletteHex(cfg)
	if err != nil || id != "ocean" || hex.Prompt != "#00afff" {
		t.Fatalf("active palette = %q %q %v", id, hex.Prompt, err)
	}

	if err := RemoveLocalTheme("ocean"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, id, err := LoadActivePaletteHex(cfg); err == nil || id != DefaultID {
		t.Fatalf("missing theme should fall back to default with error, got %q %v", id, err)
	}
}
