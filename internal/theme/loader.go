package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ext2view/internal/config"
)

const DefaultID = "default"

// LoadActivePaletteHex returns the configured palette. Any problem falls back
// to the default palette and is reported alongside it.
func LoadActivePaletteHex(cfg config.Config) (PaletteHex, string, error) {
	if cfg.Theme.Active == "" || cfg.Theme.Active == DefaultID {
		return DefaultPaletteHex(), DefaultID, nil
	}
	themeFile, err := loadLocal(cfg.Theme.Active)
	if err != nil {
		return DefaultPaletteHex(), DefaultID, err
	}
	if themeFile.ID != cfg.Theme.Active {
		return DefaultPaletteHex(), DefaultID, fmt.Errorf("theme id mismatch: expected %q got %q", cfg.Theme.Active, themeFile.ID)
	}
	return themeFile.Colors, themeFile.ID, nil
}

func ActivePalette(cfg config.Config) (PaletteResolved, string, error) {
	hex, id, err := LoadActivePaletteHex(cfg)
	return ResolveForTerminal(hex, DetectTrueColor()), id, err
}

func loadLocal(id string) (ThemeFile, error) {
	themesDir, err := config.ThemesDir()
	if err != nil {
		return ThemeFile{}, err
	}
	b, err := os.ReadFile(filepath.Join(themesDir, id+".json"))
	if err != nil {
		return ThemeFile{}, err
	}
	return ParseThemeFile(b)
}

// InstallFile validates a theme file from disk and stores it under its id.
func InstallFile(path string) (ThemeFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ThemeFile{}, err
	}
	tf, err := ParseThemeFile(b)
	if err != nil {
		return ThemeFile{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if tf.ID == DefaultID || strings.ContainsAny(tf.ID, `/\`) {
		return ThemeFile{}, fmt.Errorf("invalid theme id %q", tf.ID)
	}
	if err := SaveThemeFile(tf); err != nil {
		return ThemeFile{}, err
	}
	return tf, nil
}

func SaveThemeFile(theme ThemeFile) error {
	if err := theme.Colors.Validate(); err != nil {
		return err
	}
	themesDir, err := config.ThemesDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(themesDir, 0o755); err != nil {
		return err
	}
	out, err := json.MarshalIndent(theme, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(themesDir, theme.ID+".json"), out, 0o644)
}

func ListLocalThemeIDs() ([]string, error) {
	themesDir, err := config.ThemesDir()
	if err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(ents))
	for _, ent := range ents {
		if ent.IsDir() || filepath.Ext(ent.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(ent.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func RemoveLocalTheme(id string) error {
	if id == "" {
		return fmt.Errorf("theme id is required")
	}
	themesDir, err := config.ThemesDir()
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(themesDir, id+".json")); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("theme not installed: %s", id)
		}
		return err
	}
	return nil
}
