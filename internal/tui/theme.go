package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	darkmode "github.com/thiagokokada/dark-mode-go"

	"github.com/thiagokokada/diffy-go/internal/dirdiff"
)

type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

func ThemePreferenceFromString(raw string) ThemePreference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

type colorPalette struct {
	ThemeName string

	Added      lipgloss.Style
	Removed    lipgloss.Style
	Modified   lipgloss.Style
	Unchanged  lipgloss.Style
	Conflicted lipgloss.Style

	DiffAdd    lipgloss.Style
	DiffDel    lipgloss.Style
	DiffCtx    lipgloss.Style
	HunkHeader lipgloss.Style

	Dim      lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
	Title    lipgloss.Style
}

func buildPalette(name string, dark bool) colorPalette {
	p := colorPalette{
		ThemeName:  name,
		Added:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Removed:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Modified:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Conflicted: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		HunkHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Selected:   lipgloss.NewStyle().Reverse(true),
		Border:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Title:      lipgloss.NewStyle().Bold(true),
	}
	if dark {
		p.Unchanged = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		p.DiffAdd = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Background(lipgloss.Color("#1f3d2b"))
		p.DiffDel = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Background(lipgloss.Color("#3d1f29"))
	} else {
		p.Unchanged = lipgloss.NewStyle().Foreground(lipgloss.Color("0"))
		p.DiffAdd = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Background(lipgloss.Color("#dff5de"))
		p.DiffDel = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Background(lipgloss.Color("#f9d6d5"))
	}
	p.DiffCtx = p.Unchanged
	return p
}

var (
	lightPalette = buildPalette("light", false)
	darkPalette  = buildPalette("dark", true)

	detectDarkMode = darkmode.IsDarkMode
)

func paletteForPreference(pref ThemePreference) colorPalette {
	switch pref {
	case ThemeDark:
		return darkPalette
	case ThemeLight:
		return lightPalette
	default:
		if detectDarkMode != nil {
			if dark, err := detectDarkMode(); err == nil {
				if dark {
					return darkPalette
				}
			} else {
				slog.Debug("detect dark-mode", slog.Any("error", err))
			}
		}
		return lightPalette
	}
}

func (p colorPalette) isDark() bool {
	return strings.Contains(strings.ToLower(p.ThemeName), "dark")
}

func (p colorPalette) statusStyle(status dirdiff.DiffStatus) lipgloss.Style {
	switch status {
	case dirdiff.Added:
		return p.Added
	case dirdiff.Removed:
		return p.Removed
	case dirdiff.Modified:
		return p.Modified
	case dirdiff.Conflicted:
		return p.Conflicted
	default:
		return p.Unchanged
	}
}
