package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/easydiary/internal/models"
	"github.com/julianstephens/easydiary/internal/settings"
)

// Styles is the palette used for terminal output
type Styles struct {
	Theme   settings.Theme
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
	Accent  lipgloss.Style
}

func NewStyles(theme settings.Theme) Styles {
	// SYSTEM lets lipgloss pick from the terminal background
	pick := func(light, dark string) lipgloss.TerminalColor {
		switch theme {
		case settings.ThemeLight:
			return lipgloss.Color(light)
		case settings.ThemeDark:
			return lipgloss.Color(dark)
		default:
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
	}

	return Styles{
		Theme:   theme,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(pick("125", "205")),
		Label:   lipgloss.NewStyle().Bold(true).Foreground(pick("238", "252")),
		Muted:   lipgloss.NewStyle().Foreground(pick("245", "240")),
		Success: lipgloss.NewStyle().Foreground(pick("28", "42")),
		Warning: lipgloss.NewStyle().Foreground(pick("130", "214")).Italic(true),
		Danger:  lipgloss.NewStyle().Foreground(pick("160", "196")).Bold(true),
		Accent:  lipgloss.NewStyle().Foreground(pick("25", "81")),
	}
}

// FormTheme matches interactive prompts to the output theme
func (s Styles) FormTheme() *huh.Theme {
	switch s.Theme {
	case settings.ThemeDark:
		return huh.ThemeCharm()
	case settings.ThemeLight:
		return huh.ThemeBase16()
	default:
		return huh.ThemeBase()
	}
}

// Mood renders a mood level as a five-step meter
func (s Styles) Mood(m models.Mood) string {
	if !m.Valid() {
		return s.Danger.Render(m.String())
	}
	filled := int(m) + 1
	meter := strings.Repeat("●", filled) + strings.Repeat("○", 5-filled)
	return fmt.Sprintf("%s %s", s.Accent.Render(meter), m.String())
}

// Bar renders value as a horizontal bar scaled against max
func (s Styles) Bar(value, max float64, width int) string {
	if max <= 0 || value <= 0 {
		return ""
	}
	n := int(value / max * float64(width))
	if n == 0 {
		n = 1
	}
	return s.Accent.Render(strings.Repeat("█", n))
}
