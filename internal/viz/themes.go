package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the TUI colour scheme, including one colour per body.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Bodies    [3]lipgloss.Color
}

var (
	// ThemeClassic draws bodies 0, 1, 2 in blue, green and red like the
	// SVG export, with the blue lifted for dark terminals.
	ThemeClassic = Theme{
		Name:      "classic",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#00cccc"),
		Accent:    lipgloss.Color("#00ff88"),
		Text:      lipgloss.Color("#d0d0d0"),
		Muted:     lipgloss.Color("#888888"),
		Bodies:    [3]lipgloss.Color{"#4060ff", "#00ff00", "#ff0000"},
	}

	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Bodies:    [3]lipgloss.Color{"#ff00ff", "#00ffff", "#ffff00"},
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Bodies:    [3]lipgloss.Color{"#00ff00", "#88ff88", "#00aa00"},
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Bodies:    [3]lipgloss.Color{"#00a8cc", "#ffd700", "#e0f0ff"},
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Primary:   lipgloss.Color("#ff6b6b"),
		Secondary: lipgloss.Color("#feca57"),
		Accent:    lipgloss.Color("#ff9ff3"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Bodies:    [3]lipgloss.Color{"#ff6b6b", "#feca57", "#ff9ff3"},
	}

	CurrentTheme = ThemeClassic

	Themes = []Theme{
		ThemeClassic,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, or the classic theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Palette returns the canvas colour styles: one per body, then the axes.
func (t Theme) Palette() []lipgloss.Style {
	p := make([]lipgloss.Style, 0, len(t.Bodies)+1)
	for _, c := range t.Bodies {
		p = append(p, lipgloss.NewStyle().Foreground(c))
	}
	return append(p, lipgloss.NewStyle().Foreground(t.Muted))
}
