// Package theme provides the colour palettes of the watch view.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the colours used by the watch view.
type Theme struct {
	Accent    lipgloss.Color
	AccentFg  lipgloss.Color // Foreground color for text on Accent background
	BorderDim lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color
}

// Theme names.
const (
	DraculaName    = "dracula"
	NordName       = "nord"
	CleanLightName = "clean-light"
)

// Dracula returns the Dracula theme (dark background, vibrant colors).
func Dracula() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#BD93F9"), // Purple (primary accent)
		AccentFg:  lipgloss.Color("#282A36"), // Dark text on accent
		BorderDim: lipgloss.Color("#44475A"), // Darker borders
		MutedFg:   lipgloss.Color("#6272A4"), // Comment (muted text)
		TextFg:    lipgloss.Color("#F8F8F2"), // Foreground (primary text)
		SuccessFg: lipgloss.Color("#50FA7B"), // Green (success)
		WarnFg:    lipgloss.Color("#FFB86C"), // Orange (warning)
		ErrorFg:   lipgloss.Color("#FF5555"), // Red (error)
	}
}

// Nord returns the Nord theme.
func Nord() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#88C0D0"),
		AccentFg:  lipgloss.Color("#2E3440"), // Dark text on accent
		BorderDim: lipgloss.Color("#434C5E"),
		MutedFg:   lipgloss.Color("#81A1C1"),
		TextFg:    lipgloss.Color("#E5E9F0"),
		SuccessFg: lipgloss.Color("#A3BE8C"),
		WarnFg:    lipgloss.Color("#EBCB8B"),
		ErrorFg:   lipgloss.Color("#BF616A"),
	}
}

// CleanLight returns a light theme.
func CleanLight() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#c6dbe5"),
		AccentFg:  lipgloss.Color("#24292F"),
		BorderDim: lipgloss.Color("#E1E4E8"),
		MutedFg:   lipgloss.Color("#6E7781"),
		TextFg:    lipgloss.Color("#24292F"),
		SuccessFg: lipgloss.Color("#1A7F37"),
		WarnFg:    lipgloss.Color("#9A6700"),
		ErrorFg:   lipgloss.Color("#CF222E"),
	}
}

// GetTheme returns a theme by name, Dracula when unknown.
func GetTheme(name string) *Theme {
	switch name {
	case NordName:
		return Nord()
	case CleanLightName:
		return CleanLight()
	default:
		return Dracula()
	}
}

// AvailableThemes lists the theme names accepted by GetTheme.
func AvailableThemes() []string {
	return []string{DraculaName, NordName, CleanLightName}
}
