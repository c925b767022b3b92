package dashboard

import "github.com/charmbracelet/lipgloss"

// palette holds the colors for one background.
type palette struct {
	Text      lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Accent    lipgloss.Color
	Surface   lipgloss.Color
	Healthy   lipgloss.Color
}

var (
	darkPalette = palette{
		Text:      lipgloss.Color("#FFFFFF"),
		Secondary: lipgloss.Color("#B4B4D0"),
		Muted:     lipgloss.Color("#6B6B8D"),
		Accent:    lipgloss.Color("#FF2E97"),
		Surface:   lipgloss.Color("#2A2A4A"),
		Healthy:   lipgloss.Color("#39FF14"),
	}
	lightPalette = palette{
		Text:      lipgloss.Color("#1A1A2E"),
		Secondary: lipgloss.Color("#4A4A6A"),
		Muted:     lipgloss.Color("#8A8AA8"),
		Accent:    lipgloss.Color("#C2185B"),
		Surface:   lipgloss.Color("#E0E0F0"),
		Healthy:   lipgloss.Color("#1B8A2E"),
	}
)

// Styles are the rendered looks of every dashboard element.
type Styles struct {
	Dark bool

	Title         lipgloss.Style
	Clock         lipgloss.Style
	Rule          lipgloss.Style
	PageIndicator lipgloss.Style
	Label         lipgloss.Style
	LabelSelected lipgloss.Style
	Value         lipgloss.Style
	Info          lipgloss.Style
	Banner        lipgloss.Style
	BarHeader     lipgloss.Style
	BarValue      lipgloss.Style
	BarSeparator  lipgloss.Style
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpTitle     lipgloss.Style
}

// NewStyles builds the styles for a dark or light background.
func NewStyles(dark bool) Styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return Styles{
		Dark:          dark,
		Title:         lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Clock:         lipgloss.NewStyle().Foreground(p.Secondary),
		Rule:          lipgloss.NewStyle().Foreground(p.Muted),
		PageIndicator: lipgloss.NewStyle().Foreground(p.Secondary),
		Label:         lipgloss.NewStyle().Foreground(p.Secondary),
		LabelSelected: lipgloss.NewStyle().Foreground(p.Text).Background(p.Surface).Bold(true),
		Value:         lipgloss.NewStyle().Foreground(p.Text),
		Info:          lipgloss.NewStyle().Foreground(p.Muted),
		Banner:        lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		BarHeader:     lipgloss.NewStyle().Foreground(p.Muted),
		BarValue:      lipgloss.NewStyle().Foreground(p.Healthy),
		BarSeparator:  lipgloss.NewStyle().Foreground(p.Muted),
		HelpKey:       lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		HelpDesc:      lipgloss.NewStyle().Foreground(p.Secondary),
		HelpTitle:     lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
	}
}
