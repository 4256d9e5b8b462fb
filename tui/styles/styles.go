package styles

import "github.com/charmbracelet/lipgloss"

// Palette colors, Base16 solarized-dark.
var (
	colorDim  = lipgloss.Color("#586e75")
	colorFg   = lipgloss.Color("#839496")
	colorSel  = lipgloss.Color("#073642")
	colorRed  = lipgloss.Color("#dc322f")
	colorCyan = lipgloss.Color("#2aa198")
	colorBlue = lipgloss.Color("#268bd2")
)

// Styles holds the lipgloss styles shared by the command line views.
type Styles struct {
	Title lipgloss.Style
	Error lipgloss.Style
	Help  lipgloss.Style
	Key   lipgloss.Style

	// Form
	FormLabel       lipgloss.Style
	FormLabelActive lipgloss.Style
	FormValue       lipgloss.Style
	FormValueActive lipgloss.Style
	Indicator       lipgloss.Style

	// Tables
	TableHeader     lipgloss.Style
	TableCell       lipgloss.Style
	TableBorder     lipgloss.Style
	IdentityName    lipgloss.Style
	IdentityVersion lipgloss.Style
}

// Default is the style set used when none is configured.
var Default = NewStyles()

// NewStyles creates the style set.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().Foreground(colorBlue).Bold(true),
		Error: lipgloss.NewStyle().Foreground(colorRed),
		Help:  lipgloss.NewStyle().Foreground(colorDim),
		Key:   lipgloss.NewStyle().Foreground(colorBlue).Bold(true),

		FormLabel:       lipgloss.NewStyle().Foreground(colorDim),
		FormLabelActive: lipgloss.NewStyle().Foreground(colorBlue).Bold(true),
		FormValue:       lipgloss.NewStyle().Foreground(colorCyan),
		FormValueActive: lipgloss.NewStyle().Foreground(colorCyan).Background(colorSel),
		Indicator:       lipgloss.NewStyle().Foreground(colorBlue).Bold(true),

		TableHeader:     lipgloss.NewStyle().Foreground(colorBlue).Bold(true).Padding(0, 1),
		TableCell:       lipgloss.NewStyle().Foreground(colorFg).Padding(0, 1),
		TableBorder:     lipgloss.NewStyle().Foreground(colorDim),
		IdentityName:    lipgloss.NewStyle().Foreground(colorBlue).Padding(0, 1),
		IdentityVersion: lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1),
	}
}
