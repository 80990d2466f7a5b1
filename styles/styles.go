package styles

import "github.com/charmbracelet/lipgloss"

const (
	// Widest the trainer draws; views truncate to the detected terminal width.
	Width = 72
)

// https://github.com/inngest/inngest/blob/main/pkg/cli/styles.go
var (
	Color   = lipgloss.AdaptiveColor{Light: "#111222", Dark: "#FAFAFA"}
	Primary = lipgloss.Color("#4636f5")
	Green   = lipgloss.Color("#9dcc3a")
	Red     = lipgloss.Color("#ff0000")
	White   = lipgloss.Color("#ffffff")
	Orange  = lipgloss.Color("#D3A347")
	Subtle  = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}

	TextStyle = lipgloss.NewStyle().Foreground(Color)
	BoldStyle = TextStyle.Copy().Bold(true)
	DimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	BaseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	// Pressed key on the keyboard diagram.
	KeyMarker = lipgloss.NewStyle().Foreground(Orange).Bold(true)

	Prompt = BoldStyle.Copy().Foreground(Primary).PaddingBottom(1)

	Option         = lipgloss.NewStyle().PaddingLeft(2)
	SelectedOption = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			PaddingLeft(1).
			PaddingRight(1)

	Correct = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Wrong   = lipgloss.NewStyle().Foreground(Red).Bold(true)

	// Status Bar.
	StatusNugget = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Padding(0, 1)
	ScoreStyle = StatusNugget.Copy().
			Background(lipgloss.Color("#e783f2")).
			Align(lipgloss.Right)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#343433", Dark: "#C1C6B2"}).
			Background(lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#353533"})

	StatusStyle = lipgloss.NewStyle().
			Inherit(StatusBarStyle).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#FF5F87")).
			Padding(0, 1).
			MarginRight(1)

	StatusText = lipgloss.NewStyle().Inherit(StatusBarStyle)

	HelpMenu = lipgloss.NewStyle().Align(lipgloss.Center).PaddingTop(1)
	// Page
	DocStyle = lipgloss.NewStyle().Padding(1, 2, 1, 2)
)

// RenderError returns a formatted error string.
func RenderError(msg string) string {
	label := lipgloss.NewStyle().Background(Red).Foreground(White).Bold(true).Padding(0, 1).Render("Error")
	content := lipgloss.NewStyle().Bold(true).Padding(0, 1).Render(msg)
	return label + content
}

// RenderFeedback formats the result line shown after an answer.
func RenderFeedback(correct bool, msg string) string {
	if correct {
		return Correct.Render("✓ " + msg)
	}
	return Wrong.Render("✗ " + msg)
}
