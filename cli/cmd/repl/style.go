package repl

import "github.com/charmbracelet/lipgloss"

// palette holds every style the REPL renders with.
type palette struct {
	prompt     lipgloss.Style
	ctrlPrompt lipgloss.Style
	input      lipgloss.Style
	result     lipgloss.Style
	err        lipgloss.Style
	hint       lipgloss.Style

	candidate      lipgloss.Style
	candidateMatch lipgloss.Style
	selected       lipgloss.Style
	selectedMatch  lipgloss.Style

	signature lipgloss.Style
	callee    lipgloss.Style
	param     lipgloss.Style
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

var theme = palette{
	prompt:     fg("6").Bold(true),
	ctrlPrompt: fg("5").Bold(true),
	input:      fg("15"),
	result:     fg("2"),
	err:        fg("1"),
	hint:       fg("8"),

	candidate:      fg("4"),
	candidateMatch: fg("4").Bold(true),
	selected:       fg("0").Background(lipgloss.Color("4")),
	selectedMatch:  fg("0").Background(lipgloss.Color("4")).Bold(true),

	signature: fg("8"),
	callee:    fg("6").Bold(true),
	param:     fg("11").Bold(true),
}
