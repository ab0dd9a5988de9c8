package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	bannerStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("99")).Padding(0, 1)
)

func printSuccess(w io.Writer, text string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+text))
}

func printError(w io.Writer, text string) {
	fmt.Fprintln(w, errorStyle.Render("✘ "+text))
}

func printBanner(w io.Writer, title string) {
	fmt.Fprintln(w, bannerStyle.Render(accentStyle.Render(title)))
}
