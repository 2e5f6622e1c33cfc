// Package prompts holds the interactive forms and styled output of the CLI.
package prompts

import (
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"waiwaier/internal/notes"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#27ca3f"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#bababa"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9ca24"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f56"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// Theme returns the huh theme shared by all forms.
func Theme() *huh.Theme {
	theme := huh.ThemeBase16()
	theme.FieldSeparator = lipgloss.NewStyle().SetString("\n").MarginBottom(1)
	theme.Form = theme.Form.MarginTop(1)
	theme.Group = theme.Group.MarginTop(1)
	theme.Focused.Title = theme.Focused.Title.Foreground(lipgloss.Color("#f9ca24"))
	theme.Blurred.Title = theme.Blurred.Title.Foreground(lipgloss.Color("#bababa"))
	return theme
}

type ResultField struct {
	Label string
	Value string
}

// PrintResult prints a summary with green checkmarks and gray labels.
func PrintResult(w io.Writer, fields []ResultField, successMsg string) {
	check := successStyle.Render("✓")

	fmt.Fprintln(w)
	for _, f := range fields {
		fmt.Fprintf(w, "%s %s %s\n", check, labelStyle.Render(f.Label+":"), f.Value)
	}
	if successMsg != "" {
		fmt.Fprintln(w, successStyle.Render("\n"+successMsg))
	}
}

func Warn(w io.Writer, msg string) {
	fmt.Fprintln(w, warnStyle.Render("! "+msg))
}

func Header(s string) string { return headerStyle.Render(s) }
func Muted(s string) string  { return labelStyle.Render(s) }

// StatusBadge colors a support status.
func StatusBadge(s notes.Status) string {
	switch s {
	case notes.Verified:
		return successStyle.Render(s.String())
	case notes.Unstable:
		return warnStyle.Render(s.String())
	case notes.Unsupported:
		return errorStyle.Render(s.String())
	default:
		return labelStyle.Render(s.String())
	}
}
