// Package color holds the ANSI palette used in CLI output.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps a lipgloss color value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
)

var (
	HiRed    = New("9")
	HiCyan   = New("14")
	HiPurple = New("13")
	Gray     = New("#808080")
)
