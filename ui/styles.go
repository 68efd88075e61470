package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/grissess/gscope/model"
)

var (
	// Colors
	colorRed    = lipgloss.Color("#FF5555")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorOrange = lipgloss.Color("#FFB86C")
	colorWhite  = lipgloss.Color("#F8F8F2")
	colorGray   = lipgloss.Color("#6272A4")
	colorPanel  = lipgloss.Color("#44475A")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	dimStyle      = lipgloss.NewStyle().Foreground(colorGray)
	helpStyle     = lipgloss.NewStyle().Foreground(colorGray)
	selectedStyle = lipgloss.NewStyle().Background(colorPanel).Foreground(colorWhite)

	activeStyle = lipgloss.NewStyle().Foreground(colorGreen)
	endedStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	resetStyle  = lipgloss.NewStyle().Foreground(colorOrange)
	failedStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	clessStyle  = lipgloss.NewStyle().Foreground(colorCyan)
)

// StateStyle returns the terminal style for a draw state. Shared with the
// CLI watch mode.
func StateStyle(s model.DrawState) lipgloss.Style {
	switch s {
	case model.StateActive:
		return activeStyle
	case model.StateReset:
		return resetStyle
	case model.StateFailed:
		return failedStyle
	case model.StateConnectionless:
		return clessStyle
	default:
		return endedStyle
	}
}

// alphaStyle dims a row according to its decay alpha.
func alphaStyle(alpha float64) lipgloss.Style {
	if alpha < 0.5 {
		return dimStyle
	}
	return lipgloss.NewStyle()
}
