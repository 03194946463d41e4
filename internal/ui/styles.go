package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// uisys colors and styles
var (
	ColorBlue   = lipgloss.Color("63")  // 🔧 Tools/Technical
	ColorPurple = lipgloss.Color("141") // 📦 Artifacts
	ColorGreen  = lipgloss.Color("42")  // ✅ Success
	ColorYellow = lipgloss.Color("220") // ⚠️  Warning
	ColorRed    = lipgloss.Color("196") // ❌ Error
	ColorGray   = lipgloss.Color("240") // Subtle text

	// Text styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	StepStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	DetailStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			PaddingLeft(3)

	// Emoji icons
	IconTool    = "🔧"
	IconSuccess = "✅"
	IconWarning = "⚠️ "
	IconError   = "❌"
	IconPackage = "📦"
	IconWatch   = "👀"
)
