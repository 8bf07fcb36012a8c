package cli

import "github.com/charmbracelet/lipgloss"

// ANSI 256 colors for broad terminal compatibility.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleNote    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleHelp    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	styleCode    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	stylePipe    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleSQL     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleHeader  = lipgloss.NewStyle().Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func render(style lipgloss.Style, s string) string {
	if !EnableColors() {
		return s
	}
	return style.Render(s)
}

// Error returns text styled as an error label.
func Error(s string) string { return render(styleError, s) }

// Warning returns text styled as a warning label.
func Warning(s string) string { return render(styleWarning, s) }

// Note returns text styled as a note label.
func Note(s string) string { return render(styleNote, s) }

// Help returns text styled as a help label.
func Help(s string) string { return render(styleHelp, s) }

// Success returns text styled as a success message.
func Success(s string) string { return render(styleSuccess, s) }

// Info returns text styled as informational text.
func Info(s string) string { return render(styleInfo, s) }

// Code returns text styled as an error code.
func Code(s string) string { return render(styleCode, s) }

// SQL returns text styled as a SQL statement.
func SQL(s string) string { return render(styleSQL, s) }

// Header returns text styled as a table header.
func Header(s string) string { return render(styleHeader, s) }

// Dim returns text styled as dim/muted.
func Dim(s string) string { return render(styleDim, s) }

// Pipe returns a pipe character styled for diagnostic gutters.
func Pipe() string { return render(stylePipe, "|") }
