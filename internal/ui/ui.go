package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7D56F4") // Purple
	secondaryColor = lipgloss.Color("#00D9FF") // Cyan
	successColor   = lipgloss.Color("#04B575") // Green
	errorColor     = lipgloss.Color("#FF5F87") // Pink/Red
	warningColor   = lipgloss.Color("#FFAF00") // Orange
	mutedColor     = lipgloss.Color("#626262") // Gray
	accentColor    = lipgloss.Color("#FFD700") // Gold

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginTop(1).
			MarginBottom(1).
			PaddingLeft(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor).
			MarginTop(1).
			PaddingLeft(1)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	infoStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	keyStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	// Icon styles
	checkmark = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true).
			SetString("✓")

	cross = lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true).
		SetString("✗")

	arrow = lipgloss.NewStyle().
		Foreground(secondaryColor).
		SetString("→")

	dot = lipgloss.NewStyle().
		Foreground(mutedColor).
		SetString("•")

	stepStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	out     io.Writer = os.Stdout
	errOut  io.Writer = os.Stderr
	verbose bool
)

// SetOutput redirects regular and error output. Tests use io.Discard.
func SetOutput(stdout, stderr io.Writer) {
	out = stdout
	errOut = stderr
}

// SetVerbose enables step by step progress output
func SetVerbose(v bool) {
	verbose = v
}

// IsVerbose checks if verbose output is enabled
func IsVerbose() bool {
	return verbose || os.Getenv("CI") != ""
}

// PrintTitle prints a major title (for app name or major sections)
func PrintTitle(title string) {
	fmt.Fprintln(out, titleStyle.Render("╭─ "+title+" ─╮"))
}

// PrintHeader prints a section header
func PrintHeader(title string) {
	fmt.Fprintln(out, headerStyle.Render("▸ "+title))
}

// PrintStep prints a step with indentation
func PrintStep(step string) {
	fmt.Fprintln(out, stepStyle.Render(arrow.String()+" "+step))
}

// PrintItem prints an item in a list
func PrintItem(item string) {
	fmt.Fprintln(out, itemStyle.Render(dot.String()+" "+item))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintln(out, stepStyle.Render(checkmark.String()+" "+successStyle.Render(message)))
}

// PrintError prints an error message to stderr
func PrintError(message string) {
	fmt.Fprintln(errOut, stepStyle.Render(cross.String()+" "+errorStyle.Render(message)))
}

// PrintWarning prints a warning message to stderr
func PrintWarning(message string) {
	fmt.Fprintln(errOut, stepStyle.Render("⚠ "+warningStyle.Render(message)))
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Fprintln(out, stepStyle.Render(infoStyle.Render(message)))
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Fprintln(out, infoStyle.Render("─────────────────────────────────────────────"))
}

// PrintKeyValue prints a key-value pair with nice formatting
func PrintKeyValue(key, value string) {
	fmt.Fprintln(out, stepStyle.Render(keyStyle.Render(key+":")+" "+value))
}

// PrintText prints pre-rendered text unchanged
func PrintText(text string) {
	fmt.Fprintln(out, text)
}

// Table prints rows in fixed width columns
type Table struct {
	widths []int
}

// NewTable creates a table with the given column widths
func NewTable(widths ...int) *Table {
	return &Table{widths: widths}
}

// Header prints a table header followed by a separator line
func (t *Table) Header(headers ...string) {
	fmt.Fprintln(out, stepStyle.Render(keyStyle.Render(t.row(headers))))

	var parts []string
	for i := range headers {
		if i >= len(t.widths) {
			break
		}
		parts = append(parts, strings.Repeat("─", t.widths[i]))
	}
	fmt.Fprintln(out, stepStyle.Render(infoStyle.Render(strings.Join(parts, "─┼─"))))
}

// Row prints a formatted table row
func (t *Table) Row(columns ...string) {
	if len(columns) == 0 {
		return
	}
	fmt.Fprintln(out, stepStyle.Render(t.row(columns)))
}

func (t *Table) row(columns []string) string {
	var cells []string
	for i, col := range columns {
		if i >= len(t.widths) {
			break
		}

		// Truncate or pad the column
		width := t.widths[i]
		if len(col) > width {
			col = col[:width-3] + "..."
		} else {
			col += strings.Repeat(" ", width-len(col))
		}
		cells = append(cells, col)
	}
	return strings.Join(cells, " │ ")
}
