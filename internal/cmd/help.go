package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/philipparndt/bambu3mf/internal/settings"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	commentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)

	flagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

type helpEntry struct {
	name string
	desc string
}

// commonSettings are the keys most often changed with --setting
var commonSettings = []struct {
	group   string
	entries []helpEntry
}{
	{"Quality", []helpEntry{
		{settings.KeyLayerHeight, "Layer height in mm (0.08 - 0.28)"},
		{"initial_layer_print_height", "First layer height in mm"},
		{settings.KeyWallLoops, "Number of perimeter walls"},
		{"top_shell_layers", "Solid layers on top"},
		{"bottom_shell_layers", "Solid layers on the bottom"},
	}},
	{"Infill", []helpEntry{
		{settings.KeySparseInfillDensity, "Infill density, e.g. 15%"},
		{settings.KeySparseInfillPattern, "grid, gyroid, honeycomb, cubic, line, zig-zag, ..."},
	}},
	{"Support", []helpEntry{
		{settings.KeyEnableSupport, "0 or 1"},
		{"support_type", "normal(auto) or tree(auto)"},
		{"support_threshold_angle", "Overhang angle that needs support"},
	}},
	{"Adhesion", []helpEntry{
		{"brim_type", "no_brim, outer_only, auto_brim"},
		{"brim_width", "Brim width in mm"},
	}},
	{"Printer", []helpEntry{
		{settings.KeyPrintableArea, "Bed outline, e.g. 0x0,256x0,256x256,0x256"},
		{"nozzle_diameter", "Nozzle diameter in mm"},
	}},
}

func renderEntries(b *strings.Builder, entries []helpEntry) {
	maxWidth := 0
	for _, e := range entries {
		if len(e.name) > maxWidth {
			maxWidth = len(e.name)
		}
	}

	for _, e := range entries {
		padding := strings.Repeat(" ", maxWidth-len(e.name)+2)
		b.WriteString("  " + flagStyle.Render(e.name) + padding + commentStyle.Render(e.desc))
		b.WriteString("\n")
	}
}

// renderConvertHelp renders the help text for the convert command with lipgloss styling
func renderConvertHelp() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Examples"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Convert with the default preset"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("bambu3mf convert bracket.stl bracket.3mf"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Pick a preset and override single settings"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("bambu3mf convert part.stl part.3mf --preset strong \\"))
	b.WriteString("\n")
	b.WriteString("    " + commandStyle.Render("-s sparse_infill_density=25% -s enable_support=1"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Use your own Bambu Studio settings export as base"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("bambu3mf convert part.stl part.3mf --base-template my_printer.json"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Merge order (later wins):"))
	b.WriteString("\n")
	renderEntries(&b, []helpEntry{
		{"1. base", "Built-in template or --base-template"},
		{"2. preset", "--preset (see 'bambu3mf presets')"},
		{"3. overrides", "--setting key=value, in order"},
	})
	b.WriteString("\n")
	b.WriteString("  " + commentStyle.Render("100% infill always prints with the zig-zag pattern"))
	b.WriteString("\n")

	return b.String()
}

// renderSettingsReference renders the list of common settings
func renderSettingsReference() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Common settings"))
	b.WriteString("\n")
	b.WriteString(commentStyle.Render("Any key of a Bambu Studio process or printer profile can be overridden"))
	b.WriteString("\n\n")

	for _, group := range commonSettings {
		b.WriteString(sectionStyle.Render(group.group))
		b.WriteString("\n")
		renderEntries(&b, group.entries)
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Usage"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("bambu3mf convert in.stl out.3mf -s layer_height=0.16 -s wall_loops=4"))
	b.WriteString("\n")

	return b.String()
}
