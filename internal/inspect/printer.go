package inspect

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/philipparndt/bambu3mf/internal/geometry"
	"github.com/philipparndt/bambu3mf/internal/threemf"
	"github.com/philipparndt/bambu3mf/internal/ui"
)

// ModelPrinter handles printing package contents
type ModelPrinter struct {
	out   io.Writer
	color bool
}

// NewModelPrinter creates a ModelPrinter writing to stdout. Syntax
// highlighting is enabled when stdout is a terminal.
func NewModelPrinter() *ModelPrinter {
	return &ModelPrinter{
		out:   os.Stdout,
		color: isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// PrintSummary prints the package level information
func (p *ModelPrinter) PrintSummary(s *Summary) {
	ui.PrintKeyValue("Size", formatBytes(s.ByteSize))
	ui.PrintKeyValue("Unit", s.Unit)
	if s.Application != "" {
		ui.PrintKeyValue("Application", s.Application)
	}
	if s.Title != "" {
		ui.PrintKeyValue("Title", s.Title)
	}
	ui.PrintKeyValue("Settings", strconv.Itoa(s.Settings)+" keys")
}

// PrintParts lists the archive entries with their uncompressed sizes
func (p *ModelPrinter) PrintParts(pkg *threemf.Package) {
	ui.PrintHeader("Package Parts:")

	names := append([]string(nil), pkg.Parts...)
	sort.Strings(names)

	table := ui.NewTable(36, 16)
	for _, name := range names {
		table.Row(name, humanize.Bytes(pkg.Sizes[name]))
	}
}

// PrintItems prints the build plate items
func (p *ModelPrinter) PrintItems(items []Item) {
	if len(items) == 0 {
		ui.PrintStep("No items on build plate")
		return
	}

	for idx, item := range items {
		printable := "yes"
		if !item.Printable {
			printable = "no"
		}

		position := ""
		if x, y, z, ok := geometry.ParseTransformOffset(item.Transform); ok {
			position = fmt.Sprintf(" at (%s, %s, %s)", geometry.FormatNumber(x), geometry.FormatNumber(y), geometry.FormatNumber(z))
		}

		ui.PrintStep(fmt.Sprintf("%d. Object ID %s: %s%s (printable: %s)", idx+1, item.ObjectID, item.ObjectName, position, printable))
	}
}

// PrintObjects prints the model objects with their mesh statistics
func (p *ModelPrinter) PrintObjects(objects []Object) {
	if len(objects) == 0 {
		ui.PrintStep("No objects found")
		return
	}

	for _, obj := range objects {
		filamentInfo := ""
		if obj.Extruder != "" {
			filamentInfo = fmt.Sprintf(" (filament: %s)", obj.Extruder)
		}
		ui.PrintStep(fmt.Sprintf("• %s (ID: %s)%s", obj.Name, obj.ID, filamentInfo))
		ui.PrintItem(fmt.Sprintf("%s vertices, %s triangles",
			humanize.Comma(int64(obj.Vertices)), humanize.Comma(int64(obj.Triangles))))
	}
}

// PrintJSON prints a JSON document with syntax highlighting
func (p *ModelPrinter) PrintJSON(source string) error {
	return Highlight(p.out, source, "json", p.color)
}

// PrintXML prints v as indented XML with syntax highlighting
func (p *ModelPrinter) PrintXML(v any) error {
	data, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling XML: %w", err)
	}
	return Highlight(p.out, string(data), "xml", p.color)
}

// Highlight writes source to w. With color enabled it is highlighted for
// a 256 color terminal.
func Highlight(w io.Writer, source, lexer string, color bool) error {
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}

	formatter := "noop"
	if color {
		formatter = "terminal256"
	}

	if err := quick.Highlight(w, source, lexer, formatter, "monokai"); err != nil {
		return fmt.Errorf("error highlighting %s: %w", lexer, err)
	}
	return nil
}
