package inspect

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/philipparndt/bambu3mf/internal/models"
	"github.com/philipparndt/bambu3mf/internal/threemf"
	"github.com/philipparndt/bambu3mf/internal/ui"
)

// Options control what Inspect prints
type Options struct {
	ShowSettings      bool
	ShowModelSettings bool
}

// Inspector provides functionality to inspect 3MF files
type Inspector struct {
	reader *threemf.Reader
}

// NewInspector creates a new Inspector
func NewInspector() *Inspector {
	return &Inspector{reader: threemf.NewReader()}
}

// Object is a model object as listed by inspect
type Object struct {
	ID        string
	Name      string
	Vertices  int
	Triangles int
	Extruder  string
}

// Item is a build plate item as listed by inspect
type Item struct {
	ObjectID   string
	ObjectName string
	Printable  bool
	Transform  string
}

// Summary is the information Inspect prints about a package
type Summary struct {
	Path        string
	ByteSize    int64
	Unit        string
	Application string
	Title       string
	Objects     []Object
	Items       []Item
	Settings    int

	// IDsConsistent is false when the model settings reference an object
	// that is not in the model
	IDsConsistent bool
}

// Inspect reads and displays the contents of a 3MF file
func (i *Inspector) Inspect(filename string, opts Options) error {
	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("file not found: %s", filename)
	}

	pkg, err := i.reader.Read(filename)
	if err != nil {
		return fmt.Errorf("error reading 3MF file: %w", err)
	}

	summary, err := Summarize(pkg)
	if err != nil {
		return err
	}
	summary.ByteSize = info.Size()

	printer := NewModelPrinter()
	ui.PrintHeader(fmt.Sprintf("Inspecting: %s", filename))
	printer.PrintSummary(summary)
	printer.PrintParts(pkg)

	ui.PrintHeader("Build Plate Items:")
	printer.PrintItems(summary.Items)

	ui.PrintHeader("Objects in Model:")
	printer.PrintObjects(summary.Objects)

	if !summary.IDsConsistent {
		ui.PrintWarning("model_settings.config references an object id that is not in the model")
	}

	if opts.ShowModelSettings && pkg.ModelSettings != nil {
		ui.PrintHeader("Model Settings:")
		if err := printer.PrintXML(pkg.ModelSettings); err != nil {
			return err
		}
	}

	if opts.ShowSettings {
		ui.PrintHeader("Project Settings:")
		if pkg.ProjectSettings == nil {
			ui.PrintInfo("No project settings in package")
		} else if err := printer.PrintJSON(string(pkg.ProjectSettings)); err != nil {
			return err
		}
	}

	return nil
}

// Summarize collects the printable information from a package
func Summarize(pkg *threemf.Package) (*Summary, error) {
	model := pkg.Model
	summary := &Summary{
		Path:          pkg.Path,
		Unit:          model.Unit,
		IDsConsistent: true,
	}
	summary.Application, _ = model.MetadataValue("Application")
	summary.Title, _ = model.MetadataValue("Title")

	extruders := make(map[string]string)
	if pkg.ModelSettings != nil {
		for _, obj := range pkg.ModelSettings.Objects {
			extruders[obj.ID], _ = models.Lookup(obj.Metadata, "extruder")
		}
	}

	objectNames := make(map[string]string)
	for _, obj := range model.Resources.Objects {
		o := Object{ID: obj.ID, Name: obj.Name, Extruder: extruders[obj.ID]}
		if obj.Mesh != nil {
			o.Vertices = len(obj.Mesh.Vertices.Vertex)
			o.Triangles = len(obj.Mesh.Triangles.Triangle)
		}
		if o.Name == "" {
			o.Name = "(unnamed)"
		}
		objectNames[obj.ID] = o.Name
		summary.Objects = append(summary.Objects, o)
	}

	for _, item := range model.Build.Items {
		name, ok := objectNames[item.ObjectID]
		if !ok {
			name = "(not found)"
		}
		summary.Items = append(summary.Items, Item{
			ObjectID:   item.ObjectID,
			ObjectName: name,
			Printable:  item.Printable != "0",
			Transform:  item.Transform,
		})
	}

	if pkg.ModelSettings != nil {
		for _, obj := range pkg.ModelSettings.Objects {
			if _, ok := objectNames[obj.ID]; !ok {
				summary.IDsConsistent = false
			}
		}
		for _, instance := range pkg.ModelSettings.Plate.ModelInstances {
			id, _ := models.Lookup(instance.Metadata, "object_id")
			if _, ok := objectNames[id]; !ok {
				summary.IDsConsistent = false
			}
		}
	}

	if pkg.ProjectSettings != nil {
		s, err := pkg.Settings()
		if err != nil {
			return nil, err
		}
		summary.Settings = len(s)
	}

	return summary, nil
}

func formatBytes(n int64) string {
	return humanize.Comma(n) + " bytes"
}
