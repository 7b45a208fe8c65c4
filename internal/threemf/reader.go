package threemf

import (
	"archive/zip"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/philipparndt/bambu3mf/internal/mesh"
	"github.com/philipparndt/bambu3mf/internal/models"
	"github.com/philipparndt/bambu3mf/internal/settings"
)

// Package is the content of a 3MF file as read back from disk
type Package struct {
	Path  string
	Parts []string
	Sizes map[string]uint64

	Model           *models.Model
	ModelSettings   *models.ModelSettings
	ProjectSettings []byte
}

// Reader reads 3MF files
type Reader struct{}

// NewReader creates a new Reader
func NewReader() *Reader {
	return &Reader{}
}

// Read reads and parses a 3MF file. The model part is required; the Bambu
// metadata parts are read when present.
func (r *Reader) Read(filename string) (*Package, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening ZIP: %w", err)
	}
	defer zr.Close()

	pkg := &Package{
		Path:  filename,
		Sizes: make(map[string]uint64, len(zr.File)),
	}

	for _, f := range zr.File {
		pkg.Parts = append(pkg.Parts, f.Name)
		pkg.Sizes[f.Name] = f.UncompressedSize64

		switch f.Name {
		case ModelPath:
			var model models.Model
			if err := readXML(f, &model); err != nil {
				return nil, err
			}
			pkg.Model = &model
		case ModelSettingsPath:
			var ms models.ModelSettings
			if err := readXML(f, &ms); err != nil {
				return nil, err
			}
			pkg.ModelSettings = &ms
		case ProjectSettingsPath:
			data, err := readPart(f)
			if err != nil {
				return nil, err
			}
			pkg.ProjectSettings = data
		}
	}

	if pkg.Model == nil {
		return nil, fmt.Errorf("%s not found in archive", ModelPath)
	}

	return pkg, nil
}

// Settings decodes the project settings part
func (p *Package) Settings() (settings.Settings, error) {
	if p.ProjectSettings == nil {
		return nil, fmt.Errorf("%s not found in archive", ProjectSettingsPath)
	}

	var s settings.Settings
	if err := json.Unmarshal(p.ProjectSettings, &s); err != nil {
		return nil, fmt.Errorf("error parsing project settings: %w", err)
	}
	return s, nil
}

// MeshObject returns the first object of the model that carries a mesh
func (p *Package) MeshObject() (*models.Object, error) {
	for i := range p.Model.Resources.Objects {
		if p.Model.Resources.Objects[i].Mesh != nil {
			return &p.Model.Resources.Objects[i], nil
		}
	}
	return nil, fmt.Errorf("no mesh object in %s", ModelPath)
}

// Mesh converts the first mesh object back into an indexed mesh
func (p *Package) Mesh() (*mesh.IndexedMesh, error) {
	obj, err := p.MeshObject()
	if err != nil {
		return nil, err
	}
	return ObjectMesh(obj)
}

// ObjectName returns the display name of an object. The name in the model
// settings wins over the model attribute, without a trailing ".stl".
func (p *Package) ObjectName(obj *models.Object) string {
	if p.ModelSettings != nil {
		for _, so := range p.ModelSettings.Objects {
			if so.ID != obj.ID {
				continue
			}
			if name, ok := models.Lookup(so.Metadata, "name"); ok && name != "" {
				return strings.TrimSuffix(name, ".stl")
			}
		}
	}
	return obj.Name
}

// ObjectMesh converts the mesh of a model object into an indexed mesh
func ObjectMesh(obj *models.Object) (*mesh.IndexedMesh, error) {
	if obj.Mesh == nil {
		return nil, fmt.Errorf("object %s has no mesh", obj.ID)
	}

	m := &mesh.IndexedMesh{
		Vertices:  make([]mesh.Vertex, len(obj.Mesh.Vertices.Vertex)),
		Triangles: make([]mesh.Triangle, len(obj.Mesh.Triangles.Triangle)),
	}

	for i, v := range obj.Mesh.Vertices.Vertex {
		var coords [3]float64
		for j, s := range []string{v.X, v.Y, v.Z} {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			coords[j] = f
		}
		m.Vertices[i] = mesh.Vertex{X: coords[0], Y: coords[1], Z: coords[2]}
	}

	for i, t := range obj.Mesh.Triangles.Triangle {
		for _, idx := range []int{t.V1, t.V2, t.V3} {
			if idx < 0 || idx >= len(m.Vertices) {
				return nil, fmt.Errorf("triangle %d: vertex index %d out of range", i, idx)
			}
		}
		m.Triangles[i] = mesh.Triangle{V1: t.V1, V2: t.V2, V3: t.V3}
	}

	return m, nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", f.Name, err)
	}
	return data, nil
}

func readXML(f *zip.File, v any) error {
	data, err := readPart(f)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error parsing %s: %w", f.Name, err)
	}
	return nil
}
