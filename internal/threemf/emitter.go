// Package threemf writes single-object Bambu Studio 3MF projects and reads
// them back for inspection.
package threemf

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/philipparndt/bambu3mf/internal/geometry"
	"github.com/philipparndt/bambu3mf/internal/logger"
	"github.com/philipparndt/bambu3mf/internal/mesh"
	"github.com/philipparndt/bambu3mf/internal/models"
	"github.com/philipparndt/bambu3mf/internal/settings"
)

// Part names inside the archive
const (
	ModelPath           = "3D/3dmodel.model"
	ProjectSettingsPath = "Metadata/project_settings.config"
	ModelSettingsPath   = "Metadata/model_settings.config"
	RelationshipsPath   = "_rels/.rels"
	ContentTypesPath    = "[Content_Types].xml"
)

const (
	// ObjectID is the resource id of the single mesh object
	ObjectID = 1

	relationshipType3DModel = "http://schemas.microsoft.com/3dmanufacturing/2013/01/3dmodel"
)

// PackageSummary describes a package written to disk
type PackageSummary struct {
	Path     string
	ByteSize int64
	ObjectID int
}

// Emitter writes 3MF packages
type Emitter struct {
	keyOrder []string
}

// NewEmitter creates a new Emitter
func NewEmitter() *Emitter {
	return &Emitter{}
}

// WithKeyOrder sets the order of the keys in the project settings part.
// Keys not listed are written after them, sorted.
func (e *Emitter) WithKeyOrder(keys []string) *Emitter {
	e.keyOrder = keys
	return e
}

// Emit writes m, placed by placement, together with the settings payload to
// outPath. The archive is written to a temporary file next to outPath and
// renamed into place once complete.
func (e *Emitter) Emit(m *mesh.IndexedMesh, placement geometry.Placement, s settings.Settings, objectName, outPath string) (*PackageSummary, error) {
	if m == nil || m.IsEmpty() {
		return nil, &geometry.EmptyMeshError{}
	}

	projectSettings, err := s.MarshalOrdered(e.keyOrder)
	if err != nil {
		return nil, &WriteError{Path: outPath, Op: "encode settings", Err: err}
	}

	objectID := strconv.Itoa(ObjectID)
	model := NewModel(m, placement, objectID, objectName)

	err = writeAtomic(outPath, func(zw *zip.Writer) error {
		if err := writeXMLPart(zw, ModelPath, model); err != nil {
			return err
		}
		if err := writePart(zw, ProjectSettingsPath, projectSettings); err != nil {
			return err
		}
		if err := WriteModelSettings(zw, objectID, objectName); err != nil {
			return err
		}
		if err := writeXMLPart(zw, RelationshipsPath, newRelationships()); err != nil {
			return err
		}
		return writeXMLPart(zw, ContentTypesPath, newContentTypes())
	})
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, &WriteError{Path: outPath, Op: "stat", Err: err}
	}

	logger.Log.Debug("3MF written",
		zap.String("path", outPath),
		zap.Int64("bytes", info.Size()),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()))

	return &PackageSummary{Path: outPath, ByteSize: info.Size(), ObjectID: ObjectID}, nil
}

// NewModel builds the 3D model part: one mesh object and one build item
// carrying the placement transform. Vertices and triangles keep their order.
func NewModel(m *mesh.IndexedMesh, placement geometry.Placement, objectID, objectName string) *models.Model {
	vertices := make([]models.Vertex, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = models.Vertex{
			X: geometry.FormatNumber(v.X),
			Y: geometry.FormatNumber(v.Y),
			Z: geometry.FormatNumber(v.Z),
		}
	}

	triangles := make([]models.Triangle, len(m.Triangles))
	for i, t := range m.Triangles {
		triangles[i] = models.Triangle{V1: t.V1, V2: t.V2, V3: t.V3}
	}

	model := &models.Model{
		Xmlns: models.NamespaceCore,
		Unit:  "millimeter",
		Lang:  "en-US",
		Resources: models.Resources{
			Objects: []models.Object{
				{
					ID:   objectID,
					Name: objectName,
					Type: "model",
					UUID: stableUUID(objectName, "object"),
					Mesh: &models.Mesh{
						Vertices:  models.Vertices{Vertex: vertices},
						Triangles: models.Triangles{Triangle: triangles},
					},
				},
			},
		},
		Build: models.Build{
			UUID: stableUUID(objectName, "build"),
			Items: []models.Item{
				{
					ObjectID:  objectID,
					Transform: placement.String(),
					Printable: "1",
					UUID:      stableUUID(objectName, "item"),
				},
			},
		},
	}

	AddBambuMetadata(model, objectName)
	return model
}

// stableUUID derives a name-based UUID so that identical input produces
// identical packages
func stableUUID(objectName, role string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("bambu3mf:"+role+":"+objectName)).String()
}

func newRelationships() *models.Relationships {
	return &models.Relationships{
		Xmlns: "http://schemas.openxmlformats.org/package/2006/relationships",
		Relationships: []models.Relationship{
			{ID: "rel0", Target: "/" + ModelPath, Type: relationshipType3DModel},
		},
	}
}

func newContentTypes() *models.ContentTypes {
	return &models.ContentTypes{
		Xmlns: "http://schemas.openxmlformats.org/package/2006/content-types",
		Defaults: []models.ContentTypeDefault{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "model", ContentType: "application/vnd.ms-package.3dmanufacturing-3dmodel+xml"},
		},
	}
}

// writeAtomic creates the archive in a temporary file in the target
// directory and renames it to path on success. On failure the temporary
// file is removed and a *WriteError is returned.
func writeAtomic(path string, write func(zw *zip.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteError{Path: path, Op: "create", Err: err}
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	zw := zip.NewWriter(tmp)
	if err = write(zw); err != nil {
		return &WriteError{Path: path, Op: "write", Err: err}
	}
	if err = zw.Close(); err != nil {
		return &WriteError{Path: path, Op: "finalize archive", Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &WriteError{Path: path, Op: "sync", Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &WriteError{Path: path, Op: "close", Err: err}
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return &WriteError{Path: path, Op: "chmod", Err: err}
	}
	if err = os.Rename(tmpName, path); err != nil {
		return &WriteError{Path: path, Op: "rename", Err: err}
	}
	return nil
}

func writePart(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("error creating %s entry: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	return nil
}

func writeXMLPart(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("error creating %s entry: %w", name, err)
	}

	// Write XML declaration
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("error writing XML header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error marshaling %s: %w", name, err)
	}
	return enc.Close()
}
