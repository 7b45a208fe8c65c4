package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/philipparndt/bambu3mf/internal/logger"
	"github.com/philipparndt/bambu3mf/internal/stl"
	"github.com/philipparndt/bambu3mf/internal/threemf"
	"github.com/philipparndt/bambu3mf/internal/ui"
)

// Extractor writes the meshes of a 3MF file back out as STL files
type Extractor struct {
	reader    *threemf.Reader
	stlWriter *stl.Writer
}

// NewExtractor creates a new Extractor
func NewExtractor() *Extractor {
	return &Extractor{
		reader:    threemf.NewReader(),
		stlWriter: stl.NewWriter(),
	}
}

// Extract writes every mesh object of a 3MF file to its own STL file in
// outputDir and returns the written paths
func (e *Extractor) Extract(filename string, outputDir string, binary bool) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating output directory: %w", err)
	}

	pkg, err := e.reader.Read(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading 3MF file: %w", err)
	}

	var written []string
	for i := range pkg.Model.Resources.Objects {
		obj := &pkg.Model.Resources.Objects[i]
		if obj.Mesh == nil {
			continue
		}

		m, err := threemf.ObjectMesh(obj)
		if err != nil {
			ui.PrintError(fmt.Sprintf("Error reading mesh for object %s: %v", obj.ID, err))
			continue
		}

		name := pkg.ObjectName(obj)
		outputFilename := generateFilename(name, obj.ID, outputDir, len(written))

		if binary {
			err = e.stlWriter.WriteBinary(m, outputFilename)
		} else {
			err = e.stlWriter.WriteASCII(m, name, outputFilename)
		}
		if err != nil {
			return written, fmt.Errorf("error writing STL file: %w", err)
		}

		logger.Log.Debug("extracted object",
			zap.String("id", obj.ID),
			zap.String("file", outputFilename),
			zap.Int("triangles", m.TriangleCount()))
		ui.PrintInfo(fmt.Sprintf("Extracted: %s", outputFilename))
		written = append(written, outputFilename)
	}

	if len(written) == 0 {
		return nil, fmt.Errorf("no mesh objects found in 3MF file")
	}

	ui.PrintSuccess(fmt.Sprintf("Successfully extracted %d model(s) to %s", len(written), outputDir))
	return written, nil
}

var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// generateFilename generates an output filename for an extracted model
func generateFilename(name string, id string, outputDir string, index int) string {
	cleanName := name
	if cleanName == "" {
		cleanName = fmt.Sprintf("object_%s", id)
	}
	cleanName = filenameReplacer.Replace(cleanName)

	baseFilename := fmt.Sprintf("%s_%s.stl", cleanName, id)
	if index > 0 {
		baseFilename = fmt.Sprintf("%s_%s_%d.stl", cleanName, id, index)
	}

	return filepath.Join(outputDir, baseFilename)
}
