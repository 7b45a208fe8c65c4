package inspect

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/bambu3mf/internal/geometry"
	"github.com/philipparndt/bambu3mf/internal/mesh"
	"github.com/philipparndt/bambu3mf/internal/settings"
	"github.com/philipparndt/bambu3mf/internal/threemf"
	"github.com/philipparndt/bambu3mf/internal/ui"
)

func TestMain(m *testing.M) {
	ui.SetOutput(io.Discard, io.Discard)
	os.Exit(m.Run())
}

func writePackage(t *testing.T) string {
	t.Helper()
	ix := mesh.NewIndexer()
	ix.AddTriangle(
		ix.Index(mesh.Vertex{X: 0, Y: 0, Z: 0}),
		ix.Index(mesh.Vertex{X: 1, Y: 0, Z: 0}),
		ix.Index(mesh.Vertex{X: 0, Y: 1, Z: 0}),
	)

	out := filepath.Join(t.TempDir(), "tri.3mf")
	s := settings.Settings{"layer_height": "0.2", "wall_loops": "3"}
	_, err := threemf.NewEmitter().Emit(ix.Mesh(), geometry.NewPlacement(100, 50.5), s, "tri", out)
	require.NoError(t, err)
	return out
}

func TestSummarize(t *testing.T) {
	pkg, err := threemf.NewReader().Read(writePackage(t))
	require.NoError(t, err)

	summary, err := Summarize(pkg)
	require.NoError(t, err)

	assert.Equal(t, "millimeter", summary.Unit)
	assert.Equal(t, threemf.Application, summary.Application)
	assert.Equal(t, "tri", summary.Title)
	assert.Equal(t, 2, summary.Settings)
	assert.True(t, summary.IDsConsistent)

	require.Len(t, summary.Objects, 1)
	assert.Equal(t, Object{ID: "1", Name: "tri", Vertices: 3, Triangles: 1, Extruder: "1"}, summary.Objects[0])

	require.Len(t, summary.Items, 1)
	assert.Equal(t, Item{
		ObjectID:   "1",
		ObjectName: "tri",
		Printable:  true,
		Transform:  "1 0 0 0 1 0 0 0 1 100 50.5 0",
	}, summary.Items[0])
}

func TestSummarize_InconsistentIDs(t *testing.T) {
	pkg, err := threemf.NewReader().Read(writePackage(t))
	require.NoError(t, err)

	pkg.ModelSettings.Objects[0].ID = "7"

	summary, err := Summarize(pkg)
	require.NoError(t, err)
	assert.False(t, summary.IDsConsistent)
}

func TestInspect(t *testing.T) {
	path := writePackage(t)

	err := NewInspector().Inspect(path, Options{ShowSettings: true, ShowModelSettings: true})
	assert.NoError(t, err)
}

func TestInspect_MissingFile(t *testing.T) {
	err := NewInspector().Inspect(filepath.Join(t.TempDir(), "none.3mf"), Options{})
	assert.ErrorContains(t, err, "file not found")
}

func TestHighlight_Plain(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Highlight(&buf, `{"layer_height": "0.2"}`, "json", false))

	assert.Equal(t, "{\"layer_height\": \"0.2\"}\n", buf.String())
}

func TestHighlight_Color(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Highlight(&buf, `<config><plate/></config>`, "xml", true))

	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "plate")
}
