package buildplan

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/philipparndt/bambu3mf/internal/geometry"
	"github.com/philipparndt/bambu3mf/internal/logger"
	"github.com/philipparndt/bambu3mf/internal/mesh"
	"github.com/philipparndt/bambu3mf/internal/settings"
	"github.com/philipparndt/bambu3mf/internal/stl"
	"github.com/philipparndt/bambu3mf/internal/threemf"
	"github.com/philipparndt/bambu3mf/internal/ui"
)

func TestMain(m *testing.M) {
	ui.SetOutput(io.Discard, io.Discard)
	os.Exit(m.Run())
}

func pyramid() *mesh.IndexedMesh {
	ix := mesh.NewIndexer()
	a := ix.Index(mesh.Vertex{X: 0, Y: 0, Z: 0})
	b := ix.Index(mesh.Vertex{X: 30, Y: 0, Z: 0})
	c := ix.Index(mesh.Vertex{X: 30, Y: 30, Z: 0})
	d := ix.Index(mesh.Vertex{X: 0, Y: 30, Z: 0})
	top := ix.Index(mesh.Vertex{X: 15, Y: 15, Z: 25})
	ix.AddTriangle(a, c, b)
	ix.AddTriangle(a, d, c)
	ix.AddTriangle(a, b, top)
	ix.AddTriangle(b, c, top)
	ix.AddTriangle(c, d, top)
	ix.AddTriangle(d, a, top)
	return ix.Mesh()
}

func writeSTL(t *testing.T, dir string, binaryFormat bool) string {
	t.Helper()
	w := stl.NewWriter()
	if binaryFormat {
		path := filepath.Join(dir, "pyramid.stl")
		require.NoError(t, w.WriteBinary(pyramid(), path))
		return path
	}
	path := filepath.Join(dir, "pyramid.stl")
	require.NoError(t, w.WriteASCII(pyramid(), "pyramid", path))
	return path
}

func run(t *testing.T, opts Options) (*Result, error) {
	t.Helper()
	plan, err := NewPlanner().CreatePlan(opts)
	require.NoError(t, err)
	return plan.Execute()
}

func TestConvert_EndToEnd(t *testing.T) {
	for _, binaryFormat := range []bool{false, true} {
		name := "ascii"
		if binaryFormat {
			name = "binary"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			input := writeSTL(t, dir, binaryFormat)
			output := filepath.Join(dir, "pyramid.3mf")

			result, err := run(t, Options{InputFile: input, OutputFile: output})
			require.NoError(t, err)

			assert.Equal(t, 5, result.Mesh.VertexCount())
			assert.Equal(t, 6, result.Mesh.TriangleCount())
			assert.Equal(t, geometry.Placement{X: 128, Y: 128, Z: 0}, result.Placement)
			assert.InDelta(t, 25.0, result.Box.Depth(), 1e-6)
			assert.Empty(t, result.Warnings)

			info, err := os.Stat(output)
			require.NoError(t, err)
			assert.Equal(t, info.Size(), result.Summary.ByteSize)

			pkg, err := threemf.NewReader().Read(output)
			require.NoError(t, err)

			got, err := pkg.Mesh()
			require.NoError(t, err)
			assert.Equal(t, result.Mesh.Triangles, got.Triangles)
			assert.Equal(t, result.Mesh.Vertices, got.Vertices)

			obj, err := pkg.MeshObject()
			require.NoError(t, err)
			assert.Equal(t, "pyramid", obj.Name)
		})
	}
}

func TestConvert_PresetAndOverrides(t *testing.T) {
	dir := t.TempDir()
	input := writeSTL(t, dir, true)
	output := filepath.Join(dir, "out.3mf")

	result, err := run(t, Options{
		InputFile:  input,
		OutputFile: output,
		Preset:     "fine",
		Overrides: []string{
			"sparse_infill_density=100%",
			"printable_area=0x0,180x0,180x180,0x180",
			"nonsense",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "0.12", result.Settings[settings.KeyLayerHeight])
	assert.Equal(t, "zig-zag", result.Settings[settings.KeySparseInfillPattern])
	assert.Equal(t, geometry.Placement{X: 90, Y: 90, Z: 0}, result.Placement)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "nonsense")
	assert.Contains(t, result.Warnings[1], "gyroid")

	pkg, err := threemf.NewReader().Read(output)
	require.NoError(t, err)
	written, err := pkg.Settings()
	require.NoError(t, err)
	assert.Equal(t, "zig-zag", written[settings.KeySparseInfillPattern])
	assert.Equal(t, "1 0 0 0 1 0 0 0 1 90 90 0", pkg.Model.Build.Items[0].Transform)
}

func TestConvert_WarningsAreNotLoggedAtWarnLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = previous })

	dir := t.TempDir()
	result, err := run(t, Options{
		InputFile:  writeSTL(t, dir, true),
		OutputFile: filepath.Join(dir, "out.3mf"),
		Overrides:  []string{"nonsense", "sparse_infill_density=100%"},
	})
	require.NoError(t, err)

	assert.Len(t, result.Warnings, 2)
	assert.Zero(t, logs.Len())
}

func TestConvert_SettingsKeepTemplateOrder(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "base.json")
	require.NoError(t, os.WriteFile(template, []byte(`{
	"zeta_key": "z",
	"layer_height": "0.3",
	"alpha_key": "a"
}`), 0o644))
	output := filepath.Join(dir, "out.3mf")

	_, err := run(t, Options{
		InputFile:    writeSTL(t, dir, true),
		OutputFile:   output,
		BaseTemplate: template,
		Overrides:    []string{"custom_key=1", "alpha_key=b"},
	})
	require.NoError(t, err)

	pkg, err := threemf.NewReader().Read(output)
	require.NoError(t, err)
	raw := string(pkg.ProjectSettings)

	want := []string{
		"zeta_key", "layer_height", "alpha_key",
		"bottom_shell_layers", "brim_type", "enable_support", "initial_layer_print_height",
		"sparse_infill_density", "sparse_infill_pattern", "top_shell_layers", "wall_loops",
		"custom_key",
	}
	last := -1
	for _, key := range want {
		pos := strings.Index(raw, `"`+key+`":`)
		require.GreaterOrEqual(t, pos, 0, "missing key %s", key)
		assert.Greater(t, pos, last, "key %s out of order", key)
		last = pos
	}

	written, err := pkg.Settings()
	require.NoError(t, err)
	assert.Equal(t, "b", written["alpha_key"])
	assert.Equal(t, "0.2", written[settings.KeyLayerHeight])
}

func TestConvert_ObjectNameOverride(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.3mf")

	_, err := run(t, Options{InputFile: writeSTL(t, dir, false), OutputFile: output, ObjectName: "widget"})
	require.NoError(t, err)

	pkg, err := threemf.NewReader().Read(output)
	require.NoError(t, err)
	title, _ := pkg.Model.MetadataValue("Title")
	assert.Equal(t, "widget", title)
}

func TestConvert_MissingInput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.3mf")

	_, err := run(t, Options{InputFile: filepath.Join(dir, "missing.stl"), OutputFile: output})

	var notFound *stl.InputNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.NoFileExists(t, output)
}

func TestConvert_EmptyMesh(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "empty.stl")
	data := make([]byte, 84)
	binary.LittleEndian.PutUint32(data[80:], 0)
	require.NoError(t, os.WriteFile(input, data, 0o644))
	output := filepath.Join(dir, "out.3mf")

	_, err := run(t, Options{InputFile: input, OutputFile: output})

	var emptyErr *geometry.EmptyMeshError
	require.ErrorAs(t, err, &emptyErr)
	assert.NoFileExists(t, output)
}

func TestConvert_UnknownPreset(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.3mf")

	_, err := run(t, Options{InputFile: writeSTL(t, dir, true), OutputFile: output, Preset: "ultra"})

	assert.ErrorContains(t, err, "unknown preset 'ultra'")
	assert.NoFileExists(t, output)
}

func TestConvert_MissingBaseTemplate(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.3mf")

	result, err := run(t, Options{
		InputFile:    writeSTL(t, dir, true),
		OutputFile:   output,
		BaseTemplate: filepath.Join(dir, "nope.json"),
	})
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "No base template")
	assert.Equal(t, geometry.Placement{X: 128, Y: 128, Z: 0}, result.Placement)
}

func TestCreatePlan(t *testing.T) {
	plan, err := NewPlanner().CreatePlan(Options{InputFile: "part.stl", OutputFile: "part.3mf"})
	require.NoError(t, err)

	var names []string
	for _, step := range plan.Steps {
		names = append(names, step.Name())
	}
	assert.Equal(t, []string{
		"Validate input",
		"Load settings",
		"Decode mesh",
		"Compute placement",
		"Validate settings",
		"Write 3MF",
	}, names)
	assert.Equal(t, "part", plan.ctx.Options.ObjectName)
	assert.Equal(t, settings.DefaultPreset, plan.ctx.Options.Preset)
}

func TestCreatePlan_MissingArguments(t *testing.T) {
	_, err := NewPlanner().CreatePlan(Options{OutputFile: "x.3mf"})
	assert.Error(t, err)

	_, err = NewPlanner().CreatePlan(Options{InputFile: "x.stl"})
	assert.Error(t, err)
}

func TestObjectName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"bracket.stl", "bracket"},
		{"/tmp/models/Gear v2.STL", "Gear v2"},
		{"noext", "noext"},
		{"archive.tar.stl", "archive.tar"},
	}

	for _, tt := range tests {
		if got := ObjectName(tt.path); got != tt.want {
			t.Errorf("ObjectName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
