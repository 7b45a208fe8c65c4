package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_LastWriteWins(t *testing.T) {
	base := Settings{"layer_height": "0.2", "wall_loops": "2", "printer_model": "Bambu Lab A1"}
	preset := Settings{"layer_height": "0.12", "wall_loops": "3"}

	merged, warnings := Merge(base, preset, []string{"wall_loops=5", "brim_type=no_brim"})

	assert.Empty(t, warnings)
	assert.Equal(t, Settings{
		"layer_height":  "0.12",
		"wall_loops":    "5",
		"printer_model": "Bambu Lab A1",
		"brim_type":     "no_brim",
	}, merged)
}

func TestMerge_OverrideOrder(t *testing.T) {
	merged, _ := Merge(nil, nil, []string{"wall_loops=3", "wall_loops=4"})
	assert.Equal(t, "4", merged["wall_loops"])
}

func TestMerge_SplitsOnFirstEquals(t *testing.T) {
	merged, warnings := Merge(nil, nil, []string{"printer_settings_id=Bambu Lab A1 0.4 nozzle", "note=a=b"})

	assert.Empty(t, warnings)
	assert.Equal(t, "Bambu Lab A1 0.4 nozzle", merged["printer_settings_id"])
	assert.Equal(t, "a=b", merged["note"])
}

func TestMerge_InvalidOverrideWarns(t *testing.T) {
	merged, warnings := Merge(Settings{"wall_loops": "3"}, nil, []string{"wall_loops", "layer_height=0.1"})

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "'wall_loops'")
	assert.Equal(t, "3", merged["wall_loops"])
	assert.Equal(t, "0.1", merged["layer_height"])
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := Settings{"printable_area": []any{"0x0", "256x0", "256x256"}}
	preset := Settings{"wall_loops": "3"}

	merged, _ := Merge(base, preset, []string{"wall_loops=9"})
	merged["printable_area"].([]any)[0] = "1x1"

	assert.Equal(t, "0x0", base["printable_area"].([]any)[0])
	assert.Equal(t, "3", preset["wall_loops"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		input        Settings
		wantPattern  string
		wantWarnings int
	}{
		{"full gyroid", Settings{KeySparseInfillDensity: "100%", KeySparseInfillPattern: "gyroid"}, "zig-zag", 1},
		{"full cubic", Settings{KeySparseInfillDensity: "100%", KeySparseInfillPattern: "cubic"}, "zig-zag", 1},
		{"full lightning", Settings{KeySparseInfillDensity: "100%", KeySparseInfillPattern: "lightning"}, "zig-zag", 1},
		{"full adaptivecubic", Settings{KeySparseInfillDensity: "100%", KeySparseInfillPattern: "adaptivecubic"}, "zig-zag", 1},
		{"full hyphenated", Settings{KeySparseInfillDensity: "100%", KeySparseInfillPattern: "hilbert-curve"}, "zig-zag", 1},
		{"full rectilinear kept", Settings{KeySparseInfillDensity: "100%", KeySparseInfillPattern: "rectilinear"}, "rectilinear", 0},
		{"half gyroid kept", Settings{KeySparseInfillDensity: "50%", KeySparseInfillPattern: "gyroid"}, "gyroid", 0},
		{"full without pattern", Settings{KeySparseInfillDensity: "100%"}, "zig-zag", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := Validate(tt.input)

			assert.Equal(t, tt.wantPattern, got[KeySparseInfillPattern])
			assert.Len(t, warnings, tt.wantWarnings)
		})
	}
}

func TestValidate_WarningMentionsPatterns(t *testing.T) {
	input := Settings{KeySparseInfillDensity: "100%", KeySparseInfillPattern: "gyroid"}

	got, warnings := Validate(input)

	require.Len(t, warnings, 1)
	assert.Equal(t, "Changed infill pattern from 'gyroid' to 'zig-zag' (required for 100% density)", warnings[0])
	assert.Equal(t, "gyroid", input[KeySparseInfillPattern], "input must not be modified")
	assert.Equal(t, "zig-zag", got[KeySparseInfillPattern])
}

func TestStrings(t *testing.T) {
	s := Settings{
		"from_json":   []any{"0x0", "256x0", "256x256"},
		"from_go":     []string{"a", "b"},
		"from_flag":   "0x0, 180x0,180x180 ,0x180",
		"blank":       "  ",
		"wrong_type":  42.0,
		"mixed_items": []any{"0x0", 1.0},
	}

	got, err := s.Strings("from_json")
	require.NoError(t, err)
	assert.Equal(t, []string{"0x0", "256x0", "256x256"}, got)

	got, err = s.Strings("from_go")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = s.Strings("from_flag")
	require.NoError(t, err)
	assert.Equal(t, []string{"0x0", "180x0", "180x180", "0x180"}, got)

	got, err = s.Strings("blank")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.Strings("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = s.Strings("wrong_type")
	assert.Error(t, err)

	_, err = s.Strings("mixed_items")
	assert.Error(t, err)
}

func TestMarshalIndent(t *testing.T) {
	s := Settings{"wall_loops": "3", "printable_area": []any{"0x0", "256x0"}}

	data, err := s.MarshalIndent()
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n    \"printable_area\": [\n        \"0x0\",")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]any(s), decoded)
}

func TestMarshalOrdered(t *testing.T) {
	s := Settings{
		"printer_model":  "Bambu Lab A1",
		"layer_height":   "0.12",
		"printable_area": []any{"0x0", "256x0"},
		"zeta":           "z",
		"alpha":          "a",
	}

	data, err := s.MarshalOrdered([]string{"printer_model", "printable_area", "missing", "layer_height", "printer_model"})
	require.NoError(t, err)

	want := `{
    "printer_model": "Bambu Lab A1",
    "printable_area": [
        "0x0",
        "256x0"
    ],
    "layer_height": "0.12",
    "alpha": "a",
    "zeta": "z"
}`
	assert.Equal(t, want, string(data))
}

func TestMarshalOrdered_MatchesSortedEncoding(t *testing.T) {
	s := Settings{"wall_loops": "3", "brim_type": "auto_brim", "printable_area": []any{"0x0", "256x0"}, "note": "<a&b>"}

	got, err := s.MarshalIndent()
	require.NoError(t, err)
	want, err := json.MarshalIndent(map[string]any(s), "", "    ")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	empty, err := Settings{}.MarshalIndent()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))
}

func TestKeyOrder(t *testing.T) {
	base := []string{"printer_model", "layer_height", "printable_area"}
	preset := Settings{"wall_loops": "3", "layer_height": "0.12", "brim_type": "auto_brim"}
	overrides := []string{"enable_support=1", "wall_loops=5", "nonsense", "enable_support=0", "raft_layers=2"}

	got := KeyOrder(base, preset, overrides)

	assert.Equal(t, []string{
		"printer_model", "layer_height", "printable_area",
		"brim_type", "wall_loops",
		"enable_support", "raft_layers",
	}, got)
	assert.Equal(t, []string{"printer_model", "layer_height", "printable_area"}, base)
}

func TestBuiltinPresets(t *testing.T) {
	presets := BuiltinPresets()

	assert.Equal(t, []string{"default", "solid", "fast", "fine", "strong"}, presets.Names())

	solid, err := presets.Get("solid")
	require.NoError(t, err)
	assert.Equal(t, "100%", solid[KeySparseInfillDensity])
	assert.Equal(t, "zig-zag", solid[KeySparseInfillPattern])

	solid["wall_loops"] = "99"
	again, _ := presets.Get("solid")
	assert.Equal(t, "4", again["wall_loops"], "Get must return a copy")
}

func TestPresets_UnknownName(t *testing.T) {
	_, err := BuiltinPresets().Get("ultra")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available: default, solid, fast, fine, strong")
}

func TestPresets_With(t *testing.T) {
	builtins := BuiltinPresets()
	presets := builtins.With(map[string]map[string]string{
		"draft": {"layer_height": "0.3"},
		"fine":  {"layer_height": "0.08"},
	})

	assert.Equal(t, []string{"default", "solid", "fast", "fine", "strong", "draft"}, presets.Names())

	fine, err := presets.Get("fine")
	require.NoError(t, err)
	assert.Equal(t, Settings{"layer_height": "0.08"}, fine)

	original, _ := builtins.Get("fine")
	assert.Equal(t, "0.12", original["layer_height"], "With must not modify the receiver")
}

func TestLoadBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base_template.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"printer_model": "Bambu Lab X1 Carbon", "printable_area": ["0x0", "256x0", "256x256", "0x256"]}`), 0o644))

	base, warnings, err := LoadBase(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "Bambu Lab X1 Carbon", base.Settings["printer_model"])
	assert.Equal(t, []string{"printer_model", "printable_area"}, base.Keys)

	area, err := base.Settings.Strings(KeyPrintableArea)
	require.NoError(t, err)
	assert.Len(t, area, 4)
}

func TestLoadBase_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	base, warnings, err := LoadBase(path)
	require.NoError(t, err)
	assert.Empty(t, base.Settings)
	assert.Empty(t, base.Keys)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], path)
}

func TestLoadBase_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"layer_height": `), 0o644))

	_, _, err := LoadBase(path)
	assert.Error(t, err)
}

func TestLoadBase_Embedded(t *testing.T) {
	base, warnings, err := LoadBase("")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	area, err := base.Settings.Strings(KeyPrintableArea)
	require.NoError(t, err)
	assert.Equal(t, []string{"0x0", "256x0", "256x256", "0x256"}, area)
	assert.Equal(t, "Bambu Lab A1", base.Settings["printer_model"])
	assert.Len(t, base.Keys, len(base.Settings))
}

func TestLoadBase_KeepsKeyOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
    "wall_loops": "2",
    "layer_height": "0.2",
    "nested": {"b": 1, "a": 2},
    "brim_type": "auto_brim",
    "layer_height": "0.16"
}`), 0o644))

	base, _, err := LoadBase(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"wall_loops", "layer_height", "nested", "brim_type"}, base.Keys)
	assert.Equal(t, "0.16", base.Settings["layer_height"])
}
