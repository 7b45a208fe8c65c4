package settings

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPreset is applied when no preset is chosen
const DefaultPreset = "default"

var builtinOrder = []string{"default", "solid", "fast", "fine", "strong"}

// Presets maps preset names to the settings they apply
type Presets map[string]Settings

// BuiltinPresets returns a fresh copy of the built-in presets
func BuiltinPresets() Presets {
	return Presets{
		"default": {
			"layer_height":               "0.2",
			"initial_layer_print_height": "0.2",
			"wall_loops":                 "3",
			"top_shell_layers":           "4",
			"bottom_shell_layers":        "3",
			"sparse_infill_density":      "15%",
			"sparse_infill_pattern":      "gyroid",
			"enable_support":             "0",
			"brim_type":                  "auto_brim",
		},
		"solid": {
			"layer_height":               "0.2",
			"initial_layer_print_height": "0.2",
			"wall_loops":                 "4",
			"top_shell_layers":           "5",
			"bottom_shell_layers":        "5",
			"sparse_infill_density":      "100%",
			"sparse_infill_pattern":      "zig-zag",
			"enable_support":             "0",
			"brim_type":                  "auto_brim",
		},
		"fast": {
			"layer_height":               "0.28",
			"initial_layer_print_height": "0.28",
			"wall_loops":                 "2",
			"top_shell_layers":           "3",
			"bottom_shell_layers":        "3",
			"sparse_infill_density":      "10%",
			"sparse_infill_pattern":      "gyroid",
			"enable_support":             "0",
			"brim_type":                  "auto_brim",
		},
		"fine": {
			"layer_height":               "0.12",
			"initial_layer_print_height": "0.12",
			"wall_loops":                 "3",
			"top_shell_layers":           "5",
			"bottom_shell_layers":        "5",
			"sparse_infill_density":      "15%",
			"sparse_infill_pattern":      "gyroid",
			"enable_support":             "0",
			"brim_type":                  "auto_brim",
		},
		"strong": {
			"layer_height":               "0.2",
			"initial_layer_print_height": "0.2",
			"wall_loops":                 "5",
			"top_shell_layers":           "5",
			"bottom_shell_layers":        "5",
			"sparse_infill_density":      "40%",
			"sparse_infill_pattern":      "cubic",
			"enable_support":             "0",
			"brim_type":                  "auto_brim",
		},
	}
}

// With returns a new preset set with extra presets added. An extra preset
// with a built-in name replaces the built-in one entirely.
func (p Presets) With(extra map[string]map[string]string) Presets {
	out := make(Presets, len(p)+len(extra))
	for name, s := range p {
		out[name] = s.Clone()
	}
	for name, values := range extra {
		s := make(Settings, len(values))
		for k, v := range values {
			s[k] = v
		}
		out[name] = s
	}
	return out
}

// Names returns the built-in presets in their canonical order followed by
// any additional presets sorted by name.
func (p Presets) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for _, name := range builtinOrder {
		if _, ok := p[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}

	var extra []string
	for name := range p {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	return append(names, extra...)
}

// Get returns a copy of the named preset
func (p Presets) Get(name string) (Settings, error) {
	s, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset '%s'. Available: %s", name, strings.Join(p.Names(), ", "))
	}
	return s.Clone(), nil
}
