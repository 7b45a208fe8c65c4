package settings

import "fmt"

// FullDensityPattern replaces patterns the slicer rejects at 100% infill
const FullDensityPattern = "zig-zag"

// incompatibleFullDensity lists infill patterns that cannot be used at 100%
// density. Slicer identifiers plus their hyphenated spellings.
var incompatibleFullDensity = map[string]bool{
	"cubic":              true,
	"gyroid":             true,
	"honeycomb":          true,
	"adaptivecubic":      true,
	"alignedrectilinear": true,
	"3dhoneycomb":        true,
	"hilbertcurve":       true,
	"archimedeanchords":  true,
	"octagramspiral":     true,
	"supportcubic":       true,
	"lightning":          true,

	"adaptive-cubic":      true,
	"aligned-rectilinear": true,
	"3d-honeycomb":        true,
	"hilbert-curve":       true,
	"archimedean-chords":  true,
	"octagram-spiral":     true,
	"support-cubic":       true,
}

// Validate fixes known setting conflicts and reports what it changed.
// It must run after presets and overrides are applied. The input is not
// modified.
func Validate(s Settings) (Settings, []string) {
	out := s.Clone()
	var warnings []string

	density := out.StringOr(KeySparseInfillDensity, "15%")
	pattern := out.StringOr(KeySparseInfillPattern, "gyroid")

	if density == "100%" && incompatibleFullDensity[pattern] {
		out[KeySparseInfillPattern] = FullDensityPattern
		warnings = append(warnings, fmt.Sprintf(
			"Changed infill pattern from '%s' to '%s' (required for 100%% density)", pattern, FullDensityPattern))
	}

	return out, warnings
}
