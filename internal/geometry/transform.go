package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Placement is a translation-only build transform. The mesh keeps its own
// origin; that origin is moved to the bed centre.
type Placement struct {
	X, Y, Z float64
}

// NewPlacement places the object origin at the given bed centre
func NewPlacement(bedCenterX, bedCenterY float64) Placement {
	return Placement{X: bedCenterX, Y: bedCenterY, Z: 0}
}

// String renders the 3MF transformation matrix: m11 m12 m13 m21 m22 m23 m31 m32 m33 tx ty tz
func (p Placement) String() string {
	return BuildTranslationTransform(p.X, p.Y, p.Z)
}

// BuildTranslationTransform creates a simple translation transformation matrix (no rotation)
func BuildTranslationTransform(tx, ty, tz float64) string {
	return fmt.Sprintf("1 0 0 0 1 0 0 0 1 %s %s %s", FormatNumber(tx), FormatNumber(ty), FormatNumber(tz))
}

// ParseTransformOffset extracts X, Y, Z offset from a transform matrix string
func ParseTransformOffset(transform string) (x, y, z float64, ok bool) {
	parts := strings.Fields(transform)
	if len(parts) != 12 {
		return 0, 0, 0, false
	}

	x, errX := strconv.ParseFloat(parts[9], 64)
	y, errY := strconv.ParseFloat(parts[10], 64)
	z, errZ := strconv.ParseFloat(parts[11], 64)

	if errX != nil || errY != nil || errZ != nil {
		return 0, 0, 0, false
	}

	return x, y, z, true
}

// FormatNumber prints the shortest decimal that parses back to v.
// Used for transforms and vertex coordinates in model XML.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
