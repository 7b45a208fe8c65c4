package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Default bed centre used when no usable printable area is configured
const (
	DefaultBedCenterX = 128.0
	DefaultBedCenterY = 128.0
)

// BedCenter returns the centre of the bounding rectangle of a printable
// area given as "XxY" points. With fewer than three points the default
// centre (128, 128) is returned.
func BedCenter(area []string) (x, y float64, err error) {
	if len(area) < 3 {
		return DefaultBedCenterX, DefaultBedCenterY, nil
	}

	var minX, minY, maxX, maxY float64
	for i, point := range area {
		px, py, err := parsePoint(point)
		if err != nil {
			return 0, 0, fmt.Errorf("printable_area point %d: %w", i+1, err)
		}

		if i == 0 {
			minX, maxX, minY, maxY = px, px, py, py
			continue
		}
		minX = min(minX, px)
		maxX = max(maxX, px)
		minY = min(minY, py)
		maxY = max(maxY, py)
	}

	return (minX + maxX) / 2, (minY + maxY) / 2, nil
}

// parsePoint parses a single "XxY" token
func parsePoint(point string) (float64, float64, error) {
	parts := strings.Split(strings.TrimSpace(point), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid point %q (expected XxY)", point)
	}

	px, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid X in %q: %w", point, err)
	}
	py, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid Y in %q: %w", point, err)
	}
	return px, py, nil
}
