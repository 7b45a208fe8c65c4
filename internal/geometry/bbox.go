package geometry

import (
	"math"

	"github.com/philipparndt/bambu3mf/internal/mesh"
)

// BoundingBox represents a 3D bounding box
type BoundingBox struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// Width returns the width (X dimension) of the bounding box
func (b *BoundingBox) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the height (Y dimension) of the bounding box
func (b *BoundingBox) Height() float64 {
	return b.MaxY - b.MinY
}

// Depth returns the depth (Z dimension) of the bounding box
func (b *BoundingBox) Depth() float64 {
	return b.MaxZ - b.MinZ
}

// EmptyMeshError is returned when a bounding box is requested for a mesh
// without vertices
type EmptyMeshError struct{}

func (e *EmptyMeshError) Error() string {
	return "mesh has no vertices"
}

// ComputeBox calculates the axis-aligned bounding box of a mesh
func ComputeBox(m *mesh.IndexedMesh) (BoundingBox, error) {
	if m == nil || m.IsEmpty() {
		return BoundingBox{}, &EmptyMeshError{}
	}

	first := m.Vertices[0]
	bbox := BoundingBox{
		MinX: first.X, MinY: first.Y, MinZ: first.Z,
		MaxX: first.X, MaxY: first.Y, MaxZ: first.Z,
	}

	for _, v := range m.Vertices[1:] {
		bbox.MinX = math.Min(bbox.MinX, v.X)
		bbox.MinY = math.Min(bbox.MinY, v.Y)
		bbox.MinZ = math.Min(bbox.MinZ, v.Z)
		bbox.MaxX = math.Max(bbox.MaxX, v.X)
		bbox.MaxY = math.Max(bbox.MaxY, v.Y)
		bbox.MaxZ = math.Max(bbox.MaxZ, v.Z)
	}

	return bbox, nil
}
