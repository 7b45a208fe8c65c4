package geometry

import (
	"errors"
	"testing"

	"github.com/philipparndt/bambu3mf/internal/mesh"
)

func TestComputeBox(t *testing.T) {
	m := &mesh.IndexedMesh{
		Vertices: []mesh.Vertex{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Triangles: []mesh.Triangle{{V1: 0, V2: 1, V3: 2}},
	}

	got, err := ComputeBox(m)
	if err != nil {
		t.Fatalf("ComputeBox() error = %v", err)
	}

	want := BoundingBox{MinX: 0, MinY: 0, MinZ: 0, MaxX: 1, MaxY: 1, MaxZ: 0}
	if got != want {
		t.Errorf("ComputeBox() = %+v, want %+v", got, want)
	}
}

func TestComputeBox_Dimensions(t *testing.T) {
	m := &mesh.IndexedMesh{
		Vertices: []mesh.Vertex{
			{X: -5, Y: 2, Z: 1},
			{X: 15, Y: -3, Z: 4},
			{X: 0, Y: 7, Z: 21},
		},
	}

	bbox, err := ComputeBox(m)
	if err != nil {
		t.Fatalf("ComputeBox() error = %v", err)
	}

	if bbox.Width() != 20 {
		t.Errorf("Width() = %v, want 20", bbox.Width())
	}
	if bbox.Height() != 10 {
		t.Errorf("Height() = %v, want 10", bbox.Height())
	}
	if bbox.Depth() != 20 {
		t.Errorf("Depth() = %v, want 20", bbox.Depth())
	}
}

func TestComputeBox_Empty(t *testing.T) {
	for _, m := range []*mesh.IndexedMesh{nil, {}} {
		_, err := ComputeBox(m)
		var emptyErr *EmptyMeshError
		if !errors.As(err, &emptyErr) {
			t.Errorf("ComputeBox(%v) error = %v, want *EmptyMeshError", m, err)
		}
	}
}

func TestBedCenter(t *testing.T) {
	tests := []struct {
		name  string
		area  []string
		wantX float64
		wantY float64
	}{
		{"nil area", nil, 128, 128},
		{"empty area", []string{}, 128, 128},
		{"two points", []string{"0x0", "300x300"}, 128, 128},
		{"square 256", []string{"0x0", "256x0", "256x256", "0x256"}, 128, 128},
		{"square 180", []string{"0x0", "180x0", "180x180", "0x180"}, 90, 90},
		{"offset rectangle", []string{"10x20", "110x20", "110x220", "10x220"}, 60, 120},
		{"triangle uses bounds not centroid", []string{"0x0", "300x0", "0x30"}, 150, 15},
		{"negative origin", []string{"-50x-50", "50x-50", "50x50", "-50x50"}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, err := BedCenter(tt.area)
			if err != nil {
				t.Fatalf("BedCenter() error = %v", err)
			}
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("BedCenter() = (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestBedCenter_InvalidPoint(t *testing.T) {
	tests := [][]string{
		{"0x0", "256", "256x256"},
		{"0x0", "axb", "256x256"},
		{"0x0", "1x2x3", "256x256"},
	}

	for _, area := range tests {
		if _, _, err := BedCenter(area); err == nil {
			t.Errorf("BedCenter(%v) expected error", area)
		}
	}
}

func TestNewPlacement(t *testing.T) {
	p := NewPlacement(128, 64.5)

	if p != (Placement{X: 128, Y: 64.5, Z: 0}) {
		t.Errorf("NewPlacement() = %+v", p)
	}
	if got, want := p.String(), "1 0 0 0 1 0 0 0 1 128 64.5 0"; got != want {
		t.Errorf("String() = %v, want %v", got, want)
	}
}

func TestBuildTranslationTransform(t *testing.T) {
	result := BuildTranslationTransform(10.5, 20.75, 5.25)
	expected := "1 0 0 0 1 0 0 0 1 10.5 20.75 5.25"

	if result != expected {
		t.Errorf("BuildTranslationTransform() = %v, want %v", result, expected)
	}
}

func TestParseTransformOffset(t *testing.T) {
	x, y, z, ok := ParseTransformOffset(NewPlacement(90, 91.25).String())
	if !ok {
		t.Fatal("ParseTransformOffset() failed on a placement string")
	}
	if x != 90 || y != 91.25 || z != 0 {
		t.Errorf("ParseTransformOffset() = (%v, %v, %v), want (90, 91.25, 0)", x, y, z)
	}

	if _, _, _, ok := ParseTransformOffset("1 0 0"); ok {
		t.Error("ParseTransformOffset() accepted a short matrix")
	}
}
