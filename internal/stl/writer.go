package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/philipparndt/bambu3mf/internal/mesh"
)

// Writer writes indexed meshes back out as STL
type Writer struct{}

// NewWriter creates a new STL writer
func NewWriter() *Writer {
	return &Writer{}
}

// WriteASCII writes the mesh to filename as ASCII STL
func (w *Writer) WriteASCII(m *mesh.IndexedMesh, name, filename string) error {
	return writeFile(filename, func(out io.Writer) error {
		return w.EncodeASCII(out, m, name)
	})
}

// WriteBinary writes the mesh to filename as binary STL
func (w *Writer) WriteBinary(m *mesh.IndexedMesh, filename string) error {
	return writeFile(filename, func(out io.Writer) error {
		return w.EncodeBinary(out, m)
	})
}

// EncodeASCII writes the ASCII STL representation of m
func (w *Writer) EncodeASCII(out io.Writer, m *mesh.IndexedMesh, name string) error {
	bw := bufio.NewWriter(out)

	fmt.Fprintf(bw, "solid %s\n", name)
	for _, tri := range m.Triangles {
		v1, v2, v3 := m.Vertices[tri.V1], m.Vertices[tri.V2], m.Vertices[tri.V3]
		n := facetNormal(v1, v2, v3)

		fmt.Fprintf(bw, "  facet normal %e %e %e\n", n.X, n.Y, n.Z)
		fmt.Fprintf(bw, "    outer loop\n")
		for _, v := range []mesh.Vertex{v1, v2, v3} {
			fmt.Fprintf(bw, "      vertex %e %e %e\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintf(bw, "    endloop\n")
		fmt.Fprintf(bw, "  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)

	return bw.Flush()
}

// EncodeBinary writes the binary STL representation of m
func (w *Writer) EncodeBinary(out io.Writer, m *mesh.IndexedMesh) error {
	bw := bufio.NewWriter(out)

	var header [headerSize]byte
	copy(header[:], "binary STL written by bambu3mf")
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Triangles))); err != nil {
		return fmt.Errorf("error writing triangle count: %w", err)
	}

	record := make([]byte, recordSize)
	for _, tri := range m.Triangles {
		v1, v2, v3 := m.Vertices[tri.V1], m.Vertices[tri.V2], m.Vertices[tri.V3]
		for i, v := range []mesh.Vertex{facetNormal(v1, v2, v3), v1, v2, v3} {
			putFloat32(record[12*i:], v.X)
			putFloat32(record[12*i+4:], v.Y)
			putFloat32(record[12*i+8:], v.Z)
		}
		// attribute byte count stays zero
		if _, err := bw.Write(record); err != nil {
			return fmt.Errorf("error writing triangle: %w", err)
		}
	}

	return bw.Flush()
}

func putFloat32(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}

// facetNormal computes the unit normal (cross product of two edges)
func facetNormal(v1, v2, v3 mesh.Vertex) mesh.Vertex {
	e1 := mesh.Vertex{X: v2.X - v1.X, Y: v2.Y - v1.Y, Z: v2.Z - v1.Z}
	e2 := mesh.Vertex{X: v3.X - v1.X, Y: v3.Y - v1.Y, Z: v3.Z - v1.Z}

	n := mesh.Vertex{
		X: e1.Y*e2.Z - e1.Z*e2.Y,
		Y: e1.Z*e2.X - e1.X*e2.Z,
		Z: e1.X*e2.Y - e1.Y*e2.X,
	}

	length := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if length > 0 {
		n.X /= length
		n.Y /= length
		n.Z /= length
	}
	return n
}

func writeFile(filename string, encode func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}

	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
