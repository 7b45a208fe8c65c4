// Package mesh holds the indexed triangle mesh shared by the decoder,
// the placement code and the 3MF emitter.
package mesh

// Vertex represents a 3D vertex
type Vertex struct {
	X, Y, Z float64
}

// Triangle represents a triangle by vertex indices
type Triangle struct {
	V1, V2, V3 int
}

// IndexedMesh is a list of unique vertices plus triangles referencing them.
// Vertex order is first-occurrence order and must not be renumbered.
type IndexedMesh struct {
	Vertices  []Vertex
	Triangles []Triangle
}

// VertexCount returns the number of vertices.
func (m *IndexedMesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *IndexedMesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no vertices.
func (m *IndexedMesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Indexer builds an IndexedMesh, collapsing equal vertices onto the index
// of their first occurrence.
type Indexer struct {
	mesh    *IndexedMesh
	indices map[Vertex]int
}

// NewIndexer creates an empty Indexer
func NewIndexer() *Indexer {
	return &Indexer{
		mesh:    &IndexedMesh{},
		indices: make(map[Vertex]int),
	}
}

// Index returns the index of v, appending it if it was not seen before.
func (ix *Indexer) Index(v Vertex) int {
	if idx, exists := ix.indices[v]; exists {
		return idx
	}
	idx := len(ix.mesh.Vertices)
	ix.indices[v] = idx
	ix.mesh.Vertices = append(ix.mesh.Vertices, v)
	return idx
}

// AddTriangle appends a triangle of already indexed vertices.
func (ix *Indexer) AddTriangle(v1, v2, v3 int) {
	ix.mesh.Triangles = append(ix.mesh.Triangles, Triangle{V1: v1, V2: v2, V3: v3})
}

// Mesh returns the mesh built so far.
func (ix *Indexer) Mesh() *IndexedMesh {
	return ix.mesh
}
