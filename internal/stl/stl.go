package stl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/philipparndt/bambu3mf/internal/logger"
	"github.com/philipparndt/bambu3mf/internal/mesh"
)

const (
	headerSize     = 80
	countSize      = 4
	recordSize     = 50
	facetScanSize = 1000
)

// Format identifies the STL flavour of an input file
type Format int

const (
	FormatBinary Format = iota
	FormatASCII
)

func (f Format) String() string {
	if f == FormatASCII {
		return "ascii"
	}
	return "binary"
}

// Decoder reads STL files into indexed meshes
type Decoder struct{}

// NewDecoder creates a new STL decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode reads an STL file and returns the indexed mesh
func (d *Decoder) Decode(filename string) (*mesh.IndexedMesh, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &InputNotFoundError{Path: filename, Err: err}
		}
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	m, err := d.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// DecodeBytes decodes an in-memory STL file, detecting the format first
func (d *Decoder) DecodeBytes(data []byte) (*mesh.IndexedMesh, error) {
	format := DetectFormat(data)
	logger.Log.Debug("detected STL format",
		zap.String("format", format.String()),
		zap.Int("bytes", len(data)))

	if format == FormatASCII {
		return parseASCII(data)
	}
	return parseBinary(data)
}

// DetectFormat sniffs the content: the first 80 bytes must be ASCII text
// starting with "solid" and "facet" must occur within the first 1000
// characters. Anything else is treated as binary, even when a binary header
// happens to start with "solid".
func DetectFormat(data []byte) Format {
	header := data
	if len(header) > headerSize {
		header = header[:headerSize]
	}

	for _, b := range header {
		if b >= utf8.RuneSelf {
			return FormatBinary
		}
	}

	if !strings.HasPrefix(strings.TrimLeftFunc(string(header), isSpace), "solid") {
		return FormatBinary
	}

	head := data
	if limit := facetScanSize*utf8.UTFMax + 1; len(head) > limit {
		head = head[:limit]
	}
	text, ok := leadingText(normalizeNewlines(head), facetScanSize)
	if !ok || !strings.Contains(text, "facet") {
		return FormatBinary
	}
	return FormatASCII
}

// leadingText returns up to n characters of data decoded as UTF-8.
// ok is false if an invalid sequence is hit before n characters.
func leadingText(data []byte, n int) (string, bool) {
	end := 0
	for i := 0; i < n && end < len(data); i++ {
		r, size := utf8.DecodeRune(data[end:])
		if r == utf8.RuneError && size <= 1 {
			return "", false
		}
		end += size
	}
	return string(data[:end]), true
}

// normalizeNewlines turns CRLF and lone CR line endings into LF
func normalizeNewlines(data []byte) []byte {
	if !bytes.ContainsRune(data, '\r') {
		return data
	}
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
}

// isSpace matches the ASCII whitespace set, including the file/group/record/unit separators
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x1f:
		return true
	}
	return false
}

// parseASCII parses an ASCII STL file. A facet that does not have exactly
// three vertices is dropped without error; its vertices stay indexed.
func parseASCII(data []byte) (*mesh.IndexedMesh, error) {
	indexer := mesh.NewIndexer()
	var current []int
	dropped := 0

	for lineNo, raw := range bytes.Split(normalizeNewlines(data), []byte("\n")) {
		line := strings.TrimSpace(string(raw))

		switch {
		case strings.HasPrefix(line, "vertex"):
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return nil, &FormatError{
					Format: FormatASCII,
					Line:   lineNo + 1,
					Reason: fmt.Sprintf("vertex needs 3 coordinates, got %d", len(fields)-1),
				}
			}

			var coords [3]float64
			for i := range coords {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, &FormatError{
						Format: FormatASCII,
						Line:   lineNo + 1,
						Reason: fmt.Sprintf("invalid coordinate %q", fields[i+1]),
						Err:    err,
					}
				}
				coords[i] = v
			}
			current = append(current, indexer.Index(mesh.Vertex{X: coords[0], Y: coords[1], Z: coords[2]}))

		case strings.HasPrefix(line, "endfacet"):
			if len(current) == 3 {
				indexer.AddTriangle(current[0], current[1], current[2])
			} else {
				dropped++
			}
			current = current[:0]
		}
	}

	m := indexer.Mesh()
	logger.Log.Debug("parsed ascii STL",
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Int("dropped_facets", dropped))
	return m, nil
}

// parseBinary parses a binary STL file. Coordinates are rounded to six
// decimals before deduplication so float32 noise does not split vertices.
func parseBinary(data []byte) (*mesh.IndexedMesh, error) {
	if len(data) < headerSize+countSize {
		return nil, &FormatError{
			Format: FormatBinary,
			Reason: fmt.Sprintf("file too short for header and triangle count (%d bytes)", len(data)),
		}
	}

	triangleCount := binary.LittleEndian.Uint32(data[headerSize:])
	body := data[headerSize+countSize:]

	if uint64(len(body)) < uint64(triangleCount)*recordSize {
		return nil, &FormatError{
			Format: FormatBinary,
			Reason: fmt.Sprintf("declared %d triangles but only %d complete records present",
				triangleCount, len(body)/recordSize),
		}
	}

	indexer := mesh.NewIndexer()
	var tri [3]int
	for i := 0; i < int(triangleCount); i++ {
		record := body[i*recordSize : (i+1)*recordSize]

		for v := range tri {
			// Skip the 12 byte normal
			start := 12 + 12*v
			tri[v] = indexer.Index(mesh.Vertex{
				X: round6(readFloat32(record[start:])),
				Y: round6(readFloat32(record[start+4:])),
				Z: round6(readFloat32(record[start+8:])),
			})
		}
		indexer.AddTriangle(tri[0], tri[1], tri[2])
	}

	m := indexer.Mesh()
	logger.Log.Debug("parsed binary STL",
		zap.Uint32("declared_triangles", triangleCount),
		zap.Int("vertices", m.VertexCount()))
	return m, nil
}

func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

// round6 rounds to 6 decimal places using correctly rounded decimal
// conversion, ties to even.
func round6(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 6, 64), 64)
	if err != nil {
		return v
	}
	return r
}
