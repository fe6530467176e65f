package stl

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/philipparndt/gowp/pkg/geometry"
)

const cornerASCII = `solid corner
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 -1 0
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 0 1
    endloop
  endfacet
endsolid corner
`

func TestParseASCII(t *testing.T) {
	model, err := ParseReader(strings.NewReader(cornerASCII))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if model.Name != "corner" {
		t.Errorf("Name failed: expected corner, got %q", model.Name)
	}
	if model.TriangleCount() != 2 {
		t.Fatalf("TriangleCount failed: expected 2, got %d", model.TriangleCount())
	}
	if n := model.Triangles[1].Normal; n != geometry.NewVector3(0, -1, 0) {
		t.Errorf("Normal failed: expected (0, -1, 0), got %v", n)
	}
}

func TestParseASCIIBadNumber(t *testing.T) {
	src := "solid bad\nfacet normal 0 0 x\nendfacet\nendsolid bad\n"
	if _, err := ParseReader(strings.NewReader(src)); err == nil {
		t.Error("ParseReader failed: expected an error for a malformed normal")
	}
}

func TestParseBinary(t *testing.T) {
	var buf bytes.Buffer
	header := make([]byte, 80)
	copy(header, "binary part")
	buf.Write(header)
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	facet := [12]float32{0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 2, 0}
	binary.Write(&buf, binary.LittleEndian, facet)
	binary.Write(&buf, binary.LittleEndian, uint16(0))

	model, err := ParseReader(&buf)
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if model.Name != "binary part" {
		t.Errorf("Name failed: expected %q, got %q", "binary part", model.Name)
	}
	if model.TriangleCount() != 1 {
		t.Fatalf("TriangleCount failed: expected 1, got %d", model.TriangleCount())
	}
	if v := model.Triangles[0].V2; v != geometry.NewVector3(2, 0, 0) {
		t.Errorf("Vertex failed: expected (2, 0, 0), got %v", v)
	}
}

func TestModelVertices(t *testing.T) {
	model, err := ParseReader(strings.NewReader(cornerASCII))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	vertices := model.Vertices()
	if len(vertices) != 4 {
		t.Fatalf("Vertices failed: expected 4 distinct corners, got %d", len(vertices))
	}
	if vertices[3] != geometry.NewVector3(0, 0, 1) {
		t.Errorf("Vertices order failed: expected (0, 0, 1) last, got %v", vertices[3])
	}
}
