package geometry

import (
	"math"
	"testing"
)

func TestTriangleArea(t *testing.T) {
	// Create a right triangle with sides 3, 4, 5
	tri := NewTriangle(
		NewVector3(0, 0, 1),
		NewVector3(0, 0, 0),
		NewVector3(3, 0, 0),
		NewVector3(0, 4, 0),
	)

	area := tri.Area()
	expected := 6.0 // (3 * 4) / 2 = 6

	if math.Abs(area-expected) > 1e-10 {
		t.Errorf("Area failed: expected %v, got %v", expected, area)
	}
}

func TestTriangleCenter(t *testing.T) {
	tri := NewTriangle(
		NewVector3(0, 0, 1),
		NewVector3(0, 0, 0),
		NewVector3(3, 0, 0),
		NewVector3(0, 3, 0),
	)

	center := tri.Center()
	expected := NewVector3(1, 1, 0)

	if !center.ApproxEqual(expected, 1e-12) {
		t.Errorf("Center failed: expected %v, got %v", expected, center)
	}
}

func TestTriangleFaceNormal(t *testing.T) {
	// Zero normal in the file: fall back to the winding order
	tri := NewTriangle(
		Vector3{},
		NewVector3(0, 0, 0),
		NewVector3(1, 0, 0),
		NewVector3(0, 1, 0),
	)

	normal := tri.FaceNormal()
	expected := NewVector3(0, 0, 1)
	if !normal.ApproxEqual(expected, 1e-12) {
		t.Errorf("FaceNormal failed: expected %v, got %v", expected, normal)
	}

	// Stored normals are normalized but otherwise trusted
	tri.Normal = NewVector3(0, 0, -4)
	normal = tri.FaceNormal()
	expected = NewVector3(0, 0, -1)
	if !normal.ApproxEqual(expected, 1e-12) {
		t.Errorf("FaceNormal failed: expected %v, got %v", expected, normal)
	}
}

func TestBoundingBoxExtend(t *testing.T) {
	bbox := NewBoundingBox()
	if !bbox.IsEmpty() {
		t.Error("IsEmpty failed: new bounding box should be empty")
	}

	bbox.Extend(NewVector3(1, 2, 3))
	bbox.Extend(NewVector3(4, 5, 6))
	bbox.Extend(NewVector3(-1, 0, 2))

	expectedMin := NewVector3(-1, 0, 2)
	expectedMax := NewVector3(4, 5, 6)

	if bbox.Min != expectedMin {
		t.Errorf("Min failed: expected %v, got %v", expectedMin, bbox.Min)
	}
	if bbox.Max != expectedMax {
		t.Errorf("Max failed: expected %v, got %v", expectedMax, bbox.Max)
	}
	if center := bbox.Center(); !center.ApproxEqual(NewVector3(1.5, 2.5, 4), 1e-12) {
		t.Errorf("Center failed: expected (1.5, 2.5, 4), got %v", center)
	}
}
