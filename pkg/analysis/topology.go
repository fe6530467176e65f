package analysis

import (
	"math"

	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/stl"
)

// Face is a set of coplanar triangles of a mesh
type Face struct {
	Normal    geometry.Vector3
	Point     geometry.Vector3 // area-weighted centroid
	Area      float64
	Triangles []int
}

// EdgeInfo contains information about an edge in the model
type EdgeInfo struct {
	Start  geometry.Vector3
	End    geometry.Vector3
	Length float64
}

// Summary contains the size figures shown for a loaded model
type Summary struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	SurfaceArea   float64
	TriangleCount int
	VertexCount   int
	FaceCount     int
	EdgeCount     int
}

// Summarize computes the model summary
func Summarize(model *stl.Model) Summary {
	s := Summary{
		BoundingBox:   model.BoundingBox(),
		TriangleCount: model.TriangleCount(),
		VertexCount:   len(model.Vertices()),
		FaceCount:     len(Faces(model, DefaultAngle)),
		EdgeCount:     len(FeatureEdges(model, DefaultAngle)),
	}
	if !s.BoundingBox.IsEmpty() {
		s.Dimensions = s.BoundingBox.Size()
	}
	for _, t := range model.Triangles {
		s.SurfaceArea += t.Area()
	}
	return s
}

// DefaultAngle is the normal deviation in radians up to which neighbouring
// triangles count as one face
const DefaultAngle = 1e-6

// Faces groups the triangles by the plane they lie in, in order of first
// appearance. Degenerate triangles are skipped.
func Faces(model *stl.Model, angle float64) []Face {
	var faces []Face
	for i, t := range model.Triangles {
		if t.Area() == 0 {
			continue
		}
		n := t.FaceNormal()
		idx := -1
		for j := range faces {
			f := &faces[j]
			if n.Angle(f.Normal) <= angle && math.Abs(t.V1.Sub(f.Point).Dot(f.Normal)) <= 1e-9*math.Max(1, f.Point.Length()) {
				idx = j
				break
			}
		}
		if idx < 0 {
			faces = append(faces, Face{Normal: n, Point: t.Center()})
			idx = len(faces) - 1
		}

		f := &faces[idx]
		area := t.Area()
		f.Point = f.Point.Mul(f.Area).Add(t.Center().Mul(area)).Mul(1 / (f.Area + area))
		f.Area += area
		f.Triangles = append(f.Triangles, i)
	}
	return faces
}

type edgeKey struct{ a, b geometry.Vector3 }

func makeEdgeKey(a, b geometry.Vector3) edgeKey {
	if b.X < a.X || (b.X == a.X && (b.Y < a.Y || (b.Y == a.Y && b.Z < a.Z))) {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// FeatureEdges returns the boundary edges and the edges whose adjacent
// triangle normals differ by more than angle, in order of first appearance.
func FeatureEdges(model *stl.Model, angle float64) []EdgeInfo {
	normals := make(map[edgeKey][]geometry.Vector3)
	var order []edgeKey

	for _, t := range model.Triangles {
		if t.Area() == 0 {
			continue
		}
		v := t.Vertices()
		for i := 0; i < 3; i++ {
			k := makeEdgeKey(v[i], v[(i+1)%3])
			if _, ok := normals[k]; !ok {
				order = append(order, k)
			}
			normals[k] = append(normals[k], t.FaceNormal())
		}
	}

	edges := make([]EdgeInfo, 0)
	for _, k := range order {
		ns := normals[k]
		sharp := len(ns) == 1
		for _, n := range ns[1:] {
			if n.Angle(ns[0]) > angle {
				sharp = true
				break
			}
		}
		if sharp {
			edges = append(edges, EdgeInfo{Start: k.a, End: k.b, Length: k.a.Distance(k.b)})
		}
	}
	return edges
}
