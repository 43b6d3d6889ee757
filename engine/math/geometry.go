package math

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
)

// ErrDegenerateTexcoords is reported when a triangle's UV deltas span no area,
// which makes the tangent basis undefined.
var ErrDegenerateTexcoords = errors.New("degenerate texture coordinates")

// GenerateNormals writes a flat face normal to the three vertices of every
// triangle, in index order. Shared vertices end up with the normal of the last
// triangle referencing them.
func GenerateNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		normal := edge1.Cross(edge2).Normalized()

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// GenerateTangents writes a flat tangent with handedness in W to the three
// vertices of every triangle. Triangles whose UV area is (nearly) zero get the
// normalized first edge with W = +1 instead, and are reported through an error
// wrapping ErrDegenerateTexcoords once the whole buffer has been processed.
//
// See: https://terathon.com/blog/tangent-space.html
func GenerateTangents(vertices []Vertex3D, indices []uint32) error {
	degenerate := 0
	for i := 0; i+2 < len(indices); i += 3 {
		i0 := indices[i+0]
		i1 := indices[i+1]
		i2 := indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		deltaU1 := vertices[i1].Texcoord.X - vertices[i0].Texcoord.X
		deltaV1 := vertices[i1].Texcoord.Y - vertices[i0].Texcoord.Y

		deltaU2 := vertices[i2].Texcoord.X - vertices[i0].Texcoord.X
		deltaV2 := vertices[i2].Texcoord.Y - vertices[i0].Texcoord.Y

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1

		var t4 Vec4
		if kabs(dividend) < K_FLOAT_EPSILON {
			degenerate++
			t4 = edge1.Normalized().ToVec4(1.0)
		} else {
			fc := 1.0 / dividend
			tangent := Vec3{
				fc * (deltaV2*edge1.X - deltaV1*edge2.X),
				fc * (deltaV2*edge1.Y - deltaV1*edge2.Y),
				fc * (deltaV2*edge1.Z - deltaV1*edge2.Z),
			}.Normalized()

			handedness := float32(1.0)
			if deltaV1*deltaU2-deltaV2*deltaU1 < 0.0 {
				handedness = -1.0
			}
			t4 = tangent.ToVec4(handedness)
		}

		vertices[i0].Tangent = t4
		vertices[i1].Tangent = t4
		vertices[i2].Tangent = t4
	}
	if degenerate > 0 {
		return fmt.Errorf("generate tangents: %w in %d triangle(s)", ErrDegenerateTexcoords, degenerate)
	}
	return nil
}

// DeduplicateVertices returns the unique vertices in order of first occurrence
// and rewrites indices in place to point into that list. Vertices are equal only
// when every attribute is exactly equal; no tolerance is applied.
func DeduplicateVertices(vertices []Vertex3D, indices []uint32) []Vertex3D {
	unique := make([]Vertex3D, 0, len(vertices))
	slots := make(map[Vertex3D]uint32, len(vertices))
	remap := make([]uint32, len(vertices))

	for v, vert := range vertices {
		slot, found := slots[vert]
		if !found {
			slot = uint32(len(unique))
			slots[vert] = slot
			unique = append(unique, vert)
		}
		remap[v] = slot
	}

	for i, idx := range indices {
		indices[i] = remap[idx]
	}

	core.LogDebug("DeduplicateVertices: removed %d vertices, orig/now %d/%d.", len(vertices)-len(unique), len(vertices), len(unique))
	return unique
}

// SmoothNormals replaces each referenced vertex normal with the area weighted
// average of the faces sharing it. Run it on a deduplicated mesh, otherwise no
// vertex is shared and the result equals GenerateNormals.
func SmoothNormals(vertices []Vertex3D, indices []uint32) {
	sums := make([]Vec3, len(vertices))
	used := make([]bool, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)
		face := edge1.Cross(edge2)
		for _, idx := range [3]uint32{i0, i1, i2} {
			sums[idx] = sums[idx].Add(face)
			used[idx] = true
		}
	}
	for v := range vertices {
		if used[v] && sums[v].LengthSquared() > 0 {
			vertices[v].Normal = sums[v].Normalized()
		}
	}
}

// ValidateIndices checks that indices describe whole triangles inside a buffer
// of vertexCount vertices.
func ValidateIndices(vertexCount int, indices []uint32) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return fmt.Errorf("index %d at position %d out of range for %d vertices", idx, i, vertexCount)
		}
	}
	return nil
}
