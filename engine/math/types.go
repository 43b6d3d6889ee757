package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 is a column-major 4x4 matrix, typically used to represent object transformations.
type Mat4 struct {
	Data [16]float32
}

// Extents3D is the axis aligned box of a 3d object.
type Extents3D struct {
	Min Vec3
	Max Vec3
}

// Vertex3D is a single vertex in 3D space. The layout is what the built-in
// material shader consumes; it must stay free of padding so it can be
// byte-copied into vertex buffers.
type Vertex3D struct {
	Position Vec3
	Texcoord Vec2
	Normal   Vec3
	// Tangent xyz plus the bitangent handedness in W (-1 or +1).
	Tangent Vec4
}

// Vertex2D is the layout consumed by the built-in UI shader.
type Vertex2D struct {
	Position Vec2
	Texcoord Vec2
}
