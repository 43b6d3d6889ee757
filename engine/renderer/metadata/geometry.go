package metadata

import (
	"github.com/spaghettifunk/prism/engine/math"
)

/** @brief The name of the default geometry. */
const DefaultGeometryName string = "default"

/**
 * @brief Represents the configuration for a geometry. Exactly one of
 * Vertices or Vertices2D is expected to be filled.
 */
type GeometryConfig struct {
	/** @brief An array of 3D Vertices. */
	Vertices []math.Vertex3D
	/** @brief An array of 2D Vertices, used by UI geometry. */
	Vertices2D []math.Vertex2D
	/** @brief An array of Indices. */
	Indices []uint32

	Center     math.Vec3
	MinExtents math.Vec3
	MaxExtents math.Vec3

	/** @brief The Name of the geometry. */
	Name string
	/** @brief The name of the material used by the geometry. */
	MaterialName string
}

/** @brief Size in bytes of a single vertex. */
func (gc *GeometryConfig) VertexSize() uint32 {
	if len(gc.Vertices2D) > 0 {
		return 16
	}
	return 48
}

func (gc *GeometryConfig) VertexCount() uint32 {
	if len(gc.Vertices2D) > 0 {
		return uint32(len(gc.Vertices2D))
	}
	return uint32(len(gc.Vertices))
}

/** @brief VertexData returns the vertex slice the backend uploads. */
func (gc *GeometryConfig) VertexData() interface{} {
	if len(gc.Vertices2D) > 0 {
		return gc.Vertices2D
	}
	return gc.Vertices
}

type GeometryReference struct {
	ReferenceCount uint64
	Geometry       *Geometry
	AutoRelease    bool
}

/**
 * @brief Represents actual geometry in the world.
 * Typically (but not always, depending on use) paired with a material.
 */
type Geometry struct {
	/** @brief The geometry identifier. */
	ID uint32
	/** @brief The internal geometry identifier, used by the renderer backend to map to internal resources. */
	InternalID uint32
	/** @brief The geometry generation. Incremented every time the geometry changes. */
	Generation uint16
	/** @brief The center of the geometry in local coordinates. */
	Center math.Vec3
	/** @brief The extents of the geometry in local coordinates. */
	Extents math.Extents3D
	/** @brief The geometry name. */
	Name string
	/** @brief A pointer to the material associated with this geometry. Nil selects the default material. */
	Material *Material
}
