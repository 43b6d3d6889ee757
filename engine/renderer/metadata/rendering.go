package metadata

import "github.com/spaghettifunk/prism/engine/math"

/** @brief The surface a backend renders into. Handle is backend specific. */
type Window struct {
	Title  string
	Width  uint32
	Height uint32
	Handle interface{}
}

/** @brief A single draw: a geometry and its model matrix. */
type GeometryRenderData struct {
	Model    math.Mat4
	Geometry *Geometry
}

/**
 * @brief A structure which is generated by the application and sent once
 * to the renderer to render a given frame. Consists of the delta time and
 * the draw lists of the world and UI passes.
 */
type RenderPacket struct {
	DeltaTime float64
	/** @brief Drawn in the world pass, in order. */
	Geometries []GeometryRenderData
	/** @brief Drawn in the UI pass, in order. */
	UIGeometries []GeometryRenderData
}
