package metadata

import "github.com/spaghettifunk/prism/engine/math"

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief The name of the default material drawn in the UI pass. */
const DefaultUIMaterialName string = "default_ui"

/** @brief Selects which built-in shader renders a material. */
type MaterialType int

const (
	MaterialTypeWorld MaterialType = iota
	MaterialTypeUI
)

func (t MaterialType) String() string {
	if t == MaterialTypeUI {
		return "ui"
	}
	return "world"
}

/** @brief Cached uniform locations of the built-in material shader. */
type MaterialShaderUniformLocations struct {
	Projection     Location
	View           Location
	DiffuseColour  Location
	DiffuseTexture Location
	Model          Location
}

/** @brief Cached uniform locations of the built-in UI shader. */
type UIShaderUniformLocations struct {
	Projection     Location
	View           Location
	DiffuseColour  Location
	DiffuseTexture Location
	Model          Location
}

type MaterialReference struct {
	ReferenceCount uint64
	Material       *Material
	AutoRelease    bool
}

/**
 * @brief Material configuration typically loaded from
 * a file or created in code to load a material from.
 */
type MaterialConfig struct {
	/** @brief The name of the material. A random name is generated when empty. */
	Name string
	/** @brief The material type. */
	Type MaterialType
	/** @brief Indicates if the material should be automatically released when no references to it remain. */
	AutoRelease bool
	/** @brief The diffuse colour of the material. */
	DiffuseColour math.Vec4
	/** @brief The diffuse map name. Empty selects the default texture. */
	DiffuseMapName string
	/** @brief Samples the diffuse map without blending neighbouring texels. */
	NearestFilter bool
}

/**
 * @brief A material, which represents the properties
 * of a surface such as texture and colour.
 */
type Material struct {
	/** @brief The material id. */
	ID uint32
	/** @brief The material generation. Incremented every time the material is changed. */
	Generation uint32
	/** @brief The internal material id. Used by the renderer backend to map to internal resources. */
	InternalID uint32
	/** @brief The material name. */
	Name string
	Type MaterialType
	/** @brief The diffuse colour. */
	DiffuseColour math.Vec4
	/** @brief The diffuse texture map. */
	DiffuseMap *TextureMap
	ShaderID   ShaderID
	/** @brief Synced to the renderer's current frame number when the material has been applied that frame. */
	RenderFrameNumber uint64
}
