package metadata

import "fmt"

const (
	/** @brief Marks an id that does not reference anything. */
	InvalidID uint32 = 4294967295
	/** @brief 16-bit variant of InvalidID. */
	InvalidIDUint16 uint16 = 65535
)

/** @brief Opaque handle of a shader created by the backend. */
type ShaderID uint32

/** @brief Handle of a uniform or sampler within a shader, assigned by the backend. */
type Location uint16

/** @brief Returned when a uniform lookup fails. */
const InvalidLocation Location = Location(InvalidIDUint16)

/**
 * @brief Represents the current state of a given shader.
 */
type ShaderState int

const (
	/** @brief The shader has not yet gone through the creation process, and is unusable.*/
	SHADER_STATE_NOT_CREATED ShaderState = iota
	/** @brief The shader has gone through the creation process, but not initialization. It is unusable.*/
	SHADER_STATE_UNINITIALIZED
	/** @brief The shader is created and initialized, and is ready for use.*/
	SHADER_STATE_INITIALIZED
)

/** @brief Shader stages available in the system. */
type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageGeometry ShaderStage = 0x00000002
	ShaderStageFragment ShaderStage = 0x00000004
	ShaderStageCompute  ShaderStage = 0x00000008
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageGeometry:
		return "geometry"
	case ShaderStageFragment:
		return "fragment"
	case ShaderStageCompute:
		return "compute"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

/** @brief Available attribute types. */
type ShaderAttributeType uint

const (
	ShaderAttribTypeFloat32   ShaderAttributeType = 0
	ShaderAttribTypeFloat32_2 ShaderAttributeType = 1
	ShaderAttribTypeFloat32_3 ShaderAttributeType = 2
	ShaderAttribTypeFloat32_4 ShaderAttributeType = 3
	ShaderAttribTypeMatrix4   ShaderAttributeType = 4
	ShaderAttribTypeInt8      ShaderAttributeType = 5
	ShaderAttribTypeUint8     ShaderAttributeType = 6
	ShaderAttribTypeInt16     ShaderAttributeType = 7
	ShaderAttribTypeUint16    ShaderAttributeType = 8
	ShaderAttribTypeInt32     ShaderAttributeType = 9
	ShaderAttribTypeUint32    ShaderAttributeType = 10
)

var attributeTypeNames = map[ShaderAttributeType]string{
	ShaderAttribTypeFloat32:   "f32",
	ShaderAttribTypeFloat32_2: "vec2",
	ShaderAttribTypeFloat32_3: "vec3",
	ShaderAttribTypeFloat32_4: "vec4",
	ShaderAttribTypeMatrix4:   "mat4",
	ShaderAttribTypeInt8:      "i8",
	ShaderAttribTypeUint8:     "u8",
	ShaderAttribTypeInt16:     "i16",
	ShaderAttribTypeUint16:    "u16",
	ShaderAttribTypeInt32:     "i32",
	ShaderAttribTypeUint32:    "u32",
}

/** @brief Size returns the attribute size in bytes, or 0 for an unknown type. */
func (t ShaderAttributeType) Size() uint32 {
	switch t {
	case ShaderAttribTypeInt8, ShaderAttribTypeUint8:
		return 1
	case ShaderAttribTypeInt16, ShaderAttribTypeUint16:
		return 2
	case ShaderAttribTypeFloat32, ShaderAttribTypeInt32, ShaderAttribTypeUint32:
		return 4
	case ShaderAttribTypeFloat32_2:
		return 8
	case ShaderAttribTypeFloat32_3:
		return 12
	case ShaderAttribTypeFloat32_4:
		return 16
	case ShaderAttribTypeMatrix4:
		return 64
	}
	return 0
}

func (t ShaderAttributeType) String() string {
	if s, ok := attributeTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("attribute(%d)", uint(t))
}

/** @brief Available uniform types. */
type ShaderUniformType uint

const (
	ShaderUniformTypeFloat32   ShaderUniformType = 0
	ShaderUniformTypeFloat32_2 ShaderUniformType = 1
	ShaderUniformTypeFloat32_3 ShaderUniformType = 2
	ShaderUniformTypeFloat32_4 ShaderUniformType = 3
	ShaderUniformTypeInt8      ShaderUniformType = 4
	ShaderUniformTypeUint8     ShaderUniformType = 5
	ShaderUniformTypeInt16     ShaderUniformType = 6
	ShaderUniformTypeUint16    ShaderUniformType = 7
	ShaderUniformTypeInt32     ShaderUniformType = 8
	ShaderUniformTypeUint32    ShaderUniformType = 9
	ShaderUniformTypeMatrix4   ShaderUniformType = 10
	ShaderUniformTypeSampler   ShaderUniformType = 11
	ShaderUniformTypeCustom    ShaderUniformType = 255
)

var uniformTypeNames = map[ShaderUniformType]string{
	ShaderUniformTypeFloat32:   "f32",
	ShaderUniformTypeFloat32_2: "vec2",
	ShaderUniformTypeFloat32_3: "vec3",
	ShaderUniformTypeFloat32_4: "vec4",
	ShaderUniformTypeInt8:      "i8",
	ShaderUniformTypeUint8:     "u8",
	ShaderUniformTypeInt16:     "i16",
	ShaderUniformTypeUint16:    "u16",
	ShaderUniformTypeInt32:     "i32",
	ShaderUniformTypeUint32:    "u32",
	ShaderUniformTypeMatrix4:   "mat4",
	ShaderUniformTypeSampler:   "samp",
	ShaderUniformTypeCustom:    "custom",
}

/**
 * @brief Size returns the fixed size in bytes of the uniform type. Samplers
 * occupy no uniform storage and custom uniforms carry their own size, so both
 * report 0.
 */
func (t ShaderUniformType) Size() uint32 {
	switch t {
	case ShaderUniformTypeInt8, ShaderUniformTypeUint8:
		return 1
	case ShaderUniformTypeInt16, ShaderUniformTypeUint16:
		return 2
	case ShaderUniformTypeFloat32, ShaderUniformTypeInt32, ShaderUniformTypeUint32:
		return 4
	case ShaderUniformTypeFloat32_2:
		return 8
	case ShaderUniformTypeFloat32_3:
		return 12
	case ShaderUniformTypeFloat32_4:
		return 16
	case ShaderUniformTypeMatrix4:
		return 64
	}
	return 0
}

func (t ShaderUniformType) String() string {
	if s, ok := uniformTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("uniform(%d)", uint(t))
}

/**
 * @brief Defines shader scope, which indicates how
 * often it gets updated.
 */
type ShaderScope int

const (
	/** @brief Global shader scope, generally updated once per frame. */
	ShaderScopeGlobal ShaderScope = 0
	/** @brief Instance shader scope, generally updated "per-instance" of the shader. */
	ShaderScopeInstance ShaderScope = 1
	/** @brief Local shader scope, generally updated per-object */
	ShaderScopeLocal ShaderScope = 2
)

func (s ShaderScope) String() string {
	switch s {
	case ShaderScopeGlobal:
		return "global"
	case ShaderScopeInstance:
		return "instance"
	case ShaderScopeLocal:
		return "local"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

/** @brief The renderpasses every backend provides. */
type BuiltinRenderpass uint8

const (
	BuiltinRenderpassWorld BuiltinRenderpass = 0x01
	BuiltinRenderpassUI    BuiltinRenderpass = 0x02
)

func (p BuiltinRenderpass) String() string {
	switch p {
	case BuiltinRenderpassWorld:
		return "Renderpass.Builtin.World"
	case BuiltinRenderpassUI:
		return "Renderpass.Builtin.UI"
	}
	return fmt.Sprintf("Renderpass(%d)", uint8(p))
}

/** @brief Configuration for an attribute. */
type ShaderAttributeConfig struct {
	/** @brief The name of the attribute. */
	Name string
	/** @brief The type of the attribute. */
	ShaderAttributeType ShaderAttributeType
}

/** @brief Configuration for a uniform. */
type ShaderUniformConfig struct {
	/** @brief The name of the uniform. */
	Name string
	/** @brief The size of the uniform. Only read for custom uniforms. */
	Size uint32
	/** @brief The type of the uniform. */
	ShaderUniformType ShaderUniformType
	/** @brief The scope of the uniform. */
	Scope ShaderScope
}

/**
 * @brief Configuration for a shader. The built-in shaders are described
 * with one of these and created through the generic shader surface.
 */
type ShaderConfig struct {
	/** @brief The name of the shader to be created. */
	Name string
	/** @brief The renderpass used by this shader. */
	Renderpass BuiltinRenderpass
	/** @brief The collection of stages. */
	Stages []ShaderStage
	/** @brief Whether the shader has an instance scope. */
	UseInstances bool
	/** @brief Whether the shader has a local scope. */
	UseLocal bool
	/** @brief The collection of attributes, in slot order. */
	Attributes []ShaderAttributeConfig
	/** @brief The collection of uniforms and samplers. */
	Uniforms []ShaderUniformConfig
}
