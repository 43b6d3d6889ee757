package metadata

import "fmt"

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
)

type TextureReference struct {
	ReferenceCount uint64
	Texture        *Texture
	AutoRelease    bool
}

type TextureFlag int

const (
	/** @brief Indicates if the texture has transparency. */
	TextureFlagHasTransparency TextureFlag = 0x1
)

/** @brief Holds bit flags for textures.. */
type TextureFlagBits uint8

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
)

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uint32
	/** @brief The texture type. */
	TextureType TextureType
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Holds various Flags for this texture. */
	Flags TextureFlagBits
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief The texture Name. */
	Name string
	/** @brief Backend specific data. */
	InternalData interface{}
}

/** @brief A collection of texture uses */
type TextureUse int

const (
	/** @brief An unknown use. This is default, but should never actually be used. */
	TextureUseUnknown TextureUse = 0x00
	/** @brief The texture is used as a diffuse map. */
	TextureUseMapDiffuse TextureUse = 0x01
)

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

func (f TextureFilter) String() string {
	switch f {
	case TextureFilterModeNearest:
		return "nearest"
	case TextureFilterModeLinear:
		return "linear"
	}
	return fmt.Sprintf("filter(%d)", int(f))
}

func (f TextureFilter) Valid() bool {
	return f == TextureFilterModeNearest || f == TextureFilterModeLinear
}

type TextureRepeat int

const (
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMirroredRepeat TextureRepeat = 0x2
	TextureRepeatClampToEdge    TextureRepeat = 0x3
	TextureRepeatClampToBorder  TextureRepeat = 0x4
)

func (r TextureRepeat) String() string {
	switch r {
	case TextureRepeatRepeat:
		return "repeat"
	case TextureRepeatMirroredRepeat:
		return "mirrored_repeat"
	case TextureRepeatClampToEdge:
		return "clamp_to_edge"
	case TextureRepeatClampToBorder:
		return "clamp_to_border"
	}
	return fmt.Sprintf("repeat(%d)", int(r))
}

// Valid reports whether r is a known mode. The zero value is not.
func (r TextureRepeat) Valid() bool {
	return r >= TextureRepeatRepeat && r <= TextureRepeatClampToBorder
}

/**
 * @brief A structure which maps a texture, use and
 * other properties.
 */
type TextureMap struct {
	/** @brief A pointer to a Texture. */
	Texture *Texture
	/** @brief The Use of the texture */
	Use TextureUse
	/** @brief Texture filtering mode for minification. */
	FilterMinify TextureFilter
	/** @brief Texture filtering mode for magnification. */
	FilterMagnify TextureFilter
	/** @brief The repeat mode on the U axis (or X, or S) */
	RepeatU TextureRepeat
	/** @brief The repeat mode on the V axis (or Y, or T) */
	RepeatV TextureRepeat
	/** @brief The repeat mode on the W axis (or Z, or U) */
	RepeatW TextureRepeat
	/** @brief A pointer to internal, render API-specific data. Typically the internal sampler. */
	InternalData interface{}
}

// NewTextureMap maps texture with linear filtering, repeating on every axis.
func NewTextureMap(texture *Texture, use TextureUse) *TextureMap {
	return &TextureMap{
		Texture:       texture,
		Use:           use,
		FilterMinify:  TextureFilterModeLinear,
		FilterMagnify: TextureFilterModeLinear,
		RepeatU:       TextureRepeatRepeat,
		RepeatV:       TextureRepeatRepeat,
		RepeatW:       TextureRepeatRepeat,
	}
}

// Validate checks the sampler settings a backend needs to build a sampler.
func (m *TextureMap) Validate() error {
	for _, f := range []TextureFilter{m.FilterMinify, m.FilterMagnify} {
		if !f.Valid() {
			return fmt.Errorf("texture map: unknown %s", f)
		}
	}
	for _, r := range []TextureRepeat{m.RepeatU, m.RepeatV, m.RepeatW} {
		if !r.Valid() {
			return fmt.Errorf("texture map: unknown %s", r)
		}
	}
	return nil
}
