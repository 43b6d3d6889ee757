package systems

import (
	"errors"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

var (
	ErrNotFound     = errors.New("resource not registered")
	ErrNoFreeSlot   = errors.New("no free slot, adjust configuration to allow more")
	ErrInvalidInput = errors.New("invalid configuration")
)

// TextureBackend is the part of the renderer the texture system uploads through.
type TextureBackend interface {
	CreateTexture(pixels []uint8, texture *metadata.Texture) error
	DestroyTexture(texture *metadata.Texture) error
}

// MaterialBackend acquires and releases per material shader instances.
type MaterialBackend interface {
	CreateMaterial(material *metadata.Material) error
	DestroyMaterial(material *metadata.Material) error
}

// GeometryBackend uploads vertex and index buffers.
type GeometryBackend interface {
	CreateGeometry(geometry *metadata.Geometry, vertexSize, vertexCount uint32, vertices interface{}, indices []uint32) error
	DestroyGeometry(geometry *metadata.Geometry) error
}

// RendererBackend is everything the systems need from the renderer.
type RendererBackend interface {
	TextureBackend
	MaterialBackend
	GeometryBackend
}
