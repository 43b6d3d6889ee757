package headless

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type geometryData struct {
	name        string
	vertexSize  uint32
	vertexCount uint32
	vertices    []byte
	indexCount  uint32
	indices     []byte
}

// textureHandle is stored in Texture.InternalData.
type textureHandle struct {
	id uint32
}

func (b *Backend) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	if texture == nil {
		return errors.New("texture create: nil texture")
	}
	if err := b.record(OpTextureCreate, 0, texture.Name); err != nil {
		return err
	}
	if err := b.requireInitialized(); err != nil {
		return err
	}
	size := int(texture.Width) * int(texture.Height) * int(texture.ChannelCount)
	if size == 0 || len(pixels) != size {
		return fmt.Errorf("texture create '%s': expected %d bytes of pixel data, got %d", texture.Name, size, len(pixels))
	}

	data := make([]byte, size)
	copy(data, pixels)

	if h, ok := texture.InternalData.(*textureHandle); ok {
		// Re-upload, keep the handle.
		b.textures[h.id] = data
		return nil
	}
	id := b.texturePool.Acquire(texture)
	b.textures[id] = data
	texture.InternalData = &textureHandle{id: id}
	return nil
}

func (b *Backend) TextureDestroy(texture *metadata.Texture) {
	if texture == nil {
		return
	}
	_ = b.record(OpTextureDestroy, 0, texture.Name)
	h, ok := texture.InternalData.(*textureHandle)
	if !ok || !b.initialized {
		return
	}
	if err := b.texturePool.Release(h.id); err != nil {
		core.LogWarn("texture destroy '%s': %s", texture.Name, err)
	}
	delete(b.textures, h.id)
	texture.InternalData = nil
}

// TexturePixels returns the bytes uploaded for texture.
func (b *Backend) TexturePixels(texture *metadata.Texture) ([]byte, bool) {
	h, ok := texture.InternalData.(*textureHandle)
	if !ok {
		return nil, false
	}
	data, ok := b.textures[h.id]
	return data, ok
}

func (b *Backend) GeometryCreate(geometry *metadata.Geometry, vertexSize, vertexCount uint32, vertices interface{}, indices []uint32) error {
	if geometry == nil {
		return errors.New("geometry create: nil geometry")
	}
	if err := b.record(OpGeometryCreate, 0, geometry.Name); err != nil {
		return err
	}
	if err := b.requireInitialized(); err != nil {
		return err
	}
	if vertexCount == 0 || vertexSize == 0 {
		return fmt.Errorf("geometry create '%s': vertex data is required", geometry.Name)
	}

	vertexBytes, err := encode(vertices)
	if err != nil {
		return fmt.Errorf("geometry create '%s': vertices: %w", geometry.Name, err)
	}
	if uint64(len(vertexBytes)) != uint64(vertexSize)*uint64(vertexCount) {
		return fmt.Errorf("geometry create '%s': vertex data is %d bytes, expected %d x %d", geometry.Name, len(vertexBytes), vertexCount, vertexSize)
	}
	var indexBytes []byte
	if len(indices) > 0 {
		if indexBytes, err = encode(indices); err != nil {
			return fmt.Errorf("geometry create '%s': indices: %w", geometry.Name, err)
		}
	}

	data := &geometryData{
		name:        geometry.Name,
		vertexSize:  vertexSize,
		vertexCount: vertexCount,
		vertices:    vertexBytes,
		indexCount:  uint32(len(indices)),
		indices:     indexBytes,
	}

	// Uploading again replaces the old buffers.
	if old, ok := b.geometries[geometry.InternalID]; ok && b.owns(geometry) {
		core.LogDebug("geometry '%s' re-uploaded, replacing %d vertices", old.name, old.vertexCount)
		b.geometries[geometry.InternalID] = data
	} else {
		id := b.geometryPool.Acquire(geometry)
		b.geometries[id] = data
		geometry.InternalID = id
	}

	if geometry.Generation == metadata.InvalidIDUint16 {
		geometry.Generation = 0
	} else {
		geometry.Generation++
	}
	return nil
}

func (b *Backend) GeometryDestroy(geometry *metadata.Geometry) {
	if geometry == nil {
		return
	}
	_ = b.record(OpGeometryDestroy, 0, geometry.Name)
	if !b.initialized {
		return
	}
	if !b.owns(geometry) {
		return
	}
	if err := b.geometryPool.Release(geometry.InternalID); err != nil {
		core.LogWarn("geometry destroy '%s': %s", geometry.Name, err)
	}
	delete(b.geometries, geometry.InternalID)
	geometry.InternalID = metadata.InvalidID
	geometry.Generation = metadata.InvalidIDUint16
}

// GeometryBuffers returns the vertex and index bytes stored for geometry.
func (b *Backend) GeometryBuffers(geometry *metadata.Geometry) (vertices, indices []byte, ok bool) {
	if !b.owns(geometry) {
		return nil, nil, false
	}
	data := b.geometries[geometry.InternalID]
	return data.vertices, data.indices, true
}

func (b *Backend) DrawGeometry(data metadata.GeometryRenderData) error {
	name := ""
	if data.Geometry != nil {
		name = data.Geometry.Name
	}
	if err := b.record(OpDrawGeometry, b.currentID(), name); err != nil {
		return err
	}
	if b.activePass == 0 {
		return errors.New("draw geometry: no renderpass active")
	}
	if b.current == nil {
		return errors.New("draw geometry: no shader in use")
	}
	if data.Geometry == nil {
		return errors.New("draw geometry: nil geometry")
	}
	if !b.owns(data.Geometry) {
		return fmt.Errorf("draw geometry '%s': geometry was not uploaded", name)
	}
	b.stats.Draws++
	return nil
}

// owns reports whether geometry's InternalID was handed out for this very geometry.
func (b *Backend) owns(geometry *metadata.Geometry) bool {
	if b.geometryPool == nil || geometry.InternalID == metadata.InvalidID {
		return false
	}
	return b.geometryPool.Owner(geometry.InternalID) == interface{}(geometry)
}

func (b *Backend) currentID() metadata.ShaderID {
	if b.current == nil {
		return metadata.ShaderID(metadata.InvalidID)
	}
	return b.current.id
}

// encode serializes a fixed size value or slice of fixed size values.
func encode(v interface{}) ([]byte, error) {
	if raw, ok := v.([]byte); ok {
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	}
	if binary.Size(v) < 0 {
		return nil, fmt.Errorf("type %T has no fixed size", v)
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
