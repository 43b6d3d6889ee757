package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func (r *Renderer) CreateTexture(pixels []uint8, texture *metadata.Texture) error {
	if err := r.requireInitialized("CreateTexture"); err != nil {
		return err
	}
	return r.backend.TextureCreate(pixels, texture)
}

func (r *Renderer) DestroyTexture(texture *metadata.Texture) error {
	if err := r.requireInitialized("DestroyTexture"); err != nil {
		return err
	}
	r.backend.TextureDestroy(texture)
	return nil
}

// shaderFor selects the built-in shader that renders materials of type t.
func (r *Renderer) shaderFor(t metadata.MaterialType) metadata.ShaderID {
	if t == metadata.MaterialTypeUI {
		return r.uiShaderID
	}
	return r.materialShaderID
}

// CreateMaterial acquires the instance resources of the material's shader and
// stores their id in material.InternalID.
func (r *Renderer) CreateMaterial(material *metadata.Material) error {
	if err := r.requireInitialized("CreateMaterial"); err != nil {
		return err
	}
	if material == nil {
		return errors.New("create material: nil material")
	}

	var maps []*metadata.TextureMap
	if material.DiffuseMap != nil {
		maps = append(maps, material.DiffuseMap)
	}
	shader := r.shaderFor(material.Type)
	id, err := r.backend.ShaderAcquireInstanceResources(shader, maps)
	if err != nil {
		return fmt.Errorf("create material '%s': %w", material.Name, err)
	}
	material.ShaderID = shader
	material.InternalID = id
	return nil
}

func (r *Renderer) DestroyMaterial(material *metadata.Material) error {
	if err := r.requireInitialized("DestroyMaterial"); err != nil {
		return err
	}
	if material == nil {
		return errors.New("destroy material: nil material")
	}
	if err := r.backend.ShaderReleaseInstanceResources(r.shaderFor(material.Type), material.InternalID); err != nil {
		return fmt.Errorf("destroy material '%s': %w", material.Name, err)
	}
	material.InternalID = metadata.InvalidID
	return nil
}

// CreateGeometry uploads vertices and indices. vertices is a slice of
// math.Vertex3D or math.Vertex2D; the backend copies it.
func (r *Renderer) CreateGeometry(geometry *metadata.Geometry, vertexSize, vertexCount uint32, vertices interface{}, indices []uint32) error {
	if err := r.requireInitialized("CreateGeometry"); err != nil {
		return err
	}
	return r.backend.GeometryCreate(geometry, vertexSize, vertexCount, vertices, indices)
}

func (r *Renderer) DestroyGeometry(geometry *metadata.Geometry) error {
	if err := r.requireInitialized("DestroyGeometry"); err != nil {
		return err
	}
	r.backend.GeometryDestroy(geometry)
	return nil
}
