package renderer

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// RendererBackend is the graphics API specific half of the renderer. The
// frontend owns the frame flow and calls into the backend for every resource
// and command. Any error returned from a frame or pass call is reported to the
// caller of Renderer.DrawFrame.
type RendererBackend interface {
	Initialize(window *metadata.Window) error
	Shutdown() error
	Resized(width, height uint32) error
	// BeginFrame returns an error when the frame cannot be recorded, for example
	// while the swapchain is being recreated. The frontend skips such frames.
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	RenderPassBegin(pass metadata.BuiltinRenderpass) error
	RenderPassEnd(pass metadata.BuiltinRenderpass) error

	TextureCreate(pixels []uint8, texture *metadata.Texture) error
	TextureDestroy(texture *metadata.Texture)
	GeometryCreate(geometry *metadata.Geometry, vertexSize, vertexCount uint32, vertices interface{}, indices []uint32) error
	GeometryDestroy(geometry *metadata.Geometry)
	DrawGeometry(data metadata.GeometryRenderData) error

	ShaderCreate(name string, pass metadata.BuiltinRenderpass, stages []metadata.ShaderStage, useInstances, useLocal bool) (metadata.ShaderID, error)
	ShaderDestroy(shader metadata.ShaderID) error
	ShaderAddAttribute(shader metadata.ShaderID, name string, attributeType metadata.ShaderAttributeType) error
	ShaderAddUniform(shader metadata.ShaderID, name string, uniformType metadata.ShaderUniformType, size uint32, scope metadata.ShaderScope) (metadata.Location, error)
	ShaderAddSampler(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error)
	ShaderInitialize(shader metadata.ShaderID) error
	ShaderUse(shader metadata.ShaderID) error
	ShaderBindGlobals(shader metadata.ShaderID) error
	ShaderBindInstance(shader metadata.ShaderID, instanceID uint32) error
	ShaderApplyGlobals(shader metadata.ShaderID) error
	ShaderApplyInstance(shader metadata.ShaderID) error
	ShaderAcquireInstanceResources(shader metadata.ShaderID, maps []*metadata.TextureMap) (uint32, error)
	ShaderReleaseInstanceResources(shader metadata.ShaderID, instanceID uint32) error
	ShaderUniformLocation(shader metadata.ShaderID, name string) (metadata.Location, error)
	// ShaderSetUniform writes value at location. The dynamic type of value must
	// match the declared uniform type; custom uniforms take a []byte.
	ShaderSetUniform(shader metadata.ShaderID, location metadata.Location, value interface{}) error
	ShaderSetSampler(shader metadata.ShaderID, location metadata.Location, texture *metadata.Texture) error
}

type RendererType uint8

const (
	Vulkan RendererType = iota
	DirectX
	Metal
	OpenGL
	Headless
)

func (t RendererType) String() string {
	switch t {
	case Vulkan:
		return "vulkan"
	case DirectX:
		return "directx"
	case Metal:
		return "metal"
	case OpenGL:
		return "opengl"
	case Headless:
		return "headless"
	}
	return fmt.Sprintf("renderer(%d)", uint8(t))
}

// ParseRendererType maps a configuration name onto a RendererType.
func ParseRendererType(s string) (RendererType, error) {
	for t := Vulkan; t <= Headless; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown renderer backend %q", s)
}
