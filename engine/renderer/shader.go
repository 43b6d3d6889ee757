package renderer

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

var builtinStages = []metadata.ShaderStage{metadata.ShaderStageVertex, metadata.ShaderStageFragment}

func builtinMaterialShaderConfig() metadata.ShaderConfig {
	return metadata.ShaderConfig{
		Name:         BuiltinMaterialShaderName,
		Renderpass:   metadata.BuiltinRenderpassWorld,
		Stages:       builtinStages,
		UseInstances: true,
		UseLocal:     true,
		Attributes: []metadata.ShaderAttributeConfig{
			{Name: "in_position", ShaderAttributeType: metadata.ShaderAttribTypeFloat32_3},
			{Name: "in_texcoord", ShaderAttributeType: metadata.ShaderAttribTypeFloat32_2},
		},
		Uniforms: builtinUniforms(),
	}
}

func builtinUIShaderConfig() metadata.ShaderConfig {
	return metadata.ShaderConfig{
		Name:         BuiltinUIShaderName,
		Renderpass:   metadata.BuiltinRenderpassUI,
		Stages:       builtinStages,
		UseInstances: true,
		UseLocal:     true,
		Attributes: []metadata.ShaderAttributeConfig{
			{Name: "in_position", ShaderAttributeType: metadata.ShaderAttribTypeFloat32_2},
			{Name: "in_texcoord", ShaderAttributeType: metadata.ShaderAttribTypeFloat32_2},
		},
		Uniforms: builtinUniforms(),
	}
}

func builtinUniforms() []metadata.ShaderUniformConfig {
	return []metadata.ShaderUniformConfig{
		{Name: "projection", ShaderUniformType: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeGlobal},
		{Name: "view", ShaderUniformType: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeGlobal},
		{Name: "diffuse_colour", ShaderUniformType: metadata.ShaderUniformTypeFloat32_4, Scope: metadata.ShaderScopeInstance},
		{Name: "diffuse_texture", ShaderUniformType: metadata.ShaderUniformTypeSampler, Scope: metadata.ShaderScopeInstance},
		{Name: "model", ShaderUniformType: metadata.ShaderUniformTypeMatrix4, Scope: metadata.ShaderScopeLocal},
	}
}

// createShader builds and initializes a shader from config and returns the
// location of every uniform by name. A shader that fails halfway is destroyed.
func (r *Renderer) createShader(config metadata.ShaderConfig) (metadata.ShaderID, map[string]metadata.Location, error) {
	id, err := r.backend.ShaderCreate(config.Name, config.Renderpass, config.Stages, config.UseInstances, config.UseLocal)
	if err != nil {
		return metadata.ShaderID(metadata.InvalidID), nil, fmt.Errorf("%s: %w: %w", config.Name, core.ErrShaderCreate, err)
	}

	locations, err := r.configureShader(id, config)
	if err != nil {
		if derr := r.backend.ShaderDestroy(id); derr != nil {
			core.LogWarn("failed to destroy shader '%s': %s", config.Name, derr)
		}
		return metadata.ShaderID(metadata.InvalidID), nil, fmt.Errorf("%s: %w: %w", config.Name, core.ErrShaderCreate, err)
	}
	return id, locations, nil
}

func (r *Renderer) configureShader(id metadata.ShaderID, config metadata.ShaderConfig) (map[string]metadata.Location, error) {
	for _, a := range config.Attributes {
		if err := r.backend.ShaderAddAttribute(id, a.Name, a.ShaderAttributeType); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
		}
	}

	locations := make(map[string]metadata.Location, len(config.Uniforms))
	for _, u := range config.Uniforms {
		var (
			loc metadata.Location
			err error
		)
		if u.ShaderUniformType == metadata.ShaderUniformTypeSampler {
			loc, err = r.backend.ShaderAddSampler(id, u.Name, u.Scope)
		} else {
			size := u.ShaderUniformType.Size()
			if u.ShaderUniformType == metadata.ShaderUniformTypeCustom {
				size = u.Size
			}
			loc, err = r.backend.ShaderAddUniform(id, u.Name, u.ShaderUniformType, size, u.Scope)
		}
		if err != nil {
			return nil, fmt.Errorf("uniform %s: %w", u.Name, err)
		}
		locations[u.Name] = loc
	}

	if err := r.backend.ShaderInitialize(id); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return locations, nil
}

// ShaderCreateFromConfig creates, configures and initializes a user shader in one call.
func (r *Renderer) ShaderCreateFromConfig(config metadata.ShaderConfig) (metadata.ShaderID, map[string]metadata.Location, error) {
	if err := r.requireInitialized("ShaderCreateFromConfig"); err != nil {
		return metadata.ShaderID(metadata.InvalidID), nil, err
	}
	return r.createShader(config)
}

func (r *Renderer) ShaderCreate(name string, pass metadata.BuiltinRenderpass, stages []metadata.ShaderStage, useInstances, useLocal bool) (metadata.ShaderID, error) {
	if err := r.requireInitialized("ShaderCreate"); err != nil {
		return metadata.ShaderID(metadata.InvalidID), err
	}
	return r.backend.ShaderCreate(name, pass, stages, useInstances, useLocal)
}

func (r *Renderer) ShaderDestroy(shader metadata.ShaderID) error {
	if err := r.requireInitialized("ShaderDestroy"); err != nil {
		return err
	}
	return r.backend.ShaderDestroy(shader)
}

func (r *Renderer) ShaderAddAttribute(shader metadata.ShaderID, name string, attributeType metadata.ShaderAttributeType) error {
	if err := r.requireInitialized("ShaderAddAttribute"); err != nil {
		return err
	}
	return r.backend.ShaderAddAttribute(shader, name, attributeType)
}

func (r *Renderer) addUniform(fn string, shader metadata.ShaderID, name string, uniformType metadata.ShaderUniformType, size uint32, scope metadata.ShaderScope) (metadata.Location, error) {
	if err := r.requireInitialized(fn); err != nil {
		return metadata.InvalidLocation, err
	}
	return r.backend.ShaderAddUniform(shader, name, uniformType, size, scope)
}

func (r *Renderer) ShaderAddUniformI8(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformI8", shader, name, metadata.ShaderUniformTypeInt8, 1, scope)
}

func (r *Renderer) ShaderAddUniformI16(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformI16", shader, name, metadata.ShaderUniformTypeInt16, 2, scope)
}

func (r *Renderer) ShaderAddUniformI32(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformI32", shader, name, metadata.ShaderUniformTypeInt32, 4, scope)
}

func (r *Renderer) ShaderAddUniformU8(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformU8", shader, name, metadata.ShaderUniformTypeUint8, 1, scope)
}

func (r *Renderer) ShaderAddUniformU16(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformU16", shader, name, metadata.ShaderUniformTypeUint16, 2, scope)
}

func (r *Renderer) ShaderAddUniformU32(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformU32", shader, name, metadata.ShaderUniformTypeUint32, 4, scope)
}

func (r *Renderer) ShaderAddUniformF32(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformF32", shader, name, metadata.ShaderUniformTypeFloat32, 4, scope)
}

func (r *Renderer) ShaderAddUniformVec2(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformVec2", shader, name, metadata.ShaderUniformTypeFloat32_2, 8, scope)
}

func (r *Renderer) ShaderAddUniformVec3(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformVec3", shader, name, metadata.ShaderUniformTypeFloat32_3, 12, scope)
}

func (r *Renderer) ShaderAddUniformVec4(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformVec4", shader, name, metadata.ShaderUniformTypeFloat32_4, 16, scope)
}

func (r *Renderer) ShaderAddUniformMat4(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformMat4", shader, name, metadata.ShaderUniformTypeMatrix4, 64, scope)
}

// ShaderAddUniformCustom declares an opaque block of size bytes.
func (r *Renderer) ShaderAddUniformCustom(shader metadata.ShaderID, name string, size uint32, scope metadata.ShaderScope) (metadata.Location, error) {
	return r.addUniform("ShaderAddUniformCustom", shader, name, metadata.ShaderUniformTypeCustom, size, scope)
}

func (r *Renderer) ShaderAddSampler(shader metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	if err := r.requireInitialized("ShaderAddSampler"); err != nil {
		return metadata.InvalidLocation, err
	}
	return r.backend.ShaderAddSampler(shader, name, scope)
}

func (r *Renderer) ShaderInitialize(shader metadata.ShaderID) error {
	if err := r.requireInitialized("ShaderInitialize"); err != nil {
		return err
	}
	return r.backend.ShaderInitialize(shader)
}

func (r *Renderer) ShaderUse(shader metadata.ShaderID) error {
	if err := r.requireInitialized("ShaderUse"); err != nil {
		return err
	}
	return r.backend.ShaderUse(shader)
}

func (r *Renderer) ShaderBindGlobals(shader metadata.ShaderID) error {
	if err := r.requireInitialized("ShaderBindGlobals"); err != nil {
		return err
	}
	return r.backend.ShaderBindGlobals(shader)
}

func (r *Renderer) ShaderBindInstance(shader metadata.ShaderID, instanceID uint32) error {
	if err := r.requireInitialized("ShaderBindInstance"); err != nil {
		return err
	}
	return r.backend.ShaderBindInstance(shader, instanceID)
}

func (r *Renderer) ShaderApplyGlobals(shader metadata.ShaderID) error {
	if err := r.requireInitialized("ShaderApplyGlobals"); err != nil {
		return err
	}
	return r.backend.ShaderApplyGlobals(shader)
}

func (r *Renderer) ShaderApplyInstance(shader metadata.ShaderID) error {
	if err := r.requireInitialized("ShaderApplyInstance"); err != nil {
		return err
	}
	return r.backend.ShaderApplyInstance(shader)
}

func (r *Renderer) ShaderAcquireInstanceResources(shader metadata.ShaderID, maps []*metadata.TextureMap) (uint32, error) {
	if err := r.requireInitialized("ShaderAcquireInstanceResources"); err != nil {
		return metadata.InvalidID, err
	}
	return r.backend.ShaderAcquireInstanceResources(shader, maps)
}

func (r *Renderer) ShaderReleaseInstanceResources(shader metadata.ShaderID, instanceID uint32) error {
	if err := r.requireInitialized("ShaderReleaseInstanceResources"); err != nil {
		return err
	}
	return r.backend.ShaderReleaseInstanceResources(shader, instanceID)
}

func (r *Renderer) ShaderUniformLocation(shader metadata.ShaderID, name string) (metadata.Location, error) {
	if err := r.requireInitialized("ShaderUniformLocation"); err != nil {
		return metadata.InvalidLocation, err
	}
	return r.backend.ShaderUniformLocation(shader, name)
}

func (r *Renderer) setUniform(fn string, shader metadata.ShaderID, location metadata.Location, value interface{}) error {
	if err := r.requireInitialized(fn); err != nil {
		return err
	}
	return r.backend.ShaderSetUniform(shader, location, value)
}

func (r *Renderer) ShaderSetUniformI8(shader metadata.ShaderID, location metadata.Location, value int8) error {
	return r.setUniform("ShaderSetUniformI8", shader, location, value)
}

func (r *Renderer) ShaderSetUniformI16(shader metadata.ShaderID, location metadata.Location, value int16) error {
	return r.setUniform("ShaderSetUniformI16", shader, location, value)
}

func (r *Renderer) ShaderSetUniformI32(shader metadata.ShaderID, location metadata.Location, value int32) error {
	return r.setUniform("ShaderSetUniformI32", shader, location, value)
}

func (r *Renderer) ShaderSetUniformU8(shader metadata.ShaderID, location metadata.Location, value uint8) error {
	return r.setUniform("ShaderSetUniformU8", shader, location, value)
}

func (r *Renderer) ShaderSetUniformU16(shader metadata.ShaderID, location metadata.Location, value uint16) error {
	return r.setUniform("ShaderSetUniformU16", shader, location, value)
}

func (r *Renderer) ShaderSetUniformU32(shader metadata.ShaderID, location metadata.Location, value uint32) error {
	return r.setUniform("ShaderSetUniformU32", shader, location, value)
}

func (r *Renderer) ShaderSetUniformF32(shader metadata.ShaderID, location metadata.Location, value float32) error {
	return r.setUniform("ShaderSetUniformF32", shader, location, value)
}

func (r *Renderer) ShaderSetUniformVec2(shader metadata.ShaderID, location metadata.Location, value math.Vec2) error {
	return r.setUniform("ShaderSetUniformVec2", shader, location, value)
}

func (r *Renderer) ShaderSetUniformVec2f(shader metadata.ShaderID, location metadata.Location, x, y float32) error {
	return r.setUniform("ShaderSetUniformVec2f", shader, location, math.NewVec2(x, y))
}

func (r *Renderer) ShaderSetUniformVec3(shader metadata.ShaderID, location metadata.Location, value math.Vec3) error {
	return r.setUniform("ShaderSetUniformVec3", shader, location, value)
}

func (r *Renderer) ShaderSetUniformVec3f(shader metadata.ShaderID, location metadata.Location, x, y, z float32) error {
	return r.setUniform("ShaderSetUniformVec3f", shader, location, math.NewVec3(x, y, z))
}

func (r *Renderer) ShaderSetUniformVec4(shader metadata.ShaderID, location metadata.Location, value math.Vec4) error {
	return r.setUniform("ShaderSetUniformVec4", shader, location, value)
}

func (r *Renderer) ShaderSetUniformVec4f(shader metadata.ShaderID, location metadata.Location, x, y, z, w float32) error {
	return r.setUniform("ShaderSetUniformVec4f", shader, location, math.NewVec4(x, y, z, w))
}

func (r *Renderer) ShaderSetUniformMat4(shader metadata.ShaderID, location metadata.Location, value math.Mat4) error {
	return r.setUniform("ShaderSetUniformMat4", shader, location, value)
}

// ShaderSetUniformCustom copies data into a custom block. len(data) must match the declared size.
func (r *Renderer) ShaderSetUniformCustom(shader metadata.ShaderID, location metadata.Location, data []byte) error {
	return r.setUniform("ShaderSetUniformCustom", shader, location, data)
}

func (r *Renderer) ShaderSetSampler(shader metadata.ShaderID, location metadata.Location, texture *metadata.Texture) error {
	if err := r.requireInitialized("ShaderSetSampler"); err != nil {
		return err
	}
	return r.backend.ShaderSetSampler(shader, location, texture)
}
