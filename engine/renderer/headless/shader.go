package headless

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type shaderAttribute struct {
	name          string
	attributeType metadata.ShaderAttributeType
	size          uint32
}

type shaderUniform struct {
	name string
	// offset in bytes from the beginning of the uniform set (global/instance/local).
	offset      uint64
	size        uint32
	scope       metadata.ShaderScope
	uniformType metadata.ShaderUniformType
	// textureSlot indexes the global or instance texture array of samplers.
	textureSlot int
}

type shaderInstance struct {
	data     []byte
	textures []*metadata.Texture
	samplers []Sampler
}

// Sampler is the filtering and addressing state built for one instance texture.
type Sampler struct {
	Minify, Magnify           metadata.TextureFilter
	RepeatU, RepeatV, RepeatW metadata.TextureRepeat
}

// shader is the backend side of a shader program.
type shader struct {
	id           metadata.ShaderID
	name         string
	pass         metadata.BuiltinRenderpass
	stages       []metadata.ShaderStage
	useInstances bool
	useLocal     bool
	state        metadata.ShaderState

	attributes      []shaderAttribute
	attributeStride uint32

	uniforms []shaderUniform
	lookup   map[string]metadata.Location

	globalUboSize      uint64
	globalUboStride    uint64
	uboSize            uint64
	uboStride          uint64
	pushConstantSize   uint64
	pushConstantRanges []metadata.MemoryRange

	globalTextureCount   int
	instanceTextureCount int

	globalData     []byte
	globalTextures []*metadata.Texture
	localData      []byte

	instancePool *core.IdentifierPool
	instances    map[uint32]*shaderInstance

	boundScope      metadata.ShaderScope
	globalsBound    bool
	boundInstanceID uint32
}

func (b *Backend) ShaderCreate(name string, pass metadata.BuiltinRenderpass, stages []metadata.ShaderStage, useInstances, useLocal bool) (metadata.ShaderID, error) {
	invalid := metadata.ShaderID(metadata.InvalidID)
	if err := b.record(OpShaderCreate, invalid, name); err != nil {
		return invalid, err
	}
	if err := b.requireInitialized(); err != nil {
		return invalid, err
	}
	if name == "" {
		return invalid, errors.New("shader create: name must exist")
	}
	if pass != metadata.BuiltinRenderpassWorld && pass != metadata.BuiltinRenderpassUI {
		return invalid, fmt.Errorf("shader create '%s': unrecognized renderpass id %d", name, uint8(pass))
	}
	if len(stages) == 0 {
		return invalid, fmt.Errorf("shader create '%s': at least one stage is required", name)
	}

	slot := -1
	for i, s := range b.shaders {
		if s == nil {
			if slot < 0 {
				slot = i
			}
			continue
		}
		if s.name == name {
			return invalid, fmt.Errorf("shader create: a shader named '%s' already exists", name)
		}
	}
	if slot < 0 {
		return invalid, fmt.Errorf("shader create '%s': no free shader slot (max %d)", name, b.cfg.MaxShaderCount)
	}

	s := &shader{
		id:           metadata.ShaderID(slot),
		name:         name,
		pass:         pass,
		stages:       append([]metadata.ShaderStage(nil), stages...),
		useInstances: useInstances,
		useLocal:     useLocal,
		state:        metadata.SHADER_STATE_UNINITIALIZED,
		lookup:       make(map[string]metadata.Location),
		instances:    make(map[uint32]*shaderInstance),
		instancePool: core.NewIdentifierPool(b.cfg.MaxInstanceCount),
	}
	b.shaders[slot] = s
	core.LogDebug("Shader '%s' created with id %d.", name, slot)
	return s.id, nil
}

func (b *Backend) ShaderDestroy(id metadata.ShaderID) error {
	if err := b.record(OpShaderDestroy, id, ""); err != nil {
		return err
	}
	s, err := b.shader(id)
	if err != nil {
		return err
	}
	if b.current == s {
		b.current = nil
	}
	b.shaders[id] = nil
	s.state = metadata.SHADER_STATE_NOT_CREATED
	return nil
}

func (b *Backend) ShaderAddAttribute(id metadata.ShaderID, name string, attributeType metadata.ShaderAttributeType) error {
	if err := b.record(OpShaderAddAttribute, id, name); err != nil {
		return err
	}
	s, err := b.uninitializedShader(id)
	if err != nil {
		return err
	}
	size := attributeType.Size()
	if size == 0 {
		return fmt.Errorf("shader '%s': unrecognized attribute type %d", s.name, uint(attributeType))
	}
	for _, a := range s.attributes {
		if a.name == name {
			return fmt.Errorf("shader '%s': attribute '%s' already exists", s.name, name)
		}
	}
	s.attributes = append(s.attributes, shaderAttribute{name: name, attributeType: attributeType, size: size})
	s.attributeStride += size
	return nil
}

func (b *Backend) ShaderAddUniform(id metadata.ShaderID, name string, uniformType metadata.ShaderUniformType, size uint32, scope metadata.ShaderScope) (metadata.Location, error) {
	if err := b.record(OpShaderAddUniform, id, name); err != nil {
		return metadata.InvalidLocation, err
	}
	s, err := b.uninitializedShader(id)
	if err != nil {
		return metadata.InvalidLocation, err
	}
	if uniformType == metadata.ShaderUniformTypeSampler {
		return metadata.InvalidLocation, fmt.Errorf("shader '%s': samplers are added with ShaderAddSampler", s.name)
	}
	if uniformType != metadata.ShaderUniformTypeCustom && size != uniformType.Size() {
		return metadata.InvalidLocation, fmt.Errorf("shader '%s': uniform '%s' of type %s must be %d bytes, got %d", s.name, name, uniformType, uniformType.Size(), size)
	}
	if size == 0 {
		return metadata.InvalidLocation, fmt.Errorf("shader '%s': uniform '%s' has no size", s.name, name)
	}
	if err := s.validateNewUniform(b.cfg, name, scope); err != nil {
		return metadata.InvalidLocation, err
	}

	entry := shaderUniform{
		name:        name,
		size:        size,
		scope:       scope,
		uniformType: uniformType,
		textureSlot: -1,
	}
	switch scope {
	case metadata.ShaderScopeGlobal:
		entry.offset = s.globalUboSize
		s.globalUboSize += uint64(size)
	case metadata.ShaderScopeInstance:
		entry.offset = s.uboSize
		s.uboSize += uint64(size)
	case metadata.ShaderScopeLocal:
		// Push a new aligned range (align to 4, as required by Vulkan spec)
		r := metadata.GetAlignedRange(s.pushConstantSize, uint64(size), 4)
		if r.Offset+r.Size > b.cfg.MaxPushConstantSize {
			return metadata.InvalidLocation, fmt.Errorf("shader '%s': local uniform '%s' exceeds the %d byte push constant block", s.name, name, b.cfg.MaxPushConstantSize)
		}
		entry.offset = r.Offset
		s.pushConstantRanges = append(s.pushConstantRanges, r)
		s.pushConstantSize = r.Offset + r.Size
	}
	return s.addUniform(entry), nil
}

func (b *Backend) ShaderAddSampler(id metadata.ShaderID, name string, scope metadata.ShaderScope) (metadata.Location, error) {
	if err := b.record(OpShaderAddSampler, id, name); err != nil {
		return metadata.InvalidLocation, err
	}
	s, err := b.uninitializedShader(id)
	if err != nil {
		return metadata.InvalidLocation, err
	}
	// Samplers can't be used for push constants.
	if scope == metadata.ShaderScopeLocal {
		return metadata.InvalidLocation, fmt.Errorf("shader '%s': cannot add a sampler at local scope", s.name)
	}
	if err := s.validateNewUniform(b.cfg, name, scope); err != nil {
		return metadata.InvalidLocation, err
	}

	entry := shaderUniform{
		name:        name,
		scope:       scope,
		uniformType: metadata.ShaderUniformTypeSampler,
	}
	if scope == metadata.ShaderScopeGlobal {
		if s.globalTextureCount+1 > b.cfg.MaxGlobalTextures {
			return metadata.InvalidLocation, fmt.Errorf("shader '%s': global texture count %d exceeds max of %d", s.name, s.globalTextureCount+1, b.cfg.MaxGlobalTextures)
		}
		entry.textureSlot = s.globalTextureCount
		s.globalTextureCount++
	} else {
		if s.instanceTextureCount+1 > b.cfg.MaxInstanceTextures {
			return metadata.InvalidLocation, fmt.Errorf("shader '%s': instance texture count %d exceeds max of %d", s.name, s.instanceTextureCount+1, b.cfg.MaxInstanceTextures)
		}
		entry.textureSlot = s.instanceTextureCount
		s.instanceTextureCount++
	}
	return s.addUniform(entry), nil
}

func (s *shader) validateNewUniform(cfg Config, name string, scope metadata.ShaderScope) error {
	if name == "" {
		return fmt.Errorf("shader '%s': uniform name must exist", s.name)
	}
	if _, ok := s.lookup[name]; ok {
		return fmt.Errorf("shader '%s': a uniform by the name '%s' already exists", s.name, name)
	}
	if len(s.uniforms)+1 > cfg.MaxUniformCount {
		return fmt.Errorf("shader '%s': a shader can only accept a combined maximum of %d uniforms and samplers", s.name, cfg.MaxUniformCount)
	}
	switch scope {
	case metadata.ShaderScopeGlobal:
	case metadata.ShaderScopeInstance:
		if !s.useInstances {
			return fmt.Errorf("shader '%s': instance uniform '%s' on a shader without instances", s.name, name)
		}
	case metadata.ShaderScopeLocal:
		if !s.useLocal {
			return fmt.Errorf("shader '%s': local uniform '%s' on a shader without locals", s.name, name)
		}
	default:
		return fmt.Errorf("shader '%s': unknown scope %d", s.name, int(scope))
	}
	return nil
}

func (s *shader) addUniform(entry shaderUniform) metadata.Location {
	loc := metadata.Location(len(s.uniforms))
	s.uniforms = append(s.uniforms, entry)
	s.lookup[entry.name] = loc
	return loc
}

func (b *Backend) ShaderInitialize(id metadata.ShaderID) error {
	if err := b.record(OpShaderInitialize, id, ""); err != nil {
		return err
	}
	s, err := b.uninitializedShader(id)
	if err != nil {
		return err
	}
	if len(s.attributes) == 0 {
		return fmt.Errorf("shader '%s': no vertex attributes", s.name)
	}

	// The stride is how much the UBOs are spaced out in the buffer.
	s.globalUboStride = metadata.GetAligned(s.globalUboSize, b.cfg.RequiredUboAlignment)
	s.uboStride = metadata.GetAligned(s.uboSize, b.cfg.RequiredUboAlignment)
	s.globalData = make([]byte, s.globalUboStride)
	s.globalTextures = make([]*metadata.Texture, s.globalTextureCount)
	s.localData = make([]byte, s.pushConstantSize)
	s.state = metadata.SHADER_STATE_INITIALIZED

	core.LogDebug("Shader '%s' initialized: stride %d, global ubo %d/%d, instance ubo %d/%d, push constants %d.",
		s.name, s.attributeStride, s.globalUboSize, s.globalUboStride, s.uboSize, s.uboStride, s.pushConstantSize)
	return nil
}

func (b *Backend) ShaderUse(id metadata.ShaderID) error {
	if err := b.record(OpShaderUse, id, ""); err != nil {
		return err
	}
	s, err := b.initializedShader(id)
	if err != nil {
		return err
	}
	if b.activePass != s.pass {
		return fmt.Errorf("shader '%s' renders in %s, active renderpass is %s", s.name, s.pass, b.activePass)
	}
	b.current = s
	s.globalsBound = false
	s.boundScope = metadata.ShaderScopeLocal
	s.boundInstanceID = metadata.InvalidID
	return nil
}

func (b *Backend) ShaderBindGlobals(id metadata.ShaderID) error {
	if err := b.record(OpShaderBindGlobals, id, ""); err != nil {
		return err
	}
	s, err := b.currentShader(id)
	if err != nil {
		return err
	}
	s.boundScope = metadata.ShaderScopeGlobal
	s.globalsBound = true
	s.boundInstanceID = metadata.InvalidID
	return nil
}

func (b *Backend) ShaderBindInstance(id metadata.ShaderID, instanceID uint32) error {
	if err := b.record(OpShaderBindInstance, id, fmt.Sprint(instanceID)); err != nil {
		return err
	}
	s, err := b.currentShader(id)
	if err != nil {
		return err
	}
	if !s.useInstances {
		return fmt.Errorf("shader '%s' does not use instances", s.name)
	}
	if _, ok := s.instances[instanceID]; !ok {
		return fmt.Errorf("shader '%s': instance %d was not acquired", s.name, instanceID)
	}
	s.boundScope = metadata.ShaderScopeInstance
	s.boundInstanceID = instanceID
	return nil
}

func (b *Backend) ShaderApplyGlobals(id metadata.ShaderID) error {
	if err := b.record(OpShaderApplyGlobals, id, ""); err != nil {
		return err
	}
	s, err := b.currentShader(id)
	if err != nil {
		return err
	}
	if s.boundScope != metadata.ShaderScopeGlobal {
		return fmt.Errorf("shader '%s': apply globals while %s scope is bound", s.name, s.boundScope)
	}
	b.stats.GlobalApplies++
	return nil
}

func (b *Backend) ShaderApplyInstance(id metadata.ShaderID) error {
	if err := b.record(OpShaderApplyInstance, id, ""); err != nil {
		return err
	}
	s, err := b.currentShader(id)
	if err != nil {
		return err
	}
	if s.boundScope != metadata.ShaderScopeInstance {
		return fmt.Errorf("shader '%s': apply instance while %s scope is bound", s.name, s.boundScope)
	}
	b.stats.InstanceApplies++
	return nil
}

func (b *Backend) ShaderAcquireInstanceResources(id metadata.ShaderID, maps []*metadata.TextureMap) (uint32, error) {
	if err := b.record(OpShaderAcquire, id, ""); err != nil {
		return metadata.InvalidID, err
	}
	s, err := b.initializedShader(id)
	if err != nil {
		return metadata.InvalidID, err
	}
	if !s.useInstances {
		return metadata.InvalidID, fmt.Errorf("shader '%s' does not use instances", s.name)
	}
	if s.instancePool.InUse() >= b.cfg.MaxInstanceCount {
		return metadata.InvalidID, fmt.Errorf("shader '%s': instance count exceeds max of %d", s.name, b.cfg.MaxInstanceCount)
	}

	inst := &shaderInstance{
		data:     make([]byte, s.uboStride),
		textures: make([]*metadata.Texture, s.instanceTextureCount),
		samplers: make([]Sampler, s.instanceTextureCount),
	}
	for i := 0; i < len(maps) && i < len(inst.textures); i++ {
		m := maps[i]
		if m == nil {
			continue
		}
		if err := m.Validate(); err != nil {
			return metadata.InvalidID, fmt.Errorf("shader '%s': sampler %d: %w", s.name, i, err)
		}
		inst.textures[i] = m.Texture
		inst.samplers[i] = Sampler{
			Minify:  m.FilterMinify,
			Magnify: m.FilterMagnify,
			RepeatU: m.RepeatU,
			RepeatV: m.RepeatV,
			RepeatW: m.RepeatW,
		}
	}
	instanceID := s.instancePool.Acquire(inst)
	s.instances[instanceID] = inst
	return instanceID, nil
}

func (b *Backend) ShaderReleaseInstanceResources(id metadata.ShaderID, instanceID uint32) error {
	if err := b.record(OpShaderRelease, id, fmt.Sprint(instanceID)); err != nil {
		return err
	}
	s, err := b.shader(id)
	if err != nil {
		return err
	}
	if _, ok := s.instances[instanceID]; !ok {
		return fmt.Errorf("shader '%s': instance %d was not acquired", s.name, instanceID)
	}
	if err := s.instancePool.Release(instanceID); err != nil {
		return fmt.Errorf("shader '%s': %w", s.name, err)
	}
	delete(s.instances, instanceID)
	if s.boundScope == metadata.ShaderScopeInstance && s.boundInstanceID == instanceID {
		s.boundScope = metadata.ShaderScopeLocal
		s.boundInstanceID = metadata.InvalidID
	}
	return nil
}

func (b *Backend) ShaderUniformLocation(id metadata.ShaderID, name string) (metadata.Location, error) {
	if err := b.record(OpShaderLocation, id, name); err != nil {
		return metadata.InvalidLocation, err
	}
	s, err := b.initializedShader(id)
	if err != nil {
		return metadata.InvalidLocation, err
	}
	loc, ok := s.lookup[name]
	if !ok {
		return metadata.InvalidLocation, fmt.Errorf("shader '%s' has no uniform named '%s'", s.name, name)
	}
	return loc, nil
}

func (b *Backend) ShaderSetUniform(id metadata.ShaderID, location metadata.Location, value interface{}) error {
	if err := b.record(OpShaderSetUniform, id, fmt.Sprint(location)); err != nil {
		return err
	}
	s, err := b.currentShader(id)
	if err != nil {
		return err
	}
	u, err := s.uniform(location)
	if err != nil {
		return err
	}
	if u.uniformType == metadata.ShaderUniformTypeSampler {
		return fmt.Errorf("shader '%s': '%s' is a sampler, use ShaderSetSampler", s.name, u.name)
	}
	if err := checkValueType(u, value); err != nil {
		return fmt.Errorf("shader '%s' uniform '%s': %w", s.name, u.name, err)
	}
	dst, err := s.scopeStorage(u)
	if err != nil {
		return err
	}
	data, err := encode(value)
	if err != nil {
		return fmt.Errorf("shader '%s' uniform '%s': %w", s.name, u.name, err)
	}
	if uint32(len(data)) != u.size {
		return fmt.Errorf("shader '%s' uniform '%s': value is %d bytes, declared %d", s.name, u.name, len(data), u.size)
	}
	copy(dst[u.offset:u.offset+uint64(u.size)], data)
	return nil
}

func (b *Backend) ShaderSetSampler(id metadata.ShaderID, location metadata.Location, texture *metadata.Texture) error {
	if err := b.record(OpShaderSetSampler, id, fmt.Sprint(location)); err != nil {
		return err
	}
	s, err := b.currentShader(id)
	if err != nil {
		return err
	}
	u, err := s.uniform(location)
	if err != nil {
		return err
	}
	if u.uniformType != metadata.ShaderUniformTypeSampler {
		return fmt.Errorf("shader '%s': '%s' is not a sampler", s.name, u.name)
	}
	switch u.scope {
	case metadata.ShaderScopeGlobal:
		if s.boundScope != metadata.ShaderScopeGlobal {
			return fmt.Errorf("shader '%s': global sampler '%s' set while %s scope is bound", s.name, u.name, s.boundScope)
		}
		s.globalTextures[u.textureSlot] = texture
	case metadata.ShaderScopeInstance:
		if s.boundScope != metadata.ShaderScopeInstance {
			return fmt.Errorf("shader '%s': instance sampler '%s' set while %s scope is bound", s.name, u.name, s.boundScope)
		}
		s.instances[s.boundInstanceID].textures[u.textureSlot] = texture
	}
	return nil
}

// scopeStorage returns the byte block the uniform lives in, enforcing that
// its scope is the one currently bound.
func (s *shader) scopeStorage(u *shaderUniform) ([]byte, error) {
	switch u.scope {
	case metadata.ShaderScopeGlobal:
		if s.boundScope != metadata.ShaderScopeGlobal {
			return nil, fmt.Errorf("shader '%s': global uniform '%s' set while %s scope is bound", s.name, u.name, s.boundScope)
		}
		return s.globalData, nil
	case metadata.ShaderScopeInstance:
		if s.boundScope != metadata.ShaderScopeInstance {
			return nil, fmt.Errorf("shader '%s': instance uniform '%s' set while %s scope is bound", s.name, u.name, s.boundScope)
		}
		return s.instances[s.boundInstanceID].data, nil
	default:
		return s.localData, nil
	}
}

func (s *shader) uniform(location metadata.Location) (*shaderUniform, error) {
	if int(location) >= len(s.uniforms) {
		return nil, fmt.Errorf("shader '%s': invalid uniform location %d", s.name, location)
	}
	return &s.uniforms[location], nil
}

// checkValueType matches the Go type of value against the declared uniform type.
func checkValueType(u *shaderUniform, value interface{}) error {
	var got metadata.ShaderUniformType
	switch value.(type) {
	case int8:
		got = metadata.ShaderUniformTypeInt8
	case uint8:
		got = metadata.ShaderUniformTypeUint8
	case int16:
		got = metadata.ShaderUniformTypeInt16
	case uint16:
		got = metadata.ShaderUniformTypeUint16
	case int32:
		got = metadata.ShaderUniformTypeInt32
	case uint32:
		got = metadata.ShaderUniformTypeUint32
	case float32:
		got = metadata.ShaderUniformTypeFloat32
	case math.Vec2:
		got = metadata.ShaderUniformTypeFloat32_2
	case math.Vec3:
		got = metadata.ShaderUniformTypeFloat32_3
	case math.Vec4:
		got = metadata.ShaderUniformTypeFloat32_4
	case math.Mat4:
		got = metadata.ShaderUniformTypeMatrix4
	case []byte:
		got = metadata.ShaderUniformTypeCustom
	default:
		return fmt.Errorf("unsupported value type %T", value)
	}
	if got != u.uniformType {
		return fmt.Errorf("declared %s, got %s (%T)", u.uniformType, got, value)
	}
	return nil
}

func (b *Backend) shader(id metadata.ShaderID) (*shader, error) {
	if err := b.requireInitialized(); err != nil {
		return nil, err
	}
	if int(id) >= len(b.shaders) || b.shaders[id] == nil {
		return nil, fmt.Errorf("no shader with id %d", id)
	}
	return b.shaders[id], nil
}

func (b *Backend) uninitializedShader(id metadata.ShaderID) (*shader, error) {
	s, err := b.shader(id)
	if err != nil {
		return nil, err
	}
	if s.state != metadata.SHADER_STATE_UNINITIALIZED {
		return nil, fmt.Errorf("shader '%s': attributes and uniforms may only be added before initialization", s.name)
	}
	return s, nil
}

func (b *Backend) initializedShader(id metadata.ShaderID) (*shader, error) {
	s, err := b.shader(id)
	if err != nil {
		return nil, err
	}
	if s.state != metadata.SHADER_STATE_INITIALIZED {
		return nil, fmt.Errorf("shader '%s' is not initialized", s.name)
	}
	return s, nil
}

func (b *Backend) currentShader(id metadata.ShaderID) (*shader, error) {
	s, err := b.initializedShader(id)
	if err != nil {
		return nil, err
	}
	if b.current != s {
		return nil, fmt.Errorf("shader '%s' is not in use", s.name)
	}
	return s, nil
}

// GlobalBytes returns the global uniform block of a shader.
func (b *Backend) GlobalBytes(id metadata.ShaderID) ([]byte, error) {
	s, err := b.initializedShader(id)
	if err != nil {
		return nil, err
	}
	return s.globalData, nil
}

// InstanceBytes returns the uniform block of one acquired instance.
func (b *Backend) InstanceBytes(id metadata.ShaderID, instanceID uint32) ([]byte, error) {
	s, err := b.initializedShader(id)
	if err != nil {
		return nil, err
	}
	inst, ok := s.instances[instanceID]
	if !ok {
		return nil, fmt.Errorf("shader '%s': instance %d was not acquired", s.name, instanceID)
	}
	return inst.data, nil
}

// InstanceTextures returns the textures bound to one acquired instance.
func (b *Backend) InstanceTextures(id metadata.ShaderID, instanceID uint32) ([]*metadata.Texture, error) {
	s, err := b.initializedShader(id)
	if err != nil {
		return nil, err
	}
	inst, ok := s.instances[instanceID]
	if !ok {
		return nil, fmt.Errorf("shader '%s': instance %d was not acquired", s.name, instanceID)
	}
	return inst.textures, nil
}

// InstanceSamplers returns the sampler state built for one acquired instance.
func (b *Backend) InstanceSamplers(id metadata.ShaderID, instanceID uint32) ([]Sampler, error) {
	s, err := b.initializedShader(id)
	if err != nil {
		return nil, err
	}
	inst, ok := s.instances[instanceID]
	if !ok {
		return nil, fmt.Errorf("shader '%s': instance %d was not acquired", s.name, instanceID)
	}
	return inst.samplers, nil
}

// LocalBytes returns the push constant block of a shader.
func (b *Backend) LocalBytes(id metadata.ShaderID) ([]byte, error) {
	s, err := b.initializedShader(id)
	if err != nil {
		return nil, err
	}
	return s.localData, nil
}
