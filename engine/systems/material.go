package systems

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type MaterialSystemConfig struct {
	/** @brief The maximum number of loaded materials. */
	MaxMaterialCount uint32
}

// MaterialSystem keeps materials by name with reference counting and hands
// the default material to the renderer for geometry that has none.
type MaterialSystem struct {
	config          MaterialSystemConfig
	renderer        MaterialBackend
	textures        *TextureSystem
	defaultMaterial *metadata.Material
	// Same as defaultMaterial but instanced on the UI shader.
	defaultUIMaterial *metadata.Material

	registeredMaterials     []*metadata.Material
	registeredMaterialTable map[string]*metadata.MaterialReference
}

func NewMaterialSystem(config MaterialSystemConfig, r MaterialBackend, ts *TextureSystem) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0: %w", ErrInvalidInput)
		core.LogError(err.Error())
		return nil, err
	}
	if ts == nil {
		return nil, errors.New("func NewMaterialSystem - texture system is required")
	}
	return &MaterialSystem{
		config:                  config,
		renderer:                r,
		textures:                ts,
		registeredMaterials:     make([]*metadata.Material, config.MaxMaterialCount),
		registeredMaterialTable: make(map[string]*metadata.MaterialReference),
	}, nil
}

// Initialize creates the default materials: white, default texture, one
// for the world pass and one for the UI pass.
func (ms *MaterialSystem) Initialize() error {
	world, err := ms.createDefault(metadata.DefaultMaterialName, metadata.MaterialTypeWorld)
	if err != nil {
		return err
	}
	ui, err := ms.createDefault(metadata.DefaultUIMaterialName, metadata.MaterialTypeUI)
	if err != nil {
		return errors.Join(err, ms.renderer.DestroyMaterial(world))
	}
	ms.defaultMaterial = world
	ms.defaultUIMaterial = ui
	return nil
}

func (ms *MaterialSystem) createDefault(name string, materialType metadata.MaterialType) (*metadata.Material, error) {
	m := &metadata.Material{
		ID:            metadata.InvalidID,
		Name:          name,
		Type:          materialType,
		DiffuseColour: math.NewVec4One(),
		DiffuseMap:    metadata.NewTextureMap(ms.textures.Default(), metadata.TextureUseMapDiffuse),
		Generation:    metadata.InvalidID,
	}
	if err := ms.renderer.CreateMaterial(m); err != nil {
		core.LogError("Failed to acquire renderer resources for default material '%s': %s", name, err)
		return nil, err
	}
	return m, nil
}

// Default returns the material used for geometry without one.
func (ms *MaterialSystem) Default() *metadata.Material {
	return ms.defaultMaterial
}

func (ms *MaterialSystem) DefaultUI() *metadata.Material {
	return ms.defaultUIMaterial
}

func isDefaultMaterial(name string) bool {
	return name == metadata.DefaultMaterialName || name == metadata.DefaultUIMaterialName
}

// Acquire returns a registered material by name and increments its reference count.
func (ms *MaterialSystem) Acquire(name string) (*metadata.Material, error) {
	switch name {
	case metadata.DefaultMaterialName:
		return ms.defaultMaterial, nil
	case metadata.DefaultUIMaterialName:
		return ms.defaultUIMaterial, nil
	}
	ref, ok := ms.registeredMaterialTable[name]
	if !ok {
		return nil, fmt.Errorf("material '%s': %w", name, ErrNotFound)
	}
	ref.ReferenceCount++
	return ref.Material, nil
}

// AcquireFromConfig registers a material, or takes another reference on one
// already registered under the same name. An empty name gets a random one.
func (ms *MaterialSystem) AcquireFromConfig(config metadata.MaterialConfig) (*metadata.Material, error) {
	if config.Name == "" {
		config.Name = uuid.NewString()
	}
	if isDefaultMaterial(config.Name) {
		return ms.Acquire(config.Name)
	}
	if ref, ok := ms.registeredMaterialTable[config.Name]; ok {
		ref.ReferenceCount++
		return ref.Material, nil
	}

	slot := -1
	for i, m := range ms.registeredMaterials {
		if m == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		core.LogError("Material system cannot hold anymore materials. Adjust configuration to allow more.")
		return nil, fmt.Errorf("material '%s': %w", config.Name, ErrNoFreeSlot)
	}

	diffuse := ms.textures.Default()
	if config.DiffuseMapName != "" && config.DiffuseMapName != metadata.DEFAULT_TEXTURE_NAME {
		t, err := ms.textures.Acquire(config.DiffuseMapName)
		if err != nil {
			core.LogWarn("Unable to load texture '%s' for material '%s', using default.", config.DiffuseMapName, config.Name)
		} else {
			diffuse = t
		}
	}

	m := &metadata.Material{
		ID:            uint32(slot),
		Name:          config.Name,
		Type:          config.Type,
		DiffuseColour: config.DiffuseColour,
		DiffuseMap:    metadata.NewTextureMap(diffuse, metadata.TextureUseMapDiffuse),
	}
	if config.NearestFilter {
		m.DiffuseMap.FilterMinify = metadata.TextureFilterModeNearest
		m.DiffuseMap.FilterMagnify = metadata.TextureFilterModeNearest
	}
	if err := ms.renderer.CreateMaterial(m); err != nil {
		ms.releaseTexture(m)
		return nil, fmt.Errorf("material '%s': %w", config.Name, err)
	}
	m.Generation = 0

	ms.registeredMaterials[slot] = m
	ms.registeredMaterialTable[config.Name] = &metadata.MaterialReference{
		ReferenceCount: 1,
		Material:       m,
		AutoRelease:    config.AutoRelease,
	}
	core.LogDebug("Material '%s' created (%s).", m.Name, m.Type)
	return m, nil
}

// Release drops one reference. Auto release materials are destroyed at zero.
func (ms *MaterialSystem) Release(name string) error {
	// Ignore release requests for the default materials.
	if isDefaultMaterial(name) {
		return nil
	}
	ref, ok := ms.registeredMaterialTable[name]
	if !ok {
		core.LogWarn("Tried to release non-existent material: '%s'", name)
		return fmt.Errorf("material '%s': %w", name, ErrNotFound)
	}
	if ref.ReferenceCount > 0 {
		ref.ReferenceCount--
	}
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		return ms.destroy(name, ref)
	}
	return nil
}

func (ms *MaterialSystem) destroy(name string, ref *metadata.MaterialReference) error {
	m := ref.Material
	if err := ms.renderer.DestroyMaterial(m); err != nil {
		return err
	}
	ms.releaseTexture(m)
	ms.registeredMaterials[m.ID] = nil
	delete(ms.registeredMaterialTable, name)
	m.ID = metadata.InvalidID
	m.Generation = metadata.InvalidID
	return nil
}

func (ms *MaterialSystem) releaseTexture(m *metadata.Material) {
	if m.DiffuseMap == nil || m.DiffuseMap.Texture == nil {
		return
	}
	if name := m.DiffuseMap.Texture.Name; name != metadata.DEFAULT_TEXTURE_NAME {
		if err := ms.textures.Release(name); err != nil {
			core.LogWarn("material '%s': %s", m.Name, err)
		}
	}
}

// ReferenceCount reports the references held on name, or zero.
func (ms *MaterialSystem) ReferenceCount(name string) uint64 {
	if ref, ok := ms.registeredMaterialTable[name]; ok {
		return ref.ReferenceCount
	}
	return 0
}

func (ms *MaterialSystem) Shutdown() error {
	for name, ref := range ms.registeredMaterialTable {
		if err := ms.destroy(name, ref); err != nil {
			return err
		}
	}
	for _, m := range []*metadata.Material{ms.defaultMaterial, ms.defaultUIMaterial} {
		if m == nil {
			continue
		}
		if err := ms.renderer.DestroyMaterial(m); err != nil {
			return err
		}
	}
	ms.defaultMaterial = nil
	ms.defaultUIMaterial = nil
	return nil
}
