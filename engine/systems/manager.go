package systems

import (
	"errors"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
)

type SystemManagerConfig struct {
	MaxTextureCount  uint32
	MaxMaterialCount uint32
	MaxGeometryCount uint32
	MaxCameraCount   uint16
	CameraPosition   math.Vec3
	// JobWorkers is the number of goroutines preparing geometry.
	JobWorkers   int
	JobQueueSize int
}

func DefaultSystemManagerConfig() SystemManagerConfig {
	return SystemManagerConfig{
		MaxTextureCount:  1000,
		MaxMaterialCount: 1000,
		MaxGeometryCount: 1000,
		MaxCameraCount:   16,
		CameraPosition:   math.NewVec3(0, 0, 30),
		JobWorkers:       2,
		JobQueueSize:     64,
	}
}

// SystemManager owns the resource systems built on a renderer.
type SystemManager struct {
	cameraSystem   *CameraSystem
	jobSystem      *JobSystem
	textureSystem  *TextureSystem
	materialSystem *MaterialSystem
	geometrySystem *GeometrySystem

	initialized bool
}

func NewSystemManager(config SystemManagerConfig, r RendererBackend) (*SystemManager, error) {
	js, err := NewJobSystem(config.JobWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}
	cs, err := NewCameraSystem(CameraSystemConfig{
		MaxCameraCount:  config.MaxCameraCount,
		DefaultPosition: config.CameraPosition,
	})
	if err != nil {
		return nil, errors.Join(err, js.Shutdown())
	}
	ts, err := NewTextureSystem(TextureSystemConfig{
		MaxTextureCount: config.MaxTextureCount,
	}, r)
	if err != nil {
		return nil, errors.Join(err, js.Shutdown())
	}
	ms, err := NewMaterialSystem(MaterialSystemConfig{
		MaxMaterialCount: config.MaxMaterialCount,
	}, r, ts)
	if err != nil {
		return nil, errors.Join(err, js.Shutdown())
	}
	gs, err := NewGeometrySystem(GeometrySystemConfig{
		MaxGeometryCount: config.MaxGeometryCount,
	}, r, ms, js)
	if err != nil {
		return nil, errors.Join(err, js.Shutdown())
	}

	// Renderers that draw material-less geometry take their default from us.
	if p, ok := r.(interface {
		SetMaterialProvider(renderer.MaterialProvider)
	}); ok {
		p.SetMaterialProvider(ms)
	}

	return &SystemManager{
		cameraSystem:   cs,
		jobSystem:      js,
		textureSystem:  ts,
		materialSystem: ms,
		geometrySystem: gs,
	}, nil
}

// Initialize creates the default resources. The renderer must be initialized.
func (sm *SystemManager) Initialize() error {
	if sm.initialized {
		return core.ErrAlreadyInitialized
	}
	if err := sm.textureSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.materialSystem.Initialize(); err != nil {
		return errors.Join(err, sm.textureSystem.Shutdown())
	}
	if err := sm.geometrySystem.Initialize(); err != nil {
		return errors.Join(err, sm.materialSystem.Shutdown(), sm.textureSystem.Shutdown())
	}
	sm.initialized = true
	core.LogInfo("Resource systems initialized.")
	return nil
}

// Update runs completion callbacks of finished background jobs.
func (sm *SystemManager) Update() int {
	return sm.jobSystem.Update()
}

func (sm *SystemManager) Cameras() *CameraSystem      { return sm.cameraSystem }
func (sm *SystemManager) Textures() *TextureSystem    { return sm.textureSystem }
func (sm *SystemManager) Materials() *MaterialSystem  { return sm.materialSystem }
func (sm *SystemManager) Geometries() *GeometrySystem { return sm.geometrySystem }
func (sm *SystemManager) Jobs() *JobSystem            { return sm.jobSystem }

// Shutdown stops the workers, then destroys resources in reverse creation order.
func (sm *SystemManager) Shutdown() error {
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	if !sm.initialized {
		return nil
	}
	sm.initialized = false
	if err := sm.geometrySystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.materialSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.textureSystem.Shutdown(); err != nil {
		return err
	}
	return sm.cameraSystem.Shutdown()
}
