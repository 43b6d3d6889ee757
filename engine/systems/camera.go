package systems

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/components"
)

/** @brief The name of the default camera. */
const DefaultCameraName = "default"

type cameraLookup struct {
	referenceCount uint16
	camera         *components.Camera
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of cameras that can be managed by
	 * the system.
	 */
	MaxCameraCount uint16
	// DefaultPosition is where the default camera and new cameras start.
	DefaultPosition math.Vec3
}

type CameraSystem struct {
	config CameraSystemConfig
	lookup map[string]*cameraLookup
	// A default, non-registered camera that always exists as a fallback.
	defaultCamera *components.Camera
}

func NewCameraSystem(config CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0: %w", ErrInvalidInput)
		core.LogError(err.Error())
		return nil, err
	}
	return &CameraSystem{
		config:        config,
		lookup:        make(map[string]*cameraLookup, config.MaxCameraCount),
		defaultCamera: components.NewCamera(config.DefaultPosition),
	}, nil
}

/**
 * @brief Acquires a camera by name. If one is not found, a new one is
 * created. Internal reference counter is incremented.
 *
 * @param name The name of the camera to acquire.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == DefaultCameraName {
		return cs.defaultCamera, nil
	}
	entry, ok := cs.lookup[name]
	if !ok {
		if len(cs.lookup) >= int(cs.config.MaxCameraCount) {
			core.LogError("CameraSystemAcquire failed to acquire new slot. Adjust camera system config to allow more.")
			return nil, fmt.Errorf("camera '%s': %w", name, ErrNoFreeSlot)
		}
		core.LogDebug("Creating new camera named '%s'...", name)
		entry = &cameraLookup{camera: components.NewCamera(cs.config.DefaultPosition)}
		cs.lookup[name] = entry
	}
	entry.referenceCount++
	return entry.camera, nil
}

/**
 * @brief Releases a camera with the given name. When the count reaches 0 the
 * camera is dropped and a later Acquire starts from a fresh one.
 */
func (cs *CameraSystem) Release(name string) error {
	if name == DefaultCameraName {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return nil
	}
	entry, ok := cs.lookup[name]
	if !ok {
		core.LogWarn("CameraSystemRelease failed lookup. Nothing was done.")
		return fmt.Errorf("camera '%s': %w", name, ErrNotFound)
	}
	entry.referenceCount--
	if entry.referenceCount == 0 {
		delete(cs.lookup, name)
	}
	return nil
}

func (cs *CameraSystem) Default() *components.Camera {
	return cs.defaultCamera
}

func (cs *CameraSystem) Shutdown() error {
	cs.lookup = make(map[string]*cameraLookup)
	return nil
}
