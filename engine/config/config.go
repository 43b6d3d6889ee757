// Package config loads the engine settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/systems"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	minFOV float32 = 1
	maxFOV float32 = 179
)

// Config holds all engine settings.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Graphics GraphicsConfig `toml:"graphics" yaml:"graphics"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	UI       UIConfig       `toml:"ui" yaml:"ui"`
	Systems  SystemsConfig  `toml:"systems" yaml:"systems"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  uint32 `toml:"width" yaml:"width"`
	Height uint32 `toml:"height" yaml:"height"`
}

// GraphicsConfig selects the renderer backend.
type GraphicsConfig struct {
	Backend string `toml:"backend" yaml:"backend"`
}

// CameraConfig holds the world projection and the starting camera.
type CameraConfig struct {
	FOV      float32    `toml:"fov" yaml:"fov"` // degrees
	Near     float32    `toml:"near" yaml:"near"`
	Far      float32    `toml:"far" yaml:"far"`
	Position [3]float32 `toml:"position" yaml:"position"`
}

// UIConfig holds the orthographic clip range of the UI pass.
type UIConfig struct {
	Near float32 `toml:"near" yaml:"near"`
	Far  float32 `toml:"far" yaml:"far"`
}

type SystemsConfig struct {
	MaxTextures   uint32 `toml:"max_textures" yaml:"max_textures"`
	MaxMaterials  uint32 `toml:"max_materials" yaml:"max_materials"`
	MaxGeometries uint32 `toml:"max_geometries" yaml:"max_geometries"`
	MaxCameras    uint16 `toml:"max_cameras" yaml:"max_cameras"`
	JobWorkers    int    `toml:"job_workers" yaml:"job_workers"`
	JobQueueSize  int    `toml:"job_queue_size" yaml:"job_queue_size"`
}

type LoggingConfig struct {
	Level   string `toml:"level" yaml:"level"`
	LogFile string `toml:"log_file" yaml:"log_file"`
}

// Default returns a Config with the values the renderer uses out of the box.
func Default() *Config {
	sm := systems.DefaultSystemManagerConfig()
	return &Config{
		Window: WindowConfig{
			Title:  "Prism Testbed",
			Width:  1280,
			Height: 720,
		},
		Graphics: GraphicsConfig{
			Backend: renderer.Headless.String(),
		},
		Camera: CameraConfig{
			FOV:      45,
			Near:     0.1,
			Far:      1000,
			Position: [3]float32{0, 0, 30},
		},
		UI: UIConfig{
			Near: -100,
			Far:  100,
		},
		Systems: SystemsConfig{
			MaxTextures:   sm.MaxTextureCount,
			MaxMaterials:  sm.MaxMaterialCount,
			MaxGeometries: sm.MaxGeometryCount,
			MaxCameras:    sm.MaxCameraCount,
			JobWorkers:    sm.JobWorkers,
			JobQueueSize:  sm.JobQueueSize,
		},
		Logging: LoggingConfig{
			Level:   string(core.LogLevelInfo),
			LogFile: "",
		},
	}
}

// Validate rejects settings the engine cannot run with. An out of range
// field of view is clamped instead.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width == 0 || c.Window.Height == 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be non-zero", c.Window.Width, c.Window.Height))
	}
	if _, err := renderer.ParseRendererType(c.Graphics.Backend); err != nil {
		errs = append(errs, err)
	}

	if fov := math.Clamp(c.Camera.FOV, minFOV, maxFOV); fov != c.Camera.FOV {
		core.LogWarn("camera fov %.2f out of range, clamped to %.2f", c.Camera.FOV, fov)
		c.Camera.FOV = fov
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera clip planes near=%v far=%v must satisfy 0 < near < far", c.Camera.Near, c.Camera.Far))
	}
	if c.UI.Far <= c.UI.Near {
		errs = append(errs, fmt.Errorf("ui clip planes near=%v far=%v must satisfy near < far", c.UI.Near, c.UI.Far))
	}

	switch core.LogLevel(c.Logging.Level) {
	case core.LogLevelDebug, core.LogLevelInfo, core.LogLevelWarn, core.LogLevelError:
	default:
		errs = append(errs, fmt.Errorf("unknown log level '%s'", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *Config) CameraPosition() math.Vec3 {
	return math.NewVec3(c.Camera.Position[0], c.Camera.Position[1], c.Camera.Position[2])
}

// RendererConfig maps the settings onto renderer.Config.
func (c *Config) RendererConfig() (renderer.Config, error) {
	t, err := renderer.ParseRendererType(c.Graphics.Backend)
	if err != nil {
		return renderer.Config{}, err
	}
	rc := renderer.DefaultConfig()
	rc.Type = t
	rc.FOVDegrees = c.Camera.FOV
	rc.NearClip = c.Camera.Near
	rc.FarClip = c.Camera.Far
	rc.CameraPosition = c.CameraPosition()
	rc.UINearClip = c.UI.Near
	rc.UIFarClip = c.UI.Far
	return rc, nil
}

func (c *Config) SystemManagerConfig() systems.SystemManagerConfig {
	return systems.SystemManagerConfig{
		MaxTextureCount:  c.Systems.MaxTextures,
		MaxMaterialCount: c.Systems.MaxMaterials,
		MaxGeometryCount: c.Systems.MaxGeometries,
		MaxCameraCount:   c.Systems.MaxCameras,
		CameraPosition:   c.CameraPosition(),
		JobWorkers:       c.Systems.JobWorkers,
		JobQueueSize:     c.Systems.JobQueueSize,
	}
}

// NewWindow describes the window the renderer is initialized against.
func (c *Config) NewWindow() *metadata.Window {
	return &metadata.Window{Title: c.Window.Title, Width: c.Window.Width, Height: c.Window.Height}
}
