package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func TestManagerProvidesDefaultMaterial(t *testing.T) {
	r, backend, sm := newTestStack(t, DefaultSystemManagerConfig())

	// Geometry without a material is drawn with the material system's default.
	bare, err := sm.Geometries().AcquireFromConfig(GenerateCubeConfig(1, 1, 1, 1, 1, "bare", ""), PrepareOptions{}, false)
	if err != nil {
		t.Fatalf("AcquireFromConfig() error = %v", err)
	}
	bare.Material = nil

	packet := &metadata.RenderPacket{
		DeltaTime:    1.0 / 60.0,
		Geometries:   []metadata.GeometryRenderData{{Model: math.NewMat4Identity(), Geometry: bare}},
		UIGeometries: []metadata.GeometryRenderData{{Model: math.NewMat4Identity(), Geometry: sm.Geometries().Default2D()}},
	}
	if err := r.DrawFrame(packet); err != nil {
		t.Fatalf("DrawFrame() error = %v", err)
	}
	if got := backend.Stats().Draws; got != 2 {
		t.Errorf("Draws = %d, want 2", got)
	}
}

func TestManagerInitializeTwice(t *testing.T) {
	_, _, sm := newTestStack(t, DefaultSystemManagerConfig())
	if err := sm.Initialize(); !errors.Is(err, core.ErrAlreadyInitialized) {
		t.Errorf("second Initialize() error = %v, want %v", err, core.ErrAlreadyInitialized)
	}
}

func TestManagerShutdownReleasesEverything(t *testing.T) {
	_, backend, sm := newTestStack(t, DefaultSystemManagerConfig())
	if _, err := sm.Textures().Create("t", 1, 1, 1, []uint8{1}, false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := sm.Geometries().AcquireFromConfig(GenerateCubeConfig(1, 1, 1, 1, 1, "c", ""), PrepareOptions{}, false); err != nil {
		t.Fatalf("AcquireFromConfig() error = %v", err)
	}
	if err := sm.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	stats := backend.Stats()
	if stats.Textures != 0 || stats.Geometries != 0 {
		t.Errorf("after Shutdown backend holds %d textures and %d geometries", stats.Textures, stats.Geometries)
	}
	if sm.Materials().Default() != nil {
		t.Error("default material should be destroyed")
	}
}

func TestNewSystemManagerValidation(t *testing.T) {
	config := DefaultSystemManagerConfig()
	config.JobWorkers = 0
	if _, err := NewSystemManager(config, nil); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("NewSystemManager() error = %v, want %v", err, ErrNoWorkers)
	}
	config = DefaultSystemManagerConfig()
	config.MaxGeometryCount = 0
	if _, err := NewSystemManager(config, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewSystemManager() error = %v, want %v", err, ErrInvalidInput)
	}
}
