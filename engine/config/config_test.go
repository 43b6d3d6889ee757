package config

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("window = %dx%d, want 1280x720", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Graphics.Backend != "headless" {
		t.Errorf("backend = %q, want headless", cfg.Graphics.Backend)
	}
	if cfg.Camera.FOV != 45 || cfg.Camera.Near != 0.1 || cfg.Camera.Far != 1000 {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() of defaults error = %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "prism.toml", `
[window]
width = 800
height = 600

[camera]
fov = 60.0
position = [1.0, 2.0, 3.0]

[systems]
max_textures = 64
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("window = %dx%d, want 800x600", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.Title != "Prism Testbed" {
		t.Errorf("absent title = %q, want default", cfg.Window.Title)
	}
	if cfg.Camera.FOV != 60 || cfg.Camera.Position != [3]float32{1, 2, 3} {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	if cfg.Systems.MaxTextures != 64 || cfg.Systems.MaxMaterials != 1000 {
		t.Errorf("systems = %+v", cfg.Systems)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "prism.yaml", `
graphics:
  backend: headless
ui:
  near: -10
  far: 10
logging:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.Near != -10 || cfg.UI.Far != 10 {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Window.Width != 1280 {
		t.Errorf("width = %d, want default", cfg.Window.Width)
	}
}

func TestLoadUnknownField(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad.toml", "[window]\nwidht = 10\n"},
		{"bad.yaml", "window:\n  widht: 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.name, tt.content)); err == nil {
				t.Error("Load() should reject unknown keys")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want %v", err, os.ErrNotExist)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"unknown backend", func(c *Config) { c.Graphics.Backend = "glide" }},
		{"near zero", func(c *Config) { c.Camera.Near = 0 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.05 }},
		{"ui inverted", func(c *Config) { c.UI.Near, c.UI.Far = 5, -5 }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want %v", err, ErrInvalidConfig)
			}
		})
	}
}

func TestValidateClampsFOV(t *testing.T) {
	cfg := Default()
	cfg.Camera.FOV = 240
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Camera.FOV != maxFOV {
		t.Errorf("FOV = %v, want %v", cfg.Camera.FOV, maxFOV)
	}
	cfg.Camera.FOV = -3
	_ = cfg.Validate()
	if cfg.Camera.FOV != minFOV {
		t.Errorf("FOV = %v, want %v", cfg.Camera.FOV, minFOV)
	}
}

func TestRendererConfig(t *testing.T) {
	cfg := Default()
	cfg.Camera.FOV = 70
	cfg.Camera.Position = [3]float32{4, 5, 6}
	rc, err := cfg.RendererConfig()
	if err != nil {
		t.Fatalf("RendererConfig() error = %v", err)
	}
	if rc.Type != renderer.Headless {
		t.Errorf("Type = %v, want %v", rc.Type, renderer.Headless)
	}
	if rc.FOVDegrees != 70 || rc.NearClip != 0.1 || rc.FarClip != 1000 {
		t.Errorf("projection = %v/%v/%v", rc.FOVDegrees, rc.NearClip, rc.FarClip)
	}
	if rc.CameraPosition.X != 4 || rc.CameraPosition.Y != 5 || rc.CameraPosition.Z != 6 {
		t.Errorf("CameraPosition = %+v", rc.CameraPosition)
	}
	if rc.UINearClip != -100 || rc.UIFarClip != 100 {
		t.Errorf("ui clip = %v/%v", rc.UINearClip, rc.UIFarClip)
	}

	cfg.Graphics.Backend = "nope"
	if _, err := cfg.RendererConfig(); err == nil {
		t.Error("RendererConfig() should fail for an unknown backend")
	}
}

func TestSystemManagerConfig(t *testing.T) {
	cfg := Default()
	cfg.Systems.MaxGeometries = 12
	sm := cfg.SystemManagerConfig()
	if sm.MaxGeometryCount != 12 || sm.MaxCameraCount != cfg.Systems.MaxCameras {
		t.Errorf("SystemManagerConfig() = %+v", sm)
	}
	if w := cfg.NewWindow(); w.Width != 1280 || w.Height != 720 || w.Title != cfg.Window.Title {
		t.Errorf("NewWindow() = %+v", w)
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"nested/prism.toml", "nested/prism.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := Default()
			cfg.Window.Title = "roundtrip"
			cfg.Camera.Far = 500
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if *loaded != *cfg {
				t.Errorf("Load() = %+v, want %+v", loaded, cfg)
			}
		})
	}
}

func TestFlagsApply(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs)
	if err := fs.Parse([]string{"-debug", "-width", "640", "-config", "x.toml"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cfg := Default()
	if err := f.Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if f.Path != "x.toml" || cfg.Logging.Level != "debug" || cfg.Window.Width != 640 || cfg.Window.Height != 720 {
		t.Errorf("after Apply() path=%q cfg=%+v", f.Path, cfg)
	}

	f.Backend = "glide"
	if err := f.Apply(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Apply() error = %v, want %v", err, ErrInvalidConfig)
	}
}

func TestWatchReloads(t *testing.T) {
	path := writeFile(t, "prism.toml", "[camera]\nfov = 50.0\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configs, errs, err := Watch(ctx, path)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("[camera]\nfov = 75.0\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-configs:
			// a write may be delivered as several events; wait for the final content
			if cfg.Camera.FOV == 75 {
				cancel()
				for range configs {
				}
				return
			}
		case err := <-errs:
			// a truncated file can be observed mid write
			t.Logf("reload error: %v", err)
		case <-timeout:
			t.Fatal("timed out waiting for reload")
		}
	}
}
