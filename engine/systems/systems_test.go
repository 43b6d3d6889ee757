package systems

import (
	"io"
	"os"
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

// newTestStack brings up a headless renderer with every system on top of it.
func newTestStack(t *testing.T, config SystemManagerConfig) (*renderer.Renderer, *headless.Backend, *SystemManager) {
	t.Helper()
	backend := headless.New(headless.DefaultConfig())
	cfg := renderer.DefaultConfig()
	cfg.Backend = backend
	r := renderer.New(cfg)
	if err := r.Initialize(&metadata.Window{Title: "systems", Width: 800, Height: 600}); err != nil {
		t.Fatalf("renderer Initialize() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Shutdown() })

	sm, err := NewSystemManager(config, r)
	if err != nil {
		t.Fatalf("NewSystemManager() error = %v", err)
	}
	if err := sm.Initialize(); err != nil {
		t.Fatalf("SystemManager.Initialize() error = %v", err)
	}
	t.Cleanup(func() { _ = sm.Shutdown() })
	return r, backend, sm
}
