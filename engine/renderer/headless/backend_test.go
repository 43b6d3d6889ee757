package headless

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := New(DefaultConfig())
	if err := b.Initialize(&metadata.Window{Title: "test", Width: 800, Height: 600}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return b
}

func TestRegisteredAsHeadless(t *testing.T) {
	b, err := renderer.NewBackend(renderer.Headless)
	if err != nil {
		t.Fatalf("NewBackend(Headless) error = %v", err)
	}
	if _, ok := b.(*Backend); !ok {
		t.Errorf("NewBackend(Headless) = %T, want *headless.Backend", b)
	}
}

func TestInitializeTwice(t *testing.T) {
	b := newTestBackend(t)
	err := b.Initialize(&metadata.Window{Width: 1, Height: 1})
	if !errors.Is(err, core.ErrAlreadyInitialized) {
		t.Errorf("second Initialize() error = %v, want ErrAlreadyInitialized", err)
	}
}

func TestNotInitialized(t *testing.T) {
	b := New(DefaultConfig())
	if err := b.BeginFrame(0); !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("BeginFrame() error = %v, want ErrNotInitialized", err)
	}
	if err := b.Shutdown(); !errors.Is(err, core.ErrNotInitialized) {
		t.Errorf("Shutdown() error = %v, want ErrNotInitialized", err)
	}
}

func TestFrameStateMachine(t *testing.T) {
	b := newTestBackend(t)

	if err := b.EndFrame(0); err == nil {
		t.Error("EndFrame() without BeginFrame should fail")
	}
	if err := b.BeginFrame(0); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if err := b.BeginFrame(0); err == nil {
		t.Error("BeginFrame() twice should fail")
	}
	if err := b.EndFrame(0); err != nil {
		t.Fatalf("EndFrame() error = %v", err)
	}

	s := b.Stats()
	if s.FramesBegun != 1 || s.FramesEnded != 1 {
		t.Errorf("Stats() begun/ended = %d/%d, want 1/1", s.FramesBegun, s.FramesEnded)
	}
}

func TestRenderPassOrdering(t *testing.T) {
	b := newTestBackend(t)

	if err := b.RenderPassBegin(metadata.BuiltinRenderpassWorld); err == nil {
		t.Error("RenderPassBegin() outside a frame should fail")
	}
	if err := b.BeginFrame(0); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if err := b.RenderPassBegin(metadata.BuiltinRenderpass(0x10)); err == nil {
		t.Error("RenderPassBegin() with unknown pass should fail")
	}
	if err := b.RenderPassBegin(metadata.BuiltinRenderpassWorld); err != nil {
		t.Fatalf("RenderPassBegin(World) error = %v", err)
	}
	if err := b.RenderPassBegin(metadata.BuiltinRenderpassUI); err == nil {
		t.Error("nested RenderPassBegin() should fail")
	}
	if err := b.RenderPassEnd(metadata.BuiltinRenderpassUI); err == nil {
		t.Error("RenderPassEnd() of inactive pass should fail")
	}
	if err := b.EndFrame(0); err == nil {
		t.Error("EndFrame() with an active pass should fail")
	}
	if err := b.RenderPassEnd(metadata.BuiltinRenderpassWorld); err != nil {
		t.Fatalf("RenderPassEnd(World) error = %v", err)
	}
	if err := b.EndFrame(0); err != nil {
		t.Fatalf("EndFrame() error = %v", err)
	}
}

func TestBeginFrameBootsAfterResize(t *testing.T) {
	b := newTestBackend(t)

	if err := b.Resized(1920, 1080); err != nil {
		t.Fatalf("Resized() error = %v", err)
	}
	if err := b.BeginFrame(0); !errors.Is(err, core.ErrSwapchainBooting) {
		t.Fatalf("BeginFrame() after resize error = %v, want ErrSwapchainBooting", err)
	}
	if err := b.BeginFrame(0); err != nil {
		t.Fatalf("BeginFrame() after boot error = %v", err)
	}
	w, h := b.FramebufferSize()
	if w != 1920 || h != 1080 {
		t.Errorf("FramebufferSize() = %dx%d, want 1920x1080", w, h)
	}
	if got := b.Stats().FramesBooted; got != 1 {
		t.Errorf("FramesBooted = %d, want 1", got)
	}
}

func TestBeginFrameMinimized(t *testing.T) {
	b := newTestBackend(t)

	if err := b.Resized(0, 600); err != nil {
		t.Fatalf("Resized() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := b.BeginFrame(0); !errors.Is(err, core.ErrSwapchainBooting) {
			t.Fatalf("BeginFrame() #%d while minimized error = %v, want ErrSwapchainBooting", i, err)
		}
	}

	if err := b.Resized(800, 600); err != nil {
		t.Fatalf("Resized() error = %v", err)
	}
	if err := b.BeginFrame(0); !errors.Is(err, core.ErrSwapchainBooting) {
		t.Fatalf("BeginFrame() after restore error = %v, want ErrSwapchainBooting", err)
	}
	if err := b.BeginFrame(0); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
}

func TestFailOn(t *testing.T) {
	b := newTestBackend(t)
	boom := errors.New("boom")

	b.FailOn(OpBeginFrame, boom)
	if err := b.BeginFrame(0); !errors.Is(err, boom) {
		t.Fatalf("BeginFrame() error = %v, want boom", err)
	}
	b.FailOn(OpBeginFrame, nil)
	if err := b.BeginFrame(0); err != nil {
		t.Fatalf("BeginFrame() after clearing error = %v", err)
	}

	cmds := b.Commands()
	if len(cmds) != 3 {
		t.Fatalf("Commands() len = %d, want 3: %v", len(cmds), cmds)
	}
	for i, want := range []Op{OpInitialize, OpBeginFrame, OpBeginFrame} {
		if cmds[i].Op != want {
			t.Errorf("Commands()[%d] = %s, want %s", i, cmds[i].Op, want)
		}
	}

	b.ResetCommands()
	if n := len(b.Commands()); n != 0 {
		t.Errorf("Commands() after reset len = %d, want 0", n)
	}
}

func TestTextureCreate(t *testing.T) {
	b := newTestBackend(t)
	tex := &metadata.Texture{Name: "checker", Width: 2, Height: 2, ChannelCount: 4}

	if err := b.TextureCreate(make([]uint8, 15), tex); err == nil {
		t.Error("TextureCreate() with short pixel data should fail")
	}

	pixels := make([]uint8, 16)
	pixels[0] = 255
	if err := b.TextureCreate(pixels, tex); err != nil {
		t.Fatalf("TextureCreate() error = %v", err)
	}
	got, ok := b.TexturePixels(tex)
	if !ok || len(got) != 16 || got[0] != 255 {
		t.Errorf("TexturePixels() = %v, %v", got, ok)
	}
	// The backend keeps its own copy.
	pixels[0] = 0
	if got, _ := b.TexturePixels(tex); got[0] != 255 {
		t.Error("TextureCreate() should copy the pixel data")
	}

	b.TextureDestroy(tex)
	if _, ok := b.TexturePixels(tex); ok {
		t.Error("TexturePixels() after destroy should report false")
	}
	if n := b.Stats().Textures; n != 0 {
		t.Errorf("Stats().Textures = %d, want 0", n)
	}
}

func TestGeometryCreate(t *testing.T) {
	b := newTestBackend(t)
	vertices := []math.Vertex3D{
		{Position: math.NewVec3(0, 0, 0)},
		{Position: math.NewVec3(1, 0, 0)},
		{Position: math.NewVec3(0, 1, 0)},
	}
	indices := []uint32{0, 1, 2}
	g := &metadata.Geometry{Name: "tri", InternalID: metadata.InvalidID, Generation: metadata.InvalidIDUint16}

	if err := b.GeometryCreate(g, 48, 3, vertices, indices); err != nil {
		t.Fatalf("GeometryCreate() error = %v", err)
	}
	if g.Generation != 0 {
		t.Errorf("Generation = %d, want 0", g.Generation)
	}
	vb, ib, ok := b.GeometryBuffers(g)
	if !ok || len(vb) != 3*48 || len(ib) != 3*4 {
		t.Fatalf("GeometryBuffers() = %d, %d, %v", len(vb), len(ib), ok)
	}

	id := g.InternalID
	if err := b.GeometryCreate(g, 48, 3, vertices, indices); err != nil {
		t.Fatalf("GeometryCreate() re-upload error = %v", err)
	}
	if g.InternalID != id || g.Generation != 1 {
		t.Errorf("re-upload id/generation = %d/%d, want %d/1", g.InternalID, g.Generation, id)
	}

	if err := b.GeometryCreate(&metadata.Geometry{Name: "bad"}, 48, 4, vertices, indices); err == nil {
		t.Error("GeometryCreate() with mismatched vertex count should fail")
	}

	b.GeometryDestroy(g)
	if g.InternalID != metadata.InvalidID || g.Generation != metadata.InvalidIDUint16 {
		t.Errorf("after destroy id/generation = %d/%d", g.InternalID, g.Generation)
	}
	if n := b.Stats().Geometries; n != 0 {
		t.Errorf("Stats().Geometries = %d, want 0", n)
	}
}

func TestGeometryCreateDistinctOwners(t *testing.T) {
	b := newTestBackend(t)
	vertices := []math.Vertex2D{{}, {}, {}}

	first := &metadata.Geometry{Name: "first", InternalID: metadata.InvalidID, Generation: metadata.InvalidIDUint16}
	if err := b.GeometryCreate(first, 16, 3, vertices, nil); err != nil {
		t.Fatalf("GeometryCreate(first) error = %v", err)
	}
	// A zero valued geometry shares id 0 with first but must not replace it.
	second := &metadata.Geometry{Name: "second", Generation: metadata.InvalidIDUint16}
	if err := b.GeometryCreate(second, 16, 3, vertices, nil); err != nil {
		t.Fatalf("GeometryCreate(second) error = %v", err)
	}
	if first.InternalID == second.InternalID {
		t.Fatalf("both geometries got id %d", first.InternalID)
	}
	if n := b.Stats().Geometries; n != 2 {
		t.Errorf("Stats().Geometries = %d, want 2", n)
	}
}

func TestDrawGeometryRequiresPassAndShader(t *testing.T) {
	b := newTestBackend(t)
	g := &metadata.Geometry{Name: "tri", InternalID: metadata.InvalidID, Generation: metadata.InvalidIDUint16}
	if err := b.GeometryCreate(g, 16, 3, []math.Vertex2D{{}, {}, {}}, nil); err != nil {
		t.Fatalf("GeometryCreate() error = %v", err)
	}
	data := metadata.GeometryRenderData{Model: math.NewMat4Identity(), Geometry: g}

	if err := b.DrawGeometry(data); err == nil {
		t.Error("DrawGeometry() outside a renderpass should fail")
	}
	if err := b.BeginFrame(0); err != nil {
		t.Fatalf("BeginFrame() error = %v", err)
	}
	if err := b.RenderPassBegin(metadata.BuiltinRenderpassWorld); err != nil {
		t.Fatalf("RenderPassBegin() error = %v", err)
	}
	if err := b.DrawGeometry(data); err == nil {
		t.Error("DrawGeometry() without a shader in use should fail")
	}
	if b.Stats().Draws != 0 {
		t.Error("failed draws should not be counted")
	}
}

func TestShutdownReleasesEverything(t *testing.T) {
	b := newTestBackend(t)
	if _, err := b.ShaderCreate("s", metadata.BuiltinRenderpassWorld, []metadata.ShaderStage{metadata.ShaderStageVertex}, false, false); err != nil {
		t.Fatalf("ShaderCreate() error = %v", err)
	}
	if err := b.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	s := b.Stats()
	if s.Shaders != 0 || s.Textures != 0 || s.Geometries != 0 {
		t.Errorf("Stats() after shutdown = %+v", s)
	}
	// The backend may be brought up again.
	if err := b.Initialize(&metadata.Window{Width: 10, Height: 10}); err != nil {
		t.Errorf("Initialize() after Shutdown error = %v", err)
	}
}

func TestCommandLogBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CommandLogSize = 4
	b := New(cfg)
	if err := b.Initialize(&metadata.Window{Width: 8, Height: 8}); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := b.BeginFrame(0); err != nil {
			t.Fatalf("BeginFrame() error = %v", err)
		}
		if err := b.EndFrame(0); err != nil {
			t.Fatalf("EndFrame() error = %v", err)
		}
	}

	cmds := b.Commands()
	if len(cmds) != 4 {
		t.Fatalf("Commands() len = %d, want 4", len(cmds))
	}
	for i, want := range []Op{OpBeginFrame, OpEndFrame, OpBeginFrame, OpEndFrame} {
		if cmds[i].Op != want {
			t.Errorf("Commands()[%d] = %s, want %s", i, cmds[i].Op, want)
		}
	}
	if s := b.Stats(); s.FramesEnded != 10 {
		t.Errorf("FramesEnded = %d, want 10", s.FramesEnded)
	}
}

func TestCommandLogDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CommandLogSize = 0
	b := New(cfg)
	boom := errors.New("boom")
	b.FailOn(OpInitialize, boom)
	if err := b.Initialize(&metadata.Window{Width: 8, Height: 8}); !errors.Is(err, boom) {
		t.Errorf("Initialize() error = %v, want %v", err, boom)
	}
	if cmds := b.Commands(); len(cmds) != 0 {
		t.Errorf("Commands() = %v, want none", cmds)
	}
}
