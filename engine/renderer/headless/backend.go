package headless

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/containers"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

var _ renderer.RendererBackend = (*Backend)(nil)

func init() {
	renderer.RegisterBackend(renderer.Headless, func() renderer.RendererBackend {
		return New(DefaultConfig())
	})
}

// Config bounds the resources of a headless backend. The limits mirror what a
// typical GPU backend enforces so code that passes here also fits there.
type Config struct {
	MaxShaderCount      int
	MaxUniformCount     int
	MaxInstanceCount    int
	MaxGlobalTextures   int
	MaxInstanceTextures int
	// RequiredUboAlignment is the stride multiple of uniform buffer objects.
	RequiredUboAlignment uint64
	// MaxPushConstantSize caps the local scope block.
	MaxPushConstantSize uint64
	// CommandLogSize is how many of the latest commands are kept. Zero turns
	// the log off.
	CommandLogSize int
}

func DefaultConfig() Config {
	return Config{
		MaxShaderCount:       32,
		MaxUniformCount:      128,
		MaxInstanceCount:     1024,
		MaxGlobalTextures:    31,
		MaxInstanceTextures:  31,
		RequiredUboAlignment: 256,
		MaxPushConstantSize:  128,
		CommandLogSize:       4096,
	}
}

// Stats counts what the backend has processed since Initialize.
type Stats struct {
	FramesBegun     uint64
	FramesEnded     uint64
	FramesBooted    uint64
	RenderPasses    uint64
	Draws           uint64
	GlobalApplies   uint64
	InstanceApplies uint64
	Shaders         int
	Textures        int
	Geometries      int
	ResizeRequests  uint64
}

// Backend is an in-memory renderer backend. It keeps the same state machine,
// uniform layout and scope rules a GPU backend would, and stores every byte
// written so callers can inspect it.
type Backend struct {
	cfg         Config
	window      *metadata.Window
	initialized bool

	framebufferWidth              uint32
	framebufferHeight             uint32
	framebufferSizeGeneration     uint64
	framebufferSizeLastGeneration uint64

	frameOpen  bool
	activePass metadata.BuiltinRenderpass

	shaders []*shader
	current *shader

	texturePool  *core.IdentifierPool
	textures     map[uint32][]byte
	geometryPool *core.IdentifierPool
	geometries   map[uint32]*geometryData

	commands *containers.RingQueue[Command]
	stats    Stats
	failures map[Op]error
}

func New(cfg Config) *Backend {
	b := &Backend{cfg: cfg}
	if cfg.CommandLogSize > 0 {
		b.commands = containers.NewRingQueue[Command](cfg.CommandLogSize)
	}
	return b
}

func (b *Backend) Initialize(window *metadata.Window) error {
	if err := b.record(OpInitialize, 0, ""); err != nil {
		return err
	}
	if b.initialized {
		return fmt.Errorf("headless backend: %w", core.ErrAlreadyInitialized)
	}
	if window == nil {
		return errors.New("headless backend: nil window")
	}
	b.window = window
	b.framebufferWidth = window.Width
	b.framebufferHeight = window.Height
	b.framebufferSizeGeneration = 0
	b.framebufferSizeLastGeneration = 0

	b.shaders = make([]*shader, b.cfg.MaxShaderCount)
	b.current = nil
	b.texturePool = core.NewIdentifierPool(64)
	b.textures = make(map[uint32][]byte)
	b.geometryPool = core.NewIdentifierPool(64)
	b.geometries = make(map[uint32]*geometryData)
	b.stats = Stats{}
	b.frameOpen = false
	b.activePass = 0
	b.initialized = true

	core.LogInfo("Headless renderer backend initialized (%dx%d).", window.Width, window.Height)
	return nil
}

func (b *Backend) Shutdown() error {
	if err := b.record(OpShutdown, 0, ""); err != nil {
		return err
	}
	if !b.initialized {
		return fmt.Errorf("headless backend shutdown: %w", core.ErrNotInitialized)
	}
	live := 0
	for _, s := range b.shaders {
		if s != nil {
			live++
		}
	}
	if live > 0 {
		core.LogWarn("Headless backend shutting down with %d live shader(s).", live)
	}
	b.shaders = nil
	b.current = nil
	b.textures = nil
	b.geometries = nil
	b.frameOpen = false
	b.activePass = 0
	b.initialized = false
	core.LogInfo("Headless renderer backend shut down.")
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	if err := b.record(OpResized, 0, fmt.Sprintf("%dx%d", width, height)); err != nil {
		return err
	}
	// Update the "framebuffer size generation", a counter which indicates when the
	// framebuffer size has been updated.
	b.framebufferWidth = width
	b.framebufferHeight = height
	b.framebufferSizeGeneration++
	b.stats.ResizeRequests++

	core.LogDebug("Headless renderer backend->resized: w/h/gen: %d/%d/%d", width, height, b.framebufferSizeGeneration)
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	if err := b.record(OpBeginFrame, 0, ""); err != nil {
		return err
	}
	if err := b.requireInitialized(); err != nil {
		return err
	}
	if b.frameOpen {
		return errors.New("begin frame: previous frame was not ended")
	}

	// Check if the framebuffer has been resized. If so, a new swapchain must be created.
	if b.framebufferSizeGeneration != b.framebufferSizeLastGeneration {
		b.stats.FramesBooted++
		if b.framebufferWidth == 0 || b.framebufferHeight == 0 {
			core.LogDebug("recreate swapchain called when window is < 1 in a dimension. Booting.")
			return fmt.Errorf("begin frame: %w", core.ErrSwapchainBooting)
		}
		b.framebufferSizeLastGeneration = b.framebufferSizeGeneration
		core.LogDebug("Resized, booting.")
		return fmt.Errorf("begin frame: %w", core.ErrSwapchainBooting)
	}

	b.frameOpen = true
	b.stats.FramesBegun++
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	if err := b.record(OpEndFrame, 0, ""); err != nil {
		return err
	}
	if !b.frameOpen {
		return errors.New("end frame: no frame in progress")
	}
	if b.activePass != 0 {
		return fmt.Errorf("end frame: renderpass %s still active", b.activePass)
	}
	b.frameOpen = false
	b.current = nil
	b.stats.FramesEnded++
	return nil
}

func (b *Backend) RenderPassBegin(pass metadata.BuiltinRenderpass) error {
	if err := b.record(OpRenderPassBegin, 0, pass.String()); err != nil {
		return err
	}
	if !b.frameOpen {
		return fmt.Errorf("begin renderpass %s: no frame in progress", pass)
	}
	if b.activePass != 0 {
		return fmt.Errorf("begin renderpass %s: renderpass %s still active", pass, b.activePass)
	}
	if pass != metadata.BuiltinRenderpassWorld && pass != metadata.BuiltinRenderpassUI {
		return fmt.Errorf("begin renderpass: unrecognized renderpass id %d", uint8(pass))
	}
	b.activePass = pass
	b.stats.RenderPasses++
	return nil
}

func (b *Backend) RenderPassEnd(pass metadata.BuiltinRenderpass) error {
	if err := b.record(OpRenderPassEnd, 0, pass.String()); err != nil {
		return err
	}
	if b.activePass != pass {
		return fmt.Errorf("end renderpass %s: active renderpass is %s", pass, b.activePass)
	}
	b.activePass = 0
	b.current = nil
	return nil
}

func (b *Backend) requireInitialized() error {
	if !b.initialized {
		return fmt.Errorf("headless backend: %w", core.ErrNotInitialized)
	}
	return nil
}

// FramebufferSize is the last size given to Resized or Initialize.
func (b *Backend) FramebufferSize() (uint32, uint32) {
	return b.framebufferWidth, b.framebufferHeight
}

func (b *Backend) Stats() Stats {
	s := b.stats
	for _, sh := range b.shaders {
		if sh != nil {
			s.Shaders++
		}
	}
	s.Textures = len(b.textures)
	s.Geometries = len(b.geometries)
	return s
}
