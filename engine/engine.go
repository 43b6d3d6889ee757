package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/systems"
)

var ErrInvalidGame = errors.New("invalid game")

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine has released everything and cannot be used again
	EngineStageShutDown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *config.Config
	renderer      *renderer.Renderer
	systemManager *systems.SystemManager
	events        *core.EventBus
	clock         *core.Clock
	metrics       *core.Metrics
	isRunning     bool
	isSuspended   bool
	width         uint32
	height        uint32
	lastTime      float64
	frameCount    uint64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.FnUpdate == nil || g.FnRender == nil {
		return nil, fmt.Errorf("%w: update and render callbacks are required", ErrInvalidGame)
	}
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = &ApplicationConfig{}
	}
	cfg := g.ApplicationConfig.Config
	if cfg == nil {
		cfg = config.Default()
		g.ApplicationConfig.Config = cfg
	}

	rc, err := cfg.RendererConfig()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	r := renderer.New(rc)

	sm, err := systems.NewSystemManager(cfg.SystemManagerConfig(), r)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        cfg,
		renderer:      r,
		systemManager: sm,
		events:        core.NewEventBus(),
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
		width:         cfg.Window.Width,
		height:        cfg.Window.Height,
	}, nil
}

// Initialize brings up the renderer and the systems, then hands control to
// the game's initialize and resize callbacks.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine: %w", core.ErrAlreadyInitialized)
	}
	e.currentStage = EngineStageInitializing

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Register(core.EVENT_CODE_CONFIG_RELOADED, e, e.onConfigReloaded)

	if err := e.renderer.Initialize(e.config.NewWindow()); err != nil {
		e.currentStage = EngineStageUninitialized
		return err
	}
	if err := e.systemManager.Initialize(); err != nil {
		e.currentStage = EngineStageUninitialized
		return errors.Join(err, e.renderer.Shutdown())
	}
	e.gameInstance.SystemManager = e.systemManager

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run drives the frame loop until Quit is called, ctx is done, the frame
// limit is reached or the renderer fails to end a frame.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine run: %w", core.ErrNotInitialized)
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	appConfig := e.gameInstance.ApplicationConfig
	var reloads <-chan *config.Config
	var reloadErrs <-chan error
	if appConfig.ConfigPath != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		var err error
		reloads, reloadErrs, err = config.Watch(watchCtx, appConfig.ConfigPath)
		if err != nil {
			core.LogWarn("not watching %s: %s", appConfig.ConfigPath, err)
		}
	}

	var targetFrameSeconds float64
	if appConfig.TargetFrameRate > 0 {
		targetFrameSeconds = 1.0 / appConfig.TargetFrameRate
	}

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		select {
		case <-ctx.Done():
			core.LogInfo("context done, leaving the frame loop")
			e.isRunning = false
			continue
		case cfg, ok := <-reloads:
			if ok {
				e.events.Fire(core.EVENT_CODE_CONFIG_RELOADED, cfg, core.EventContext{})
			} else {
				reloads = nil
			}
		case err, ok := <-reloadErrs:
			if !ok {
				reloadErrs = nil
			} else {
				core.LogWarn("config watch: %s", err)
			}
		default:
		}

		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		frameStart := time.Now()
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := e.frame(delta); err != nil {
			e.isRunning = false
			e.currentStage = EngineStageInitialized
			return err
		}

		frameElapsed := time.Since(frameStart).Seconds()
		e.metrics.Update(frameElapsed)
		e.frameCount++
		if appConfig.MaxFrames > 0 && e.frameCount >= appConfig.MaxFrames {
			e.isRunning = false
		}

		// If there is time left, give it back to the OS.
		if remaining := targetFrameSeconds - frameElapsed; targetFrameSeconds > 0 && remaining > 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}

		e.lastTime = currentTime
	}

	e.currentStage = EngineStageInitialized
	fps, ms := e.metrics.Frame()
	core.LogInfo("frame loop stopped after %d frames (%.1f fps, %.3f ms)", e.frameCount, fps, ms)
	return nil
}

func (e *Engine) frame(delta float64) error {
	if err := e.gameInstance.FnUpdate(delta); err != nil {
		core.LogError("Game update failed, shutting down.")
		return err
	}
	// deliver finished background jobs on this goroutine
	e.systemManager.Update()

	if err := e.renderer.SetView(e.systemManager.Cameras().Default().View()); err != nil {
		return err
	}

	packet := &metadata.RenderPacket{DeltaTime: delta}
	if err := e.gameInstance.FnRender(packet, delta); err != nil {
		core.LogError("Game render failed, shutting down.")
		return err
	}

	if err := e.renderer.DrawFrame(packet); err != nil {
		if errors.Is(err, core.ErrShuttingDown) {
			return err
		}
		// the renderer closed the failed frame; only this one is lost
		core.LogWarn("frame dropped: %s", err)
	}
	return nil
}

// Quit asks the frame loop to stop after the current frame.
func (e *Engine) Quit() {
	e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
}

// Resize reports a new framebuffer size, as a platform layer would.
func (e *Engine) Resize(width, height uint32) {
	var ctx core.EventContext
	ctx.Data.U32[0] = width
	ctx.Data.U32[1] = height
	e.events.Fire(core.EVENT_CODE_RESIZED, e, ctx)
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.systemManager.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if e.renderer.Initialized() {
		if err := e.renderer.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	e.events.Shutdown()
	e.currentStage = EngineStageShutDown
	return errors.Join(errs...)
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Stage() Stage                          { return e.currentStage }
func (e *Engine) Events() *core.EventBus                { return e.events }
func (e *Engine) Renderer() *renderer.Renderer          { return e.renderer }
func (e *Engine) SystemManager() *systems.SystemManager { return e.systemManager }
func (e *Engine) Metrics() *core.Metrics                { return e.metrics }
func (e *Engine) FrameCount() uint64                    { return e.frameCount }
func (e *Engine) Config() *config.Config                { return e.config }

func (e *Engine) onEvent(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	width := data.Data.U32[0]
	height := data.Data.U32[1]

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
	} else if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}

	if err := e.renderer.OnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	if !e.isSuspended && e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	// other listeners may care about the new size too
	return false
}

// onConfigReloaded applies the settings that can change at runtime. The
// backend and system capacities need a restart.
func (e *Engine) onConfigReloaded(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	cfg, ok := sender.(*config.Config)
	if !ok {
		core.LogError("wrong sender associated with the event type `%d`", code)
		return false
	}
	if cfg.Graphics.Backend != e.config.Graphics.Backend {
		core.LogWarn("backend change to %s takes effect on restart", cfg.Graphics.Backend)
	}
	if err := e.renderer.SetProjection(cfg.Camera.FOV, cfg.Camera.Near, cfg.Camera.Far); err != nil {
		core.LogError("config reload: %s", err)
		return false
	}
	core.SetLogLevel(core.LogLevel(cfg.Logging.Level))

	gfx := e.config.Graphics
	*e.config = *cfg
	e.config.Graphics = gfx
	return false
}
