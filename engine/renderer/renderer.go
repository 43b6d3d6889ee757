package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const (
	BuiltinMaterialShaderName string = "Builtin.MaterialShader"
	BuiltinUIShaderName       string = "Builtin.UIShader"
)

const messageNotInitialized = "Function '%s' requires the renderer to be initialized. Call 'Initialize' first."

// MaterialProvider supplies the material drawn for geometry that carries none.
type MaterialProvider interface {
	Default() *metadata.Material
}

// Config holds everything the renderer needs before Initialize. No backend
// work happens until Initialize is called.
type Config struct {
	// Type selects a registered backend. Ignored when Backend is set.
	Type RendererType
	// Backend, when not nil, is used instead of a registry lookup.
	Backend RendererBackend

	FOVDegrees     float32
	NearClip       float32
	FarClip        float32
	CameraPosition math.Vec3
	UINearClip     float32
	UIFarClip      float32
}

// DefaultConfig returns the headless backend with a 45 degree field of view and the camera at (0,0,30).
func DefaultConfig() Config {
	return Config{
		Type:           Headless,
		FOVDegrees:     45.0,
		NearClip:       0.1,
		FarClip:        1000.0,
		CameraPosition: math.NewVec3(0, 0, 30.0),
		UINearClip:     -100.0,
		UIFarClip:      100.0,
	}
}

// Frustum describes the world perspective projection.
type Frustum struct {
	FOVRadians  float32
	AspectRatio float32
	NearClip    float32
	FarClip     float32
}

// Bounds describes the UI orthographic projection.
type Bounds struct {
	Left, Right, Bottom, Top float32
	NearClip, FarClip        float32
}

type rendererState int

const (
	stateUninitialized rendererState = iota
	stateInitialized
	stateShutDown
)

// Renderer is the backend agnostic frontend. It owns the built-in shaders,
// the world and UI matrices and the frame counter, and drives the world and
// UI passes of every frame. It is not safe for concurrent use.
type Renderer struct {
	cfg       Config
	backend   RendererBackend
	state     rendererState
	materials MaterialProvider

	width  uint32
	height uint32

	projection   math.Mat4
	view         math.Mat4
	uiProjection math.Mat4
	uiView       math.Mat4

	fovRadians float32
	nearClip   float32
	farClip    float32
	uiNearClip float32
	uiFarClip  float32

	materialShaderID        metadata.ShaderID
	materialShaderLocations metadata.MaterialShaderUniformLocations
	uiShaderID              metadata.ShaderID
	uiShaderLocations       metadata.UIShaderUniformLocations

	frameNumber uint64
}

// New commits the renderer storage. Call Initialize before anything else.
func New(cfg Config) *Renderer {
	return &Renderer{
		cfg:              cfg,
		state:            stateUninitialized,
		materialShaderID: metadata.ShaderID(metadata.InvalidID),
		uiShaderID:       metadata.ShaderID(metadata.InvalidID),
	}
}

// SetMaterialProvider sets where the default material comes from.
func (r *Renderer) SetMaterialProvider(p MaterialProvider) {
	r.materials = p
}

// Initialize brings the backend up against window and creates the built-in
// shaders. On failure everything created so far is torn down and the
// renderer may be initialized again.
func (r *Renderer) Initialize(window *metadata.Window) error {
	switch r.state {
	case stateInitialized:
		core.LogWarn("Function '%s' was called more than once.", "Initialize")
		return fmt.Errorf("renderer: %w", core.ErrAlreadyInitialized)
	case stateShutDown:
		core.LogError("renderer was shut down and cannot be initialized again")
		return fmt.Errorf("renderer was shut down: %w", core.ErrShuttingDown)
	}
	if window == nil || window.Width == 0 || window.Height == 0 {
		return fmt.Errorf("renderer: invalid window: %w", core.ErrBackendInitialize)
	}

	backend := r.cfg.Backend
	if backend == nil {
		b, err := NewBackend(r.cfg.Type)
		if err != nil {
			core.LogError("failed to create renderer backend: %s", err)
			return err
		}
		backend = b
	}

	if err := backend.Initialize(window); err != nil {
		core.LogError("renderer backend failed to initialize: %s", err)
		return fmt.Errorf("%w: %w", core.ErrBackendInitialize, err)
	}
	r.backend = backend

	materialShader, materialLocations, err := r.createShader(builtinMaterialShaderConfig())
	if err != nil {
		core.LogError("Error creating built-in material shader: %s", err)
		r.abortInitialize()
		return err
	}
	r.materialShaderID = materialShader
	r.materialShaderLocations = metadata.MaterialShaderUniformLocations{
		Projection:     materialLocations["projection"],
		View:           materialLocations["view"],
		DiffuseColour:  materialLocations["diffuse_colour"],
		DiffuseTexture: materialLocations["diffuse_texture"],
		Model:          materialLocations["model"],
	}
	core.LogDebug("Material shader created.")

	uiShader, uiLocations, err := r.createShader(builtinUIShaderConfig())
	if err != nil {
		core.LogError("Error creating built-in ui shader: %s", err)
		r.abortInitialize()
		return err
	}
	r.uiShaderID = uiShader
	r.uiShaderLocations = metadata.UIShaderUniformLocations{
		Projection:     uiLocations["projection"],
		View:           uiLocations["view"],
		DiffuseColour:  uiLocations["diffuse_colour"],
		DiffuseTexture: uiLocations["diffuse_texture"],
		Model:          uiLocations["model"],
	}
	core.LogDebug("UI shader created.")

	// World projection/view.
	r.fovRadians = math.DegToRad(r.cfg.FOVDegrees)
	r.nearClip = r.cfg.NearClip
	r.farClip = r.cfg.FarClip
	r.width = window.Width
	r.height = window.Height
	r.projection = math.NewMat4Perspective(r.fovRadians, r.aspectRatio(), r.nearClip, r.farClip)
	r.view = math.NewMat4Translation(r.cfg.CameraPosition).Inverse()

	// UI projection/view.
	r.uiNearClip = r.cfg.UINearClip
	r.uiFarClip = r.cfg.UIFarClip
	r.uiProjection = math.NewMat4Orthographic(0, float32(r.width), float32(r.height), 0, r.uiNearClip, r.uiFarClip)
	r.uiView = math.NewMat4Identity().Inverse()

	r.frameNumber = 0
	r.state = stateInitialized
	core.LogInfo("Renderer initialized with %dx%d window.", r.width, r.height)
	return nil
}

// abortInitialize releases whatever a failed Initialize created.
func (r *Renderer) abortInitialize() {
	for _, id := range []*metadata.ShaderID{&r.materialShaderID, &r.uiShaderID} {
		if *id != metadata.ShaderID(metadata.InvalidID) {
			if err := r.backend.ShaderDestroy(*id); err != nil {
				core.LogWarn("failed to destroy shader %d: %s", *id, err)
			}
			*id = metadata.ShaderID(metadata.InvalidID)
		}
	}
	if err := r.backend.Shutdown(); err != nil {
		core.LogWarn("backend shutdown after failed initialize: %s", err)
	}
	r.backend = nil
}

// Shutdown destroys the built-in shaders and shuts the backend down. The
// renderer cannot be used afterwards.
func (r *Renderer) Shutdown() error {
	if err := r.requireInitialized("Shutdown"); err != nil {
		return err
	}

	var errs []error
	if err := r.backend.ShaderDestroy(r.materialShaderID); err != nil {
		errs = append(errs, fmt.Errorf("destroy material shader: %w", err))
	}
	r.materialShaderID = metadata.ShaderID(metadata.InvalidID)
	if err := r.backend.ShaderDestroy(r.uiShaderID); err != nil {
		errs = append(errs, fmt.Errorf("destroy ui shader: %w", err))
	}
	r.uiShaderID = metadata.ShaderID(metadata.InvalidID)

	if err := r.backend.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("backend shutdown: %w", err))
	}
	r.backend = nil
	r.state = stateShutDown

	if err := errors.Join(errs...); err != nil {
		core.LogError("renderer shutdown: %s", err)
		return err
	}
	core.LogInfo("Renderer shut down after %d frames.", r.frameNumber)
	return nil
}

// DrawFrame records the world pass followed by the UI pass. A frame the
// backend cannot begin is skipped and nil is returned. A failed pass aborts
// the frame: it is still closed on the backend so the next one can begin, but
// the frame counter does not advance. An error from ending a completed frame
// wraps core.ErrShuttingDown; the caller decides whether to stop.
func (r *Renderer) DrawFrame(packet *metadata.RenderPacket) error {
	if err := r.requireInitialized("DrawFrame"); err != nil {
		return err
	}
	if packet == nil {
		return errors.New("renderer: nil render packet")
	}

	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			core.LogDebug("skipping frame %d: %s", r.frameNumber, err)
		} else {
			core.LogWarn("skipping frame %d: %s", r.frameNumber, err)
		}
		return nil
	}

	world := passSubmission{
		pass:       metadata.BuiltinRenderpassWorld,
		shader:     r.materialShaderID,
		locations:  r.materialShaderLocations,
		projection: r.projection,
		view:       r.view,
		items:      packet.Geometries,
	}
	if err := r.drawPass(world); err != nil {
		return r.abortFrame(packet.DeltaTime, err)
	}

	ui := passSubmission{
		pass:       metadata.BuiltinRenderpassUI,
		shader:     r.uiShaderID,
		locations:  metadata.MaterialShaderUniformLocations(r.uiShaderLocations),
		projection: r.uiProjection,
		view:       r.uiView,
		items:      packet.UIGeometries,
	}
	if err := r.drawPass(ui); err != nil {
		return r.abortFrame(packet.DeltaTime, err)
	}

	err := r.backend.EndFrame(packet.DeltaTime)
	r.frameNumber++
	if err != nil {
		core.LogError("Failed to complete function 'EndFrame'. Shutting down.")
		return fmt.Errorf("end frame: %w: %w", core.ErrShuttingDown, err)
	}
	return nil
}

type passSubmission struct {
	pass       metadata.BuiltinRenderpass
	shader     metadata.ShaderID
	locations  metadata.MaterialShaderUniformLocations
	projection math.Mat4
	view       math.Mat4
	items      []metadata.GeometryRenderData
}

func (r *Renderer) drawPass(p passSubmission) error {
	if err := r.backend.RenderPassBegin(p.pass); err != nil {
		core.LogError("Begin renderpass -> %s failed.", p.pass)
		return fmt.Errorf("%s: %w: %w", p.pass, core.ErrRenderpassBegin, err)
	}

	if err := r.applyGlobals(p); err != nil {
		core.LogError("%s: applying globals failed: %s", p.pass, err)
		return r.abortPass(p.pass, fmt.Errorf("%s: %w", p.pass, err))
	}

	for i := range p.items {
		if err := r.drawItem(p, p.items[i]); err != nil {
			core.LogError("%s: draw %d failed: %s", p.pass, i, err)
			return r.abortPass(p.pass, fmt.Errorf("%s: draw %d: %w", p.pass, i, err))
		}
	}

	if err := r.backend.RenderPassEnd(p.pass); err != nil {
		core.LogError("End renderpass -> %s failed.", p.pass)
		return fmt.Errorf("%s: %w: %w", p.pass, core.ErrRenderpassEnd, err)
	}
	return nil
}

// abortPass ends a pass that failed after it began and returns cause.
func (r *Renderer) abortPass(pass metadata.BuiltinRenderpass, cause error) error {
	if err := r.backend.RenderPassEnd(pass); err != nil {
		core.LogWarn("%s: ending aborted renderpass failed: %s", pass, err)
		return errors.Join(cause, fmt.Errorf("%s: %w: %w", pass, core.ErrRenderpassEnd, err))
	}
	return cause
}

// abortFrame closes a frame whose pass failed. The frame is not counted. A
// frame that cannot be closed leaves the backend unusable, so that error
// wraps core.ErrShuttingDown.
func (r *Renderer) abortFrame(deltaTime float64, cause error) error {
	if err := r.backend.EndFrame(deltaTime); err != nil {
		core.LogError("Failed to end aborted frame %d. Shutting down.", r.frameNumber)
		return errors.Join(cause, fmt.Errorf("end aborted frame: %w: %w", core.ErrShuttingDown, err))
	}
	return cause
}

func (r *Renderer) applyGlobals(p passSubmission) error {
	if err := r.backend.ShaderUse(p.shader); err != nil {
		return fmt.Errorf("use shader: %w", err)
	}
	if err := r.backend.ShaderBindGlobals(p.shader); err != nil {
		return fmt.Errorf("bind globals: %w", err)
	}
	if err := r.backend.ShaderSetUniform(p.shader, p.locations.Projection, p.projection); err != nil {
		return fmt.Errorf("set projection: %w", err)
	}
	if err := r.backend.ShaderSetUniform(p.shader, p.locations.View, p.view); err != nil {
		return fmt.Errorf("set view: %w", err)
	}
	if err := r.backend.ShaderApplyGlobals(p.shader); err != nil {
		return fmt.Errorf("apply globals: %w", err)
	}
	return nil
}

func (r *Renderer) drawItem(p passSubmission, item metadata.GeometryRenderData) error {
	if item.Geometry == nil {
		return errors.New("render data without geometry")
	}
	m := item.Geometry.Material
	if m == nil && r.materials != nil {
		m = r.materials.Default()
	}
	if m == nil {
		return fmt.Errorf("geometry %q: %w", item.Geometry.Name, core.ErrNoMaterial)
	}

	var diffuse *metadata.Texture
	if m.DiffuseMap != nil {
		diffuse = m.DiffuseMap.Texture
	}

	if err := r.backend.ShaderBindInstance(p.shader, m.InternalID); err != nil {
		return fmt.Errorf("bind instance %d: %w", m.InternalID, err)
	}
	if err := r.backend.ShaderSetUniform(p.shader, p.locations.DiffuseColour, m.DiffuseColour); err != nil {
		return fmt.Errorf("set diffuse colour: %w", err)
	}
	if err := r.backend.ShaderSetSampler(p.shader, p.locations.DiffuseTexture, diffuse); err != nil {
		return fmt.Errorf("set diffuse texture: %w", err)
	}
	if err := r.backend.ShaderApplyInstance(p.shader); err != nil {
		return fmt.Errorf("apply instance: %w", err)
	}
	m.RenderFrameNumber = r.frameNumber

	if err := r.backend.ShaderSetUniform(p.shader, p.locations.Model, item.Model); err != nil {
		return fmt.Errorf("set model: %w", err)
	}
	return r.backend.DrawGeometry(item)
}

// OnResize rebuilds both projections for the new size with unchanged clip
// planes, then lets the backend adapt its swapchain. A zero dimension, as
// reported for minimized windows, keeps the last usable size and projections.
func (r *Renderer) OnResize(width, height uint32) error {
	if err := r.requireInitialized("OnResize"); err != nil {
		return err
	}

	if width != 0 && height != 0 {
		r.width = width
		r.height = height
		r.projection = math.NewMat4Perspective(r.fovRadians, r.aspectRatio(), r.nearClip, r.farClip)
		r.uiProjection = math.NewMat4Orthographic(0, float32(width), float32(height), 0, r.uiNearClip, r.uiFarClip)
	} else {
		core.LogDebug("window minimized, keeping projections")
	}

	return r.backend.Resized(width, height)
}

// SetView overwrites the world view matrix. It takes effect on the next frame.
func (r *Renderer) SetView(view math.Mat4) error {
	if err := r.requireInitialized("SetView"); err != nil {
		return err
	}
	r.view = view
	return nil
}

// SetProjection changes the world field of view and clip planes, keeping the
// current aspect ratio.
func (r *Renderer) SetProjection(fovDegrees, nearClip, farClip float32) error {
	if err := r.requireInitialized("SetProjection"); err != nil {
		return err
	}
	if nearClip <= 0 || farClip <= nearClip {
		return fmt.Errorf("invalid clip range [%v, %v]", nearClip, farClip)
	}
	r.fovRadians = math.DegToRad(fovDegrees)
	r.nearClip = nearClip
	r.farClip = farClip
	r.projection = math.NewMat4Perspective(r.fovRadians, r.aspectRatio(), r.nearClip, r.farClip)
	return nil
}

func (r *Renderer) aspectRatio() float32 {
	return float32(r.width) / float32(r.height)
}

func (r *Renderer) requireInitialized(fn string) error {
	if r.state != stateInitialized {
		core.LogError(messageNotInitialized, fn)
		return fmt.Errorf("%s: %w", fn, core.ErrNotInitialized)
	}
	return nil
}

func (r *Renderer) Initialized() bool {
	return r.state == stateInitialized
}

// FrameNumber is the number of frames ended since Initialize.
func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

func (r *Renderer) WorldFrustum() Frustum {
	return Frustum{
		FOVRadians:  r.fovRadians,
		AspectRatio: r.aspectRatio(),
		NearClip:    r.nearClip,
		FarClip:     r.farClip,
	}
}

func (r *Renderer) UIBounds() Bounds {
	return Bounds{
		Left:     0,
		Right:    float32(r.width),
		Bottom:   float32(r.height),
		Top:      0,
		NearClip: r.uiNearClip,
		FarClip:  r.uiFarClip,
	}
}

func (r *Renderer) Projection() math.Mat4   { return r.projection }
func (r *Renderer) View() math.Mat4         { return r.view }
func (r *Renderer) UIProjection() math.Mat4 { return r.uiProjection }
func (r *Renderer) UIView() math.Mat4       { return r.uiView }

func (r *Renderer) MaterialShaderID() metadata.ShaderID { return r.materialShaderID }
func (r *Renderer) UIShaderID() metadata.ShaderID       { return r.uiShaderID }
