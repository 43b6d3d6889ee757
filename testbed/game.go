package testbed

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/systems"
)

const (
	crateTextureName  = "testbed_stripes"
	crateMaterialName = "testbed_crate"
	stripeSize        = 16
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	WorldCamera *components.Camera

	width  uint32
	height uint32

	cube      *metadata.Geometry
	floor     *metadata.Geometry
	crate     *metadata.Texture
	cubeAngle float32
	elapsed   float64
}

func NewTestGame(app *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: app,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers ")
	}
	sm := g.SystemManager
	state := g.State.(*gameState)

	state.WorldCamera = sm.Cameras().Default()
	state.WorldCamera.SetPosition(math.NewVec3(10.5, 5.0, 9.5))

	t, err := sm.Textures().Create(crateTextureName, stripeSize, stripeSize, 4, stripes(colornames.Orange, colornames.Darkslategray), false)
	if err != nil {
		return err
	}
	state.crate = t
	if _, err := sm.Materials().AcquireFromConfig(metadata.MaterialConfig{
		Name:           crateMaterialName,
		Type:           metadata.MaterialTypeWorld,
		DiffuseColour:  math.NewVec4One(),
		DiffuseMapName: crateTextureName,
		NearestFilter:  true,
	}); err != nil {
		return err
	}

	cube, err := sm.Geometries().AcquireFromConfig(
		systems.GenerateCubeConfig(10.0, 10.0, 10.0, 1.0, 1.0, "test_cube", crateMaterialName),
		systems.PrepareOptions{}, true)
	if err != nil {
		return err
	}
	state.cube = cube

	// The floor is prepared on a worker and shows up once the job system
	// delivers it.
	floor := systems.GeneratePlaneConfig(40, 40, 8, 8, 4, 4, "test_floor", "")
	return sm.Geometries().AcquireFromConfigAsync(floor, systems.PrepareOptions{Deduplicate: true}, true,
		func(geometry *metadata.Geometry, err error) {
			if err != nil {
				core.LogError("floor geometry failed: %s", err)
				return
			}
			core.LogInfo("floor geometry ready with id %d", geometry.ID)
			state.floor = geometry
		})
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime
	state.cubeAngle += float32(0.5 * deltaTime)

	// Slowly orbit the camera.
	state.WorldCamera.Yaw(float32(0.1 * deltaTime))
	return nil
}

func (g *TestGame) Render(packet *metadata.RenderPacket, deltaTime float64) error {
	state := g.State.(*gameState)

	if state.floor != nil {
		packet.Geometries = append(packet.Geometries, metadata.GeometryRenderData{
			Model:    math.NewMat4Translation(math.NewVec3(0, -5, 0)),
			Geometry: state.floor,
		})
	}
	if state.cube != nil {
		packet.Geometries = append(packet.Geometries, metadata.GeometryRenderData{
			Model:    math.NewMat4EulerY(state.cubeAngle),
			Geometry: state.cube,
		})
	}

	// Pin the UI quad to the top left corner.
	packet.UIGeometries = append(packet.UIGeometries, metadata.GeometryRenderData{
		Model:    math.NewMat4Translation(math.NewVec3(20, 20, 0)),
		Geometry: g.SystemManager.Geometries().Default2D(),
	})
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	sm := g.SystemManager
	if sm == nil {
		return nil
	}
	geometries := []*metadata.Geometry{state.cube, state.floor}
	for _, geometry := range geometries {
		if geometry == nil {
			continue
		}
		if err := sm.Geometries().Release(geometry); err != nil {
			core.LogWarn("release geometry: %s", err)
		}
	}
	state.cube, state.floor = nil, nil

	if err := sm.Materials().Release(crateMaterialName); err != nil {
		core.LogWarn("release material: %s", err)
	}
	if state.crate != nil {
		if err := sm.Textures().Release(crateTextureName); err != nil {
			core.LogWarn("release texture: %s", err)
		}
		state.crate = nil
	}
	core.LogInfo("testbed ran for %.2f seconds", state.elapsed)
	return nil
}

// stripes fills a square RGBA texture with alternating diagonal bands.
func stripes(a, b color.RGBA) []uint8 {
	pixels := make([]uint8, stripeSize*stripeSize*4)
	for y := 0; y < stripeSize; y++ {
		for x := 0; x < stripeSize; x++ {
			c := a
			if ((x+y)/4)%2 == 1 {
				c = b
			}
			i := (y*stripeSize + x) * 4
			pixels[i+0], pixels[i+1], pixels[i+2], pixels[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return pixels
}
