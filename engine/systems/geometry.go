package systems

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type GeometrySystemConfig struct {
	/**
	 * @brief Max number of geometries that can be loaded at once.
	 * NOTE: Should be significantly greater than the number of static meshes because
	 * there can and will be more than one of these per mesh.
	 * Take other systems into account as well.
	 */
	MaxGeometryCount uint32
}

// PrepareOptions selects the CPU passes run over a 3D geometry config before
// upload. The zero value validates, generates flat normals and tangents.
type PrepareOptions struct {
	Deduplicate bool
	// KeepNormals leaves the normals already in the config untouched.
	KeepNormals bool
	// SmoothNormals averages normals over shared vertices after generation.
	SmoothNormals bool
}

type GeometrySystem struct {
	config    GeometrySystemConfig
	renderer  GeometryBackend
	materials *MaterialSystem
	jobs      *JobSystem

	defaultGeometry   *metadata.Geometry
	default2DGeometry *metadata.Geometry
	// Array of registered geometries, nil marks a free slot.
	registeredGeometries []*metadata.GeometryReference
}

// NewGeometrySystem builds the system. jobs may be nil, in which case
// AcquireFromConfigAsync is unavailable.
func NewGeometrySystem(config GeometrySystemConfig, r GeometryBackend, ms *MaterialSystem, jobs *JobSystem) (*GeometrySystem, error) {
	if config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0: %w", ErrInvalidInput)
		core.LogError(err.Error())
		return nil, err
	}
	if ms == nil {
		return nil, errors.New("func NewGeometrySystem - material system is required")
	}
	return &GeometrySystem{
		config:               config,
		renderer:             r,
		materials:            ms,
		jobs:                 jobs,
		registeredGeometries: make([]*metadata.GeometryReference, config.MaxGeometryCount),
	}, nil
}

func newInvalidGeometry() *metadata.Geometry {
	return &metadata.Geometry{
		ID:         metadata.InvalidID,
		InternalID: metadata.InvalidID,
		Generation: metadata.InvalidIDUint16,
	}
}

// Initialize uploads the default 3D plane and 2D quad.
func (gs *GeometrySystem) Initialize() error {
	const f = float32(10.0)

	//  0    3
	//
	//  2    1
	verts := []math.Vertex3D{
		{Position: math.NewVec3(-0.5*f, -0.5*f, 0), Texcoord: math.NewVec2(0, 0)},
		{Position: math.NewVec3(0.5*f, 0.5*f, 0), Texcoord: math.NewVec2(1, 1)},
		{Position: math.NewVec3(-0.5*f, 0.5*f, 0), Texcoord: math.NewVec2(0, 1)},
		{Position: math.NewVec3(0.5*f, -0.5*f, 0), Texcoord: math.NewVec2(1, 0)},
	}
	indices := []uint32{0, 1, 2, 0, 3, 1}

	g := newInvalidGeometry()
	g.Name = metadata.DefaultGeometryName
	if err := gs.renderer.CreateGeometry(g, 48, 4, verts, indices); err != nil {
		core.LogError("Failed to create default geometry: %s", err)
		return err
	}
	g.Material = gs.materials.Default()
	g.Extents = math.Extents3D{Min: math.NewVec3(-0.5*f, -0.5*f, 0), Max: math.NewVec3(0.5*f, 0.5*f, 0)}
	gs.defaultGeometry = g

	verts2d := []math.Vertex2D{
		{Position: math.NewVec2(-0.5*f, -0.5*f), Texcoord: math.NewVec2(0, 0)},
		{Position: math.NewVec2(0.5*f, 0.5*f), Texcoord: math.NewVec2(1, 1)},
		{Position: math.NewVec2(-0.5*f, 0.5*f), Texcoord: math.NewVec2(0, 1)},
		{Position: math.NewVec2(0.5*f, -0.5*f), Texcoord: math.NewVec2(1, 0)},
	}
	// Indices (NOTE: counter-clockwise)
	indices2d := []uint32{2, 1, 0, 3, 0, 1}

	g2 := newInvalidGeometry()
	g2.Name = metadata.DefaultGeometryName + "_2d"
	if err := gs.renderer.CreateGeometry(g2, 16, 4, verts2d, indices2d); err != nil {
		core.LogError("Failed to create default 2d geometry: %s", err)
		return errors.Join(err, gs.renderer.DestroyGeometry(g))
	}
	g2.Material = gs.materials.DefaultUI()
	gs.default2DGeometry = g2

	return nil
}

func (gs *GeometrySystem) Default() *metadata.Geometry {
	return gs.defaultGeometry
}

func (gs *GeometrySystem) Default2D() *metadata.Geometry {
	return gs.default2DGeometry
}

/**
 * @brief Runs the preparation passes over config in place: index validation,
 * optional deduplication, normals and tangents, then recomputes the extents.
 * 2D configs are only validated. Degenerate texture coordinates are logged and
 * do not fail the preparation.
 */
func Prepare(config *metadata.GeometryConfig, opts PrepareOptions) error {
	if config == nil {
		return fmt.Errorf("prepare geometry: nil config: %w", ErrInvalidInput)
	}
	if len(config.Vertices2D) > 0 {
		if err := math.ValidateIndices(len(config.Vertices2D), config.Indices); err != nil {
			return fmt.Errorf("prepare geometry '%s': %w: %w", config.Name, ErrInvalidInput, err)
		}
		return nil
	}
	if err := math.ValidateIndices(len(config.Vertices), config.Indices); err != nil {
		return fmt.Errorf("prepare geometry '%s': %w: %w", config.Name, ErrInvalidInput, err)
	}

	if opts.Deduplicate {
		config.Vertices = math.DeduplicateVertices(config.Vertices, config.Indices)
	}
	if !opts.KeepNormals {
		math.GenerateNormals(config.Vertices, config.Indices)
	}
	if opts.SmoothNormals {
		math.SmoothNormals(config.Vertices, config.Indices)
	}
	if err := math.GenerateTangents(config.Vertices, config.Indices); err != nil {
		if !errors.Is(err, math.ErrDegenerateTexcoords) {
			return fmt.Errorf("prepare geometry '%s': %w", config.Name, err)
		}
		core.LogWarn("geometry '%s': %s", config.Name, err)
	}

	config.MinExtents, config.MaxExtents, config.Center = computeExtents(config.Vertices)
	return nil
}

func computeExtents(vertices []math.Vertex3D) (lo, hi, center math.Vec3) {
	if len(vertices) == 0 {
		return
	}
	lo = vertices[0].Position
	hi = vertices[0].Position
	for _, v := range vertices[1:] {
		p := v.Position
		lo = math.NewVec3(math.Min(lo.X, p.X), math.Min(lo.Y, p.Y), math.Min(lo.Z, p.Z))
		hi = math.NewVec3(math.Max(hi.X, p.X), math.Max(hi.Y, p.Y), math.Max(hi.Z, p.Z))
	}
	center = lo.Add(hi).MulScalar(0.5)
	return
}

/**
 * @brief Prepares config with opts, uploads it and acquires its material.
 * A material that cannot be acquired falls back to the default one.
 * @param autoRelease Indicates if the acquired geometry should be unloaded when its reference count reaches 0.
 */
func (gs *GeometrySystem) AcquireFromConfig(config *metadata.GeometryConfig, opts PrepareOptions, autoRelease bool) (*metadata.Geometry, error) {
	if err := Prepare(config, opts); err != nil {
		return nil, err
	}
	return gs.upload(config, autoRelease)
}

func (gs *GeometrySystem) upload(config *metadata.GeometryConfig, autoRelease bool) (*metadata.Geometry, error) {
	slot := -1
	for i, ref := range gs.registeredGeometries {
		if ref == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		core.LogError("Unable to obtain free slot for geometry. Adjust configuration to allow more space.")
		return nil, fmt.Errorf("geometry '%s': %w", config.Name, ErrNoFreeSlot)
	}

	g := newInvalidGeometry()
	g.ID = uint32(slot)
	g.Name = config.Name
	if err := gs.renderer.CreateGeometry(g, config.VertexSize(), config.VertexCount(), config.VertexData(), config.Indices); err != nil {
		return nil, fmt.Errorf("geometry '%s': %w", config.Name, err)
	}

	// Copy over extents, center, etc.
	g.Center = config.Center
	g.Extents.Min = config.MinExtents
	g.Extents.Max = config.MaxExtents

	g.Material = gs.materials.Default()
	if len(config.Vertices2D) > 0 {
		g.Material = gs.materials.DefaultUI()
	}
	if config.MaterialName != "" && !isDefaultMaterial(config.MaterialName) {
		m, err := gs.materials.Acquire(config.MaterialName)
		if err != nil {
			core.LogWarn("geometry '%s': %s, using default material.", config.Name, err)
		} else {
			g.Material = m
		}
	}

	gs.registeredGeometries[slot] = &metadata.GeometryReference{
		ReferenceCount: 1,
		Geometry:       g,
		AutoRelease:    autoRelease,
	}
	return g, nil
}

/**
 * @brief Prepares config on a worker and uploads it on the next JobSystem
 * Update. config must not be touched by the caller until done runs.
 */
func (gs *GeometrySystem) AcquireFromConfigAsync(config *metadata.GeometryConfig, opts PrepareOptions, autoRelease bool, done func(*metadata.Geometry, error)) error {
	if gs.jobs == nil {
		return fmt.Errorf("geometry '%s': async acquire needs a job system: %w", config.Name, ErrInvalidInput)
	}
	return gs.jobs.Submit(JobTask{
		Name: "prepare geometry " + config.Name,
		Run: func() (interface{}, error) {
			return config, Prepare(config, opts)
		},
		OnComplete: func(interface{}) {
			g, err := gs.upload(config, autoRelease)
			if done != nil {
				done(g, err)
			}
		},
		OnFailure: func(err error) {
			if done != nil {
				done(nil, err)
			}
		},
	})
}

/**
 * @brief Acquires an existing geometry by id.
 */
func (gs *GeometrySystem) AcquireByID(id uint32) (*metadata.Geometry, error) {
	if id != metadata.InvalidID && int(id) < len(gs.registeredGeometries) {
		if ref := gs.registeredGeometries[id]; ref != nil {
			ref.ReferenceCount++
			return ref.Geometry, nil
		}
	}
	return nil, fmt.Errorf("geometry id %d: %w", id, ErrNotFound)
}

// ReferenceCount reports the references held on the geometry with id, or zero.
func (gs *GeometrySystem) ReferenceCount(id uint32) uint64 {
	if int(id) < len(gs.registeredGeometries) && gs.registeredGeometries[id] != nil {
		return gs.registeredGeometries[id].ReferenceCount
	}
	return 0
}

/**
 * @brief Releases a reference to the provided geometry. Auto release
 * geometries are destroyed when the count reaches zero.
 */
func (gs *GeometrySystem) Release(geometry *metadata.Geometry) error {
	if geometry == nil || geometry.ID == metadata.InvalidID || int(geometry.ID) >= len(gs.registeredGeometries) {
		core.LogWarn("geometry_system_release cannot release invalid geometry id. Nothing was done.")
		return fmt.Errorf("release geometry: %w", ErrNotFound)
	}
	ref := gs.registeredGeometries[geometry.ID]
	if ref == nil || ref.Geometry != geometry {
		core.LogError("Geometry id mismatch. Check registration logic, as this should never occur.")
		return fmt.Errorf("release geometry '%s': %w", geometry.Name, ErrNotFound)
	}
	if ref.ReferenceCount > 0 {
		ref.ReferenceCount--
	}
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		return gs.destroy(ref)
	}
	return nil
}

func (gs *GeometrySystem) destroy(ref *metadata.GeometryReference) error {
	g := ref.Geometry
	if err := gs.renderer.DestroyGeometry(g); err != nil {
		return err
	}
	gs.registeredGeometries[g.ID] = nil

	// Release the material.
	if g.Material != nil && !isDefaultMaterial(g.Material.Name) {
		if err := gs.materials.Release(g.Material.Name); err != nil {
			core.LogWarn("geometry '%s': %s", g.Name, err)
		}
	}
	g.Material = nil
	g.ID = metadata.InvalidID
	return nil
}

// Shutdown destroys every registered geometry and both defaults.
func (gs *GeometrySystem) Shutdown() error {
	var errs []error
	for _, ref := range gs.registeredGeometries {
		if ref != nil {
			errs = append(errs, gs.destroy(ref))
		}
	}
	for _, g := range []*metadata.Geometry{gs.defaultGeometry, gs.default2DGeometry} {
		if g != nil {
			errs = append(errs, gs.renderer.DestroyGeometry(g))
		}
	}
	gs.defaultGeometry = nil
	gs.default2DGeometry = nil
	return errors.Join(errs...)
}

/**
 * @brief Generates configuration for plane geometries given the provided parameters.
 * NOTE: vertex and index arrays are dynamically allocated and should be freed upon object disposal.
 * Thus, this should not be considered production code.
 * Zero sizes, segment counts and tiles are replaced with one.
 *
 * @param width The overall width of the plane. Must be non-zero.
 * @param height The overall height of the plane. Must be non-zero.
 * @param xSegmentCount The number of segments along the x-axis in the plane. Must be non-zero.
 * @param ySegmentCount The number of segments along the y-axis in the plane. Must be non-zero.
 * @param tileX The number of times the texture should tile across the plane on the x-axis. Must be non-zero.
 * @param tileY The number of times the texture should tile across the plane on the y-axis. Must be non-zero.
 * @param name The name of the generated geometry.
 * @param materialName The name of the material to be used.
 * @return A geometry configuration which can then be fed into AcquireFromConfig.
 */
func GeneratePlaneConfig(width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32, name, materialName string) *metadata.GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("ySegmentCount must be a positive number. Defaulting to one.")
		ySegmentCount = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	segments := xSegmentCount * ySegmentCount
	config := &metadata.GeometryConfig{
		Vertices: make([]math.Vertex3D, segments*4), // 4 verts per segment
		Indices:  make([]uint32, segments*6),        // 6 indices per segment
	}

	// NOTE: This generates extra vertices, Prepare can deduplicate them.
	segWidth := width / float32(xSegmentCount)
	segHeight := height / float32(ySegmentCount)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			minX := (float32(x) * segWidth) - halfWidth
			minY := (float32(y) * segHeight) - halfHeight
			maxX := minX + segWidth
			maxY := minY + segHeight
			minUVX := (float32(x) / float32(xSegmentCount)) * tileX
			minUVY := (float32(y) / float32(ySegmentCount)) * tileY
			maxUVX := (float32(x+1) / float32(xSegmentCount)) * tileX
			maxUVY := (float32(y+1) / float32(ySegmentCount)) * tileY

			vOffset := ((y * xSegmentCount) + x) * 4
			v := config.Vertices[vOffset : vOffset+4]
			v[0].Position = math.NewVec3(minX, minY, 0)
			v[0].Texcoord = math.NewVec2(minUVX, minUVY)
			v[1].Position = math.NewVec3(maxX, maxY, 0)
			v[1].Texcoord = math.NewVec2(maxUVX, maxUVY)
			v[2].Position = math.NewVec3(minX, maxY, 0)
			v[2].Texcoord = math.NewVec2(minUVX, maxUVY)
			v[3].Position = math.NewVec3(maxX, minY, 0)
			v[3].Texcoord = math.NewVec2(maxUVX, minUVY)

			iOffset := ((y * xSegmentCount) + x) * 6
			copy(config.Indices[iOffset:iOffset+6], []uint32{
				vOffset + 0, vOffset + 1, vOffset + 2,
				vOffset + 0, vOffset + 3, vOffset + 1,
			})
		}
	}

	config.MinExtents = math.NewVec3(-halfWidth, -halfHeight, 0)
	config.MaxExtents = math.NewVec3(halfWidth, halfHeight, 0)
	config.Name = nameOr(name, metadata.DefaultGeometryName)
	config.MaterialName = nameOr(materialName, metadata.DefaultMaterialName)
	return config
}

// cubeFaces lists, per face, the corner selectors (0 = min, 1 = max on x, y, z)
// of its four vertices and the outward normal.
var cubeFaces = [6]struct {
	corners [4][3]int
	normal  math.Vec3
}{
	{[4][3]int{{0, 0, 1}, {1, 1, 1}, {0, 1, 1}, {1, 0, 1}}, math.NewVec3(0, 0, 1)},  // front
	{[4][3]int{{1, 0, 0}, {0, 1, 0}, {1, 1, 0}, {0, 0, 0}}, math.NewVec3(0, 0, -1)}, // back
	{[4][3]int{{0, 0, 0}, {0, 1, 1}, {0, 1, 0}, {0, 0, 1}}, math.NewVec3(-1, 0, 0)}, // left
	{[4][3]int{{1, 0, 1}, {1, 1, 0}, {1, 1, 1}, {1, 0, 0}}, math.NewVec3(1, 0, 0)},  // right
	{[4][3]int{{1, 0, 1}, {0, 0, 0}, {1, 0, 0}, {0, 0, 1}}, math.NewVec3(0, -1, 0)}, // bottom
	{[4][3]int{{0, 1, 1}, {1, 1, 0}, {0, 1, 0}, {1, 1, 1}}, math.NewVec3(0, 1, 0)},  // top
}

/**
 * @brief Generates configuration for a box with 4 vertices and 6 indices per
 * face. Normals are set per face; tangents are left to Prepare.
 */
func GenerateCubeConfig(width, height, depth, tileX, tileY float32, name, materialName string) *metadata.GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	half := math.NewVec3(width*0.5, height*0.5, depth*0.5)
	bounds := [2]math.Vec3{half.MulScalar(-1), half}
	uvs := [4]math.Vec2{
		math.NewVec2(0, 0),
		math.NewVec2(tileX, tileY),
		math.NewVec2(0, tileY),
		math.NewVec2(tileX, 0),
	}

	config := &metadata.GeometryConfig{
		Vertices: make([]math.Vertex3D, 4*6), // 4 verts per side, 6 sides
		Indices:  make([]uint32, 6*6),        // 6 indices per side, 6 sides
		// Always 0 since min/max of each axis are -/+ half of the size.
		Center:     math.NewVec3Zero(),
		MinExtents: bounds[0],
		MaxExtents: bounds[1],
	}

	for f, face := range cubeFaces {
		vOffset := uint32(f * 4)
		for c, sel := range face.corners {
			config.Vertices[vOffset+uint32(c)] = math.Vertex3D{
				Position: math.NewVec3(bounds[sel[0]].X, bounds[sel[1]].Y, bounds[sel[2]].Z),
				Texcoord: uvs[c],
				Normal:   face.normal,
			}
		}
		copy(config.Indices[f*6:f*6+6], []uint32{
			vOffset + 0, vOffset + 1, vOffset + 2,
			vOffset + 0, vOffset + 3, vOffset + 1,
		})
	}

	config.Name = nameOr(name, metadata.DefaultGeometryName)
	config.MaterialName = nameOr(materialName, metadata.DefaultMaterialName)
	return config
}

func nameOr(name, fallback string) string {
	if len(name) > 0 {
		return name
	}
	return fallback
}
